package cache

import "time"

// runMaintenance prunes expired bookkeeping on a fixed interval. It cleans
// the metadata index and the reverse indices only; store-side TTL expiry is
// authoritative, so nothing is deleted from the backing store. A failed pass
// never stops the loop.
func (e *Engine) runMaintenance() {
	defer e.waitGroup.Done()
	ticker := time.NewTicker(e.cfg.maintenanceInterval)
	defer ticker.Stop()
	for {
		select {
		case <-e.ctx.Done():
			return
		case <-ticker.C:
			e.sweep(time.Now())
		}
	}
}

// sweep removes every entry whose expiry is in the past from the metadata
// index and both reverse indices.
func (e *Engine) sweep(now time.Time) {
	pruned := 0
	e.mu.Lock()
	for key, m := range e.meta {
		if m.expired(now) {
			e.deps.removeKey(key, m.Dependencies)
			e.tags.removeKey(key, m.Tags)
			delete(e.meta, key)
			pruned++
		}
	}
	remaining := len(e.meta)
	e.mu.Unlock()
	e.metrics.evicted(pruned)
	if pruned > 0 {
		e.cfg.log.Debug("maintenance pruned %d expired entries, %d remain (%s)", pruned, remaining, e.cfg.invalidationPattern)
	}
}

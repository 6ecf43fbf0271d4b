package cache

import "time"

// refreshDue reports whether key's age has crossed the configured threshold
// percentage of its TTL.
func (e *Engine) refreshDue(key string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	m, ok := e.meta[key]
	if !ok {
		return false
	}
	age := time.Since(m.CreatedAt)
	threshold := m.TTL * time.Duration(e.cfg.refreshThreshold) / 100
	return age >= threshold
}

// scheduleRefresh starts a background refresh for key unless one is already
// in flight. The in-flight set guarantees at most one refresh per key;
// membership is removed when the refresh completes, whatever the outcome.
// The caller is never blocked: the fallback runs on a supervised goroutine
// bounded by the refresh semaphore.
func (e *Engine) scheduleRefresh(key string, fallback Fallback, ic itemConfig) bool {
	e.mu.Lock()
	if e.ctx.Err() != nil {
		e.mu.Unlock()
		return false
	}
	if _, running := e.inflight[key]; running {
		e.mu.Unlock()
		return false
	}
	e.inflight[key] = struct{}{}
	e.waitGroup.Add(1)
	e.mu.Unlock()

	go func() {
		defer e.waitGroup.Done()
		defer func() {
			e.mu.Lock()
			delete(e.inflight, key)
			e.mu.Unlock()
		}()

		if err := e.refreshSem.Acquire(e.ctx, 1); err != nil {
			// Engine shut down before the refresh could start.
			return
		}
		defer e.refreshSem.Release(1)

		val, err := fallback(e.ctx)
		if err != nil {
			e.cfg.log.Warn("background refresh for %q failed: %v", key, err)
			return
		}
		if res := e.write(e.ctx, key, val, ic, time.Now()); res.Err != nil {
			e.cfg.log.Warn("background refresh for %q could not be stored: %v", key, res.Err)
			return
		}
		e.metrics.refreshed()
		e.cfg.log.Debug("refreshed %q ahead of expiry", key)
	}()
	return true
}

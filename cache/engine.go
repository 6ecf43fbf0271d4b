package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/agentuity/go-cache-engine/store"
)

// Fallback produces a fresh value when the cache misses or a refresh is
// needed. It may block on I/O; background refreshes invoke it with the
// engine's lifecycle context.
type Fallback func(ctx context.Context) (any, error)

// WarmEntry is one entry for Engine.WarmUp.
type WarmEntry struct {
	Key          string
	Value        any
	TTL          time.Duration
	Dependencies []string
	Tags         []string
}

// Engine is the cache facade. It fronts a backing store with configurable
// write/read strategies, dependency- and tag-based invalidation,
// refresh-ahead background refresh, and operational metrics. Safe for
// concurrent use by multiple goroutines.
type Engine struct {
	ctx    context.Context
	cancel context.CancelFunc
	store  store.Store
	cfg    config

	mu       sync.Mutex
	meta     map[string]*EntryMetadata
	deps     labelIndex
	tags     labelIndex
	inflight map[string]struct{}

	refreshSem *semaphore.Weighted
	waitGroup  sync.WaitGroup
	once       sync.Once
	metrics    *collector
}

// New returns a new Engine fronting the given store. The engine owns only
// its background goroutines; the caller owns the store's lifecycle beyond
// what Engine.Close needs. Panics if st is nil.
func New(parent context.Context, st store.Store, opts ...Option) *Engine {
	if st == nil {
		panic("cache: New requires a store")
	}
	cfg := applyEngineOptions(opts)
	ctx, cancel := context.WithCancel(parent)
	e := &Engine{
		ctx:        ctx,
		cancel:     cancel,
		store:      st,
		cfg:        cfg,
		meta:       make(map[string]*EntryMetadata),
		deps:       make(labelIndex),
		tags:       make(labelIndex),
		inflight:   make(map[string]struct{}),
		refreshSem: semaphore.NewWeighted(cfg.refreshConcurrency),
		metrics:    newCollector(cfg.enableMetrics),
	}
	if cfg.backgroundRefresh {
		e.waitGroup.Add(1)
		go e.runMaintenance()
	}
	return e
}

// Get retrieves a value. On a hit it updates access bookkeeping and, for
// refresh-ahead entries past their age threshold, schedules a background
// refresh without blocking. On a miss it invokes fallback (when non-nil),
// stores the result, and returns it; a miss with no fallback is a normal
// non-success result, not an error.
func (e *Engine) Get(ctx context.Context, key string, fallback Fallback, opts ...ItemOption) Result {
	start := time.Now()
	if key == "" {
		return Result{Err: errEmptyKey("get"), Elapsed: time.Since(start)}
	}
	ic := e.applyItemOptions(opts)

	if e.cfg.limiter != nil {
		if decision := e.cfg.limiter.CheckLimit(key); !decision.Allowed {
			return Result{Err: rateLimitedError(key, decision.ResetAt), Elapsed: time.Since(start)}
		}
	}

	if ic.forceRefresh && fallback != nil {
		return e.recompute(ctx, key, fallback, ic, start)
	}

	found, val, err := e.store.Get(ctx, key)
	if err != nil {
		return Result{Err: storeError("get", key, err), Elapsed: time.Since(start)}
	}

	if found {
		e.touch(key, ic)
		e.metrics.hit(time.Since(start))
		if ic.strategy == RefreshAhead && fallback != nil && e.refreshDue(key) {
			e.scheduleRefresh(key, fallback, ic)
		}
		return Result{Success: true, Data: val, FromCache: true, Elapsed: time.Since(start)}
	}

	e.metrics.miss(time.Since(start))
	if fallback == nil {
		return Result{Elapsed: time.Since(start)}
	}
	return e.recompute(ctx, key, fallback, ic, start)
}

// recompute invokes the fallback and stores the result. A store write
// failure after a successful fallback is logged and swallowed — the caller
// still gets the value they asked for.
func (e *Engine) recompute(ctx context.Context, key string, fallback Fallback, ic itemConfig, start time.Time) Result {
	val, err := fallback(ctx)
	if err != nil {
		return Result{Err: fallbackError(key, err), Elapsed: time.Since(start)}
	}
	if res := e.write(ctx, key, val, ic, time.Now()); res.Err != nil {
		e.cfg.log.Warn("failed to cache recomputed value for %q: %v", key, res.Err)
	}
	return Result{Success: true, Data: val, Elapsed: time.Since(start)}
}

// Set stores a value using the configured or per-call strategy, then updates
// the metadata index and the dependency/tag graph. Write-around writes
// nothing at all: the key stays absent from both the store and the index.
func (e *Engine) Set(ctx context.Context, key string, val any, opts ...ItemOption) Result {
	start := time.Now()
	if key == "" {
		return Result{Err: errEmptyKey("set"), Elapsed: time.Since(start)}
	}
	return e.write(ctx, key, val, e.applyItemOptions(opts), start)
}

func (e *Engine) write(ctx context.Context, key string, val any, ic itemConfig, start time.Time) Result {
	switch ic.strategy {
	case WriteAround:
		// The write bypasses the cache entirely: no store entry, no
		// bookkeeping. The key misses until a fallback repopulates it.
		return Result{Success: true, Data: val, Elapsed: time.Since(start)}
	case WriteBehind:
		if !e.track() {
			// Engine already shut down; the write happens inline.
			if err := e.store.Set(ctx, key, val, ic.ttl); err != nil {
				return Result{Err: storeError("set", key, err), Elapsed: time.Since(start)}
			}
			break
		}
		go func() {
			defer e.waitGroup.Done()
			if err := e.store.Set(e.ctx, key, val, ic.ttl); err != nil {
				e.cfg.log.Warn("deferred write for %q failed: %v", key, err)
			}
		}()
	default:
		// WriteThrough, ReadThrough, and RefreshAhead all write
		// through synchronously.
		if err := e.store.Set(ctx, key, val, ic.ttl); err != nil {
			return Result{Err: storeError("set", key, err), Elapsed: time.Since(start)}
		}
	}
	e.index(key, val, ic)
	return Result{Success: true, Data: val, Elapsed: time.Since(start)}
}

// track registers one background goroutine with the engine's wait group,
// unless shutdown has begun. Registration and cancellation are serialized on
// e.mu so a late caller can never race Close's Wait.
func (e *Engine) track() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ctx.Err() != nil {
		return false
	}
	e.waitGroup.Add(1)
	return true
}

// index records or replaces the metadata for key and keeps the reverse
// indices consistent with the entry's declared labels.
func (e *Engine) index(key string, val any, ic itemConfig) {
	now := time.Now()
	size := sizeOf(val)
	e.mu.Lock()
	prev, existed := e.meta[key]
	if existed {
		e.deps.removeKey(key, prev.Dependencies)
		e.tags.removeKey(key, prev.Tags)
	}
	e.meta[key] = &EntryMetadata{
		Key:          key,
		CreatedAt:    now,
		LastAccessed: now,
		TTL:          ic.ttl,
		SizeBytes:    size,
		Dependencies: ic.dependencies,
		Tags:         ic.tags,
	}
	for _, label := range ic.dependencies {
		e.deps.add(label, key)
	}
	for _, label := range ic.tags {
		e.tags.add(label, key)
	}
	over := !existed && e.cfg.maxSize > 0 && len(e.meta) == e.cfg.maxSize+1
	e.mu.Unlock()
	if over {
		e.cfg.log.Warn("cache size %d exceeds advisory cap %d (%s)", e.cfg.maxSize+1, e.cfg.maxSize, e.cfg.invalidationPattern)
	}
}

// touch updates access bookkeeping on a hit. If the store has the key but
// the index does not (e.g. the engine restarted against a shared store), a
// metadata entry is recreated so the index stays a faithful cache-of-the-cache.
func (e *Engine) touch(key string, ic itemConfig) {
	now := time.Now()
	e.mu.Lock()
	m, ok := e.meta[key]
	if !ok {
		m = &EntryMetadata{
			Key:          key,
			CreatedAt:    now,
			TTL:          ic.ttl,
			Dependencies: ic.dependencies,
			Tags:         ic.tags,
		}
		e.meta[key] = m
		for _, label := range ic.dependencies {
			e.deps.add(label, key)
		}
		for _, label := range ic.tags {
			e.tags.add(label, key)
		}
	}
	m.LastAccessed = now
	m.AccessCount++
	e.mu.Unlock()
}

// forget removes a key's metadata and graph memberships.
func (e *Engine) forget(key string) {
	e.mu.Lock()
	if m, ok := e.meta[key]; ok {
		e.deps.removeKey(key, m.Dependencies)
		e.tags.removeKey(key, m.Tags)
		delete(e.meta, key)
	}
	e.mu.Unlock()
}

// Invalidate deletes every key matching the glob pattern from the backing
// store and drops its bookkeeping. Returns the number of keys invalidated;
// adapter failures are logged and yield 0.
func (e *Engine) Invalidate(ctx context.Context, pattern string) int {
	keys, err := e.store.ListKeys(ctx, pattern)
	if err != nil {
		e.cfg.log.Warn("invalidate %q: listing keys failed: %v", pattern, err)
		return 0
	}
	count := 0
	for _, key := range keys {
		if err := e.store.Delete(ctx, key); err != nil {
			e.cfg.log.Warn("invalidate %q: deleting %q failed: %v", pattern, key, err)
			continue
		}
		e.forget(key)
		count++
	}
	e.metrics.evicted(count)
	if count > 0 {
		e.cfg.log.Debug("invalidated %d keys matching %q (%s)", count, pattern, e.cfg.invalidationPattern)
	}
	return count
}

// InvalidateByDependency deletes every key that declared the given
// dependency label. Returns 0 for an unknown label. The label is removed
// from the index entirely afterward.
func (e *Engine) InvalidateByDependency(ctx context.Context, label string) int {
	return e.invalidateLabel(ctx, "dependency", label)
}

// InvalidateByTag deletes every key that declared the given tag. Returns 0
// for an unknown tag. The tag is removed from the index entirely afterward.
func (e *Engine) InvalidateByTag(ctx context.Context, label string) int {
	return e.invalidateLabel(ctx, "tag", label)
}

func (e *Engine) invalidateLabel(ctx context.Context, kind string, label string) int {
	e.mu.Lock()
	var keys []string
	if kind == "dependency" {
		keys = e.deps.keys(label)
		e.deps.drop(label)
	} else {
		keys = e.tags.keys(label)
		e.tags.drop(label)
	}
	e.mu.Unlock()
	if len(keys) == 0 {
		return 0
	}
	count := 0
	for _, key := range keys {
		if err := e.store.Delete(ctx, key); err != nil {
			e.cfg.log.Warn("invalidate %s %q: deleting %q failed: %v", kind, label, key, err)
		} else {
			count++
		}
		e.forget(key)
	}
	e.metrics.evicted(count)
	e.cfg.log.Debug("invalidated %d keys for %s %q", count, kind, label)
	return count
}

// WarmUp stores the given entries sequentially, tolerating and logging
// individual failures. Returns the number stored successfully.
func (e *Engine) WarmUp(ctx context.Context, entries []WarmEntry) int {
	warmed := 0
	for _, entry := range entries {
		opts := []ItemOption{WithTTL(entry.TTL)}
		if len(entry.Dependencies) > 0 {
			opts = append(opts, WithDependencies(entry.Dependencies...))
		}
		if len(entry.Tags) > 0 {
			opts = append(opts, WithTags(entry.Tags...))
		}
		if res := e.Set(ctx, entry.Key, entry.Value, opts...); res.Err != nil {
			e.cfg.log.Warn("warm-up for %q failed: %v", entry.Key, res.Err)
			continue
		}
		warmed++
	}
	e.cfg.log.Info("cache warm-up complete: %d/%d entries", warmed, len(entries))
	return warmed
}

// Metadata returns a copy of the bookkeeping for key, if present.
func (e *Engine) Metadata(key string) (EntryMetadata, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	m, ok := e.meta[key]
	if !ok {
		return EntryMetadata{}, false
	}
	return *m, true
}

// Keys returns the current number of live entries in the metadata index.
func (e *Engine) Keys() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.meta)
}

// Metrics returns a snapshot of the engine's counters plus the
// index-derived totals.
func (e *Engine) Metrics() MetricsSnapshot {
	snap := e.metrics.snapshot()
	e.mu.Lock()
	snap.TotalKeys = len(e.meta)
	for _, m := range e.meta {
		snap.TotalSizeBytes += int64(m.SizeBytes)
	}
	e.mu.Unlock()
	return snap
}

// Close stops background maintenance and waits for in-flight background
// refreshes and deferred writes to finish. Safe to call more than once.
// The backing store is not closed — the caller owns it.
func (e *Engine) Close() error {
	e.once.Do(func() {
		e.mu.Lock()
		e.cancel()
		e.mu.Unlock()
		e.waitGroup.Wait()
	})
	return nil
}

// Package cache implements a generic in-process caching engine that fronts
// an external key-value store with configurable write/read strategies,
// multi-dimensional invalidation, refresh-ahead background refresh, and
// operational metrics.
//
// # Engine
//
// [New] builds an [Engine] from a [store.Store] and functional options. The
// engine is safe for many concurrent callers; its in-memory bookkeeping (the
// metadata index and the dependency/tag reverse indices) is guarded by a
// mutex held only for O(1) updates, so concurrent operations on different
// keys do not serialize on store I/O.
//
// Every operation returns a [Result] instead of panicking or returning bare
// errors: callers inspect Success and Err. A pure miss with no fallback is
// Success=false with a nil Err — not an error. Errors are classified as
// store, rate-limit, or fallback failures ([IsStoreError], [IsRateLimited],
// [IsFallbackError]).
//
// # Strategies
//
// Five strategies control the write and read paths, selected by
// [WithDefaultStrategy] at construction or [WithStrategy] per call:
//
//   - [WriteThrough] (default) — the store write completes before Set
//     returns. Read-after-write holds for in-process readers.
//   - [WriteBehind] — the store write is deferred to a supervised
//     background goroutine; Set returns immediately and a failed deferred
//     write is logged, not surfaced.
//   - [WriteAround] — the write bypasses the cache entirely: Set stores
//     nothing and records no entry. A subsequent Get misses until a
//     fallback repopulates the key.
//   - [ReadThrough] — Get invokes the fallback on a miss and stores the
//     result itself.
//   - [RefreshAhead] — read-through plus proactive refresh: once a hit
//     entry's age crosses the [WithRefreshThreshold] percentage of its TTL,
//     a background refresh replaces the value before it expires. At most
//     one refresh per key is in flight at a time, and refreshes are bounded
//     by [WithRefreshConcurrency].
//
// # Invalidation
//
// Entries can declare dependency and tag labels at write time
// ([WithDependencies], [WithTags]). [Engine.Invalidate] removes keys by
// glob pattern, [Engine.InvalidateByDependency] and [Engine.InvalidateByTag]
// remove every key that declared a label. Background maintenance
// ([WithBackgroundRefresh]) prunes bookkeeping for entries whose TTL has
// lapsed; store-side expiry is authoritative, so the sweep never touches
// the store.
//
// # Typed access
//
// The engine stores values as [any]. [As] extracts a typed value from a
// Result, transparently decoding msgpack bytes produced by serialized store
// backends. [Fetch] combines lookup and population in one typed call.
// [Cacheable] wraps a plain function with caching driven by a key-derivation
// function, and [Invalidating] wraps a mutator so that a successful call
// invalidates a derived key pattern:
//
//	getUser := cache.Cacheable(engine,
//	    func(id int) string { return fmt.Sprintf("user:%d", id) },
//	    func(ctx context.Context, id int) (User, error) {
//	        return queries.GetUser(ctx, id)
//	    },
//	    cache.WithTTL(5*time.Minute), cache.WithTags("profile"),
//	)
//
// # Metrics
//
// [Engine.Metrics] returns a [MetricsSnapshot] of hits, misses, hit rate,
// running mean access latency, evictions, refreshes, and index totals.
// [NewPrometheusCollector] bridges the snapshot to a Prometheus registry.
// [WithMetricsEnabled](false) replaces the recorder with a no-op.
//
// # Shutdown
//
// [Engine.Close] cancels background maintenance, waits for in-flight
// refreshes and deferred writes, and is safe to call more than once. The
// backing store is not closed; the caller owns its lifecycle.
package cache

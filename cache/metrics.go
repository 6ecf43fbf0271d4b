package cache

import (
	"sync"
	"time"
)

// MetricsSnapshot is a point-in-time view of the engine's counters.
// Counters are reset on construction and never persisted.
type MetricsSnapshot struct {
	Hits   int64
	Misses int64

	// HitRate is Hits / (Hits + Misses), 0 when no operations have run.
	HitRate float64

	// TotalKeys is the current size of the metadata index.
	TotalKeys int

	// TotalSizeBytes is the sum of the best-effort serialized sizes of
	// all live entries.
	TotalSizeBytes int64

	// AverageAccessTime is the running mean latency over all hit and miss
	// operations.
	AverageAccessTime time.Duration

	Evictions int64
	Refreshes int64
}

// collector aggregates operation counters. It performs no I/O. When
// disabled, all recording methods return immediately.
type collector struct {
	enabled bool

	mu        sync.Mutex
	hits      int64
	misses    int64
	evictions int64
	refreshes int64
	avg       time.Duration
}

func newCollector(enabled bool) *collector {
	return &collector{enabled: enabled}
}

// observe folds one access latency into the running mean:
// avg' = (avg*(n-1) + latest) / n. Caller holds c.mu.
func (c *collector) observe(elapsed time.Duration) {
	n := c.hits + c.misses
	c.avg = (c.avg*time.Duration(n-1) + elapsed) / time.Duration(n)
}

func (c *collector) hit(elapsed time.Duration) {
	if !c.enabled {
		return
	}
	c.mu.Lock()
	c.hits++
	c.observe(elapsed)
	c.mu.Unlock()
}

func (c *collector) miss(elapsed time.Duration) {
	if !c.enabled {
		return
	}
	c.mu.Lock()
	c.misses++
	c.observe(elapsed)
	c.mu.Unlock()
}

func (c *collector) evicted(n int) {
	if !c.enabled || n == 0 {
		return
	}
	c.mu.Lock()
	c.evictions += int64(n)
	c.mu.Unlock()
}

func (c *collector) refreshed() {
	if !c.enabled {
		return
	}
	c.mu.Lock()
	c.refreshes++
	c.mu.Unlock()
}

func (c *collector) snapshot() MetricsSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := MetricsSnapshot{
		Hits:              c.hits,
		Misses:            c.misses,
		AverageAccessTime: c.avg,
		Evictions:         c.evictions,
		Refreshes:         c.refreshes,
	}
	if total := c.hits + c.misses; total > 0 {
		snap.HitRate = float64(c.hits) / float64(total)
	}
	return snap
}

package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHitRateConvergence(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	// 3 hits, 2 misses.
	e.Set(ctx, "key", "value")
	for i := 0; i < 3; i++ {
		assert.True(t, e.Get(ctx, "key", nil).Success)
	}
	for i := 0; i < 2; i++ {
		assert.False(t, e.Get(ctx, fmt.Sprintf("missing:%d", i), nil).Success)
	}

	snap := e.Metrics()
	assert.Equal(t, int64(3), snap.Hits)
	assert.Equal(t, int64(2), snap.Misses)
	assert.InDelta(t, 0.6, snap.HitRate, 1e-9)
}

func TestHitRateZeroWithoutOperations(t *testing.T) {
	e, _ := newTestEngine(t)

	snap := e.Metrics()
	assert.Zero(t, snap.Hits)
	assert.Zero(t, snap.Misses)
	assert.Zero(t, snap.HitRate)
	assert.Zero(t, snap.AverageAccessTime)
}

func TestAverageAccessTimeIsRunningMean(t *testing.T) {
	c := newCollector(true)
	c.hit(10 * time.Millisecond)
	c.miss(30 * time.Millisecond)

	snap := c.snapshot()
	assert.Equal(t, 20*time.Millisecond, snap.AverageAccessTime)

	c.hit(20 * time.Millisecond)
	assert.Equal(t, 20*time.Millisecond, c.snapshot().AverageAccessTime)
}

func TestTotalsDerivedFromIndex(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	e.Set(ctx, "a", "first")
	e.Set(ctx, "b", "second")

	snap := e.Metrics()
	assert.Equal(t, 2, snap.TotalKeys)
	assert.Equal(t, 2, e.Keys())
	assert.Positive(t, snap.TotalSizeBytes)

	e.Invalidate(ctx, "a")
	snap = e.Metrics()
	assert.Equal(t, 1, snap.TotalKeys)
	assert.Equal(t, int64(1), snap.Evictions)
}

func TestSizeBytesFallsBackToZero(t *testing.T) {
	// Functions cannot be serialized; size degrades to 0 instead of
	// failing the write.
	assert.Zero(t, sizeOf(func() {}))
	assert.Positive(t, sizeOf("value"))
}

func TestDisabledMetricsRecordNothing(t *testing.T) {
	e, _ := newTestEngine(t, WithMetricsEnabled(false))
	ctx := context.Background()

	e.Set(ctx, "key", "value")
	e.Get(ctx, "key", nil)
	e.Get(ctx, "missing", nil)
	e.Invalidate(ctx, "key")

	snap := e.Metrics()
	assert.Zero(t, snap.Hits)
	assert.Zero(t, snap.Misses)
	assert.Zero(t, snap.HitRate)
	assert.Zero(t, snap.Evictions)
	// Index-derived totals still reflect reality.
	assert.Equal(t, 0, snap.TotalKeys)
}

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"

	"github.com/agentuity/go-cache-engine/logger"
	"github.com/agentuity/go-cache-engine/ratelimit"
	"github.com/agentuity/go-cache-engine/store"
)

// failingStore fails every operation with a fixed error.
type failingStore struct {
	err error
}

var _ store.Store = (*failingStore)(nil)

func (s *failingStore) Get(context.Context, string) (bool, any, error) {
	return false, nil, s.err
}

func (s *failingStore) Set(context.Context, string, any, time.Duration) error {
	return s.err
}

func (s *failingStore) Delete(context.Context, string) error {
	return s.err
}

func (s *failingStore) ListKeys(context.Context, string) ([]string, error) {
	return nil, s.err
}

func (s *failingStore) Close(context.Context) error {
	return nil
}

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *logger.TestLogger) {
	t.Helper()
	ctx := context.Background()
	log := logger.NewTestLogger()
	st := store.NewInMemory(ctx)
	t.Cleanup(func() { st.Close(ctx) })
	e := New(ctx, st, append([]Option{WithLogger(log)}, opts...)...)
	t.Cleanup(func() { e.Close() })
	return e, log
}

func TestReadAfterWrite(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	res := e.Set(ctx, "key", "value")
	assert.NoError(t, res.Err)
	assert.True(t, res.Success)
	assert.False(t, res.FromCache)

	res = e.Get(ctx, "key", nil)
	assert.NoError(t, res.Err)
	assert.True(t, res.Success)
	assert.True(t, res.FromCache)
	assert.Equal(t, "value", res.Data)
}

func TestPureMissIsNotAnError(t *testing.T) {
	e, _ := newTestEngine(t)

	res := e.Get(context.Background(), "missing", nil)
	assert.NoError(t, res.Err)
	assert.False(t, res.Success)
	assert.False(t, res.FromCache)
}

func TestMissWithFallbackPopulates(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	invoked := 0
	fallback := func(ctx context.Context) (any, error) {
		invoked++
		return "fresh", nil
	}

	res := e.Get(ctx, "key", fallback)
	assert.NoError(t, res.Err)
	assert.True(t, res.Success)
	assert.False(t, res.FromCache)
	assert.Equal(t, "fresh", res.Data)
	assert.Equal(t, 1, invoked)

	// Second read is a hit; the fallback is not invoked again.
	res = e.Get(ctx, "key", fallback)
	assert.NoError(t, res.Err)
	assert.True(t, res.FromCache)
	assert.Equal(t, 1, invoked)
}

func TestForceRefresh(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	e.Set(ctx, "key", "stale")

	res := e.Get(ctx, "key", func(ctx context.Context) (any, error) {
		return "recomputed", nil
	}, WithForceRefresh())
	assert.NoError(t, res.Err)
	assert.True(t, res.Success)
	assert.False(t, res.FromCache)
	assert.Equal(t, "recomputed", res.Data)

	// The recomputed value replaced the stale one.
	res = e.Get(ctx, "key", nil)
	assert.Equal(t, "recomputed", res.Data)
}

func TestForceRefreshWithoutFallbackReadsCache(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	e.Set(ctx, "key", "value")
	res := e.Get(ctx, "key", nil, WithForceRefresh())
	assert.True(t, res.Success)
	assert.Equal(t, "value", res.Data)
}

func TestEmptyKey(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	res := e.Get(ctx, "", nil)
	assert.Error(t, res.Err)
	res = e.Set(ctx, "", "value")
	assert.Error(t, res.Err)
}

func TestStoreErrorIsWrapped(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("connection refused")
	e := New(ctx, &failingStore{err: boom}, WithLogger(logger.NewTestLogger()))
	defer e.Close()

	res := e.Get(ctx, "key", nil)
	assert.Error(t, res.Err)
	assert.True(t, IsStoreError(res.Err))
	assert.True(t, errors.Is(res.Err, boom))
	assert.Contains(t, res.Err.Error(), `"key"`)

	res = e.Set(ctx, "key", "value")
	assert.True(t, IsStoreError(res.Err))
}

func TestFallbackErrorIsWrapped(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	boom := errors.New("db down")
	res := e.Get(ctx, "key", func(ctx context.Context) (any, error) {
		return nil, boom
	})
	assert.Error(t, res.Err)
	assert.True(t, IsFallbackError(res.Err))
	assert.False(t, IsStoreError(res.Err))
	assert.True(t, errors.Is(res.Err, boom))
}

func TestRateLimiterDenial(t *testing.T) {
	ctx := context.Background()
	limiter := ratelimit.NewWindow(ctx, ratelimit.Config{Limit: 2, Window: time.Minute})
	defer limiter.Close()

	e, _ := newTestEngine(t, WithRateLimiter(limiter))
	e.Set(ctx, "key", "value")

	assert.NoError(t, e.Get(ctx, "key", nil).Err)
	assert.NoError(t, e.Get(ctx, "key", nil).Err)

	res := e.Get(ctx, "key", nil)
	assert.Error(t, res.Err)
	assert.True(t, IsRateLimited(res.Err))
	assert.False(t, res.Success)

	// Other keys are unaffected.
	e.Set(ctx, "other", "value")
	assert.NoError(t, e.Get(ctx, "other", nil).Err)
}

func TestInvalidatePattern(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	e.Set(ctx, "user:1", 1)
	e.Set(ctx, "user:2", 2)
	e.Set(ctx, "leaderboard:daily", 3)

	count := e.Invalidate(ctx, "user:*")
	assert.Equal(t, 2, count)

	assert.False(t, e.Get(ctx, "user:1", nil).Success)
	assert.False(t, e.Get(ctx, "user:2", nil).Success)
	assert.True(t, e.Get(ctx, "leaderboard:daily", nil).Success)

	_, ok := e.Metadata("user:1")
	assert.False(t, ok)
}

func TestInvalidateIsIdempotent(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	e.Set(ctx, "user:1", 1)
	e.Set(ctx, "user:2", 2)

	assert.Equal(t, 2, e.Invalidate(ctx, "user:*"))
	assert.Equal(t, 0, e.Invalidate(ctx, "user:*"))
}

func TestInvalidateStoreFailureReturnsZero(t *testing.T) {
	ctx := context.Background()
	log := logger.NewTestLogger()
	e := New(ctx, &failingStore{err: errors.New("down")}, WithLogger(log))
	defer e.Close()

	assert.Equal(t, 0, e.Invalidate(ctx, "user:*"))
	assert.True(t, log.HasSeverity("WARNING"))
}

func TestWarmUp(t *testing.T) {
	e, log := newTestEngine(t)
	ctx := context.Background()

	warmed := e.WarmUp(ctx, []WarmEntry{
		{Key: "user:1", Value: 1, TTL: time.Minute},
		{Key: "user:2", Value: 2},
		{Key: "", Value: 3},
	})
	assert.Equal(t, 2, warmed)
	assert.True(t, e.Get(ctx, "user:1", nil).Success)
	assert.True(t, e.Get(ctx, "user:2", nil).Success)
	assert.True(t, log.HasSeverity("WARNING"))
	assert.True(t, log.HasSeverity("INFO"))
}

func TestMetadataBookkeeping(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	e.Set(ctx, "key", "value", WithTTL(time.Minute), WithDependencies("dep"), WithTags("tag"))

	m, ok := e.Metadata("key")
	assert.True(t, ok)
	assert.Equal(t, "key", m.Key)
	assert.Equal(t, time.Minute, m.TTL)
	assert.Equal(t, []string{"dep"}, m.Dependencies)
	assert.Equal(t, []string{"tag"}, m.Tags)
	assert.Positive(t, m.SizeBytes)
	assert.Zero(t, m.AccessCount)

	e.Get(ctx, "key", nil)
	e.Get(ctx, "key", nil)

	m, _ = e.Metadata("key")
	assert.Equal(t, int64(2), m.AccessCount)
	assert.False(t, m.LastAccessed.Before(m.CreatedAt))
}

func TestScenarioProfileTag(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	res := e.Set(ctx, "user:1", map[string]int{"xp": 100}, WithTTL(300*time.Second), WithTags("profile"))
	assert.NoError(t, res.Err)

	res = e.Get(ctx, "user:1", nil)
	assert.True(t, res.Success)
	assert.True(t, res.FromCache)
	assert.Equal(t, map[string]int{"xp": 100}, res.Data)

	assert.Equal(t, 1, e.InvalidateByTag(ctx, "profile"))

	res = e.Get(ctx, "user:1", nil)
	assert.False(t, res.Success)
}

func TestCloseIdempotent(t *testing.T) {
	ctx := context.Background()
	st := store.NewInMemory(ctx)
	defer st.Close(ctx)
	e := New(ctx, st, WithLogger(logger.NewTestLogger()))
	assert.NoError(t, e.Close())
	assert.NoError(t, e.Close())
}

func TestOperationsAfterCloseAreSafe(t *testing.T) {
	ctx := context.Background()
	st := store.NewInMemory(ctx)
	defer st.Close(ctx)
	e := New(ctx, st, WithLogger(logger.NewTestLogger()))

	e.Set(ctx, "key", "value")
	assert.NoError(t, e.Close())

	// Deferred writes degrade to inline writes once shutdown has begun, so
	// a late caller cannot race the shutdown wait.
	res := e.Set(ctx, "behind", "value", WithStrategy(WriteBehind))
	assert.NoError(t, res.Err)
	assert.True(t, res.Success)
	assert.True(t, e.Get(ctx, "behind", nil).Success)

	// No new background refresh is scheduled after shutdown.
	scheduled := e.scheduleRefresh("key", func(ctx context.Context) (any, error) {
		return "v2", nil
	}, e.applyItemOptions(nil))
	assert.False(t, scheduled)
}

func TestMaintenancePrunesExpiredBookkeeping(t *testing.T) {
	e, log := newTestEngine(t,
		WithBackgroundRefresh(true),
		WithMaintenanceInterval(time.Millisecond*10),
	)
	ctx := context.Background()

	e.Set(ctx, "short", "value", WithTTL(time.Millisecond*5), WithTags("t"))
	e.Set(ctx, "long", "value", WithTTL(time.Minute))

	assert.Eventually(t, func() bool {
		_, ok := e.Metadata("short")
		return !ok
	}, time.Second, time.Millisecond*10)

	_, ok := e.Metadata("long")
	assert.True(t, ok)
	assert.True(t, log.HasSeverity("DEBUG"))
	assert.GreaterOrEqual(t, e.Metrics().Evictions, int64(1))
}

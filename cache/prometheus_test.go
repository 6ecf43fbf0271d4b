package cache

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPrometheusCollectorExposesSnapshot(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	e.Set(ctx, "key", "value")
	e.Get(ctx, "key", nil)
	e.Get(ctx, "missing", nil)

	c := NewPrometheusCollector(e, "testapp")
	assert.Equal(t, 8, testutil.CollectAndCount(c))

	expected := strings.NewReader(`
# HELP testapp_cache_hits_total Total number of cache hits
# TYPE testapp_cache_hits_total counter
testapp_cache_hits_total{invalidation_pattern="ttl"} 1
# HELP testapp_cache_misses_total Total number of cache misses
# TYPE testapp_cache_misses_total counter
testapp_cache_misses_total{invalidation_pattern="ttl"} 1
# HELP testapp_cache_hit_rate Ratio of hits to total operations
# TYPE testapp_cache_hit_rate gauge
testapp_cache_hit_rate{invalidation_pattern="ttl"} 0.5
# HELP testapp_cache_keys Current number of live cache entries
# TYPE testapp_cache_keys gauge
testapp_cache_keys{invalidation_pattern="ttl"} 1
`)
	assert.NoError(t, testutil.CollectAndCompare(c, expected,
		"testapp_cache_hits_total",
		"testapp_cache_misses_total",
		"testapp_cache_hit_rate",
		"testapp_cache_keys",
	))
}

func TestPrometheusCollectorRegisters(t *testing.T) {
	e, _ := newTestEngine(t)

	registry := prometheus.NewRegistry()
	assert.NoError(t, registry.Register(NewPrometheusCollector(e, "testapp")))
}

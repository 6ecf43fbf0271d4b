package cache

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector exposes an Engine's metrics snapshot as Prometheus
// metrics. Register it on any prometheus.Registerer:
//
//	registry.MustRegister(cache.NewPrometheusCollector(engine, "myapp"))
type PrometheusCollector struct {
	engine *Engine

	hits      *prometheus.Desc
	misses    *prometheus.Desc
	hitRate   *prometheus.Desc
	keys      *prometheus.Desc
	sizeBytes *prometheus.Desc
	avgAccess *prometheus.Desc
	evictions *prometheus.Desc
	refreshes *prometheus.Desc
}

var _ prometheus.Collector = (*PrometheusCollector)(nil)

// NewPrometheusCollector returns a collector sourcing all values from the
// engine's metrics snapshot at scrape time. The invalidation pattern label
// categorizes the series.
func NewPrometheusCollector(engine *Engine, namespace string) *PrometheusCollector {
	labels := prometheus.Labels{"invalidation_pattern": string(engine.cfg.invalidationPattern)}
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "cache", name), help, nil, labels)
	}
	return &PrometheusCollector{
		engine:    engine,
		hits:      desc("hits_total", "Total number of cache hits"),
		misses:    desc("misses_total", "Total number of cache misses"),
		hitRate:   desc("hit_rate", "Ratio of hits to total operations"),
		keys:      desc("keys", "Current number of live cache entries"),
		sizeBytes: desc("size_bytes", "Best-effort serialized size of all live entries"),
		avgAccess: desc("average_access_seconds", "Running mean access latency"),
		evictions: desc("evictions_total", "Total number of invalidated or pruned entries"),
		refreshes: desc("refreshes_total", "Total number of completed background refreshes"),
	}
}

func (c *PrometheusCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.hits
	ch <- c.misses
	ch <- c.hitRate
	ch <- c.keys
	ch <- c.sizeBytes
	ch <- c.avgAccess
	ch <- c.evictions
	ch <- c.refreshes
}

func (c *PrometheusCollector) Collect(ch chan<- prometheus.Metric) {
	snap := c.engine.Metrics()
	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(snap.Hits))
	ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(snap.Misses))
	ch <- prometheus.MustNewConstMetric(c.hitRate, prometheus.GaugeValue, snap.HitRate)
	ch <- prometheus.MustNewConstMetric(c.keys, prometheus.GaugeValue, float64(snap.TotalKeys))
	ch <- prometheus.MustNewConstMetric(c.sizeBytes, prometheus.GaugeValue, float64(snap.TotalSizeBytes))
	ch <- prometheus.MustNewConstMetric(c.avgAccess, prometheus.GaugeValue, snap.AverageAccessTime.Seconds())
	ch <- prometheus.MustNewConstMetric(c.evictions, prometheus.CounterValue, float64(snap.Evictions))
	ch <- prometheus.MustNewConstMetric(c.refreshes, prometheus.CounterValue, float64(snap.Refreshes))
}

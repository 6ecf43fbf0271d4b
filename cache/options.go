package cache

import (
	"time"

	"github.com/agentuity/go-cache-engine/logger"
	"github.com/agentuity/go-cache-engine/ratelimit"
)

// DefaultTTL is the default TTL used when neither the engine configuration
// nor the individual operation supplies one.
const DefaultTTL = 5 * time.Minute

// DefaultMaintenanceInterval is how often the background maintenance sweep
// runs when background refresh is enabled.
const DefaultMaintenanceInterval = time.Minute

// DefaultRefreshThreshold is the percentage of an entry's TTL after which a
// refresh-ahead read schedules a background refresh.
const DefaultRefreshThreshold = 80

// DefaultRefreshConcurrency bounds the number of background refreshes
// running at once.
const DefaultRefreshConcurrency = 4

// config holds the resolved, immutable configuration for an Engine.
type config struct {
	strategy            Strategy
	invalidationPattern InvalidationPattern
	defaultTTL          time.Duration
	maxSize             int
	enableMetrics       bool
	refreshThreshold    int
	backgroundRefresh   bool
	maintenanceInterval time.Duration
	refreshConcurrency  int64
	log                 logger.Logger
	limiter             ratelimit.Limiter
}

// Option configures an Engine at construction.
type Option func(*config)

func defaultEngineConfig() config {
	return config{
		strategy:            WriteThrough,
		invalidationPattern: InvalidationTTL,
		defaultTTL:          DefaultTTL,
		enableMetrics:       true,
		refreshThreshold:    DefaultRefreshThreshold,
		maintenanceInterval: DefaultMaintenanceInterval,
		refreshConcurrency:  DefaultRefreshConcurrency,
	}
}

func applyEngineOptions(opts []Option) config {
	cfg := defaultEngineConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.refreshThreshold < 0 {
		cfg.refreshThreshold = 0
	}
	if cfg.refreshThreshold > 100 {
		cfg.refreshThreshold = 100
	}
	if cfg.maintenanceInterval <= 0 {
		cfg.maintenanceInterval = DefaultMaintenanceInterval
	}
	if cfg.refreshConcurrency <= 0 {
		cfg.refreshConcurrency = DefaultRefreshConcurrency
	}
	if cfg.log == nil {
		cfg.log = logger.NewConsoleLogger()
	}
	return cfg
}

// WithDefaultStrategy sets the write/read strategy used when an operation
// does not override it. Defaults to WriteThrough.
func WithDefaultStrategy(s Strategy) Option {
	return func(c *config) { c.strategy = s }
}

// WithInvalidationPattern sets the descriptive invalidation pattern label
// used in log and metric output. Defaults to InvalidationTTL.
func WithInvalidationPattern(p InvalidationPattern) Option {
	return func(c *config) { c.invalidationPattern = p }
}

// WithDefaultTTL sets the TTL used when an operation does not supply one.
// Defaults to DefaultTTL (5 minutes).
func WithDefaultTTL(d time.Duration) Option {
	return func(c *config) { c.defaultTTL = d }
}

// WithMaxSize sets an advisory cap on the number of live entries. The
// engine logs a warning when the cap is crossed; it does not evict.
func WithMaxSize(n int) Option {
	return func(c *config) { c.maxSize = n }
}

// WithMetricsEnabled enables or disables metric collection. Defaults to
// enabled; when disabled the recorder is a no-op and snapshots report only
// index-derived totals.
func WithMetricsEnabled(enabled bool) Option {
	return func(c *config) { c.enableMetrics = enabled }
}

// WithRefreshThreshold sets the percentage (0–100) of an entry's TTL after
// which a refresh-ahead read schedules a background refresh. Defaults to
// DefaultRefreshThreshold (80).
func WithRefreshThreshold(percent int) Option {
	return func(c *config) { c.refreshThreshold = percent }
}

// WithBackgroundRefresh enables the background maintenance sweep that prunes
// expired bookkeeping. Defaults to disabled.
func WithBackgroundRefresh(enabled bool) Option {
	return func(c *config) { c.backgroundRefresh = enabled }
}

// WithMaintenanceInterval sets how often background maintenance runs.
// Defaults to DefaultMaintenanceInterval (1 minute).
func WithMaintenanceInterval(d time.Duration) Option {
	return func(c *config) { c.maintenanceInterval = d }
}

// WithRefreshConcurrency bounds how many background refreshes may run at
// once. Defaults to DefaultRefreshConcurrency (4).
func WithRefreshConcurrency(n int64) Option {
	return func(c *config) { c.refreshConcurrency = n }
}

// WithLogger sets the logger the engine uses for maintenance traces and
// background failure warnings. Defaults to a console logger.
func WithLogger(log logger.Logger) Option {
	return func(c *config) { c.log = log }
}

// WithRateLimiter sets an optional rate limiter consulted before any work on
// a read. When the limiter denies a key, Get fails fast with a rate-limit
// error.
func WithRateLimiter(l ratelimit.Limiter) Option {
	return func(c *config) { c.limiter = l }
}

// itemConfig holds the per-operation options for one Get or Set.
type itemConfig struct {
	ttl          time.Duration
	dependencies []string
	tags         []string
	strategy     Strategy
	forceRefresh bool
}

// ItemOption configures a single Get or Set call.
type ItemOption func(*itemConfig)

func (e *Engine) applyItemOptions(opts []ItemOption) itemConfig {
	ic := itemConfig{ttl: e.cfg.defaultTTL}
	for _, opt := range opts {
		opt(&ic)
	}
	if ic.ttl <= 0 {
		ic.ttl = e.cfg.defaultTTL
	}
	if ic.strategy == "" {
		ic.strategy = e.cfg.strategy
	}
	return ic
}

// WithTTL overrides the engine's default TTL for this operation.
func WithTTL(d time.Duration) ItemOption {
	return func(c *itemConfig) { c.ttl = d }
}

// WithDependencies declares dependency labels for the entry. Invalidating
// any of the labels removes the entry.
func WithDependencies(labels ...string) ItemOption {
	return func(c *itemConfig) { c.dependencies = append(c.dependencies, labels...) }
}

// WithTags declares tag labels for the entry, used for grouped invalidation.
func WithTags(labels ...string) ItemOption {
	return func(c *itemConfig) { c.tags = append(c.tags, labels...) }
}

// WithStrategy overrides the engine's default strategy for this operation.
func WithStrategy(s Strategy) ItemOption {
	return func(c *itemConfig) { c.strategy = s }
}

// WithForceRefresh makes Get bypass the cache and recompute unconditionally
// when a fallback is available.
func WithForceRefresh() ItemOption {
	return func(c *itemConfig) { c.forceRefresh = true }
}

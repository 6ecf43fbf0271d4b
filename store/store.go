package store

import (
	"context"
	"time"
)

// Store is the minimal contract the cache engine requires from a backing
// key-value store. Implementations are expected to enforce TTL expiry on
// their own (a Get after expiry reports not-found) and to support glob-style
// key listing.
type Store interface {
	// Get retrieves a value. The bool reports whether the key was found;
	// a miss is not an error.
	Get(ctx context.Context, key string) (bool, any, error)

	// Set stores a value with a TTL. If expires <= 0, the store's
	// configured default TTL is used.
	Set(ctx context.Context, key string, val any, expires time.Duration) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// ListKeys returns the keys matching a glob pattern ('*', '?' and
	// character classes, as in path.Match and Redis MATCH).
	ListKeys(ctx context.Context, pattern string) ([]string, error)

	// Close shuts down the store.
	Close(ctx context.Context) error
}

// DefaultExpires is the default TTL used when Set is called with expires <= 0
// and no override was configured.
const DefaultExpires = 5 * time.Minute

// DefaultQueryTimeout is the per-operation timeout for store backends that
// perform I/O (SQLite, Redis). Prevents indefinite hangs on slow or
// unresponsive storage.
const DefaultQueryTimeout = 5 * time.Second

// config holds the resolved configuration for a store implementation.
type config struct {
	defaultExpires time.Duration
	queryTimeout   time.Duration
	expiryCheck    time.Duration
	prefix         string
}

// Option configures a Store implementation.
type Option func(*config)

func defaultConfig() config {
	return config{
		defaultExpires: DefaultExpires,
		queryTimeout:   DefaultQueryTimeout,
		expiryCheck:    time.Minute,
	}
}

func applyOptions(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithExpires sets the default TTL for stored values. This is used when
// Set is called with expires <= 0. Defaults to DefaultExpires (5 minutes).
func WithExpires(d time.Duration) Option {
	return func(c *config) { c.defaultExpires = d }
}

// WithQueryTimeout sets the per-operation timeout for I/O-backed stores
// (SQLite, Redis). Defaults to DefaultQueryTimeout (5 seconds).
func WithQueryTimeout(d time.Duration) Option {
	return func(c *config) { c.queryTimeout = d }
}

// WithExpiryCheck sets the interval for background expired entry cleanup.
// Applies to the InMemory and SQLite backends. Defaults to 1 minute.
func WithExpiryCheck(d time.Duration) Option {
	return func(c *config) { c.expiryCheck = d }
}

// WithPrefix sets the key prefix for namespacing store keys.
// Applies to the Redis backend. Defaults to empty (no prefix).
func WithPrefix(p string) Option {
	return func(c *config) { c.prefix = p }
}

package cache

import "time"

// Result is the outcome of a single cache operation. The engine never
// panics or returns errors out of band: callers inspect Success and Err.
// A pure miss (no fallback available) is Success=false with a nil Err.
type Result struct {
	// Success reports whether the operation produced a value.
	Success bool

	// Data is the value produced, when Success is true. For serialized
	// store backends this may be the raw msgpack []byte; use As or Fetch
	// for typed access.
	Data any

	// FromCache reports whether Data came from the cache rather than a
	// fallback recomputation. Always false for Set.
	FromCache bool

	// Elapsed is how long the operation took.
	Elapsed time.Duration

	// Err is the classified operation error, if any. See IsStoreError,
	// IsRateLimited, and IsFallbackError.
	Err error
}

package cache

import (
	"time"

	"github.com/cockroachdb/errors"
)

// Sentinel error kinds. Operation errors are marked with exactly one of
// these; use the Is predicates (or errors.Is) to classify a Result's Err.
var (
	// ErrStore marks a failed backing store operation (I/O,
	// serialization).
	ErrStore = errors.New("backing store operation failed")

	// ErrRateLimited marks an operation denied by the rate limiter.
	ErrRateLimited = errors.New("rate limited")

	// ErrFallback marks a failure in the caller-supplied recomputation
	// function.
	ErrFallback = errors.New("fallback failed")
)

func errEmptyKey(op string) error {
	return errors.Newf("cache %s: key is required", op)
}

func storeError(op string, key string, err error) error {
	return errors.Mark(errors.Wrapf(err, "cache %s %q", op, key), ErrStore)
}

func fallbackError(key string, err error) error {
	return errors.Mark(errors.Wrapf(err, "cache fallback for %q", key), ErrFallback)
}

func rateLimitedError(key string, resetAt time.Time) error {
	return errors.Mark(
		errors.Newf("cache get %q: rate limited until %s", key, resetAt.Format(time.RFC3339)),
		ErrRateLimited,
	)
}

// IsStoreError reports whether err came from a backing store operation.
func IsStoreError(err error) bool {
	return errors.Is(err, ErrStore)
}

// IsRateLimited reports whether err came from a rate limiter denial.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsFallbackError reports whether err came from a caller-supplied fallback.
func IsFallbackError(err error) bool {
	return errors.Is(err, ErrFallback)
}

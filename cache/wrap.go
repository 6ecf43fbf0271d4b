package cache

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// As extracts a typed value from a Result. For in-memory stores it performs
// a direct type assertion; for serialized stores (Redis, SQLite) it decodes
// the stored msgpack []byte.
func As[T any](res Result) (T, error) {
	var zero T
	if res.Err != nil {
		return zero, res.Err
	}
	if !res.Success {
		return zero, nil
	}
	if typed, ok := res.Data.(T); ok {
		return typed, nil
	}
	if data, ok := res.Data.([]byte); ok {
		var out T
		if err := msgpack.Unmarshal(data, &out); err != nil {
			return zero, errors.Wrap(err, "cache: failed to unmarshal value")
		}
		return out, nil
	}
	return zero, errors.Newf("cache: cannot convert value of type %T to %T", res.Data, zero)
}

// Fetch is the typed read-through helper. It checks the cache for key; on a
// miss it calls invoke, stores the result, and returns it. The bool reports
// whether a value was produced — a miss with a nil invoke returns
// (false, zero, nil).
func Fetch[T any](ctx context.Context, e *Engine, key string, invoke func(ctx context.Context) (T, error), opts ...ItemOption) (bool, T, error) {
	var zero T
	var fallback Fallback
	if invoke != nil {
		fallback = func(ctx context.Context) (any, error) {
			return invoke(ctx)
		}
	}
	res := e.Get(ctx, key, fallback, opts...)
	if res.Err != nil {
		return false, zero, res.Err
	}
	if !res.Success {
		return false, zero, nil
	}
	val, err := As[T](res)
	if err != nil {
		return false, zero, err
	}
	return true, val, nil
}

// Cacheable wraps a function with caching: calls with the same derived key
// are served from the cache until the entry is invalidated or expires. This
// is the explicit replacement for annotation-style caching — the key
// strategy is a plain function of the argument.
func Cacheable[A any, R any](e *Engine, keyFn func(A) string, fn func(ctx context.Context, arg A) (R, error), opts ...ItemOption) func(ctx context.Context, arg A) (R, error) {
	return func(ctx context.Context, arg A) (R, error) {
		_, val, err := Fetch(ctx, e, keyFn(arg), func(ctx context.Context) (R, error) {
			return fn(ctx, arg)
		}, opts...)
		return val, err
	}
}

// Invalidating wraps a mutating function so that, after it succeeds, every
// cache key matching the derived pattern is invalidated.
func Invalidating[A any, R any](e *Engine, patternFn func(A) string, fn func(ctx context.Context, arg A) (R, error)) func(ctx context.Context, arg A) (R, error) {
	return func(ctx context.Context, arg A) (R, error) {
		out, err := fn(ctx, arg)
		if err != nil {
			return out, err
		}
		e.Invalidate(ctx, patternFn(arg))
		return out, nil
	}
}

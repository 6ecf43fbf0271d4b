package cache

// Strategy controls when and whether a write reaches the backing store
// relative to the caller's Set, and how misses are repopulated.
type Strategy string

const (
	// WriteThrough writes to the backing store synchronously before
	// returning. Strongest consistency; the default.
	WriteThrough Strategy = "write-through"

	// WriteBehind schedules the store write to happen after Set returns.
	// Consistency is eventual; a failed deferred write is logged but not
	// surfaced to the original caller.
	WriteBehind Strategy = "write-behind"

	// WriteAround never populates the cache on write: Set records nothing
	// in the backing store or the metadata index. Intended for values
	// written far more often than they are read, where the caller writes
	// to the system of record itself. A Get for a key only ever written
	// with WriteAround misses until a fallback repopulates it.
	WriteAround Strategy = "write-around"

	// ReadThrough makes the cache itself responsible for invoking the
	// fallback on a miss.
	ReadThrough Strategy = "read-through"

	// RefreshAhead augments ReadThrough: once an entry's age crosses the
	// configured threshold percentage of its TTL, a background refresh
	// replaces the value before expiry.
	RefreshAhead Strategy = "refresh-ahead"
)

// InvalidationPattern describes how entries are expected to leave the cache.
// Informational only: it categorizes log and metric output, it does not
// change behavior.
type InvalidationPattern string

const (
	InvalidationTTL        InvalidationPattern = "ttl"
	InvalidationLRU        InvalidationPattern = "lru"
	InvalidationDependency InvalidationPattern = "dependency"
	InvalidationEventBased InvalidationPattern = "event-based"
)

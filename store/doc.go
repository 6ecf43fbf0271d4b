// Package store defines the backing store contract consumed by the cache
// engine, plus three implementations.
//
// The [Store] interface has five operations: [Store.Get], [Store.Set],
// [Store.Delete], [Store.ListKeys], and [Store.Close]. All implementations
// satisfy this interface, so backends can be swapped without changing the
// engine or application code. Backends own TTL expiry: the engine assumes a
// key that has expired store-side reports not-found on Get.
//
//   - [NewInMemory] — In-process map guarded by a mutex. Fastest option with
//     zero serialization overhead. Values are stored as-is (no copying), so
//     mutations to stored pointers are visible through the store. Expired
//     entries are cleaned up by a background goroutine. Lost on process
//     restart.
//
//   - [NewRedis] — Backed by Redis using [github.com/redis/go-redis/v9].
//     Values are serialized to msgpack. Expiry uses native Redis TTL.
//     ListKeys uses SCAN with a MATCH pattern. An optional key prefix
//     ([WithPrefix]) supports namespacing multiple caches on the same Redis
//     instance. The caller owns the [redis.Client] lifecycle; Close is a
//     no-op. Each operation uses a per-query timeout ([DefaultQueryTimeout]).
//
//   - [NewSQLite] — Backed by a SQLite database using [modernc.org/sqlite]
//     (pure Go, no CGO). Values are serialized to msgpack and stored as
//     BLOBs. Supports both file-backed and ":memory:" modes. WAL mode is
//     enabled for concurrent read performance. ListKeys uses SQLite's GLOB
//     operator.
//
// ListKeys patterns use glob syntax: '*' matches any run of characters, '?'
// matches one character, and character classes are supported. The same
// pattern works across all three backends for the typical "prefix:*" shape.
//
// The Redis and SQLite backends serialize values with msgpack
// ([github.com/vmihailenco/msgpack/v5]) and return them from Get as []byte.
// The cache engine's generic helpers decode these transparently; callers
// using a Store directly can unmarshal themselves.
package store

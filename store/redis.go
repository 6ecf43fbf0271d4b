package store

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

type redisStore struct {
	client *redis.Client
	cfg    config
}

var _ Store = (*redisStore)(nil)

// NewRedis returns a new Store backed by Redis. Values are serialized to
// msgpack; expiry uses native Redis TTL. The caller owns the redis.Client
// lifecycle — Close is a no-op on the client.
func NewRedis(client *redis.Client, opts ...Option) Store {
	cfg := applyOptions(opts)
	return &redisStore{
		client: client,
		cfg:    cfg,
	}
}

func (s *redisStore) queryCtx(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, s.cfg.queryTimeout)
}

func (s *redisStore) prefixKey(key string) string {
	if s.cfg.prefix == "" {
		return key
	}
	return s.cfg.prefix + ":" + key
}

func (s *redisStore) stripPrefix(key string) string {
	if s.cfg.prefix == "" {
		return key
	}
	return strings.TrimPrefix(key, s.cfg.prefix+":")
}

func (s *redisStore) Get(ctx context.Context, key string) (bool, any, error) {
	qctx, cancel := s.queryCtx(ctx)
	defer cancel()
	data, err := s.client.Get(qctx, s.prefixKey(key)).Bytes()
	if err == redis.Nil {
		return false, nil, nil
	}
	if err != nil {
		return false, nil, err
	}
	return true, data, nil
}

func (s *redisStore) Set(ctx context.Context, key string, val any, expires time.Duration) error {
	if expires <= 0 {
		expires = s.cfg.defaultExpires
	}
	data, err := msgpack.Marshal(val)
	if err != nil {
		return err
	}
	qctx, cancel := s.queryCtx(ctx)
	defer cancel()
	return s.client.Set(qctx, s.prefixKey(key), data, expires).Err()
}

func (s *redisStore) Delete(ctx context.Context, key string) error {
	qctx, cancel := s.queryCtx(ctx)
	defer cancel()
	return s.client.Del(qctx, s.prefixKey(key)).Err()
}

func (s *redisStore) ListKeys(ctx context.Context, pattern string) ([]string, error) {
	qctx, cancel := s.queryCtx(ctx)
	defer cancel()
	var keys []string
	iter := s.client.Scan(qctx, 0, s.prefixKey(pattern), 0).Iterator()
	for iter.Next(qctx) {
		keys = append(keys, s.stripPrefix(iter.Val()))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

// Close is a no-op — the caller owns the redis.Client lifecycle.
func (s *redisStore) Close(_ context.Context) error {
	return nil
}

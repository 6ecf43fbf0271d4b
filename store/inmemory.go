package store

import (
	"context"
	"path"
	"sync"
	"time"
)

type entry struct {
	object  any
	expires time.Time
}

type inMemoryStore struct {
	ctx       context.Context
	cancel    context.CancelFunc
	data      map[string]*entry
	mutex     sync.Mutex
	waitGroup sync.WaitGroup
	once      sync.Once
	cfg       config
}

var _ Store = (*inMemoryStore)(nil)

func (s *inMemoryStore) Get(_ context.Context, key string) (bool, any, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	val, ok := s.data[key]
	if !ok {
		return false, nil, nil
	}
	if val.expires.Before(time.Now()) {
		delete(s.data, key)
		return false, nil, nil
	}
	return true, val.object, nil
}

func (s *inMemoryStore) Set(_ context.Context, key string, val any, expires time.Duration) error {
	if expires <= 0 {
		expires = s.cfg.defaultExpires
	}
	s.mutex.Lock()
	s.data[key] = &entry{val, time.Now().Add(expires)}
	s.mutex.Unlock()
	return nil
}

func (s *inMemoryStore) Delete(_ context.Context, key string) error {
	s.mutex.Lock()
	delete(s.data, key)
	s.mutex.Unlock()
	return nil
}

func (s *inMemoryStore) ListKeys(_ context.Context, pattern string) ([]string, error) {
	now := time.Now()
	s.mutex.Lock()
	defer s.mutex.Unlock()
	var keys []string
	for key, val := range s.data {
		if val.expires.Before(now) {
			continue
		}
		ok, err := path.Match(pattern, key)
		if err != nil {
			return nil, err
		}
		if ok {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (s *inMemoryStore) Close(_ context.Context) error {
	s.once.Do(func() {
		s.cancel()
		s.waitGroup.Wait()
	})
	return nil
}

func (s *inMemoryStore) run() {
	defer s.waitGroup.Done()
	ticker := time.NewTicker(s.cfg.expiryCheck)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			s.mutex.Lock()
			for key, val := range s.data {
				if val.expires.Before(now) {
					delete(s.data, key)
				}
			}
			s.mutex.Unlock()
		}
	}
}

// NewInMemory returns a new in-memory Store implementation. Expired entries
// are cleaned up by a background goroutine at the configured expiry check
// interval.
func NewInMemory(parent context.Context, opts ...Option) Store {
	cfg := applyOptions(opts)
	ctx, cancel := context.WithCancel(parent)
	s := &inMemoryStore{
		ctx:    ctx,
		cancel: cancel,
		data:   make(map[string]*entry),
		cfg:    cfg,
	}
	s.waitGroup.Add(1)
	go s.run()
	return s
}

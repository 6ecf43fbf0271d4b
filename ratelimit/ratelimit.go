// Package ratelimit provides the rate limiter collaborator consumed by the
// cache engine, plus a fixed-window in-memory implementation. The engine
// consults the limiter before doing any work on a read and fails fast when
// the decision is negative.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Decision is the outcome of a limit check.
type Decision struct {
	// Allowed reports whether the operation may proceed.
	Allowed bool
	// ResetAt is when the current window ends and the counter resets.
	ResetAt time.Time
}

// Limiter decides whether an operation keyed by a string may proceed.
type Limiter interface {
	CheckLimit(key string) Decision
}

// Config defines configuration for the fixed-window limiter.
type Config struct {
	// Limit is the maximum number of operations per key per window.
	Limit int

	// Window is the length of the counting window.
	Window time.Duration
}

// DefaultConfig returns a default configuration: 100 operations per key
// per minute.
func DefaultConfig() Config {
	return Config{
		Limit:  100,
		Window: time.Minute,
	}
}

type bucket struct {
	count       int
	windowStart time.Time
}

// Window is a fixed-window, per-key Limiter.
type Window struct {
	cfg       Config
	mu        sync.Mutex
	buckets   map[string]*bucket
	ctx       context.Context
	cancel    context.CancelFunc
	waitGroup sync.WaitGroup
	once      sync.Once
}

var _ Limiter = (*Window)(nil)

// NewWindow returns a fixed-window Limiter. Per-key counters reset when
// their window elapses; stale counters are pruned by a background goroutine.
// Call Close to stop the pruner.
func NewWindow(parent context.Context, cfg Config) *Window {
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultConfig().Limit
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultConfig().Window
	}
	ctx, cancel := context.WithCancel(parent)
	l := &Window{
		cfg:     cfg,
		buckets: make(map[string]*bucket),
		ctx:     ctx,
		cancel:  cancel,
	}
	l.waitGroup.Add(1)
	go l.run()
	return l
}

func (l *Window) CheckLimit(key string) Decision {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets[key]
	if !ok || now.Sub(b.windowStart) >= l.cfg.Window {
		b = &bucket{windowStart: now}
		l.buckets[key] = b
	}
	b.count++
	return Decision{
		Allowed: b.count <= l.cfg.Limit,
		ResetAt: b.windowStart.Add(l.cfg.Window),
	}
}

func (l *Window) run() {
	defer l.waitGroup.Done()
	ticker := time.NewTicker(l.cfg.Window)
	defer ticker.Stop()
	for {
		select {
		case <-l.ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			l.mu.Lock()
			for key, b := range l.buckets {
				if now.Sub(b.windowStart) >= l.cfg.Window {
					delete(l.buckets, key)
				}
			}
			l.mu.Unlock()
		}
	}
}

// Close stops the background pruner. Safe to call more than once.
func (l *Window) Close() error {
	l.once.Do(func() {
		l.cancel()
		l.waitGroup.Wait()
	})
	return nil
}

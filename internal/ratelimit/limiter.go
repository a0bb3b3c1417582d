package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Default limits used when Config leaves a field zero.
const (
	DefaultLimit         = 60
	DefaultWindow        = time.Minute
	DefaultSweepInterval = 5 * time.Minute
)

// Config controls a Limiter.
type Config struct {
	// Limit is the number of requests allowed per key per window.
	Limit int

	// Window is the length of one counting window.
	Window time.Duration

	// SweepInterval is how often Run removes expired windows.
	SweepInterval time.Duration
}

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Logger is the logging interface used by the limiter.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}

type window struct {
	start time.Time
	count int
}

// Limiter is a fixed-window request counter keyed by client and endpoint.
// It is safe for concurrent use.
type Limiter struct {
	cfg     Config
	mu      sync.Mutex
	windows map[string]*window
	logger  Logger
	now     func() time.Time
}

// New creates a Limiter. Zero fields in cfg take the package defaults.
func New(cfg Config) *Limiter {
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultLimit
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultSweepInterval
	}
	return &Limiter{
		cfg:     cfg,
		windows: make(map[string]*window),
		logger:  noopLogger{},
		now:     time.Now,
	}
}

// SetLogger sets the logger for the limiter.
func (l *Limiter) SetLogger(logger Logger) {
	l.logger = logger
}

// Allow records one request from client to endpoint and reports whether
// it is within the limit. Increment and check happen under one lock.
func (l *Limiter) Allow(client, endpoint string) Decision {
	key := client + " " + endpoint
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.cfg.Window {
		w = &window{start: now}
		l.windows[key] = w
	}

	if w.count >= l.cfg.Limit {
		return Decision{
			Allowed:    false,
			Limit:      l.cfg.Limit,
			RetryAfter: w.start.Add(l.cfg.Window).Sub(now),
		}
	}

	w.count++
	return Decision{
		Allowed:   true,
		Limit:     l.cfg.Limit,
		Remaining: l.cfg.Limit - w.count,
	}
}

// Sweep removes every window that has expired and returns how many were
// removed.
func (l *Limiter) Sweep() int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, w := range l.windows {
		if now.Sub(w.start) >= l.cfg.Window {
			delete(l.windows, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// Run sweeps on every SweepInterval tick until ctx is cancelled.
func (l *Limiter) Run(ctx context.Context) {
	ticker := time.NewTicker(l.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := l.Sweep(); n > 0 {
				l.logger.Debug("rate limit windows swept", "removed", n)
			}
		}
	}
}

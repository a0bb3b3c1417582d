package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter(t *testing.T, limit int) (*Limiter, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	l := New(Config{Limit: limit, Window: time.Minute})
	l.now = clock.Now
	return l, clock
}

func TestNew_Defaults(t *testing.T) {
	l := New(Config{})
	if l.cfg.Limit != DefaultLimit || l.cfg.Window != DefaultWindow || l.cfg.SweepInterval != DefaultSweepInterval {
		t.Errorf("cfg = %+v, want defaults", l.cfg)
	}
}

func TestAllow_Limit(t *testing.T) {
	l, _ := newTestLimiter(t, 3)

	for i := range 3 {
		d := l.Allow("10.0.0.1", "POST /auth/login")
		if !d.Allowed {
			t.Fatalf("request %d denied", i+1)
		}
		if d.Remaining != 2-i {
			t.Errorf("request %d Remaining = %d, want %d", i+1, d.Remaining, 2-i)
		}
	}

	d := l.Allow("10.0.0.1", "POST /auth/login")
	if d.Allowed {
		t.Fatal("4th request allowed")
	}
	if d.RetryAfter != time.Minute {
		t.Errorf("RetryAfter = %v, want 1m", d.RetryAfter)
	}
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(t, 1)

	if !l.Allow("10.0.0.1", "POST /auth/login").Allowed {
		t.Fatal("first request denied")
	}
	if !l.Allow("10.0.0.2", "POST /auth/login").Allowed {
		t.Error("other client denied")
	}
	if !l.Allow("10.0.0.1", "POST /auth/register").Allowed {
		t.Error("other endpoint denied")
	}
	if l.Allow("10.0.0.1", "POST /auth/login").Allowed {
		t.Error("same key allowed past limit")
	}
}

func TestAllow_WindowResets(t *testing.T) {
	l, clock := newTestLimiter(t, 1)

	l.Allow("c", "e")
	clock.Advance(30 * time.Second)
	d := l.Allow("c", "e")
	if d.Allowed {
		t.Fatal("allowed inside window")
	}
	if d.RetryAfter != 30*time.Second {
		t.Errorf("RetryAfter = %v, want 30s", d.RetryAfter)
	}

	clock.Advance(30 * time.Second)
	if !l.Allow("c", "e").Allowed {
		t.Error("denied after window elapsed")
	}
}

func TestSweep(t *testing.T) {
	l, clock := newTestLimiter(t, 5)

	l.Allow("old", "e")
	clock.Advance(45 * time.Second)
	l.Allow("new", "e")
	clock.Advance(20 * time.Second)

	if n := l.Sweep(); n != 1 {
		t.Errorf("Sweep() = %d, want 1", n)
	}
	if l.Len() != 1 {
		t.Errorf("Len() = %d, want 1", l.Len())
	}
}

func TestAllow_Concurrent(t *testing.T) {
	l, _ := newTestLimiter(t, 100)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 4 {
				if l.Allow("c", "e").Allowed {
					mu.Lock()
					allowed++
					mu.Unlock()
				}
				l.Sweep()
			}
		}()
	}
	wg.Wait()

	if allowed != 100 {
		t.Errorf("allowed = %d, want exactly 100", allowed)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	l := New(Config{SweepInterval: time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		l.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

package ratelimit

import (
	"testing"
	"time"
)

// fakeClock returns a limiter clock frozen at start, advanced by the test.
func fakeClock(l *Limiter) *time.Time {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	return &now
}

func TestNewLimiter(t *testing.T) {
	l := NewLimiter(60, time.Minute, 10)
	defer l.Close()
	if l.burst != 10 {
		t.Errorf("expected burst=10, got %d", l.burst)
	}
	if l.rate != 1 {
		t.Errorf("expected rate=1/s, got %v", l.rate)
	}
	t.Run("burst floor", func(t *testing.T) {
		l := NewLimiter(5, time.Minute, 0)
		defer l.Close()
		if l.burst != 1 {
			t.Errorf("expected burst=1, got %d", l.burst)
		}
	})
}

func TestLimiter_Allow(t *testing.T) {
	l := NewLimiter(5, time.Minute, 5)
	defer l.Close()
	fakeClock(l)

	for i := range 5 {
		result := l.Allow("k")
		if !result.Allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
		if result.Limit != 5 {
			t.Errorf("expected Limit=5, got %d", result.Limit)
		}
		if result.Remaining != 4-i {
			t.Errorf("request %d: Remaining=%d, want %d", i+1, result.Remaining, 4-i)
		}
	}

	result := l.Allow("k")
	if result.Allowed {
		t.Fatal("6th request should be rate limited")
	}
	if d := result.RetryAfter - 12*time.Second; d < -time.Millisecond || d > time.Millisecond {
		t.Errorf("RetryAfter = %v, want ~12s", result.RetryAfter)
	}
	if got := result.RetryAfterSeconds(); got != 12 {
		t.Errorf("RetryAfterSeconds() = %d, want 12", got)
	}
}

func TestLimiter_Refill(t *testing.T) {
	l := NewLimiter(60, time.Minute, 1)
	defer l.Close()
	now := fakeClock(l)

	if !l.Allow("k").Allowed {
		t.Fatal("first request should be allowed")
	}
	if l.Allow("k").Allowed {
		t.Fatal("second request should be refused")
	}
	*now = now.Add(time.Second)
	if !l.Allow("k").Allowed {
		t.Fatal("request after refill should be allowed")
	}
}

func TestLimiter_RefusedDoesNotConsume(t *testing.T) {
	l := NewLimiter(60, time.Minute, 1)
	defer l.Close()
	now := fakeClock(l)

	l.Allow("k")
	for range 10 {
		l.Allow("k")
	}
	*now = now.Add(time.Second)
	if !l.Allow("k").Allowed {
		t.Fatal("refused requests must not push back the refill")
	}
}

func TestLimiter_DifferentKeys(t *testing.T) {
	l := NewLimiter(5, time.Minute, 5)
	defer l.Close()
	fakeClock(l)

	for range 5 {
		l.Allow("key1")
	}
	if l.Allow("key1").Allowed {
		t.Error("key1 should be rate limited")
	}
	for range 5 {
		if !l.Allow("key2").Allowed {
			t.Error("key2 should not be rate limited")
		}
	}
}

func TestLimiter_Result(t *testing.T) {
	l := NewLimiter(10, time.Minute, 10)
	defer l.Close()
	now := fakeClock(l)

	result := l.Allow("k")
	if !result.Allowed {
		t.Error("first request should be allowed")
	}
	if result.RetryAfter != 0 || result.RetryAfterSeconds() != 0 {
		t.Errorf("RetryAfter should be 0 for allowed requests, got %v", result.RetryAfter)
	}
	// One token missing at 10/min refills in 6s.
	if d := result.ResetAt.Sub(*now) - 6*time.Second; d < -time.Millisecond || d > time.Millisecond {
		t.Errorf("ResetAt = %v, want ~%v", result.ResetAt, now.Add(6*time.Second))
	}
}

func TestLimiter_Cleanup(t *testing.T) {
	l := NewLimiter(60, time.Minute, 1)
	defer l.Close()
	now := fakeClock(l)

	l.Allow("idle")
	*now = now.Add(staleAfter + time.Second)
	l.Allow("busy")
	l.cleanup()
	if got := l.Len(); got != 1 {
		t.Fatalf("Len() = %d, want 1", got)
	}
	// The busy bucket is empty so it survives even once stale.
	*now = now.Add(staleAfter + time.Second)
	l.buckets["busy"].limiter.ReserveN(*now, 1)
	l.cleanup()
	if got := l.Len(); got != 1 {
		t.Fatalf("Len() = %d, want 1", got)
	}
}

func TestLimiter_CloseTwice(t *testing.T) {
	l := NewLimiter(1, time.Minute, 1)
	l.Close()
	l.Close()
}

package utils

import (
	"testing"
	"time"
)

func TestConstantBackoff(t *testing.T) {
	cb := NewConstantBackoff(100 * time.Millisecond)
	for attempt := 0; attempt < 5; attempt++ {
		if got := cb.NextDelay(attempt); got != 100*time.Millisecond {
			t.Fatalf("attempt %d: expected 100ms, got %v", attempt, got)
		}
	}
}

func TestExponentialBackoffGrowth(t *testing.T) {
	eb := NewExponentialBackoff(100*time.Millisecond, 10*time.Second, 2.0, false)

	if got := eb.NextDelay(0); got != 100*time.Millisecond {
		t.Fatalf("attempt 0: expected 100ms, got %v", got)
	}
	if got := eb.NextDelay(1); got != 200*time.Millisecond {
		t.Fatalf("attempt 1: expected 200ms, got %v", got)
	}
	if got := eb.NextDelay(3); got != 800*time.Millisecond {
		t.Fatalf("attempt 3: expected 800ms, got %v", got)
	}
}

func TestExponentialBackoffCapped(t *testing.T) {
	eb := NewExponentialBackoff(time.Second, 5*time.Second, 2.0, false)
	if got := eb.NextDelay(10); got != 5*time.Second {
		t.Fatalf("expected delay capped at 5s, got %v", got)
	}
}

func TestExponentialBackoffJitterBounds(t *testing.T) {
	eb := NewExponentialBackoff(time.Second, time.Minute, 2.0, true)
	for i := 0; i < 50; i++ {
		d := eb.NextDelay(0)
		if d < 500*time.Millisecond || d > 1500*time.Millisecond {
			t.Fatalf("jittered delay out of [0.5s,1.5s]: %v", d)
		}
	}
}

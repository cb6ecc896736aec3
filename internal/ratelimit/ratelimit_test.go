package ratelimit

import (
	"testing"
	"time"
)

func TestLimiterAllowsBurst(t *testing.T) {
	l := NewLimiter(10, 5)

	for i := 0; i < 5; i++ {
		if !l.Allow() {
			t.Fatalf("Expected burst token %d to be allowed", i)
		}
	}

	if l.Allow() {
		t.Error("Expected limiter to be exhausted after burst")
	}
}

func TestLimiterRefills(t *testing.T) {
	l := NewLimiter(100, 1)

	if !l.Allow() {
		t.Fatal("Expected first token to be allowed")
	}
	if l.Allow() {
		t.Fatal("Expected limiter to be exhausted")
	}

	time.Sleep(50 * time.Millisecond)

	if !l.Allow() {
		t.Error("Expected token after refill interval")
	}
}

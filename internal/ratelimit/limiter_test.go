package ratelimit

import (
	"testing"
	"time"
)

func TestLimiterDeniesPastCeiling(t *testing.T) {
	current := time.Unix(1_700_000_000, 0)
	limiter := New(60*time.Second, 30, WithClock(func() time.Time { return current }))

	for i := 1; i <= 30; i++ {
		if !limiter.Admit("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i)
		}
	}
	if limiter.Admit("10.0.0.1") {
		t.Fatal("31st request in the window should be denied")
	}
	if limiter.Admit("10.0.0.1") {
		t.Fatal("subsequent requests in the same window should stay denied")
	}
}

func TestLimiterResetsAfterWindow(t *testing.T) {
	current := time.Unix(1_700_000_000, 0)
	limiter := New(60*time.Second, 30, WithClock(func() time.Time { return current }))

	for i := 0; i < 31; i++ {
		limiter.Admit("10.0.0.1")
	}
	current = current.Add(61 * time.Second)
	if !limiter.Admit("10.0.0.1") {
		t.Fatal("request after the window elapsed should be allowed")
	}
}

func TestLimiterIsolatesIdentities(t *testing.T) {
	current := time.Unix(1_700_000_000, 0)
	limiter := New(60*time.Second, 1, WithClock(func() time.Time { return current }))

	if !limiter.Admit("10.0.0.1") {
		t.Fatal("first request should be allowed")
	}
	if limiter.Admit("10.0.0.1") {
		t.Fatal("second request from same identity should be denied")
	}
	if !limiter.Admit("10.0.0.2") {
		t.Fatal("other identities keep their own windows")
	}
}

func TestLimiterEmptyIdentityFallsBack(t *testing.T) {
	limiter := New(60*time.Second, 1)
	if !limiter.Admit("") {
		t.Fatal("empty identity should still be tracked")
	}
	if limiter.Admit("  ") {
		t.Fatal("blank identities share the fallback window")
	}
}

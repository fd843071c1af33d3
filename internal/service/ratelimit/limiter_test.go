package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestAllowConsumesTokens(t *testing.T) {
	l := New()
	for i := 0; i < 3; i++ {
		if !l.Allow("k", 3, 0) {
			t.Fatalf("allow %d should pass", i)
		}
	}
	if l.Allow("k", 3, 0) {
		t.Fatalf("bucket should be empty")
	}
}

func TestAllowKeysAreIndependent(t *testing.T) {
	l := New()
	if !l.Allow("a", 1, 0) {
		t.Fatalf("first token for a")
	}
	if l.Allow("a", 1, 0) {
		t.Fatalf("a should be exhausted")
	}
	if !l.Allow("b", 1, 0) {
		t.Fatalf("b has its own bucket")
	}
}

func TestAllowRefills(t *testing.T) {
	l := New()
	if !l.Allow("k", 1, 100) {
		t.Fatalf("first token")
	}
	if l.Allow("k", 1, 100) {
		t.Fatalf("bucket empty right after consume")
	}
	time.Sleep(30 * time.Millisecond)
	if !l.Allow("k", 1, 100) {
		t.Fatalf("bucket should have refilled")
	}
}

func TestWaitBlocksUntilToken(t *testing.T) {
	l := New()
	if err := l.Wait(context.Background(), "k", 1, 20); err != nil {
		t.Fatalf("first wait: %v", err)
	}
	start := time.Now()
	if err := l.Wait(context.Background(), "k", 1, 20); err != nil {
		t.Fatalf("second wait: %v", err)
	}
	if time.Since(start) < 40*time.Millisecond {
		t.Fatalf("wait returned before refill")
	}
}

func TestWaitHonorsContext(t *testing.T) {
	l := New()
	if err := l.Wait(context.Background(), "k", 1, 0.001); err != nil {
		t.Fatalf("first wait: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	if err := l.Wait(ctx, "k", 1, 0.001); err == nil {
		t.Fatalf("wait should fail when ctx expires")
	}
}

package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryCache_SetGetRoundTrip(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	got, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("expected hit, got %v", err)
	}
	if string(got) != "v" {
		t.Fatalf("expected %q, got %q", "v", got)
	}
}

func TestMemoryCache_MissReturnsSentinel(t *testing.T) {
	c := NewMemoryCache()

	_, err := c.Get(context.Background(), "absent")
	if !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}
}

func TestMemoryCache_ExpiredEntryIsAMiss(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	current := time.Now()
	c.now = func() time.Time { return current }

	_ = c.Set(ctx, "k", []byte("v"), time.Minute)

	current = current.Add(2 * time.Minute)

	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss after TTL, got %v", err)
	}
	if c.Len() != 0 {
		t.Fatalf("expected expired entry to be dropped, got %d entries", c.Len())
	}
	// A second read must behave identically.
	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss on repeat read, got %v", err)
	}
}

func TestMemoryCache_LastWriteWins(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	_ = c.Set(ctx, "k", []byte("old"), time.Minute)
	_ = c.Set(ctx, "k", []byte("new"), time.Minute)

	got, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("expected hit, got %v", err)
	}
	if string(got) != "new" {
		t.Fatalf("expected %q, got %q", "new", got)
	}
}

func TestCacheKey_NormalizesQuery(t *testing.T) {
	a := CacheKey("  Does Coffee   Improve MEMORY? ", "exa-search")
	b := CacheKey("does coffee improve memory?", "exa-search")
	if a != b {
		t.Fatalf("expected identical keys, got %q vs %q", a, b)
	}

	other := CacheKey("does coffee improve memory?", "wiki-context")
	if a == other {
		t.Fatal("expected distinct keys per agent")
	}
}

package cache

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestMemoryCacheHitMiss(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(WithTTL(time.Minute))

	// Miss
	if _, ok := c.Fetch(ctx, "rowguard.owner_tree"); ok {
		t.Fatal("expected cache miss")
	}

	// Save + Hit
	c.Save(ctx, "rowguard.owner_tree", "snapshot")
	got, ok := c.Fetch(ctx, "rowguard.owner_tree")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got != "snapshot" {
		t.Fatalf("expected snapshot, got %v", got)
	}
}

func TestMemoryCacheTTLExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(WithTTL(1 * time.Millisecond))

	c.Save(ctx, "k", 42)
	time.Sleep(5 * time.Millisecond)

	if _, ok := c.Fetch(ctx, "k"); ok {
		t.Fatal("expected cache miss after TTL expiry")
	}
}

func TestMemoryCacheNoTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	c.Save(ctx, "k", 42)
	time.Sleep(2 * time.Millisecond)

	if _, ok := c.Fetch(ctx, "k"); !ok {
		t.Fatal("expected entry without TTL to persist")
	}
}

func TestMemoryCacheDelete(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	c.Save(ctx, "a", 1)
	c.Save(ctx, "b", 2)

	c.Delete(ctx, "a")
	if _, ok := c.Fetch(ctx, "a"); ok {
		t.Fatal("a should be deleted")
	}
	if _, ok := c.Fetch(ctx, "b"); !ok {
		t.Fatal("b should still be cached")
	}

	c.DeleteAll(ctx)
	if _, ok := c.Fetch(ctx, "b"); ok {
		t.Fatal("b should be deleted after DeleteAll")
	}
}

func TestMemoryCacheMaxSize(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(WithMaxSize(2))

	for i := 0; i < 5; i++ {
		c.Save(ctx, fmt.Sprintf("key-%d", i), i)
	}

	c.mu.RLock()
	size := len(c.entries)
	c.mu.RUnlock()
	if size > 2 {
		t.Fatalf("expected max 2 entries, got %d", size)
	}
}

package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	ctx := context.Background()
	if err := mc.Set(ctx, "k", payload{Name: "a", Count: 3}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got payload
	if err := mc.Get(ctx, "k", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "a" || got.Count != 3 {
		t.Fatalf("unexpected value %+v", got)
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()

	var got string
	err := mc.Get(context.Background(), "absent", &got)
	if !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}
}

func TestMemoryCacheExpiration(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()

	ctx := context.Background()
	if err := mc.Set(ctx, "k", "v", 10*time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(30 * time.Millisecond)

	var got string
	if err := mc.Get(ctx, "k", &got); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected expiry miss, got %v", err)
	}
}

func TestMemoryCacheDeleteByPattern(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()

	ctx := context.Background()
	_ = mc.Set(ctx, SnapshotKey("leaderboard", "limit=50&period=30d"), "a", time.Minute)
	_ = mc.Set(ctx, SnapshotKey("leaderboard", "limit=10&period=7d"), "b", time.Minute)
	_ = mc.Set(ctx, SnapshotKey("trades", "limit=50&period=30d"), "c", time.Minute)

	if err := mc.DeleteByPattern(ctx, SnapshotPattern("leaderboard")); err != nil {
		t.Fatalf("delete by pattern: %v", err)
	}

	ok, _ := mc.Exists(ctx, SnapshotKey("leaderboard", "limit=50&period=30d"))
	if ok {
		t.Fatalf("leaderboard snapshots must be purged")
	}
	ok, _ = mc.Exists(ctx, SnapshotKey("trades", "limit=50&period=30d"))
	if !ok {
		t.Fatalf("other datasets must survive the purge")
	}
}

func TestMemoryCacheLRUEviction(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()

	ctx := context.Background()
	_ = mc.Set(ctx, "a", "1", time.Minute)
	time.Sleep(2 * time.Millisecond)
	_ = mc.Set(ctx, "b", "2", time.Minute)
	time.Sleep(2 * time.Millisecond)

	// Touch "a" so "b" becomes the LRU victim.
	var got string
	_ = mc.Get(ctx, "a", &got)
	time.Sleep(2 * time.Millisecond)
	_ = mc.Set(ctx, "c", "3", time.Minute)

	if ok, _ := mc.Exists(ctx, "b"); ok {
		t.Fatalf("expected LRU eviction of b")
	}
	if ok, _ := mc.Exists(ctx, "a"); !ok {
		t.Fatalf("recently used key must survive")
	}
}

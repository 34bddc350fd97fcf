package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"CapitolPulse/internal/domain/models"
	"CapitolPulse/pkg/cache"
)

func testStoreConfig() StoreConfig {
	return StoreConfig{
		Dataset:       "test",
		Staleness:     time.Hour,
		EvictionGrace: time.Hour,
		SweepInterval: time.Hour,
	}
}

func waitSnapshot(t *testing.T, ch chan Snapshot[int]) Snapshot[int] {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for snapshot")
		return Snapshot[int]{}
	}
}

func TestColdKeyCoalescesFetches(t *testing.T) {
	var calls int32
	gate := make(chan struct{})
	store := NewStore(testStoreConfig(), func(ctx context.Context, f models.FilterState) (int, error) {
		atomic.AddInt32(&calls, 1)
		<-gate
		return 42, nil
	})
	defer store.Close()

	f := models.FilterState{Period: models.Period30D, Limit: 50}
	updates := make(chan Snapshot[int], 16)

	var unsubs []func()
	for i := 0; i < 10; i++ {
		snap, unsub := store.Subscribe(f, func(s Snapshot[int]) { updates <- s })
		if snap.Status != StatusLoading {
			t.Fatalf("cold subscription must start loading, got %s", snap.Status)
		}
		if snap.HasData {
			t.Fatalf("cold subscription must not carry data")
		}
		unsubs = append(unsubs, unsub)
	}

	close(gate)
	for i := 0; i < 10; i++ {
		s := waitSnapshot(t, updates)
		if !s.HasData || s.Data != 42 {
			t.Fatalf("unexpected snapshot %+v", s)
		}
		if s.Status != StatusReady {
			t.Fatalf("expected ready, got %s", s.Status)
		}
	}

	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("expected exactly 1 fetch for 10 concurrent subscribers, got %d", n)
	}
	for _, unsub := range unsubs {
		unsub()
	}
}

func TestFreshEntryServedWithoutFetch(t *testing.T) {
	var calls int32
	store := NewStore(testStoreConfig(), func(ctx context.Context, f models.FilterState) (int, error) {
		atomic.AddInt32(&calls, 1)
		return 7, nil
	})
	defer store.Close()

	f := models.FilterState{Period: models.Period7D, Limit: 10}
	if _, err := store.Resolve(context.Background(), f); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	snap, unsub := store.Subscribe(f, func(Snapshot[int]) {})
	defer unsub()

	if !snap.HasData || snap.Data != 7 {
		t.Fatalf("expected cached data, got %+v", snap)
	}
	if snap.Stale {
		t.Fatalf("fresh entry must not be stale")
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("fresh subscription must not fetch, got %d calls", n)
	}
}

func TestStaleEntryServedThenRevalidated(t *testing.T) {
	var calls int32
	cfg := testStoreConfig()
	cfg.Staleness = 20 * time.Millisecond

	store := NewStore(cfg, func(ctx context.Context, f models.FilterState) (int, error) {
		return int(atomic.AddInt32(&calls, 1)), nil
	})
	defer store.Close()

	f := models.FilterState{Period: models.Period90D, Limit: 25}
	first, err := store.Resolve(context.Background(), f)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if first.Data != 1 {
		t.Fatalf("unexpected first payload %d", first.Data)
	}

	time.Sleep(50 * time.Millisecond)

	updates := make(chan Snapshot[int], 4)
	snap, unsub := store.Subscribe(f, func(s Snapshot[int]) { updates <- s })
	defer unsub()

	// Prior data is delivered synchronously, marked stale.
	if !snap.HasData || snap.Data != 1 {
		t.Fatalf("stale subscription must deliver prior data, got %+v", snap)
	}
	if !snap.Stale {
		t.Fatalf("expected stale snapshot")
	}

	fresh := waitSnapshot(t, updates)
	if fresh.Data != 2 || fresh.Stale {
		t.Fatalf("expected fresh revalidated data, got %+v", fresh)
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Fatalf("expected exactly one revalidation, got %d calls", n)
	}
}

func TestFailedRevalidationRetainsData(t *testing.T) {
	var failing atomic.Bool
	store := NewStore(testStoreConfig(), func(ctx context.Context, f models.FilterState) (int, error) {
		if failing.Load() {
			return 0, errors.New("upstream down")
		}
		return 9, nil
	})
	defer store.Close()

	f := models.FilterState{Period: models.Period1Y, Limit: 5}
	if _, err := store.Resolve(context.Background(), f); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	updates := make(chan Snapshot[int], 4)
	_, unsub := store.Subscribe(f, func(s Snapshot[int]) { updates <- s })
	defer unsub()

	failing.Store(true)
	store.Invalidate(f.Key())

	deadline := time.After(2 * time.Second)
	for {
		var snap Snapshot[int]
		select {
		case snap = <-updates:
		case <-deadline:
			t.Fatalf("timed out waiting for failed revalidation")
		}
		if snap.Err == nil {
			continue // the stale-transition notification
		}
		if !snap.HasData || snap.Data != 9 {
			t.Fatalf("failed revalidation must retain prior data, got %+v", snap)
		}
		if snap.Status != StatusReady {
			t.Fatalf("retained data must stay ready, got %s", snap.Status)
		}
		return
	}
}

func TestInvalidateWhereByChamber(t *testing.T) {
	var senateCalls, houseCalls int32
	store := NewStore(testStoreConfig(), func(ctx context.Context, f models.FilterState) (int, error) {
		if f.Chamber == models.ChamberSenate {
			return int(atomic.AddInt32(&senateCalls, 1)), nil
		}
		return int(atomic.AddInt32(&houseCalls, 1)), nil
	})
	defer store.Close()

	senate := models.FilterState{Period: models.Period30D, Chamber: models.ChamberSenate, Limit: 50}
	house := models.FilterState{Period: models.Period30D, Chamber: models.ChamberHouse, Limit: 50}

	senateUpdates := make(chan Snapshot[int], 4)
	_, unsubSenate := store.Subscribe(senate, func(s Snapshot[int]) { senateUpdates <- s })
	defer unsubSenate()
	_, unsubHouse := store.Subscribe(house, func(Snapshot[int]) {})
	defer unsubHouse()

	waitSnapshot(t, senateUpdates)

	store.InvalidateWhere(func(f models.FilterState) bool {
		return f.Chamber == models.ChamberSenate
	})

	deadline := time.After(2 * time.Second)
	for {
		var snap Snapshot[int]
		select {
		case snap = <-senateUpdates:
		case <-deadline:
			t.Fatalf("timed out waiting for senate refetch")
		}
		if snap.HasData && snap.Data == 2 && !snap.Stale {
			break
		}
	}

	if n := atomic.LoadInt32(&houseCalls); n != 1 {
		t.Fatalf("house entry must not refetch, got %d calls", n)
	}
}

func TestUnwatchedEntryEvictedAfterGrace(t *testing.T) {
	cfg := testStoreConfig()
	cfg.EvictionGrace = 10 * time.Millisecond
	cfg.SweepInterval = 10 * time.Millisecond

	store := NewStore(cfg, func(ctx context.Context, f models.FilterState) (int, error) {
		return 1, nil
	})
	defer store.Close()

	f := models.FilterState{Period: models.PeriodAll, Limit: 50}
	if _, err := store.Resolve(context.Background(), f); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("expected resident entry")
	}

	deadline := time.Now().Add(2 * time.Second)
	for store.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("entry was never evicted")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestColdStartFromSnapshotLayer(t *testing.T) {
	snapshots := cache.NewMemoryCache()
	defer snapshots.Close()

	f := models.FilterState{Period: models.Period30D, Limit: 50}
	stored := storedSnapshot[int]{Data: 33, FetchedAt: time.Now()}
	if err := snapshots.Set(context.Background(), cache.SnapshotKey("test", string(f.Key())), stored, time.Minute); err != nil {
		t.Fatalf("seed snapshot: %v", err)
	}

	var calls int32
	store := NewStore(testStoreConfig(), func(ctx context.Context, f models.FilterState) (int, error) {
		atomic.AddInt32(&calls, 1)
		return 0, nil
	}, WithSnapshots[int](snapshots))
	defer store.Close()

	snap, unsub := store.Subscribe(f, func(Snapshot[int]) {})
	defer unsub()

	if !snap.HasData || snap.Data != 33 {
		t.Fatalf("expected warm start from snapshot, got %+v", snap)
	}
	if n := atomic.LoadInt32(&calls); n != 0 {
		t.Fatalf("fresh snapshot must suppress the fetch, got %d calls", n)
	}
}

package usecase

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"CapitolPulse/internal/domain/models"
)

func TestBindingDeliversUpdates(t *testing.T) {
	store := NewStore(testStoreConfig(), func(ctx context.Context, f models.FilterState) (int, error) {
		return 5, nil
	})
	defer store.Close()

	b := NewBinding(store)
	defer b.Close()

	updates := make(chan Snapshot[int], 4)
	b.OnUpdate(func(s Snapshot[int]) { updates <- s })

	snap := b.Bind(models.FilterState{Period: models.Period30D, Limit: 50})
	if snap.Status != StatusLoading {
		t.Fatalf("expected loading, got %s", snap.Status)
	}

	got := waitSnapshot(t, updates)
	if !got.HasData || got.Data != 5 {
		t.Fatalf("unexpected update %+v", got)
	}
	if cur := b.Current(); cur.Data != 5 {
		t.Fatalf("current not advanced: %+v", cur)
	}
}

func TestRebindFreshEntryHasNoGap(t *testing.T) {
	store := NewStore(testStoreConfig(), func(ctx context.Context, f models.FilterState) (int, error) {
		if f.Period == models.Period90D {
			return 90, nil
		}
		return 30, nil
	})
	defer store.Close()

	// A prior visit leaves a fresh 90d entry behind.
	prior := models.FilterState{Period: models.Period90D, Limit: 50}
	if _, err := store.Resolve(context.Background(), prior); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	b := NewBinding(store)
	defer b.Close()
	b.Bind(models.FilterState{Period: models.Period30D, Limit: 50})

	// Switching back must not flash an empty state.
	snap := b.Bind(prior)
	if !snap.HasData || snap.Data != 90 {
		t.Fatalf("rebind to fresh key must deliver data immediately, got %+v", snap)
	}
}

func TestRebindDropsSupersededUpdates(t *testing.T) {
	slow := make(chan struct{})
	store := NewStore(testStoreConfig(), func(ctx context.Context, f models.FilterState) (int, error) {
		if f.Period == models.Period7D {
			<-slow
			return 7, nil
		}
		return 30, nil
	})
	defer store.Close()

	b := NewBinding(store)
	defer b.Close()

	var wrongKey atomic.Bool
	target := models.FilterState{Period: models.Period30D, Limit: 50}
	b.OnUpdate(func(s Snapshot[int]) {
		if s.Key != target.Key() {
			wrongKey.Store(true)
		}
	})

	b.Bind(models.FilterState{Period: models.Period7D, Limit: 50})
	b.Bind(target)

	// Let the superseded fetch finish; its update must not reach the view.
	close(slow)
	time.Sleep(100 * time.Millisecond)

	if wrongKey.Load() {
		t.Fatalf("superseded key update leaked through the binding")
	}
	if cur := b.Current(); cur.Key != target.Key() {
		t.Fatalf("current must track the bound key, got %q", cur.Key)
	}
}

func TestBindSameKeyIsNoop(t *testing.T) {
	var calls int32
	store := NewStore(testStoreConfig(), func(ctx context.Context, f models.FilterState) (int, error) {
		atomic.AddInt32(&calls, 1)
		return 1, nil
	})
	defer store.Close()

	b := NewBinding(store)
	defer b.Close()

	f := models.FilterState{Period: models.PeriodAll, Limit: 10}
	b.Bind(f)
	b.Bind(f)

	time.Sleep(50 * time.Millisecond)
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("rebinding the same key must not refetch, got %d calls", n)
	}
}

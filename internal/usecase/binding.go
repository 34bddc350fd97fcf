package usecase

import (
	"sync"

	"CapitolPulse/internal/domain/models"
)

// Binding ties one view (a websocket session, a widget) to the store entry
// of its current filter. Rebinding to a new filter is gapless: the old
// subscription is released only after the new one is registered, and updates
// for a superseded key are dropped instead of delivered out of order.
type Binding[T any] struct {
	store *Store[T]

	mu       sync.Mutex
	key      models.QueryKey
	current  Snapshot[T]
	onUpdate func(Snapshot[T])
	unsub    func()
	closed   bool
}

// NewBinding creates an unbound binding over the store.
func NewBinding[T any](store *Store[T]) *Binding[T] {
	return &Binding[T]{store: store}
}

// OnUpdate sets the update callback. Replaces any previous callback.
func (b *Binding[T]) OnUpdate(fn func(Snapshot[T])) {
	b.mu.Lock()
	b.onUpdate = fn
	b.mu.Unlock()
}

// Bind points the binding at the filter and returns the immediate snapshot.
// Binding to the already-bound key is a no-op returning the current view.
func (b *Binding[T]) Bind(f models.FilterState) Snapshot[T] {
	key := f.Key()

	b.mu.Lock()
	if b.closed {
		cur := b.current
		b.mu.Unlock()
		return cur
	}
	if b.unsub != nil && key == b.key {
		cur := b.current
		b.mu.Unlock()
		return cur
	}
	old := b.unsub
	// Advance the key before subscribing so updates for the previous filter
	// that race with the switch are dropped by deliver.
	b.key = key
	b.mu.Unlock()

	snap, unsub := b.store.Subscribe(f, func(s Snapshot[T]) {
		b.deliver(s)
	})

	b.mu.Lock()
	if b.closed || b.key != key {
		// Superseded while subscribing.
		b.mu.Unlock()
		unsub()
		if old != nil {
			old()
		}
		return snap
	}
	b.unsub = unsub
	b.current = snap
	b.mu.Unlock()

	if old != nil {
		old()
	}
	return snap
}

// Current returns the last snapshot seen for the bound key.
func (b *Binding[T]) Current() Snapshot[T] {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// Close releases the subscription. Further updates are dropped.
func (b *Binding[T]) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	unsub := b.unsub
	b.unsub = nil
	b.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

func (b *Binding[T]) deliver(snap Snapshot[T]) {
	b.mu.Lock()
	if b.closed || snap.Key != b.key {
		b.mu.Unlock()
		return
	}
	b.current = snap
	fn := b.onUpdate
	b.mu.Unlock()

	if fn != nil {
		fn(snap)
	}
}

package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"CapitolPulse/internal/domain/models"
	"CapitolPulse/internal/domain/repository"
	"CapitolPulse/pkg/cache"
	"CapitolPulse/pkg/logger"
)

// Status is the lifecycle state of a cached query.
type Status string

const (
	StatusLoading Status = "loading" // no data yet, fetch in flight
	StatusReady   Status = "ready"   // data available (possibly stale)
	StatusError   Status = "error"   // no data and the last fetch failed
)

// Snapshot is an immutable view of one cache entry at a point in time.
// HasData and Err are independent: a failed revalidation keeps the previous
// data and reports the error alongside it.
type Snapshot[T any] struct {
	Key       models.QueryKey
	Status    Status
	Data      T
	HasData   bool
	Stale     bool
	Err       error
	FetchedAt time.Time
}

// Fetcher loads the payload for one filter from the aggregation API.
type Fetcher[T any] func(ctx context.Context, f models.FilterState) (T, error)

// StoreConfig tunes one query store.
type StoreConfig struct {
	Dataset       string        // metric/log label and snapshot key namespace
	Staleness     time.Duration // age after which an entry is served stale and revalidated
	EvictionGrace time.Duration // how long an unwatched entry survives before eviction
	SweepInterval time.Duration // janitor tick
	SnapshotTTL   time.Duration // TTL in the snapshot cache layer
	ProbeTimeout  time.Duration // budget for one snapshot layer read
}

func (c *StoreConfig) applyDefaults() {
	if c.Staleness <= 0 {
		c.Staleness = time.Minute
	}
	if c.EvictionGrace <= 0 {
		c.EvictionGrace = 5 * time.Minute
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = time.Minute
	}
	if c.SnapshotTTL <= 0 {
		c.SnapshotTTL = 30 * time.Minute
	}
	if c.ProbeTimeout <= 0 {
		c.ProbeTimeout = 500 * time.Millisecond
	}
}

type entry[T any] struct {
	filter    models.FilterState
	data      T
	hasData   bool
	err       error
	fetchedAt time.Time
	invalid   bool // explicitly invalidated, stale regardless of age

	fetching    bool
	subscribers map[int]func(Snapshot[T])
	waiters     []chan Snapshot[T]
	lastUnsub   time.Time
}

// StoreOption configures a Store.
type StoreOption[T any] func(*Store[T])

// WithSnapshots enables snapshot write-through and cold-start warm reads.
func WithSnapshots[T any](svc cache.Service) StoreOption[T] {
	return func(s *Store[T]) {
		s.snapshots = svc
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics[T any](m repository.Metrics) StoreOption[T] {
	return func(s *Store[T]) {
		s.metrics = m
	}
}

// WithStoreLogger sets the store logger.
func WithStoreLogger[T any](l *logger.Logger) StoreOption[T] {
	return func(s *Store[T]) {
		s.logger = l
	}
}

// Store is a keyed stale-while-revalidate cache over one dataset of the
// aggregation API. Equal filters share one entry and at most one in-flight
// fetch. Entries outlive their last subscriber for a grace period, so
// returning to a recent filter is an instant hit.
type Store[T any] struct {
	cfg       StoreConfig
	fetch     Fetcher[T]
	snapshots cache.Service
	metrics   repository.Metrics
	logger    *logger.Logger

	mu      sync.Mutex
	entries map[models.QueryKey]*entry[T]
	nextSub int
	closed  bool

	done chan struct{}
	wg   sync.WaitGroup
}

// NewStore creates a query store and starts its eviction janitor.
func NewStore[T any](cfg StoreConfig, fetch Fetcher[T], opts ...StoreOption[T]) *Store[T] {
	cfg.applyDefaults()

	s := &Store[T]{
		cfg:     cfg,
		fetch:   fetch,
		entries: make(map[models.QueryKey]*entry[T]),
		done:    make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.wg.Add(1)
	go s.janitor()

	return s
}

// Subscribe registers fn for updates on the filter's entry and returns the
// current snapshot plus an unsubscribe func. A cold key starts loading
// immediately; a stale key is served as-is and revalidated in the
// background. fn is never called synchronously from Subscribe.
func (s *Store[T]) Subscribe(f models.FilterState, fn func(Snapshot[T])) (Snapshot[T], func()) {
	key, e := s.lookup(f)

	id := s.nextSub
	s.nextSub++
	e.subscribers[id] = fn

	if !e.hasData || s.staleLocked(e) {
		s.startFetchLocked(key, e)
	}
	snap := s.snapshotLocked(key, e)
	s.mu.Unlock()

	s.recordRead(snap)

	unsub := func() {
		s.mu.Lock()
		if cur, ok := s.entries[key]; ok {
			delete(cur.subscribers, id)
			if len(cur.subscribers) == 0 {
				cur.lastUnsub = time.Now()
			}
		}
		s.mu.Unlock()
	}
	return snap, unsub
}

// Resolve serves one request-scoped read. Fresh data returns immediately;
// stale data returns immediately and revalidates in the background; a miss
// joins the in-flight fetch and waits for it.
func (s *Store[T]) Resolve(ctx context.Context, f models.FilterState) (Snapshot[T], error) {
	key, e := s.lookup(f)

	if e.hasData {
		if s.staleLocked(e) {
			s.startFetchLocked(key, e)
		}
		snap := s.snapshotLocked(key, e)
		s.mu.Unlock()
		s.recordRead(snap)
		return snap, nil
	}

	ch := make(chan Snapshot[T], 1)
	e.waiters = append(e.waiters, ch)
	s.startFetchLocked(key, e)
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.RecordCacheMiss(s.cfg.Dataset)
	}

	select {
	case snap := <-ch:
		if !snap.HasData && snap.Err != nil {
			return snap, snap.Err
		}
		return snap, nil
	case <-ctx.Done():
		return Snapshot[T]{Key: key, Status: StatusLoading}, ctx.Err()
	}
}

// Invalidate marks one entry stale. Watched entries refetch immediately.
func (s *Store[T]) Invalidate(key models.QueryKey) {
	s.invalidate(func(k models.QueryKey, f models.FilterState) bool {
		return k == key
	})
}

// InvalidateWhere marks every entry whose filter matches pred as stale.
func (s *Store[T]) InvalidateWhere(pred func(models.FilterState) bool) {
	s.invalidate(func(k models.QueryKey, f models.FilterState) bool {
		return pred(f)
	})
}

// InvalidateAll marks every entry stale.
func (s *Store[T]) InvalidateAll() {
	s.invalidate(func(models.QueryKey, models.FilterState) bool {
		return true
	})
}

// Len reports the number of resident entries.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Close stops the janitor and waits for in-flight fetches to settle.
func (s *Store[T]) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	close(s.done)
	s.wg.Wait()
}

// lookup returns the entry for the filter, creating it if needed, with s.mu
// HELD on return. A cold key probes the snapshot layer before the entry is
// created, outside the lock so a slow Redis never blocks other keys.
func (s *Store[T]) lookup(f models.FilterState) (models.QueryKey, *entry[T]) {
	key := f.Key()

	s.mu.Lock()
	if e, ok := s.entries[key]; ok {
		return key, e
	}
	s.mu.Unlock()

	var warm *storedSnapshot[T]
	if s.snapshots != nil {
		warm = s.probeSnapshot(key)
	}

	s.mu.Lock()
	if e, ok := s.entries[key]; ok {
		// Lost the creation race; the probe result is discarded.
		return key, e
	}

	e := &entry[T]{
		filter:      f,
		subscribers: make(map[int]func(Snapshot[T])),
		lastUnsub:   time.Now(),
	}
	if warm != nil {
		e.data = warm.Data
		e.hasData = true
		e.fetchedAt = warm.FetchedAt
	}
	s.entries[key] = e
	return key, e
}

func (s *Store[T]) staleLocked(e *entry[T]) bool {
	return e.invalid || time.Since(e.fetchedAt) > s.cfg.Staleness
}

func (s *Store[T]) snapshotLocked(key models.QueryKey, e *entry[T]) Snapshot[T] {
	snap := Snapshot[T]{
		Key:       key,
		Data:      e.data,
		HasData:   e.hasData,
		Err:       e.err,
		FetchedAt: e.fetchedAt,
	}
	switch {
	case e.hasData:
		snap.Status = StatusReady
		snap.Stale = s.staleLocked(e)
	case e.err != nil && !e.fetching:
		snap.Status = StatusError
	default:
		snap.Status = StatusLoading
	}
	return snap
}

// startFetchLocked spawns one fetch for the entry unless one is already in
// flight, in which case the request coalesces onto it.
func (s *Store[T]) startFetchLocked(key models.QueryKey, e *entry[T]) {
	if e.fetching {
		if s.metrics != nil {
			s.metrics.RecordCoalesced(s.cfg.Dataset)
		}
		return
	}
	e.fetching = true

	filter := e.filter
	s.wg.Add(1)
	go s.runFetch(key, filter)
}

func (s *Store[T]) runFetch(key models.QueryKey, f models.FilterState) {
	defer s.wg.Done()

	start := time.Now()
	data, err := s.fetch(context.Background(), f)
	elapsed := time.Since(start)

	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		// Evicted mid-flight. The result is still worth keeping: the next
		// read of this key becomes a hit instead of a refetch.
		e = &entry[T]{
			filter:      f,
			subscribers: make(map[int]func(Snapshot[T])),
			lastUnsub:   time.Now(),
		}
		s.entries[key] = e
	}
	e.fetching = false
	if err != nil {
		e.err = err
	} else {
		e.data = data
		e.hasData = true
		e.err = nil
		e.invalid = false
		e.fetchedAt = time.Now()
	}
	snap := s.snapshotLocked(key, e)
	subs := make([]func(Snapshot[T]), 0, len(e.subscribers))
	for _, fn := range e.subscribers {
		subs = append(subs, fn)
	}
	waiters := e.waiters
	e.waiters = nil
	s.mu.Unlock()

	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordFetchError(s.cfg.Dataset, models.KindOf(err))
		}
		if s.logger != nil {
			s.logger.Warn("fetch failed",
				logger.String("dataset", s.cfg.Dataset),
				logger.String("key", string(key)),
				logger.Error(err))
		}
	} else {
		if s.metrics != nil {
			s.metrics.RecordFetchLatency(s.cfg.Dataset, elapsed.Seconds())
		}
		s.storeSnapshot(key, data, snap.FetchedAt)
	}

	for _, ch := range waiters {
		ch <- snap
	}
	for _, fn := range subs {
		fn(snap)
	}
}

func (s *Store[T]) invalidate(match func(models.QueryKey, models.FilterState) bool) {
	var notify []func()

	s.mu.Lock()
	for key, e := range s.entries {
		if !match(key, e.filter) {
			continue
		}
		e.invalid = true
		if s.metrics != nil {
			s.metrics.RecordInvalidation(s.cfg.Dataset)
		}
		if len(e.subscribers) > 0 {
			// Push the stale view first so watchers see the transition,
			// then refetch.
			snap := s.snapshotLocked(key, e)
			for _, fn := range e.subscribers {
				fn := fn
				notify = append(notify, func() { fn(snap) })
			}
			s.startFetchLocked(key, e)
		}
	}
	s.mu.Unlock()

	for _, fn := range notify {
		fn()
	}
}

func (s *Store[T]) recordRead(snap Snapshot[T]) {
	if s.metrics == nil {
		return
	}
	if snap.HasData {
		s.metrics.RecordCacheHit(s.cfg.Dataset, snap.Stale)
	} else {
		s.metrics.RecordCacheMiss(s.cfg.Dataset)
	}
}

func (s *Store[T]) janitor() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			s.sweep(now)
		}
	}
}

func (s *Store[T]) sweep(now time.Time) {
	s.mu.Lock()
	for key, e := range s.entries {
		if len(e.subscribers) > 0 || e.fetching {
			continue
		}
		if now.Sub(e.lastUnsub) <= s.cfg.EvictionGrace {
			continue
		}
		delete(s.entries, key)
		if s.metrics != nil {
			s.metrics.RecordEviction(s.cfg.Dataset)
		}
	}
	s.mu.Unlock()
}

// storedSnapshot is the snapshot layer record.
type storedSnapshot[T any] struct {
	Data      T         `json:"data"`
	FetchedAt time.Time `json:"fetched_at"`
}

func (s *Store[T]) probeSnapshot(key models.QueryKey) *storedSnapshot[T] {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ProbeTimeout)
	defer cancel()

	var stored storedSnapshot[T]
	err := s.snapshots.Get(ctx, cache.SnapshotKey(s.cfg.Dataset, string(key)), &stored)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) && s.logger != nil {
			s.logger.Debug("snapshot probe failed",
				logger.String("dataset", s.cfg.Dataset),
				logger.Error(err))
		}
		return nil
	}
	return &stored
}

func (s *Store[T]) storeSnapshot(key models.QueryKey, data T, fetchedAt time.Time) {
	if s.snapshots == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ProbeTimeout)
	defer cancel()

	stored := storedSnapshot[T]{Data: data, FetchedAt: fetchedAt}
	if err := s.snapshots.Set(ctx, cache.SnapshotKey(s.cfg.Dataset, string(key)), stored, s.cfg.SnapshotTTL); err != nil {
		if s.logger != nil {
			s.logger.Debug("snapshot write failed",
				logger.String("dataset", s.cfg.Dataset),
				logger.Error(err))
		}
	}
}

package repository

import (
	"context"

	"CapitolPulse/internal/domain/models"
)

// Aggregator is the read-only aggregation API. Each call issues exactly one
// logical network request; retries and caching live in the query store.
type Aggregator interface {
	Leaderboard(ctx context.Context, f models.FilterState) (*models.LeaderboardPayload, error)
	Sectors(ctx context.Context, f models.FilterState) (*models.SectorPayload, error)
	Trades(ctx context.Context, f models.FilterState) ([]models.Trade, error)
}

// Metrics records query pipeline events.
type Metrics interface {
	RecordCacheHit(dataset string, stale bool)
	RecordCacheMiss(dataset string)
	RecordCoalesced(dataset string)
	RecordEviction(dataset string)
	RecordInvalidation(dataset string)
	RecordFetchError(dataset, kind string)
	RecordFetchLatency(dataset string, seconds float64)
}

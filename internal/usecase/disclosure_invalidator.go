package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"CapitolPulse/internal/domain/models"
	"CapitolPulse/pkg/cache"
	"CapitolPulse/pkg/logger"
)

// DisclosureEvent announces that new trade disclosures were ingested
// upstream. Chamber narrows which cached views could have changed; empty
// means unknown, which invalidates everything.
type DisclosureEvent struct {
	Chamber models.Chamber `json:"chamber,omitempty"`
	Tickers []string       `json:"tickers,omitempty"`
	Count   int            `json:"count,omitempty"`
}

// DisclosureInvalidator consumes disclosure events and marks the affected
// query entries stale. Watched entries revalidate immediately; idle ones
// pick up fresh data on their next read. Snapshot records are purged so a
// cold start cannot resurrect pre-disclosure data.
type DisclosureInvalidator struct {
	topic       string
	leaderboard *Store[*models.LeaderboardPayload]
	sectors     *Store[*models.SectorPayload]
	trades      *Store[[]models.Trade]
	snapshots   cache.Service
	logger      *logger.Logger
}

// NewDisclosureInvalidator creates the handler for the disclosure topic.
func NewDisclosureInvalidator(
	topic string,
	leaderboard *Store[*models.LeaderboardPayload],
	sectors *Store[*models.SectorPayload],
	trades *Store[[]models.Trade],
	snapshots cache.Service,
	l *logger.Logger,
) *DisclosureInvalidator {
	return &DisclosureInvalidator{
		topic:       topic,
		leaderboard: leaderboard,
		sectors:     sectors,
		trades:      trades,
		snapshots:   snapshots,
		logger:      l,
	}
}

// Topic returns the subscribed Kafka topic.
func (h *DisclosureInvalidator) Topic() string {
	return h.topic
}

// Handle processes one disclosure event.
func (h *DisclosureInvalidator) Handle(ctx context.Context, data []byte) error {
	var event DisclosureEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return fmt.Errorf("decode disclosure event: %w", err)
	}

	matches := func(f models.FilterState) bool {
		if event.Chamber.Unrestricted() || f.Chamber.Unrestricted() {
			return true
		}
		return f.Chamber == event.Chamber
	}

	h.leaderboard.InvalidateWhere(matches)
	h.trades.InvalidateWhere(matches)
	// Sector aggregates span both chambers.
	h.sectors.InvalidateAll()

	if h.snapshots != nil {
		for _, dataset := range []string{"leaderboard", "sectors", "trades"} {
			if err := h.snapshots.DeleteByPattern(ctx, cache.SnapshotPattern(dataset)); err != nil {
				h.logger.Warn("snapshot purge failed",
					logger.String("dataset", dataset),
					logger.Error(err))
			}
		}
	}

	h.logger.Info("disclosure event applied",
		logger.String("chamber", string(event.Chamber)),
		logger.Int("count", event.Count))
	return nil
}

package models

import (
	"sort"

	"github.com/shopspring/decimal"
)

// LeaderboardEntry is one official's aggregated trading activity. Entries
// arrive in rank order as returned by the aggregator.
//
// BuyCount+SellCount may be below TradeCount: trades with unknown direction
// are excluded from both.
type LeaderboardEntry struct {
	ID           int64            `json:"id"`
	Name         string           `json:"name"`
	Chamber      Chamber          `json:"chamber"`
	Party        string           `json:"party,omitempty"`
	State        string           `json:"state,omitempty"`
	TradeCount   int              `json:"trade_count"`
	BuyCount     int              `json:"buy_count"`
	SellCount    int              `json:"sell_count"`
	AvgTradeSize *decimal.Decimal `json:"avg_trade_size"`
}

// LeaderboardPayload is the response of GET /leaderboard.
type LeaderboardPayload struct {
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
	Count       int                `json:"count"`
}

// SectorStat is one aggregate bucket keyed by ticker, ordered by magnitude
// descending within a payload.
type SectorStat struct {
	Ticker     string          `json:"ticker"`
	TradeCount int             `json:"trade_count"`
	Volume     decimal.Decimal `json:"volume"`
}

// SectorPayload is the response of GET /stats/sectors.
type SectorPayload struct {
	Tickers []SectorStat `json:"tickers"`
}

// Normalize re-sorts tickers by volume descending. The aggregator already
// orders them, but downstream slicing depends on the order, so it is not
// trusted blindly.
func (p *SectorPayload) Normalize() *SectorPayload {
	sort.SliceStable(p.Tickers, func(i, j int) bool {
		return p.Tickers[i].Volume.GreaterThan(p.Tickers[j].Volume)
	})
	return p
}

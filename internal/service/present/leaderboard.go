package present

import (
	"fmt"
	"sort"

	"CapitolPulse/internal/domain/models"
)

// SortKey selects a leaderboard table sort column. Empty keeps the
// aggregator's rank order.
type SortKey string

const (
	SortNone    SortKey = ""
	SortTrades  SortKey = "trades"
	SortBuys    SortKey = "buys"
	SortSells   SortKey = "sells"
	SortAvgSize SortKey = "avg_size"
)

// TableConfig is the leaderboard table view configuration.
type TableConfig struct {
	Sort SortKey
	Dir  string // asc or desc; defaults to desc
}

// TableRow is one rendered leaderboard row.
type TableRow struct {
	Rank         int    `json:"rank"`
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Chamber      string `json:"chamber"`
	Party        string `json:"party,omitempty"`
	State        string `json:"state,omitempty"`
	Trades       int    `json:"trades"`
	Buys         int    `json:"buys"`
	Sells        int    `json:"sells"`
	BuyRatio     string `json:"buy_ratio"`
	AvgTradeSize string `json:"avg_trade_size"`
}

// LeaderboardTable renders the payload into ranked rows. With no sort
// requested, rank is the 1-based position in the payload's own order. A
// requested sort re-ranks with a stable sort, so equal keys keep their
// upstream relative order.
func LeaderboardTable(payload *models.LeaderboardPayload, cfg TableConfig) []TableRow {
	if payload == nil {
		return nil
	}

	entries := make([]models.LeaderboardEntry, len(payload.Leaderboard))
	copy(entries, payload.Leaderboard)

	if cfg.Sort != SortNone {
		asc := cfg.Dir == "asc"
		sort.SliceStable(entries, func(i, j int) bool {
			a, b := entries[i], entries[j]
			// Absent averages sink to the bottom in either direction, so the
			// asc/desc flip only applies to present values.
			if cfg.Sort == SortAvgSize {
				switch {
				case a.AvgTradeSize == nil:
					return false
				case b.AvgTradeSize == nil:
					return true
				}
			}
			less := entryLess(a, b, cfg.Sort)
			if asc {
				return less == lessBefore
			}
			return less == lessAfter
		})
	}

	rows := make([]TableRow, len(entries))
	for i, e := range entries {
		rows[i] = TableRow{
			Rank:         i + 1,
			ID:           e.ID,
			Name:         e.Name,
			Chamber:      string(e.Chamber),
			Party:        e.Party,
			State:        e.State,
			Trades:       e.TradeCount,
			Buys:         e.BuyCount,
			Sells:        e.SellCount,
			BuyRatio:     buyRatio(e),
			AvgTradeSize: avgTradeSize(e),
		}
	}
	return rows
}

type ordering int

const (
	lessBefore ordering = iota - 1
	lessEqual
	lessAfter
)

// entryLess orders a before b ascending on the sort column. Nil averages are
// handled by the caller before the direction flip.
func entryLess(a, b models.LeaderboardEntry, key SortKey) ordering {
	switch key {
	case SortBuys:
		return cmpInt(a.BuyCount, b.BuyCount)
	case SortSells:
		return cmpInt(a.SellCount, b.SellCount)
	case SortAvgSize:
		return ordering(a.AvgTradeSize.Cmp(*b.AvgTradeSize))
	default:
		return cmpInt(a.TradeCount, b.TradeCount)
	}
}

func cmpInt(a, b int) ordering {
	switch {
	case a < b:
		return lessBefore
	case a > b:
		return lessAfter
	default:
		return lessEqual
	}
}

func buyRatio(e models.LeaderboardEntry) string {
	total := e.BuyCount + e.SellCount
	if total == 0 {
		return NotAvailable
	}
	return fmt.Sprintf("%.1f%%", 100*float64(e.BuyCount)/float64(total))
}

func avgTradeSize(e models.LeaderboardEntry) string {
	if e.AvgTradeSize == nil {
		return NotAvailable
	}
	return FormatMoney(*e.AvgTradeSize)
}

// Series is a label/value chart series.
type Series struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// LeaderboardSeries slices the top N entries into a trade-count series. N is
// a view parameter: every width reuses the same payload, and the result is
// always a prefix of the full series.
func LeaderboardSeries(payload *models.LeaderboardPayload, topN int) Series {
	if payload == nil {
		return Series{}
	}

	entries := payload.Leaderboard
	if topN > 0 && topN < len(entries) {
		entries = entries[:topN]
	}

	s := Series{
		Labels: make([]string, len(entries)),
		Values: make([]float64, len(entries)),
	}
	for i, e := range entries {
		s.Labels[i] = e.Name
		s.Values[i] = float64(e.TradeCount)
	}
	return s
}

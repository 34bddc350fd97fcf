package present

import "CapitolPulse/internal/domain/models"

// Summary is the quick-lookup widget view over a leaderboard payload.
type Summary struct {
	Officials   int    `json:"officials"`
	TotalTrades int    `json:"total_trades"`
	TotalBuys   int    `json:"total_buys"`
	TotalSells  int    `json:"total_sells"`
	TopTrader   string `json:"top_trader,omitempty"`
}

// Summarize folds the leaderboard into widget totals. The top trader is the
// payload's first entry, which is rank 1 in the aggregator's order.
func Summarize(payload *models.LeaderboardPayload) Summary {
	if payload == nil {
		return Summary{}
	}

	s := Summary{Officials: payload.Count}
	if s.Officials == 0 {
		s.Officials = len(payload.Leaderboard)
	}
	for _, e := range payload.Leaderboard {
		s.TotalTrades += e.TradeCount
		s.TotalBuys += e.BuyCount
		s.TotalSells += e.SellCount
	}
	if len(payload.Leaderboard) > 0 {
		s.TopTrader = payload.Leaderboard[0].Name
	}
	return s
}

package present

import "CapitolPulse/internal/domain/models"

// TradeRow is one rendered disclosure row.
type TradeRow struct {
	ID              int64  `json:"id"`
	Ticker          string `json:"ticker"`
	Type            string `json:"type"`
	Amount          string `json:"amount"`
	Politician      string `json:"politician"`
	Chamber         string `json:"chamber"`
	Party           string `json:"party,omitempty"`
	TransactionDate string `json:"transaction_date"`
	DisclosureDate  string `json:"disclosure_date"`
	DelayDays       int    `json:"delay_days"`
	Flagged         bool   `json:"flagged,omitempty"`
}

// TradeRows renders the disclosed-trade feed. Malformed records (disclosure
// predating the transaction) are flagged, never dropped.
func TradeRows(trades []models.Trade) []TradeRow {
	rows := make([]TradeRow, len(trades))
	for i, t := range trades {
		rows[i] = TradeRow{
			ID:              t.ID,
			Ticker:          t.Ticker,
			Type:            string(t.TransactionType),
			Amount:          FormatAmountRange(t.AmountMin, t.AmountMax),
			Politician:      t.Politician.Name,
			Chamber:         string(t.Politician.Chamber),
			Party:           t.Politician.Party,
			TransactionDate: formatDate(t.TransactionDate),
			DisclosureDate:  formatDate(t.DisclosureDate),
			DelayDays:       t.DisclosureDelayDays,
			Flagged:         t.Malformed(),
		}
	}
	return rows
}

func formatDate(d models.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

package present

import (
	"encoding/json"
	"testing"

	"CapitolPulse/internal/domain/models"

	"github.com/shopspring/decimal"
)

func decimalFrom(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func tradeFromJSON(t *testing.T, raw string) models.Trade {
	t.Helper()
	var trade models.Trade
	if err := json.Unmarshal([]byte(raw), &trade); err != nil {
		t.Fatalf("unmarshal trade: %v", err)
	}
	return trade
}

func TestTradeRowsFlagsMalformedRecords(t *testing.T) {
	trades := []models.Trade{
		tradeFromJSON(t, `{"id":1,"ticker":"AAPL","transaction_type":"buy","amount_min":"1000","amount_max":"15000","transaction_date":"2026-01-05","disclosure_date":"2026-01-20","disclosure_delay_days":15,"politician":{"name":"A","chamber":"senate"}}`),
		tradeFromJSON(t, `{"id":2,"ticker":"MSFT","transaction_type":"sell","transaction_date":"2026-02-10","disclosure_date":"2026-02-01","disclosure_delay_days":-9,"politician":{"name":"B","chamber":"house"}}`),
	}

	rows := TradeRows(trades)
	if len(rows) != 2 {
		t.Fatalf("malformed records must not be dropped, got %d rows", len(rows))
	}
	if rows[0].Flagged {
		t.Fatalf("valid record must not be flagged")
	}
	if !rows[1].Flagged {
		t.Fatalf("disclosure before transaction must be flagged")
	}
	if rows[1].Amount != AmountUnknown {
		t.Fatalf("missing bounds must render %q, got %q", AmountUnknown, rows[1].Amount)
	}
	if rows[0].TransactionDate != "2026-01-05" {
		t.Fatalf("unexpected transaction date %q", rows[0].TransactionDate)
	}
}

func TestSectorSeriesTopN(t *testing.T) {
	payload := &models.SectorPayload{
		Tickers: []models.SectorStat{
			{Ticker: "NVDA", TradeCount: 40, Volume: decimalFrom(t, "9000000")},
			{Ticker: "AAPL", TradeCount: 30, Volume: decimalFrom(t, "5000000")},
			{Ticker: "TSLA", TradeCount: 20, Volume: decimalFrom(t, "1000000")},
		},
	}

	s := SectorSeries(payload, 2)
	if len(s.Labels) != 2 || s.Labels[0] != "NVDA" || s.Labels[1] != "AAPL" {
		t.Fatalf("unexpected top-2 %v", s.Labels)
	}

	full := SectorSeries(payload, 0)
	if len(full.Labels) != 3 {
		t.Fatalf("topN=0 must keep everything, got %d", len(full.Labels))
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(samplePayload())
	if s.Officials != 2 || s.TotalTrades != 18 || s.TotalBuys != 14 || s.TotalSells != 4 {
		t.Fatalf("unexpected summary %+v", s)
	}
	if s.TopTrader != "A" {
		t.Fatalf("top trader must be the first ranked entry, got %q", s.TopTrader)
	}
}

package models

import (
	"encoding/json"
	"fmt"
	"time"

	"CapitolPulse/pkg/util"

	"github.com/shopspring/decimal"
)

// Date is a calendar date as the aggregator serializes it ("2006-01-02",
// with RFC3339 and unix-seconds fallbacks).
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		d.Time = t
		return nil
	}
	if t, ok := util.ParseTime(s); ok {
		d.Time = t
		return nil
	}
	return fmt.Errorf("invalid date %q", s)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(d.Format("2006-01-02"))
}

// TransactionType is the disclosed trade direction.
type TransactionType string

const (
	TransactionBuy  TransactionType = "buy"
	TransactionSell TransactionType = "sell"
)

// Politician identifies the official behind a trade.
type Politician struct {
	Name    string  `json:"name"`
	Party   string  `json:"party,omitempty"`
	Chamber Chamber `json:"chamber"`
	State   string  `json:"state,omitempty"`
}

// Trade is one disclosed transaction. Disclosure rules only require an
// amount range, so AmountMin/AmountMax may each be absent.
type Trade struct {
	ID                  int64            `json:"id"`
	Ticker              string           `json:"ticker"`
	TransactionType     TransactionType  `json:"transaction_type"`
	AmountMin           *decimal.Decimal `json:"amount_min"`
	AmountMax           *decimal.Decimal `json:"amount_max"`
	TransactionDate     Date             `json:"transaction_date"`
	DisclosureDate      Date             `json:"disclosure_date"`
	DisclosureDelayDays int              `json:"disclosure_delay_days"`
	Politician          Politician       `json:"politician"`
}

// Malformed reports a record violating disclosure_date >= transaction_date.
// Such rows are kept and flagged downstream, never dropped.
func (t Trade) Malformed() bool {
	if t.DisclosureDelayDays < 0 {
		return true
	}
	if t.TransactionDate.IsZero() || t.DisclosureDate.IsZero() {
		return false
	}
	return t.DisclosureDate.Before(t.TransactionDate.Time)
}

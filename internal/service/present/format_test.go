package present

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatAmountRangeBothBounds(t *testing.T) {
	got := FormatAmountRange(dec(1000000), dec(5000000))
	if got != "$1,000,000 - $5,000,000" {
		t.Fatalf("unexpected range %q", got)
	}
}

func TestFormatAmountRangeSingleBound(t *testing.T) {
	if got := FormatAmountRange(dec(1000000), nil); got != "$1,000,000" {
		t.Fatalf("unexpected min-only %q", got)
	}
	if got := FormatAmountRange(nil, dec(15000)); got != "$15,000" {
		t.Fatalf("unexpected max-only %q", got)
	}
	if got := FormatAmountRange(dec(1000), dec(1000)); got != "$1,000" {
		t.Fatalf("equal bounds must collapse, got %q", got)
	}
}

func TestFormatAmountRangeUnknown(t *testing.T) {
	if got := FormatAmountRange(nil, nil); got != AmountUnknown {
		t.Fatalf("unexpected %q", got)
	}
}

func TestFormatMoney(t *testing.T) {
	cases := map[string]string{
		"0":         "$0",
		"999":       "$999",
		"1000":      "$1,000",
		"1234567":   "$1,234,567",
		"1500.50":   "$1,500.50",
		"10.5":      "$10.50",
		"2500.25":   "$2,500.25",
		"-25000":    "-$25,000",
		"100000000": "$100,000,000",
	}
	for in, want := range cases {
		d, err := decimal.NewFromString(in)
		if err != nil {
			t.Fatalf("bad case %q: %v", in, err)
		}
		if got := FormatMoney(d); got != want {
			t.Fatalf("FormatMoney(%s) = %q, want %q", in, got, want)
		}
	}
}

package present

import (
	"strings"

	"github.com/shopspring/decimal"
)

// NotAvailable renders absent numeric values. Nulls are never coerced to 0,
// which would distort averages and ratios.
const NotAvailable = "N/A"

// AmountUnknown renders a trade whose disclosure carries no amount range.
const AmountUnknown = "Amount Unknown"

// FormatAmountRange renders a disclosed amount range. Disclosure rules only
// require a range, so either bound may be absent.
func FormatAmountRange(min, max *decimal.Decimal) string {
	switch {
	case min == nil && max == nil:
		return AmountUnknown
	case min == nil:
		return FormatMoney(*max)
	case max == nil || min.Equal(*max):
		return FormatMoney(*min)
	default:
		return FormatMoney(*min) + " - " + FormatMoney(*max)
	}
}

// FormatMoney renders a dollar amount with thousands separators. Whole
// amounts drop the cents, fractional ones always show two digits.
func FormatMoney(d decimal.Decimal) string {
	neg := d.IsNegative()
	abs := d.Abs().Truncate(2)

	s := abs.String()
	if !abs.IsInteger() {
		s = abs.StringFixed(2)
	}

	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	b.WriteString(frac)
	return b.String()
}

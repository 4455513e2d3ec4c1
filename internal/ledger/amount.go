package ledger

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// cleanNumber drops whitespace (NBSP thousands separators included) and
// currency signs, and turns a decimal comma into a dot.
func cleanNumber(raw string) string {
	s := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		switch r {
		case '₽', '$', '€':
			return -1
		}
		return r
	}, raw)
	return strings.ReplaceAll(s, ",", ".")
}

// ParseBalance reads a balance cell. Empty or unparseable input is zero.
func ParseBalance(raw string) decimal.Decimal {
	s := cleanNumber(raw)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ParseAmount reads a transfer amount. The result is positive and quantized
// to two fractional digits, rounding half up.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := cleanNumber(raw)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	d = d.Round(2)
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %q is not positive", ErrInvalidAmount, raw)
	}
	return d, nil
}

// FormatAmount renders an amount for chat replies: whole values without a
// fractional part, everything else with exactly two digits.
func FormatAmount(d decimal.Decimal) string {
	q := d.Round(2)
	if q.Equal(q.Truncate(0)) {
		return q.StringFixed(0)
	}
	return q.StringFixed(2)
}

// FormatFormAmount renders an amount the way the form expects it: two
// fractional digits with a decimal comma.
func FormatFormAmount(d decimal.Decimal) string {
	return strings.Replace(d.Round(2).StringFixed(2), ".", ",", 1)
}

// Package core provides the penalty rules, the daily split and the monthly
// report transform, plus the amount helpers shared by the outer layers.
//
// Everything in this package is pure: no I/O, no shared state. Invalid
// numeric input is coerced to zero instead of being reported as an error so
// callers can evaluate penalties eagerly on every keystroke.
package core

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// NormalizeAmount coerces negative and non-finite values to zero.
func NormalizeAmount(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0
	}
	return v
}

// ParseAmount reads a user-typed amount. It tolerates surrounding spaces, a
// leading peso sign and thousands separators; anything unparsable, negative
// or non-finite yields 0.
//
// Examples:
//
//	ParseAmount("120")       -> 120
//	ParseAmount(" ₱1,250.5") -> 1250.5
//	ParseAmount("abc")       -> 0
//	ParseAmount("-5")        -> 0
func ParseAmount(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "₱")
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return NormalizeAmount(v)
}

// RoundCents rounds v half away from zero to two decimals for display.
func RoundCents(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v).Round(2)
}

// FormatPeso renders v as Philippine pesos with en-PH grouping, e.g.
// "₱1,234.50". Rounding happens here only; stored and derived values keep
// full precision.
func FormatPeso(v float64) string {
	d := RoundCents(v)
	neg := d.IsNegative()
	if neg {
		d = d.Neg()
	}
	fixed := d.StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString("₱")
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

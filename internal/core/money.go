// Package core provides amount parsing and formatting.
//
// Amounts are signed decimals. Parsing is strict: the whole (trimmed) input
// must be a number, optionally with an exponent. Sums are computed in decimal
// so totals never drift from the individual entries.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts user text to a decimal amount.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34, nil
//	ParseAmount(" -5 ")   -> -5, nil
//	ParseAmount("1e3")    -> 1000, nil
//	ParseAmount("12,34")  -> ErrInvalidAmount
//	ParseAmount("abc")    -> ErrInvalidAmount
//	ParseAmount("1e99")   -> ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.Exponent() > maxAmountExponent || d.Exponent() < -maxAmountExponent || d.NumDigits() > maxAmountDigits {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// Bounds on accepted amounts. Rendering a decimal expands its exponent into
// digits, so an unbounded exponent would make every later format unbounded.
const (
	maxAmountExponent = 28
	maxAmountDigits   = 30
)

// FormatAmount renders an amount the way it is shown in the table and
// written to storage: shortest exact form, no thousands separators.
func FormatAmount(d decimal.Decimal) string {
	return d.String()
}

// FormatTotal renders an aggregated amount with two decimals.
func FormatTotal(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Package core holds the daybook domain: records, money and the cash ledger.
package core

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)`)

// MaxAmountCents is the largest magnitude a stored amount may have
// (a DECIMAL(12,2) column).
const MaxAmountCents = 999_999_999_999

var maxAmount = decimal.New(MaxAmountCents, -2)

// ParseAmount converts user input to cents, treating anything non-numeric as zero.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators, keeps the
// leading numeric prefix of partially numeric input ("12abc" is 12) and rounds
// half away from zero to two decimals. Amounts beyond MaxAmountCents are
// treated as invalid and become zero.
//
// Examples:
//
//	ParseAmount("12.34") -> {1234}
//	ParseAmount("12,345") -> {1235}
//	ParseAmount("abc") -> {0}
func ParseAmount(s string) Money {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		prefix := strings.TrimSuffix(leadingNumber.FindString(s), ".")
		if prefix == "" {
			return Money{}
		}
		if d, err = decimal.NewFromString(prefix); err != nil {
			return Money{}
		}
	}
	if d.Round(2).Abs().GreaterThan(maxAmount) {
		return Money{}
	}
	return MoneyFromDecimal(d)
}

// MoneyFromDecimal rounds d to cents.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{Cents: d.Round(2).Shift(2).IntPart()}
}

// Decimal returns the amount as a two-place decimal.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String formats the amount with two decimals and a dot separator ("-12.30").
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Float returns the value as a float64 for display purposes.
// Use cents for calculations to avoid floating-point precision issues.
func (m Money) Float() float64 {
	return m.Decimal().InexactFloat64()
}

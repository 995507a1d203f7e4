// Package core provides money parsing and handling utilities.
//
// Amounts are kept in minor units so that sums over many transactions are
// exact and independent of input order.
package core

import (
	"strings"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is the currency used for display when none is configured.
const DefaultCurrency = gomoney.IDR

// ParseAmount converts a decimal string to minor units with half-up rounding.
//
// Both dot (12.34) and comma (12,34) decimal separators are accepted. Zero is
// a valid amount; negative values are rejected since direction is carried by
// Transaction.IsIncome.
//
// Examples:
//
//	ParseAmount("12.34")  -> 1234, nil
//	ParseAmount("12,345") -> 1235, nil
//	ParseAmount("-1")     -> 0, ErrNegativeAmount
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	if d.IsNegative() {
		return Money{}, ErrNegativeAmount
	}
	cents := d.Shift(2).Round(0)
	if !cents.IsInteger() || cents.GreaterThan(decimal.NewFromInt(maxCents)) {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: cents.IntPart()}, nil
}

// maxCents keeps sums of many amounts well away from int64 overflow.
const maxCents = 1 << 53

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// IsKnownCurrency reports whether code is an ISO currency Display can format.
func IsKnownCurrency(code string) bool {
	return gomoney.GetCurrency(code) != nil
}

// Display formats the amount for the given ISO currency code using that
// currency's symbol and separators.
func (m Money) Display(currency string) string {
	if currency == "" {
		currency = DefaultCurrency
	}
	return gomoney.New(m.Cents, currency).Display()
}

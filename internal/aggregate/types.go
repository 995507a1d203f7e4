// Package aggregate groups transactions into weekly, monthly and yearly
// summaries and provides the ordering, totals and export filtering used by
// every view.
//
// All functions are pure: they never mutate their input and keep no state
// between calls.
package aggregate

import (
	"errors"
	"fmt"
	"strings"

	"siuang/internal/core"
)

// Granularity is the size of the time bucket a view aggregates by.
type Granularity string

const (
	Daily   Granularity = "daily"
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
	Yearly  Granularity = "yearly"
)

// SortOrder is the direction applied to ordered output.
type SortOrder string

const (
	Latest SortOrder = "latest"
	Oldest SortOrder = "oldest"
)

var (
	ErrUnsupportedGranularity = errors.New("unsupported granularity")
	ErrUnsupportedSortOrder   = errors.New("unsupported sort order")
)

// ParseGranularity accepts the four view names; the empty string is Daily.
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(strings.ToLower(strings.TrimSpace(s))); g {
	case "":
		return Daily, nil
	case Daily, Weekly, Monthly, Yearly:
		return g, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedGranularity, s)
	}
}

// ParseSortOrder accepts "latest" and "oldest"; the empty string is Latest.
func ParseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case "":
		return Latest, nil
	case Latest, Oldest:
		return o, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedSortOrder, s)
	}
}

// Key identifies one bucket. Period is the ISO week number for weekly
// buckets, the zero-based month for monthly buckets and 0 for yearly ones.
type Key struct {
	Year   int
	Period int
}

// Summary is the income/expense total of one bucket.
type Summary struct {
	Granularity  Granularity
	Year         int // ISO week-year for weekly summaries
	Period       int
	TotalIncome  core.Money
	TotalExpense core.Money
}

func (s Summary) Key() Key {
	return Key{Year: s.Year, Period: s.Period}
}

// WeekNumber returns the ISO week (1-53) of a weekly summary.
func (s Summary) WeekNumber() int {
	if s.Granularity != Weekly {
		return 0
	}
	return s.Period
}

// Month returns the zero-based month (January is 0) of a monthly summary,
// or -1 for other granularities.
func (s Summary) Month() int {
	if s.Granularity != Monthly {
		return -1
	}
	return s.Period
}

func (s Summary) Balance() core.Money {
	return s.TotalIncome.Sub(s.TotalExpense)
}

func (s Summary) Totals() Totals {
	return Totals{Income: s.TotalIncome, Expense: s.TotalExpense}
}

// Totals is an income/expense pair for a header or a view.
type Totals struct {
	Income  core.Money
	Expense core.Money
}

// Balance is Income minus Expense and may be negative.
func (t Totals) Balance() core.Money {
	return t.Income.Sub(t.Expense)
}

func (t Totals) add(tx core.Transaction) Totals {
	if tx.IsIncome {
		t.Income = t.Income.Add(tx.Amount)
	} else {
		t.Expense = t.Expense.Add(tx.Amount)
	}
	return t
}

package aggregate

import (
	"time"

	"siuang/internal/core"
)

// Focus narrows a view to the period selected in the header. Zero fields
// match everything.
type Focus struct {
	Year  int
	Month time.Month
	Day   int
}

// IsZero reports whether the focus matches everything.
func (f Focus) IsZero() bool {
	return f == Focus{}
}

// MatchesDate reports whether d lies inside the focus.
func (f Focus) MatchesDate(d core.Date) bool {
	if f.Year != 0 && d.Year() != f.Year {
		return false
	}
	if f.Month != 0 && d.Month() != f.Month {
		return false
	}
	if f.Day != 0 && d.Day() != f.Day {
		return false
	}
	return true
}

// MatchesSummary reports whether s lies inside the focus. Weekly buckets can
// straddle months, so only the year applies to them; Day never applies.
func (f Focus) MatchesSummary(s Summary) bool {
	if f.Year != 0 && s.Year != f.Year {
		return false
	}
	if f.Month != 0 && s.Granularity == Monthly && s.Period != int(f.Month)-1 {
		return false
	}
	return true
}

// TransactionTotals sums the raw transactions inside the focus. It backs the
// daily view and the header totals.
func TransactionTotals(txs []core.Transaction, f Focus) Totals {
	var t Totals
	for _, tx := range txs {
		if corruptsSums(tx) != nil {
			continue
		}
		if !f.MatchesDate(tx.Date) {
			continue
		}
		t = t.add(tx)
	}
	return t
}

// FilterSummaries keeps the summaries inside the focus, preserving order.
// Views aggregate every transaction first and filter for display afterwards.
func FilterSummaries(summaries []Summary, f Focus) []Summary {
	out := make([]Summary, 0, len(summaries))
	for _, s := range summaries {
		if f.MatchesSummary(s) {
			out = append(out, s)
		}
	}
	return out
}

// SummaryTotals sums already aggregated summaries inside the focus.
func SummaryTotals(summaries []Summary, f Focus) Totals {
	var t Totals
	for _, s := range FilterSummaries(summaries, f) {
		t.Income = t.Income.Add(s.TotalIncome)
		t.Expense = t.Expense.Add(s.TotalExpense)
	}
	return t
}

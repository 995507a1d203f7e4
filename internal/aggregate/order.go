package aggregate

import (
	"cmp"
	"slices"

	"siuang/internal/core"
)

// Order returns the summaries sorted by year, then by period, both in the
// direction of o. Anything other than Oldest sorts newest first.
func Order(m map[Key]Summary, o SortOrder) []Summary {
	out := make([]Summary, 0, len(m))
	for _, s := range m {
		out = append(out, s)
	}
	slices.SortStableFunc(out, func(a, b Summary) int {
		c := cmp.Or(cmp.Compare(a.Year, b.Year), cmp.Compare(a.Period, b.Period))
		if o == Oldest {
			return c
		}
		return -c
	})
	return out
}

// SortDaily returns a copy of txs ordered by date in the direction of o.
// Transactions on the same day keep their input order.
func SortDaily(txs []core.Transaction, o SortOrder) []core.Transaction {
	out := slices.Clone(txs)
	if out == nil {
		out = []core.Transaction{}
	}
	slices.SortStableFunc(out, func(a, b core.Transaction) int {
		c := a.Date.Compare(b.Date.Time)
		if o == Oldest {
			return c
		}
		return -c
	})
	return out
}

package aggregate

import (
	"fmt"
	"log/slog"

	"siuang/internal/core"
	applog "siuang/internal/log"
)

// KeyOf returns the bucket a date falls into for the given granularity.
func KeyOf(d core.Date, g Granularity) (Key, error) {
	switch g {
	case Weekly:
		year, week := ISOWeek(d.Time)
		return Key{Year: year, Period: week}, nil
	case Monthly:
		return Key{Year: d.Year(), Period: int(d.Month()) - 1}, nil
	case Yearly:
		return Key{Year: d.Year()}, nil
	default:
		return Key{}, fmt.Errorf("%w for aggregation: %q", ErrUnsupportedGranularity, g)
	}
}

// Aggregate sums transactions into one Summary per bucket. A bucket exists
// only if at least one transaction falls into it.
//
// Transactions that would corrupt the sums (zero date, negative amount) are
// skipped and logged so that one bad record does not hide all the others.
func Aggregate(txs []core.Transaction, g Granularity) (map[Key]Summary, error) {
	if g != Weekly && g != Monthly && g != Yearly {
		return nil, fmt.Errorf("%w for aggregation: %q", ErrUnsupportedGranularity, g)
	}

	out := make(map[Key]Summary)
	for _, tx := range txs {
		if err := corruptsSums(tx); err != nil {
			slog.Warn("Skipping transaction during aggregation",
				applog.FieldComponent, applog.ComponentAggregate,
				applog.FieldTransactionID, tx.ID,
				applog.FieldGranularity, string(g),
				applog.FieldError, err.Error())
			continue
		}

		key, _ := KeyOf(tx.Date, g)
		s, ok := out[key]
		if !ok {
			s = Summary{Granularity: g, Year: key.Year, Period: key.Period}
		}
		if tx.IsIncome {
			s.TotalIncome = s.TotalIncome.Add(tx.Amount)
		} else {
			s.TotalExpense = s.TotalExpense.Add(tx.Amount)
		}
		out[key] = s
	}
	return out, nil
}

// corruptsSums reports why tx cannot be summed, or nil. Only the date and
// the amount matter here; text limits are enforced where input is accepted.
func corruptsSums(tx core.Transaction) error {
	if err := tx.Date.Validate(); err != nil {
		return err
	}
	return tx.Amount.Validate()
}

// Summarize aggregates and orders in one step.
func Summarize(txs []core.Transaction, g Granularity, o SortOrder) ([]Summary, error) {
	m, err := Aggregate(txs, g)
	if err != nil {
		return nil, err
	}
	return Order(m, o), nil
}

package aggregate

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"siuang/internal/core"
)

var ErrInvalidRange = errors.New("invalid date range")

// InvalidRangeError reports a missing or unparseable export bound.
type InvalidRangeError struct {
	Start  string
	End    string
	Reason string
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid date range [%q, %q]: %s", e.Start, e.End, e.Reason)
}

func (e *InvalidRangeError) Is(target error) bool {
	return target == ErrInvalidRange
}

// Range is an inclusive span of calendar days.
type Range struct {
	Start core.Date
	End   core.Date
}

// ParseRange parses both bounds as YYYY-MM-DD.
func ParseRange(start, end string) (Range, error) {
	if strings.TrimSpace(start) == "" || strings.TrimSpace(end) == "" {
		return Range{}, &InvalidRangeError{Start: start, End: end, Reason: "start and end dates are required"}
	}
	s, err := core.ParseDate(start)
	if err != nil {
		return Range{}, &InvalidRangeError{Start: start, End: end, Reason: err.Error()}
	}
	e, err := core.ParseDate(end)
	if err != nil {
		return Range{}, &InvalidRangeError{Start: start, End: end, Reason: err.Error()}
	}
	return Range{Start: s, End: e}, nil
}

// Contains reports whether t, normalized to the start of its day, lies in
// [Start 00:00:00, End 23:59:59.999].
func (r Range) Contains(t time.Time) bool {
	day := core.DateOf(t).Time
	last := r.End.Add(24*time.Hour - time.Millisecond)
	return !day.Before(r.Start.Time) && !day.After(last)
}

// FilterForExport returns the transactions dated inside [start, end] whose
// category contains category, ignoring case. An empty category matches all.
// The subset keeps the input order and is not aggregated.
func FilterForExport(txs []core.Transaction, start, end, category string) ([]core.Transaction, error) {
	r, err := ParseRange(start, end)
	if err != nil {
		return nil, err
	}

	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(category))

	out := make([]core.Transaction, 0)
	for _, tx := range txs {
		if tx.Date.IsZero() || !r.Contains(tx.Date.Time) {
			continue
		}
		if needle != "" && !strings.Contains(fold.String(tx.Category), needle) {
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}

package aggregate

import (
	"errors"
	"testing"
	"time"

	"siuang/internal/core"
)

func exportLedger() []core.Transaction {
	withCategory := func(t core.Transaction, c string) core.Transaction {
		t.Category = c
		return t
	}
	return []core.Transaction{
		withCategory(tx("1", "2025-06-30", 100, false), "Food"),
		withCategory(tx("2", "2025-07-01", 200, false), "Seafood"),
		withCategory(tx("3", "2025-07-01", 300, true), "Salary"),
		withCategory(tx("4", "2025-07-31", 400, false), "FOOD court"),
		withCategory(tx("5", "2025-08-01", 500, false), "Food"),
		withCategory(tx("6", "2025-07-15", 600, false), ""),
	}
}

func ids(txs []core.Transaction) []string {
	out := make([]string, 0, len(txs))
	for _, t := range txs {
		out = append(out, t.ID)
	}
	return out
}

func TestFilterForExport(t *testing.T) {
	cases := []struct {
		name     string
		start    string
		end      string
		category string
		want     []string
	}{
		{"inclusive month", "2025-07-01", "2025-07-31", "", []string{"2", "3", "4", "6"}},
		{"single day", "2025-07-01", "2025-07-01", "", []string{"2", "3"}},
		{"category substring ignores case", "2025-06-01", "2025-08-31", "foo", []string{"1", "2", "4", "5"}},
		{"category and range", "2025-07-01", "2025-07-31", "FOOD", []string{"2", "4"}},
		{"blank category matches all", "2025-08-01", "2025-08-01", "  ", []string{"5"}},
		{"end before start", "2025-07-31", "2025-07-01", "", []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FilterForExport(exportLedger(), tc.start, tc.end, tc.category)
			if err != nil {
				t.Fatalf("FilterForExport: %v", err)
			}
			if g := ids(got); len(g) != len(tc.want) || (len(g) > 0 && !equalStrings(g, tc.want)) {
				t.Fatalf("got %v, want %v", g, tc.want)
			}
		})
	}
}

func TestFilterForExportSameDayRoundTrip(t *testing.T) {
	ledger := exportLedger()
	// Time-of-day noise must not push a transaction out of its own day.
	noisy := ledger[1]
	noisy.Date = core.Date{Time: noisy.Date.Add(23*time.Hour + 59*time.Minute)}
	ledger[1] = noisy

	for _, want := range ledger {
		day := core.DateOf(want.Date.Time).String()
		got, err := FilterForExport(ledger, day, day, "")
		if err != nil {
			t.Fatalf("%s: %v", day, err)
		}
		for _, g := range got {
			if core.DateOf(g.Date.Time).String() != day {
				t.Fatalf("%s: got transaction from %s", day, g.Date)
			}
		}
		found := false
		for _, g := range got {
			found = found || g.ID == want.ID
		}
		if !found {
			t.Fatalf("%s: transaction %s missing from %v", day, want.ID, ids(got))
		}
	}
}

func TestFilterForExportInvalidRange(t *testing.T) {
	cases := []struct{ start, end string }{
		{"", "2025-07-01"},
		{"2025-07-01", ""},
		{"2025-07-01", "31/07/2025"},
		{"yesterday", "2025-07-31"},
	}
	for _, tc := range cases {
		_, err := FilterForExport(exportLedger(), tc.start, tc.end, "")
		if !errors.Is(err, ErrInvalidRange) {
			t.Fatalf("[%q, %q]: expected ErrInvalidRange, got %v", tc.start, tc.end, err)
		}
		var re *InvalidRangeError
		if !errors.As(err, &re) || re.Start != tc.start || re.End != tc.end {
			t.Fatalf("[%q, %q]: unexpected error value %#v", tc.start, tc.end, err)
		}
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

package aggregate

import (
	"errors"
	"math/rand"
	"reflect"
	"strings"
	"testing"

	"siuang/internal/core"
)

func tx(id, date string, cents int64, income bool) core.Transaction {
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return core.Transaction{ID: id, Date: d, Amount: core.Money{Cents: cents}, IsIncome: income}
}

func sampleLedger() []core.Transaction {
	return []core.Transaction{
		tx("1", "2023-12-31", 12_000, true),
		tx("2", "2024-01-01", 3_500, false),
		tx("3", "2024-02-29", 990, false),
		tx("4", "2024-12-31", 50_000, true),
		tx("5", "2025-01-01", 700, false),
		tx("6", "2025-07-01", 100_000, true),
		tx("7", "2025-07-01", 40_000, false),
		tx("8", "2025-07-08", 50_000, true),
		tx("9", "2021-01-01", 1, false),
	}
}

func TestAggregateMonthlyScenario(t *testing.T) {
	txs := []core.Transaction{
		tx("a", "2025-07-01", 1000, true),
		tx("b", "2025-07-01", 400, false),
		tx("c", "2025-07-08", 500, true),
	}
	got, err := Aggregate(txs, Monthly)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	want := map[Key]Summary{
		{Year: 2025, Period: 6}: {
			Granularity:  Monthly,
			Year:         2025,
			Period:       6,
			TotalIncome:  core.Money{Cents: 1500},
			TotalExpense: core.Money{Cents: 400},
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	if s := got[Key{Year: 2025, Period: 6}]; s.Month() != 6 || s.WeekNumber() != 0 {
		t.Fatalf("accessors: month=%d week=%d", s.Month(), s.WeekNumber())
	}
}

func TestAggregateWeeklyUsesISOYear(t *testing.T) {
	got, err := Aggregate([]core.Transaction{
		tx("a", "2024-12-31", 100, true),
		tx("b", "2025-01-02", 50, false),
		tx("c", "2023-12-31", 7, false),
	}, Weekly)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 buckets, got %d: %+v", len(got), got)
	}
	w1 := got[Key{Year: 2025, Period: 1}]
	if w1.TotalIncome.Cents != 100 || w1.TotalExpense.Cents != 50 || w1.WeekNumber() != 1 {
		t.Fatalf("unexpected 2025-W01: %+v", w1)
	}
	if w52 := got[Key{Year: 2023, Period: 52}]; w52.TotalExpense.Cents != 7 {
		t.Fatalf("unexpected 2023-W52: %+v", w52)
	}
}

func TestAggregateNoGapsSynthesized(t *testing.T) {
	got, err := Aggregate([]core.Transaction{
		tx("a", "2020-03-15", 1, true),
		tx("b", "2025-03-15", 1, true),
	}, Yearly)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected exactly the two populated years, got %+v", got)
	}
}

func TestAggregateRejectsDaily(t *testing.T) {
	for _, g := range []Granularity{Daily, "hourly"} {
		if _, err := Aggregate(nil, g); !errors.Is(err, ErrUnsupportedGranularity) {
			t.Fatalf("%q: expected ErrUnsupportedGranularity, got %v", g, err)
		}
	}
}

func TestAggregateSkipsMalformedTransactions(t *testing.T) {
	txs := []core.Transaction{
		tx("ok", "2025-07-01", 100, true),
		{ID: "no-date", Amount: core.Money{Cents: 999}, IsIncome: true},
		{ID: "negative", Date: core.NewDate(2025, 7, 2), Amount: core.Money{Cents: -5}},
	}
	got, err := Aggregate(txs, Monthly)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	s := got[Key{Year: 2025, Period: 6}]
	if len(got) != 1 || s.TotalIncome.Cents != 100 || s.TotalExpense.Cents != 0 {
		t.Fatalf("malformed records leaked into sums: %+v", got)
	}
}

func TestTotalsAgreeAcrossGranularities(t *testing.T) {
	longCategory := tx("10", "2025-07-02", 400, false)
	longCategory.Category = strings.Repeat("é", 60) + strings.Repeat("x", 60)
	longNote := tx("11", "2025-07-03", 250, true)
	longNote.Note = strings.Repeat("n", 300)
	txs := append(sampleLedger(), longCategory, longNote)
	raw := TransactionTotals(txs, Focus{})
	if raw.Income.Cents != 212_250 || raw.Expense.Cents != 45_591 {
		t.Fatalf("raw totals %+v should count records with over-long text", raw)
	}

	for _, g := range []Granularity{Weekly, Monthly, Yearly} {
		summaries, err := Summarize(txs, g, Latest)
		if err != nil {
			t.Fatalf("%s: %v", g, err)
		}
		got := SummaryTotals(summaries, Focus{})
		if got != raw {
			t.Errorf("%s totals %+v differ from raw totals %+v", g, got, raw)
		}
	}
}

func TestAggregateIsIdempotentAndOrderIndependent(t *testing.T) {
	txs := sampleLedger()
	first, _ := Aggregate(txs, Weekly)
	second, _ := Aggregate(txs, Weekly)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("aggregate not idempotent")
	}

	shuffled := append([]core.Transaction(nil), txs...)
	rand.New(rand.NewSource(42)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	third, _ := Aggregate(shuffled, Weekly)
	if !reflect.DeepEqual(first, third) {
		t.Fatalf("aggregate depends on input order")
	}

	if txs[0].ID != "1" || txs[len(txs)-1].ID != "9" {
		t.Fatalf("input was mutated")
	}
}

func TestKeyOf(t *testing.T) {
	d := core.NewDate(2024, 2, 29)
	cases := []struct {
		g    Granularity
		want Key
	}{
		{Weekly, Key{Year: 2024, Period: 9}},
		{Monthly, Key{Year: 2024, Period: 1}},
		{Yearly, Key{Year: 2024}},
	}
	for _, tc := range cases {
		got, err := KeyOf(d, tc.g)
		if err != nil || got != tc.want {
			t.Fatalf("%s: got %+v (%v), want %+v", tc.g, got, err, tc.want)
		}
	}
	if _, err := KeyOf(d, Daily); err == nil {
		t.Fatalf("expected error for daily key")
	}
}

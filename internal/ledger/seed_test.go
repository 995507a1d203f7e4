package ledger

import (
	"errors"
	"strings"
	"testing"

	"siuang/internal/core"
)

func TestParseSeed(t *testing.T) {
	in := `# date;category;amount;note;kind
2025-07-01;Gaji;1000;July salary;income

2025-07-01;Makan;400
2025-07-08;  ;12,50;;expense
`
	entries, err := ParseSeed(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ParseSeed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	first := entries[0].Transaction
	if !first.IsIncome || first.Amount.Cents != 100000 || first.Category != "Gaji" || first.Note != "July salary" {
		t.Fatalf("unexpected first entry %+v", first)
	}
	if entries[0].Line != 2 || entries[1].Line != 4 {
		t.Fatalf("unexpected line numbers %d, %d", entries[0].Line, entries[1].Line)
	}
	if second := entries[1].Transaction; second.IsIncome || second.Amount.Cents != 40000 {
		t.Fatalf("unexpected second entry %+v", second)
	}
	if third := entries[2].Transaction; third.Category != "" || third.Amount.Cents != 1250 {
		t.Fatalf("unexpected third entry %+v", third)
	}
}

func TestParseSeedErrors(t *testing.T) {
	cases := []struct {
		in   string
		want error
	}{
		{"2025-13-01;x;1", core.ErrInvalidDate},
		{"2025-07-01;x;-1", core.ErrNegativeAmount},
		{"2025-07-01;x;abc", core.ErrInvalidAmount},
	}
	for _, tc := range cases {
		_, err := ParseSeed(strings.NewReader(tc.in))
		if !errors.Is(err, tc.want) {
			t.Fatalf("%q: expected %v, got %v", tc.in, tc.want, err)
		}
		if !strings.Contains(err.Error(), "seed line 1") {
			t.Fatalf("%q: missing line number in %v", tc.in, err)
		}
	}

	for _, in := range []string{"2025-07-01;x", "2025-07-01;x;1;n;maybe", "a;b;c;d;e;f"} {
		if _, err := ParseSeed(strings.NewReader(in)); err == nil {
			t.Fatalf("%q: expected error", in)
		}
	}
}

package aggregate

import (
	"fmt"
	"testing"
	"time"
)

func TestISOWeek(t *testing.T) {
	tests := []struct {
		name     string
		date     time.Time
		wantYear int
		wantWeek int
	}{
		{"monday starting 2024", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 2024, 1},
		{"sunday closing 2023", time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), 2023, 52},
		{"sunday mid year", time.Date(2025, 7, 6, 0, 0, 0, 0, time.UTC), 2025, 27},
		{"dec 31 in week 1 of next year", time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), 2025, 1},
		{"dec 29 2025 monday in week 1 of 2026", time.Date(2025, 12, 29, 0, 0, 0, 0, time.UTC), 2026, 1},
		{"jan 1 in week 53 of previous year", time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), 2020, 53},
		{"jan 1 2023 sunday in week 52", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), 2022, 52},
		{"leap day", time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), 2024, 9},
		{"time of day ignored", time.Date(2024, 1, 1, 23, 59, 59, 0, time.UTC), 2024, 1},
		{"local date kept", time.Date(2024, 1, 1, 1, 0, 0, 0, time.FixedZone("WIB", 7*3600)), 2024, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			year, week := ISOWeek(tt.date)
			if year != tt.wantYear || week != tt.wantWeek {
				t.Errorf("ISOWeek(%s) = (%d, %d), want (%d, %d)",
					tt.date.Format(time.RFC3339), year, week, tt.wantYear, tt.wantWeek)
			}
		})
	}
}

func TestISOWeekMatchesStandardLibrary(t *testing.T) {
	start := time.Date(1999, 12, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2031, 1, 31, 0, 0, 0, 0, time.UTC)
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		year, week := ISOWeek(d)
		wantYear, wantWeek := d.ISOWeek()
		if year != wantYear || week != wantWeek {
			t.Fatalf("%s: got (%d, %d), want (%d, %d)", d.Format("2006-01-02"), year, week, wantYear, wantWeek)
		}
	}
}

func ExampleISOWeek() {
	year, week := ISOWeek(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC))
	fmt.Println(year, week)
	// Output: 2023 52
}

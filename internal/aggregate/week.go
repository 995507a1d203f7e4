package aggregate

import "time"

const millisPerDay = 86_400_000

// ISOWeek returns the ISO-8601 week-year and week number of the calendar
// date of t. The time of day and location are discarded first, so every
// caller sees the same week for the same calendar date.
//
// The week belongs to the year of its Thursday: Dec 31 may fall into week 1
// of the next year and Jan 1 into week 52 or 53 of the previous one.
func ISOWeek(t time.Time) (year, week int) {
	y, m, d := t.Date()
	date := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	weekday := int(date.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday closes the ISO week
	}
	thursday := date.AddDate(0, 0, 4-weekday)

	yearStart := time.Date(thursday.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	days := thursday.Sub(yearStart).Milliseconds() / millisPerDay

	// ceil((days + 1) / 7) on non-negative integers
	week = int((days + 1 + 6) / 7)
	return thursday.Year(), week
}

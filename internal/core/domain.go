package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// DateLayout is the calendar date format accepted at every boundary.
const DateLayout = "2006-01-02"

const (
	KindIncome  = "income"
	KindExpense = "expense"
)

type (
	// Date is a calendar date stored as UTC midnight.
	Date struct {
		time.Time
	}

	// Money is a non-negative amount in minor units.
	Money struct {
		Cents int64
	}

	Transaction struct {
		ID       string
		Date     Date
		Category string // optional
		Amount   Money
		Note     string // optional
		IsIncome bool
	}
)

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrNegativeAmount  = errors.New("amount must not be negative")
	ErrEmptyID         = errors.New("empty transaction id")
	ErrCategoryTooLong = errors.New("category too long (max 100 characters)")
	ErrNoteTooLong     = errors.New("note too long (max 200 characters)")
)

// InvalidDateError reports a date string that could not be parsed.
type InvalidDateError struct {
	Value string
}

func (e *InvalidDateError) Error() string {
	if e.Value == "" {
		return "invalid date: missing value"
	}
	return fmt.Sprintf("invalid date %q: expected %s", e.Value, DateLayout)
}

func (e *InvalidDateError) Is(target error) bool {
	return target == ErrInvalidDate
}

// NewDate creates a new Date from year, month, day
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf strips the time of day from t, keeping the calendar date t has in
// its own location.
func DateOf(t time.Time) Date {
	if t.IsZero() {
		return Date{}
	}
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, &InvalidDateError{}
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, &InvalidDateError{Value: s}
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return &InvalidDateError{}
	}
	return nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// MarshalText renders the date as YYYY-MM-DD.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON overrides the RFC 3339 encoding promoted from time.Time.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return &InvalidDateError{Value: string(b)}
	}
	return d.UnmarshalText([]byte(s))
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrNegativeAmount
	}
	return nil
}

func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

func (m Money) Sub(other Money) Money {
	return Money{Cents: m.Cents - other.Cents}
}

// Kind returns KindIncome or KindExpense.
func (t Transaction) Kind() string {
	if t.IsIncome {
		return KindIncome
	}
	return KindExpense
}

// Validate checks the fields a caller supplies. The ID is assigned later and
// is checked separately by ValidateStored.
func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if utf8.RuneCountInString(t.Category) > 100 {
		return ErrCategoryTooLong
	}
	if utf8.RuneCountInString(t.Note) > 200 {
		return ErrNoteTooLong
	}
	return nil
}

// ValidateStored is Validate plus the checks a persisted transaction must pass.
func (t Transaction) ValidateStored() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrEmptyID
	}
	return t.Validate()
}

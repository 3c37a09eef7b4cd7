package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type (
	// Expense is one logged transaction. Date is kept exactly as entered and
	// only parsed when an aggregation needs the calendar month.
	Expense struct {
		Date        string
		Category    string
		Amount      decimal.Decimal
		Description string
	}

	// YearMonth identifies a calendar month.
	YearMonth struct {
		Year  int
		Month time.Month
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
	ErrEmptyDataset  = errors.New("empty dataset")
)

// DateError reports a record whose date could not be read as a calendar date.
type DateError struct {
	Index int // position of the record in the input sequence
	Value string
}

func (e *DateError) Error() string {
	return fmt.Sprintf("record %d: cannot parse date %q", e.Index+1, e.Value)
}

func (e *DateError) Unwrap() error { return ErrInvalidDate }

// dateLayouts lists the accepted date spellings, most common first.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006-1-2",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"01/02/2006",
	"2006-01",
}

// ParseDate reads s as a calendar date using the accepted layouts.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidDate
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// YearMonthOf truncates t to its calendar month.
func YearMonthOf(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// String formats the month as YYYY-MM.
func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// Before reports whether ym is an earlier month than other.
func (ym YearMonth) Before(other YearMonth) bool {
	if ym.Year != other.Year {
		return ym.Year < other.Year
	}
	return ym.Month < other.Month
}

// NewExpense builds an expense from raw form text. Only the amount is
// checked; the other fields are stored as given.
func NewExpense(date, category, amount, description string) (Expense, error) {
	amt, err := ParseAmount(amount)
	if err != nil {
		return Expense{}, err
	}
	return Expense{
		Date:        date,
		Category:    category,
		Amount:      amt,
		Description: description,
	}, nil
}

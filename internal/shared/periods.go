package shared

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidMonth indicates a month token that does not parse as YYYY-MM.
var ErrInvalidMonth = errors.New("shared: invalid month")

// ErrInvalidMonthRange indicates a range whose end precedes its start.
var ErrInvalidMonthRange = errors.New("shared: month range end before start")

// Month identifies a calendar month. The zero value is invalid.
type Month struct {
	Year int
	Mon  time.Month
}

// MonthOf returns the calendar month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Mon: t.Month()}
}

// ParseMonth parses a YYYY-MM token.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return MonthOf(t), nil
}

// String renders the month as YYYY-MM.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Mon))
}

// IsZero reports whether the month is unset.
func (m Month) IsZero() bool {
	return m.Year == 0 && m.Mon == 0
}

// Start returns midnight UTC on the first day of the month.
func (m Month) Start() time.Time {
	return time.Date(m.Year, m.Mon, 1, 0, 0, 0, 0, time.UTC)
}

// End returns the first instant of the following month. Residency checks use
// the half-open interval [Start, End).
func (m Month) End() time.Time {
	return m.Start().AddDate(0, 1, 0)
}

// Next returns the following calendar month.
func (m Month) Next() Month {
	return MonthOf(m.End())
}

// Contains reports whether t falls inside the month.
func (m Month) Contains(t time.Time) bool {
	return !t.Before(m.Start()) && t.Before(m.End())
}

// Before reports whether m precedes other.
func (m Month) Before(other Month) bool {
	if m.Year != other.Year {
		return m.Year < other.Year
	}
	return m.Mon < other.Mon
}

// MonthRange returns the inclusive ordered list of months from from to to.
func MonthRange(from, to Month) ([]Month, error) {
	if to.Before(from) {
		return nil, ErrInvalidMonthRange
	}
	var months []Month
	for m := from; !to.Before(m); m = m.Next() {
		months = append(months, m)
	}
	return months, nil
}

// SameCalendarDay reports whether a and b fall on the same calendar date.
// Tie-breaking between warehouses compares dates, not instants.
func SameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// TruncateToDay drops the time-of-day component.
func TruncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

package core

import (
	"fmt"
	"time"
)

// Date is a timezone-free calendar date. It carries no time-of-day and no
// location, so two dates compare equal exactly when they name the same
// calendar day. All engine code works on Date values; time.Time appears only
// at the edges (clocks, storage drivers).
type Date struct {
	Year  int
	Month int // 1-12
	Day   int // 1-31
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// DateOf converts a time.Time to the calendar date it falls on, in the
// time value's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: int(m), Day: d}
}

// ParseDate parses a canonical YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return DateOf(t), nil
}

// ISO returns the canonical YYYY-MM-DD representation.
func (d Date) ISO() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// MonthKey returns the YYYY-MM bucket key for this date.
func (d Date) MonthKey() string {
	return fmt.Sprintf("%04d-%02d", d.Year, d.Month)
}

// IsZero reports whether the date is unset. Zero dates mark optional values
// (open-ended series, unbounded query sides).
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// Compare returns -1, 0 or +1 ordering d against other chronologically.
func (d Date) Compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return cmpInt(d.Year, other.Year)
	case d.Month != other.Month:
		return cmpInt(d.Month, other.Month)
	default:
		return cmpInt(d.Day, other.Day)
	}
}

func cmpInt(a, b int) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool { return d.Compare(other) < 0 }

// After reports whether d is strictly later than other.
func (d Date) After(other Date) bool { return d.Compare(other) > 0 }

// Equal reports whether d and other name the same calendar day.
func (d Date) Equal(other Date) bool { return d.Compare(other) == 0 }

// SameMonth reports whether d and other fall in the same calendar month.
func (d Date) SameMonth(other Date) bool {
	return d.Year == other.Year && d.Month == other.Month
}

// Validate checks the date names a real calendar day.
func (d Date) Validate() error {
	if d.IsZero() {
		return fmt.Errorf("%w: date is zero", ErrInvalidDate)
	}
	if d.Month < 1 || d.Month > 12 {
		return fmt.Errorf("%w: month %d", ErrInvalidDate, d.Month)
	}
	if d.Day < 1 || d.Day > LastDayOfMonth(d.Year, d.Month) {
		return fmt.Errorf("%w: day %d in %04d-%02d", ErrInvalidDate, d.Day, d.Year, d.Month)
	}
	return nil
}

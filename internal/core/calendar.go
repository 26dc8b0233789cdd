package core

import "time"

// Calendar helpers shared by the recurrence engine. Pure functions, no state.

// LastDayOfMonth returns the number of days in the given month.
func LastDayOfMonth(year, month int) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampDay returns day limited to the last day of the given month. A target
// day of 31 in February clamps to 28 (or 29) instead of skipping the month.
func ClampDay(year, month, day int) int {
	if last := LastDayOfMonth(year, month); day > last {
		return last
	}
	return day
}

// MonthStart returns the first day of the month containing d.
func MonthStart(d Date) Date {
	return Date{Year: d.Year, Month: d.Month, Day: 1}
}

// AddMonths advances d by n calendar months (n may be negative). Only the
// month component moves; the day is clamped to the target month, never
// carried over into the next one (Jan 31 + 1 month is Feb 28/29, not Mar 3).
func AddMonths(d Date, n int) Date {
	// Normalize with 0-based months so negative offsets divide cleanly.
	months := d.Year*12 + (d.Month - 1) + n
	year := months / 12
	month := months%12 + 1
	if months < 0 {
		year = (months - 11) / 12
		month = months - year*12 + 1
	}
	return Date{Year: year, Month: month, Day: ClampDay(year, month, d.Day)}
}

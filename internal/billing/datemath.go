package billing

import (
	"errors"
	"time"
)

// ErrInvalidDate is returned when a date argument is not a valid calendar date
var ErrInvalidDate = errors.New("invalid calendar date")

// AddMonths returns the date n months after d, keeping the same day of month.
// When the target month is shorter, the day is clamped to the last valid day
// (Jan 31 + 1 month = Feb 28, or Feb 29 in a leap year). Negative n goes
// backwards. The clock and location of d are preserved; only the calendar
// components move.
func AddMonths(d time.Time, n int) (time.Time, error) {
	if d.IsZero() {
		return time.Time{}, ErrInvalidDate
	}

	year, month, day := d.Date()

	// Months since year 0, so negative n can roll the year backwards cleanly
	total := year*12 + int(month) - 1 + n
	targetYear := total / 12
	targetMonth := time.Month(total%12 + 1)
	if total%12 < 0 {
		targetYear--
		targetMonth = time.Month(total%12 + 13)
	}

	if last := daysInMonth(targetYear, targetMonth); day > last {
		day = last
	}

	hour, min, sec := d.Clock()
	return time.Date(targetYear, targetMonth, day, hour, min, sec, d.Nanosecond(), d.Location()), nil
}

// AddYears returns the date n whole years after d. Feb 29 clamps to Feb 28
// when the target year is not a leap year.
func AddYears(d time.Time, n int) (time.Time, error) {
	if d.IsZero() {
		return time.Time{}, ErrInvalidDate
	}

	year, month, day := d.Date()
	targetYear := year + n

	if last := daysInMonth(targetYear, month); day > last {
		day = last
	}

	hour, min, sec := d.Clock()
	return time.Date(targetYear, month, day, hour, min, sec, d.Nanosecond(), d.Location()), nil
}

// DateOnly strips the time of day, keeping the location
func DateOnly(d time.Time) time.Time {
	year, month, day := d.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, d.Location())
}

// daysInMonth exploits the day-0 normalization of time.Date: day zero of the
// following month is the last day of this one
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

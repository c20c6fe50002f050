package domain

import (
	"errors"
	"time"
)

var (
	ErrInvalidInstant = errors.New("start_time and end_time must be valid instants")
	ErrInvertedRange  = errors.New("end_time must be after start_time")
	ErrInvertedDates  = errors.New("range start must not be after range end")
	ErrMissingDates   = errors.New("range start and end are required")
)

// DateRange is an inclusive calendar date range.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ValidateRange checks internal consistency of a half-open [start, end)
// interval. Past-dated intervals are deliberately allowed; callers decide
// whether those make sense for their channel.
func ValidateRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return ErrInvalidInstant
	}
	if !end.After(start) {
		return ErrInvertedRange
	}
	return nil
}

// ValidateDateRange checks a calendar date range. Equal start and end is a
// single-day range and is valid.
func ValidateDateRange(r DateRange) error {
	if r.Start.IsZero() || r.End.IsZero() {
		return ErrMissingDates
	}
	if r.Start.After(r.End) {
		return ErrInvertedDates
	}
	return nil
}

// DayWindow returns the [midnight, next midnight) window containing t in
// the given location, expressed in UTC.
func DayWindow(t time.Time, loc *time.Location) (time.Time, time.Time) {
	local := t.In(loc)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return dayStart.UTC(), dayStart.AddDate(0, 0, 1).UTC()
}

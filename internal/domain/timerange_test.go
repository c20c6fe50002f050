package domain

import (
	"errors"
	"testing"
	"time"
)

func TestValidateRange(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	if err := ValidateRange(base, base.Add(time.Hour)); err != nil {
		t.Fatalf("valid range rejected: %v", err)
	}
	// past-dated intervals are the caller's call
	past := time.Date(2000, 1, 1, 9, 0, 0, 0, time.UTC)
	if err := ValidateRange(past, past.Add(time.Hour)); err != nil {
		t.Fatalf("past range rejected: %v", err)
	}

	if err := ValidateRange(base, base); !errors.Is(err, ErrInvertedRange) {
		t.Fatalf("equal endpoints: err = %v, want %v", err, ErrInvertedRange)
	}
	if err := ValidateRange(base.Add(time.Hour), base); !errors.Is(err, ErrInvertedRange) {
		t.Fatalf("inverted: err = %v, want %v", err, ErrInvertedRange)
	}
	if err := ValidateRange(time.Time{}, base); !errors.Is(err, ErrInvalidInstant) {
		t.Fatalf("zero start: err = %v, want %v", err, ErrInvalidInstant)
	}
	if err := ValidateRange(base, time.Time{}); !errors.Is(err, ErrInvalidInstant) {
		t.Fatalf("zero end: err = %v, want %v", err, ErrInvalidInstant)
	}
}

func TestValidateDateRange(t *testing.T) {
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	if err := ValidateDateRange(DateRange{Start: day, End: day}); err != nil {
		t.Fatalf("single-day range rejected: %v", err)
	}
	if err := ValidateDateRange(DateRange{Start: day, End: day.AddDate(0, 0, 6)}); err != nil {
		t.Fatalf("week range rejected: %v", err)
	}
	if err := ValidateDateRange(DateRange{Start: day.AddDate(0, 0, 1), End: day}); !errors.Is(err, ErrInvertedDates) {
		t.Fatalf("inverted dates: err = %v, want %v", err, ErrInvertedDates)
	}
	if err := ValidateDateRange(DateRange{}); !errors.Is(err, ErrMissingDates) {
		t.Fatalf("zero range: err = %v, want %v", err, ErrMissingDates)
	}
}

func TestDayWindow_LocalMidnights(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("LoadLocation error: %v", err)
	}

	// 2025-06-01T01:30Z is still May 31 in New York.
	at := time.Date(2025, 6, 1, 1, 30, 0, 0, time.UTC)
	start, end := DayWindow(at, ny)

	wantStart := time.Date(2025, 5, 31, 0, 0, 0, 0, ny).UTC()
	if !start.Equal(wantStart) {
		t.Fatalf("start = %v, want %v", start, wantStart)
	}
	if got := end.Sub(start); got != 24*time.Hour {
		t.Fatalf("window length = %v, want 24h", got)
	}

	utcStart, utcEnd := DayWindow(at, time.UTC)
	if !utcStart.Equal(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("utc start = %v", utcStart)
	}
	if !utcEnd.Equal(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("utc end = %v", utcEnd)
	}
}

func TestAppointmentOverlaps_HalfOpen(t *testing.T) {
	start := time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC)
	a := Appointment{StartTime: start, EndTime: start.Add(time.Hour)}

	if !a.Overlaps(start.Add(30*time.Minute), start.Add(90*time.Minute)) {
		t.Fatalf("expected overlap with intersecting interval")
	}
	if a.Overlaps(a.EndTime, a.EndTime.Add(time.Hour)) {
		t.Fatalf("back-to-back intervals must not overlap")
	}
	if a.Overlaps(start.Add(-time.Hour), start) {
		t.Fatalf("interval ending at start must not overlap")
	}
}

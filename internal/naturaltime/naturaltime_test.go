package naturaltime

import (
	"errors"
	"testing"
	"time"
)

func mustLoc(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("LoadLocation(%q) error: %v", name, err)
	}
	return loc
}

func TestParse_TomorrowMorning(t *testing.T) {
	ny := mustLoc(t, "America/New_York")
	now := time.Date(2025, 6, 10, 18, 0, 0, 0, ny)

	got, err := Parse("tomorrow 10 AM", ny, now)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	want := time.Date(2025, 6, 11, 10, 0, 0, 0, ny)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got.In(ny), want)
	}
	if got.Location() != time.UTC {
		t.Fatalf("result must be UTC, got %v", got.Location())
	}
}

func TestParse_WeekdayWithTime(t *testing.T) {
	ny := mustLoc(t, "America/New_York")
	// Tuesday
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, ny)

	got, err := Parse("next Friday 3:30pm", ny, now)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	want := time.Date(2025, 6, 13, 15, 30, 0, 0, ny)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got.In(ny), want)
	}

	// Asking for the current weekday means a week out.
	got, err = Parse("tuesday noon", ny, now)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	want = time.Date(2025, 6, 17, 12, 0, 0, 0, ny)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got.In(ny), want)
	}
}

func TestParse_BareClockRollsForward(t *testing.T) {
	utc := time.UTC
	now := time.Date(2025, 6, 10, 18, 0, 0, 0, utc)

	got, err := Parse("9am", utc, now)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if want := time.Date(2025, 6, 11, 9, 0, 0, 0, utc); !got.Equal(want) {
		t.Fatalf("past clock should land tomorrow: got %v, want %v", got, want)
	}

	got, err = Parse("8:15 pm", utc, now)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if want := time.Date(2025, 6, 10, 20, 15, 0, 0, utc); !got.Equal(want) {
		t.Fatalf("future clock should stay today: got %v, want %v", got, want)
	}
}

func TestParse_ExplicitFormats(t *testing.T) {
	ny := mustLoc(t, "America/New_York")
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, ny)

	got, err := Parse("2025-07-04 18:00", ny, now)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if want := time.Date(2025, 7, 4, 18, 0, 0, 0, ny); !got.Equal(want) {
		t.Fatalf("got %v, want %v", got.In(ny), want)
	}

	got, err = Parse("2025-07-04T18:00:00Z", ny, now)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if want := time.Date(2025, 7, 4, 18, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	got, err = Parse("july 4th 7pm", ny, now)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if want := time.Date(2025, 7, 4, 19, 0, 0, 0, ny); !got.Equal(want) {
		t.Fatalf("got %v, want %v", got.In(ny), want)
	}
}

func TestParse_RelativeOffsets(t *testing.T) {
	utc := time.UTC
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, utc)

	got, err := Parse("in 2 hours", utc, now)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if want := now.Add(2 * time.Hour); !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	got, err = Parse("in 3 days", utc, now)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if want := now.AddDate(0, 0, 3); !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestParse_Unparseable(t *testing.T) {
	utc := time.UTC
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, utc)

	for _, expr := range []string{"", "whenever works", "tomorrow-ish", "25pm", "tomorrow 10"} {
		_, err := Parse(expr, utc, now)
		if err == nil {
			t.Fatalf("Parse(%q) succeeded, want error", expr)
		}
		var parseErr *ParseError
		if !errors.As(err, &parseErr) {
			t.Fatalf("Parse(%q) error type = %T, want *ParseError", expr, err)
		}
		if parseErr.Input != expr {
			t.Fatalf("ParseError.Input = %q, want %q", parseErr.Input, expr)
		}
	}
}

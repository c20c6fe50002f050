package scheduler

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"bookline/backend/internal/domain"
	"bookline/backend/internal/store"
)

// Saturday May 31 2025, 2 PM in New York.
func fixedVoiceClock(t *testing.T) (func() time.Time, *time.Location) {
	t.Helper()
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load tz: %v", err)
	}
	now := time.Date(2025, 5, 31, 14, 0, 0, 0, ny)
	return func() time.Time { return now }, ny
}

func TestCreateFromNaturalLanguage_TomorrowMorning(t *testing.T) {
	clock, ny := fixedVoiceClock(t)

	var created domain.Appointment
	repo := &fakeRepo{
		createFn: func(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
			created = appt
			appt.ID = uuid.New()
			return appt, nil
		},
	}
	svc, _ := newTestService(repo, restaurantDirectory(50, "America/New_York"))
	svc.now = clock

	res := svc.CreateFromNaturalLanguage(context.Background(), VoiceBookingInput{
		BusinessID:          "r1",
		UserID:              "u1",
		NaturalLanguageTime: "tomorrow at 10 AM",
	})
	if !res.Success {
		t.Fatalf("success = false, message: %s", res.Message)
	}
	if res.Appointment == nil {
		t.Fatalf("appointment missing from result")
	}

	wantStart := time.Date(2025, 6, 1, 10, 0, 0, 0, ny)
	if !created.StartTime.Equal(wantStart) {
		t.Fatalf("start = %v, want %v", created.StartTime, wantStart)
	}
	if got := created.EndTime.Sub(created.StartTime); got != time.Hour {
		t.Fatalf("duration = %v, want default 1h", got)
	}
	if !strings.Contains(res.Message, "Sunday, June 1 at 10:00 AM") {
		t.Fatalf("message = %q, want local time mentioned", res.Message)
	}
}

func TestCreateFromNaturalLanguage_CallerTimezoneWins(t *testing.T) {
	clock, _ := fixedVoiceClock(t)
	chicago, _ := time.LoadLocation("America/Chicago")

	var created domain.Appointment
	repo := &fakeRepo{
		createFn: func(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
			created = appt
			return appt, nil
		},
	}
	svc, _ := newTestService(repo, restaurantDirectory(50, "America/New_York"))
	svc.now = clock

	res := svc.CreateFromNaturalLanguage(context.Background(), VoiceBookingInput{
		BusinessID:          "r1",
		UserID:              "u1",
		NaturalLanguageTime: "tomorrow at noon",
		Timezone:            "America/Chicago",
		DurationMinutes:     90,
	})
	if !res.Success {
		t.Fatalf("success = false, message: %s", res.Message)
	}
	wantStart := time.Date(2025, 6, 1, 12, 0, 0, 0, chicago)
	if !created.StartTime.Equal(wantStart) {
		t.Fatalf("start = %v, want %v", created.StartTime, wantStart)
	}
	if got := created.EndTime.Sub(created.StartTime); got != 90*time.Minute {
		t.Fatalf("duration = %v, want 90m", got)
	}
}

func TestCreateFromNaturalLanguage_ConflictSpeaksRetry(t *testing.T) {
	clock, _ := fixedVoiceClock(t)
	repo := &fakeRepo{
		createFn: func(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
			return domain.Appointment{}, store.ErrConflict
		},
	}
	svc, _ := newTestService(repo, restaurantDirectory(50, "America/New_York"))
	svc.now = clock

	res := svc.CreateFromNaturalLanguage(context.Background(), VoiceBookingInput{
		BusinessID:          "r1",
		UserID:              "u1",
		NaturalLanguageTime: "tomorrow at 7 pm",
	})
	if res.Success {
		t.Fatalf("success = true on conflict")
	}
	if res.Appointment != nil {
		t.Fatalf("appointment should be absent on failure")
	}
	if !strings.Contains(res.Message, "already booked") {
		t.Fatalf("message = %q, want conflict wording", res.Message)
	}
}

func TestCreateFromNaturalLanguage_UnparseablePhrase(t *testing.T) {
	clock, _ := fixedVoiceClock(t)
	svc, _ := newTestService(&fakeRepo{}, restaurantDirectory(50, "America/New_York"))
	svc.now = clock

	res := svc.CreateFromNaturalLanguage(context.Background(), VoiceBookingInput{
		BusinessID:          "r1",
		UserID:              "u1",
		NaturalLanguageTime: "whenever works",
	})
	if res.Success {
		t.Fatalf("success = true for unparseable phrase")
	}
	if !strings.Contains(res.Message, "didn't understand") || !strings.Contains(res.Message, "whenever works") {
		t.Fatalf("message = %q, want parse-failure wording echoing the phrase", res.Message)
	}
}

func TestCreateFromNaturalLanguage_UnknownTimezone(t *testing.T) {
	clock, _ := fixedVoiceClock(t)
	svc, _ := newTestService(&fakeRepo{}, restaurantDirectory(50, "America/New_York"))
	svc.now = clock

	res := svc.CreateFromNaturalLanguage(context.Background(), VoiceBookingInput{
		BusinessID:          "r1",
		UserID:              "u1",
		NaturalLanguageTime: "tomorrow at 10 am",
		Timezone:            "Mars/Olympus",
	})
	if res.Success {
		t.Fatalf("success = true for bogus timezone")
	}
	if !strings.Contains(res.Message, "incomplete") {
		t.Fatalf("message = %q, want validation wording", res.Message)
	}
}

func TestCreateFromNaturalLanguage_MissingBusiness(t *testing.T) {
	clock, _ := fixedVoiceClock(t)
	dir := &fakeDirectory{
		existsFn: func(ctx context.Context, businessID string) (bool, error) { return false, nil },
		getWithDetailsFn: func(ctx context.Context, businessID string) (domain.Business, error) {
			return domain.Business{}, store.ErrNotFound
		},
	}
	svc, _ := newTestService(&fakeRepo{}, dir)
	svc.now = clock

	res := svc.CreateFromNaturalLanguage(context.Background(), VoiceBookingInput{
		BusinessID:          "ghost",
		UserID:              "u1",
		NaturalLanguageTime: "tomorrow at 10 am",
	})
	if res.Success {
		t.Fatalf("success = true for missing business")
	}
	if !strings.Contains(res.Message, "couldn't find that business") {
		t.Fatalf("message = %q, want not-found wording", res.Message)
	}
}

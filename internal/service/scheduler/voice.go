package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bookline/backend/internal/domain"
	"bookline/backend/internal/naturaltime"
	"bookline/backend/internal/store"
)

const defaultBookingMinutes = 60

type VoiceBookingInput struct {
	BusinessID          string
	UserID              string
	NaturalLanguageTime string
	Timezone            string
	DurationMinutes     int
	PartySize           int
	Description         string
}

// VoiceBookingResult is always returned with a nil error: the voice channel
// cannot render structured failures, so every outcome carries a message the
// agent can speak back.
type VoiceBookingResult struct {
	Success     bool                `json:"success"`
	Message     string              `json:"message"`
	Appointment *domain.Appointment `json:"appointment,omitempty"`
}

// CreateFromNaturalLanguage resolves the timezone, parses the phrase,
// derives the end instant from the requested duration, and delegates to
// Create.
func (s *Service) CreateFromNaturalLanguage(ctx context.Context, in VoiceBookingInput) VoiceBookingResult {
	loc, err := s.resolveTimezone(ctx, in.BusinessID, in.Timezone)
	if err != nil {
		return VoiceBookingResult{Message: s.speakable(err)}
	}

	start, err := naturaltime.Parse(in.NaturalLanguageTime, loc, s.now())
	if err != nil {
		return VoiceBookingResult{Message: s.speakable(err)}
	}

	minutes := in.DurationMinutes
	if minutes <= 0 {
		minutes = defaultBookingMinutes
	}

	appt, err := s.Create(ctx, CreateInput{
		BusinessID:  in.BusinessID,
		UserID:      in.UserID,
		StartTime:   start,
		EndTime:     start.Add(time.Duration(minutes) * time.Minute),
		Description: in.Description,
		PartySize:   in.PartySize,
	})
	if err != nil {
		return VoiceBookingResult{Message: s.speakable(err)}
	}

	return VoiceBookingResult{
		Success: true,
		Message: fmt.Sprintf("You're booked for %s.",
			appt.StartTime.In(loc).Format("Monday, January 2 at 3:04 PM")),
		Appointment: &appt,
	}
}

// resolveTimezone picks, in order: the caller's zone, the business's
// configured zone, the runtime's local zone.
func (s *Service) resolveTimezone(ctx context.Context, businessID, tz string) (*time.Location, error) {
	if tz = strings.TrimSpace(tz); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, validationError(fmt.Sprintf("unknown timezone %q", tz))
		}
		return loc, nil
	}

	biz, err := s.businesses.GetWithDetails(ctx, businessID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("business %s: %w", businessID, store.ErrNotFound)
		}
		s.log.Warn("timezone lookup failed; using local",
			slog.String("business_id", businessID), slog.Any("err", err))
		return time.Local, nil
	}
	if biz.Timezone != "" {
		if loc, err := time.LoadLocation(biz.Timezone); err == nil {
			return loc, nil
		}
	}
	return time.Local, nil
}

// speakable converts any failure into a sentence for the voice agent.
func (s *Service) speakable(err error) string {
	var parseErr *naturaltime.ParseError
	var vErr *ValidationError
	switch {
	case errors.Is(err, store.ErrConflict):
		return "That time is already booked. Could you pick a different slot?"
	case errors.Is(err, store.ErrNotFound):
		return "I couldn't find that business. Please check and try again."
	case errors.As(err, &parseErr):
		return fmt.Sprintf("Sorry, I didn't understand the time %q. Could you rephrase it?", parseErr.Input)
	case errors.As(err, &vErr):
		return fmt.Sprintf("Sorry, that request was incomplete: %s.", vErr.Error())
	default:
		s.log.Error("voice booking failed", slog.Any("err", err))
		return "Something went wrong while booking. Please try again in a moment."
	}
}

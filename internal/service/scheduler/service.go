// Package scheduler is the public face of the booking core. It composes
// range validation, the availability oracle, capacity resolution, the
// natural-language time parser, and the read cache into the operations the
// dashboard and the voice webhook consume.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"bookline/backend/internal/cache"
	"bookline/backend/internal/domain"
	"bookline/backend/internal/store"
)

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

type Service struct {
	repo       store.AppointmentRepository
	businesses store.BusinessDirectory
	cache      *cache.TTLCache
	log        *slog.Logger
	now        func() time.Time
}

func NewService(repo store.AppointmentRepository, businesses store.BusinessDirectory, c *cache.TTLCache, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	if c == nil {
		c = cache.New(cache.DefaultTTL)
	}
	return &Service{
		repo:       repo,
		businesses: businesses,
		cache:      c,
		log:        log.With(slog.String("component", "scheduler")),
		now:        time.Now,
	}
}

type CreateInput struct {
	BusinessID  string
	UserID      string
	StartTime   time.Time
	EndTime     time.Time
	Description string
	PartySize   int
	Status      domain.AppointmentStatus
}

func (s *Service) Create(ctx context.Context, in CreateInput) (domain.Appointment, error) {
	if strings.TrimSpace(in.BusinessID) == "" {
		return domain.Appointment{}, validationError("business_id is required")
	}
	if strings.TrimSpace(in.UserID) == "" {
		return domain.Appointment{}, validationError("user_id is required")
	}
	start := in.StartTime.UTC()
	end := in.EndTime.UTC()
	if err := domain.ValidateRange(start, end); err != nil {
		return domain.Appointment{}, validationError(err.Error())
	}

	partySize := in.PartySize
	if partySize == 0 {
		partySize = 1
	}
	if partySize < 1 {
		return domain.Appointment{}, validationError("party_size must be positive")
	}

	status := in.Status
	if status == "" {
		status = domain.StatusPending
	}
	if !domain.ValidStatus(status) {
		return domain.Appointment{}, validationError(fmt.Sprintf("invalid status %q", status))
	}

	exists, err := s.businesses.Exists(ctx, in.BusinessID)
	if err != nil {
		return domain.Appointment{}, fmt.Errorf("business lookup: %w", err)
	}
	if !exists {
		return domain.Appointment{}, fmt.Errorf("business %s: %w", in.BusinessID, store.ErrNotFound)
	}

	appt, err := s.repo.Create(ctx, domain.Appointment{
		BusinessID:  in.BusinessID,
		UserID:      in.UserID,
		StartTime:   start,
		EndTime:     end,
		Description: strings.TrimSpace(in.Description),
		PartySize:   partySize,
		Status:      status,
	})
	if err != nil {
		return domain.Appointment{}, err
	}

	s.invalidateBusiness(appt.BusinessID, appt.ID)
	return appt, nil
}

// UpdateInput is a patch: nil fields keep the existing value.
type UpdateInput struct {
	StartTime   *time.Time
	EndTime     *time.Time
	Description *string
	PartySize   *int
	Status      *domain.AppointmentStatus
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (domain.Appointment, error) {
	if id == uuid.Nil {
		return domain.Appointment{}, validationError("appointment_id is required")
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Appointment{}, err
	}

	merged := existing
	timesChanged := false
	if in.StartTime != nil {
		merged.StartTime = in.StartTime.UTC()
		timesChanged = true
	}
	if in.EndTime != nil {
		merged.EndTime = in.EndTime.UTC()
		timesChanged = true
	}
	if timesChanged {
		if err := domain.ValidateRange(merged.StartTime, merged.EndTime); err != nil {
			return domain.Appointment{}, validationError(err.Error())
		}
	}
	if in.Description != nil {
		merged.Description = strings.TrimSpace(*in.Description)
	}
	if in.PartySize != nil {
		if *in.PartySize < 1 {
			return domain.Appointment{}, validationError("party_size must be positive")
		}
		merged.PartySize = *in.PartySize
	}
	if in.Status != nil {
		// Any of the five values may be written; the transition graph is
		// advisory for callers, not enforced here.
		if !domain.ValidStatus(*in.Status) {
			return domain.Appointment{}, validationError(fmt.Sprintf("invalid status %q", *in.Status))
		}
		merged.Status = *in.Status
	}

	updated, err := s.repo.Update(ctx, merged, timesChanged)
	if err != nil {
		return domain.Appointment{}, err
	}

	s.invalidateBusiness(updated.BusinessID, updated.ID)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return validationError("appointment_id is required")
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidateBusiness(existing.BusinessID, id)
	return nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (domain.Appointment, error) {
	if id == uuid.Nil {
		return domain.Appointment{}, validationError("appointment_id is required")
	}

	key := appointmentKey(id)
	if v, ok := s.cache.Get(key); ok {
		return v.(domain.Appointment), nil
	}

	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Appointment{}, err
	}
	s.cache.Set(key, appt)
	return appt, nil
}

func (s *Service) ListByBusiness(ctx context.Context, businessID string, window store.ListWindow) ([]domain.Appointment, error) {
	if strings.TrimSpace(businessID) == "" {
		return nil, validationError("business_id is required")
	}
	if !window.Start.IsZero() && !window.End.IsZero() {
		if err := domain.ValidateRange(window.Start, window.End); err != nil {
			return nil, validationError(err.Error())
		}
	}

	key := listKey(businessID, "", window)
	if v, ok := s.cache.Get(key); ok {
		return v.([]domain.Appointment), nil
	}

	appts, err := s.repo.ListByBusiness(ctx, businessID, window)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, appts)
	return appts, nil
}

func (s *Service) GetByStatus(ctx context.Context, businessID string, status domain.AppointmentStatus, window store.ListWindow) ([]domain.Appointment, error) {
	if strings.TrimSpace(businessID) == "" {
		return nil, validationError("business_id is required")
	}
	if !domain.ValidStatus(status) {
		return nil, validationError(fmt.Sprintf("invalid status %q", status))
	}

	key := listKey(businessID, string(status), window)
	if v, ok := s.cache.Get(key); ok {
		return v.([]domain.Appointment), nil
	}

	appts, err := s.repo.ListByStatus(ctx, businessID, status, window)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, appts)
	return appts, nil
}

func (s *Service) IsTimeSlotAvailable(ctx context.Context, businessID string, start, end time.Time, excludeID uuid.UUID) (bool, error) {
	if strings.TrimSpace(businessID) == "" {
		return false, validationError("business_id is required")
	}
	if err := domain.ValidateRange(start, end); err != nil {
		return false, validationError(err.Error())
	}

	exists, err := s.businesses.Exists(ctx, businessID)
	if err != nil {
		return false, fmt.Errorf("business lookup: %w", err)
	}
	if !exists {
		return false, fmt.Errorf("business %s: %w", businessID, store.ErrNotFound)
	}

	return s.repo.IsTimeSlotAvailable(ctx, businessID, start.UTC(), end.UTC(), excludeID)
}

// invalidateBusiness clears every cached read derived from the business
// before the mutating call returns, so the next read is guaranteed fresh.
func (s *Service) invalidateBusiness(businessID string, apptID uuid.UUID) {
	s.cache.Clear(appointmentKey(apptID))
	for _, prefix := range []string{"appointments:", "calendar:", "capacity:", "utilization:"} {
		s.cache.ClearByPrefix(prefix + businessID + ":")
	}
}

func appointmentKey(id uuid.UUID) string {
	return "appointment:" + id.String()
}

func listKey(businessID, status string, window store.ListWindow) string {
	start, end := "any", "any"
	if !window.Start.IsZero() {
		start = window.Start.UTC().Format(time.RFC3339)
	}
	if !window.End.IsZero() {
		end = window.End.UTC().Format(time.RFC3339)
	}
	if status != "" {
		return fmt.Sprintf("appointments:%s:status:%s:%s:%s", businessID, status, start, end)
	}
	return fmt.Sprintf("appointments:%s:%s:%s", businessID, start, end)
}

package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"bookline/backend/internal/domain"
)

// ListWindow bounds a listing query. Zero-valued sides mean unbounded.
type ListWindow struct {
	Start time.Time
	End   time.Time
}

type AppointmentRepository interface {
	Create(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Appointment, error)
	// Update writes the already-merged record. recheckSlot re-runs the
	// availability check (excluding the record itself) inside the same
	// transaction; callers set it only when the interval changed.
	Update(ctx context.Context, appt domain.Appointment, recheckSlot bool) (domain.Appointment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByBusiness(ctx context.Context, businessID string, window ListWindow) ([]domain.Appointment, error)
	ListByStatus(ctx context.Context, businessID string, status domain.AppointmentStatus, window ListWindow) ([]domain.Appointment, error)
	IsTimeSlotAvailable(ctx context.Context, businessID string, start, end time.Time, excludeID uuid.UUID) (bool, error)
}

// BusinessDirectory is the read-only collaborator that owns business
// profiles and their type-specific capacity details.
type BusinessDirectory interface {
	Exists(ctx context.Context, businessID string) (bool, error)
	GetWithDetails(ctx context.Context, businessID string) (domain.Business, error)
}

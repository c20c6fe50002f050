package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"bookline/backend/internal/domain"
)

// BookingTx is the set of operations available inside a per-business
// serialized transaction. Implementations hold the business calendar lock
// for the duration, so a slot check followed by a write is atomic.
type BookingTx interface {
	CreateAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
	UpdateAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
	IsTimeSlotAvailable(ctx context.Context, businessID string, start, end time.Time, excludeID uuid.UUID) (bool, error)
}

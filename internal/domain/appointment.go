package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusCompleted AppointmentStatus = "completed"
	StatusNoShow    AppointmentStatus = "no_show"
)

// ValidStatus reports whether s is one of the five appointment statuses.
// The transition graph between them is deliberately not enforced; callers
// may write any valid value.
func ValidStatus(s AppointmentStatus) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted, StatusNoShow:
		return true
	}
	return false
}

// ActiveStatuses are the statuses that hold a time slot and consume capacity.
var ActiveStatuses = []AppointmentStatus{StatusPending, StatusConfirmed}

// Active reports whether the status blocks overlapping bookings.
func (s AppointmentStatus) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

type Appointment struct {
	bun.BaseModel `bun:"table:appointments"`

	ID          uuid.UUID         `bun:"id,pk,type:uuid" json:"id"`
	BusinessID  string            `bun:"business_id,notnull" json:"business_id"`
	UserID      string            `bun:"user_id,notnull" json:"user_id"`
	StartTime   time.Time         `bun:"start_time,notnull" json:"start_time"`
	EndTime     time.Time         `bun:"end_time,notnull" json:"end_time"`
	Description string            `bun:"description" json:"description,omitempty"`
	PartySize   int               `bun:"party_size,notnull" json:"party_size"`
	Status      AppointmentStatus `bun:"status,notnull" json:"status"`
	CreatedAt   time.Time         `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt   time.Time         `bun:"updated_at,notnull" json:"updated_at"`
}

func (a *Appointment) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if a.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			a.ID = id
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		if a.UpdatedAt.IsZero() {
			a.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		a.UpdatedAt = now
	}
	return nil
}

// Overlaps reports whether [a.StartTime, a.EndTime) intersects [start, end).
// Half-open semantics: back-to-back appointments sharing an endpoint do not
// overlap.
func (a Appointment) Overlaps(start, end time.Time) bool {
	return a.StartTime.Before(end) && start.Before(a.EndTime)
}

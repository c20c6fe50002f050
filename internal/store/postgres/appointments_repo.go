package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"

	"bookline/backend/internal/domain"
	"bookline/backend/internal/store"
)

// overlapConstraint is the exclusion constraint over
// (business_id, tstzrange(start_time, end_time)) on active appointments.
// It backstops the in-transaction availability check.
const overlapConstraint = "appointments_business_no_overlap"

type AppointmentRepo struct {
	db *bun.DB
}

func NewAppointmentRepo(db *bun.DB) *AppointmentRepo {
	return &AppointmentRepo{db: db}
}

type bookingTx struct {
	tx bun.Tx
}

func (r *AppointmentRepo) Create(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	var out domain.Appointment
	err := r.InBusinessTransaction(ctx, appt.BusinessID, func(ctx context.Context, tx store.BookingTx) error {
		free, err := tx.IsTimeSlotAvailable(ctx, appt.BusinessID, appt.StartTime, appt.EndTime, uuid.Nil)
		if err != nil {
			return err
		}
		if !free {
			return store.ErrConflict
		}
		a, err := tx.CreateAppointment(ctx, appt)
		if err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return domain.Appointment{}, err
	}
	return out, nil
}

func (r *AppointmentRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Appointment, error) {
	var a domain.Appointment
	err := r.db.NewSelect().
		Model(&a).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Appointment{}, store.ErrNotFound
		}
		return domain.Appointment{}, err
	}
	return a, nil
}

// Update writes the full record. The caller has already merged the patch
// into the existing row and decides whether the interval changed enough to
// warrant re-checking availability.
func (r *AppointmentRepo) Update(ctx context.Context, appt domain.Appointment, recheckSlot bool) (domain.Appointment, error) {
	var out domain.Appointment
	err := r.InBusinessTransaction(ctx, appt.BusinessID, func(ctx context.Context, tx store.BookingTx) error {
		if recheckSlot && appt.Status.Active() {
			free, err := tx.IsTimeSlotAvailable(ctx, appt.BusinessID, appt.StartTime, appt.EndTime, appt.ID)
			if err != nil {
				return err
			}
			if !free {
				return store.ErrConflict
			}
		}
		a, err := tx.UpdateAppointment(ctx, appt)
		if err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return domain.Appointment{}, err
	}
	return out, nil
}

func (r *AppointmentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewDelete().
		Model((*domain.Appointment)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *AppointmentRepo) ListByBusiness(ctx context.Context, businessID string, window store.ListWindow) ([]domain.Appointment, error) {
	var rows []domain.Appointment
	q := r.db.NewSelect().
		Model(&rows).
		Where("business_id = ?", businessID).
		OrderExpr("start_time ASC")
	if err := applyWindow(q, window).Scan(ctx); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AppointmentRepo) ListByStatus(ctx context.Context, businessID string, status domain.AppointmentStatus, window store.ListWindow) ([]domain.Appointment, error) {
	var rows []domain.Appointment
	q := r.db.NewSelect().
		Model(&rows).
		Where("business_id = ?", businessID).
		Where("status = ?", status).
		OrderExpr("start_time ASC")
	if err := applyWindow(q, window).Scan(ctx); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AppointmentRepo) IsTimeSlotAvailable(ctx context.Context, businessID string, start, end time.Time, excludeID uuid.UUID) (bool, error) {
	return slotAvailable(ctx, r.db, businessID, start, end, excludeID)
}

// InBusinessTransaction serializes all mutations for one business behind a
// transaction-scoped advisory lock, closing the check-then-write race
// between concurrent bookings.
func (r *AppointmentRepo) InBusinessTransaction(ctx context.Context, businessID string, fn func(ctx context.Context, tx store.BookingTx) error) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockBusinessCalendar(ctx, tx, businessID); err != nil {
			return err
		}
		return fn(ctx, bookingTx{tx: tx})
	})
}

func lockBusinessCalendar(ctx context.Context, tx bun.Tx, businessID string) error {
	_, err := tx.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", businessID).Exec(ctx)
	return err
}

func (t bookingTx) CreateAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	m := appt
	_, err := t.tx.NewInsert().Model(&m).Exec(ctx)
	if err != nil {
		return domain.Appointment{}, mapConflict(err)
	}
	return m, nil
}

func (t bookingTx) UpdateAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	m := appt
	res, err := t.tx.NewUpdate().
		Model(&m).
		WherePK().
		ExcludeColumn("created_at").
		Exec(ctx)
	if err != nil {
		return domain.Appointment{}, mapConflict(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Appointment{}, err
	}
	if affected == 0 {
		return domain.Appointment{}, store.ErrNotFound
	}
	return m, nil
}

func (t bookingTx) IsTimeSlotAvailable(ctx context.Context, businessID string, start, end time.Time, excludeID uuid.UUID) (bool, error) {
	return slotAvailable(ctx, t.tx, businessID, start, end, excludeID)
}

// slotAvailable counts active appointments intersecting [start, end) under
// half-open semantics, so back-to-back bookings sharing an endpoint never
// conflict.
func slotAvailable(ctx context.Context, db bun.IDB, businessID string, start, end time.Time, excludeID uuid.UUID) (bool, error) {
	q := db.NewSelect().
		Model((*domain.Appointment)(nil)).
		Where("business_id = ?", businessID).
		Where("status IN (?)", bun.In(domain.ActiveStatuses)).
		Where("start_time < ?", end).
		Where("end_time > ?", start)
	if excludeID != uuid.Nil {
		q = q.Where("id != ?", excludeID)
	}

	n, err := q.Count(ctx)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

func applyWindow(q *bun.SelectQuery, window store.ListWindow) *bun.SelectQuery {
	if !window.End.IsZero() {
		q = q.Where("start_time < ?", window.End)
	}
	if !window.Start.IsZero() {
		q = q.Where("end_time > ?", window.Start)
	}
	return q
}

func mapConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23P01" && pgErr.ConstraintName == overlapConstraint {
		return store.ErrConflict
	}
	return err
}

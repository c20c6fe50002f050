package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bookline/backend/internal/domain"
	"bookline/backend/internal/store"
)

// businessContext is what the capacity operations need from the profile
// subsystem: a timezone and a capacity scalar. Lookup failures other than
// a missing business degrade to defaults because capacity is advisory.
type businessContext struct {
	totalCapacity int
	loc           *time.Location
}

func (s *Service) resolveBusinessContext(ctx context.Context, businessID string) (businessContext, error) {
	biz, err := s.businesses.GetWithDetails(ctx, businessID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return businessContext{}, fmt.Errorf("business %s: %w", businessID, store.ErrNotFound)
		}
		s.log.Warn("business details lookup failed; using defaults",
			slog.String("business_id", businessID), slog.Any("err", err))
		return businessContext{totalCapacity: domain.DefaultCapacity, loc: time.Local}, nil
	}

	loc := time.Local
	if tz := strings.TrimSpace(biz.Timezone); tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		} else {
			s.log.Warn("business has invalid timezone; using local",
				slog.String("business_id", businessID), slog.String("timezone", tz))
		}
	}

	return businessContext{
		totalCapacity: domain.ResolveTotalCapacity(biz.Details),
		loc:           loc,
	}, nil
}

// GetBusinessCapacity computes the capacity snapshot for the calendar day
// containing date, midnight to midnight in the business's local timezone.
func (s *Service) GetBusinessCapacity(ctx context.Context, businessID string, date time.Time) (domain.CapacitySnapshot, error) {
	if strings.TrimSpace(businessID) == "" {
		return domain.CapacitySnapshot{}, validationError("business_id is required")
	}
	if date.IsZero() {
		return domain.CapacitySnapshot{}, validationError("date is required")
	}

	bc, err := s.resolveBusinessContext(ctx, businessID)
	if err != nil {
		return domain.CapacitySnapshot{}, err
	}

	dayStart, dayEnd := domain.DayWindow(date, bc.loc)
	key := fmt.Sprintf("capacity:%s:%s", businessID, dayStart.In(bc.loc).Format("2006-01-02"))
	if v, ok := s.cache.Get(key); ok {
		return v.(domain.CapacitySnapshot), nil
	}

	appts, err := s.repo.ListByBusiness(ctx, businessID, store.ListWindow{Start: dayStart, End: dayEnd})
	if err != nil {
		return domain.CapacitySnapshot{}, err
	}

	snapshot := domain.ComputeCapacitySnapshot(dayStart, dayEnd, bc.loc, bc.totalCapacity, appts)
	s.cache.Set(key, snapshot)
	return snapshot, nil
}

// GetUtilizationSummary aggregates bookings over an inclusive date range.
// Every day in the range appears in the output even with zero bookings.
func (s *Service) GetUtilizationSummary(ctx context.Context, businessID string, r domain.DateRange) (domain.UtilizationSummary, error) {
	if strings.TrimSpace(businessID) == "" {
		return domain.UtilizationSummary{}, validationError("business_id is required")
	}
	if err := domain.ValidateDateRange(r); err != nil {
		return domain.UtilizationSummary{}, validationError(err.Error())
	}

	bc, err := s.resolveBusinessContext(ctx, businessID)
	if err != nil {
		return domain.UtilizationSummary{}, err
	}

	rangeStart, _ := domain.DayWindow(r.Start, bc.loc)
	_, rangeEnd := domain.DayWindow(r.End, bc.loc)

	key := fmt.Sprintf("utilization:%s:%s:%s", businessID,
		rangeStart.Format(time.RFC3339), rangeEnd.Format(time.RFC3339))
	if v, ok := s.cache.Get(key); ok {
		return v.(domain.UtilizationSummary), nil
	}

	appts, err := s.repo.ListByBusiness(ctx, businessID, store.ListWindow{Start: rangeStart, End: rangeEnd})
	if err != nil {
		return domain.UtilizationSummary{}, err
	}

	summary := domain.ComputeUtilizationSummary(r, bc.loc, bc.totalCapacity, appts)
	s.cache.Set(key, summary)
	return summary, nil
}

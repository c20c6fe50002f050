// Package http exposes the scheduler to the web dashboard and the
// voice-agent webhook as a JSON API.
package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"bookline/backend/internal/domain"
	"bookline/backend/internal/service/scheduler"
	"bookline/backend/internal/store"
)

type schedulerService interface {
	Create(ctx context.Context, in scheduler.CreateInput) (domain.Appointment, error)
	Update(ctx context.Context, id uuid.UUID, in scheduler.UpdateInput) (domain.Appointment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (domain.Appointment, error)
	ListByBusiness(ctx context.Context, businessID string, window store.ListWindow) ([]domain.Appointment, error)
	GetByStatus(ctx context.Context, businessID string, status domain.AppointmentStatus, window store.ListWindow) ([]domain.Appointment, error)
	IsTimeSlotAvailable(ctx context.Context, businessID string, start, end time.Time, excludeID uuid.UUID) (bool, error)
	GetBusinessCapacity(ctx context.Context, businessID string, date time.Time) (domain.CapacitySnapshot, error)
	GetUtilizationSummary(ctx context.Context, businessID string, r domain.DateRange) (domain.UtilizationSummary, error)
	CreateFromNaturalLanguage(ctx context.Context, in scheduler.VoiceBookingInput) scheduler.VoiceBookingResult
}

type Server struct {
	svc schedulerService
	log *slog.Logger
}

func NewServer(svc schedulerService, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		svc: svc,
		log: log.With(slog.String("component", "http.scheduler")),
	}
}

func (s *Server) RegisterRoutes(g *echo.Group) {
	g.POST("/appointments", s.CreateAppointment)
	g.GET("/appointments/:id", s.GetAppointment)
	g.PATCH("/appointments/:id", s.UpdateAppointment)
	g.DELETE("/appointments/:id", s.DeleteAppointment)

	g.GET("/businesses/:businessId/appointments", s.ListAppointments)
	g.GET("/businesses/:businessId/availability", s.CheckAvailability)
	g.GET("/businesses/:businessId/capacity", s.GetCapacity)
	g.GET("/businesses/:businessId/utilization", s.GetUtilization)

	g.POST("/voice/bookings", s.VoiceBooking)
}

type createAppointmentRequest struct {
	BusinessID  string    `json:"business_id"`
	UserID      string    `json:"user_id"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Description string    `json:"description"`
	PartySize   int       `json:"party_size"`
	Status      string    `json:"status"`
}

func (s *Server) CreateAppointment(c echo.Context) error {
	var req createAppointmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	appt, err := s.svc.Create(c.Request().Context(), scheduler.CreateInput{
		BusinessID:  req.BusinessID,
		UserID:      req.UserID,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Description: req.Description,
		PartySize:   req.PartySize,
		Status:      domain.AppointmentStatus(req.Status),
	})
	if err != nil {
		return s.mapError(c, "CreateAppointment", err)
	}
	return c.JSON(http.StatusCreated, appt)
}

func (s *Server) GetAppointment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "appointment id must be a UUID")
	}
	appt, err := s.svc.GetByID(c.Request().Context(), id)
	if err != nil {
		return s.mapError(c, "GetAppointment", err)
	}
	return c.JSON(http.StatusOK, appt)
}

type updateAppointmentRequest struct {
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	Description *string    `json:"description"`
	PartySize   *int       `json:"party_size"`
	Status      *string    `json:"status"`
}

func (s *Server) UpdateAppointment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "appointment id must be a UUID")
	}
	var req updateAppointmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	in := scheduler.UpdateInput{
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Description: req.Description,
		PartySize:   req.PartySize,
	}
	if req.Status != nil {
		status := domain.AppointmentStatus(*req.Status)
		in.Status = &status
	}

	appt, err := s.svc.Update(c.Request().Context(), id, in)
	if err != nil {
		return s.mapError(c, "UpdateAppointment", err)
	}
	return c.JSON(http.StatusOK, appt)
}

func (s *Server) DeleteAppointment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "appointment id must be a UUID")
	}
	if err := s.svc.Delete(c.Request().Context(), id); err != nil {
		return s.mapError(c, "DeleteAppointment", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) ListAppointments(c echo.Context) error {
	businessID := c.Param("businessId")
	window, err := windowFromQuery(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	if status := c.QueryParam("status"); status != "" {
		appts, err := s.svc.GetByStatus(ctx, businessID, domain.AppointmentStatus(status), window)
		if err != nil {
			return s.mapError(c, "ListAppointments", err)
		}
		return c.JSON(http.StatusOK, appts)
	}

	appts, err := s.svc.ListByBusiness(ctx, businessID, window)
	if err != nil {
		return s.mapError(c, "ListAppointments", err)
	}
	return c.JSON(http.StatusOK, appts)
}

func (s *Server) CheckAvailability(c echo.Context) error {
	businessID := c.Param("businessId")
	start, err := parseTimeParam(c, "start")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	end, err := parseTimeParam(c, "end")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	excludeID := uuid.Nil
	if raw := c.QueryParam("exclude"); raw != "" {
		excludeID, err = uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "exclude must be a UUID")
		}
	}

	available, err := s.svc.IsTimeSlotAvailable(c.Request().Context(), businessID, start, end, excludeID)
	if err != nil {
		return s.mapError(c, "CheckAvailability", err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"available": available})
}

func (s *Server) GetCapacity(c echo.Context) error {
	businessID := c.Param("businessId")
	date, err := parseDateParam(c, "date")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	snapshot, err := s.svc.GetBusinessCapacity(c.Request().Context(), businessID, date)
	if err != nil {
		return s.mapError(c, "GetCapacity", err)
	}
	return c.JSON(http.StatusOK, snapshot)
}

func (s *Server) GetUtilization(c echo.Context) error {
	businessID := c.Param("businessId")
	start, err := parseDateParam(c, "start")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	end, err := parseDateParam(c, "end")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	summary, err := s.svc.GetUtilizationSummary(c.Request().Context(), businessID, domain.DateRange{Start: start, End: end})
	if err != nil {
		return s.mapError(c, "GetUtilization", err)
	}
	return c.JSON(http.StatusOK, summary)
}

type voiceBookingRequest struct {
	BusinessID          string `json:"business_id"`
	UserID              string `json:"user_id"`
	NaturalLanguageTime string `json:"natural_language_time"`
	Timezone            string `json:"timezone"`
	DurationMinutes     int    `json:"duration_minutes"`
	PartySize           int    `json:"party_size"`
	Description         string `json:"description"`
}

// VoiceBooking always answers 200: failures come back as a speakable
// message in the body, never as an HTTP error the agent cannot relay.
func (s *Server) VoiceBooking(c echo.Context) error {
	var req voiceBookingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusOK, scheduler.VoiceBookingResult{
			Message: "Sorry, I couldn't read that booking request.",
		})
	}

	result := s.svc.CreateFromNaturalLanguage(c.Request().Context(), scheduler.VoiceBookingInput{
		BusinessID:          req.BusinessID,
		UserID:              req.UserID,
		NaturalLanguageTime: req.NaturalLanguageTime,
		Timezone:            req.Timezone,
		DurationMinutes:     req.DurationMinutes,
		PartySize:           req.PartySize,
		Description:         req.Description,
	})
	return c.JSON(http.StatusOK, result)
}

func (s *Server) mapError(c echo.Context, op string, err error) error {
	log := s.log.With(slog.String("op", op))

	var vErr *scheduler.ValidationError
	switch {
	case errors.As(err, &vErr):
		log.Warn("rejected", slog.String("reason", vErr.Error()))
		return echo.NewHTTPError(http.StatusBadRequest, vErr.Error())
	case errors.Is(err, store.ErrNotFound):
		log.Warn("not found")
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrConflict):
		log.Warn("slot conflict")
		return echo.NewHTTPError(http.StatusConflict, "that time slot is already booked")
	default:
		log.Error("operation failed", slog.Any("err", err))
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

func windowFromQuery(c echo.Context) (store.ListWindow, error) {
	var window store.ListWindow
	if raw := c.QueryParam("start"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return store.ListWindow{}, errors.New("start must be RFC 3339")
		}
		window.Start = t
	}
	if raw := c.QueryParam("end"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return store.ListWindow{}, errors.New("end must be RFC 3339")
		}
		window.End = t
	}
	return window, nil
}

func parseTimeParam(c echo.Context, name string) (time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return time.Time{}, errors.New(name + " is required")
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, errors.New(name + " must be RFC 3339")
	}
	return t, nil
}

// parseDateParam accepts either a bare date or a full RFC 3339 instant.
func parseDateParam(c echo.Context, name string) (time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return time.Time{}, errors.New(name + " is required")
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, errors.New(name + " must be a date or RFC 3339 instant")
	}
	return t, nil
}

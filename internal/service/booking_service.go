package service

import (
	"context"
	"fmt"
	"time"

	"wellspring/internal/calendar"
	"wellspring/internal/model"
	"wellspring/internal/repository"

	"github.com/rs/zerolog"
)

// OpeningHours bounds the bookable part of a day.
type OpeningHours struct {
	Opens    string // HH:MM
	Closes   string // HH:MM
	Step     time.Duration
	Location *time.Location
}

// bookingService implements BookingService.
type bookingService struct {
	catalog  repository.CatalogRepository
	calendar calendar.Client
	hours    OpeningHours
	logger   zerolog.Logger
}

// NewBookingService creates a new booking availability service.
func NewBookingService(
	catalog repository.CatalogRepository,
	cal calendar.Client,
	hours OpeningHours,
	logger zerolog.Logger,
) BookingService {
	if hours.Location == nil {
		hours.Location = time.UTC
	}
	if hours.Step <= 0 {
		hours.Step = 30 * time.Minute
	}
	return &bookingService{
		catalog:  catalog,
		calendar: cal,
		hours:    hours,
		logger:   logger.With().Str("service", "booking").Logger(),
	}
}

// Availability lists the free slots of the service on date (YYYY-MM-DD).
func (s *bookingService) Availability(ctx context.Context, serviceSlug, date string) (*model.AvailabilityResponse, error) {
	opensAt, err := time.ParseInLocation(bookingDateLayout+" "+bookingTimeLayout, date+" "+s.hours.Opens, s.hours.Location)
	if err != nil {
		return nil, model.ErrInvalidBooking
	}
	closesAt, err := time.ParseInLocation(bookingDateLayout+" "+bookingTimeLayout, date+" "+s.hours.Closes, s.hours.Location)
	if err != nil {
		return nil, model.ErrInvalidBooking
	}

	svc, err := s.catalog.GetServiceBySlug(ctx, serviceSlug)
	if err != nil {
		s.logger.Error().Err(err).Str("slug", serviceSlug).Msg("failed to get service")
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	if svc == nil {
		return nil, model.ErrItemNotFound
	}

	busy, err := s.calendar.ListEvents(ctx, opensAt, closesAt)
	if err != nil {
		s.logger.Error().Err(err).Str("date", date).Msg("failed to list calendar events")
		return nil, fmt.Errorf("failed to list calendar events: %w", err)
	}

	duration := time.Duration(svc.DurationMinutes) * time.Minute
	slots := calendar.FreeSlots(opensAt, closesAt, calendar.BusyIntervals(busy), duration, s.hours.Step)

	s.logger.Debug().
		Str("slug", serviceSlug).
		Str("date", date).
		Int("busy", len(busy)).
		Int("free", len(slots)).
		Msg("availability computed")

	return &model.AvailabilityResponse{
		Service: svc.Slug,
		Date:    date,
		Slots:   slots,
	}, nil
}

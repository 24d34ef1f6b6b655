package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"wellspring/internal/calendar"
	"wellspring/internal/model"

	"github.com/rs/zerolog"
)

const backoffOnError = 2 * time.Second

// BookingHandler mirrors the booked services of a paid order into the practice
// calendar, one event per service line with a booking date and time.
type BookingHandler struct {
	calendar calendar.Client
	location *time.Location
	logger   zerolog.Logger
}

// NewBookingHandler creates a handler writing to cal in loc.
func NewBookingHandler(cal calendar.Client, loc *time.Location, logger zerolog.Logger) *BookingHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &BookingHandler{
		calendar: cal,
		location: loc,
		logger:   logger.With().Str("component", "booking-consumer").Logger(),
	}
}

func (h *BookingHandler) HandleMessage(ctx context.Context, body []byte) error {
	var event OrderPaidEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return Permanent(fmt.Errorf("failed to decode order.paid event: %w", err))
	}

	created := 0
	for _, item := range event.Items {
		if item.ItemType != model.ItemTypeService || item.BookingDate == "" {
			continue
		}
		if item.BookingTime == "" {
			h.logger.Warn().
				Str("order_id", event.OrderID.String()).
				Int("line_no", item.LineNo).
				Msg("booking has no time, not creating calendar event")
			continue
		}

		start, err := time.ParseInLocation("2006-01-02 15:04", item.BookingDate+" "+item.BookingTime, h.location)
		if err != nil {
			h.logger.Warn().Err(err).Str("order_id", event.OrderID.String()).Int("line_no", item.LineNo).Msg("invalid booking slot")
			continue
		}
		duration := time.Duration(item.DurationMinutes) * time.Minute
		if duration <= 0 {
			duration = time.Hour
		}

		id, err := h.calendar.CreateEvent(ctx, calendar.Event{
			Summary:     item.Name,
			Description: fmt.Sprintf("Order %s, line %d, %s", event.OrderID, item.LineNo, event.CustomerEmail),
			Start:       start,
			End:         start.Add(duration),
		})
		if err != nil {
			return fmt.Errorf("failed to create calendar event for order %s: %w", event.OrderID, err)
		}
		created++

		h.logger.Info().
			Str("order_id", event.OrderID.String()).
			Str("event_id", id).
			Time("start", start).
			Msg("booking added to calendar")
	}

	h.logger.Debug().Str("order_id", event.OrderID.String()).Int("bookings", created).Msg("order.paid handled")
	return nil
}

package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// GoogleConfig configures the Google Calendar client.
type GoogleConfig struct {
	CalendarID      string
	CredentialsFile string
	CredentialsJSON string
	TimeZone        string
	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

// GoogleClient talks to Google Calendar through a circuit breaker so a slow or
// failing provider does not hold every availability request.
type GoogleClient struct {
	events     *gcal.EventsService
	calendarID string
	timeZone   string
	breaker    *gobreaker.CircuitBreaker[any]
	logger     zerolog.Logger
}

// NewGoogleClient creates a client authenticated with a service account.
func NewGoogleClient(ctx context.Context, cfg GoogleConfig, logger zerolog.Logger) (*GoogleClient, error) {
	var opts []option.ClientOption
	switch {
	case cfg.CredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	return newGoogleClient(svc.Events, cfg, logger), nil
}

func newGoogleClient(events *gcal.EventsService, cfg GoogleConfig, logger zerolog.Logger) *GoogleClient {
	log := logger.With().Str("component", "google_calendar").Logger()
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}

	breaker := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "google-calendar",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})

	return &GoogleClient{
		events:     events,
		calendarID: cfg.CalendarID,
		timeZone:   cfg.TimeZone,
		breaker:    breaker,
		logger:     log,
	}
}

func (c *GoogleClient) ListEvents(ctx context.Context, from, to time.Time) ([]Event, error) {
	res, err := c.execute(func() (any, error) {
		return c.events.List(c.calendarID).
			TimeMin(from.Format(time.RFC3339)).
			TimeMax(to.Format(time.RFC3339)).
			SingleEvents(true).
			OrderBy("startTime").
			Context(ctx).
			Do()
	})
	if err != nil {
		c.logger.Error().Err(err).Time("from", from).Time("to", to).Msg("failed to list calendar events")
		return nil, fmt.Errorf("failed to list calendar events: %w", err)
	}

	list := res.(*gcal.Events)
	events := make([]Event, 0, len(list.Items))
	for _, item := range list.Items {
		e, ok := fromGoogle(item)
		if !ok {
			continue
		}
		events = append(events, e)
	}
	return events, nil
}

func (c *GoogleClient) CreateEvent(ctx context.Context, e Event) (string, error) {
	res, err := c.execute(func() (any, error) {
		return c.events.Insert(c.calendarID, c.toGoogle(e)).Context(ctx).Do()
	})
	if err != nil {
		c.logger.Error().Err(err).Str("summary", e.Summary).Msg("failed to create calendar event")
		return "", fmt.Errorf("failed to create calendar event: %w", err)
	}
	return res.(*gcal.Event).Id, nil
}

func (c *GoogleClient) DeleteEvent(ctx context.Context, id string) error {
	_, err := c.execute(func() (any, error) {
		return nil, c.events.Delete(c.calendarID, id).Context(ctx).Do()
	})
	if err != nil {
		c.logger.Error().Err(err).Str("event_id", id).Msg("failed to delete calendar event")
		return fmt.Errorf("failed to delete calendar event: %w", err)
	}
	return nil
}

func (c *GoogleClient) execute(fn func() (any, error)) (any, error) {
	res, err := c.breaker.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, ErrUnavailable
	}
	return res, err
}

func (c *GoogleClient) toGoogle(e Event) *gcal.Event {
	return &gcal.Event{
		Summary:     e.Summary,
		Description: e.Description,
		Start:       &gcal.EventDateTime{DateTime: e.Start.Format(time.RFC3339), TimeZone: c.timeZone},
		End:         &gcal.EventDateTime{DateTime: e.End.Format(time.RFC3339), TimeZone: c.timeZone},
	}
}

// fromGoogle converts a provider event. All-day events use Date instead of
// DateTime and block the whole day.
func fromGoogle(item *gcal.Event) (Event, bool) {
	if item == nil || item.Start == nil || item.End == nil || item.Status == "cancelled" {
		return Event{}, false
	}

	start, ok := parseEventTime(item.Start)
	if !ok {
		return Event{}, false
	}
	end, ok := parseEventTime(item.End)
	if !ok {
		return Event{}, false
	}

	return Event{
		ID:          item.Id,
		Summary:     item.Summary,
		Description: item.Description,
		Start:       start,
		End:         end,
	}, true
}

func parseEventTime(dt *gcal.EventDateTime) (time.Time, bool) {
	if dt.DateTime != "" {
		t, err := time.Parse(time.RFC3339, dt.DateTime)
		return t, err == nil
	}
	if dt.Date != "" {
		loc := time.UTC
		if dt.TimeZone != "" {
			if l, err := time.LoadLocation(dt.TimeZone); err == nil {
				loc = l
			}
		}
		t, err := time.ParseInLocation("2006-01-02", dt.Date, loc)
		return t, err == nil
	}
	return time.Time{}, false
}

// Package calendar reaches the practice calendar used for service bookings.
package calendar

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is returned while the circuit breaker rejects calls.
var ErrUnavailable = errors.New("calendar unavailable")

// Event is a calendar entry relevant to availability.
type Event struct {
	ID          string
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
}

// Client is the calendar collaborator.
type Client interface {
	// ListEvents returns events overlapping [from, to).
	ListEvents(ctx context.Context, from, to time.Time) ([]Event, error)

	// CreateEvent inserts an event and returns its provider id.
	CreateEvent(ctx context.Context, e Event) (string, error)

	// DeleteEvent removes the event with the given provider id.
	DeleteEvent(ctx context.Context, id string) error
}

// NopClient is used when no calendar is configured: every day is free and
// bookings are not mirrored anywhere.
type NopClient struct{}

func (NopClient) ListEvents(context.Context, time.Time, time.Time) ([]Event, error) { return nil, nil }
func (NopClient) CreateEvent(context.Context, Event) (string, error)              { return "", nil }
func (NopClient) DeleteEvent(context.Context, string) error                       { return nil }

package events

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// DeadLetterSuffix is appended to a queue or topic name to get the place
// messages are parked once every delivery attempt failed.
const DeadLetterSuffix = ".dead"

// maxHandleAttempts bounds how often one message is offered to a handler.
const maxHandleAttempts = 3

// retryDelay is the pause before the second attempt; it doubles after that.
var retryDelay = time.Second

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying, e.g. a body that cannot be decoded.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// handleWithRetry offers body to h up to maxHandleAttempts times. It stops
// early on success, on a permanent error, or when ctx is cancelled, and
// returns the last handler error.
func handleWithRetry(ctx context.Context, h Handler, body []byte, logger zerolog.Logger) error {
	delay := retryDelay
	var err error
	for attempt := 1; attempt <= maxHandleAttempts; attempt++ {
		if err = h.HandleMessage(ctx, body); err == nil {
			return nil
		}
		if IsPermanent(err) || attempt == maxHandleAttempts {
			return err
		}
		logger.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", delay).Msg("handler failed, retrying")
		if !sleep(ctx, delay) {
			return err
		}
		delay *= 2
	}
	return err
}

package infra

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// Backoff configures exponential retry for outbound HTTP calls.
type Backoff struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

func DefaultBackoff() Backoff {
	return Backoff{
		MaxAttempts:  3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
	}
}

// Do runs fn until it succeeds or attempts run out, backing off between
// tries. Context cancellation is never retried.
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	var lastErr error
	delay := b.InitialDelay

	for attempt := 1; attempt <= b.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		if attempt == b.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay = time.Duration(float64(delay) * b.Multiplier)
		if delay > b.MaxDelay {
			delay = b.MaxDelay
		}
	}

	return lastErr
}

// IsRetryableHTTPStatus reports whether the status is worth another try.
func IsRetryableHTTPStatus(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests ||
		statusCode == http.StatusServiceUnavailable ||
		statusCode == http.StatusGatewayTimeout ||
		statusCode >= 500
}

package extraction

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"compliance-backend/internal/shared/telemetry"
)

const (
	retryMaxAttempts    = 3
	retryInitialBackoff = 500 * time.Millisecond
	retryMaxBackoff     = 5 * time.Second
	breakerOpenTimeout  = 30 * time.Second
	breakerMinRequests  = 5
	breakerFailureRatio = 0.6
)

// ErrProviderUnavailable is returned when the circuit is open and calls are
// being shed instead of sent to the provider.
var ErrProviderUnavailable = errors.New("extraction provider unavailable")

// ResilientClient wraps a Client with retry and a circuit breaker so a
// degraded provider fails fast instead of stalling every job in the queue.
type ResilientClient struct {
	inner   Client
	breaker *gobreaker.CircuitBreaker[Fields]
}

// NewResilientClient wraps the given client.
func NewResilientClient(inner Client) *ResilientClient {
	settings := gobreaker.Settings{
		Name:    "extraction",
		Timeout: breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < breakerMinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= breakerFailureRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			telemetry.Warn("extraction.breaker_state", map[string]any{
				"from": from.String(),
				"to":   to.String(),
			})
		},
	}
	return &ResilientClient{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker[Fields](settings),
	}
}

// ExtractFields calls the wrapped provider through the breaker, retrying
// transient failures with exponential backoff.
func (r *ResilientClient) ExtractFields(ctx context.Context, input Input) (Fields, error) {
	fields, err := r.breaker.Execute(func() (Fields, error) {
		return r.extractWithRetry(ctx, input)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return Fields{}, ErrProviderUnavailable
	}
	return fields, err
}

func (r *ResilientClient) extractWithRetry(ctx context.Context, input Input) (Fields, error) {
	backoff := retryInitialBackoff
	var lastErr error

	for attempt := 1; attempt <= retryMaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return Fields{}, err
		}

		fields, err := r.inner.ExtractFields(ctx, input)
		if err == nil {
			return fields, nil
		}
		lastErr = err

		if !isRetryable(err) || attempt == retryMaxAttempts {
			return Fields{}, err
		}

		telemetry.Warn("extraction.retry", map[string]any{
			"attempt":    attempt,
			"backoff_ms": backoff.Milliseconds(),
			"error":      err.Error(),
		})

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return Fields{}, err
		case <-timer.C:
		}

		backoff *= 2
		if backoff > retryMaxBackoff {
			backoff = retryMaxBackoff
		}
	}

	return Fields{}, lastErr
}

// isRetryable treats timeouts, rate limits, and 5xx-shaped provider errors as
// transient. Schema and auth failures retry never.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, ErrNotImplemented) {
		return false
	}
	msg := err.Error()
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		strings.Contains(msg, "timeout"),
		strings.Contains(msg, "rate_limit"),
		strings.Contains(msg, "server_error"),
		strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "connection reset"):
		return true
	}
	return false
}

var _ Client = (*ResilientClient)(nil)

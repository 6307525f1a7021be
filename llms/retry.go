package llms

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/kadirpekel/troupe/internal/httpclient"
)

// RetryPolicy is the explicit retry/backoff object a provider uses around
// its HTTP call, replacing the ad hoc retry loop the teacher inlines in its
// streaming reader. Backoff is exponential: waitingTime * backoffFactor^n.
type RetryPolicy struct {
	MaxAttempts   int
	WaitingTime   time.Duration
	BackoffFactor float64
}

// NewRetryPolicy builds a RetryPolicy from the LLM config's waiting_time
// (seconds) and exponential_backoff_factor fields.
func NewRetryPolicy(maxAttempts int, waitingTimeSeconds, backoffFactor float64) RetryPolicy {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if waitingTimeSeconds <= 0 {
		waitingTimeSeconds = 1
	}
	if backoffFactor <= 0 {
		backoffFactor = 5
	}
	return RetryPolicy{
		MaxAttempts:   maxAttempts,
		WaitingTime:   time.Duration(waitingTimeSeconds * float64(time.Second)),
		BackoffFactor: backoffFactor,
	}
}

// Do runs fn, retrying only on errors that are (or wrap) an
// *httpclient.RetryableError whose IsRetryable() is true (any other error is
// returned at once), up to MaxAttempts, sleeping
// for an exponentially increasing backoff between attempts honoring any
// provider-reported RetryAfter.
func (p RetryPolicy) Do(ctx context.Context, name string, fn func(attempt int) error) error {
	var lastErr error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		err := fn(attempt)
		if err == nil {
			return nil
		}
		lastErr = err

		var retryable *httpclient.RetryableError
		if !errors.As(err, &retryable) || !retryable.IsRetryable() {
			return err
		}

		wait := p.backoffFor(attempt)
		if retryable.RetryAfter > 0 {
			wait = retryable.RetryAfter
		}

		slog.Warn("llm request retrying", "provider", name, "attempt", attempt+1, "wait", wait, "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return lastErr
}

func (p RetryPolicy) backoffFor(attempt int) time.Duration {
	multiplier := math.Pow(p.BackoffFactor, float64(attempt))
	return time.Duration(float64(p.WaitingTime) * multiplier)
}

// Package retry runs remote calls under an exponential backoff policy with an
// explicit attempt bound. A call either yields its value or an *Error that says
// why no value was produced.
package retry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"solar-pipeline/infrastructure/logger"

	"github.com/cenkalti/backoff/v4"
	"google.golang.org/api/googleapi"
)

var (
	// ErrExhausted marks a transient failure that used up every attempt.
	ErrExhausted = errors.New("retries exhausted")
	// ErrPermanent marks a failure that retrying cannot fix.
	ErrPermanent = errors.New("permanent failure")
)

// Policy describes the delay sequence. With the defaults an operation is
// called at most three times, waiting 2s and then 4s between calls.
type Policy struct {
	BaseDelay   time.Duration
	Multiplier  float64
	MaxAttempts int
}

// DefaultPolicy mirrors the harvesting defaults.
var DefaultPolicy = Policy{
	BaseDelay:   2 * time.Second,
	Multiplier:  2,
	MaxAttempts: 3,
}

// Error is returned when an operation produced no result.
type Error struct {
	Operation string
	Attempts  int
	Reason    error // ErrExhausted, ErrPermanent or a context error
	Err       error // last error returned by the operation
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v after %d attempt(s): %v", e.Operation, e.Reason, e.Attempts, e.Err)
}

func (e *Error) Unwrap() []error { return []error{e.Reason, e.Err} }

// Timer is the sleep primitive used between attempts.
type Timer = backoff.Timer

// Retrier executes operations under a Policy.
type Retrier struct {
	policy   Policy
	newTimer func() Timer
}

// New returns a Retrier for p. Zero fields fall back to DefaultPolicy.
func New(p Policy) *Retrier {
	if p.BaseDelay <= 0 {
		p.BaseDelay = DefaultPolicy.BaseDelay
	}
	if p.Multiplier < 1 {
		p.Multiplier = DefaultPolicy.Multiplier
	}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultPolicy.MaxAttempts
	}
	return &Retrier{policy: p}
}

// WithTimer swaps the sleep timer; tests use it to record delays instead of sleeping.
func (r *Retrier) WithTimer(newTimer func() Timer) *Retrier {
	r.newTimer = newTimer
	return r
}

// Policy returns the effective policy.
func (r *Retrier) Policy() Policy { return r.policy }

func (r *Retrier) backOff(ctx context.Context) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = r.policy.BaseDelay
	eb.Multiplier = r.policy.Multiplier
	eb.RandomizationFactor = 0
	eb.MaxInterval = time.Duration(1<<62 - 1)
	eb.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(eb, uint64(r.policy.MaxAttempts-1)), ctx)
}

// Do runs fn until it succeeds, fails permanently, or runs out of attempts.
func Do[T any](ctx context.Context, r *Retrier, operation string, fn func() (T, error)) (T, error) {
	attempts := 0
	permanent := false
	wrapped := func() (T, error) {
		attempts++
		v, err := fn()
		if err != nil && !IsTransient(err) {
			permanent = true
			return v, backoff.Permanent(err)
		}
		return v, err
	}
	notify := func(err error, delay time.Duration) {
		logger.GetLogger().
			WithField("operation", operation).
			WithField("attempt", attempts).
			WithField("delay", delay.String()).
			WithField("error", err).
			Warn("API error, retrying")
	}

	var timer Timer
	if r.newTimer != nil {
		timer = r.newTimer()
	}
	v, err := backoff.RetryNotifyWithTimerAndData(wrapped, r.backOff(ctx), notify, timer)
	if err == nil {
		return v, nil
	}

	var zero T
	rerr := &Error{Operation: operation, Attempts: attempts, Err: err, Reason: ErrExhausted}
	switch {
	case ctx.Err() != nil:
		rerr.Reason = ctx.Err()
	case permanent:
		rerr.Reason = ErrPermanent
	}
	logger.GetLogger().
		WithField("operation", operation).
		WithField("attempts", attempts).
		WithField("reason", rerr.Reason.Error()).
		WithField("error", rerr.Err).
		Error("Failed to process request, giving up")
	return zero, rerr
}

// IsTransient reports whether err is worth another attempt. Client-side API
// errors (bad request, auth, quota, not found) are not.
func IsTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
			return false
		}
	}
	return true
}

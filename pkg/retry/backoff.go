package retry

import (
	"context"
	"math"
	"math/rand"
	"time"

	errs "iganalytics/pkg/errors"
)

// BackoffStrategy defines the interface for different backoff strategies
type BackoffStrategy interface {
	// NextDelay returns the next delay duration
	NextDelay(attempt int) time.Duration
	// Reset resets the backoff strategy to initial state
	Reset()
}

// ExponentialBackoff implements exponential backoff with jitter
type ExponentialBackoff struct {
	// BaseDelay is the initial delay duration
	BaseDelay time.Duration
	// MaxDelay is the maximum delay duration
	MaxDelay time.Duration
	// Multiplier is the factor by which delay increases
	Multiplier float64
	// JitterFactor adds randomness to avoid thundering herd (0.0 to 1.0)
	JitterFactor float64
}

// DefaultExponentialBackoff returns a backoff with sensible defaults
func DefaultExponentialBackoff() *ExponentialBackoff {
	return &ExponentialBackoff{
		BaseDelay:    1 * time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.1,
	}
}

// NextDelay calculates the next delay with exponential backoff and jitter
func (eb *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}

	// Calculate exponential delay
	delay := float64(eb.BaseDelay) * math.Pow(eb.Multiplier, float64(attempt-1))

	// Cap at max delay
	if delay > float64(eb.MaxDelay) {
		delay = float64(eb.MaxDelay)
	}

	// Add jitter to avoid thundering herd
	if eb.JitterFactor > 0 {
		jitter := delay * eb.JitterFactor
		// Random value between -jitter and +jitter
		randomJitter := (rand.Float64() * 2 * jitter) - jitter
		delay += randomJitter
	}

	// Ensure delay is not negative
	if delay < 0 {
		delay = 0
	}

	return time.Duration(delay)
}

// Reset is a no-op, the delay is derived from the attempt number
func (eb *ExponentialBackoff) Reset() {}

// ConstantBackoff implements constant delay backoff
type ConstantBackoff struct {
	Delay time.Duration
}

// NextDelay returns a constant delay
func (cb *ConstantBackoff) NextDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	return cb.Delay
}

// Reset resets the backoff (no-op for constant backoff)
func (cb *ConstantBackoff) Reset() {}

// Wait waits for the specified duration or until context is cancelled
func Wait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ErrorTypeBackoff provides different backoff strategies based on error types
type ErrorTypeBackoff struct {
	NetworkErrorBackoff BackoffStrategy
	// RateLimitBackoff waits longer, the Graph API budget is per hour
	RateLimitBackoff   BackoffStrategy
	ServerErrorBackoff BackoffStrategy
	DefaultBackoff     BackoffStrategy
}

// NewErrorTypeBackoff derives per-type strategies from a base backoff
func NewErrorTypeBackoff(base *ExponentialBackoff) *ErrorTypeBackoff {
	if base == nil {
		base = DefaultExponentialBackoff()
	}
	rateLimit := *base
	rateLimit.BaseDelay = base.BaseDelay * 10
	rateLimit.MaxDelay = base.MaxDelay * 10
	rateLimit.Multiplier = 1.5

	return &ErrorTypeBackoff{
		NetworkErrorBackoff: base,
		RateLimitBackoff:    &rateLimit,
		ServerErrorBackoff:  base,
		DefaultBackoff:      base,
	}
}

// GetBackoffForError returns the appropriate backoff strategy for the error type
func (etb *ErrorTypeBackoff) GetBackoffForError(errorType errs.ErrorType) BackoffStrategy {
	switch errorType {
	case errs.ErrorTypeNetwork:
		return etb.NetworkErrorBackoff
	case errs.ErrorTypeRateLimit:
		return etb.RateLimitBackoff
	case errs.ErrorTypeServerError:
		return etb.ServerErrorBackoff
	default:
		return etb.DefaultBackoff
	}
}

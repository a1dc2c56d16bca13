package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"iganalytics/pkg/config"
	errs "iganalytics/pkg/errors"
	"iganalytics/pkg/logger"
)

func fastConfig(maxAttempts int) *Config {
	return &Config{
		MaxAttempts: maxAttempts,
		Backoff:     &ConstantBackoff{Delay: 5 * time.Millisecond},
		RetryIf:     DefaultRetryIf,
		Logger:      logger.NewNopLogger(),
	}
}

func serverError() error {
	return errs.New(errs.ErrorTypeServerError, 500, "internal error")
}

func TestExponentialBackoff(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:    100 * time.Millisecond,
		MaxDelay:     1 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.0,
	}

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 0},
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{4, 800 * time.Millisecond},
		{5, 1 * time.Second},
		{6, 1 * time.Second},
	}

	for _, test := range tests {
		if delay := backoff.NextDelay(test.attempt); delay != test.expected {
			t.Errorf("Attempt %d: expected %v, got %v", test.attempt, test.expected, delay)
		}
	}
}

func TestExponentialBackoffJitterStaysInRange(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:    100 * time.Millisecond,
		MaxDelay:     1 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.3,
	}

	for i := 0; i < 50; i++ {
		delay := backoff.NextDelay(2)
		assert.GreaterOrEqual(t, delay, 140*time.Millisecond)
		assert.LessOrEqual(t, delay, 260*time.Millisecond)
	}
}

func TestRetryWithSuccess(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return serverError()
		}
		return nil
	}, fastConfig(5))

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryWithMaxAttemptsExceeded(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return serverError()
	}, fastConfig(3))

	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.True(t, errs.IsType(err, errs.ErrorTypeServerError))
}

func TestRetryNonRetryableErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"auth", errs.New(errs.ErrorTypeAuth, 401, "invalid token")},
		{"not found", errs.New(errs.ErrorTypeNotFound, 404, "no such media")},
		{"bad request", errs.New(errs.ErrorTypeBadRequest, 400, "bad metric")},
		{"parsing", errs.New(errs.ErrorTypeParsing, 200, "bad json")},
		{"untyped", errors.New("plain")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := 0
			err := Do(context.Background(), func(ctx context.Context) error {
				attempts++
				return tt.err
			}, fastConfig(5))

			assert.Same(t, tt.err, err)
			assert.Equal(t, 1, attempts)
		})
	}
}

func TestRetryWithContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0

	cfg := fastConfig(5)
	cfg.Backoff = &ConstantBackoff{Delay: 100 * time.Millisecond}

	err := Do(ctx, func(ctx context.Context) error {
		attempts++
		if attempts == 2 {
			cancel()
		}
		return serverError()
	}, cfg)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, attempts)
}

func TestOnRetryAndBackoffFor(t *testing.T) {
	var delays []time.Duration
	cfg := fastConfig(3)
	cfg.BackoffFor = func(err error) BackoffStrategy {
		if errs.IsType(err, errs.ErrorTypeRateLimit) {
			return &ConstantBackoff{Delay: 7 * time.Millisecond}
		}
		return &ConstantBackoff{Delay: 1 * time.Millisecond}
	}
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		delays = append(delays, delay)
	}

	attempts := 0
	_ = Do(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts == 1 {
			return errs.New(errs.ErrorTypeRateLimit, 429, "slow down")
		}
		return serverError()
	}, cfg)

	assert.Equal(t, []time.Duration{7 * time.Millisecond, 1 * time.Millisecond}, delays)
}

func TestErrorTypeBackoff(t *testing.T) {
	base := &ExponentialBackoff{BaseDelay: time.Second, MaxDelay: 30 * time.Second, Multiplier: 2}
	etb := NewErrorTypeBackoff(base)

	assert.Same(t, base, etb.GetBackoffForError(errs.ErrorTypeNetwork))
	assert.Same(t, base, etb.GetBackoffForError(errs.ErrorTypeServerError))

	rateLimit, ok := etb.GetBackoffForError(errs.ErrorTypeRateLimit).(*ExponentialBackoff)
	require.True(t, ok)
	assert.Equal(t, 10*time.Second, rateLimit.BaseDelay)
	assert.Equal(t, 1.5, rateLimit.Multiplier)
}

func TestFromSettings(t *testing.T) {
	settings := config.DefaultConfig().Retry
	cfg := FromSettings(settings, logger.NewNopLogger())
	assert.Equal(t, 3, cfg.MaxAttempts)
	require.NotNil(t, cfg.BackoffFor)

	settings.Enabled = false
	disabled := FromSettings(settings, logger.NewNopLogger())

	attempts := 0
	err := Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return serverError()
	}, disabled)

	assert.Equal(t, 1, attempts)
	assert.Equal(t, "server_error error (code 500): internal error", err.Error())
}

func TestDoWithResult(t *testing.T) {
	attempts := 0
	result, err := DoWithResult(context.Background(), func(ctx context.Context) (string, error) {
		attempts++
		if attempts < 2 {
			return "", errs.New(errs.ErrorTypeNetwork, 0, "connection reset")
		}
		return "success", nil
	}, fastConfig(3))

	require.NoError(t, err)
	assert.Equal(t, "success", result)
	assert.Equal(t, 2, attempts)
}

func TestRetrierCopies(t *testing.T) {
	r := NewRetrier(fastConfig(3))
	r2 := r.WithMaxAttempts(1)

	assert.Equal(t, 3, r.MaxAttempts())
	assert.Equal(t, 1, r2.MaxAttempts())
}

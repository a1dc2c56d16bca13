package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"iganalytics/pkg/config"
	errs "iganalytics/pkg/errors"
	"iganalytics/pkg/logger"
)

// Operation is a function that performs an operation that might need retrying
type Operation func(ctx context.Context) error

// OperationWithResult is a function that returns a result and might need retrying
type OperationWithResult[T any] func(ctx context.Context) (T, error)

// Config holds retry configuration
type Config struct {
	// MaxAttempts is the maximum number of attempts, including the first
	MaxAttempts int
	// Backoff strategy to use
	Backoff BackoffStrategy
	// BackoffFor, when set, picks a strategy per failure and overrides Backoff
	BackoffFor func(err error) BackoffStrategy
	// RetryIf determines if an error should be retried
	RetryIf func(error) bool
	// OnRetry is called before each retry attempt
	OnRetry func(attempt int, err error, delay time.Duration)
	Logger  logger.Logger
}

// DefaultConfig returns a retry configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		MaxAttempts: 3,
		Backoff:     DefaultExponentialBackoff(),
		RetryIf:     DefaultRetryIf,
		Logger:      logger.GetLogger(),
	}
}

// FromSettings builds a retry configuration from the loaded settings.
// Rate limited calls back off on a slower schedule than other failures.
func FromSettings(settings config.RetryConfig, log logger.Logger) *Config {
	if !settings.Enabled {
		return &Config{MaxAttempts: 1, Backoff: &ConstantBackoff{}, RetryIf: DefaultRetryIf, Logger: log}
	}

	base := &ExponentialBackoff{
		BaseDelay:    settings.BaseDelay,
		MaxDelay:     settings.MaxDelay,
		Multiplier:   settings.Multiplier,
		JitterFactor: settings.JitterFactor,
	}
	byType := NewErrorTypeBackoff(base)

	return &Config{
		MaxAttempts: settings.MaxAttempts,
		Backoff:     base,
		BackoffFor: func(err error) BackoffStrategy {
			if apiErr, ok := errs.As(err); ok {
				return byType.GetBackoffForError(apiErr.Type)
			}
			return base
		},
		RetryIf: DefaultRetryIf,
		Logger:  log,
	}
}

// DefaultRetryIf retries network, rate limit and server failures only
func DefaultRetryIf(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	if apiErr, ok := errs.As(err); ok {
		return errs.IsRetryable(apiErr.Type)
	}

	return false
}

// Do executes an operation with retry logic
func Do(ctx context.Context, op Operation, cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	retryIf := cfg.RetryIf
	if retryIf == nil {
		retryIf = DefaultRetryIf
	}

	var lastErr error
	for attempt := 1; ; attempt++ {
		err := op(ctx)
		if err == nil {
			if attempt > 1 && cfg.Logger != nil {
				cfg.Logger.DebugWithFields("operation succeeded after retry", map[string]interface{}{
					"attempt": attempt,
				})
			}
			return nil
		}
		lastErr = err

		if !retryIf(err) {
			return err
		}

		if cfg.MaxAttempts > 0 && attempt >= cfg.MaxAttempts {
			if cfg.MaxAttempts == 1 {
				return lastErr
			}
			if cfg.Logger != nil {
				cfg.Logger.WarnWithFields("max retry attempts exceeded", map[string]interface{}{
					"attempts":   attempt,
					"last_error": lastErr.Error(),
				})
			}
			return fmt.Errorf("max retry attempts (%d) exceeded: %w", cfg.MaxAttempts, lastErr)
		}

		backoff := cfg.Backoff
		if cfg.BackoffFor != nil {
			backoff = cfg.BackoffFor(err)
		}
		delay := backoff.NextDelay(attempt)

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, delay)
		}

		if cfg.Logger != nil {
			cfg.Logger.WarnWithFields("retrying operation", map[string]interface{}{
				"attempt":      attempt,
				"error":        err.Error(),
				"delay_ms":     delay.Milliseconds(),
				"max_attempts": cfg.MaxAttempts,
			})
		}

		if err := Wait(ctx, delay); err != nil {
			return fmt.Errorf("retry cancelled: %w", err)
		}
	}
}

// DoWithResult executes an operation that returns a result with retry logic
func DoWithResult[T any](ctx context.Context, op OperationWithResult[T], cfg *Config) (T, error) {
	var result T

	err := Do(ctx, func(ctx context.Context) error {
		var opErr error
		result, opErr = op(ctx)
		return opErr
	}, cfg)

	return result, err
}

// Retrier provides a reusable retry mechanism
type Retrier struct {
	config *Config
}

// NewRetrier creates a new retrier with the given configuration
func NewRetrier(cfg *Config) *Retrier {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Retrier{config: cfg}
}

// Do executes an operation with retry logic
func (r *Retrier) Do(ctx context.Context, op Operation) error {
	return Do(ctx, op, r.config)
}

// MaxAttempts reports the configured attempt budget
func (r *Retrier) MaxAttempts() int {
	return r.config.MaxAttempts
}

// WithMaxAttempts returns a new retrier with updated max attempts
func (r *Retrier) WithMaxAttempts(maxAttempts int) *Retrier {
	newConfig := *r.config
	newConfig.MaxAttempts = maxAttempts
	return &Retrier{config: &newConfig}
}

// WithBackoff returns a new retrier with a single backoff strategy
func (r *Retrier) WithBackoff(backoff BackoffStrategy) *Retrier {
	newConfig := *r.config
	newConfig.Backoff = backoff
	newConfig.BackoffFor = nil
	return &Retrier{config: &newConfig}
}

package retry

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/domain/channel"
	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/domain/credentials"
)

// Config holds retry executor settings
type Config struct {
	// MaxAttempts bounds attempts per operation, first try included
	MaxAttempts int
	// BaseDelay is the wait after the first failure; waits grow linearly
	// (base, 2*base, ...) on subsequent failures
	BaseDelay time.Duration
}

// DefaultConfig returns the engine default: three attempts, linear delay
func DefaultConfig() Config {
	return Config{MaxAttempts: 3, BaseDelay: 2 * time.Second}
}

// Executor wraps fallible datastore and outbound calls with bounded retries.
// Classification, not the caller, decides what is worth retrying:
// authentication and validation failures abort immediately with the original
// error, everything else is treated as transient.
type Executor struct {
	config Config
	logger *zap.Logger
}

// NewExecutor creates a retry executor
func NewExecutor(config Config, logger *zap.Logger) *Executor {
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}
	return &Executor{config: config, logger: logger}
}

// Do runs fn up to MaxAttempts times, sleeping a linearly growing delay
// between failures. Non-retryable errors abort on the spot; otherwise the
// last error is surfaced once attempts are exhausted.
func (e *Executor) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= e.config.MaxAttempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		if !retryable(lastErr) {
			return lastErr
		}

		if attempt == e.config.MaxAttempts {
			break
		}

		delay := e.config.BaseDelay * time.Duration(attempt)
		e.logger.Warn("Operation failed, retrying",
			zap.String("operation", op),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", e.config.MaxAttempts),
			zap.Duration("delay", delay),
			zap.Error(lastErr),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return lastErr
}

// retryable classifies an error. Authentication failures must reach the
// caller untouched so the pass can terminate for that channel; validation
// and not-found failures will not get better on a second try.
func retryable(err error) bool {
	switch {
	case errors.Is(err, credentials.ErrAuthenticationRequired),
		errors.Is(err, channel.ErrAuthenticationRequired),
		errors.Is(err, channel.ErrValidation),
		errors.Is(err, channel.ErrNotFound):
		return false
	case errors.Is(err, context.Canceled):
		return false
	default:
		// Transient network failures, timeouts, 5xx, 429 and unclassified
		// datastore errors all fall through to a retry.
		return true
	}
}

package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/retry"

	"github.com/SAP-F-2025/exercise-service/internal/utils"
)

// ResilientRepository retries transient store failures with exponential
// backoff and trips a circuit breaker after repeated failures.
type ResilientRepository struct {
	inner   DataRepository
	reads   retry.Retry[[]byte]
	writes  retry.Retry[struct{}]
	breaker circuitbreaker.CircuitBreaker[[]byte]
	logger  utils.Logger
}

type ResilientConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	// Consecutive read failures before the breaker opens. Zero disables it.
	BreakerThreshold int
	BreakerTimeout   time.Duration
}

func DefaultResilientConfig() ResilientConfig {
	return ResilientConfig{
		MaxAttempts:      3,
		InitialDelay:     100 * time.Millisecond,
		MaxDelay:         2 * time.Second,
		BreakerThreshold: 5,
		BreakerTimeout:   30 * time.Second,
	}
}

func NewResilientRepository(inner DataRepository, cfg ResilientConfig, logger utils.Logger) *ResilientRepository {
	r := &ResilientRepository{inner: inner, logger: logger}

	r.reads = retry.New[[]byte](retry.Config{
		MaxAttempts:   cfg.MaxAttempts,
		InitialDelay:  cfg.InitialDelay,
		MaxDelay:      cfg.MaxDelay,
		Multiplier:    2.0,
		BackoffPolicy: retry.BackoffExponential,
		Jitter:        true,
		IsRetryable:   isTransient,
	})
	r.writes = retry.New[struct{}](retry.Config{
		MaxAttempts:   cfg.MaxAttempts,
		InitialDelay:  cfg.InitialDelay,
		MaxDelay:      cfg.MaxDelay,
		Multiplier:    2.0,
		BackoffPolicy: retry.BackoffExponential,
		Jitter:        true,
		IsRetryable:   isTransient,
	})

	if cfg.BreakerThreshold > 0 {
		threshold := cfg.BreakerThreshold
		r.breaker = circuitbreaker.New[[]byte](circuitbreaker.Config{
			MaxRequests: 1,
			Timeout:     cfg.BreakerTimeout,
			ReadyToTrip: func(counts circuitbreaker.Counts) bool {
				return int(counts.ConsecutiveFailures) >= threshold
			},
			OnStateChange: func(from, to circuitbreaker.State) {
				logger.Warn("Store circuit breaker state change",
					"from", from.String(),
					"to", to.String())
			},
		})
	}
	return r
}

func (r *ResilientRepository) Read(ctx context.Context, path string) ([]byte, error) {
	var lastErr error
	operation := func(ctx context.Context) ([]byte, error) {
		data, err := r.inner.Read(ctx, path)
		lastErr = err
		return data, err
	}

	if r.breaker == nil {
		data, err := r.reads.Do(ctx, operation)
		return data, storeError(err, lastErr)
	}

	// A missing document does not count as a store failure.
	notFound := false
	data, err := r.breaker.Execute(ctx, func(ctx context.Context) ([]byte, error) {
		data, err := r.reads.Do(ctx, operation)
		if err != nil && errors.Is(lastErr, ErrNotFound) {
			notFound = true
			return nil, nil
		}
		return data, err
	})
	if notFound {
		return nil, ErrNotFound
	}
	return data, storeError(err, lastErr)
}

func (r *ResilientRepository) Write(ctx context.Context, path string, data []byte) error {
	var lastErr error
	_, err := r.writes.Do(ctx, func(ctx context.Context) (struct{}, error) {
		lastErr = r.inner.Write(ctx, path, data)
		if lastErr != nil {
			r.logger.WarnContext(ctx, "Store write failed", "path", path, "error", lastErr)
		}
		return struct{}{}, lastErr
	})
	return storeError(err, lastErr)
}

// storeError prefers the store's own error over the retrier's wrapper so
// callers can match on it.
func storeError(err, last error) error {
	if err == nil {
		return nil
	}
	if last != nil {
		return last
	}
	return err
}

// isTransient treats everything except a missing document and a cancelled
// context as worth retrying.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrNotFound) &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}

func (r *ResilientRepository) Unwrap() DataRepository {
	return r.inner
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package crawl retrieves product listings from both retail sources: a
// paginated-document crawler and an interactive-session crawler, sharing
// one retry wrapper.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/pdiddy/price-scout/pkg/types"
)

// BackoffUnit scales the exponential backoff between attempts; production
// value is one second. Tests override this to avoid real sleeps.
var BackoffUnit = time.Second

// ErrAttemptsExhausted wraps the final error once every attempt has failed.
var ErrAttemptsExhausted = errors.New("all attempts failed")

const (
	defaultMaxAttempts = 3
	defaultBackoffBase = 2.0
)

// Retry runs op up to cfg.MaxAttempts times. After failed attempt n
// (1-based) it waits BackoffBase^n × BackoffUnit before the next try.
// Every error is retryable; there is no jitter and no classification.
// After the last attempt the final error propagates, wrapped in
// ErrAttemptsExhausted. The context is only consulted between attempts.
func Retry[T any](ctx context.Context, cfg types.RetryConfig, op func(context.Context) (T, error)) (T, error) {
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}
	base := cfg.BackoffBase
	if base <= 0 {
		base = defaultBackoffBase
	}

	var zero T
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if attempt == attempts {
			break
		}
		backoff := time.Duration(math.Pow(base, float64(attempt)) * float64(BackoffUnit))
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(backoff):
		}
	}
	return zero, fmt.Errorf("%w after %d attempts: %w", ErrAttemptsExhausted, attempts, lastErr)
}

// Package retry retries transient model and search failures with backoff.
package retry

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultMaxRetries is the default number of retry attempts.
	DefaultMaxRetries = 2
	// DefaultBaseDelay is the base delay for exponential backoff.
	DefaultBaseDelay = 2 * time.Second
	// DefaultMaxJitterPercent is the maximum jitter percentage (0-25%).
	DefaultMaxJitterPercent = 25
)

// Config holds retry configuration. MaxRetries of 0 disables retrying.
type Config struct {
	MaxRetries       int
	BaseDelay        time.Duration
	MaxJitterPercent int
	OnRetry          func(delay time.Duration, attempt, max int) // Optional callback for retry notifications
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		MaxRetries:       DefaultMaxRetries,
		BaseDelay:        DefaultBaseDelay,
		MaxJitterPercent: DefaultMaxJitterPercent,
	}
}

// Do runs op, retrying retryable errors with exponential backoff and jitter.
// It returns the last value and error once op succeeds, fails permanently,
// runs out of attempts or ctx is done.
func Do[T any](ctx context.Context, cfg Config, op func(ctx context.Context) (T, error)) (T, error) {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultBaseDelay
	}
	if cfg.MaxJitterPercent < 0 || cfg.MaxJitterPercent > 100 {
		cfg.MaxJitterPercent = DefaultMaxJitterPercent
	}

	var (
		v   T
		err error
	)
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		v, err = op(ctx)
		if err == nil {
			return v, nil
		}

		if ctx.Err() != nil || !IsRetryable(err) {
			return v, err
		}

		if attempt >= cfg.MaxRetries {
			if cfg.MaxRetries > 0 {
				zap.L().Debug("retry: attempts exhausted", zap.Int("max", cfg.MaxRetries), zap.Error(err))
			}
			return v, err
		}

		delay := CalculateDelay(cfg.BaseDelay, attempt, cfg.MaxJitterPercent)
		if cfg.OnRetry != nil {
			cfg.OnRetry(delay, attempt+1, cfg.MaxRetries)
		}
		zap.L().Debug("retry: backing off",
			zap.Duration("delay", delay),
			zap.Int("attempt", attempt+1),
			zap.Int("max", cfg.MaxRetries),
			zap.Error(err))

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return v, ctx.Err()
		case <-t.C:
		}
	}
	return v, err
}

// CalculateDelay returns the delay for a given attempt using exponential backoff with jitter.
// Formula: base * 2^attempt + jitter (0-maxJitterPercent% of calculated delay)
func CalculateDelay(base time.Duration, attempt int, maxJitterPercent int) time.Duration {
	delay := base * time.Duration(1<<attempt)

	if maxJitterPercent > 0 {
		jitterRange := float64(delay) * float64(maxJitterPercent) / 100.0
		delay += time.Duration(rand.Float64() * jitterRange)
	}
	return delay
}

var retryablePatterns = []string{
	"rate limit",
	"rate_limit",
	"timeout",
	"timed out",
	"deadline exceeded",
	"network",
	"connection refused",
	"connection reset",
	"temporary failure",
	"service unavailable",
	"resource_exhausted",
	"503",
	"502",
	"500",
	"429",
	"overloaded",
	"too many requests",
}

var nonRetryablePatterns = []string{
	"syntax error",
	"invalid",
	"not found",
	"unauthorized",
	"forbidden",
	"authentication",
	"permission denied",
	"bad request",
	"400",
	"401",
	"403",
	"404",
}

// IsRetryable reports whether err looks transient. Rate limits, timeouts and
// network errors are; auth and request errors are not. Unknown errors are not.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, p := range nonRetryablePatterns {
		if strings.Contains(msg, p) {
			return false
		}
	}
	for _, p := range retryablePatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

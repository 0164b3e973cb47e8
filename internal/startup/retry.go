// Package startup waits for the catalog and mail server before the service
// begins scheduling work.
package startup

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// RetryConfig configures exponential backoff.
type RetryConfig struct {
	InitialDelay time.Duration
	MaxDelay     time.Duration
	MaxAttempts  int
	Multiplier   float64
}

// DefaultRetryConfig waits up to roughly two and a half minutes.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		InitialDelay: 5 * time.Second,
		MaxDelay:     time.Minute,
		MaxAttempts:  5,
		Multiplier:   2.0,
	}
}

// Probe is a named reachability check for an external dependency.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

var networkIndicators = []string{
	"connection refused",
	"no such host",
	"network is unreachable",
	"no route to host",
	"host is down",
	"i/o timeout",
	"connection reset",
	"temporary failure in name resolution",
}

// IsNetworkError reports whether err looks like the network, rather than
// the dependency, is unavailable.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, indicator := range networkIndicators {
		if strings.Contains(msg, indicator) {
			return true
		}
	}
	return false
}

// WithRetry runs fn, retrying with backoff while it fails with network
// errors. Other errors are returned at once.
func WithRetry(ctx context.Context, name string, cfg RetryConfig, fn func(ctx context.Context) error, logger zerolog.Logger) error {
	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			if attempt > 1 {
				logger.Info().Str("dependency", name).Int("attempt", attempt).Msg("Dependency reachable after retry")
			}
			return nil
		}
		lastErr = err

		if !IsNetworkError(err) {
			return fmt.Errorf("%s: %w", name, err)
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		logger.Warn().
			Err(err).
			Str("dependency", name).
			Int("attempt", attempt).
			Int("maxAttempts", cfg.MaxAttempts).
			Dur("nextRetryIn", delay).
			Msg("Dependency unreachable, will retry")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay = nextDelay(delay, cfg)
	}

	return fmt.Errorf("%s unreachable after %d attempts: %w", name, cfg.MaxAttempts, lastErr)
}

// WaitForDependencies runs every probe with retry, in order, and stops at
// the first one that fails.
func WaitForDependencies(ctx context.Context, cfg RetryConfig, logger zerolog.Logger, probes ...Probe) error {
	for _, p := range probes {
		if err := WithRetry(ctx, p.Name, cfg, p.Check, logger); err != nil {
			return err
		}
		logger.Info().Str("dependency", p.Name).Msg("Dependency ready")
	}
	return nil
}

func nextDelay(delay time.Duration, cfg RetryConfig) time.Duration {
	next := time.Duration(float64(delay) * cfg.Multiplier)
	if next > cfg.MaxDelay {
		return cfg.MaxDelay
	}
	return next
}

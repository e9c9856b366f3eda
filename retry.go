package sitetrans

import (
	"context"
	"errors"
	"time"

	"github.com/jpillora/backoff"
)

// RetryConfig controls how often a failing provider call is repeated.
// Only errors IsRetryable accepts are repeated.
type RetryConfig struct {
	MaxRetries int           // Attempts after the first; 0 disables retrying
	BaseDelay  time.Duration // Delay before the first retry
	MaxDelay   time.Duration // Upper bound for any single delay
	Jitter     bool
}

// DefaultRetryConfig retries three times, starting at one second.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  time.Second,
		MaxDelay:   30 * time.Second,
		Jitter:     true,
	}
}

func (c RetryConfig) backoff() *backoff.Backoff {
	return &backoff.Backoff{Min: c.BaseDelay, Max: c.MaxDelay, Factor: 2, Jitter: c.Jitter}
}

// RetryFunc is one attempt of a retried operation.
type RetryFunc[T any] func() (T, error)

// WithRetry runs fn until it succeeds, returns a permanent error, the
// context ends or MaxRetries retries have been spent.
func WithRetry[T any](ctx context.Context, cfg RetryConfig, fn RetryFunc[T]) (T, error) {
	return retry(ctx, cfg, "", fn)
}

func retry[T any](ctx context.Context, cfg RetryConfig, label string, fn RetryFunc[T]) (T, error) {
	var zero T
	b := cfg.backoff()

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		if !IsRetryable(err) {
			return zero, err
		}
		if attempt >= cfg.MaxRetries {
			if cfg.MaxRetries > 0 {
				log.Warnw("giving up on provider", "provider", label, "attempts", attempt+1, "err", err)
			}
			return zero, err
		}

		delay := b.Duration()
		log.Debugw("retrying provider call", "provider", label, "attempt", attempt+1, "delay", delay, "err", err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
}

// IsRetryable reports whether err is a ProviderError marked retryable.
// Timeouts and cancellations never are: the run is already ending.
func IsRetryable(err error) bool {
	var providerErr *ProviderError
	return errors.As(err, &providerErr) && providerErr.Retryable
}

// RetryableProvider retries transient failures of one provider.
type RetryableProvider struct {
	provider Provider
	config   RetryConfig
}

// NewRetryableProvider wraps provider with cfg.
func NewRetryableProvider(provider Provider, cfg RetryConfig) *RetryableProvider {
	return &RetryableProvider{provider: provider, config: cfg}
}

// Translate implements Provider.
func (p *RetryableProvider) Translate(ctx context.Context, req TranslateRequest) ([]string, error) {
	return retry(ctx, p.config, p.provider.Name(), func() ([]string, error) {
		return p.provider.Translate(ctx, req)
	})
}

// Name implements Provider.
func (p *RetryableProvider) Name() string {
	return p.provider.Name()
}

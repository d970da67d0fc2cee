package provider

import (
	"context"
	"math"
	"math/rand"
	"time"

	"drakyn/config"
	"drakyn/model"
)

// RetryPolicy configures adapter-internal retries with exponential backoff.
// The loop itself never retries; a provider wrapped with WithRetry looks like
// a single slower call from the outside.
type RetryPolicy struct {
	MaxRetries        int           // retry attempts, not counting the first call
	BaseDelay         time.Duration // delay before the first retry
	MaxDelay          time.Duration // cap for any single delay
	BackoffMultiplier float64
	Jitter            bool // +/- 50% jitter
	OnRetry           func(err error, attempt int, delay time.Duration)
}

// DefaultRetryPolicy returns a disabled policy with sensible backoff values.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:        0,
		BaseDelay:         time.Second,
		MaxDelay:          60 * time.Second,
		BackoffMultiplier: 2.0,
		Jitter:            true,
	}
}

// Delay calculates the delay before retry attempt n (0-indexed).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	mult := p.BackoffMultiplier
	if mult <= 0 {
		mult = 1
	}
	delay := float64(p.BaseDelay) * math.Pow(mult, float64(attempt))
	if p.MaxDelay > 0 {
		delay = math.Min(delay, float64(p.MaxDelay))
	}
	if p.Jitter {
		delay = delay * (0.5 + rand.Float64())
	}
	return time.Duration(delay)
}

// retryingProvider decorates a model.Provider with RetryPolicy on Complete.
type retryingProvider struct {
	model.Provider
	policy RetryPolicy
}

// WithRetry wraps p so that retryable ProviderErrors (rate limit, connection,
// timeout, 5xx) are retried. A policy with MaxRetries <= 0 returns p as is.
func WithRetry(p model.Provider, policy RetryPolicy) model.Provider {
	if policy.MaxRetries <= 0 {
		return p
	}
	return &retryingProvider{Provider: p, policy: policy}
}

func (r *retryingProvider) Complete(ctx context.Context, messages []model.Message, tools []model.ToolDefinition, cfg model.CompletionConfig) (string, error) {
	text, err := r.Provider.Complete(ctx, messages, tools, cfg)
	if err == nil {
		return text, nil
	}

	for attempt := 0; attempt < r.policy.MaxRetries; attempt++ {
		pe, ok := model.AsProviderError(err)
		if !ok || !pe.Retryable() || ctx.Err() != nil {
			return "", err
		}

		delay := r.policy.Delay(attempt)
		if r.policy.OnRetry != nil {
			r.policy.OnRetry(err, attempt+1, delay)
		}
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Provider] %s: retry %d/%d in %s after %v", r.GetModel(), attempt+1, r.policy.MaxRetries, delay, err)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}

		text, err = r.Provider.Complete(ctx, messages, tools, cfg)
		if err == nil {
			return text, nil
		}
	}

	return "", err
}

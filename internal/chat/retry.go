package chat

import (
	"context"
	"strings"
	"time"

	"github.com/firebase/genkit/go/ai"
	"golang.org/x/time/rate"
)

// RetryConfig controls how generation failures are retried.
type RetryConfig struct {
	MaxRetries   int           // additional attempts after the first
	InitialDelay time.Duration // delay before the first retry, doubled each attempt
}

// DefaultRetryConfig matches the provider's observed transient-failure
// profile: two retries with a short exponential backoff.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxRetries: 2, InitialDelay: 500 * time.Millisecond}
}

// retryablePatterns identify transient provider failures worth retrying.
// Anything else fails immediately.
var retryablePatterns = []string{
	"429",
	"500",
	"503",
	"rate limit",
	"quota",
	"overloaded",
	"unavailable",
	"deadline exceeded",
	"connection reset",
	"timeout",
}

func isRetryable(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, p := range retryablePatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// generateWithRetry calls the generator with exponential backoff on
// transient failures. When limiter is non-nil every attempt waits for a
// provider-call token first, so retries cannot stampede a throttled
// upstream. Context cancellation stops the loop between attempts.
func generateWithRetry(ctx context.Context, gen Generator, limiter *rate.Limiter, messages []*ai.Message, cfg RetryConfig) (*Generation, error) {
	delay := cfg.InitialDelay
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}

	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		result, err := gen.Generate(ctx, messages)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !isRetryable(err) {
			break
		}
	}
	return nil, lastErr
}

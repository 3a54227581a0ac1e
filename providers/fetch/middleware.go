package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"github.com/leofalp/ratescan/internal/utils"
)

// RetryConfig tunes the retry middleware. Zero values are replaced with the
// defaults documented on each field.
type RetryConfig struct {
	// MaxRetries is the number of attempts after the first failure.
	// Default: 3.
	MaxRetries int

	// InitialBackoff is the wait before the first retry.
	// Default: 1s.
	InitialBackoff time.Duration

	// MaxBackoff caps the computed backoff.
	// Default: 30s.
	MaxBackoff time.Duration

	// BackoffFactor is the exponential growth multiplier.
	// Default: 2.0.
	BackoffFactor float64

	// JitterFraction adds up to JitterFraction*backoff of random noise.
	// Default: 0.1.
	JitterFraction float64

	// RetryableFunc reports whether err should trigger a retry. The default
	// retries [*RetrievalError] values whose Retryable method returns true.
	RetryableFunc func(error) bool
}

func defaultRetryableFunc(err error) bool {
	var re *RetrievalError
	if errors.As(err, &re) {
		return re.Retryable()
	}
	return false
}

func applyRetryDefaults(config *RetryConfig) {
	if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}
	if config.InitialBackoff == 0 {
		config.InitialBackoff = time.Second
	}
	if config.MaxBackoff == 0 {
		config.MaxBackoff = 30 * time.Second
	}
	if config.BackoffFactor == 0 {
		config.BackoffFactor = 2.0
	}
	if config.JitterFraction == 0 {
		config.JitterFraction = 0.1
	}
	if config.RetryableFunc == nil {
		config.RetryableFunc = defaultRetryableFunc
	}
}

// computeBackoff returns min(InitialBackoff * BackoffFactor^attempt, MaxBackoff) plus jitter.
func computeBackoff(config RetryConfig, attempt int) time.Duration {
	base := float64(config.InitialBackoff) * math.Pow(config.BackoffFactor, float64(attempt))
	if base > float64(config.MaxBackoff) {
		base = float64(config.MaxBackoff)
	}

	jitter := base * config.JitterFraction * rand.Float64() //nolint:gosec // non-cryptographic jitter
	return time.Duration(base + jitter)
}

// NewRetryMiddleware retries transient failures with exponential backoff.
// On exhaustion the error wraps both [ErrRetryExhausted] and the last error.
func NewRetryMiddleware(config RetryConfig) Middleware {
	applyRetryDefaults(&config)

	return func(next FetchFunc) FetchFunc {
		return func(ctx context.Context, url string) (*Page, error) {
			var lastErr error

			for attempt := 0; attempt <= config.MaxRetries; attempt++ {
				if attempt > 0 {
					backoff := computeBackoff(config, attempt-1)
					select {
					case <-ctx.Done():
						return nil, ctx.Err()
					case <-time.After(backoff):
					}
				}

				page, err := next(ctx, url)
				if err == nil {
					return page, nil
				}
				lastErr = err

				if ctx.Err() != nil || !config.RetryableFunc(err) {
					return nil, err
				}
			}

			return nil, fmt.Errorf("%w after %d retries: %w", ErrRetryExhausted, config.MaxRetries, lastErr)
		}
	}
}

// NewTimeoutMiddleware bounds the whole call, retries included. A shorter
// deadline already on ctx wins.
func NewTimeoutMiddleware(timeout time.Duration) Middleware {
	return func(next FetchFunc) FetchFunc {
		return func(ctx context.Context, url string) (*Page, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			return next(ctx, url)
		}
	}
}

// LogLevel controls how much the logging middleware emits per fetch.
type LogLevel int

const (
	// LogLevelMinimal logs the URL, outcome and duration.
	LogLevelMinimal LogLevel = iota

	// LogLevelStandard adds the status code, body size and final URL.
	LogLevelStandard

	// LogLevelVerbose adds the first 500 characters of the body.
	LogLevelVerbose
)

const truncateLen = 500

// NewLoggingMiddleware logs each fetch before and after it runs.
// The logger must not be nil.
func NewLoggingMiddleware(logger *slog.Logger, level LogLevel) Middleware {
	return func(next FetchFunc) FetchFunc {
		return func(ctx context.Context, url string) (*Page, error) {
			logger.InfoContext(ctx, "fetching page", slog.String("url", url))

			timer := utils.NewTimer()
			page, err := next(ctx, url)
			elapsed := timer.Stop()

			if err != nil {
				logger.ErrorContext(ctx, "fetch failed",
					slog.String("url", url),
					slog.Duration("duration", elapsed),
					slog.String("error", err.Error()),
				)
				return nil, err
			}

			attrs := []any{
				slog.String("url", url),
				slog.Duration("duration", elapsed),
			}
			if level >= LogLevelStandard {
				attrs = append(attrs,
					slog.Int("status", page.StatusCode),
					slog.Int("bytes", len(page.HTML)),
					slog.String("final_url", page.FinalURL),
				)
			}
			if level >= LogLevelVerbose {
				attrs = append(attrs, slog.String("body", utils.TruncateString(string(page.HTML), truncateLen)))
			}
			logger.InfoContext(ctx, "page fetched", attrs...)

			return page, nil
		}
	}
}

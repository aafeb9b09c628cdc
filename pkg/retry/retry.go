// Package retry provides a bounded exponential-backoff wrapper for
// single upstream calls, with special handling for rate-limit responses
// and server-suggested retry delays.
package retry

import (
	"context"
	"errors"
	"math"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Defaults applied when Config leaves the field zero.
const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = time.Second
)

// Config controls one wrapped call. The wrapper itself is stateless and
// reentrant; it holds no shared mutable state across calls.
type Config struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int

	// BaseDelay seeds the exponential backoff (BaseDelay * 2^attempt).
	// No jitter is added.
	BaseDelay time.Duration

	// ShouldRetry, when set, overrides the default error classification
	// entirely.
	ShouldRetry func(error) bool

	// Operation names the call in log output.
	Operation string

	Logger *zap.Logger
}

// retryHintPattern matches server messages like "Please retry in 2.5s".
var retryHintPattern = regexp.MustCompile(`(?i)retry in ([\d.]+)s`)

// statusCoder is implemented by errors that carry an HTTP status.
type statusCoder interface {
	StatusCode() int
}

// Do runs fn, retrying per cfg. Default classification: rate-limit
// responses (429 or a retry-hint message) are retryable, client errors
// (400) fail immediately, everything else is returned as-is. When the
// server suggests a delay, that delay is used for the next attempt
// instead of the backoff schedule. After retries are exhausted the last
// error is returned; nothing is swallowed at this layer.
func Do[T any](ctx context.Context, fn func() (T, error), cfg Config) (T, error) {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultBaseDelay
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var zero T
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !retryable(err, cfg.ShouldRetry) || attempt == cfg.MaxRetries {
			break
		}

		delay := nextDelay(err, attempt, cfg.BaseDelay)
		logger.Warn("retrying upstream call",
			zap.String("operation", cfg.Operation),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if err := sleep(ctx, delay); err != nil {
			return zero, err
		}
	}

	return zero, lastErr
}

// retryable classifies an error for the default policy, unless the
// caller supplied a predicate.
func retryable(err error, shouldRetry func(error) bool) bool {
	if shouldRetry != nil {
		return shouldRetry(err)
	}
	status := statusOf(err)
	if status == http.StatusBadRequest {
		return false
	}
	return isRateLimited(err)
}

// isRateLimited reports whether the error is a 429 or carries a numeric
// retry-delay hint.
func isRateLimited(err error) bool {
	if statusOf(err) == http.StatusTooManyRequests {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "429") || retryHintPattern.MatchString(msg)
}

// nextDelay computes the wait before the next attempt: the server's
// suggested delay when present, exponential backoff otherwise.
func nextDelay(err error, attempt int, base time.Duration) time.Duration {
	if hint, ok := suggestedDelay(err); ok {
		return hint
	}
	return base * time.Duration(1<<uint(attempt))
}

// suggestedDelay extracts a "retry in Ns" hint, rounded up to whole
// milliseconds.
func suggestedDelay(err error) (time.Duration, bool) {
	match := retryHintPattern.FindStringSubmatch(err.Error())
	if match == nil {
		return 0, false
	}
	seconds, parseErr := strconv.ParseFloat(match[1], 64)
	if parseErr != nil || seconds <= 0 {
		return 0, false
	}
	ms := math.Ceil(seconds * 1000)
	return time.Duration(ms) * time.Millisecond, true
}

func statusOf(err error) int {
	var sc statusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	return 0
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type httpError struct {
	status int
	msg    string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("upstream returned status %d: %s", e.status, e.msg)
}

func (e *httpError) StatusCode() int {
	return e.status
}

func fastConfig() Config {
	return Config{MaxRetries: 3, BaseDelay: time.Millisecond}
}

// TestDo_SuccessFirstAttempt tests that a clean call is returned as-is.
func TestDo_SuccessFirstAttempt(t *testing.T) {
	calls := 0
	result, err := Do(context.Background(), func() (string, error) {
		calls++
		return "ok", nil
	}, fastConfig())

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 1, calls)
}

// TestDo_RetriesRateLimit tests that 429 responses are retried until
// success.
func TestDo_RetriesRateLimit(t *testing.T) {
	calls := 0
	result, err := Do(context.Background(), func() (int, error) {
		calls++
		if calls < 3 {
			return 0, &httpError{status: 429, msg: "rate limited"}
		}
		return 42, nil
	}, fastConfig())

	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, 3, calls)
}

// TestDo_ExhaustsRetries tests that the last error surfaces after the
// retry budget is spent.
func TestDo_ExhaustsRetries(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), func() (int, error) {
		calls++
		return 0, &httpError{status: 429, msg: "rate limited"}
	}, fastConfig())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Equal(t, 4, calls) // first attempt + 3 retries
}

// TestDo_BadRequestFailsFast tests that a 400 is never retried.
func TestDo_BadRequestFailsFast(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), func() (int, error) {
		calls++
		return 0, &httpError{status: 400, msg: "bad request"}
	}, fastConfig())

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

// TestDo_NonRetryableByDefault tests that plain errors are not retried.
func TestDo_NonRetryableByDefault(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), func() (int, error) {
		calls++
		return 0, errors.New("connection refused")
	}, fastConfig())

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

// TestDo_RetryHintInMessage tests that a textual retry hint marks the
// error retryable even without a status code.
func TestDo_RetryHintInMessage(t *testing.T) {
	calls := 0
	result, err := Do(context.Background(), func() (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("please retry in 0.001s")
		}
		return "ok", nil
	}, fastConfig())

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 2, calls)
}

// TestDo_PredicateOverride tests that ShouldRetry replaces the default
// classification in both directions.
func TestDo_PredicateOverride(t *testing.T) {
	// Retry a plain error the default policy would surface immediately
	calls := 0
	cfg := fastConfig()
	cfg.ShouldRetry = func(err error) bool { return true }
	_, err := Do(context.Background(), func() (int, error) {
		calls++
		return 0, errors.New("flaky")
	}, cfg)
	require.Error(t, err)
	assert.Equal(t, 4, calls)

	// Surface a 429 the default policy would retry
	calls = 0
	cfg.ShouldRetry = func(err error) bool { return false }
	_, err = Do(context.Background(), func() (int, error) {
		calls++
		return 0, &httpError{status: 429, msg: "rate limited"}
	}, cfg)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

// TestDo_ContextCancellation tests that cancellation interrupts the
// backoff sleep.
func TestDo_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := Config{MaxRetries: 3, BaseDelay: time.Minute}
	_, err := Do(ctx, func() (int, error) {
		return 0, &httpError{status: 429, msg: "rate limited"}
	}, cfg)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

// TestSuggestedDelay tests hint extraction and millisecond rounding.
func TestSuggestedDelay(t *testing.T) {
	tests := []struct {
		msg    string
		want   time.Duration
		wantOK bool
	}{
		{"Please retry in 2.5s", 2500 * time.Millisecond, true},
		{"please retry in 1s", time.Second, true},
		{"retry in 0.0015s", 2 * time.Millisecond, true}, // rounded up
		{"rate limited", 0, false},
		{"retry in abcs", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			got, ok := suggestedDelay(errors.New(tt.msg))
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestNextDelay tests that the hint wins over the backoff schedule.
func TestNextDelay(t *testing.T) {
	hinted := errors.New("Please retry in 2.5s")
	assert.Equal(t, 2500*time.Millisecond, nextDelay(hinted, 0, time.Second))
	assert.Equal(t, 2500*time.Millisecond, nextDelay(hinted, 2, time.Second))

	plain := &httpError{status: 429, msg: "rate limited"}
	assert.Equal(t, time.Second, nextDelay(plain, 0, time.Second))
	assert.Equal(t, 2*time.Second, nextDelay(plain, 1, time.Second))
	assert.Equal(t, 4*time.Second, nextDelay(plain, 2, time.Second))
}

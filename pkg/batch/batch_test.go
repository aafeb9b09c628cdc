package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastOptions() Options {
	return Options{BatchSize: 5, Delay: -1}
}

// TestMap_OrderPreserved tests that results come back in input order.
func TestMap_OrderPreserved(t *testing.T) {
	items := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}

	results := Map(context.Background(), items, func(_ context.Context, n int) (*string, error) {
		// Later items finish first
		time.Sleep(time.Duration(12-n) * time.Millisecond)
		s := fmt.Sprintf("item-%d", n)
		return &s, nil
	}, fastOptions())

	require.Len(t, results, 12)
	for i, r := range results {
		require.NotNil(t, r)
		assert.Equal(t, fmt.Sprintf("item-%d", i), *r)
	}
}

// TestMap_FailureIsolation tests that one failed item yields a nil slot
// without affecting its batch or later batches.
func TestMap_FailureIsolation(t *testing.T) {
	items := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}

	results := Map(context.Background(), items, func(_ context.Context, n int) (*int, error) {
		if n == 7 {
			return nil, errors.New("boom")
		}
		v := n * 10
		return &v, nil
	}, fastOptions())

	require.Len(t, results, 12)
	for i, r := range results {
		if i == 7 {
			assert.Nil(t, r)
			continue
		}
		require.NotNil(t, r, "slot %d", i)
		assert.Equal(t, i*10, *r)
	}
}

// TestMap_ConcurrencyBound tests that in-flight calls never exceed the
// batch size.
func TestMap_ConcurrencyBound(t *testing.T) {
	var inFlight, peak int32
	var mu sync.Mutex

	items := make([]int, 23)
	Map(context.Background(), items, func(_ context.Context, _ int) (*int, error) {
		current := atomic.AddInt32(&inFlight, 1)
		mu.Lock()
		if current > peak {
			peak = current
		}
		mu.Unlock()
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		v := 0
		return &v, nil
	}, fastOptions())

	assert.LessOrEqual(t, peak, int32(5))
	assert.Greater(t, peak, int32(1)) // items within a batch do overlap
}

// TestMap_InterBatchDelay tests that consecutive batches are separated
// by the configured pause but the final batch is not.
func TestMap_InterBatchDelay(t *testing.T) {
	items := make([]int, 10) // 2 batches of 5
	opts := Options{BatchSize: 5, Delay: 30 * time.Millisecond}

	start := time.Now()
	Map(context.Background(), items, func(_ context.Context, _ int) (*int, error) {
		v := 0
		return &v, nil
	}, opts)
	elapsed := time.Since(start)

	// One inter-batch pause, none after the last batch
	assert.GreaterOrEqual(t, elapsed, 30*time.Millisecond)
	assert.Less(t, elapsed, 60*time.Millisecond)
}

// TestMap_Empty tests the zero-item call.
func TestMap_Empty(t *testing.T) {
	results := Map(context.Background(), nil, func(_ context.Context, _ int) (*int, error) {
		t.Fatal("fn must not be called")
		return nil, nil
	}, fastOptions())

	assert.Empty(t, results)
}

// TestMap_ContextCancellation tests that cancellation stops the pause
// between batches and returns the slots filled so far.
func TestMap_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	items := make([]int, 10)
	opts := Options{BatchSize: 5, Delay: time.Minute}

	var calls int32
	done := make(chan []*int, 1)
	go func() {
		done <- Map(ctx, items, func(_ context.Context, _ int) (*int, error) {
			atomic.AddInt32(&calls, 1)
			v := 1
			return &v, nil
		}, opts)
	}()

	time.Sleep(20 * time.Millisecond) // let the first batch finish
	cancel()

	select {
	case results := <-done:
		assert.Len(t, results, 10)
		assert.EqualValues(t, 5, atomic.LoadInt32(&calls))
	case <-time.After(time.Second):
		t.Fatal("Map did not return after cancellation")
	}
}

// TestMapFiltered tests that failed slots are dropped.
func TestMapFiltered(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	results := MapFiltered(context.Background(), items, func(_ context.Context, n int) (*int, error) {
		if n%2 == 0 {
			return nil, errors.New("even")
		}
		return &n, nil
	}, fastOptions())

	assert.Equal(t, []int{1, 3, 5}, results)
}

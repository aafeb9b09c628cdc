package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type payload struct {
	Value string `json:"value"`
}

// failingBackend errors on every operation.
type failingBackend struct{}

func (failingBackend) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("backend down")
}

func (failingBackend) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("backend down")
}

func (failingBackend) Delete(context.Context, string) error { return errors.New("backend down") }
func (failingBackend) Clear(context.Context) error          { return errors.New("backend down") }

// TestWrap_ComputeOnceThenCached tests that the second call is served
// from cache.
func TestWrap_ComputeOnceThenCached(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryBackend(), zap.NewNop())

	computes := 0
	compute := func() (payload, error) {
		computes++
		return payload{Value: "fresh"}, nil
	}

	first, err := Wrap(ctx, store, "k", time.Minute, compute)
	require.NoError(t, err)
	assert.Equal(t, "fresh", first.Value)

	second, err := Wrap(ctx, store, "k", time.Minute, compute)
	require.NoError(t, err)
	assert.Equal(t, "fresh", second.Value)
	assert.Equal(t, 1, computes)
}

// TestWrap_ExpiredRecomputes tests that an expired entry triggers a
// fresh compute.
func TestWrap_ExpiredRecomputes(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryBackend(), zap.NewNop())

	computes := 0
	compute := func() (payload, error) {
		computes++
		return payload{Value: "v"}, nil
	}

	_, err := Wrap(ctx, store, "k", 10*time.Millisecond, compute)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	_, err = Wrap(ctx, store, "k", 10*time.Millisecond, compute)
	require.NoError(t, err)
	assert.Equal(t, 2, computes)
}

// TestWrap_DisabledStorePassesThrough tests transparency with no
// backend configured.
func TestWrap_DisabledStorePassesThrough(t *testing.T) {
	ctx := context.Background()
	store := NewStore(nil, zap.NewNop())
	assert.False(t, store.Enabled())

	computes := 0
	for i := 0; i < 3; i++ {
		got, err := Wrap(ctx, store, "k", time.Minute, func() (payload, error) {
			computes++
			return payload{Value: "direct"}, nil
		})
		require.NoError(t, err)
		assert.Equal(t, "direct", got.Value)
	}
	assert.Equal(t, 3, computes)
}

// TestWrap_ComputeErrorPropagates tests that compute failures surface
// unchanged and are not cached.
func TestWrap_ComputeErrorPropagates(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryBackend(), zap.NewNop())

	boom := errors.New("upstream down")
	_, err := Wrap(ctx, store, "k", time.Minute, func() (payload, error) {
		return payload{}, boom
	})
	assert.ErrorIs(t, err, boom)

	// The failure left nothing behind; the next call computes again
	got, err := Wrap(ctx, store, "k", time.Minute, func() (payload, error) {
		return payload{Value: "recovered"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "recovered", got.Value)
}

// TestWrap_BackendFailureIsMiss tests that a broken backend degrades to
// pass-through instead of failing the pipeline.
func TestWrap_BackendFailureIsMiss(t *testing.T) {
	ctx := context.Background()
	store := NewStore(failingBackend{}, zap.NewNop())

	got, err := Wrap(ctx, store, "k", time.Minute, func() (payload, error) {
		return payload{Value: "computed"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "computed", got.Value)
}

// TestWrap_UndecodableEntryIsMiss tests that a corrupt cache entry is
// recomputed rather than returned.
func TestWrap_UndecodableEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	store := NewStore(backend, zap.NewNop())

	require.NoError(t, backend.Set(ctx, "k", []byte("{not json"), time.Minute))

	got, err := Wrap(ctx, store, "k", time.Minute, func() (payload, error) {
		return payload{Value: "fresh"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", got.Value)
}

// TestWrap_SingleFlight tests that concurrent callers for one key share
// a single compute.
func TestWrap_SingleFlight(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryBackend(), zap.NewNop())

	var computes int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := Wrap(ctx, store, "k", time.Minute, func() (payload, error) {
				atomic.AddInt32(&computes, 1)
				<-release
				return payload{Value: "shared"}, nil
			})
			assert.NoError(t, err)
			assert.Equal(t, "shared", got.Value)
		}()
	}

	time.Sleep(20 * time.Millisecond) // let callers pile up
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, atomic.LoadInt32(&computes))
}

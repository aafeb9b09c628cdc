package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMemoryBackend_SetGet tests the basic round trip.
func TestMemoryBackend_SetGet(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryBackend()

	require.NoError(t, m.Set(ctx, "k", []byte(`{"a":1}`), time.Minute))

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), got)
}

// TestMemoryBackend_MissIsNil tests that a missing key is a nil miss,
// not an error.
func TestMemoryBackend_MissIsNil(t *testing.T) {
	m := NewMemoryBackend()

	got, err := m.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.Nil(t, got)
}

// TestMemoryBackend_Expiry tests lazy removal of expired entries.
func TestMemoryBackend_Expiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryBackend()

	require.NoError(t, m.Set(ctx, "k", []byte("v"), 10*time.Millisecond))

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.NotNil(t, got)

	time.Sleep(20 * time.Millisecond)

	got, err = m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, got)
}

// TestMemoryBackend_NoExpiry tests that a non-positive TTL stores
// without expiry.
func TestMemoryBackend_NoExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryBackend()

	require.NoError(t, m.Set(ctx, "k", []byte("v"), 0))

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}

// TestMemoryBackend_DeleteClear tests removal operations.
func TestMemoryBackend_DeleteClear(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryBackend()

	require.NoError(t, m.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, m.Set(ctx, "b", []byte("2"), time.Minute))

	require.NoError(t, m.Delete(ctx, "a"))
	got, _ := m.Get(ctx, "a")
	assert.Nil(t, got)
	got, _ = m.Get(ctx, "b")
	assert.NotNil(t, got)

	require.NoError(t, m.Clear(ctx))
	got, _ = m.Get(ctx, "b")
	assert.Nil(t, got)
}

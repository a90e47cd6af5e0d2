package repository

import (
	"errors"
	"testing"

	"studypath_backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	logger.Log = zap.NewNop()
}

// failingSlotStore errors on every call once tripped.
type failingSlotStore struct {
	inner   SlotStore
	tripped bool
}

func (f *failingSlotStore) Get(key string) (string, bool, error) {
	if f.tripped {
		return "", false, errors.New("backend down")
	}
	return f.inner.Get(key)
}

func (f *failingSlotStore) Set(key, value string) error {
	if f.tripped {
		return errors.New("backend down")
	}
	return f.inner.Set(key, value)
}

func (f *failingSlotStore) Remove(key string) error {
	if f.tripped {
		return errors.New("backend down")
	}
	return f.inner.Remove(key)
}

func TestMemorySlotStoreRoundTrip(t *testing.T) {
	s := NewMemorySlotStore()

	_, ok, err := s.Get("k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set("k", "v1"))
	val, ok, err := s.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v1", val)

	require.NoError(t, s.Set("k", "v2"))
	val, _, _ = s.Get("k")
	assert.Equal(t, "v2", val)

	require.NoError(t, s.Remove("k"))
	_, ok, err = s.Get("k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Remove("k"), "removing an absent key succeeds")
}

func TestDurableSlotPassesThroughHealthyBackend(t *testing.T) {
	backend := NewMemorySlotStore()
	d := NewDurableSlot(backend)

	require.NoError(t, d.Set("k", "v"))
	val, ok, err := d.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v", val)
	assert.False(t, d.Degraded())

	// The value reached the real backend.
	val, ok, _ = backend.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", val)
}

func TestDurableSlotDegradesOnSetFailure(t *testing.T) {
	backend := &failingSlotStore{inner: NewMemorySlotStore(), tripped: true}
	d := NewDurableSlot(backend)

	require.NoError(t, d.Set("k", "v"), "backend failure is absorbed")
	assert.True(t, d.Degraded())

	val, ok, err := d.Get("k")
	require.NoError(t, err)
	require.True(t, ok, "Get-after-Set holds despite the dead backend")
	assert.Equal(t, "v", val)
}

func TestDurableSlotDegradesOnGetFailure(t *testing.T) {
	backend := &failingSlotStore{inner: NewMemorySlotStore(), tripped: true}
	d := NewDurableSlot(backend)

	_, ok, err := d.Get("k")
	require.NoError(t, err, "backend read failure reads as absent")
	assert.False(t, ok)
	assert.True(t, d.Degraded())
}

func TestDurableSlotRemoveTombstonesBackendValue(t *testing.T) {
	inner := NewMemorySlotStore()
	backend := &failingSlotStore{inner: inner}
	d := NewDurableSlot(backend)

	require.NoError(t, d.Set("k", "v"))

	// Backend dies; Remove can no longer reach it.
	backend.tripped = true
	require.NoError(t, d.Remove("k"))

	// The stale value still sits in the backend, but never resurrects.
	val, ok, _ := inner.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", val)

	_, ok, err := d.Get("k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDurableSlotSetClearsTombstone(t *testing.T) {
	d := NewDurableSlot(NewMemorySlotStore())

	require.NoError(t, d.Set("k", "v1"))
	require.NoError(t, d.Remove("k"))
	require.NoError(t, d.Set("k", "v2"))

	val, ok, err := d.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v2", val)
}

func TestDurableSlotSkipsBackendOnceDegraded(t *testing.T) {
	inner := NewMemorySlotStore()
	backend := &failingSlotStore{inner: inner, tripped: true}
	d := NewDurableSlot(backend)

	require.NoError(t, d.Set("a", "1"))
	require.True(t, d.Degraded())

	// Backend recovers, but the session stays in-memory.
	backend.tripped = false
	require.NoError(t, d.Set("b", "2"))

	_, ok, _ := inner.Get("b")
	assert.False(t, ok, "degraded session never writes to the backend again")

	val, ok, err := d.Get("b")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2", val)
}

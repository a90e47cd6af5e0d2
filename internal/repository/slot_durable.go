package repository

import (
	"sync"

	"studypath_backend/pkg/logger"

	"go.uber.org/zap"
)

// DurableSlot wraps a SlotStore with a session-local overlay. Writes go
// to both; when the backend fails, the slot degrades to in-memory-only
// for the rest of the session instead of surfacing the failure, so
// Get-after-Set holds for callers no matter what the backend does.
// Removed keys are tombstoned so a stale backend value cannot resurrect
// after Remove within the session.
type DurableSlot struct {
	backend SlotStore

	mu       sync.Mutex
	overlay  map[string]string
	removed  map[string]bool
	degraded bool
}

func NewDurableSlot(backend SlotStore) *DurableSlot {
	return &DurableSlot{
		backend: backend,
		overlay: make(map[string]string),
		removed: make(map[string]bool),
	}
}

func (d *DurableSlot) Get(key string) (string, bool, error) {
	d.mu.Lock()
	if d.removed[key] {
		d.mu.Unlock()
		return "", false, nil
	}
	if val, ok := d.overlay[key]; ok {
		d.mu.Unlock()
		return val, true, nil
	}
	d.mu.Unlock()

	val, ok, err := d.backend.Get(key)
	if err != nil {
		d.degrade("get", key, err)
		return "", false, nil
	}
	return val, ok, nil
}

func (d *DurableSlot) Set(key, value string) error {
	d.mu.Lock()
	d.overlay[key] = value
	delete(d.removed, key)
	alreadyDegraded := d.degraded
	d.mu.Unlock()

	if alreadyDegraded {
		return nil
	}
	if err := d.backend.Set(key, value); err != nil {
		d.degrade("set", key, err)
	}
	return nil
}

func (d *DurableSlot) Remove(key string) error {
	d.mu.Lock()
	delete(d.overlay, key)
	d.removed[key] = true
	alreadyDegraded := d.degraded
	d.mu.Unlock()

	if alreadyDegraded {
		return nil
	}
	if err := d.backend.Remove(key); err != nil {
		d.degrade("remove", key, err)
	}
	return nil
}

func (d *DurableSlot) degrade(op, key string, err error) {
	d.mu.Lock()
	first := !d.degraded
	d.degraded = true
	d.mu.Unlock()

	if first && logger.Log != nil {
		logger.Log.Warn("slot backend unavailable, degrading to in-memory",
			zap.String("op", op),
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

// Degraded reports whether the backend has failed this session.
func (d *DurableSlot) Degraded() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.degraded
}

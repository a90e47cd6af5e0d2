package repository

import (
	"context"
	"sync"

	"studypath_backend/internal/model"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SlotStore is the persistence primitive backing one named piece of
// state. Get reports ok=false when no value has been written for the
// key; Set persists before returning; Remove erases the value so a
// subsequent Get reports absent, not the last-known value.
type SlotStore interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
}

// GormSlotStore keeps one row per key in the record_slots table.
type GormSlotStore struct {
	DB *gorm.DB
}

func NewGormSlotStore(db *gorm.DB) *GormSlotStore {
	return &GormSlotStore{DB: db}
}

func (s *GormSlotStore) Get(key string) (string, bool, error) {
	var slot model.RecordSlot
	err := s.DB.Where("`key` = ?", key).First(&slot).Error
	if err == gorm.ErrRecordNotFound {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return slot.Value, true, nil
}

func (s *GormSlotStore) Set(key, value string) error {
	slot := model.RecordSlot{Key: key, Value: value}
	return s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&slot).Error
}

func (s *GormSlotStore) Remove(key string) error {
	return s.DB.Where("`key` = ?", key).Delete(&model.RecordSlot{}).Error
}

// RedisSlotStore keeps one string value per key. Values never expire;
// removal is explicit.
type RedisSlotStore struct {
	Client *redis.Client
}

func NewRedisSlotStore(rdb *redis.Client) *RedisSlotStore {
	return &RedisSlotStore{Client: rdb}
}

func (s *RedisSlotStore) Get(key string) (string, bool, error) {
	val, err := s.Client.Get(context.Background(), key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (s *RedisSlotStore) Set(key, value string) error {
	return s.Client.Set(context.Background(), key, value, 0).Err()
}

func (s *RedisSlotStore) Remove(key string) error {
	return s.Client.Del(context.Background(), key).Err()
}

// MemorySlotStore is the in-memory backend used by tests and as the
// degrade target when durable storage is unavailable.
type MemorySlotStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemorySlotStore() *MemorySlotStore {
	return &MemorySlotStore{values: make(map[string]string)}
}

func (s *MemorySlotStore) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.values[key]
	return val, ok, nil
}

func (s *MemorySlotStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemorySlotStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

package repository

import (
	"context"
	"sync"
	"time"
)

// MemoryDateCache is the in-process fallback used when Redis is down.
type MemoryDateCache struct {
	entries sync.Map
	ttl     time.Duration
}

type dateCacheEntry struct {
	dates     []time.Time
	expiresAt time.Time
}

func NewMemoryDateCache(ttl time.Duration) *MemoryDateCache {
	return &MemoryDateCache{ttl: ttl}
}

func (r *MemoryDateCache) GetRoomDates(ctx context.Context, roomName string) ([]time.Time, bool, error) {
	val, ok := r.entries.Load(roomName)
	if !ok {
		return nil, false, nil
	}
	entry := val.(*dateCacheEntry)
	if r.ttl > 0 && time.Now().After(entry.expiresAt) {
		r.entries.Delete(roomName)
		return nil, false, nil
	}
	return entry.dates, true, nil
}

func (r *MemoryDateCache) SetRoomDates(ctx context.Context, roomName string, dates []time.Time) error {
	r.entries.Store(roomName, &dateCacheEntry{
		dates:     dates,
		expiresAt: time.Now().Add(r.ttl),
	})
	return nil
}

func (r *MemoryDateCache) InvalidateRoom(ctx context.Context, roomName string) error {
	r.entries.Delete(roomName)
	return nil
}

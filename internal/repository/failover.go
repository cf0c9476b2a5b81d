package repository

import (
	"context"
	"sync/atomic"
	"time"

	"innkeep/internal/domain"

	"github.com/rs/zerolog"
)

// FailoverDateCache serves from the primary (Redis) cache and falls
// back to the in-memory one when the primary errors, probing for
// recovery after a minute.
type FailoverDateCache struct {
	primary   domain.DateCache
	fallback  domain.DateCache
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck time.Time
}

func NewFailoverDateCache(primary, fallback domain.DateCache, logger *zerolog.Logger) *FailoverDateCache {
	return &FailoverDateCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverDateCache) GetRoomDates(ctx context.Context, roomName string) ([]time.Time, bool, error) {
	if !r.isDown.Load() {
		dates, hit, err := r.primary.GetRoomDates(ctx, roomName)
		if err == nil {
			return dates, hit, nil
		}
		r.logger.Error().Err(err).Msg("primary date cache failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck = time.Now()
	}

	if r.isDown.Load() && time.Since(r.lastCheck) > time.Minute {
		dates, hit, err := r.primary.GetRoomDates(ctx, roomName)
		if err == nil {
			r.isDown.Store(false)
			return dates, hit, nil
		}
		r.lastCheck = time.Now()
	}

	return r.fallback.GetRoomDates(ctx, roomName)
}

func (r *FailoverDateCache) SetRoomDates(ctx context.Context, roomName string, dates []time.Time) error {
	if !r.isDown.Load() {
		err := r.primary.SetRoomDates(ctx, roomName, dates)
		if err == nil {
			return nil
		}
		r.logger.Error().Err(err).Msg("primary date cache failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck = time.Now()
	}

	return r.fallback.SetRoomDates(ctx, roomName, dates)
}

func (r *FailoverDateCache) InvalidateRoom(ctx context.Context, roomName string) error {
	// Invalidation must reach both tiers or a stale fallback entry can
	// resurface after failover.
	var primaryErr error
	if !r.isDown.Load() {
		primaryErr = r.primary.InvalidateRoom(ctx, roomName)
		if primaryErr != nil {
			r.logger.Error().Err(primaryErr).Msg("primary date cache failed, falling back to memory")
			r.isDown.Store(true)
			r.lastCheck = time.Now()
		}
	}

	return r.fallback.InvalidateRoom(ctx, roomName)
}

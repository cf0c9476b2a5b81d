package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"innkeep/internal/config"
	"innkeep/internal/models"

	"github.com/redis/go-redis/v9"
)

// RedisDateCache keeps per-room booked-date sets in Redis. Entries
// carry a TTL so a missed invalidation only causes bounded staleness.
type RedisDateCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient is intentionally thin: pool sizing and auth come
// straight from config.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	options := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}

	return redis.NewClient(options)
}

func NewRedisDateCache(client *redis.Client, ttl time.Duration) *RedisDateCache {
	return &RedisDateCache{
		client: client,
		ttl:    ttl,
	}
}

func roomDatesKey(roomName string) string {
	return fmt.Sprintf("room_dates:%s", roomName)
}

func (r *RedisDateCache) GetRoomDates(ctx context.Context, roomName string) ([]time.Time, bool, error) {
	if r.client == nil {
		return nil, false, fmt.Errorf("redis client is nil")
	}
	val, err := r.client.Get(ctx, roomDatesKey(roomName)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get room dates from redis: %w", err)
	}

	var encoded []string
	if err := json.Unmarshal([]byte(val), &encoded); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal room dates: %w", err)
	}

	dates := make([]time.Time, 0, len(encoded))
	for _, s := range encoded {
		d, err := time.Parse(models.DateLayout, s)
		if err != nil {
			return nil, false, fmt.Errorf("failed to parse cached date %s: %w", s, err)
		}
		dates = append(dates, d)
	}
	return dates, true, nil
}

func (r *RedisDateCache) SetRoomDates(ctx context.Context, roomName string, dates []time.Time) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	encoded := make([]string, 0, len(dates))
	for _, d := range dates {
		encoded = append(encoded, d.Format(models.DateLayout))
	}
	data, err := json.Marshal(encoded)
	if err != nil {
		return fmt.Errorf("failed to marshal room dates: %w", err)
	}

	if err := r.client.Set(ctx, roomDatesKey(roomName), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set room dates in redis: %w", err)
	}
	return nil
}

func (r *RedisDateCache) InvalidateRoom(ctx context.Context, roomName string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Del(ctx, roomDatesKey(roomName)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate room dates in redis: %w", err)
	}
	return nil
}

// Ping checks the Redis connection.
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}

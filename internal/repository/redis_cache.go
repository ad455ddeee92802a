package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"github.com/avery69gael/mi-proyecto-trading/internal/domain"
)

// snapshotTTL keeps stale cache entries from lingering forever; a coin
// nobody selects for a day re-fetches from scratch.
const snapshotTTL = 24 * time.Hour

// RedisSnapshotCache stores snapshots in Redis under "cached_<coinID>",
// so cached data survives restarts and can be shared between replicas.
type RedisSnapshotCache struct {
	client *goredis.Client
}

// RedisConfig configures the snapshot cache connection.
type RedisConfig struct {
	Addr     string // e.g. "localhost:6379"
	Password string
	DB       int
}

// NewRedisSnapshotCache connects and pings the server.
func NewRedisSnapshotCache(cfg RedisConfig) (*RedisSnapshotCache, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	log.Printf("[redis] connected to %s", cfg.Addr)
	return &RedisSnapshotCache{client: client}, nil
}

func snapshotKey(coinID string) string {
	return "cached_" + coinID
}

func (c *RedisSnapshotCache) Put(ctx context.Context, snap *domain.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("nil snapshot")
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return c.client.Set(ctx, snapshotKey(snap.CoinID), data, snapshotTTL).Err()
}

// Get returns the cached snapshot for a coin, or nil when none exists.
func (c *RedisSnapshotCache) Get(ctx context.Context, coinID string) (*domain.Snapshot, error) {
	data, err := c.client.Get(ctx, snapshotKey(coinID)).Bytes()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// Close releases the underlying connection.
func (c *RedisSnapshotCache) Close() error {
	return c.client.Close()
}

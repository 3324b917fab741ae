// internal/common/database/redis.go
package database

import (
	"context"
	"fmt"
	"time"

	"adinsight-workers/internal/common/config"

	"github.com/redis/go-redis/v9"
)

// RedisClient wraps the cache connection used for quota counters,
// campaign snapshots, and query result caching. Workers take the
// embedded *redis.Client.
type RedisClient struct {
	Client *redis.Client
}

// NewRedis builds a client tuned for the fleet's short read-mostly
// operations. Timeouts stay below every worker job timeout so a stalled
// cache degrades a job instead of hanging it.
func NewRedis(cfg config.RedisConfig) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Address,
		Password:        cfg.Password,
		DB:              cfg.DB,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     2 * time.Second,
		WriteTimeout:    2 * time.Second,
		MaxRetries:      2,
		MinRetryBackoff: 50 * time.Millisecond,
		MaxRetryBackoff: 500 * time.Millisecond,
		PoolSize:        20,
		MinIdleConns:    2,
	})

	return &RedisClient{Client: rdb}, nil
}

// Ping verifies the cache is reachable.
func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (c *RedisClient) Close() error {
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}

// Package cache stores computed dashboard reports in Redis, keyed by the
// scenario that produced them. A cache without a Redis client is a no-op.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"hardware-sim/internal/config"
	"hardware-sim/internal/metrics"
)

const keyPrefix = "hwsim:reports:"

type ReportCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// Disabled returns a cache that never hits and never stores.
func Disabled() *ReportCache {
	return &ReportCache{logger: slog.Default()}
}

// Connect dials Redis when configured. On a failed ping it returns a disabled
// cache together with the error so the caller may carry on without it.
func Connect(ctx context.Context, cfg config.CacheConfig, logger *slog.Logger) (*ReportCache, error) {
	if !cfg.Enabled() {
		return &ReportCache{logger: logger}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return &ReportCache{logger: logger}, fmt.Errorf("cache: redis ping: %w", err)
	}

	logger.Info("report cache connected", "addr", cfg.RedisAddr, "ttl", cfg.TTL)
	return &ReportCache{rdb: rdb, ttl: cfg.TTL, logger: logger}, nil
}

func (c *ReportCache) Enabled() bool {
	return c.rdb != nil
}

// ReportsKey names the cached reports of one scenario. variant encodes the
// report options, so processes configured differently never share entries.
func ReportsKey(scenarioID, variant string) string {
	return keyPrefix + scenarioID + ":" + variant
}

// Get unmarshals the cached value into dest and reports whether it hit.
func (c *ReportCache) Get(ctx context.Context, key string, dest any) bool {
	if c.rdb == nil {
		return false
	}

	val, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("cache get failed", "key", key, "error", err)
		}
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return false
	}
	if err := json.Unmarshal(val, dest); err != nil {
		c.logger.Warn("cache entry unreadable", "key", key, "error", err)
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return false
	}

	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return true
}

func (c *ReportCache) Set(ctx context.Context, key string, value any) error {
	if c.rdb == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: marshal %s: %w", key, err)
	}
	return c.rdb.Set(ctx, key, data, c.ttl).Err()
}

func (c *ReportCache) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

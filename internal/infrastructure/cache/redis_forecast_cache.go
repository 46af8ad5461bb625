package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/retailops/backend/internal/domain/prediction"
	"github.com/retailops/backend/internal/infrastructure/config"
)

const connectTimeout = 5 * time.Second

// RedisForecastCache implements prediction.ForecastCache using Redis. It is
// the hot tier in front of the forecast repository; entries expire after
// the staleness window so a redis hit is fresh by construction.
type RedisForecastCache struct {
	client     *redis.Client
	ownsClient bool // true if we created the client and should close it
	logger     *zap.Logger
}

// RedisForecastCacheOption is a functional option for configuring the cache
type RedisForecastCacheOption func(*RedisForecastCache)

// WithRedisCacheLogger sets the logger for the cache
func WithRedisCacheLogger(logger *zap.Logger) RedisForecastCacheOption {
	return func(c *RedisForecastCache) {
		c.logger = logger
	}
}

// NewRedisForecastCache creates a redis-backed forecast cache with its own
// client.
func NewRedisForecastCache(cfg config.RedisConfig, opts ...RedisForecastCacheOption) (*RedisForecastCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	cache := &RedisForecastCache{
		client:     client,
		ownsClient: true,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(cache)
	}
	return cache, nil
}

// NewRedisForecastCacheWithClient creates a cache with an existing Redis
// client. The caller retains ownership of the client.
func NewRedisForecastCacheWithClient(client *redis.Client, opts ...RedisForecastCacheOption) *RedisForecastCache {
	cache := &RedisForecastCache{
		client: client,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(cache)
	}
	return cache
}

func (c *RedisForecastCache) cacheKey(key prediction.ForecastKey) string {
	return fmt.Sprintf("forecast:%s", key.String())
}

// Get retrieves a forecast record from cache. A miss is (nil, nil).
func (c *RedisForecastCache) Get(ctx context.Context, key prediction.ForecastKey) (*prediction.ForecastRecord, error) {
	data, err := c.client.Get(ctx, c.cacheKey(key)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get forecast from cache: %w", err)
	}

	var record prediction.ForecastRecord
	if err := json.Unmarshal(data, &record); err != nil {
		c.logger.Warn("Dropping corrupted forecast cache entry",
			zap.String("key", key.String()),
			zap.Error(err))
		_ = c.client.Del(ctx, c.cacheKey(key))
		return nil, fmt.Errorf("failed to unmarshal forecast: %w", err)
	}
	return &record, nil
}

// Set stores a forecast record in cache with the given ttl.
func (c *RedisForecastCache) Set(ctx context.Context, key prediction.ForecastKey, record *prediction.ForecastRecord, ttl time.Duration) error {
	if record == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = prediction.DefaultStalenessWindow
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal forecast: %w", err)
	}
	if err := c.client.Set(ctx, c.cacheKey(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set forecast in cache: %w", err)
	}
	return nil
}

// Delete removes a forecast record from cache.
func (c *RedisForecastCache) Delete(ctx context.Context, key prediction.ForecastKey) error {
	if err := c.client.Del(ctx, c.cacheKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete forecast from cache: %w", err)
	}
	return nil
}

// Close releases the redis client if this cache owns it.
func (c *RedisForecastCache) Close() error {
	if c.ownsClient {
		return c.client.Close()
	}
	return nil
}

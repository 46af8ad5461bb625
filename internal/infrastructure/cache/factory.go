package cache

import (
	"go.uber.org/zap"

	"github.com/retailops/backend/internal/domain/prediction"
	"github.com/retailops/backend/internal/infrastructure/config"
)

// NewForecastCache builds the forecast cache tier from configuration: redis
// when enabled and reachable, the in-memory cache otherwise. An unreachable
// redis degrades to memory with a warning instead of failing startup.
func NewForecastCache(cfg *config.Config, logger *zap.Logger) prediction.ForecastCache {
	if !cfg.Redis.Enabled {
		logger.Info("Using in-memory forecast cache")
		return NewMemoryForecastCache()
	}

	redisCache, err := NewRedisForecastCache(cfg.Redis, WithRedisCacheLogger(logger))
	if err != nil {
		logger.Warn("Redis unavailable, falling back to in-memory forecast cache",
			zap.String("addr", cfg.Redis.RedisAddr()),
			zap.Error(err))
		return NewMemoryForecastCache()
	}

	logger.Info("Using redis forecast cache", zap.String("addr", cfg.Redis.RedisAddr()))
	return redisCache
}

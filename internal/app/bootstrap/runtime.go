package bootstrap

import (
	"context"
	"crypto/tls"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/nomination-intake/internal/config"
	httpmiddleware "github.com/wolfman30/nomination-intake/internal/http/middleware"
	"github.com/wolfman30/nomination-intake/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildRateLimiter returns a Redis-backed limiter shared across instances when
// Redis is reachable, else a per-process token bucket. A non-positive limit
// disables rate limiting.
func BuildRateLimiter(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) httpmiddleware.Limiter {
	if cfg == nil || cfg.RateLimitPerMinute <= 0 {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if client := BuildRedisClient(ctx, cfg, logger, true); client != nil {
		logger.Info("rate limiting via redis", "per_minute", cfg.RateLimitPerMinute)
		return httpmiddleware.NewRedisLimiter(client, cfg.RateLimitPerMinute, time.Minute)
	}
	logger.Info("rate limiting in memory", "per_minute", cfg.RateLimitPerMinute)
	return httpmiddleware.NewPerMinuteLimiter(cfg.RateLimitPerMinute)
}

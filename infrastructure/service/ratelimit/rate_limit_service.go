package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/fixora/resourcesvc/infrastructure/service/logger"
)

// RateLimitService mendefinisikan interface untuk rate limiting
type RateLimitService interface {
	Increment(ctx context.Context, key string, window time.Duration) (int, error)
	Block(ctx context.Context, key string, duration time.Duration, reason string) error
	IsBlocked(ctx context.Context, key string) (bool, error)
}

// RateLimitConfig configuration untuk rate limiting
type RateLimitConfig struct {
	Enabled       bool
	RedisURL      string
	Requests      int
	Window        time.Duration
	BlockDuration time.Duration
}

// rateLimitService implementasi RateLimitService dengan Redis
type rateLimitService struct {
	redisClient *redis.Client
	logger      logger.Logger
}

// NewRateLimitService connects to Redis, or returns a no-op service when
// rate limiting is disabled.
func NewRateLimitService(config RateLimitConfig, log logger.Logger) (RateLimitService, error) {
	if !config.Enabled {
		log.Info(context.Background(), "Rate limiting disabled", nil)
		return NewNoopRateLimitService(), nil
	}

	opt, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	redisClient := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Info(ctx, "Rate limiting service initialized", map[string]interface{}{
		"requests":       config.Requests,
		"window":         config.Window.String(),
		"block_duration": config.BlockDuration.String(),
	})

	return NewRedisRateLimitService(redisClient, log), nil
}

// NewRedisRateLimitService wraps an already connected client.
func NewRedisRateLimitService(client *redis.Client, log logger.Logger) RateLimitService {
	return &rateLimitService{
		redisClient: client,
		logger:      log.WithFields(map[string]interface{}{"component": "ratelimit"}),
	}
}

// incrementScript bumps the counter and starts the window in one atomic step.
// A counter left without a TTL gets one on its next hit.
var incrementScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if redis.call('PTTL', KEYS[1]) < 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return count
`)

// Increment menambah counter; the window starts with the first hit.
func (s *rateLimitService) Increment(ctx context.Context, key string, window time.Duration) (int, error) {
	count, err := incrementScript.Run(ctx, s.redisClient, []string{key}, window.Milliseconds()).Int()
	if err != nil {
		s.logger.Error(ctx, "Failed to increment rate limit counter", err, map[string]interface{}{"key": key})
		return 0, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	return count, nil
}

// Block memblokir key untuk durasi tertentu
func (s *rateLimitService) Block(ctx context.Context, key string, duration time.Duration, reason string) error {
	blockKey := blockKeyFor(key)

	blockData := map[string]interface{}{
		"reason":     reason,
		"blocked_at": time.Now().Unix(),
		"duration":   duration.Seconds(),
	}
	if cid := logger.CorrelationID(ctx); cid != "" {
		blockData["correlation_id"] = cid
	}

	pipeline := s.redisClient.TxPipeline()
	pipeline.HSet(ctx, blockKey, blockData)
	pipeline.Expire(ctx, blockKey, duration)

	if _, err := pipeline.Exec(ctx); err != nil {
		s.logger.Error(ctx, "Failed to block key", err, map[string]interface{}{"key": key})
		return fmt.Errorf("failed to block key: %w", err)
	}

	s.logger.Warn(ctx, "Key blocked due to rate limit exceeded", map[string]interface{}{
		"key":      key,
		"duration": duration.String(),
		"reason":   reason,
	})

	return nil
}

// IsBlocked mengecek apakah key sedang diblokir
func (s *rateLimitService) IsBlocked(ctx context.Context, key string) (bool, error) {
	exists, err := s.redisClient.Exists(ctx, blockKeyFor(key)).Result()
	if err != nil {
		s.logger.Error(ctx, "Failed to check block status", err, map[string]interface{}{"key": key})
		return false, fmt.Errorf("failed to check block status: %w", err)
	}

	return exists > 0, nil
}

func blockKeyFor(key string) string {
	return "blocked:" + key
}

// noopRateLimitService implementasi no-op untuk ketika rate limiting disabled
type noopRateLimitService struct{}

func NewNoopRateLimitService() RateLimitService {
	return noopRateLimitService{}
}

func (noopRateLimitService) Increment(context.Context, string, time.Duration) (int, error) {
	return 0, nil
}

func (noopRateLimitService) Block(context.Context, string, time.Duration, string) error {
	return nil
}

func (noopRateLimitService) IsBlocked(context.Context, string) (bool, error) {
	return false, nil
}

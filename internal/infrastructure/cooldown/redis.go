package cooldown

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/domain"
)

// RedisStore shares resend windows between shells using TTL keys
type RedisStore struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

// NewRedisStore creates a Redis-backed cool-down store
func NewRedisStore(client *redis.Client, profile string, logger *zap.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "otp:res:" + profile + ":",
		logger: logger.Named("cooldown.redis"),
	}
}

// Acquire implements domain.CooldownStore. When Redis is unreachable the window is
// not enforced locally; the server stays authoritative.
func (s *RedisStore) Acquire(ctx context.Context, key string, window time.Duration) (bool, time.Duration) {
	ok, err := s.client.SetNX(ctx, s.prefix+key, 1, window).Result()
	if err != nil {
		s.logger.Warn("failed to start resend window", zap.Error(err))
		return true, 0
	}
	if ok {
		return true, 0
	}
	return false, s.Remaining(ctx, key)
}

// Remaining implements domain.CooldownStore
func (s *RedisStore) Remaining(ctx context.Context, key string) time.Duration {
	ttl, err := s.client.TTL(ctx, s.prefix+key).Result()
	if err != nil {
		s.logger.Warn("failed to check resend window", zap.Error(err))
		return 0
	}
	// If TTL <= 0, key doesn't exist or has expired
	if ttl <= 0 {
		return 0
	}
	return ttl
}

// Release implements domain.CooldownStore
func (s *RedisStore) Release(ctx context.Context, key string) {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		s.logger.Warn("failed to release resend window", zap.Error(err))
	}
}

var _ domain.CooldownStore = (*RedisStore)(nil)

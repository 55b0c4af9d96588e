package tokenstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/domain"
)

// RedisStore keeps the pair in Redis so several shells on one profile see the same session
type RedisStore struct {
	client    *redis.Client
	prefix    string
	opTimeout time.Duration
	logger    *zap.Logger
}

// NewRedisStore creates a Redis-backed token store for the given profile
func NewRedisStore(client *redis.Client, profile string, logger *zap.Logger) *RedisStore {
	return &RedisStore{
		client:    client,
		prefix:    "profile:" + profile + ":",
		opTimeout: 2 * time.Second,
		logger:    logger.Named("tokenstore.redis"),
	}
}

func (s *RedisStore) key(name string) string { return s.prefix + name }

// Set implements domain.TokenStore
func (s *RedisStore) Set(pair domain.TokenPair) {
	ctx, cancel := context.WithTimeout(context.Background(), s.opTimeout)
	defer cancel()

	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, s.key(KeyAccessToken), pair.AccessToken, 0)
		if pair.RefreshToken == "" {
			p.Del(ctx, s.key(KeyRefreshToken))
		} else {
			p.Set(ctx, s.key(KeyRefreshToken), pair.RefreshToken, 0)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("failed to persist tokens", zap.Error(err))
	}
}

// Get implements domain.TokenStore
func (s *RedisStore) Get() (domain.TokenPair, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), s.opTimeout)
	defer cancel()

	vals, err := s.client.MGet(ctx, s.key(KeyAccessToken), s.key(KeyRefreshToken)).Result()
	if err != nil {
		s.logger.Error("failed to read tokens", zap.Error(err))
		return domain.TokenPair{}, false
	}

	access, _ := vals[0].(string)
	refresh, _ := vals[1].(string)
	if access == "" {
		return domain.TokenPair{}, false
	}
	return domain.TokenPair{AccessToken: access, RefreshToken: refresh}, true
}

// Clear implements domain.TokenStore
func (s *RedisStore) Clear() {
	ctx, cancel := context.WithTimeout(context.Background(), s.opTimeout)
	defer cancel()

	if err := s.client.Del(ctx, s.key(KeyAccessToken), s.key(KeyRefreshToken)).Err(); err != nil {
		s.logger.Error("failed to clear tokens", zap.Error(err))
	}
}

var _ domain.TokenStore = (*RedisStore)(nil)

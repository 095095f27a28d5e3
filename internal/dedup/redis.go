package dedup

import (
	"context"
	"time"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisStore backs the dedup guard with a shared TTL key-value store, for
// deployments running more than one instance. Redis expiry replaces the
// in-memory sweep. On Redis errors the store fails open: the event is
// processed rather than dropped.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewRedisStore(client *redis.Client, ttl time.Duration, log *zap.Logger) *RedisStore {
	if ttl <= 0 {
		ttl = TTL
	}
	return &RedisStore{
		client: client,
		ttl:    ttl,
		log:    log.Named("dedup"),
	}
}

func (s *RedisStore) ShouldProcess(ctx context.Context, key string) bool {
	if key == "" {
		return true
	}
	n, err := s.client.Exists(ctx, s.redisKey(key)).Result()
	if err != nil {
		s.log.Warn("dedup lookup failed, processing anyway", zap.Error(err))
		return true
	}
	return n == 0
}

func (s *RedisStore) MarkProcessed(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.client.Set(ctx, s.redisKey(key), 1, s.ttl).Err(); err != nil {
		s.log.Warn("dedup mark failed", zap.Error(err))
	}
}

func (s *RedisStore) redisKey(key string) string {
	return "reportweek:dedup:" + key
}

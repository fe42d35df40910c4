package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cargarn1/MovieFan/internal/logging"
	"github.com/cargarn1/MovieFan/internal/model"
)

// RecommendationCache stores computed recommendation lists per
// (user, limit).  Implementations treat every backend error as a miss.
type RecommendationCache interface {
	Get(ctx context.Context, userID uint64, limit int) ([]model.Recommendation, bool)
	Set(ctx context.Context, userID uint64, limit int, recs []model.Recommendation)
	// Invalidate drops every cached list of userID.
	Invalidate(ctx context.Context, userID uint64)
}

// RedisRecommendationCache keeps JSON encoded lists under
// <prefix>:<user>:<limit> with a fixed TTL.
type RedisRecommendationCache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisRecommendationCache returns nil when rdb is nil or ttl is not
// positive, which disables caching.
func NewRedisRecommendationCache(rdb *redis.Client, prefix string, ttl time.Duration) *RedisRecommendationCache {
	if rdb == nil || ttl <= 0 {
		return nil
	}
	if prefix == "" {
		prefix = "moviefan:recs"
	}
	return &RedisRecommendationCache{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (c *RedisRecommendationCache) key(userID uint64, limit int) string {
	return fmt.Sprintf("%s:%d:%d", c.prefix, userID, limit)
}

func (c *RedisRecommendationCache) Get(ctx context.Context, userID uint64, limit int) ([]model.Recommendation, bool) {
	raw, err := c.rdb.Get(ctx, c.key(userID, limit)).Bytes()
	if err != nil {
		return nil, false
	}
	var recs []model.Recommendation
	if err := json.Unmarshal(raw, &recs); err != nil {
		return nil, false
	}
	logging.Debug().Uint64("user_id", userID).Int("limit", limit).Msg("recommendations cache hit")
	return recs, true
}

func (c *RedisRecommendationCache) Set(ctx context.Context, userID uint64, limit int, recs []model.Recommendation) {
	data, err := json.Marshal(recs)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, c.key(userID, limit), data, c.ttl).Err(); err != nil {
		logging.Warn().Err(err).Uint64("user_id", userID).Msg("recommendations cache write failed")
	}
}

func (c *RedisRecommendationCache) Invalidate(ctx context.Context, userID uint64) {
	pattern := fmt.Sprintf("%s:%d:*", c.prefix, userID)
	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		logging.Warn().Err(err).Uint64("user_id", userID).Msg("recommendations cache scan failed")
		return
	}
	if len(keys) > 0 {
		if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
			logging.Warn().Err(err).Uint64("user_id", userID).Int("keys", len(keys)).Msg("recommendations cache delete failed")
		}
	}
}

package cache

import (
	"context"
	"errors"
	"fmt"

	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Cache 依命名空間區分的字串快取，CacheManager 與 RedisCache 皆實作
type Cache interface {
	Get(ctx context.Context, namespace, key string) (string, error)
	Set(ctx context.Context, namespace, key, value string) error
}

const redisKeyPrefix = "meal-planner:cache"

// RedisCache 以 Redis 保存的快取，多個實例共用分類結果
type RedisCache struct {
	client *redis.Client
	config *config.CacheConfig
}

// NewRedisCache 創建 Redis 快取；client 由呼叫端管理
func NewRedisCache(client *redis.Client, cfg *config.CacheConfig) *RedisCache {
	return &RedisCache{
		client: client,
		config: cfg,
	}
}

func (s *RedisCache) enabled() bool {
	return s != nil && s.client != nil && s.config != nil && s.config.Enabled
}

// Get 獲取緩存，未命中回傳 common.ErrCacheMiss
func (s *RedisCache) Get(ctx context.Context, namespace, key string) (string, error) {
	if !s.enabled() {
		return "", common.ErrCacheDisabled
	}

	val, err := s.client.Get(ctx, s.generateKey(namespace, key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", common.ErrCacheMiss
		}
		common.LogWarn("Redis cache get failed", zap.String("namespace", namespace), zap.Error(err))
		return "", fmt.Errorf("failed to get cache: %w", err)
	}
	return val, nil
}

// Set 設置緩存，使用設定中的 TTL
func (s *RedisCache) Set(ctx context.Context, namespace, key, value string) error {
	if !s.enabled() {
		return nil
	}

	if err := s.client.Set(ctx, s.generateKey(namespace, key), value, s.config.TTL).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// generateKey 生成緩存鍵
func (s *RedisCache) generateKey(namespace, key string) string {
	return fmt.Sprintf("%s:%s:%s", redisKeyPrefix, namespace, key)
}

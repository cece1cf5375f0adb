package shopping

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisStore 以單一 Redis key 保存整份清單
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisClient 依設定建立 Redis 連線並測試
func NewRedisClient(ctx context.Context, cfg *config.StoreConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// 測試連接
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	common.LogInfo("Redis store connected",
		zap.String("addr", cfg.RedisAddr),
		zap.Int("db", cfg.RedisDB),
	)
	return client, nil
}

// NewRedisStore 創建 Redis 儲存
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = "meal-planner:shopping-list"
	}
	return &RedisStore{
		client: client,
		key:    key,
	}
}

// Load 讀取清單，key 不存在時回傳空清單
func (s *RedisStore) Load(ctx context.Context) (Document, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Document{}, nil
		}
		return Document{}, fmt.Errorf("failed to load shopping list: %w", err)
	}

	var doc Document
	if err := common.ParseJSONBytes(data, &doc); err != nil {
		return Document{}, fmt.Errorf("failed to unmarshal shopping list: %w", err)
	}
	return doc, nil
}

// Save 覆寫清單，不設過期時間
func (s *RedisStore) Save(ctx context.Context, doc Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal shopping list: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save shopping list: %w", err)
	}
	return nil
}

// Ping 檢查連線，供就緒檢查使用
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close 關閉連線
func (s *RedisStore) Close() error {
	return s.client.Close()
}

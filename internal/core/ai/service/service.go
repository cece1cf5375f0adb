package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"meal-planner/internal/core/ai/cache"
	"meal-planner/internal/core/ai/provider"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"

	"golang.org/x/time/rate"
)

const promptNamespace = "prompt"

// Response AI 回應
type Response struct {
	Content  string
	CacheHit bool
}

// Service AI 服務：限流、快取後轉交提供者
type Service struct {
	config       *config.Config
	provider     provider.Provider
	cacheManager *cache.CacheManager
	limiter      *rate.Limiter
}

// NewService 創建 AI 服務
func NewService(cfg *config.Config, p provider.Provider, cacheManager *cache.CacheManager) (*Service, error) {
	if p == nil {
		return nil, errors.New("ai provider is required")
	}

	perMinute := cfg.AI.RequestsPerMinute
	if perMinute <= 0 {
		perMinute = 20
	}
	burst := cfg.AI.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Service{
		config:       cfg,
		provider:     p,
		cacheManager: cacheManager,
		limiter:      rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), burst),
	}, nil
}

// ProcessRequest 統一對外方法，prompt 相同時直接使用快取
func (s *Service) ProcessRequest(ctx context.Context, prompt string) (*Response, error) {
	// 統一 prompt 格式，確保快取 key 一致
	prompt = strings.Join(strings.Fields(prompt), " ")
	if prompt == "" {
		return nil, common.ErrInvalidRequest.Wrap(errors.New("empty prompt"))
	}

	useCache := s.config.AI.EnableCache && s.cacheManager != nil
	if useCache {
		if val, err := s.cacheManager.Get(ctx, promptNamespace, prompt); err == nil && val != "" {
			return &Response{Content: val, CacheHit: true}, nil
		}
	}

	// 等待額度，ctx 取消或等待超過期限時放棄
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, common.ErrAIRateLimited.Wrap(err)
	}

	start := time.Now()
	resp, err := s.provider.Generate(ctx, &provider.Request{
		Messages: []provider.Message{{Role: "user", Content: prompt}},
	})
	common.LogAICall(s.provider.GetModel(), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	content := strings.TrimSpace(resp.Content)
	if useCache && content != "" {
		_ = s.cacheManager.Set(ctx, promptNamespace, prompt, content)
	}

	return &Response{Content: content}, nil
}

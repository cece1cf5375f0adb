package service

import (
	"context"
	"fmt"
	"net/http"

	"meal-planner/internal/core/ai/provider"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// OpenRouterService OpenRouter chat completions 客戶端
type OpenRouterService struct {
	config *config.OpenRouterConfig
	client *resty.Client
}

type chatRequest struct {
	Model       string             `json:"model"`
	Messages    []provider.Message `json:"messages"`
	MaxTokens   int                `json:"max_tokens,omitempty"`
	Temperature float64            `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage provider.Usage `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewOpenRouterService 創建 OpenRouter 服務
func NewOpenRouterService(cfg *config.OpenRouterConfig) *OpenRouterService {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetAuthToken(cfg.APIKey).
		SetHeader("HTTP-Referer", "https://meal-planner.local").
		SetHeader("X-Title", "Meal Planner").
		SetRetryCount(2)

	return &OpenRouterService{
		config: cfg,
		client: client,
	}
}

// GetModel 目前使用的模型
func (s *OpenRouterService) GetModel() string {
	return s.config.Model
}

// Generate 送出對話並回傳第一個選項的內容
func (s *OpenRouterService) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	body := chatRequest{
		Model:       s.config.Model,
		Messages:    req.Messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if body.MaxTokens == 0 {
		body.MaxTokens = s.config.MaxTokens
	}

	var result chatResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&result).
		SetError(&result).
		Post("/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("failed to send request to OpenRouter: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		msg := resp.String()
		if result.Error != nil && result.Error.Message != "" {
			msg = result.Error.Message
		}
		common.LogWarn("OpenRouter returned error",
			zap.Int("status", resp.StatusCode()),
			zap.String("model", s.config.Model),
		)
		return nil, common.ErrAIServiceError.Wrap(fmt.Errorf("OpenRouter API returned %d: %s", resp.StatusCode(), msg))
	}

	if len(result.Choices) == 0 {
		return nil, common.ErrAIServiceError.Wrap(fmt.Errorf("no choices in OpenRouter response"))
	}

	return &provider.Response{
		Content: result.Choices[0].Message.Content,
		Usage:   result.Usage,
	}, nil
}

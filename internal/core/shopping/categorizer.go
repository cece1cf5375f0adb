package shopping

import (
	"context"
	"fmt"
	"strings"

	"meal-planner/internal/core/ai/cache"
	aiservice "meal-planner/internal/core/ai/service"
	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
)

const sectionNamespace = "section"

// Categorizer 為關鍵字表無法分類的食材判斷區域
type Categorizer interface {
	Categorize(ctx context.Context, name string) (string, error)
}

// Completer 文字補全服務，由 ai/service.Service 實作
type Completer interface {
	ProcessRequest(ctx context.Context, prompt string) (*aiservice.Response, error)
}

// AICategorizer 請 LLM 從分類表中挑選一個區域
type AICategorizer struct {
	ai       Completer
	cache    cache.Cache
	sections *SectionTable
}

// NewAICategorizer 創建 AI 分類器；sectionCache 可為 nil
func NewAICategorizer(ai Completer, sectionCache cache.Cache, sections *SectionTable) *AICategorizer {
	if sections == nil {
		sections = DefaultSectionTable()
	}
	return &AICategorizer{
		ai:       ai,
		cache:    sectionCache,
		sections: sections,
	}
}

type sectionAnswer struct {
	Section string `json:"section"`
}

// Categorize 回傳區域名稱；回覆無效時回傳 Other 與錯誤
func (c *AICategorizer) Categorize(ctx context.Context, name string) (string, error) {
	name = strings.Join(strings.Fields(strings.ToLower(name)), " ")
	if name == "" {
		return OtherSection, nil
	}

	if c.cache != nil {
		if section, err := c.cache.Get(ctx, sectionNamespace, name); err == nil && c.sections.Has(section) {
			return section, nil
		}
	}

	resp, err := c.ai.ProcessRequest(ctx, c.prompt(name))
	if err != nil {
		common.LogWarn("AI categorize failed", zap.String("item", name), zap.Error(err))
		return OtherSection, err
	}

	section, err := c.parseAnswer(resp.Content)
	if err != nil {
		common.LogWarn("AI categorize returned invalid answer",
			zap.String("item", name),
			zap.String("content", resp.Content),
			zap.Error(err),
		)
		return OtherSection, err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, sectionNamespace, name, section); err != nil {
			common.LogDebug("section cache set failed", zap.Error(err))
		}
	}
	return section, nil
}

func (c *AICategorizer) prompt(name string) string {
	return fmt.Sprintf(`Categorize the grocery item "%s" into exactly one of these store sections: %s.
Respond with JSON only, in the form {"section": "<section name>"}.`,
		name, strings.Join(c.sections.Names(), ", "))
}

// parseAnswer 接受 JSON 或單純的區域名稱，大小寫不敏感
func (c *AICategorizer) parseAnswer(content string) (string, error) {
	candidate := strings.TrimSpace(content)
	if obj, ok := common.ExtractJSONObject(content); ok {
		var answer sectionAnswer
		if err := common.ParseJSON(obj, &answer); err != nil {
			return "", fmt.Errorf("failed to parse section answer: %w", err)
		}
		candidate = strings.TrimSpace(answer.Section)
	}

	for _, section := range c.sections.Names() {
		if strings.EqualFold(section, candidate) {
			return section, nil
		}
	}
	return "", fmt.Errorf("unknown section %q", candidate)
}

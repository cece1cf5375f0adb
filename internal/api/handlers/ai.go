package handlers

import (
	"net/http"

	"meal-planner/internal/core/shopping"
	"meal-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CategorizeRequest 分類請求
type CategorizeRequest struct {
	Item string `json:"item" binding:"required"`
}

// CategorizeResponse 分類結果，source 為 keyword 或 ai
type CategorizeResponse struct {
	Item    string `json:"item"`
	Name    string `json:"name"`
	Section string `json:"section"`
	Source  string `json:"source"`
}

// AIHandler 賣場區域分類處理器
type AIHandler struct {
	combiner    *shopping.Combiner
	categorizer shopping.Categorizer
}

// NewAIHandler 創建分類處理器；categorizer 為 nil 時只用關鍵字表
func NewAIHandler(combiner *shopping.Combiner, categorizer shopping.Categorizer) *AIHandler {
	if combiner == nil {
		combiner = shopping.Default()
	}
	return &AIHandler{
		combiner:    combiner,
		categorizer: categorizer,
	}
}

// Categorize 判斷食材所屬區域：先查關鍵字表，查不到才問 AI
func (h *AIHandler) Categorize(c *gin.Context) {
	requestID := RequestID(c)

	var req CategorizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, common.ErrInvalidRequest.Wrap(err))
		return
	}

	record, err := h.combiner.Parser().Parse(req.Item, "")
	if err != nil {
		RespondError(c, err)
		return
	}
	name := record.Name

	resp := CategorizeResponse{
		Item:    req.Item,
		Name:    name,
		Section: h.combiner.Sections().Categorize(name),
		Source:  "keyword",
	}

	if resp.Section == shopping.OtherSection && h.categorizer != nil {
		section, err := h.categorizer.Categorize(c.Request.Context(), name)
		if err != nil {
			common.LogWarn("AI categorize fell back to Other",
				zap.String("request_id", requestID),
				zap.String("item", name),
				zap.Error(err),
			)
		} else if section != shopping.OtherSection {
			resp.Section = section
			resp.Source = "ai"
		}
	}

	c.JSON(http.StatusOK, resp)
}

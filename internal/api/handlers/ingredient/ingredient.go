package ingredient

import (
	"net/http"

	"meal-planner/internal/api/handlers"
	ingredientService "meal-planner/internal/core/ingredient"
	"meal-planner/internal/core/shopping"
	"meal-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ParseRequest 解析單行食材
type ParseRequest struct {
	Text         string `json:"text" binding:"required"`
	SourceRecipe string `json:"source_recipe,omitempty"`
}

// MatchRequest 比對兩個名稱
type MatchRequest struct {
	A string `json:"a" binding:"required"`
	B string `json:"b" binding:"required"`
}

// MatchResponse 比對結果
type MatchResponse struct {
	Match       bool    `json:"match"`
	NormalizedA string  `json:"normalized_a"`
	NormalizedB string  `json:"normalized_b"`
	Similarity  float64 `json:"similarity"`
	Threshold   float64 `json:"threshold"`
}

// Handler 食材解析處理程序
type Handler struct {
	combiner *shopping.Combiner
}

// NewHandler 創建食材處理程序，與購物清單共用同一組詞表
func NewHandler(combiner *shopping.Combiner) *Handler {
	if combiner == nil {
		combiner = shopping.Default()
	}
	return &Handler{combiner: combiner}
}

// HandleParse 解析單行食材
func (h *Handler) HandleParse(c *gin.Context) {
	var req ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.RespondError(c, common.ErrInvalidRequest.Wrap(err))
		return
	}

	record, err := h.combiner.Parser().Parse(req.Text, req.SourceRecipe)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}

	common.LogDebug("Ingredient parsed",
		zap.String("request_id", handlers.RequestID(c)),
		zap.String("name", record.Name),
	)
	c.JSON(http.StatusOK, record)
}

// HandleMatch 回傳兩個名稱是否視為同一食材
func (h *Handler) HandleMatch(c *gin.Context) {
	var req MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.RespondError(c, common.ErrInvalidRequest.Wrap(err))
		return
	}

	parser := h.combiner.Parser()
	matcher := h.combiner.Matcher()
	a := parser.NormalizeName(req.A)
	b := parser.NormalizeName(req.B)

	c.JSON(http.StatusOK, MatchResponse{
		Match:       matcher.NamesMatch(req.A, req.B),
		NormalizedA: a,
		NormalizedB: b,
		Similarity:  ingredientService.Similarity(a, b),
		Threshold:   matcher.Threshold(),
	})
}

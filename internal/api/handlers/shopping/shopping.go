package shopping

import (
	"net/http"
	"strconv"
	"strings"

	"meal-planner/internal/api/handlers"
	"meal-planner/internal/api/middleware"
	"meal-planner/internal/core/ingredient"
	shoppingService "meal-planner/internal/core/shopping"
	"meal-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LineRequest 單行食材與其來源食譜
type LineRequest struct {
	Text         string `json:"text"`
	SourceRecipe string `json:"source_recipe,omitempty"`
}

// RecipeRequest 一份食譜的食材清單
type RecipeRequest struct {
	Name        string   `json:"name"`
	Ingredients []string `json:"ingredients"`
}

// CombineRequest 合併請求，lines 與 recipes 可同時提供
type CombineRequest struct {
	Lines          []LineRequest   `json:"lines,omitempty"`
	Recipes        []RecipeRequest `json:"recipes,omitempty"`
	GroupBySection *bool           `json:"group_by_section,omitempty"`
}

// AddItemsRequest 新增食譜項目
type AddItemsRequest struct {
	Recipe string   `json:"recipe" binding:"required"`
	Items  []string `json:"items" binding:"required"`
}

// RemoveItemsRequest 移除食譜項目，items 省略時移除整份食譜
type RemoveItemsRequest struct {
	Recipe string   `json:"recipe" binding:"required"`
	Items  []string `json:"items,omitempty"`
}

// ToggleItemRequest 勾選或取消勾選
type ToggleItemRequest struct {
	Recipe  string `json:"recipe" binding:"required"`
	Item    string `json:"item" binding:"required"`
	Checked *bool  `json:"checked" binding:"required"`
}

// Handler 購物清單處理程序
type Handler struct {
	service        *shoppingService.Service
	groupBySection bool
}

// NewHandler 創建購物清單處理程序，groupBySection 為未指定時的預設分組方式
func NewHandler(service *shoppingService.Service, groupBySection bool) *Handler {
	return &Handler{
		service:        service,
		groupBySection: groupBySection,
	}
}

// HandleCombine 合併傳入的食材，不寫入清單
func (h *Handler) HandleCombine(c *gin.Context) {
	var req CombineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.RespondError(c, common.ErrInvalidRequest.Wrap(err))
		return
	}

	lines := make([]ingredient.Line, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, ingredient.Line{Text: l.Text, SourceRecipe: l.SourceRecipe})
	}
	for _, r := range req.Recipes {
		for _, text := range r.Ingredients {
			lines = append(lines, ingredient.Line{Text: text, SourceRecipe: r.Name})
		}
	}

	// 空批次回傳空清單
	grouped := h.groupBySection
	if req.GroupBySection != nil {
		grouped = *req.GroupBySection
	}

	list := h.service.Build(c.Request.Context(), lines, grouped)

	middleware.AddLogFields(c,
		zap.Int("lines", len(lines)),
		zap.Int("entries", len(list.Entries)),
		zap.Int("warnings", len(list.Warnings)),
	)

	c.JSON(http.StatusOK, list)
}

// HandleGetList 回傳已儲存的清單
func (h *Handler) HandleGetList(c *gin.Context) {
	doc, err := h.service.Snapshot(c.Request.Context())
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// HandleAddItems 新增食譜項目
func (h *Handler) HandleAddItems(c *gin.Context) {
	var req AddItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.RespondError(c, common.ErrInvalidRequest.Wrap(err))
		return
	}
	if strings.TrimSpace(req.Recipe) == "" {
		handlers.RespondError(c, common.NewValidationError("recipe is required"))
		return
	}

	added, err := h.service.AddItems(c.Request.Context(), req.Recipe, req.Items)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"added": added,
		"count": len(added),
	})
}

// HandleRemoveItems 移除食譜項目
func (h *Handler) HandleRemoveItems(c *gin.Context) {
	var req RemoveItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.RespondError(c, common.ErrInvalidRequest.Wrap(err))
		return
	}

	removed, err := h.service.RemoveItems(c.Request.Context(), req.Recipe, req.Items)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

// HandleToggleItem 設定勾選狀態
func (h *Handler) HandleToggleItem(c *gin.Context) {
	var req ToggleItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.RespondError(c, common.ErrInvalidRequest.Wrap(err))
		return
	}

	item, err := h.service.ToggleItem(c.Request.Context(), req.Recipe, req.Item, *req.Checked)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// HandleClear 清空清單
func (h *Handler) HandleClear(c *gin.Context) {
	if err := h.service.Clear(c.Request.Context()); err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

// HandleCombinedList 合併未勾選項目；format=markdown 時回傳純文字
func (h *Handler) HandleCombinedList(c *gin.Context) {
	grouped := h.groupBySection
	if raw := c.Query("grouped"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			handlers.RespondError(c, common.NewValidationError("grouped must be a boolean"))
			return
		}
		grouped = v
	}

	list, err := h.service.CombinedList(c.Request.Context(), grouped)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}

	if strings.EqualFold(c.Query("format"), "markdown") {
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(list.Markdown))
		return
	}
	c.JSON(http.StatusOK, list)
}

package ingredient

import (
	"net/http"

	"meal-planner/internal/pkg/common"
)

// Record 解析後的單一食材
type Record struct {
	RawText      string   `json:"raw_text"`                // 原始輸入
	Name         string   `json:"name"`                    // 正規化名稱，永不為空
	Quantity     *float64 `json:"quantity,omitempty"`      // 數量（可能缺少）
	Unit         string   `json:"unit,omitempty"`          // 標準單位，空字串代表計數
	SourceRecipe string   `json:"source_recipe,omitempty"` // 來源食譜
}

// HasQuantity 是否有數量
func (r Record) HasQuantity() bool {
	return r.Quantity != nil
}

// Line 待解析的原始食材行
type Line struct {
	Text         string `json:"text"`
	SourceRecipe string `json:"source_recipe,omitempty"`
}

// ErrEmptyIngredient 空白輸入
var ErrEmptyIngredient = common.NewError("EMPTY_INGREDIENT", "ingredient text is empty", http.StatusBadRequest, nil)

// Float 回傳指標，方便建構 Record
func Float(v float64) *float64 {
	return &v
}

package shopping

import (
	"net/http"
	"time"

	"meal-planner/internal/core/ingredient"
	"meal-planner/internal/pkg/common"
)

// CombinedEntry 合併後的購物清單項目
type CombinedEntry struct {
	DisplayName         string              `json:"display_name"`
	TotalQuantity       *float64            `json:"total_quantity,omitempty"` // 單位相容時才有值
	Unit                string              `json:"unit,omitempty"`
	ContributingSources []string            `json:"contributing_sources"`
	StoreSection        string              `json:"store_section"`
	Members             []ingredient.Record `json:"members"`
}

// MalformedLineWarning 無法正常解析的行，不影響整批處理
type MalformedLineWarning struct {
	Index        int    `json:"index"`
	RawText      string `json:"raw_text"`
	SourceRecipe string `json:"source_recipe,omitempty"`
	Reason       string `json:"reason"`
}

// SectionGroup 單一賣場區域與其項目
type SectionGroup struct {
	Section string          `json:"section"`
	Entries []CombinedEntry `json:"entries"`
}

// List 一次產生的購物清單
type List struct {
	Entries  []CombinedEntry        `json:"entries"`
	Sections []SectionGroup         `json:"sections,omitempty"`
	Warnings []MalformedLineWarning `json:"warnings,omitempty"`
	Markdown string                 `json:"markdown"`
}

// Item 已儲存的購物清單項目
type Item struct {
	ID       string `json:"id"`
	Item     string `json:"item"`
	Recipe   string `json:"recipe"`
	Added    string `json:"added"` // YYYY-MM-DD
	Checked  bool   `json:"checked"`
	Category string `json:"category"`
}

// Document 儲存層的完整內容
type Document struct {
	Items       []Item     `json:"items"`
	LastUpdated *time.Time `json:"last_updated"`
}

// 業務錯誤
var (
	ErrItemNotFound     = common.NewError("ITEM_NOT_FOUND", "shopping list item not found", http.StatusNotFound, nil)
	ErrStoreUnavailable = common.NewError("STORE_UNAVAILABLE", "shopping list store unavailable", http.StatusServiceUnavailable, nil)
)

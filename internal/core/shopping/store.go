package shopping

import (
	"context"
	"sync"
)

// Store 購物清單儲存層
type Store interface {
	Load(ctx context.Context) (Document, error)
	Save(ctx context.Context, doc Document) error
}

// MemoryStore 記憶體儲存，適合開發與測試
type MemoryStore struct {
	mu  sync.RWMutex
	doc Document
}

// NewMemoryStore 創建記憶體儲存
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load 讀取目前內容的副本
func (s *MemoryStore) Load(ctx context.Context) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyDocument(s.doc), nil
}

// Save 覆寫內容
func (s *MemoryStore) Save(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = copyDocument(doc)
	return nil
}

func copyDocument(doc Document) Document {
	out := Document{Items: append([]Item(nil), doc.Items...)}
	if doc.LastUpdated != nil {
		t := *doc.LastUpdated
		out.LastUpdated = &t
	}
	return out
}

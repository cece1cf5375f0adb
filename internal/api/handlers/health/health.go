package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"meal-planner/internal/api/handlers"
	"meal-planner/internal/core/ai/cache"
	"meal-planner/internal/core/ai/queue"
	"meal-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const readinessTimeout = 2 * time.Second

// Pinger 可檢查連線的依賴，例如 Redis 儲存
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Store     string                 `json:"store"`
	AI        bool                   `json:"ai_categorize"`
	Cache     map[string]interface{} `json:"cache"`
	Queue     *queue.Status          `json:"queue,omitempty"`
	Runtime   map[string]interface{} `json:"runtime"`
}

// HealthCheck 健康檢查處理器
func HealthCheck(c *gin.Context) {
	cfg := handlers.Config(c)
	if cfg == nil {
		common.LogError("Configuration not found in context")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Configuration not found",
		})
		return
	}

	var cacheManager *cache.CacheManager
	if v, ok := c.Get("cache_manager"); ok {
		cacheManager, _ = v.(*cache.CacheManager)
	}

	var queueManager *queue.Manager
	if v, ok := c.Get("queue_manager"); ok {
		queueManager, _ = v.(*queue.Manager)
	}

	// 獲取運行時信息
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   cfg.App.Version,
		Store:     cfg.Store.Backend,
		AI:        cfg.AI.Categorize,
		Cache:     cacheManager.GetStats(),
		Queue:     queueManager.GetQueueStatus(),
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查處理器，儲存層無法連線時回傳 503
func ReadinessCheck(c *gin.Context) {
	if v, ok := c.Get("store_pinger"); ok {
		if pinger, ok := v.(Pinger); ok && pinger != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
			defer cancel()

			if err := pinger.Ping(ctx); err != nil {
				common.LogWarn("Readiness check failed", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status": "unavailable",
					"store":  err.Error(),
				})
				return
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LivenessCheck 存活檢查處理器
func LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

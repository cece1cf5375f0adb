package api

import (
	"fmt"
	"time"

	"meal-planner/internal/api/handlers"
	"meal-planner/internal/api/handlers/health"
	ingredientHandler "meal-planner/internal/api/handlers/ingredient"
	shoppingHandler "meal-planner/internal/api/handlers/shopping"
	"meal-planner/internal/api/middleware"
	"meal-planner/internal/core/ai/cache"
	"meal-planner/internal/core/ai/queue"
	shoppingService "meal-planner/internal/core/shopping"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// 超時設置
	timeoutDuration = 30 * time.Second
	// 請求體大小限制 (1MB)
	maxBodySize = 1 << 20
)

// Dependencies 路由需要的服務
type Dependencies struct {
	Shopping     *shoppingService.Service
	Categorizer  shoppingService.Categorizer // 未啟用 AI 分類時為 nil
	CacheManager *cache.CacheManager
	Queue        *queue.Manager // 未啟用 AI 分類時為 nil
	StorePinger  health.Pinger  // 記憶體儲存時為 nil
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, deps Dependencies) (*gin.Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if deps.Shopping == nil {
		return nil, fmt.Errorf("shopping service is required")
	}

	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New()) // 自動生成請求 ID
	router.Use(middleware.Logger())

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(maxBodySize))

	// 設置超時與注入服務
	router.Use(middleware.Timeout(timeoutDuration))
	router.Use(func(c *gin.Context) {
		c.Set("config", cfg)
		c.Set("cache_manager", deps.CacheManager)
		if deps.Queue != nil {
			c.Set("queue_manager", deps.Queue)
		}
		if deps.StorePinger != nil {
			c.Set("store_pinger", deps.StorePinger)
		}
		c.Next()
	})

	// 健康檢查路由
	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)

	combiner := deps.Shopping.Combiner()
	ingredientH := ingredientHandler.NewHandler(combiner)
	shoppingH := shoppingHandler.NewHandler(deps.Shopping, cfg.Shopping.GroupBySection)
	aiH := handlers.NewAIHandler(combiner, deps.Categorizer)

	// API 路由組
	api := router.Group("/api/v1")
	if cfg.RateLimit.Enabled {
		api.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	{
		ingredientGroup := api.Group("/ingredients")
		{
			ingredientGroup.POST("/parse", ingredientH.HandleParse)
			ingredientGroup.POST("/match", ingredientH.HandleMatch)
			ingredientGroup.POST("/categorize", aiH.Categorize)
		}

		listGroup := api.Group("/shopping-list")
		{
			listGroup.POST("/combine", shoppingH.HandleCombine)
			listGroup.GET("", shoppingH.HandleGetList)
			listGroup.DELETE("", shoppingH.HandleClear)
			listGroup.GET("/combined", shoppingH.HandleCombinedList)

			// 寫入清單的請求去重
			items := listGroup.Group("/items", middleware.Deduplication(cfg.DedupWindow))
			items.POST("", shoppingH.HandleAddItems)
			items.DELETE("", shoppingH.HandleRemoveItems)
			items.PATCH("/check", shoppingH.HandleToggleItem)
		}
	}

	common.LogInfo("Router setup completed successfully",
		zap.String("store", cfg.Store.Backend),
		zap.Bool("ai_categorize", deps.Categorizer != nil),
		zap.Bool("cache_manager_initialized", deps.CacheManager != nil),
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Duration("timeout", timeoutDuration),
		zap.Int64("max_body_size", maxBodySize),
	)

	return router, nil
}

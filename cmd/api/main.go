package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meal-planner/internal/api"
	"meal-planner/internal/core/ai/cache"
	"meal-planner/internal/core/ai/queue"
	aiService "meal-planner/internal/core/ai/service"
	"meal-planner/internal/core/ingredient"
	"meal-planner/internal/core/service"
	"meal-planner/internal/core/shopping"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
)

func main() {
	// 載入設定（含 .env）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定", configFields(cfg)...)

	// 初始化快取
	cacheManager := cache.NewManager(&cfg.Cache)
	defer cacheManager.Close()

	deps, cleanup, err := buildDependencies(cfg, cacheManager)
	if err != nil {
		common.LogFatal("Failed to initialize services", zap.Error(err))
	}
	defer cleanup()

	// 設置路由
	router, err := api.SetupRouter(cfg, deps)
	if err != nil {
		common.LogFatal("Failed to setup router", zap.Error(err))
	}

	// 設置 HTTP 服務器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 啟動服務器
	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Int("port", cfg.Server.Port),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			common.LogFatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	// 設置關閉超時
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
	}

	common.LogInfo("Server exited")
}

// configFields 啟動時記錄的設定，API Key 一律遮罩
func configFields(cfg *config.Config) []zap.Field {
	return []zap.Field{
		zap.String("openrouter_api_key", config.MaskAPIKey(cfg.OpenRouter.APIKey)),
		zap.String("openrouter_model", cfg.OpenRouter.Model),
		zap.String("store_backend", cfg.Store.Backend),
	}
}

// buildDependencies 依設定組裝詞表、儲存層與 AI 分類器
func buildDependencies(cfg *config.Config, cacheManager *cache.CacheManager) (api.Dependencies, func(), error) {
	cleanup := func() {}

	vocab := ingredient.DefaultVocabulary().Extend(ingredient.Extras{
		Units:         cfg.Shopping.ExtraUnits,
		Descriptors:   cfg.Shopping.ExtraDescriptors,
		Varieties:     cfg.Shopping.ExtraVarieties,
		SingularWords: cfg.Shopping.ExtraSingularWords,
	})
	parser := ingredient.NewParser(vocab)
	matcher := ingredient.NewMatcher(vocab,
		ingredient.WithThreshold(cfg.Shopping.FuzzyThreshold),
		ingredient.WithStructuralMaxDiff(cfg.Shopping.StructuralMaxDiff),
	)
	sections := shopping.DefaultSectionTable().WithKeywords(cfg.Shopping.ExtraSectionKeywords)
	combiner := shopping.NewCombiner(parser, matcher, sections)

	deps := api.Dependencies{CacheManager: cacheManager}

	// 儲存層；Redis 模式下分類結果也存入 Redis 供多個實例共用
	var store shopping.Store
	var sectionCache cache.Cache = cacheManager
	switch cfg.Store.Backend {
	case config.StoreBackendRedis:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		client, err := shopping.NewRedisClient(ctx, &cfg.Store)
		if err != nil {
			return api.Dependencies{}, cleanup, err
		}
		redisStore := shopping.NewRedisStore(client, cfg.Store.RedisKey)
		cleanup = func() { _ = redisStore.Close() }
		store = redisStore
		deps.StorePinger = redisStore
		if cfg.Cache.Enabled {
			sectionCache = cache.NewRedisCache(client, &cfg.Cache)
		}
	default:
		store = shopping.NewMemoryStore()
	}

	// AI 分類器
	var opts []shopping.ServiceOption
	if cfg.AI.Categorize {
		openRouter := service.NewOpenRouterService(&cfg.OpenRouter)
		ai, err := aiService.NewService(cfg, openRouter, cacheManager)
		if err != nil {
			return api.Dependencies{}, cleanup, fmt.Errorf("failed to initialize AI service: %w", err)
		}
		categorizer := shopping.NewAICategorizer(ai, sectionCache, sections)
		queueManager := queue.NewManager(&cfg.Queue)
		storeCleanup := cleanup
		cleanup = func() {
			queueManager.Close()
			storeCleanup()
		}
		deps.Categorizer = categorizer
		deps.Queue = queueManager
		opts = append(opts,
			shopping.WithCategorizer(categorizer),
			shopping.WithRunner(queueManager),
		)

		common.LogInfo("AI categorizer enabled",
			zap.String("model", openRouter.GetModel()),
			zap.Int("requests_per_minute", cfg.AI.RequestsPerMinute),
			zap.Int("workers", cfg.Queue.Workers),
		)
	}

	deps.Shopping = shopping.NewService(combiner, store, opts...)
	return deps, cleanup, nil
}

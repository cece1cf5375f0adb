package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig        `mapstructure:"app"`
	Server      ServerConfig     `mapstructure:"server"`
	OpenRouter  OpenRouterConfig `mapstructure:"openrouter"`
	AI          AIConfig         `mapstructure:"ai"`
	Cache       CacheConfig      `mapstructure:"cache"`
	Queue       QueueConfig      `mapstructure:"queue"`
	RateLimit   RateLimitConfig  `mapstructure:"rate_limit"`
	Store       StoreConfig      `mapstructure:"store"`
	Shopping    ShoppingConfig   `mapstructure:"shopping"`
	DedupWindow time.Duration    `mapstructure:"dedup_window"`
	LogLevel    string           `mapstructure:"log_level"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env      string `mapstructure:"env"`
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
	Version  string `mapstructure:"version"`
	Name     string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// OpenRouterConfig OpenRouter 配置
type OpenRouterConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	APIKey    string        `mapstructure:"api_key"`
	BaseURL   string        `mapstructure:"base_url"`
	Model     string        `mapstructure:"model"`
	MaxTokens int           `mapstructure:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// AIConfig AI 分類設定
type AIConfig struct {
	Categorize        bool `mapstructure:"categorize"`          // 關鍵字無法分類時改問 LLM
	EnableCache       bool `mapstructure:"enable_cache"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"` // 對外呼叫速率上限
	Burst             int  `mapstructure:"burst"`
}

// CacheConfig 緩存配置
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// QueueConfig 分類隊列設定
type QueueConfig struct {
	Workers int `mapstructure:"workers"`
	MaxSize int `mapstructure:"max_size"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// StoreConfig 購物清單儲存設定
type StoreConfig struct {
	Backend       string `mapstructure:"backend"` // memory 或 redis
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	RedisKey      string `mapstructure:"redis_key"`
}

// ShoppingConfig 食材解析與合併設定
type ShoppingConfig struct {
	FuzzyThreshold       float64             `mapstructure:"fuzzy_threshold"`
	StructuralMaxDiff    int                 `mapstructure:"structural_max_diff"`
	GroupBySection       bool                `mapstructure:"group_by_section"`
	ExtraDescriptors     []string            `mapstructure:"extra_descriptors"`
	ExtraVarieties       []string            `mapstructure:"extra_varieties"`
	ExtraSingularWords   []string            `mapstructure:"extra_singular_words"`
	ExtraUnits           map[string]string   `mapstructure:"extra_units"`
	ExtraSectionKeywords map[string][]string `mapstructure:"extra_section_keywords"`
}

// 儲存後端
const (
	StoreBackendMemory = "memory"
	StoreBackendRedis  = "redis"
)

// LoadConfig 載入設定，.env 與 config 檔都可省略
func LoadConfig() (*Config, error) {
	// 加載 .env 文件
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	// 設定環境變數前綴
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v)

	// 設定檔名稱和路徑
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// logger 尚未初始化，改用 fmt.Println
	fmt.Println("Loading configuration",
		"openrouter_api_key:", MaskAPIKey(v.GetString("openrouter.api_key")),
		"openrouter_model:", v.GetString("openrouter.model"),
		"store_backend:", v.GetString("store.backend"),
	)

	return decode(v)
}

// decode 解析並驗證設定
func decode(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// bindEnv 綁定環境變量
func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("openrouter.api_key", "OPENROUTER_API_KEY")
	_ = v.BindEnv("openrouter.model", "OPENROUTER_MODEL")
	_ = v.BindEnv("openrouter.max_tokens", "MODEL_MAX_TOKENS")
	_ = v.BindEnv("openrouter.enabled", "OPENROUTER_ENABLED")
	_ = v.BindEnv("ai.categorize", "AI_CATEGORIZE")
	_ = v.BindEnv("cache.enabled", "CACHE_ENABLED")
	_ = v.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	_ = v.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	_ = v.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	_ = v.BindEnv("store.backend", "STORE_BACKEND")
	_ = v.BindEnv("store.redis_addr", "REDIS_ADDR")
	_ = v.BindEnv("store.redis_password", "REDIS_PASSWORD")
	_ = v.BindEnv("store.redis_db", "REDIS_DB")
	_ = v.BindEnv("shopping.fuzzy_threshold", "FUZZY_THRESHOLD")
	_ = v.BindEnv("dedup_window", "DEDUP_WINDOW")
	_ = v.BindEnv("log_level", "LOG_LEVEL")
}

// MaskAPIKey 遮罩 API Key，只顯示前後各 4 個字符，供日誌使用
func MaskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "meal-planner")

	// 伺服器設定
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")

	// OpenRouter 設定
	v.SetDefault("openrouter.enabled", false)
	v.SetDefault("openrouter.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("openrouter.model", "qwen/qwen2.5-72b-instruct:free")
	v.SetDefault("openrouter.max_tokens", 50)
	v.SetDefault("openrouter.timeout", "30s")

	// AI 設定
	v.SetDefault("ai.categorize", false)
	v.SetDefault("ai.enable_cache", true)
	v.SetDefault("ai.requests_per_minute", 20)
	v.SetDefault("ai.burst", 5)

	// 快取設定
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.max_size", 1000)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_interval", "10m")

	// 隊列設定
	v.SetDefault("queue.workers", 4)
	v.SetDefault("queue.max_size", 100)

	// 限流設定
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", "1m")

	// 儲存設定
	v.SetDefault("store.backend", StoreBackendMemory)
	v.SetDefault("store.redis_addr", "localhost:6379")
	v.SetDefault("store.redis_db", 0)
	v.SetDefault("store.redis_key", "meal-planner:shopping-list")

	// 食材合併設定
	v.SetDefault("shopping.fuzzy_threshold", 0.85)
	v.SetDefault("shopping.structural_max_diff", 3)
	v.SetDefault("shopping.group_by_section", true)

	v.SetDefault("dedup_window", "1s")
	v.SetDefault("log_level", "info")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	// 驗證伺服器設定
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	// 驗證快取設定
	if config.Cache.Enabled {
		if config.Cache.MaxSize <= 0 {
			return fmt.Errorf("invalid cache max size")
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
		if config.Cache.CleanupInterval <= 0 {
			return fmt.Errorf("invalid cache cleanup interval")
		}
	}

	// 驗證限流設定
	if config.RateLimit.Enabled {
		if config.RateLimit.Requests <= 0 || config.RateLimit.Window <= 0 {
			return fmt.Errorf("invalid rate limit")
		}
	}

	// 驗證 AI 分類設定
	if config.AI.Categorize {
		if !config.OpenRouter.Enabled || config.OpenRouter.APIKey == "" {
			return fmt.Errorf("ai categorize requires openrouter enabled with api key")
		}
		if config.AI.RequestsPerMinute <= 0 {
			return fmt.Errorf("invalid ai requests per minute")
		}
		if config.Queue.Workers <= 0 {
			return fmt.Errorf("invalid queue workers")
		}
		if config.Queue.MaxSize <= 0 {
			return fmt.Errorf("invalid queue max size")
		}
	}

	// 驗證儲存設定
	switch config.Store.Backend {
	case StoreBackendMemory:
	case StoreBackendRedis:
		if config.Store.RedisAddr == "" {
			return fmt.Errorf("redis store requires redis_addr")
		}
	default:
		return fmt.Errorf("unknown store backend %q", config.Store.Backend)
	}

	// 驗證合併設定
	if config.Shopping.FuzzyThreshold <= 0 || config.Shopping.FuzzyThreshold > 1 {
		return fmt.Errorf("fuzzy threshold must be in (0, 1]")
	}
	if config.Shopping.StructuralMaxDiff < 0 {
		return fmt.Errorf("structural max diff must not be negative")
	}

	return nil
}

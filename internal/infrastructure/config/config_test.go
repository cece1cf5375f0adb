package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func TestDecodeDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := decode(defaultViper())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "https://openrouter.ai/api/v1", cfg.OpenRouter.BaseURL)
	assert.False(t, cfg.OpenRouter.Enabled)
	assert.False(t, cfg.AI.Categorize)
	assert.Equal(t, 20, cfg.AI.RequestsPerMinute)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, 4, cfg.Queue.Workers)
	assert.Equal(t, 100, cfg.Queue.MaxSize)
	assert.Equal(t, StoreBackendMemory, cfg.Store.Backend)
	assert.Equal(t, "meal-planner:shopping-list", cfg.Store.RedisKey)
	assert.Equal(t, 0.85, cfg.Shopping.FuzzyThreshold)
	assert.Equal(t, 3, cfg.Shopping.StructuralMaxDiff)
	assert.True(t, cfg.Shopping.GroupBySection)
	assert.Equal(t, time.Second, cfg.DedupWindow)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestDecodeShoppingExtras(t *testing.T) {
	t.Parallel()

	v := defaultViper()
	v.Set("shopping.extra_descriptors", []string{"smoked"})
	v.Set("shopping.extra_units", map[string]string{"sachet": "sachet"})
	v.Set("shopping.extra_section_keywords", map[string]interface{}{"Household": []string{"paper towel"}})

	cfg, err := decode(v)
	require.NoError(t, err)
	assert.Equal(t, []string{"smoked"}, cfg.Shopping.ExtraDescriptors)
	assert.Equal(t, "sachet", cfg.Shopping.ExtraUnits["sachet"])
	// viper 會將 map key 轉為小寫
	assert.Equal(t, []string{"paper towel"}, cfg.Shopping.ExtraSectionKeywords["household"])
}

func TestDecodeValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		override map[string]interface{}
	}{
		{name: "missing port", override: map[string]interface{}{"server.port": 0}},
		{name: "bad cache size", override: map[string]interface{}{"cache.max_size": 0}},
		{name: "bad rate limit", override: map[string]interface{}{"rate_limit.requests": 0}},
		{name: "categorize without openrouter", override: map[string]interface{}{"ai.categorize": true}},
		{name: "categorize without key", override: map[string]interface{}{"ai.categorize": true, "openrouter.enabled": true}},
		{name: "categorize without workers", override: map[string]interface{}{
			"ai.categorize": true, "openrouter.enabled": true, "openrouter.api_key": "sk-or-123456789", "queue.workers": 0,
		}},
		{name: "unknown backend", override: map[string]interface{}{"store.backend": "postgres"}},
		{name: "redis without addr", override: map[string]interface{}{"store.backend": "redis", "store.redis_addr": ""}},
		{name: "threshold too high", override: map[string]interface{}{"shopping.fuzzy_threshold": 1.5}},
		{name: "threshold zero", override: map[string]interface{}{"shopping.fuzzy_threshold": 0}},
		{name: "negative max diff", override: map[string]interface{}{"shopping.structural_max_diff": -1}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			v := defaultViper()
			for k, val := range tc.override {
				v.Set(k, val)
			}
			_, err := decode(v)
			assert.Error(t, err)
		})
	}
}

func TestDecodeDisabledSectionsSkipValidation(t *testing.T) {
	t.Parallel()

	v := defaultViper()
	v.Set("cache.enabled", false)
	v.Set("cache.max_size", 0)
	v.Set("rate_limit.enabled", false)
	v.Set("rate_limit.requests", 0)

	_, err := decode(v)
	assert.NoError(t, err)
}

func TestDecodeCategorizeEnabled(t *testing.T) {
	t.Parallel()

	v := defaultViper()
	v.Set("ai.categorize", true)
	v.Set("openrouter.enabled", true)
	v.Set("openrouter.api_key", "sk-or-123456789")

	cfg, err := decode(v)
	require.NoError(t, err)
	assert.True(t, cfg.AI.Categorize)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("STORE_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("FUZZY_THRESHOLD", "0.9")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, StoreBackendRedis, cfg.Store.Backend)
	assert.Equal(t, "redis:6379", cfg.Store.RedisAddr)
	assert.Equal(t, 0.9, cfg.Shopping.FuzzyThreshold)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestMaskAPIKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "****", MaskAPIKey(""))
	assert.Equal(t, "****", MaskAPIKey("short"))
	assert.Equal(t, "sk-o...cdef", MaskAPIKey("sk-or-v1-0123456789abcdef"))
}

package handlers

import (
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestID 取得請求 ID，沒有時產生一個並寫回響應標頭
func RequestID(c *gin.Context) string {
	if id := requestid.Get(c); id != "" {
		return id
	}
	if id := c.GetHeader("X-Request-ID"); id != "" {
		return id
	}
	id := common.GenerateUUID()
	c.Header("X-Request-ID", id)
	return id
}

// Config 從 context 取得設定
func Config(c *gin.Context) *config.Config {
	v, ok := c.Get("config")
	if !ok {
		return nil
	}
	cfg, _ := v.(*config.Config)
	return cfg
}

// RespondError 依錯誤類型回應，debug 模式附上詳細信息
func RespondError(c *gin.Context, err error) {
	debug := false
	if cfg := Config(c); cfg != nil {
		debug = cfg.App.Debug
	}

	status, resp := common.ToErrorResponse(err, debug)
	fields := []zap.Field{
		zap.Error(err),
		zap.Int("status", status),
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", RequestID(c)),
	}
	if status >= 500 {
		common.LogError("Request failed", fields...)
	} else {
		common.LogWarn("Request rejected", fields...)
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, resp)
}

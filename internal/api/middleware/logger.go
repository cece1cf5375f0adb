package middleware

import (
	"net/http"
	"time"

	"meal-planner/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// logFieldsKey 處理器附加的存取日誌欄位
const logFieldsKey = "access_log_fields"

// quietRoutes 成功時不寫存取日誌的探活路由
var quietRoutes = map[string]bool{
	"/health": true,
	"/ready":  true,
	"/live":   true,
}

// AddLogFields 讓處理器在本次請求的存取日誌中加入欄位，例如合併了幾行食材
func AddLogFields(c *gin.Context, fields ...zap.Field) {
	var list []zap.Field
	if v, ok := c.Get(logFieldsKey); ok {
		list, _ = v.([]zap.Field)
	}
	c.Set(logFieldsKey, append(list, fields...))
}

// Logger 每個請求一行存取日誌，層級依狀態碼決定
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		if quietRoutes[route] && status < http.StatusBadRequest {
			return
		}

		fields := accessFields(c, route, time.Since(start))
		switch accessLevel(status) {
		case zapcore.ErrorLevel:
			common.LogError("請求失敗", fields...)
		case zapcore.WarnLevel:
			common.LogWarn("請求被拒絕", fields...)
		default:
			common.LogInfo("請求完成", fields...)
		}
	}
}

// accessFields 組合存取日誌欄位；未對應路由時 route 記為 unmatched
func accessFields(c *gin.Context, route string, latency time.Duration) []zap.Field {
	if route == "" {
		route = "unmatched"
	}

	fields := []zap.Field{
		zap.String("request_id", requestid.Get(c)),
		zap.String("method", c.Request.Method),
		zap.String("route", route),
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", c.Writer.Status()),
		zap.Duration("latency", latency),
		zap.String("ip", c.ClientIP()),
	}
	if c.Request.ContentLength > 0 {
		fields = append(fields, zap.Int64("bytes_in", c.Request.ContentLength))
	}
	if size := c.Writer.Size(); size > 0 {
		fields = append(fields, zap.Int("bytes_out", size))
	}
	if v, ok := c.Get(logFieldsKey); ok {
		if extra, ok := v.([]zap.Field); ok {
			fields = append(fields, extra...)
		}
	}
	if len(c.Errors) > 0 {
		fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
	}
	return fields
}

// accessLevel 5xx 為 Error，其餘 4xx（含 429 限流）為 Warn
func accessLevel(status int) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status >= http.StatusBadRequest:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}

// Recovery 攔截處理器 panic，回傳統一的 500 錯誤格式
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				common.LogError("Panic recovered",
					zap.Any("error", err),
					zap.String("request_id", requestid.Get(c)),
					zap.String("route", c.FullPath()),
					zap.String("method", c.Request.Method),
					zap.Stack("stack"),
				)

				c.AbortWithStatusJSON(http.StatusInternalServerError, common.ErrorResponse{
					Code:    common.ErrCodeInternalError,
					Message: "Internal server error",
				})
			}
		}()

		c.Next()
	}
}

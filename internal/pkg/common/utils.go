package common

import (
	"time"

	"github.com/google/uuid"
)

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// Today 以 YYYY-MM-DD 格式回傳日期
func Today(now time.Time) string {
	return now.Format("2006-01-02")
}

package logger

import (
	"os"

	"go.uber.org/zap"
)

// New 创建全局 zap Logger
// APP_ENV=production 时输出 JSON，否则输出带颜色的开发格式。
func New() (*zap.Logger, error) {
	if os.Getenv("APP_ENV") == "production" {
		return zap.NewProduction()
	}
	cfg := zap.NewDevelopmentConfig()
	return cfg.Build()
}

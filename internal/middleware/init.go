package middleware

import (
	"Lavka/pkg/logger"
)

// Init 初始化所有中间件
func Init() error {
	// 身份与白名单中间件无状态，这里保留入口以便后续扩展
	logger.Logger.Info("All middlewares initialized successfully")
	return nil
}

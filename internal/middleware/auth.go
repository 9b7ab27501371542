package middleware

import (
	"context"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"

	"Lavka/config"
	"Lavka/pkg/errors"
	"Lavka/pkg/response"
)

const (
	// IdentityKey 请求上下文中存放 chat id 的键
	IdentityKey = "chat_id"

	chatIDHeader = "X-Chat-ID"
)

// IdentityMiddleware 从请求中提取 Telegram chat id 并写入上下文。
// 前端网关在转发请求时负责填充 X-Chat-ID（query 参数作为兜底）。
func IdentityMiddleware() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		raw := string(c.GetHeader(chatIDHeader))
		if raw == "" {
			raw = c.Query("chat_id")
		}

		if raw != "" {
			if chatID, err := strconv.ParseInt(raw, 10, 64); err == nil {
				c.Set(IdentityKey, chatID)
			}
		}

		c.Next(ctx)
	}
}

// RequireIdentity 要求请求必须携带有效的 chat id
func RequireIdentity() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		if _, ok := GetChatID(ctx, c); !ok {
			response.Error(ctx, c, &errors.Unauthorized)
			c.Abort()
			return
		}
		c.Next(ctx)
	}
}

// AdminOnlyMiddleware 操作员白名单校验，chat id 不在名单内直接拒绝
func AdminOnlyMiddleware() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		chatID, ok := GetChatID(ctx, c)
		if !ok {
			response.Error(ctx, c, &errors.Unauthorized)
			c.Abort()
			return
		}

		for _, id := range config.Cfg.AdminIDs() {
			if id == chatID {
				c.Next(ctx)
				return
			}
		}

		response.Error(ctx, c, &errors.Unauthorized)
		c.Abort()
	}
}

// GetChatID 从请求上下文中获取 chat id
func GetChatID(ctx context.Context, c *app.RequestContext) (int64, bool) {
	v, exists := c.Get(IdentityKey)
	if !exists {
		return 0, false
	}

	id, ok := v.(int64)
	return id, ok
}

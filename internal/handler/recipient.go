package handler

import (
	"Lavka/internal/middleware"
	"Lavka/internal/model"
	"Lavka/internal/service"
	"Lavka/pkg/errors"
	"Lavka/pkg/response"
	"context"

	"github.com/cloudwego/hertz/pkg/app"
)

// RegisterRecipient 顾客进店注册，幂等
// POST /v1/recipients/register
func RegisterRecipient(ctx context.Context, c *app.RequestContext) {
	chatID, ok := middleware.GetChatID(ctx, c)
	if !ok {
		response.Error(ctx, c, &errors.Unauthorized)
		return
	}

	var req model.RegisterRecipientRequest
	if err := c.Bind(&req); err != nil {
		response.Error(ctx, c, &errors.InvalidRequest)
		return
	}

	if err := service.Recipient().Register(ctx, chatID, req.Username, req.FirstName); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, nil)
}

// GetRecipientStats 收件人统计
// GET /v1/recipients/stats
func GetRecipientStats(ctx context.Context, c *app.RequestContext) {
	stats, err := service.Recipient().Stats(ctx)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, stats)
}

// UnblockRecipient 手动恢复收件人可达状态
// POST /v1/recipients/:chat_id/unblock
func UnblockRecipient(ctx context.Context, c *app.RequestContext) {
	chatID, ok := parseIDParam(c, "chat_id")
	if !ok {
		response.Error(ctx, c, &errors.InvalidRequest)
		return
	}

	if err := service.Recipient().Unblock(ctx, chatID); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, nil)
}

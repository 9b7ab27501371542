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

// SubmitSupportRequest 顾客提交客服留言，由后台异步转发给操作员
// POST /v1/support
func SubmitSupportRequest(ctx context.Context, c *app.RequestContext) {
	chatID, ok := middleware.GetChatID(ctx, c)
	if !ok {
		response.Error(ctx, c, &errors.Unauthorized)
		return
	}

	var req model.SubmitSupportRequest
	if err := c.Bind(&req); err != nil {
		response.Error(ctx, c, &errors.InvalidRequest)
		return
	}

	request, err := service.SupportRequests().Submit(ctx, chatID, req.Text)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, request)
}

// CloseSupportRequest 操作员关闭客服留言
// POST /v1/support/:request_id/close
func CloseSupportRequest(ctx context.Context, c *app.RequestContext) {
	id, ok := parseIDParam(c, "request_id")
	if !ok {
		response.Error(ctx, c, &errors.InvalidRequest)
		return
	}

	if err := service.SupportRequests().Close(ctx, id); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, nil)
}

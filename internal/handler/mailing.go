package handler

import (
	"Lavka/internal/middleware"
	"Lavka/internal/model"
	"Lavka/internal/service"
	"Lavka/pkg/errors"
	"Lavka/pkg/response"
	"context"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"
)

func parseIDParam(c *app.RequestContext, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

// CreateMailing 创建定时群发
// POST /v1/mailings
func CreateMailing(ctx context.Context, c *app.RequestContext) {
	var req model.CreateMailingRequest
	if err := c.Bind(&req); err != nil {
		response.Error(ctx, c, &errors.InvalidRequest)
		return
	}

	operatorID, _ := middleware.GetChatID(ctx, c)

	mailing, err := service.Mailing().Create(ctx, req.Content, req.ScheduledAt, operatorID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, mailing)
}

// ListMailings 群发列表
// GET /v1/mailings
func ListMailings(ctx context.Context, c *app.RequestContext) {
	var query model.MailingListQuery
	if err := c.Bind(&query); err != nil {
		response.Error(ctx, c, &errors.InvalidRequest)
		return
	}

	mailings, err := service.Mailing().List(ctx, query.Limit, query.Offset)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, mailings)
}

// GetMailing 查询单条群发
// GET /v1/mailings/:mailing_id
func GetMailing(ctx context.Context, c *app.RequestContext) {
	id, ok := parseIDParam(c, "mailing_id")
	if !ok {
		response.Error(ctx, c, &errors.InvalidRequest)
		return
	}

	mailing, err := service.Mailing().Get(ctx, id)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, mailing)
}

// CancelMailing 取消尚未开始的群发
// POST /v1/mailings/:mailing_id/cancel
func CancelMailing(ctx context.Context, c *app.RequestContext) {
	id, ok := parseIDParam(c, "mailing_id")
	if !ok {
		response.Error(ctx, c, &errors.InvalidRequest)
		return
	}

	if err := service.Mailing().Cancel(ctx, id); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, nil)
}

// GetMailingReport 查询群发投递报告
// GET /v1/mailings/:mailing_id/report
func GetMailingReport(ctx context.Context, c *app.RequestContext) {
	id, ok := parseIDParam(c, "mailing_id")
	if !ok {
		response.Error(ctx, c, &errors.InvalidRequest)
		return
	}

	report, err := service.Mailing().Report(ctx, id)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, report)
}

package handler

import (
	"Lavka/internal/middleware"
	"Lavka/internal/model"
	"Lavka/internal/service"
	"Lavka/pkg/errors"
	"Lavka/pkg/response"
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/shopspring/decimal"
)

// CreatePromoCode 创建限时促销码
// POST /v1/promo-codes
func CreatePromoCode(ctx context.Context, c *app.RequestContext) {
	var req model.CreatePromoCodeRequest
	if err := c.Bind(&req); err != nil {
		response.Error(ctx, c, &errors.InvalidRequest)
		return
	}

	discount, err := decimal.NewFromString(req.DiscountPercent)
	if err != nil {
		response.Error(ctx, c, &errors.InvalidDiscount)
		return
	}

	operatorID, _ := middleware.GetChatID(ctx, c)

	promo, err := service.Promo().Create(ctx, req.Code, req.ProductID, discount, req.StartsAt, req.EndsAt, operatorID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, promo)
}

// ListPromoCodes 促销码列表
// GET /v1/promo-codes
func ListPromoCodes(ctx context.Context, c *app.RequestContext) {
	var query model.PageQuery
	if err := c.Bind(&query); err != nil {
		response.Error(ctx, c, &errors.InvalidRequest)
		return
	}

	promos, err := service.Promo().List(ctx, query.Limit, query.Offset)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, promos)
}

// SetPromoCodeActive 启用或停用促销码
// PATCH /v1/promo-codes/:promo_id/active
func SetPromoCodeActive(ctx context.Context, c *app.RequestContext) {
	id, ok := parseIDParam(c, "promo_id")
	if !ok {
		response.Error(ctx, c, &errors.InvalidRequest)
		return
	}

	var req model.SetPromoActiveRequest
	if err := c.Bind(&req); err != nil {
		response.Error(ctx, c, &errors.InvalidRequest)
		return
	}

	if err := service.Promo().SetActive(ctx, id, req.Active); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, nil)
}

package handler

import (
	"Lavka/internal/middleware"
	"Lavka/internal/model"
	"Lavka/internal/service"
	"Lavka/pkg/errors"
	"Lavka/pkg/response"
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
)

// GetCart 查看购物车，价格逐行现算
// GET /v1/cart
func GetCart(ctx context.Context, c *app.RequestContext) {
	chatID, ok := middleware.GetChatID(ctx, c)
	if !ok {
		response.Error(ctx, c, &errors.Unauthorized)
		return
	}

	view, err := service.Cart().View(ctx, chatID, time.Now())
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, view)
}

// AddCartLine 加购商品
// POST /v1/cart/lines
func AddCartLine(ctx context.Context, c *app.RequestContext) {
	chatID, ok := middleware.GetChatID(ctx, c)
	if !ok {
		response.Error(ctx, c, &errors.Unauthorized)
		return
	}

	var req model.AddCartLineRequest
	if err := c.Bind(&req); err != nil {
		response.Error(ctx, c, &errors.InvalidRequest)
		return
	}

	if err := service.Cart().AddProduct(ctx, chatID, req.ProductID, req.Quantity); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, nil)
}

// SetCartQuantity 修改购物车行数量，数量归零即删除
// PUT /v1/cart/lines/:line_id/quantity
func SetCartQuantity(ctx context.Context, c *app.RequestContext) {
	lineID, ok := parseIDParam(c, "line_id")
	if !ok {
		response.Error(ctx, c, &errors.InvalidRequest)
		return
	}

	var req model.SetCartQuantityRequest
	if err := c.Bind(&req); err != nil {
		response.Error(ctx, c, &errors.InvalidRequest)
		return
	}

	if err := service.Cart().SetQuantity(ctx, lineID, req.Quantity); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, nil)
}

// RemoveCartLine 删除购物车行
// DELETE /v1/cart/lines/:line_id
func RemoveCartLine(ctx context.Context, c *app.RequestContext) {
	lineID, ok := parseIDParam(c, "line_id")
	if !ok {
		response.Error(ctx, c, &errors.InvalidRequest)
		return
	}

	if err := service.Cart().RemoveLine(ctx, lineID); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, nil)
}

// ClearCart 清空购物车
// DELETE /v1/cart
func ClearCart(ctx context.Context, c *app.RequestContext) {
	chatID, ok := middleware.GetChatID(ctx, c)
	if !ok {
		response.Error(ctx, c, &errors.Unauthorized)
		return
	}

	if err := service.Cart().Clear(ctx, chatID); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, nil)
}

// ApplyCartPromoCode 在购物车行上应用促销码
// POST /v1/cart/lines/:line_id/promo
func ApplyCartPromoCode(ctx context.Context, c *app.RequestContext) {
	lineID, ok := parseIDParam(c, "line_id")
	if !ok {
		response.Error(ctx, c, &errors.InvalidRequest)
		return
	}

	var req model.ApplyPromoCodeRequest
	if err := c.Bind(&req); err != nil {
		response.Error(ctx, c, &errors.InvalidRequest)
		return
	}

	if err := service.Cart().ApplyCode(ctx, lineID, req.Code, time.Now()); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, nil)
}

// RemoveCartPromoCode 移除购物车行上的促销码
// DELETE /v1/cart/lines/:line_id/promo
func RemoveCartPromoCode(ctx context.Context, c *app.RequestContext) {
	lineID, ok := parseIDParam(c, "line_id")
	if !ok {
		response.Error(ctx, c, &errors.InvalidRequest)
		return
	}

	if err := service.Cart().RemoveCode(ctx, lineID); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, nil)
}

package handler

import (
	"Lavka/internal/model"
	"Lavka/internal/service"
	"Lavka/pkg/errors"
	"Lavka/pkg/response"
	"context"
	"strconv"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/shopspring/decimal"
)

// ListCategories 类目列表
// GET /v1/catalog/categories
func ListCategories(ctx context.Context, c *app.RequestContext) {
	categories, err := service.Catalog().ListCategories(ctx)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, categories)
}

// CreateCategory 创建类目
// POST /v1/catalog/categories
func CreateCategory(ctx context.Context, c *app.RequestContext) {
	var req model.CreateCategoryRequest
	if err := c.Bind(&req); err != nil {
		response.Error(ctx, c, &errors.InvalidRequest)
		return
	}

	category, err := service.Catalog().CreateCategory(ctx, req.Name, req.Position)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, category)
}

// DeleteCategory 删除类目
// DELETE /v1/catalog/categories/:category_id
func DeleteCategory(ctx context.Context, c *app.RequestContext) {
	id, ok := parseIDParam(c, "category_id")
	if !ok {
		response.Error(ctx, c, &errors.InvalidRequest)
		return
	}

	if err := service.Catalog().DeleteCategory(ctx, id); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, nil)
}

// ListProducts 商品列表，可按类目过滤
// GET /v1/catalog/products
func ListProducts(ctx context.Context, c *app.RequestContext) {
	categoryID, _ := strconv.ParseInt(c.Query("category_id"), 10, 64)

	products, err := service.Catalog().ListProducts(ctx, categoryID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, products)
}

// GetProduct 商品详情，带此刻的有效价格
// GET /v1/catalog/products/:product_id
func GetProduct(ctx context.Context, c *app.RequestContext) {
	id, ok := parseIDParam(c, "product_id")
	if !ok {
		response.Error(ctx, c, &errors.InvalidRequest)
		return
	}

	priced, err := service.Catalog().GetProduct(ctx, id, time.Now())
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, priced)
}

// CreateProduct 创建商品
// POST /v1/catalog/products
func CreateProduct(ctx context.Context, c *app.RequestContext) {
	var req model.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		response.Error(ctx, c, &errors.InvalidRequest)
		return
	}

	basePrice, err := decimal.NewFromString(req.BasePrice)
	if err != nil || basePrice.IsNegative() {
		response.Error(ctx, c, &errors.InvalidRequest)
		return
	}

	product := &model.Product{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		BasePrice:   basePrice,
		PhotoID:     req.PhotoID,
		Available:   req.Available,
	}
	if err := service.Catalog().CreateProduct(ctx, product); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, product)
}

// UpdateProduct 更新商品
// PUT /v1/catalog/products/:product_id
func UpdateProduct(ctx context.Context, c *app.RequestContext) {
	id, ok := parseIDParam(c, "product_id")
	if !ok {
		response.Error(ctx, c, &errors.InvalidRequest)
		return
	}

	var req model.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		response.Error(ctx, c, &errors.InvalidRequest)
		return
	}

	basePrice, err := decimal.NewFromString(req.BasePrice)
	if err != nil || basePrice.IsNegative() {
		response.Error(ctx, c, &errors.InvalidRequest)
		return
	}

	product := &model.Product{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		BasePrice:   basePrice,
		PhotoID:     req.PhotoID,
		Available:   req.Available,
	}
	product.ID = id
	if err := service.Catalog().UpdateProduct(ctx, product); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, product)
}

// DeleteProduct 删除商品
// DELETE /v1/catalog/products/:product_id
func DeleteProduct(ctx context.Context, c *app.RequestContext) {
	id, ok := parseIDParam(c, "product_id")
	if !ok {
		response.Error(ctx, c, &errors.InvalidRequest)
		return
	}

	if err := service.Catalog().DeleteProduct(ctx, id); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, nil)
}

// ListPromotions 活动展示列表
// GET /v1/promotions
func ListPromotions(ctx context.Context, c *app.RequestContext) {
	promotions, err := service.Catalog().ListPromotions(ctx)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, promotions)
}

// CreatePromotion 创建活动展示
// POST /v1/promotions
func CreatePromotion(ctx context.Context, c *app.RequestContext) {
	var req model.CreatePromotionRequest
	if err := c.Bind(&req); err != nil {
		response.Error(ctx, c, &errors.InvalidRequest)
		return
	}

	promotion := &model.Promotion{
		Title:    req.Title,
		Body:     req.Body,
		PhotoID:  req.PhotoID,
		Position: req.Position,
	}
	if err := service.Catalog().CreatePromotion(ctx, promotion); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, promotion)
}

// DeletePromotion 删除活动展示
// DELETE /v1/promotions/:promotion_id
func DeletePromotion(ctx context.Context, c *app.RequestContext) {
	id, ok := parseIDParam(c, "promotion_id")
	if !ok {
		response.Error(ctx, c, &errors.InvalidRequest)
		return
	}

	if err := service.Catalog().DeletePromotion(ctx, id); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, nil)
}

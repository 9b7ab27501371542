package repository

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"

	"Lavka/internal/model"
	"Lavka/storage/database"
)

// DailySales 按天聚合的加购量
type DailySales struct {
	Day   string `json:"day"`
	Total int64  `json:"total"`
}

// ProductSales 按商品聚合的加购量
type ProductSales struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Total       int64  `json:"total"`
}

// UserActivity 按用户聚合的加购量
type UserActivity struct {
	UserID int64 `json:"user_id"`
	Orders int64 `json:"orders"`
}

// AnalyticsRepo 购物行为聚合查询，全部基于 cart_lines
type AnalyticsRepo struct {
	db *gorm.DB
}

var (
	analyticsRepo     *AnalyticsRepo
	analyticsRepoOnce sync.Once
)

func Analytics() *AnalyticsRepo {
	analyticsRepoOnce.Do(func() {
		analyticsRepo = &AnalyticsRepo{db: database.DB()}
	})
	return analyticsRepo
}

func NewAnalyticsRepo(db *gorm.DB) *AnalyticsRepo {
	return &AnalyticsRepo{db: db}
}

// SalesByDay 区间 [from, to) 内每天的加购数
func (r *AnalyticsRepo) SalesByDay(ctx context.Context, from, to time.Time) ([]DailySales, error) {
	var rows []DailySales
	err := r.db.WithContext(ctx).
		Model(&model.CartLine{}).
		Select("to_char(created_at, 'YYYY-MM-DD') AS day, COUNT(*) AS total").
		Where("created_at >= ? AND created_at < ?", from, to).
		Group("to_char(created_at, 'YYYY-MM-DD')").
		Order("day").
		Scan(&rows).Error
	return rows, err
}

// TopProducts 区间内加购最多的商品
func (r *AnalyticsRepo) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]ProductSales, error) {
	var rows []ProductSales
	err := r.db.WithContext(ctx).
		Model(&model.CartLine{}).
		Select("cart_lines.product_id, products.name AS product_name, COUNT(*) AS total").
		Joins("JOIN products ON products.id = cart_lines.product_id").
		Where("cart_lines.created_at >= ? AND cart_lines.created_at < ?", from, to).
		Group("cart_lines.product_id, products.name").
		Order("total DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// UserActivity 区间内加购最活跃的用户
func (r *AnalyticsRepo) UserActivity(ctx context.Context, from, to time.Time, limit int) ([]UserActivity, error) {
	var rows []UserActivity
	err := r.db.WithContext(ctx).
		Model(&model.CartLine{}).
		Select("user_id, COUNT(*) AS orders").
		Where("created_at >= ? AND created_at < ?", from, to).
		Group("user_id").
		Order("orders DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

package cache

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"Lavka/internal/model"
	"Lavka/pkg/logger"
)

// 商品读是最热的路径（每次购物车定价都要取原价），走带空值保护的缓存
var productCache = NewProtectedCache("product", 10*time.Minute)

// GetCachedProduct 读商品缓存。第二个返回值表示是否命中；
// 命中但值为 nil 表示缓存的是"不存在"。
func GetCachedProduct(ctx context.Context, id int64) (*model.Product, bool, error) {
	var p model.Product
	hit, err := productCache.Get(ctx, strconv.FormatInt(id, 10), &p)
	if err != nil || !hit {
		return nil, false, err
	}
	if p.ID == 0 {
		// 空值命中
		return nil, true, nil
	}
	return &p, true, nil
}

// CacheProduct 写商品缓存，p 为 nil 时缓存"不存在"以挡穿透
func CacheProduct(ctx context.Context, id int64, p *model.Product) {
	var value interface{}
	if p != nil {
		value = p
	}
	if err := productCache.Set(ctx, strconv.FormatInt(id, 10), value); err != nil {
		logger.Logger.Warn("Failed to cache product",
			zap.Int64("product_id", id),
			zap.Error(err),
		)
	}
}

// InvalidateProduct 商品变更后清缓存
func InvalidateProduct(ctx context.Context, id int64) {
	if err := productCache.Delete(ctx, strconv.FormatInt(id, 10)); err != nil {
		logger.Logger.Warn("Failed to invalidate product cache",
			zap.Int64("product_id", id),
			zap.Error(err),
		)
	}
}

package service

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"Lavka/internal/model"
	"Lavka/internal/pricing"
	"Lavka/internal/repository"
	"Lavka/pkg/errors"
	"Lavka/pkg/logger"
)

// PromoService 促销码管理与价格查询
type PromoService struct{}

var (
	promoService *PromoService
	promoOnce    sync.Once
)

func Promo() *PromoService {
	promoOnce.Do(func() {
		promoService = &PromoService{}
	})
	return promoService
}

// Create 创建促销码。折扣率开区间 (0, 100)，窗口左闭右开，
// 同商品活跃码窗口重叠在这里被拒绝。
func (s *PromoService) Create(ctx context.Context, code string, productID int64, discountPercent decimal.Decimal, startsAt, endsAt time.Time, createdBy int64) (*model.PromoCode, error) {
	if !discountPercent.IsPositive() || discountPercent.GreaterThanOrEqual(decimal.NewFromInt(100)) {
		return nil, errors.InvalidDiscount
	}
	if !endsAt.After(startsAt) {
		return nil, errors.InvalidWindow
	}

	if _, err := repository.Catalog().GetProduct(ctx, productID); err != nil {
		return nil, err
	}

	promo := &model.PromoCode{
		Code:            code,
		ProductID:       productID,
		DiscountPercent: discountPercent,
		StartsAt:        startsAt,
		EndsAt:          endsAt,
		Active:          true,
		CreatedBy:       createdBy,
	}
	if err := repository.Promos().Create(ctx, promo); err != nil {
		return nil, err
	}

	logger.Logger.Info("Promo code created",
		zap.String("code", promo.Code),
		zap.Int64("product_id", productID),
		zap.String("discount_percent", discountPercent.String()),
		zap.Time("starts_at", startsAt),
		zap.Time("ends_at", endsAt),
	)
	return promo, nil
}

func (s *PromoService) List(ctx context.Context, limit, offset int) ([]*model.PromoCode, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return repository.Promos().List(ctx, limit, offset)
}

// SetActive 启停促销码，停用立即影响所有未结算的购物车
func (s *PromoService) SetActive(ctx context.Context, id int64, active bool) error {
	if err := repository.Promos().SetActive(ctx, id, active); err != nil {
		return err
	}

	logger.Logger.Info("Promo code toggled",
		zap.Int64("promo_id", id),
		zap.Bool("active", active),
	)
	return nil
}

// ResolvePrice 解析商品当前有效价格
func (s *PromoService) ResolvePrice(ctx context.Context, productID int64, at time.Time) (pricing.Quote, error) {
	return pricing.Default().ResolvePrice(ctx, productID, at)
}

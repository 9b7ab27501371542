package pricing

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"Lavka/config"
	"Lavka/internal/model"
	"Lavka/internal/repository"
	"Lavka/pkg/errors"
	"Lavka/pkg/logger"
)

// PromoSource 促销码读取接口，引擎把促销表当作只读输入
type PromoSource interface {
	ListEligible(ctx context.Context, productID int64, at time.Time) ([]*model.PromoCode, error)
	GetByID(ctx context.Context, id int64) (*model.PromoCode, error)
}

// ProductSource 商品读取接口
type ProductSource interface {
	GetProduct(ctx context.Context, id int64) (*model.Product, error)
}

// Quote 一次价格解析的结果。Applied 为 nil 表示无促销生效。
type Quote struct {
	Base      decimal.Decimal
	Applied   *model.PromoCode
	Effective decimal.Decimal
}

// Engine 价格解析引擎。价格从不落库，每次读取都重新解析，
// 所以促销码被操作员停用后立即停止影响所有未结算的购物车。
type Engine struct {
	promos   PromoSource
	products ProductSource
	exponent int32
}

var (
	engine     *Engine
	engineOnce sync.Once
)

// Default 返回基于默认仓储的引擎单例
func Default() *Engine {
	engineOnce.Do(func() {
		engine = New(repository.Promos(), repository.Catalog(), config.Cfg.CurrencyExponent)
	})
	return engine
}

func New(promos PromoSource, products ProductSource, exponent int32) *Engine {
	return &Engine{promos: promos, products: products, exponent: exponent}
}

// ResolvePrice 解析商品在给定时刻的有效价格。
// 合格促销码为零时返回原价；恰好一个时按折扣计算；
// 多个（创建时校验应当拦截的脏数据）时取 starts_at 最晚的一个并记录异常，
// 折扣从不叠加。
func (e *Engine) ResolvePrice(ctx context.Context, productID int64, at time.Time) (Quote, error) {
	product, err := e.products.GetProduct(ctx, productID)
	if err != nil {
		return Quote{}, err
	}

	eligible, err := e.promos.ListEligible(ctx, productID, at)
	if err != nil {
		return Quote{}, err
	}

	quote := Quote{Base: product.BasePrice, Effective: product.BasePrice}
	if len(eligible) == 0 {
		return quote, nil
	}

	chosen := pickLatestStart(eligible)
	if len(eligible) > 1 {
		logger.Logger.Warn("Multiple eligible promo codes for one product, picking latest start",
			zap.Int64("product_id", productID),
			zap.Int("eligible_count", len(eligible)),
			zap.String("chosen_code", chosen.Code),
		)
	}

	quote.Applied = chosen
	quote.Effective = e.discounted(product.BasePrice, chosen.DiscountPercent)
	return quote, nil
}

// ResolveLine 解析一条购物车行的单价。
// 行上只保存促销码引用，每次读取重新校验：
// 引用的码此刻失效、停用或换绑了商品，就按原价计，不报错。
func (e *Engine) ResolveLine(ctx context.Context, line *model.CartLine, at time.Time) (Quote, error) {
	product, err := e.products.GetProduct(ctx, line.ProductID)
	if err != nil {
		return Quote{}, err
	}

	quote := Quote{Base: product.BasePrice, Effective: product.BasePrice}
	if line.PromoCodeID == nil {
		return quote, nil
	}

	promo, err := e.promos.GetByID(ctx, *line.PromoCodeID)
	if err == errors.CodeNotFound {
		// 引用的码已被删除，降级为原价
		return quote, nil
	}
	if err != nil {
		return Quote{}, err
	}

	if e.Validate(promo, line.ProductID, at) != nil {
		return quote, nil
	}

	quote.Applied = promo
	quote.Effective = e.discounted(product.BasePrice, promo.DiscountPercent)
	return quote, nil
}

// Validate 校验促销码能否用于给定商品，失败返回具体原因
func (e *Engine) Validate(promo *model.PromoCode, productID int64, at time.Time) error {
	if !promo.Active {
		return errors.CodeDisabled
	}
	if promo.ProductID != productID {
		return errors.ProductMismatch
	}
	if at.Before(promo.StartsAt) || !at.Before(promo.EndsAt) {
		return errors.CodeExpired
	}
	return nil
}

// discounted 计算 base × (1 − d/100) 并按最小货币单位四舍五入（round half up）
func (e *Engine) discounted(base, discountPercent decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(1).Sub(discountPercent.Div(decimal.NewFromInt(100)))
	return base.Mul(factor).Round(e.exponent)
}

// pickLatestStart 确定性裁决：取 starts_at 最晚的，打平时取 id 最大的
func pickLatestStart(promos []*model.PromoCode) *model.PromoCode {
	chosen := promos[0]
	for _, p := range promos[1:] {
		if p.StartsAt.After(chosen.StartsAt) {
			chosen = p
			continue
		}
		if p.StartsAt.Equal(chosen.StartsAt) && p.ID > chosen.ID {
			chosen = p
		}
	}
	return chosen
}

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
	"Lavka/pkg/metrics"
)

// CartService 购物车编排。行上只存促销码引用，价格每次读取现算。
type CartService struct{}

var (
	cartService *CartService
	cartOnce    sync.Once
)

func Cart() *CartService {
	cartOnce.Do(func() {
		cartService = &CartService{}
	})
	return cartService
}

// PricedLine 带解析价格的购物车行
type PricedLine struct {
	Line      *model.CartLine `json:"line"`
	Product   *model.Product  `json:"product"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	PromoCode string          `json:"promo_code,omitempty"`
}

// CartView 整车视图
type CartView struct {
	Lines []PricedLine    `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

func (s *CartService) AddProduct(ctx context.Context, userID, productID int64, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}
	if _, err := repository.Catalog().GetProduct(ctx, productID); err != nil {
		return err
	}
	return repository.Carts().AddLine(ctx, userID, productID, quantity)
}

func (s *CartService) SetQuantity(ctx context.Context, lineID int64, quantity int) error {
	return repository.Carts().SetQuantity(ctx, lineID, quantity)
}

func (s *CartService) RemoveLine(ctx context.Context, lineID int64) error {
	return repository.Carts().DeleteLine(ctx, lineID)
}

func (s *CartService) Clear(ctx context.Context, userID int64) error {
	return repository.Carts().Clear(ctx, userID)
}

// ApplyCode 把促销码应用到购物车行。
// 重复应用同一个码是幂等的成功；应用另一个码直接替换。
// 行上只落码的引用，折扣金额永远不落库。
func (s *CartService) ApplyCode(ctx context.Context, lineID int64, code string, at time.Time) error {
	line, err := repository.Carts().GetLine(ctx, lineID)
	if err != nil {
		return err
	}

	promo, err := repository.Promos().GetByCode(ctx, code)
	if err != nil {
		metrics.RecordPromoRejected("not_found")
		return err
	}

	if err := pricing.Default().Validate(promo, line.ProductID, at); err != nil {
		if def, ok := err.(errors.Definition); ok {
			metrics.RecordPromoRejected(def.Code)
		}
		return err
	}

	// 幂等：同码重复应用不产生任何写入
	if line.PromoCodeID != nil && *line.PromoCodeID == promo.ID {
		return nil
	}

	if err := repository.Carts().SetPromoCode(ctx, lineID, &promo.ID); err != nil {
		return err
	}

	metrics.RecordPromoApplied(promo.Code)
	logger.Logger.Info("Promo code applied to cart line",
		zap.Int64("line_id", lineID),
		zap.String("code", promo.Code),
	)
	return nil
}

// RemoveCode 清除购物车行上的促销码引用
func (s *CartService) RemoveCode(ctx context.Context, lineID int64) error {
	return repository.Carts().SetPromoCode(ctx, lineID, nil)
}

// View 读取整车并解析价格。促销表是只读输入，
// 不加任何跨表锁，代价是价格不可缓存。
func (s *CartService) View(ctx context.Context, userID int64, at time.Time) (*CartView, error) {
	lines, err := repository.Carts().ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := &CartView{
		Lines: make([]PricedLine, 0, len(lines)),
		Total: decimal.Zero,
	}

	for _, line := range lines {
		quote, err := pricing.Default().ResolveLine(ctx, line, at)
		if err != nil {
			return nil, err
		}

		product, err := repository.Catalog().GetProduct(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}

		priced := PricedLine{
			Line:      line,
			Product:   product,
			UnitPrice: quote.Effective,
			Subtotal:  quote.Effective.Mul(decimal.NewFromInt(int64(line.Quantity))),
		}
		if quote.Applied != nil {
			priced.PromoCode = quote.Applied.Code
		}

		view.Lines = append(view.Lines, priced)
		view.Total = view.Total.Add(priced.Subtotal)
	}

	return view, nil
}

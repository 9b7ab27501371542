package service

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"Lavka/internal/model"
	"Lavka/internal/pricing"
	"Lavka/internal/repository"
)

// CatalogService 商品目录与广告位
type CatalogService struct{}

var (
	catalogService *CatalogService
	catalogOnce    sync.Once
)

func Catalog() *CatalogService {
	catalogOnce.Do(func() {
		catalogService = &CatalogService{}
	})
	return catalogService
}

func (s *CatalogService) CreateCategory(ctx context.Context, name string, position int) (*model.Category, error) {
	c := &model.Category{Name: name, Position: position}
	if err := repository.Catalog().CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]*model.Category, error) {
	return repository.Catalog().ListCategories(ctx)
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id int64) error {
	return repository.Catalog().DeleteCategory(ctx, id)
}

func (s *CatalogService) CreateProduct(ctx context.Context, p *model.Product) error {
	return repository.Catalog().CreateProduct(ctx, p)
}

func (s *CatalogService) UpdateProduct(ctx context.Context, p *model.Product) error {
	return repository.Catalog().UpdateProduct(ctx, p)
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	return repository.Catalog().DeleteProduct(ctx, id)
}

// PricedProduct 带当前有效价格的商品
type PricedProduct struct {
	Product        *model.Product  `json:"product"`
	EffectivePrice decimal.Decimal `json:"effective_price"`
	PromoCode      string          `json:"promo_code,omitempty"`
}

// GetProduct 返回商品及此刻的有效价格
func (s *CatalogService) GetProduct(ctx context.Context, id int64, at time.Time) (*PricedProduct, error) {
	product, err := repository.Catalog().GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	quote, err := pricing.Default().ResolvePrice(ctx, id, at)
	if err != nil {
		return nil, err
	}

	priced := &PricedProduct{
		Product:        product,
		EffectivePrice: quote.Effective,
	}
	if quote.Applied != nil {
		priced.PromoCode = quote.Applied.Code
	}
	return priced, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, categoryID int64) ([]*model.Product, error) {
	return repository.Catalog().ListProducts(ctx, categoryID)
}

func (s *CatalogService) CreatePromotion(ctx context.Context, p *model.Promotion) error {
	return repository.Catalog().CreatePromotion(ctx, p)
}

func (s *CatalogService) ListPromotions(ctx context.Context) ([]*model.Promotion, error) {
	return repository.Catalog().ListPromotions(ctx)
}

func (s *CatalogService) DeletePromotion(ctx context.Context, id int64) error {
	return repository.Catalog().DeletePromotion(ctx, id)
}

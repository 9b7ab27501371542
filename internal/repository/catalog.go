package repository

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"Lavka/internal/cache"
	"Lavka/internal/model"
	"Lavka/pkg/errors"
	"Lavka/storage/database"
)

// CatalogRepo 商品目录持久层
type CatalogRepo struct {
	db *gorm.DB
}

var (
	catalogRepo     *CatalogRepo
	catalogRepoOnce sync.Once
)

func Catalog() *CatalogRepo {
	catalogRepoOnce.Do(func() {
		catalogRepo = &CatalogRepo{db: database.DB()}
	})
	return catalogRepo
}

func NewCatalogRepo(db *gorm.DB) *CatalogRepo {
	return &CatalogRepo{db: db}
}

func (r *CatalogRepo) CreateCategory(ctx context.Context, c *model.Category) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *CatalogRepo) ListCategories(ctx context.Context) ([]*model.Category, error) {
	var categories []*model.Category
	err := r.db.WithContext(ctx).
		Order("position ASC, id ASC").
		Find(&categories).Error
	return categories, err
}

func (r *CatalogRepo) DeleteCategory(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&model.Category{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.CategoryNotFound
	}
	return nil
}

func (r *CatalogRepo) CreateProduct(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *CatalogRepo) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	if cached, hit, err := cache.GetCachedProduct(ctx, id); err == nil && hit {
		if cached == nil {
			return nil, errors.ProductNotFound
		}
		return cached, nil
	}

	var p model.Product
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		cache.CacheProduct(ctx, id, nil)
		return nil, errors.ProductNotFound
	}
	if err != nil {
		return nil, err
	}

	cache.CacheProduct(ctx, id, &p)
	return &p, nil
}

// ListProducts 按分类返回可售商品
func (r *CatalogRepo) ListProducts(ctx context.Context, categoryID int64) ([]*model.Product, error) {
	var products []*model.Product
	err := r.db.WithContext(ctx).
		Where("category_id = ? AND available = ?", categoryID, true).
		Order("id ASC").
		Find(&products).Error
	return products, err
}

func (r *CatalogRepo) UpdateProduct(ctx context.Context, p *model.Product) error {
	result := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", p.ID).
		Updates(map[string]interface{}{
			"category_id": p.CategoryID,
			"name":        p.Name,
			"description": p.Description,
			"base_price":  p.BasePrice,
			"photo_id":    p.PhotoID,
			"available":   p.Available,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.ProductNotFound
	}

	cache.InvalidateProduct(ctx, p.ID)
	return nil
}

func (r *CatalogRepo) DeleteProduct(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&model.Product{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.ProductNotFound
	}

	cache.InvalidateProduct(ctx, id)
	return nil
}

// CreatePromotion 录入广告位
func (r *CatalogRepo) CreatePromotion(ctx context.Context, p *model.Promotion) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *CatalogRepo) ListPromotions(ctx context.Context) ([]*model.Promotion, error) {
	var promotions []*model.Promotion
	err := r.db.WithContext(ctx).
		Order("position ASC, id ASC").
		Find(&promotions).Error
	return promotions, err
}

func (r *CatalogRepo) DeletePromotion(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Promotion{}, "id = ?", id).Error
}

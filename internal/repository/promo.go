package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"Lavka/internal/model"
	"Lavka/pkg/errors"
	"Lavka/storage/database"
)

// PromoRepo 促销码持久层
type PromoRepo struct {
	db *gorm.DB
}

var (
	promoRepo     *PromoRepo
	promoRepoOnce sync.Once
)

func Promos() *PromoRepo {
	promoRepoOnce.Do(func() {
		promoRepo = &PromoRepo{db: database.DB()}
	})
	return promoRepo
}

func NewPromoRepo(db *gorm.DB) *PromoRepo {
	return &PromoRepo{db: db}
}

// Create 创建促销码。码统一大写；同商品的活跃码窗口不允许重叠，
// 重叠判定按左闭右开区间：[a, b) 与 [c, d) 相交当且仅当 a < d 且 c < b。
func (r *PromoRepo) Create(ctx context.Context, p *model.PromoCode) error {
	p.Code = strings.ToUpper(strings.TrimSpace(p.Code))

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var overlapping int64
		err := tx.Model(&model.PromoCode{}).
			Where("product_id = ? AND active = ? AND starts_at < ? AND ? < ends_at",
				p.ProductID, true, p.EndsAt, p.StartsAt).
			Count(&overlapping).Error
		if err != nil {
			return err
		}
		if overlapping > 0 {
			return errors.PromoWindowOverlap
		}

		return tx.Create(p).Error
	})
}

// GetByCode 按码查找，大小写不敏感
func (r *PromoRepo) GetByCode(ctx context.Context, code string) (*model.PromoCode, error) {
	var promo model.PromoCode
	err := r.db.WithContext(ctx).
		First(&promo, "code = ?", strings.ToUpper(strings.TrimSpace(code))).Error
	if err == gorm.ErrRecordNotFound {
		return nil, errors.CodeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &promo, nil
}

func (r *PromoRepo) GetByID(ctx context.Context, id int64) (*model.PromoCode, error) {
	var promo model.PromoCode
	err := r.db.WithContext(ctx).First(&promo, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, errors.CodeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &promo, nil
}

// ListEligible 返回给定商品在给定时刻的全部活跃促销码。
// 正常数据至多一条，解析端仍需对多条脏数据做确定性裁决。
func (r *PromoRepo) ListEligible(ctx context.Context, productID int64, at time.Time) ([]*model.PromoCode, error) {
	var promos []*model.PromoCode
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND active = ? AND starts_at <= ? AND ? < ends_at",
			productID, true, at, at).
		Find(&promos).Error
	return promos, err
}

func (r *PromoRepo) List(ctx context.Context, limit, offset int) ([]*model.PromoCode, error) {
	var promos []*model.PromoCode
	err := r.db.WithContext(ctx).
		Order("starts_at DESC").
		Limit(limit).Offset(offset).
		Find(&promos).Error
	return promos, err
}

// SetActive 启停促销码
func (r *PromoRepo) SetActive(ctx context.Context, id int64, active bool) error {
	result := r.db.WithContext(ctx).
		Model(&model.PromoCode{}).
		Where("id = ?", id).
		Update("active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.CodeNotFound
	}
	return nil
}

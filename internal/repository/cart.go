package repository

import (
	"context"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"Lavka/internal/model"
	"Lavka/pkg/errors"
	"Lavka/storage/database"
)

// CartRepo 购物车持久层。所有写操作都是单行事务。
type CartRepo struct {
	db *gorm.DB
}

var (
	cartRepo     *CartRepo
	cartRepoOnce sync.Once
)

func Carts() *CartRepo {
	cartRepoOnce.Do(func() {
		cartRepo = &CartRepo{db: database.DB()}
	})
	return cartRepo
}

func NewCartRepo(db *gorm.DB) *CartRepo {
	return &CartRepo{db: db}
}

// AddLine 加购：同用户同商品合并数量
func (r *CartRepo) AddLine(ctx context.Context, userID, productID int64, quantity int) error {
	line := model.CartLine{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity": gorm.Expr("cart_lines.quantity + ?", quantity),
		}),
	}).Create(&line).Error
}

func (r *CartRepo) GetLine(ctx context.Context, lineID int64) (*model.CartLine, error) {
	var line model.CartLine
	err := r.db.WithContext(ctx).First(&line, "id = ?", lineID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, errors.CartLineNotFound
	}
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *CartRepo) ListByUser(ctx context.Context, userID int64) ([]*model.CartLine, error) {
	var lines []*model.CartLine
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&lines).Error
	return lines, err
}

// SetQuantity 改数量，quantity <= 0 时删除该行
func (r *CartRepo) SetQuantity(ctx context.Context, lineID int64, quantity int) error {
	if quantity <= 0 {
		return r.DeleteLine(ctx, lineID)
	}

	result := r.db.WithContext(ctx).
		Model(&model.CartLine{}).
		Where("id = ?", lineID).
		Update("quantity", quantity)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.CartLineNotFound
	}
	return nil
}

// SetPromoCode 在购物车行上记录促销码引用，nil 表示清除
func (r *CartRepo) SetPromoCode(ctx context.Context, lineID int64, promoCodeID *int64) error {
	result := r.db.WithContext(ctx).
		Model(&model.CartLine{}).
		Where("id = ?", lineID).
		Update("promo_code_id", promoCodeID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.CartLineNotFound
	}
	return nil
}

func (r *CartRepo) DeleteLine(ctx context.Context, lineID int64) error {
	result := r.db.WithContext(ctx).Delete(&model.CartLine{}, "id = ?", lineID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.CartLineNotFound
	}
	return nil
}

// Clear 清空用户购物车
func (r *CartRepo) Clear(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).Delete(&model.CartLine{}, "user_id = ?", userID).Error
}

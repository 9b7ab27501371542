package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PromoCode 促销码模型。
// Code 全局唯一并统一大写存储；窗口为左闭右开 [StartsAt, EndsAt)。
// 同一商品的活跃促销码窗口在创建时校验不重叠，解析价格时仍需容忍历史脏数据。
type PromoCode struct {
	BaseModel
	Code            string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"code"`
	ProductID       int64           `gorm:"not null;index:idx_promo_codes_product" json:"product_id"`
	DiscountPercent decimal.Decimal `gorm:"type:numeric(5,2);not null" json:"discount_percent"`
	StartsAt        time.Time       `gorm:"type:timestamptz;not null" json:"starts_at"`
	EndsAt          time.Time       `gorm:"type:timestamptz;not null" json:"ends_at"`
	Active          bool            `gorm:"not null;default:true;index:idx_promo_codes_product" json:"active"`
	CreatedBy       int64           `gorm:"not null" json:"created_by"`
}

// TableName 指定表名
func (PromoCode) TableName() string {
	return "promo_codes"
}

// EligibleAt 判断促销码在给定时刻是否可用于给定商品
func (p *PromoCode) EligibleAt(productID int64, at time.Time) bool {
	if !p.Active || p.ProductID != productID {
		return false
	}
	return !at.Before(p.StartsAt) && at.Before(p.EndsAt)
}

// Promotion 营销广告位，由操作员录入、用户侧轮播展示
type Promotion struct {
	BaseModel
	Title    string `gorm:"type:varchar(128);not null" json:"title"`
	Body     string `gorm:"type:text;not null" json:"body"`
	PhotoID  string `gorm:"type:varchar(255)" json:"photo_id,omitempty"` // Telegram file id
	Position int    `gorm:"not null;default:0" json:"position"`
}

// TableName 指定表名
func (Promotion) TableName() string {
	return "promotions"
}

package model

import "github.com/shopspring/decimal"

// Category 商品分类
type Category struct {
	BaseModel
	Name     string `gorm:"type:varchar(128);uniqueIndex;not null" json:"name"`
	Position int    `gorm:"not null;default:0" json:"position"`
}

// TableName 指定表名
func (Category) TableName() string {
	return "categories"
}

// Product 商品模型，BasePrice 是未打折的原价
type Product struct {
	BaseModel
	CategoryID  int64           `gorm:"not null;index" json:"category_id"`
	Name        string          `gorm:"type:varchar(128);not null" json:"name"`
	Description string          `gorm:"type:text" json:"description,omitempty"`
	BasePrice   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"base_price"`
	PhotoID     string          `gorm:"type:varchar(255)" json:"photo_id,omitempty"`
	Available   bool            `gorm:"not null;default:true" json:"available"`
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}

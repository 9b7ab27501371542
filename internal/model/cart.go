package model

// CartLine 购物车行。有效价格永远不落库，
// 只保存用户选定的促销码引用，价格在每次读取时重新解析。
type CartLine struct {
	BaseModel
	UserID      int64  `gorm:"not null;uniqueIndex:idx_cart_lines_user_product,priority:1" json:"user_id"`
	ProductID   int64  `gorm:"not null;uniqueIndex:idx_cart_lines_user_product,priority:2" json:"product_id"`
	Quantity    int    `gorm:"not null;default:1" json:"quantity"`
	PromoCodeID *int64 `gorm:"index" json:"promo_code_id,omitempty"`
}

// TableName 指定表名
func (CartLine) TableName() string {
	return "cart_lines"
}

package model

import "time"

// ========== Mailing 相关 DTO ==========

// CreateMailingRequest 创建群发请求
type CreateMailingRequest struct {
	Content     string    `json:"content" binding:"required"`
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
}

// MailingListQuery 群发列表查询参数
type MailingListQuery struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// ========== PromoCode 相关 DTO ==========

// CreatePromoCodeRequest 创建促销码请求
type CreatePromoCodeRequest struct {
	Code            string    `json:"code" binding:"required"`
	ProductID       int64     `json:"product_id" binding:"required"`
	DiscountPercent string    `json:"discount_percent" binding:"required"`
	StartsAt        time.Time `json:"starts_at" binding:"required"`
	EndsAt          time.Time `json:"ends_at" binding:"required"`
}

// SetPromoActiveRequest 启停促销码请求
type SetPromoActiveRequest struct {
	Active bool `json:"active"`
}

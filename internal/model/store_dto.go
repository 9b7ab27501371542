package model

// ========== 店面相关 DTO ==========

// PageQuery 通用分页查询参数
type PageQuery struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// RegisterRecipientRequest 顾客注册请求
type RegisterRecipientRequest struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
}

// CreateCategoryRequest 创建类目请求
type CreateCategoryRequest struct {
	Name     string `json:"name" binding:"required"`
	Position int    `json:"position"`
}

// CreateProductRequest 创建商品请求
type CreateProductRequest struct {
	CategoryID  int64  `json:"category_id" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	BasePrice   string `json:"base_price" binding:"required"`
	PhotoID     string `json:"photo_id"`
	Available   bool   `json:"available"`
}

// CreatePromotionRequest 创建活动展示请求
type CreatePromotionRequest struct {
	Title    string `json:"title" binding:"required"`
	Body     string `json:"body"`
	PhotoID  string `json:"photo_id"`
	Position int    `json:"position"`
}

// AddCartLineRequest 加购请求
type AddCartLineRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity"`
}

// SetCartQuantityRequest 修改数量请求
type SetCartQuantityRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// ApplyPromoCodeRequest 在购物车行上应用促销码
type ApplyPromoCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

// SubmitSupportRequest 客服留言请求
type SubmitSupportRequest struct {
	Text string `json:"text" binding:"required"`
}

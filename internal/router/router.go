package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"

	"Lavka/internal/handler"
	"Lavka/internal/middleware"
)

// RegisterCustomer 顾客侧路由，storebot 进程使用。
func RegisterCustomer(h *server.Hertz) {

	h.Use(middleware.RecoverMiddleware())
	h.Use(middleware.CORSMiddleware())
	h.Use(middleware.OpenTelemetryMiddleware())
	h.Use(middleware.IdentityMiddleware())
	v1 := h.Group("/v1")
	v1.Use(middleware.GeneralRateLimitMiddleware())

	// 进店注册
	recipients := v1.Group("/recipients", middleware.RequireIdentity())
	{
		recipients.POST("/register", handler.RegisterRecipient)
	}

	// 商品浏览，无需身份
	catalog := v1.Group("/catalog")
	{
		catalog.GET("/categories", handler.ListCategories)
		catalog.GET("/products", handler.ListProducts)
		catalog.GET("/products/:product_id", handler.GetProduct)
	}
	v1.GET("/promotions", handler.ListPromotions)

	// 购物车
	cart := v1.Group("/cart")
	cart.Use(middleware.RequireIdentity())
	{
		cart.GET("", handler.GetCart)
		cart.DELETE("", handler.ClearCart)
		cart.POST("/lines", handler.AddCartLine)
		cart.PUT("/lines/:line_id/quantity", handler.SetCartQuantity)
		cart.DELETE("/lines/:line_id", handler.RemoveCartLine)
		cart.POST("/lines/:line_id/promo", handler.ApplyCartPromoCode)
		cart.DELETE("/lines/:line_id/promo", handler.RemoveCartPromoCode)
	}

	// 客服留言
	support := v1.Group("/support")
	support.Use(middleware.RequireIdentity())
	{
		support.POST("", middleware.SupportRateLimitMiddleware(), handler.SubmitSupportRequest)
	}
}

// RegisterOperator 操作员侧路由，adminbot 进程使用，整组白名单校验。
func RegisterOperator(h *server.Hertz) {

	h.Use(middleware.RecoverMiddleware())
	h.Use(middleware.CORSMiddleware())
	h.Use(middleware.OpenTelemetryMiddleware())
	h.Use(middleware.IdentityMiddleware())
	v1 := h.Group("/v1")
	v1.Use(middleware.AdminOnlyMiddleware())

	// 群发管理
	mailings := v1.Group("/mailings")
	{
		mailings.POST("", middleware.MailingCreateRateLimitMiddleware(), handler.CreateMailing)
		mailings.GET("", handler.ListMailings)
		mailings.GET("/:mailing_id", handler.GetMailing)
		mailings.POST("/:mailing_id/cancel", handler.CancelMailing)
		mailings.GET("/:mailing_id/report", handler.GetMailingReport)
	}

	// 促销码管理
	promoCodes := v1.Group("/promo-codes")
	{
		promoCodes.POST("", handler.CreatePromoCode)
		promoCodes.GET("", handler.ListPromoCodes)
		promoCodes.PATCH("/:promo_id/active", handler.SetPromoCodeActive)
	}

	// 商品与类目管理
	catalog := v1.Group("/catalog")
	{
		catalog.GET("/categories", handler.ListCategories)
		catalog.POST("/categories", handler.CreateCategory)
		catalog.DELETE("/categories/:category_id", handler.DeleteCategory)
		catalog.GET("/products", handler.ListProducts)
		catalog.POST("/products", handler.CreateProduct)
		catalog.PUT("/products/:product_id", handler.UpdateProduct)
		catalog.DELETE("/products/:product_id", handler.DeleteProduct)
	}

	// 活动展示管理
	promotions := v1.Group("/promotions")
	{
		promotions.GET("", handler.ListPromotions)
		promotions.POST("", handler.CreatePromotion)
		promotions.DELETE("/:promotion_id", handler.DeletePromotion)
	}

	// 收件人管理
	recipients := v1.Group("/recipients")
	{
		recipients.GET("/stats", handler.GetRecipientStats)
		recipients.POST("/:chat_id/unblock", handler.UnblockRecipient)
	}

	// 客服留言管理
	support := v1.Group("/support")
	{
		support.POST("/:request_id/close", handler.CloseSupportRequest)
	}

	// 购物行为汇总
	analytics := v1.Group("/analytics")
	{
		analytics.GET("/summary", handler.GetAnalyticsSummary)
		analytics.GET("/sales", handler.GetSalesByDay)
		analytics.GET("/top-products", handler.GetTopProducts)
		analytics.GET("/activity", handler.GetUserActivity)
	}
}

package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/cloudwego/hertz/pkg/app"

	"Lavka/internal/service"
	"Lavka/pkg/response"
)

// parseAnalyticsRange 从 query 解析 from/to（YYYY-MM-DD），解析失败按缺省处理
func parseAnalyticsRange(c *app.RequestContext) (time.Time, time.Time) {
	from, _ := time.Parse("2006-01-02", c.Query("from"))
	to, _ := time.Parse("2006-01-02", c.Query("to"))
	if !to.IsZero() {
		// 区间右端按天闭合
		to = to.AddDate(0, 0, 1)
	}
	return from, to
}

// GetAnalyticsSummary 最近区间的销售、热门商品、活跃用户打包汇总
// GET /v1/analytics/summary
func GetAnalyticsSummary(ctx context.Context, c *app.RequestContext) {
	from, to := parseAnalyticsRange(c)

	summary, err := service.Analytics().Summary(ctx, from, to)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, summary)
}

// GetSalesByDay 按天聚合的加购量
// GET /v1/analytics/sales
func GetSalesByDay(ctx context.Context, c *app.RequestContext) {
	from, to := parseAnalyticsRange(c)

	rows, err := service.Analytics().SalesByDay(ctx, from, to)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, rows)
}

// GetTopProducts 加购最多的商品
// GET /v1/analytics/top-products
func GetTopProducts(ctx context.Context, c *app.RequestContext) {
	from, to := parseAnalyticsRange(c)
	limit, _ := strconv.Atoi(c.Query("limit"))

	rows, err := service.Analytics().TopProducts(ctx, from, to, limit)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, rows)
}

// GetUserActivity 加购最活跃的用户
// GET /v1/analytics/activity
func GetUserActivity(ctx context.Context, c *app.RequestContext) {
	from, to := parseAnalyticsRange(c)
	limit, _ := strconv.Atoi(c.Query("limit"))

	rows, err := service.Analytics().UserActivity(ctx, from, to, limit)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, rows)
}

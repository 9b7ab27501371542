package service

import (
	"context"
	"sync"
	"time"

	"Lavka/internal/repository"
)

const (
	defaultAnalyticsDays   = 30
	defaultTopProductLimit = 5
	defaultUserLimit       = 10
)

// AnalyticsService 购物行为汇总，给操作员看
type AnalyticsService struct{}

var (
	analyticsService *AnalyticsService
	analyticsOnce    sync.Once
)

func Analytics() *AnalyticsService {
	analyticsOnce.Do(func() {
		analyticsService = &AnalyticsService{}
	})
	return analyticsService
}

// Summary 三类汇总打包返回，区间缺省为最近 30 天
type Summary struct {
	Sales       []repository.DailySales   `json:"sales"`
	TopProducts []repository.ProductSales `json:"top_products"`
	Users       []repository.UserActivity `json:"users"`
}

// normalizeRange 补齐缺省区间，保证 from < to
func normalizeRange(from, to time.Time) (time.Time, time.Time) {
	if to.IsZero() {
		to = time.Now()
	}
	if from.IsZero() || !from.Before(to) {
		from = to.AddDate(0, 0, -defaultAnalyticsDays)
	}
	return from, to
}

func (s *AnalyticsService) SalesByDay(ctx context.Context, from, to time.Time) ([]repository.DailySales, error) {
	from, to = normalizeRange(from, to)
	return repository.Analytics().SalesByDay(ctx, from, to)
}

func (s *AnalyticsService) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]repository.ProductSales, error) {
	from, to = normalizeRange(from, to)
	if limit <= 0 {
		limit = defaultTopProductLimit
	}
	return repository.Analytics().TopProducts(ctx, from, to, limit)
}

func (s *AnalyticsService) UserActivity(ctx context.Context, from, to time.Time, limit int) ([]repository.UserActivity, error) {
	from, to = normalizeRange(from, to)
	if limit <= 0 {
		limit = defaultUserLimit
	}
	return repository.Analytics().UserActivity(ctx, from, to, limit)
}

// Summary 一次取齐三类汇总
func (s *AnalyticsService) Summary(ctx context.Context, from, to time.Time) (*Summary, error) {
	from, to = normalizeRange(from, to)

	sales, err := repository.Analytics().SalesByDay(ctx, from, to)
	if err != nil {
		return nil, err
	}
	top, err := repository.Analytics().TopProducts(ctx, from, to, defaultTopProductLimit)
	if err != nil {
		return nil, err
	}
	users, err := repository.Analytics().UserActivity(ctx, from, to, defaultUserLimit)
	if err != nil {
		return nil, err
	}

	return &Summary{Sales: sales, TopProducts: top, Users: users}, nil
}

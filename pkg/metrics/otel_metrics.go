package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"Lavka/internal/middleware"
	"Lavka/pkg/database"
	"Lavka/pkg/mq"
	"Lavka/pkg/redis"
)

// OTelMetrics OpenTelemetry 指标集合
type OTelMetrics struct {
	// 群发投递相关指标
	MailingSentTotal      metric.Int64Counter
	MailingBlockedTotal   metric.Int64Counter
	MailingTransientTotal metric.Int64Counter
	MailingRetryTotal     metric.Int64Counter
	DispatchDuration      metric.Float64Histogram
	DispatchActive        metric.Int64UpDownCounter

	// 促销相关指标
	PromoAppliedTotal  metric.Int64Counter
	PromoRejectedTotal metric.Int64Counter
}

var (
	// 全局指标实例
	metrics *OTelMetrics
	// meter 用于创建指标
	meter = otel.Meter("lavka")
)

// InitMetrics 初始化 OpenTelemetry 指标
func InitMetrics() error {
	var err error

	metrics = &OTelMetrics{}

	metrics.MailingSentTotal, err = meter.Int64Counter(
		"mailing_sent_total",
		metric.WithDescription("Total number of mailing messages delivered"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return err
	}

	metrics.MailingBlockedTotal, err = meter.Int64Counter(
		"mailing_blocked_total",
		metric.WithDescription("Total number of recipients that blocked the bot"),
		metric.WithUnit("{recipient}"),
	)
	if err != nil {
		return err
	}

	metrics.MailingTransientTotal, err = meter.Int64Counter(
		"mailing_transient_total",
		metric.WithDescription("Total number of recipients that exhausted retries"),
		metric.WithUnit("{recipient}"),
	)
	if err != nil {
		return err
	}

	metrics.MailingRetryTotal, err = meter.Int64Counter(
		"mailing_retry_total",
		metric.WithDescription("Total number of delivery retry attempts"),
		metric.WithUnit("{retry}"),
	)
	if err != nil {
		return err
	}

	metrics.DispatchDuration, err = meter.Float64Histogram(
		"mailing_dispatch_duration_seconds",
		metric.WithDescription("Wall-clock time of a full mailing dispatch"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	metrics.DispatchActive, err = meter.Int64UpDownCounter(
		"mailing_dispatch_active",
		metric.WithDescription("Number of mailings currently being dispatched"),
		metric.WithUnit("{mailing}"),
	)
	if err != nil {
		return err
	}

	metrics.PromoAppliedTotal, err = meter.Int64Counter(
		"promo_applied_total",
		metric.WithDescription("Total number of promo codes applied to carts"),
		metric.WithUnit("{apply}"),
	)
	if err != nil {
		return err
	}

	metrics.PromoRejectedTotal, err = meter.Int64Counter(
		"promo_rejected_total",
		metric.WithDescription("Total number of rejected promo code applications"),
		metric.WithUnit("{apply}"),
	)
	if err != nil {
		return err
	}

	// 基础设施层指标共用同一个 meter
	if err := database.InitDatabaseMetrics(meter); err != nil {
		return err
	}
	if err := mq.InitMQMetrics(meter); err != nil {
		return err
	}
	if err := redis.InitRedisMetrics(meter); err != nil {
		return err
	}

	// HTTP 中间件的指标也挂在这里，保证两个 bot 启动时一并就绪
	if err := middleware.InitMetrics(meter); err != nil {
		return err
	}

	return nil
}

// GetMetrics 获取全局指标实例
func GetMetrics() *OTelMetrics {
	return metrics
}

// RecordDelivery 按结果记录一次最终投递结果
func (m *OTelMetrics) RecordDelivery(ctx context.Context, mailingID int64, outcome string) {
	attrs := metric.WithAttributes(
		attribute.Int64("mailing_id", mailingID),
	)

	switch outcome {
	case "sent":
		m.MailingSentTotal.Add(ctx, 1, attrs)
	case "blocked":
		m.MailingBlockedTotal.Add(ctx, 1, attrs)
	case "transient_failed":
		m.MailingTransientTotal.Add(ctx, 1, attrs)
	}
}

// RecordRetry 记录一次重试
func (m *OTelMetrics) RecordRetry(ctx context.Context, mailingID int64) {
	m.MailingRetryTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.Int64("mailing_id", mailingID),
	))
}

// RecordDispatch 记录一次完整投递的耗时
func (m *OTelMetrics) RecordDispatch(ctx context.Context, status string, duration float64) {
	m.DispatchDuration.Record(ctx, duration, metric.WithAttributes(
		attribute.String("status", status),
	))
}

// AddActiveDispatch 增加活跃投递数
func (m *OTelMetrics) AddActiveDispatch(ctx context.Context) {
	m.DispatchActive.Add(ctx, 1)
}

// SubtractActiveDispatch 减少活跃投递数
func (m *OTelMetrics) SubtractActiveDispatch(ctx context.Context) {
	m.DispatchActive.Add(ctx, -1)
}

// RecordPromoApplied 记录促销码应用成功
func (m *OTelMetrics) RecordPromoApplied(ctx context.Context, code string) {
	m.PromoAppliedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("code", code),
	))
}

// RecordPromoRejected 记录促销码应用被拒
func (m *OTelMetrics) RecordPromoRejected(ctx context.Context, reason string) {
	m.PromoRejectedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("reason", reason),
	))
}

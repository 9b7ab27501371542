package metrics

import (
	"context"
)

// 以下包级函数在指标尚未初始化时静默降级，供不持有 ctx 的调用方使用。

// RecordDelivery 按结果记录一次最终投递结果
func RecordDelivery(mailingID int64, outcome string) {
	if m := GetMetrics(); m != nil {
		m.RecordDelivery(context.Background(), mailingID, outcome)
	}
}

// RecordRetry 记录一次重试
func RecordRetry(mailingID int64) {
	if m := GetMetrics(); m != nil {
		m.RecordRetry(context.Background(), mailingID)
	}
}

// RecordDispatch 记录一次完整投递的耗时
func RecordDispatch(status string, duration float64) {
	if m := GetMetrics(); m != nil {
		m.RecordDispatch(context.Background(), status, duration)
	}
}

// RecordPromoApplied 记录促销码应用成功
func RecordPromoApplied(code string) {
	if m := GetMetrics(); m != nil {
		m.RecordPromoApplied(context.Background(), code)
	}
}

// RecordPromoRejected 记录促销码应用被拒
func RecordPromoRejected(reason string) {
	if m := GetMetrics(); m != nil {
		m.RecordPromoRejected(context.Background(), reason)
	}
}

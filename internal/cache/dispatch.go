package cache

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"Lavka/storage/redis"
)

const (
	messageProcessedPrefix = "message:processed"
	mailingReportPrefix    = "mailing:report"

	processedTTL = 48 * time.Hour
	reportTTL    = 7 * 24 * time.Hour
)

// TryMarkMessageProcessing 尝试原子性地标记消息正在处理（使用 SETNX）
// 返回 true 表示成功标记（首次处理），false 表示已被标记（重复消息或正在处理）
func TryMarkMessageProcessing(ctx context.Context, messageID string, ttl time.Duration) (bool, error) {
	key := redis.Key(messageProcessedPrefix, messageID)
	if ttl <= 0 {
		ttl = processedTTL
	}

	result, err := redis.Client().SetNX(ctx, key, "processing", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark message as processing: %w", err)
	}
	return result, nil
}

// UnmarkMessageProcessing 取消消息处理标记（处理失败时调用，允许重试）
func UnmarkMessageProcessing(ctx context.Context, messageID string) error {
	key := redis.Key(messageProcessedPrefix, messageID)
	return redis.Client().Del(ctx, key).Err()
}

// MarkMessageProcessed 标记消息已处理（处理成功时调用，延长 TTL）
func MarkMessageProcessed(ctx context.Context, messageID string, ttl time.Duration) error {
	key := redis.Key(messageProcessedPrefix, messageID)
	if ttl <= 0 {
		ttl = processedTTL
	}
	return redis.Client().Set(ctx, key, "completed", ttl).Err()
}

// CacheDispatchReport 缓存一次投递的汇总报告，供操作员快速查询
func CacheDispatchReport(ctx context.Context, mailingID int64, report string) error {
	key := redis.Key(mailingReportPrefix, fmt.Sprintf("%d", mailingID))
	return redis.Client().Set(ctx, key, report, reportTTL).Err()
}

// GetDispatchReport 读取缓存的投递报告，不存在时返回空串
func GetDispatchReport(ctx context.Context, mailingID int64) (string, error) {
	key := redis.Key(mailingReportPrefix, fmt.Sprintf("%d", mailingID))
	result, err := redis.Client().Get(ctx, key).Result()
	if err == goredis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return result, nil
}

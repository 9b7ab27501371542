package cache

import (
	"context"
	"time"
	"Lavka/storage/redis"

)

// 基于 SETNX 的分布式锁，防止多个 worker 同时抢占同一个调度扫描
const (
	lockPrefix = "lock"
)


func TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {

	fullkey := redis.Key(lockPrefix, key)

	result, err := redis.Client().SetNX(ctx, fullkey, 1, ttl).Result()

	if err != nil {
		return false, err
	}

	return result, err
}

func Unlock(ctx context.Context, key string) error {
	fullkey := redis.Key(lockPrefix, key)

	return redis.Client().Del(ctx, fullkey).Err()
}
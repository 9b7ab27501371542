package schedule

// 群发调度器：轮询到期任务提升为 ready 并投递触发消息，
// 附带停滞恢复扫描和支持请求转发扫描

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"Lavka/config"
	"Lavka/internal/cache"
	"Lavka/internal/model"
	"Lavka/internal/queue"
	"Lavka/internal/repository"
	"Lavka/pkg/logger"
)

var (
	schedulerOnce sync.Once
	schedulerInst *MailingScheduler
)

type MailingScheduler struct {
	logger      *zap.Logger
	pollRunning bool
	pollMu      sync.Mutex
	lastPollAt  time.Time
}

func GetScheduler() *MailingScheduler {
	schedulerOnce.Do(func() {
		schedulerInst = &MailingScheduler{
			logger: logger.Logger,
		}
	})
	return schedulerInst
}

// Poll 单次调度扫描：到期提升 + 触发投递。
// 分布式锁保证多副本调度器同一时刻只有一个在扫，
// 锁丢了也无妨，worker 侧的条件抢占兜底。
func (s *MailingScheduler) Poll(ctx context.Context) error {
	s.pollMu.Lock()
	if s.pollRunning {
		s.pollMu.Unlock()
		s.logger.Info("Mailing poll already running, skipping")
		return nil
	}
	s.pollRunning = true
	s.pollMu.Unlock()

	defer func() {
		s.pollMu.Lock()
		s.pollRunning = false
		s.pollMu.Unlock()
	}()

	now := time.Now()
	s.lastPollAt = now

	locked, err := cache.TryLock(ctx, "mailing_poll", 2*time.Minute)
	if err != nil {
		s.logger.Warn("Failed to acquire poll lock, proceeding anyway", zap.Error(err))
	} else if !locked {
		return nil
	} else {
		defer func() {
			if err := cache.Unlock(context.Background(), "mailing_poll"); err != nil {
				s.logger.Warn("Failed to release poll lock", zap.Error(err))
			}
		}()
	}

	ready, err := repository.Mailings().PromoteDue(ctx, now)
	if err != nil {
		s.logger.Error("Failed to promote due mailings", zap.Error(err))
		return fmt.Errorf("failed to promote due mailings: %w", err)
	}

	if len(ready) == 0 {
		return nil
	}

	s.logger.Info("Found ready mailings", zap.Int("count", len(ready)))

	for _, m := range ready {
		msg := model.MailingDispatchMessage{
			MailingID:   m.ID,
			ScheduledAt: m.ScheduledAt.Format(time.RFC3339),
		}
		if err := queue.PublishMailingDispatch(ctx, msg); err != nil {
			s.logger.Error("Failed to publish dispatch message",
				zap.Int64("mailing_id", m.ID),
				zap.Error(err),
			)
			// 发布失败的任务留在 ready，下一轮重试
		}
	}

	return nil
}

// RecoverStalled 恢复扫描：把停滞的 in_progress 任务重新入队续传。
// 观察到的 started_at 随消息带走，worker 用它做乐观抢占。
func (s *MailingScheduler) RecoverStalled(ctx context.Context) error {
	stallAfter := time.Duration(config.Cfg.MailingStallAfter) * time.Second
	cutoff := time.Now().Add(-stallAfter)

	stalled, err := repository.Mailings().ListStalled(ctx, cutoff)
	if err != nil {
		s.logger.Error("Failed to list stalled mailings", zap.Error(err))
		return fmt.Errorf("failed to list stalled mailings: %w", err)
	}

	for _, m := range stalled {
		if m.StartedAt == nil {
			continue
		}

		s.logger.Warn("Re-enqueueing stalled mailing",
			zap.Int64("mailing_id", m.ID),
			zap.Time("started_at", *m.StartedAt),
		)

		msg := model.MailingDispatchMessage{
			MailingID:         m.ID,
			ScheduledAt:       m.ScheduledAt.Format(time.RFC3339),
			Recovered:         true,
			ObservedStartedAt: m.StartedAt.Format(time.RFC3339),
		}
		if err := queue.PublishMailingDispatch(ctx, msg); err != nil {
			s.logger.Error("Failed to publish recovery message",
				zap.Int64("mailing_id", m.ID),
				zap.Error(err),
			)
		}
	}

	return nil
}

// SweepSupportRequests 把未转发的支持请求入队
func (s *MailingScheduler) SweepSupportRequests(ctx context.Context) error {
	requests, err := repository.Support().ListNew(ctx, 100)
	if err != nil {
		s.logger.Error("Failed to list new support requests", zap.Error(err))
		return fmt.Errorf("failed to list new support requests: %w", err)
	}

	for _, req := range requests {
		msg := model.SupportForwardMessage{
			SupportRequestID: req.ID,
		}
		if err := queue.PublishSupportForward(ctx, msg); err != nil {
			s.logger.Error("Failed to publish support forward message",
				zap.Int64("request_id", req.ID),
				zap.Error(err),
			)
		}
	}

	return nil
}

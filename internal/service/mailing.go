package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"Lavka/internal/cache"
	"Lavka/internal/dispatch"
	"Lavka/internal/model"
	"Lavka/internal/repository"
	"Lavka/pkg/errors"
	"Lavka/pkg/logger"
)

// MailingService 群发任务编排：创建、取消、抢占、投递、收尾
type MailingService struct{}

var (
	mailingService *MailingService
	mailingOnce    sync.Once
)

func Mailing() *MailingService {
	mailingOnce.Do(func() {
		mailingService = &MailingService{}
	})
	return mailingService
}

// Create 创建群发任务，由操作员触发
func (s *MailingService) Create(ctx context.Context, content string, scheduledAt time.Time, createdBy int64) (*model.Mailing, error) {
	if strings.TrimSpace(content) == "" {
		return nil, errors.MailingEmptyContent
	}
	// 允许一分钟以内的时钟偏差
	if scheduledAt.Before(time.Now().Add(-time.Minute)) {
		return nil, errors.MailingPastSchedule
	}

	m := &model.Mailing{
		Content:     content,
		ScheduledAt: scheduledAt,
		Status:      model.MailingStatusPending,
		CreatedBy:   createdBy,
	}
	if err := repository.Mailings().Create(ctx, m); err != nil {
		return nil, err
	}

	logger.Logger.Info("Mailing created",
		zap.Int64("mailing_id", m.ID),
		zap.Time("scheduled_at", scheduledAt),
		zap.Int64("created_by", createdBy),
	)
	return m, nil
}

func (s *MailingService) Get(ctx context.Context, id int64) (*model.Mailing, error) {
	return repository.Mailings().Get(ctx, id)
}

func (s *MailingService) List(ctx context.Context, limit, offset int) ([]*model.Mailing, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return repository.Mailings().List(ctx, limit, offset)
}

// Cancel 取消未开始的任务。投递已抢占的任务不可取消，当前批次会跑完。
func (s *MailingService) Cancel(ctx context.Context, id int64) error {
	if err := repository.Mailings().Cancel(ctx, id); err != nil {
		return err
	}

	logger.Logger.Info("Mailing cancelled", zap.Int64("mailing_id", id))
	return nil
}

// RunDispatch 执行一次完整投递：抢占 -> 投递 -> 收尾。
// 抢占失败返回 (nil, nil)，表示任务已被其他 worker 处理或已取消。
func (s *MailingService) RunDispatch(ctx context.Context, mailingID int64) (*dispatch.Report, error) {
	mailings := repository.Mailings()

	m, err := mailings.Get(ctx, mailingID)
	if err != nil {
		return nil, err
	}
	if m.Status.IsTerminal() {
		return nil, nil
	}

	now := time.Now()
	claimed, err := mailings.Claim(ctx, mailingID, now)
	if err != nil {
		return nil, err
	}
	if !claimed {
		logger.Logger.Info("Mailing claim lost, skipping",
			zap.Int64("mailing_id", mailingID),
			zap.String("status", string(m.Status)),
		)
		return nil, nil
	}

	return s.dispatchClaimed(ctx, m)
}

// ResumeDispatch 恢复一个停滞的 in_progress 任务。
// 用观察到的 started_at 做乐观抢占，防止两个恢复扫描同时接手。
func (s *MailingService) ResumeDispatch(ctx context.Context, mailingID int64, observedStart time.Time) (*dispatch.Report, error) {
	mailings := repository.Mailings()

	m, err := mailings.Get(ctx, mailingID)
	if err != nil {
		return nil, err
	}
	if m.Status != model.MailingStatusInProgress {
		return nil, nil
	}

	claimed, err := mailings.ClaimStalled(ctx, mailingID, observedStart, time.Now())
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, nil
	}

	logger.Logger.Info("Resuming stalled mailing",
		zap.Int64("mailing_id", mailingID),
		zap.Time("observed_start", observedStart),
	)

	return s.dispatchClaimed(ctx, m)
}

func (s *MailingService) dispatchClaimed(ctx context.Context, m *model.Mailing) (*dispatch.Report, error) {
	report, err := dispatch.Default().Dispatch(ctx, m)
	if err != nil {
		logger.Logger.Error("Dispatch failed",
			zap.Int64("mailing_id", m.ID),
			zap.Error(err),
		)
		// 投递中途出错按部分失败收尾，而不是悬挂在 in_progress
		report.Interrupted = true
	}

	status := report.FinalStatus()
	totalSent := report.Sent + report.ResumedSent

	if err := repository.Mailings().Finish(ctx, m.ID, status, totalSent, report.Blocked, report.TransientFailed, time.Now()); err != nil {
		return &report, err
	}

	s.cacheReport(ctx, m.ID, report)

	return &report, nil
}

func (s *MailingService) cacheReport(ctx context.Context, mailingID int64, report dispatch.Report) {
	payload, err := json.Marshal(report)
	if err != nil {
		return
	}
	if err := cache.CacheDispatchReport(ctx, mailingID, string(payload)); err != nil {
		logger.Logger.Warn("Failed to cache dispatch report",
			zap.Int64("mailing_id", mailingID),
			zap.Error(err),
		)
	}
}

// Report 读取缓存的投递报告，缓存缺失时从审计记录现算
func (s *MailingService) Report(ctx context.Context, mailingID int64) (*dispatch.Report, error) {
	cached, err := cache.GetDispatchReport(ctx, mailingID)
	if err == nil && cached != "" {
		var report dispatch.Report
		if err := json.Unmarshal([]byte(cached), &report); err == nil {
			return &report, nil
		}
	}

	m, err := repository.Mailings().Get(ctx, mailingID)
	if err != nil {
		return nil, err
	}

	return &dispatch.Report{
		Sent:            m.SentCount,
		Blocked:         m.BlockedCount,
		TransientFailed: m.TransientCount,
	}, nil
}

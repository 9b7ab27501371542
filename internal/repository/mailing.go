package repository

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"

	"Lavka/internal/model"
	"Lavka/pkg/errors"
	"Lavka/storage/database"
)

// MailingRepo 群发任务持久层。
// 状态流转全部走条件更新，RowsAffected == 0 表示竞争失败或状态不符。
type MailingRepo struct {
	db *gorm.DB
}

var (
	mailingRepo     *MailingRepo
	mailingRepoOnce sync.Once
)

func Mailings() *MailingRepo {
	mailingRepoOnce.Do(func() {
		mailingRepo = &MailingRepo{db: database.DB()}
	})
	return mailingRepo
}

func NewMailingRepo(db *gorm.DB) *MailingRepo {
	return &MailingRepo{db: db}
}

func (r *MailingRepo) Create(ctx context.Context, m *model.Mailing) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *MailingRepo) Get(ctx context.Context, id int64) (*model.Mailing, error) {
	var m model.Mailing
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, errors.MailingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MailingRepo) List(ctx context.Context, limit, offset int) ([]*model.Mailing, error) {
	var mailings []*model.Mailing
	err := r.db.WithContext(ctx).
		Order("scheduled_at DESC").
		Limit(limit).Offset(offset).
		Find(&mailings).Error
	return mailings, err
}

// PromoteDue 将到期的 pending 任务批量提升为 ready，返回提升后的任务列表
func (r *MailingRepo) PromoteDue(ctx context.Context, now time.Time) ([]*model.Mailing, error) {
	err := r.db.WithContext(ctx).
		Model(&model.Mailing{}).
		Where("status = ? AND scheduled_at <= ?", model.MailingStatusPending, now).
		Update("status", model.MailingStatusReady).Error
	if err != nil {
		return nil, err
	}

	var ready []*model.Mailing
	err = r.db.WithContext(ctx).
		Where("status = ?", model.MailingStatusReady).
		Order("scheduled_at ASC").
		Find(&ready).Error
	return ready, err
}

// Claim 原子抢占：ready -> in_progress，成功返回 true。
// 恢复路径允许从 in_progress 再次抢占（recovered 为 true 时），
// 此时仅校验任务仍处于 in_progress 且已停滞。
func (r *MailingRepo) Claim(ctx context.Context, id int64, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Mailing{}).
		Where("id = ? AND status IN ?", id, []model.MailingStatus{model.MailingStatusPending, model.MailingStatusReady}).
		Updates(map[string]interface{}{
			"status":     model.MailingStatusInProgress,
			"started_at": now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ClaimStalled 抢占一个停滞的 in_progress 任务用于恢复。
// 用 started_at 做乐观锁：只有观察到的停滞时间点未变时才能抢到。
func (r *MailingRepo) ClaimStalled(ctx context.Context, id int64, observedStart time.Time, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Mailing{}).
		Where("id = ? AND status = ? AND started_at = ?", id, model.MailingStatusInProgress, observedStart).
		Update("started_at", now)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Cancel 条件取消：仅 pending / ready 可取消。
// 返回 MailingNotCancellable 表示任务已被抢占或已终态。
func (r *MailingRepo) Cancel(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).
		Model(&model.Mailing{}).
		Where("id = ? AND status IN ?", id, []model.MailingStatus{model.MailingStatusPending, model.MailingStatusReady}).
		Update("status", model.MailingStatusCancelled)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var m model.Mailing
		if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err == gorm.ErrRecordNotFound {
			return errors.MailingNotFound
		}
		return errors.MailingNotCancellable
	}
	return nil
}

// Finish 写入终态和投递计数。只允许从 in_progress 收尾。
func (r *MailingRepo) Finish(ctx context.Context, id int64, status model.MailingStatus, sent, blocked, transient int, now time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.Mailing{}).
		Where("id = ? AND status = ?", id, model.MailingStatusInProgress).
		Updates(map[string]interface{}{
			"status":          status,
			"sent_count":      sent,
			"blocked_count":   blocked,
			"transient_count": transient,
			"finished_at":     now,
		}).Error
}

// ListStalled 查找停滞的 in_progress 任务，用于崩溃恢复
func (r *MailingRepo) ListStalled(ctx context.Context, olderThan time.Time) ([]*model.Mailing, error) {
	var stalled []*model.Mailing
	err := r.db.WithContext(ctx).
		Where("status = ? AND started_at < ?", model.MailingStatusInProgress, olderThan).
		Find(&stalled).Error
	return stalled, err
}

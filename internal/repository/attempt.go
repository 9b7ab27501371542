package repository

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"

	"Lavka/internal/model"
	"Lavka/storage/database"
)

// AttemptRepo 投递尝试审计记录持久层，只追加
type AttemptRepo struct {
	db *gorm.DB
}

var (
	attemptRepo     *AttemptRepo
	attemptRepoOnce sync.Once
)

func Attempts() *AttemptRepo {
	attemptRepoOnce.Do(func() {
		attemptRepo = &AttemptRepo{db: database.DB()}
	})
	return attemptRepo
}

func NewAttemptRepo(db *gorm.DB) *AttemptRepo {
	return &AttemptRepo{db: db}
}

// Append 追加一条尝试记录，attempt_number 由调用方维护严格递增
func (r *AttemptRepo) Append(ctx context.Context, a *model.DeliveryAttempt) error {
	if a.AttemptedAt.IsZero() {
		a.AttemptedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(a).Error
}

// SentRecipientIDs 返回该任务下已有 sent 记录的收件人 id 集合，供续传时跳过
func (r *AttemptRepo) SentRecipientIDs(ctx context.Context, mailingID int64) (map[int64]struct{}, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&model.DeliveryAttempt{}).
		Where("mailing_id = ? AND outcome = ?", mailingID, model.AttemptOutcomeSent).
		Pluck("recipient_id", &ids).Error
	if err != nil {
		return nil, err
	}

	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// LastAttemptNumber 返回 (mailing, recipient) 的最大尝试序号，无记录时为 0
func (r *AttemptRepo) LastAttemptNumber(ctx context.Context, mailingID, recipientID int64) (int, error) {
	var max *int
	err := r.db.WithContext(ctx).
		Model(&model.DeliveryAttempt{}).
		Where("mailing_id = ? AND recipient_id = ?", mailingID, recipientID).
		Select("MAX(attempt_number)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

// ListByMailing 按时间序返回一个任务的全部尝试记录
func (r *AttemptRepo) ListByMailing(ctx context.Context, mailingID int64) ([]*model.DeliveryAttempt, error) {
	var attempts []*model.DeliveryAttempt
	err := r.db.WithContext(ctx).
		Where("mailing_id = ?", mailingID).
		Order("attempted_at ASC, attempt_number ASC").
		Find(&attempts).Error
	return attempts, err
}

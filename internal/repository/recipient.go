package repository

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"Lavka/internal/model"
	"Lavka/pkg/errors"
	"Lavka/storage/database"
)

// RecipientRepo 收件人持久层
type RecipientRepo struct {
	db *gorm.DB
}

var (
	recipientRepo     *RecipientRepo
	recipientRepoOnce sync.Once
)

func Recipients() *RecipientRepo {
	recipientRepoOnce.Do(func() {
		recipientRepo = &RecipientRepo{db: database.DB()}
	})
	return recipientRepo
}

func NewRecipientRepo(db *gorm.DB) *RecipientRepo {
	return &RecipientRepo{db: db}
}

// Upsert 按 chat_id 建档或刷新资料，用户每次 /start 都会走到这里。
// 不改动 reachable：拉黑标记只能由操作员手动重置。
func (r *RecipientRepo) Upsert(ctx context.Context, chatID int64, username, firstName string) error {
	rec := model.Recipient{
		ChatID:    chatID,
		Username:  username,
		FirstName: firstName,
		Reachable: true,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "chat_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"username", "first_name", "updated_at",
		}),
	}).Create(&rec).Error
}

func (r *RecipientRepo) GetByChatID(ctx context.Context, chatID int64) (*model.Recipient, error) {
	var rec model.Recipient
	err := r.db.WithContext(ctx).First(&rec, "chat_id = ?", chatID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, errors.RecipientNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListReachable 返回全部可达收件人，投递器的收件人全集
func (r *RecipientRepo) ListReachable(ctx context.Context) ([]*model.Recipient, error) {
	var recipients []*model.Recipient
	err := r.db.WithContext(ctx).
		Where("reachable = ?", true).
		Order("id ASC").
		Find(&recipients).Error
	return recipients, err
}

// MarkBlocked 单向翻转可达标记，重复调用无害
func (r *RecipientRepo) MarkBlocked(ctx context.Context, id int64, now time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.Recipient{}).
		Where("id = ? AND reachable = ?", id, true).
		Updates(map[string]interface{}{
			"reachable":       false,
			"last_contact_at": now,
		}).Error
}

// ResetBlocked 操作员手动恢复可达标记
func (r *RecipientRepo) ResetBlocked(ctx context.Context, chatID int64) error {
	result := r.db.WithContext(ctx).
		Model(&model.Recipient{}).
		Where("chat_id = ?", chatID).
		Update("reachable", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.RecipientNotFound
	}
	return nil
}

// TouchContact 记录最近一次成功触达时间
func (r *RecipientRepo) TouchContact(ctx context.Context, id int64, now time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.Recipient{}).
		Where("id = ?", id).
		Update("last_contact_at", now).Error
}

// Counts 返回 (总数, 可达数)，用于操作员统计
func (r *RecipientRepo) Counts(ctx context.Context) (total int64, reachable int64, err error) {
	if err = r.db.WithContext(ctx).Model(&model.Recipient{}).Count(&total).Error; err != nil {
		return
	}
	err = r.db.WithContext(ctx).Model(&model.Recipient{}).Where("reachable = ?", true).Count(&reachable).Error
	return
}

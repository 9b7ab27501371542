package repository

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"

	"Lavka/internal/model"
	"Lavka/storage/database"
)

// SupportRepo 支持请求持久层
type SupportRepo struct {
	db *gorm.DB
}

var (
	supportRepo     *SupportRepo
	supportRepoOnce sync.Once
)

func Support() *SupportRepo {
	supportRepoOnce.Do(func() {
		supportRepo = &SupportRepo{db: database.DB()}
	})
	return supportRepo
}

func NewSupportRepo(db *gorm.DB) *SupportRepo {
	return &SupportRepo{db: db}
}

func (r *SupportRepo) Create(ctx context.Context, req *model.SupportRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *SupportRepo) Get(ctx context.Context, id int64) (*model.SupportRequest, error) {
	var req model.SupportRequest
	if err := r.db.WithContext(ctx).First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// ListNew 返回尚未转发的请求
func (r *SupportRepo) ListNew(ctx context.Context, limit int) ([]*model.SupportRequest, error) {
	var reqs []*model.SupportRequest
	err := r.db.WithContext(ctx).
		Where("status = ?", model.SupportRequestStatusNew).
		Order("id ASC").
		Limit(limit).
		Find(&reqs).Error
	return reqs, err
}

// MarkForwarded 条件更新 new -> forwarded，返回 false 表示已被其他 worker 处理
func (r *SupportRepo) MarkForwarded(ctx context.Context, id int64, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.SupportRequest{}).
		Where("id = ? AND status = ?", id, model.SupportRequestStatusNew).
		Updates(map[string]interface{}{
			"status":       model.SupportRequestStatusForwarded,
			"forwarded_at": now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *SupportRepo) Close(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Model(&model.SupportRequest{}).
		Where("id = ?", id).
		Update("status", model.SupportRequestStatusClosed).Error
}

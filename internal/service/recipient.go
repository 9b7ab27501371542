package service

import (
	"context"
	"sync"

	"Lavka/internal/model"
	"Lavka/internal/repository"
)

// RecipientService 收件人档案
type RecipientService struct{}

var (
	recipientService *RecipientService
	recipientOnce    sync.Once
)

func Recipient() *RecipientService {
	recipientOnce.Do(func() {
		recipientService = &RecipientService{}
	})
	return recipientService
}

// Register 用户 /start 时建档或刷新资料
func (s *RecipientService) Register(ctx context.Context, chatID int64, username, firstName string) error {
	return repository.Recipients().Upsert(ctx, chatID, username, firstName)
}

func (s *RecipientService) Get(ctx context.Context, chatID int64) (*model.Recipient, error) {
	return repository.Recipients().GetByChatID(ctx, chatID)
}

// Unblock 操作员手动恢复可达标记，唯一的 blocked -> reachable 通道
func (s *RecipientService) Unblock(ctx context.Context, chatID int64) error {
	return repository.Recipients().ResetBlocked(ctx, chatID)
}

// Stats 收件人统计，给操作员看
type RecipientStats struct {
	Total     int64 `json:"total"`
	Reachable int64 `json:"reachable"`
	Blocked   int64 `json:"blocked"`
}

func (s *RecipientService) Stats(ctx context.Context) (*RecipientStats, error) {
	total, reachable, err := repository.Recipients().Counts(ctx)
	if err != nil {
		return nil, err
	}
	return &RecipientStats{
		Total:     total,
		Reachable: reachable,
		Blocked:   total - reachable,
	}, nil
}

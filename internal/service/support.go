package service

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"Lavka/internal/model"
	"Lavka/internal/repository"
	"Lavka/pkg/errors"
	"Lavka/pkg/logger"
)

// SupportService 用户支持请求
type SupportService struct{}

var (
	supportService *SupportService
	supportOnce    sync.Once
)

func SupportRequests() *SupportService {
	supportOnce.Do(func() {
		supportService = &SupportService{}
	})
	return supportService
}

// Submit 用户提交支持请求，落库后由后台扫描转发给操作员
func (s *SupportService) Submit(ctx context.Context, userChatID int64, text string) (*model.SupportRequest, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.SupportRequestEmpty
	}

	req := &model.SupportRequest{
		UserChatID: userChatID,
		Text:       text,
		Status:     model.SupportRequestStatusNew,
	}
	if err := repository.Support().Create(ctx, req); err != nil {
		return nil, err
	}

	logger.Logger.Info("Support request submitted",
		zap.Int64("request_id", req.ID),
		zap.Int64("user_chat_id", userChatID),
	)
	return req, nil
}

func (s *SupportService) Close(ctx context.Context, id int64) error {
	return repository.Support().Close(ctx, id)
}

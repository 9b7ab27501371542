package queue

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"Lavka/internal/model"
	"Lavka/pkg/logger"
	"Lavka/pkg/snowflake"
	"Lavka/storage/mq"
)

// PublishMailingDispatch 发布群发投递消息。
// 消息只是触发信号：worker 侧以数据库条件更新抢占，重复消息无害。
func PublishMailingDispatch(ctx context.Context, msg model.MailingDispatchMessage) error {
	if msg.MessageID == "" {
		id, err := snowflake.NextMessageID("mailing_dispatch")
		if err != nil {
			logger.Logger.Error("Failed to generate message ID",
				zap.Int64("mailing_id", msg.MailingID),
				zap.Error(err),
			)
			return fmt.Errorf("failed to generate message ID: %w", err)
		}
		msg.MessageID = id
	}
	if msg.EnqueuedAt == "" {
		msg.EnqueuedAt = time.Now().Format(time.RFC3339)
	}

	err := mq.PublishMessage(
		ctx,
		mq.ExchangeDispatch,
		mq.RoutingKeyMailingDispatch,
		msg,
	)

	if err != nil {
		logger.Logger.Error("Failed to publish mailing dispatch message",
			zap.Int64("mailing_id", msg.MailingID),
			zap.Error(err),
		)
		return err
	}

	logger.Logger.Info("Published mailing dispatch message",
		zap.String("message_id", msg.MessageID),
		zap.Int64("mailing_id", msg.MailingID),
		zap.Bool("recovered", msg.Recovered),
	)

	return nil
}

// PublishSupportForward 发布支持请求转发消息
func PublishSupportForward(ctx context.Context, msg model.SupportForwardMessage) error {
	if msg.MessageID == "" {
		id, err := snowflake.NextMessageID("support_forward")
		if err != nil {
			return fmt.Errorf("failed to generate message ID: %w", err)
		}
		msg.MessageID = id
	}
	if msg.EnqueuedAt == "" {
		msg.EnqueuedAt = time.Now().Format(time.RFC3339)
	}

	err := mq.PublishMessage(
		ctx,
		mq.ExchangeDispatch,
		mq.RoutingKeySupportForward,
		msg,
	)

	if err != nil {
		logger.Logger.Error("Failed to publish support forward message",
			zap.Int64("support_request_id", msg.SupportRequestID),
			zap.Error(err),
		)
		return err
	}

	logger.Logger.Info("Published support forward message",
		zap.String("message_id", msg.MessageID),
		zap.Int64("support_request_id", msg.SupportRequestID),
	)

	return nil
}

package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"Lavka/config"
	"Lavka/internal/cache"
	"Lavka/internal/dispatch"
	"Lavka/internal/model"
	"Lavka/internal/repository"
	"Lavka/internal/service"
	"Lavka/pkg/errors"
	"Lavka/pkg/gateway"
	"Lavka/pkg/logger"
	"Lavka/storage/mq"
)

// adminNotifier 操作员侧 bot 的网关，由 worker 启动时注入
var adminNotifier gateway.Client

// SetAdminNotifier 设置操作员通知网关（在 worker 启动时调用）
func SetAdminNotifier(c gateway.Client) {
	adminNotifier = c
}

// StartMailingDispatchConsumer 启动群发投递消费者。
// redis 标记挡掉明显的重复消息；真正的单次投递保证来自
// 数据库层的条件抢占，消息最多触发一次成功的抢占。
func StartMailingDispatchConsumer(ctx context.Context) error {
	handler := func(body []byte) error {
		var msg model.MailingDispatchMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			return fmt.Errorf("failed to unmarshal mailing dispatch message: %w", err)
		}

		processed, err := cache.TryMarkMessageProcessing(ctx, msg.MessageID, 24*time.Hour)
		if err != nil {
			logger.Logger.Warn("Failed to check message processed status",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
			// 检查失败时继续处理，数据库抢占兜底
		} else if !processed {
			return &errors.SkipMessageError{Reason: fmt.Sprintf("Message %s already processed", msg.MessageID)}
		}

		logger.Logger.Info("Processing mailing dispatch",
			zap.String("message_id", msg.MessageID),
			zap.Int64("mailing_id", msg.MailingID),
			zap.Bool("recovered", msg.Recovered),
		)

		report, err := runDispatch(ctx, msg)
		if err != nil {
			// 处理失败，取消标记，允许重试
			if unmarkErr := cache.UnmarkMessageProcessing(ctx, msg.MessageID); unmarkErr != nil {
				logger.Logger.Warn("Failed to unmark message processing",
					zap.String("message_id", msg.MessageID),
					zap.Error(unmarkErr),
				)
			}
			return fmt.Errorf("failed to dispatch mailing %d: %w", msg.MailingID, err)
		}

		if report == nil {
			logger.Logger.Info("Mailing already claimed elsewhere, nothing to do",
				zap.Int64("mailing_id", msg.MailingID),
			)
		}

		if err := cache.MarkMessageProcessed(ctx, msg.MessageID, 48*time.Hour); err != nil {
			logger.Logger.Warn("Failed to mark message as processed",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
		}

		return nil
	}

	return mq.Consume(mq.ConsumeOptions{
		Queue:         mq.QueueMailingDispatch,
		ConsumerTag:   "mailing_dispatch_consumer",
		PrefetchCount: 1, // 投递是长任务，一次只取一条
		Handler:       handler,
	})
}

func runDispatch(ctx context.Context, msg model.MailingDispatchMessage) (*dispatch.Report, error) {
	if msg.Recovered {
		observedStart, err := time.Parse(time.RFC3339, msg.ObservedStartedAt)
		if err != nil {
			return nil, &errors.SkipMessageError{Reason: fmt.Sprintf("bad observed_started_at %q", msg.ObservedStartedAt)}
		}
		return service.Mailing().ResumeDispatch(ctx, msg.MailingID, observedStart)
	}

	return service.Mailing().RunDispatch(ctx, msg.MailingID)
}

// StartSupportForwardConsumer 启动支持请求转发消费者，
// 把用户的求助消息推送到所有管理员的聊天
func StartSupportForwardConsumer(ctx context.Context) error {
	handler := func(body []byte) error {
		var msg model.SupportForwardMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			return fmt.Errorf("failed to unmarshal support forward message: %w", err)
		}

		processed, err := cache.TryMarkMessageProcessing(ctx, msg.MessageID, 24*time.Hour)
		if err != nil {
			logger.Logger.Warn("Failed to check message processed status",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
		} else if !processed {
			return &errors.SkipMessageError{Reason: fmt.Sprintf("Message %s already processed", msg.MessageID)}
		}

		req, err := repository.Support().Get(ctx, msg.SupportRequestID)
		if err != nil {
			cache.UnmarkMessageProcessing(ctx, msg.MessageID)
			return fmt.Errorf("failed to load support request %d: %w", msg.SupportRequestID, err)
		}

		// 条件更新 new -> forwarded 作为抢占，输掉竞争就跳过
		claimed, err := repository.Support().MarkForwarded(ctx, req.ID, time.Now())
		if err != nil {
			cache.UnmarkMessageProcessing(ctx, msg.MessageID)
			return err
		}
		if !claimed {
			return &errors.SkipMessageError{Reason: fmt.Sprintf("support request %d already forwarded", req.ID)}
		}

		if adminNotifier == nil {
			return fmt.Errorf("admin notifier not configured")
		}

		text := fmt.Sprintf("Support request #%d from %d:\n%s", req.ID, req.UserChatID, req.Text)
		for _, adminID := range config.Cfg.AdminIDs() {
			if _, err := adminNotifier.SendMessage(ctx, adminID, text); err != nil {
				logger.Logger.Warn("Failed to forward support request to admin",
					zap.Int64("admin_chat_id", adminID),
					zap.Int64("request_id", req.ID),
					zap.Error(err),
				)
			}
		}

		if err := cache.MarkMessageProcessed(ctx, msg.MessageID, 48*time.Hour); err != nil {
			logger.Logger.Warn("Failed to mark message as processed",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
		}

		return nil
	}

	return mq.Consume(mq.ConsumeOptions{
		Queue:         mq.QueueSupportForward,
		ConsumerTag:   "support_forward_consumer",
		PrefetchCount: 10,
		Handler:       handler,
	})
}

// StartAllConsumers 启动所有消费者（在 worker 启动时调用）
func StartAllConsumers(ctx context.Context) {
	var wg sync.WaitGroup

	consumers := []struct {
		name     string
		consumer func(context.Context) error
	}{
		{"mailing_dispatch", StartMailingDispatchConsumer},
		{"support_forward", StartSupportForwardConsumer},
	}

	for _, c := range consumers {
		wg.Add(1)
		go func(name string, consumer func(context.Context) error) {
			defer wg.Done()

			logger.Logger.Info("Starting consumer",
				zap.String("consumer_name", name),
			)

			if err := consumer(ctx); err != nil {
				logger.Logger.Error("Consumer exited with error",
					zap.String("consumer_name", name),
					zap.Error(err),
				)
			}
		}(c.name, c.consumer)
	}

	wg.Wait()
}

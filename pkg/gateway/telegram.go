package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	bizerrors "Lavka/pkg/errors"
	"Lavka/pkg/logger"
)

// TelegramClient 基于 Bot API 的网关实现
type TelegramClient struct {
	bot *tgbotapi.BotAPI
}

func NewTelegramClient(token string) (*TelegramClient, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token is empty")
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	logger.Logger.Info("Telegram gateway authorized",
		zap.String("bot_username", bot.Self.UserName),
	)

	return &TelegramClient{bot: bot}, nil
}

func (c *TelegramClient) SendMessage(ctx context.Context, chatID int64, text string) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return OutcomeTransient, err
	}

	msg := tgbotapi.NewMessage(chatID, text)
	_, err := c.bot.Send(msg)
	if err == nil {
		return OutcomeOK, nil
	}

	outcome := classify(err)

	logger.Logger.Debug("Telegram send failed",
		zap.Int64("chat_id", chatID),
		zap.String("outcome", outcome.String()),
		zap.Error(err),
	)

	if outcome == OutcomeBlocked {
		// 永久失败统一包成不可重试错误，调用方不必再认识 Bot API 的错误形状
		err = bizerrors.NewNonRetryableError("RECIPIENT_UNREACHABLE", "recipient cannot receive messages", err.Error())
	}

	return outcome, err
}

// classify 将 Bot API 错误归入 Blocked / Transient 两类。
// 403 表示收件人已拉黑 bot 或注销账号；429 和 5xx 以及网络错误都可以稍后重试。
func classify(err error) Outcome {
	if bizerrors.IsNonRetryableError(err) {
		return OutcomeBlocked
	}

	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusForbidden:
			return OutcomeBlocked
		case apiErr.Code == http.StatusBadRequest && strings.Contains(apiErr.Message, "chat not found"):
			return OutcomeBlocked
		case apiErr.Code == http.StatusTooManyRequests:
			return OutcomeTransient
		case apiErr.Code >= 500:
			return OutcomeTransient
		default:
			return OutcomeTransient
		}
	}

	// 非 API 错误：网络超时、连接被重置等
	return OutcomeTransient
}

// RetryAfter 从 429 错误中提取服务端建议的等待时长，没有则返回 0。
func RetryAfter(err error) time.Duration {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
		return time.Duration(apiErr.RetryAfter) * time.Second
	}
	return 0
}

var _ Client = (*TelegramClient)(nil)

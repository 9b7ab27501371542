package gateway

import (
	"context"
	"fmt"
	"sync"

	"Lavka/config"
	"Lavka/pkg/logger"

	"go.uber.org/zap"
)

// Outcome 单次发送的分类结果，失败一律归入 Blocked 或 Transient 两类。
type Outcome int

const (
	OutcomeOK Outcome = iota
	// OutcomeBlocked 收件人拉黑了 bot，永久性失败，不再重试
	OutcomeBlocked
	// OutcomeTransient 限流、网络错误或网关侧 5xx，可以重试
	OutcomeTransient
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeBlocked:
		return "blocked"
	case OutcomeTransient:
		return "transient"
	default:
		return "unknown"
	}
}

// Client 消息网关接口
type Client interface {
	// SendMessage 向 chatID 发送一条文本消息，返回分类后的结果。
	// Outcome 非 OK 时 err 携带原始失败原因。
	SendMessage(ctx context.Context, chatID int64, text string) (Outcome, error)
}

var (
	gwClient Client
	gwOnce   sync.Once
	gwErr    error
)

// Init 初始化消息网关客户端
func Init() error {
	gwOnce.Do(func() {
		cfg := config.Cfg

		switch cfg.GatewayProvider {
		case "telegram":
			gwClient, gwErr = NewTelegramClient(cfg.UserBotToken)
		case "mock":
			gwClient = NewMockClient()
		default:
			gwErr = fmt.Errorf("unsupported gateway provider: %s", cfg.GatewayProvider)
		}

		if gwErr != nil {
			logger.Logger.Error("Failed to initialize gateway client", zap.Error(gwErr))
			return
		}

		logger.Logger.Info("Gateway client initialized successfully",
			zap.String("provider", cfg.GatewayProvider),
		)
	})

	return gwErr
}

func GetClient() Client {
	if gwClient == nil {
		panic("gateway client not initialized, call gateway.Init() first")
	}
	return gwClient
}

func SendMessage(ctx context.Context, chatID int64, text string) (Outcome, error) {
	return GetClient().SendMessage(ctx, chatID, text)
}

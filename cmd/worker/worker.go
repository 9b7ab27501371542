package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"Lavka/config"
	"Lavka/internal/queue"
	"Lavka/pkg/gateway"
	"Lavka/pkg/logger"
	"Lavka/pkg/metrics"
	"Lavka/pkg/otel"
	"Lavka/pkg/snowflake"
	"Lavka/storage"
)

func main() {

	logger.Init()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Logger.Info("Received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	if config.Cfg.OTLPEndpoint != "" {
		shutdown, err := otel.InitOpenTelemetry(ctx, otel.Config{
			ServiceName:    "lavka-worker",
			ServiceVersion: "1.0.0",
			Environment:    config.Cfg.Environment,
			OTLPEndpoint:   config.Cfg.OTLPEndpoint,
		})
		if err != nil {
			logger.Logger.Warn("Failed to initialize OpenTelemetry", zap.Error(err))
		} else {
			defer shutdown(context.Background())
		}
	}

	// 没有 OTLP 时全局 provider 是 no-op，指标照常注册
	if err := metrics.InitMetrics(); err != nil {
		logger.Logger.Warn("Failed to register metrics instruments", zap.Error(err))
	}

	if err := storage.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer storage.Close()

	// 考虑之后循环启动不同的 snowflakeID
	if err := snowflake.Init(config.Cfg.SnowflakeMachineID, config.Cfg.SnowflakeDataCenter); err != nil {
		logger.Logger.Fatal("Failed to initialize snowflake", zap.Error(err))
	}

	// 顾客侧 bot 网关，群发投递依赖它
	if err := gateway.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize message gateway", zap.Error(err))
	}

	// 操作员侧 bot 网关，客服留言转发依赖它；缺少 token 时只降级告警
	if config.Cfg.AdminBotToken != "" {
		notifier, err := gateway.NewTelegramClient(config.Cfg.AdminBotToken)
		if err != nil {
			logger.Logger.Warn("Failed to initialize admin notifier", zap.Error(err))
		} else {
			queue.SetAdminNotifier(notifier)
		}
	} else {
		logger.Logger.Warn("Admin bot token not configured, support forwarding disabled")
	}

	logger.Logger.Info("Worker service starting",
		zap.String("service", "lavka-worker"),
		zap.String("environment", config.Cfg.Environment),
	)

	// 启动所有的消费者部分
	queue.StartAllConsumers(ctx)

	logger.Logger.Info("Worker service shutting down gracefully")
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"Lavka/config"
	"Lavka/internal/schedule"
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

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Logger.Info("Scheduler received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	if config.Cfg.OTLPEndpoint != "" {
		shutdown, err := otel.InitOpenTelemetry(ctx, otel.Config{
			ServiceName:    "lavka-scheduler",
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
		logger.Logger.Fatal("Failed to initialize storage for scheduler", zap.Error(err))
	}
	defer storage.Close()

	// 考虑与 worker 和 server 作区分
	if err := snowflake.Init(config.Cfg.SnowflakeMachineID, config.Cfg.SnowflakeDataCenter); err != nil {
		logger.Logger.Fatal("Failed to initialize snowflake for scheduler", zap.Error(err))
	}

	logger.Logger.Info("Scheduler service starting",
		zap.String("service", "lavka-scheduler"),
		zap.String("environment", config.Cfg.Environment),
	)

	go runMailingPollLoop(ctx)
	go runStalledRecoveryLoop(ctx)
	go runSupportSweepLoop(ctx)

	<-ctx.Done()

	logger.Logger.Info("Scheduler service shutting down gracefully")
}

// runMailingPollLoop 周期性把到点的群发置为 ready 并投递触发消息
func runMailingPollLoop(ctx context.Context) {
	s := schedule.GetScheduler()

	interval := time.Duration(config.Cfg.SchedulerInterval) * time.Second
	if config.Cfg.IsDevelopment() {
		interval = 10 * time.Second
		logger.Logger.Info("Mailing poll loop running in development mode with 10s interval")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
			if err := s.Poll(runCtx); err != nil {
				logger.Logger.Error("Mailing poll run failed", zap.Error(err))
			}
			cancel()
		}
	}
}

// runStalledRecoveryLoop 周期性扫描长时间停留在 in_progress 的群发并补投恢复消息
// 间隔取停滞阈值的一半，保证每条停滞任务最多等待 1.5 个阈值就会被发现
func runStalledRecoveryLoop(ctx context.Context) {
	s := schedule.GetScheduler()

	interval := time.Duration(config.Cfg.MailingStallAfter/2) * time.Second
	if config.Cfg.IsDevelopment() {
		interval = 1 * time.Minute
		logger.Logger.Info("Stalled recovery loop running in development mode with 1m interval")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
			if err := s.RecoverStalled(runCtx); err != nil {
				logger.Logger.Error("Stalled mailing recovery run failed", zap.Error(err))
			}
			cancel()
		}
	}
}

// runSupportSweepLoop 周期性兜底扫描未转发的客服留言
func runSupportSweepLoop(ctx context.Context) {
	s := schedule.GetScheduler()

	interval := time.Duration(config.Cfg.SupportSweepInterval) * time.Second
	if config.Cfg.IsDevelopment() {
		interval = 30 * time.Second
		logger.Logger.Info("Support sweep loop running in development mode with 30s interval")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runCtx, cancel := context.WithTimeout(ctx, 1*time.Minute)
			if err := s.SweepSupportRequests(runCtx); err != nil {
				logger.Logger.Error("Support sweep run failed", zap.Error(err))
			}
			cancel()
		}
	}
}

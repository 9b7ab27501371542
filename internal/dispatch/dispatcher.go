package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"Lavka/config"
	"Lavka/internal/model"
	"Lavka/internal/repository"
	"Lavka/pkg/gateway"
	"Lavka/pkg/logger"
	"Lavka/pkg/metrics"
)

// RecipientStore 投递器需要的收件人操作
type RecipientStore interface {
	ListReachable(ctx context.Context) ([]*model.Recipient, error)
	MarkBlocked(ctx context.Context, id int64, now time.Time) error
	TouchContact(ctx context.Context, id int64, now time.Time) error
}

// AttemptStore 投递尝试审计记录操作
type AttemptStore interface {
	Append(ctx context.Context, a *model.DeliveryAttempt) error
	SentRecipientIDs(ctx context.Context, mailingID int64) (map[int64]struct{}, error)
	LastAttemptNumber(ctx context.Context, mailingID, recipientID int64) (int, error)
}

// Report 一次投递的汇总结果。
// Interrupted 表示时间预算耗尽，仍有收件人未处理。
type Report struct {
	Sent            int  `json:"sent"`
	Blocked         int  `json:"blocked"`
	TransientFailed int  `json:"transiently_failed"`
	Interrupted     bool `json:"interrupted,omitempty"`
	// ResumedSent 续传时跳过的已送达收件人数，不计入 Sent
	ResumedSent int `json:"resumed_sent,omitempty"`
}

// FinalStatus 由报告推导任务终态：
// 所有收件人都落在 sent 或永久失败上才算 completed
func (r Report) FinalStatus() model.MailingStatus {
	if r.TransientFailed == 0 && !r.Interrupted {
		return model.MailingStatusCompleted
	}
	return model.MailingStatusPartiallyFailed
}

// Options 投递参数
type Options struct {
	RatePerSec  int           // 网关发送速率上限
	Burst       int           // 令牌桶容量
	MaxAttempts int           // 单收件人最大尝试次数，含首发
	Budget      time.Duration // 单次投递的总时长预算
}

// Dispatcher 群发投递器。限速器对所有发送（含重试）统一计数，
// 重试风暴也不可能突破速率上限。
type Dispatcher struct {
	recipients RecipientStore
	attempts   AttemptStore
	gw         gateway.Client
	limiter    *rate.Limiter
	opts       Options
}

var (
	dispatcher     *Dispatcher
	dispatcherOnce sync.Once
)

// Default 返回基于默认仓储和网关的投递器单例
func Default() *Dispatcher {
	dispatcherOnce.Do(func() {
		cfg := config.Cfg
		dispatcher = New(
			repository.Recipients(),
			repository.Attempts(),
			gateway.GetClient(),
			Options{
				RatePerSec:  cfg.MailingSendRatePerSec,
				MaxAttempts: cfg.MailingMaxSendAttempts,
				Budget:      time.Duration(cfg.MailingDispatchBudget) * time.Second,
			},
		)
	})
	return dispatcher
}

func New(recipients RecipientStore, attempts AttemptStore, gw gateway.Client, opts Options) *Dispatcher {
	// 桶容量默认为 1：满桶会让任意 1 秒滑动窗口里的发送数
	// 冲到 rate+burst，严格匀速才守得住每秒上限
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}

	return &Dispatcher{
		recipients: recipients,
		attempts:   attempts,
		gw:         gw,
		limiter:    rate.NewLimiter(rate.Limit(opts.RatePerSec), opts.Burst),
		opts:       opts,
	}
}

// Dispatch 向任务的全部可达收件人投递消息。
// 收件人集合 = 可达收件人 − 本任务已有 sent 记录的收件人，
// 因此中断后重跑不会重复触达任何人。
func (d *Dispatcher) Dispatch(ctx context.Context, mailing *model.Mailing) (Report, error) {
	start := time.Now()
	report := Report{}

	if d.opts.Budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.opts.Budget)
		defer cancel()
	}

	if m := metrics.GetMetrics(); m != nil {
		m.AddActiveDispatch(ctx)
		defer m.SubtractActiveDispatch(context.Background())
	}

	recipients, err := d.recipients.ListReachable(ctx)
	if err != nil {
		return report, err
	}

	alreadySent, err := d.attempts.SentRecipientIDs(ctx, mailing.ID)
	if err != nil {
		return report, err
	}
	report.ResumedSent = len(alreadySent)

	logger.Logger.Info("Dispatch started",
		zap.Int64("mailing_id", mailing.ID),
		zap.Int("reachable", len(recipients)),
		zap.Int("already_sent", len(alreadySent)),
	)

	for _, recipient := range recipients {
		if _, done := alreadySent[recipient.ID]; done {
			continue
		}

		if ctx.Err() != nil {
			report.Interrupted = true
			break
		}

		outcome, err := d.deliverOne(ctx, mailing, recipient)
		if err != nil {
			// 预算耗尽或存储故障，当前收件人未得出结论，余下的留给续传。
			// 注意限速器在预算不足以等到下一个令牌时就会先报错，
			// 此时 ctx.Err() 仍可能是 nil，同样算中断。
			report.Interrupted = true
			logger.Logger.Warn("Dispatch interrupted",
				zap.Int64("mailing_id", mailing.ID),
				zap.Int64("recipient_id", recipient.ID),
				zap.Error(err),
			)
			break
		}

		switch outcome {
		case model.AttemptOutcomeSent:
			report.Sent++
			metrics.RecordDelivery(mailing.ID, "sent")
		case model.AttemptOutcomePermanentFailure:
			report.Blocked++
			metrics.RecordDelivery(mailing.ID, "blocked")
		case model.AttemptOutcomeTransientFailure:
			report.TransientFailed++
			metrics.RecordDelivery(mailing.ID, "transient_failed")
		}
	}

	elapsed := time.Since(start)
	metrics.RecordDispatch(string(report.FinalStatus()), elapsed.Seconds())

	logger.Logger.Info("Dispatch finished",
		zap.Int64("mailing_id", mailing.ID),
		zap.Int("sent", report.Sent),
		zap.Int("blocked", report.Blocked),
		zap.Int("transient_failed", report.TransientFailed),
		zap.Bool("interrupted", report.Interrupted),
		zap.Duration("elapsed", elapsed),
	)

	return report, nil
}

// deliverOne 向单个收件人投递，带退避重试，返回该收件人的终态结果。
// 每次发送（含重试）前都要先过限速器。
func (d *Dispatcher) deliverOne(ctx context.Context, mailing *model.Mailing, recipient *model.Recipient) (model.AttemptOutcome, error) {
	attemptNo, err := d.attempts.LastAttemptNumber(ctx, mailing.ID, recipient.ID)
	if err != nil {
		return model.AttemptOutcomeTransientFailure, err
	}

	backoffCfg := backoff.NewExponentialBackOff()
	backoffCfg.InitialInterval = 500 * time.Millisecond
	backoffCfg.MaxInterval = 30 * time.Second

	var lastOutcome model.AttemptOutcome

	for attemptNo < d.opts.MaxAttempts {
		attemptNo++

		if err := d.limiter.Wait(ctx); err != nil {
			return lastOutcome, err
		}

		outcome, sendErr := d.gw.SendMessage(ctx, recipient.ChatID, mailing.Content)
		now := time.Now()

		attempt := &model.DeliveryAttempt{
			MailingID:     mailing.ID,
			RecipientID:   recipient.ID,
			AttemptNumber: attemptNo,
			AttemptedAt:   now,
		}
		if sendErr != nil {
			attempt.Detail = truncateDetail(sendErr.Error())
		}

		switch outcome {
		case gateway.OutcomeOK:
			attempt.Outcome = model.AttemptOutcomeSent
			if err := d.attempts.Append(ctx, attempt); err != nil {
				return model.AttemptOutcomeSent, err
			}
			if err := d.recipients.TouchContact(ctx, recipient.ID, now); err != nil {
				logger.Logger.Warn("Failed to touch recipient contact time",
					zap.Int64("recipient_id", recipient.ID),
					zap.Error(err),
				)
			}
			return model.AttemptOutcomeSent, nil

		case gateway.OutcomeBlocked:
			attempt.Outcome = model.AttemptOutcomePermanentFailure
			if err := d.attempts.Append(ctx, attempt); err != nil {
				return model.AttemptOutcomePermanentFailure, err
			}
			// 可达标记翻转是本收件人在这轮投递中的最后一次写入
			if err := d.recipients.MarkBlocked(ctx, recipient.ID, now); err != nil {
				return model.AttemptOutcomePermanentFailure, err
			}
			return model.AttemptOutcomePermanentFailure, nil

		default:
			attempt.Outcome = model.AttemptOutcomeTransientFailure
			lastOutcome = model.AttemptOutcomeTransientFailure
			if err := d.attempts.Append(ctx, attempt); err != nil {
				return model.AttemptOutcomeTransientFailure, err
			}

			if attemptNo >= d.opts.MaxAttempts {
				// 重试耗尽，收件人保持可达，留给下一轮
				return model.AttemptOutcomeTransientFailure, nil
			}

			metrics.RecordRetry(mailing.ID)

			sleep := backoffCfg.NextBackOff()
			if sleep == backoff.Stop {
				sleep = backoffCfg.MaxInterval
			}
			if retryAfter := gateway.RetryAfter(sendErr); retryAfter > sleep {
				sleep = retryAfter
			}

			select {
			case <-ctx.Done():
				return model.AttemptOutcomeTransientFailure, ctx.Err()
			case <-time.After(sleep):
			}
		}
	}

	return model.AttemptOutcomeTransientFailure, nil
}

func truncateDetail(s string) string {
	const max = 255
	if len(s) > max {
		return s[:max]
	}
	return s
}

package model

import (
	"time"
)

// MailingStatus 群发任务状态枚举
type MailingStatus string

const (
	MailingStatusPending         MailingStatus = "pending"          // 等待到期
	MailingStatusReady           MailingStatus = "ready"            // 已到期，等待投递
	MailingStatusInProgress      MailingStatus = "in_progress"      // 投递中
	MailingStatusCompleted       MailingStatus = "completed"        // 全部收件人已终态
	MailingStatusPartiallyFailed MailingStatus = "partially_failed" // 存在瞬时失败耗尽或预算耗尽
	MailingStatusCancelled       MailingStatus = "cancelled"        // 投递前被操作员取消
)

// Mailing 群发任务模型。状态只允许单向前进：
// pending -> ready -> in_progress -> completed / partially_failed，
// pending 和 ready 可被取消，其余状态不可。
type Mailing struct {
	BaseModel
	Content        string        `gorm:"type:text;not null" json:"content"`
	ScheduledAt    time.Time     `gorm:"type:timestamptz;not null;index:idx_mailings_due,priority:2" json:"scheduled_at"`
	Status         MailingStatus `gorm:"type:varchar(20);not null;default:'pending';index:idx_mailings_due,priority:1" json:"status"`
	StartedAt      *time.Time    `gorm:"type:timestamptz" json:"started_at,omitempty"`
	FinishedAt     *time.Time    `gorm:"type:timestamptz" json:"finished_at,omitempty"`
	SentCount      int           `gorm:"not null;default:0" json:"sent_count"`
	BlockedCount   int           `gorm:"not null;default:0" json:"blocked_count"`
	TransientCount int           `gorm:"not null;default:0" json:"transient_count"`
	CreatedBy      int64         `gorm:"not null" json:"created_by"` // 操作员 chat id
}

// TableName 指定表名
func (Mailing) TableName() string {
	return "mailings"
}

// IsTerminal 终态的任务不再被调度器和投递器触碰
func (s MailingStatus) IsTerminal() bool {
	switch s {
	case MailingStatusCompleted, MailingStatusPartiallyFailed, MailingStatusCancelled:
		return true
	default:
		return false
	}
}

// AttemptOutcome 单次投递尝试的结果枚举
type AttemptOutcome string

const (
	AttemptOutcomeSent             AttemptOutcome = "sent"
	AttemptOutcomeTransientFailure AttemptOutcome = "transient_failure"
	AttemptOutcomePermanentFailure AttemptOutcome = "permanent_failure"
)

// DeliveryAttempt 投递尝试审计记录，只追加不修改。
// (mailing, recipient, attempt_number) 唯一，attempt_number 从 1 起严格递增。
type DeliveryAttempt struct {
	BaseModel
	MailingID     int64          `gorm:"not null;uniqueIndex:idx_delivery_attempts_try,priority:1;index:idx_delivery_attempts_outcome,priority:1" json:"mailing_id"`
	RecipientID   int64          `gorm:"not null;uniqueIndex:idx_delivery_attempts_try,priority:2" json:"recipient_id"`
	AttemptNumber int            `gorm:"type:smallint;not null;uniqueIndex:idx_delivery_attempts_try,priority:3" json:"attempt_number"`
	Outcome       AttemptOutcome `gorm:"type:varchar(20);not null;index:idx_delivery_attempts_outcome,priority:2" json:"outcome"`
	Detail        string         `gorm:"type:varchar(255)" json:"detail,omitempty"`
	AttemptedAt   time.Time      `gorm:"type:timestamptz;not null;default:now()" json:"attempted_at"`
}

// TableName 指定表名
func (DeliveryAttempt) TableName() string {
	return "delivery_attempts"
}

package model

// MailingDispatchMessage 投递任务消息。
// MessageID 用于消费端幂等检查；真正的抢占以数据库条件更新为准，
// 消息只是触发信号，重复投递是无害的。
type MailingDispatchMessage struct {
	MessageID   string `json:"message_id"`
	MailingID   int64  `json:"mailing_id"`
	ScheduledAt string `json:"scheduled_at"`
	EnqueuedAt  string `json:"enqueued_at"`
	// Recovered 标记消息来自中断恢复扫描而非正常调度，
	// ObservedStartedAt 是扫描时观察到的 started_at，用作恢复抢占的乐观锁
	Recovered         bool   `json:"recovered,omitempty"`
	ObservedStartedAt string `json:"observed_started_at,omitempty"`
}

// SupportForwardMessage 支持请求转发消息
type SupportForwardMessage struct {
	MessageID        string `json:"message_id"`
	SupportRequestID int64  `json:"support_request_id"`
	EnqueuedAt       string `json:"enqueued_at"`
}

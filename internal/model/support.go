package model

import "time"

// SupportRequestStatus 支持请求状态枚举
type SupportRequestStatus string

const (
	SupportRequestStatusNew       SupportRequestStatus = "new"       // 待转发给操作员
	SupportRequestStatusForwarded SupportRequestStatus = "forwarded" // 已转发
	SupportRequestStatusClosed    SupportRequestStatus = "closed"    // 操作员已处理
)

// SupportRequest 用户支持请求，由后台任务批量转发到操作员 bot
type SupportRequest struct {
	BaseModel
	UserChatID  int64                `gorm:"not null;index" json:"user_chat_id"`
	Text        string               `gorm:"type:text;not null" json:"text"`
	Status      SupportRequestStatus `gorm:"type:varchar(16);not null;default:'new';index" json:"status"`
	ForwardedAt *time.Time           `gorm:"type:timestamptz" json:"forwarded_at,omitempty"`
}

// TableName 指定表名
func (SupportRequest) TableName() string {
	return "support_requests"
}

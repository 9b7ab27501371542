package model

import "time"

// Recipient 收件人模型，对应一个 Telegram 用户档案。
// Reachable 只会由投递器在收到永久性失败信号时翻转为 false，
// 从不自动恢复，只能由操作员手动重置。
type Recipient struct {
	BaseModel
	ChatID        int64      `gorm:"uniqueIndex;not null" json:"chat_id"`
	Username      string     `gorm:"type:varchar(64)" json:"username,omitempty"`
	FirstName     string     `gorm:"type:varchar(128)" json:"first_name,omitempty"`
	Reachable     bool       `gorm:"not null;default:true;index" json:"reachable"`
	LastContactAt *time.Time `gorm:"type:timestamptz" json:"last_contact_at,omitempty"`
}

// TableName 指定表名
func (Recipient) TableName() string {
	return "recipients"
}

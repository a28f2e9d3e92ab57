package models

import (
	"time"

	"gorm.io/gorm"
)

// Notification 站内通知
type Notification struct {
	ID        string    `gorm:"type:varchar(36);primarykey" json:"id"`                  // 主键（UUID）
	UserID    string    `gorm:"type:varchar(36);not null;index" json:"user_id"`         // 接收用户
	Title     string    `gorm:"type:varchar(255);not null" json:"title"`                // 标题
	Message   string    `gorm:"type:text;not null" json:"message"`                      // 正文
	Type      string    `gorm:"type:varchar(40);not null;index" json:"type"`            // 通知类型
	Link      string    `gorm:"type:varchar(1000)" json:"link,omitempty"`               // 跳转链接
	DedupKey  *string   `gorm:"type:varchar(191);uniqueIndex" json:"-"`                 // 去重键（推广ID+类型+日期）
	IsRead    bool      `gorm:"not null;default:false;index" json:"is_read"`            // 是否已读
	CreatedAt time.Time `gorm:"index" json:"created_at"`                                // 创建时间
}

// TableName 指定表名
func (Notification) TableName() string {
	return "notifications"
}

// BeforeCreate 生成主键
func (n *Notification) BeforeCreate(_ *gorm.DB) error {
	ensureID(&n.ID)
	return nil
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// User 用户表（房东与管理员共用，账号体系由外部认证服务维护）
type User struct {
	ID          string    `gorm:"type:varchar(36);primarykey" json:"id"`                       // 主键（UUID）
	Email       string    `gorm:"type:varchar(255);index" json:"email"`                        // 注册邮箱
	DisplayName string    `gorm:"type:varchar(120);default:''" json:"display_name"`            // 昵称
	Role        string    `gorm:"type:varchar(20);not null;default:'owner';index" json:"role"` // 角色
	CreatedAt   time.Time `gorm:"index" json:"created_at"`                                     // 创建时间
	UpdatedAt   time.Time `json:"updated_at"`                                                  // 更新时间
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// BeforeCreate 生成主键
func (u *User) BeforeCreate(_ *gorm.DB) error {
	ensureID(&u.ID)
	return nil
}

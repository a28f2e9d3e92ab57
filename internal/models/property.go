package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Property 房源（仅保留推广与佣金所需字段）
type Property struct {
	ID        string              `gorm:"type:varchar(36);primarykey" json:"id"`          // 主键（UUID）
	OwnerID   string              `gorm:"type:varchar(36);not null;index" json:"owner_id"` // 房东ID
	Title     string              `gorm:"type:varchar(255)" json:"title"`                 // 标题
	Area      decimal.NullDecimal `gorm:"type:decimal(20,2)" json:"area"`                 // 面积（平方米）
	CreatedAt time.Time           `gorm:"index" json:"created_at"`                        // 创建时间
	UpdatedAt time.Time           `json:"updated_at"`                                     // 更新时间
}

// TableName 指定表名
func (Property) TableName() string {
	return "properties"
}

// BeforeCreate 生成主键
func (p *Property) BeforeCreate(_ *gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

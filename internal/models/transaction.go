package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transaction 成交记录，佣金在创建时计算且不可变
type Transaction struct {
	ID                string              `gorm:"type:varchar(36);primarykey" json:"id"`                           // 主键（UUID）
	PropertyID        string              `gorm:"type:varchar(36);not null;index" json:"property_id"`              // 房源ID
	OwnerID           string              `gorm:"type:varchar(36);not null;index" json:"owner_id"`                 // 房东ID
	TransactionType   string              `gorm:"type:varchar(20);not null;index" json:"transaction_type"`         // 交易类型
	TransactionAmount Money               `gorm:"type:decimal(20,2);not null;default:0" json:"transaction_amount"` // 成交金额
	CommissionAmount  Money               `gorm:"type:decimal(20,2);not null;default:0" json:"commission_amount"`  // 佣金金额
	PropertyArea      decimal.NullDecimal `gorm:"type:decimal(20,2)" json:"property_area"`                         // 成交时房源面积快照
	CommissionPaid    bool                `gorm:"not null;default:false;index" json:"commission_paid"`             // 佣金是否已付
	CommissionPaidAt  *time.Time          `json:"commission_paid_at,omitempty"`                                    // 佣金支付时间
	CreatedBy         string              `gorm:"type:varchar(36)" json:"created_by,omitempty"`                    // 创建管理员
	CreatedAt         time.Time           `gorm:"index" json:"created_at"`                                         // 创建时间
	UpdatedAt         time.Time           `json:"updated_at"`                                                      // 更新时间
}

// TableName 指定表名
func (Transaction) TableName() string {
	return "transactions"
}

// BeforeCreate 生成主键
func (t *Transaction) BeforeCreate(_ *gorm.DB) error {
	ensureID(&t.ID)
	return nil
}

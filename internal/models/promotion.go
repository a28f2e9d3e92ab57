package models

import (
	"time"

	"gorm.io/gorm"
)

// Promotion 房源付费推广（置顶/视频/横幅/首页）
type Promotion struct {
	ID                 string     `gorm:"type:varchar(36);primarykey" json:"id"`                     // 主键（UUID）
	PropertyID         string     `gorm:"type:varchar(36);not null;index" json:"property_id"`        // 房源ID
	OwnerID            string     `gorm:"type:varchar(36);not null;index" json:"owner_id"`           // 房东ID
	PromotionType      string     `gorm:"type:varchar(20);not null;index" json:"promotion_type"`     // 推广类型
	StartDate          time.Time  `gorm:"not null" json:"start_date"`                                // 开始时间
	EndDate            time.Time  `gorm:"not null;index" json:"end_date"`                            // 结束时间
	DurationDays       int        `gorm:"not null;default:0" json:"duration_days"`                   // 原始购买天数
	AmountPaid         Money      `gorm:"type:decimal(20,2);not null;default:0" json:"amount_paid"`  // 实付金额
	IsActive           bool       `gorm:"not null;default:true;index" json:"is_active"`              // 是否启用
	VideoURL           string     `gorm:"type:varchar(1000)" json:"video_url,omitempty"`             // 视频地址
	BannerURL          string     `gorm:"type:varchar(1000)" json:"banner_url,omitempty"`            // 横幅图片地址
	AutoRenew          bool       `gorm:"not null;default:false" json:"auto_renew"`                  // 到期自动续期
	RenewalCount       int        `gorm:"not null;default:0" json:"renewal_count"`                   // 已续期次数
	LastRenewedAt      *time.Time `json:"last_renewed_at,omitempty"`                                 // 最近续期时间
	DeactivatedAt      *time.Time `json:"deactivated_at,omitempty"`                                  // 停用时间
	DeactivationReason string     `gorm:"type:varchar(40)" json:"deactivation_reason,omitempty"`     // 停用原因
	CreatedBy          string     `gorm:"type:varchar(36)" json:"created_by,omitempty"`              // 操作管理员
	CreatedAt          time.Time  `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt          time.Time  `json:"updated_at"`                                                // 更新时间
}

// TableName 指定表名
func (Promotion) TableName() string {
	return "promotions"
}

// BeforeCreate 生成主键
func (p *Promotion) BeforeCreate(_ *gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

// IsLive 是否处于生效中（启用且未过期）
func (p *Promotion) IsLive(now time.Time) bool {
	if p == nil {
		return false
	}
	return p.IsActive && p.EndDate.After(now)
}

// OriginalDuration 原始推广时长，缺失天数时退化为时间窗口长度
func (p *Promotion) OriginalDuration() time.Duration {
	if p == nil {
		return 0
	}
	if p.DurationDays > 0 {
		return time.Duration(p.DurationDays) * 24 * time.Hour
	}
	if p.EndDate.After(p.StartDate) {
		return p.EndDate.Sub(p.StartDate)
	}
	return 0
}

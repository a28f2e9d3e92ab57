package repository

import "time"

// PromotionFilter 推广候选查询条件（启用状态 + 结束时间区间）
type PromotionFilter struct {
	IsActive      *bool
	EndAfter      *time.Time // end_date > EndAfter
	EndAtOrBefore *time.Time // end_date <= EndAtOrBefore
	EndAtOrAfter  *time.Time // end_date >= EndAtOrAfter
	Limit         int
}

// PromotionSnapshot 条件更新时要求记录仍保持的状态
type PromotionSnapshot struct {
	IsActive bool
	EndDate  time.Time
}

// PromotionListFilter 查询推广列表的过滤条件
type PromotionListFilter struct {
	Page          int
	PageSize      int
	OwnerID       string
	PropertyID    string
	PromotionType string
	IsActive      *bool
	AutoRenew     *bool
}

// TransactionListFilter 查询成交记录列表的过滤条件
type TransactionListFilter struct {
	Page            int
	PageSize        int
	OwnerID         string
	PropertyID      string
	TransactionType string
	CommissionPaid  *bool
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
}

// NotificationListFilter 查询站内通知列表的过滤条件
type NotificationListFilter struct {
	Page       int
	PageSize   int
	UserID     string
	Type       string
	UnreadOnly bool
}

// UserListFilter 查询用户列表的过滤条件
type UserListFilter struct {
	Page     int
	PageSize int
	Keyword  string
	Role     string
}

// BoolPtr 返回布尔指针，便于构造过滤条件
func BoolPtr(v bool) *bool {
	return &v
}

// TimePtr 返回时间指针，便于构造过滤条件
func TimePtr(v time.Time) *time.Time {
	return &v
}

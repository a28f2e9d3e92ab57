package constants

// 推广类型常量
const (
	PromotionTypeFeatured = "featured"
	PromotionTypeVideoAd  = "video_ad"
	PromotionTypeBanner   = "banner"
	PromotionTypeHomepage = "homepage"
)

// 推广停用原因
const (
	PromotionDeactivateReasonExpired = "expired"
	PromotionDeactivateReasonAdmin   = "admin"
)

// 交易类型常量
const (
	TransactionTypeDailyRent     = "daily_rent"
	TransactionTypeMonthlyRent   = "monthly_rent"
	TransactionTypePermanentRent = "permanent_rent"
	TransactionTypeSale          = "sale"
)

// 用户角色常量
const (
	UserRoleAdmin = "admin"
	UserRoleOwner = "owner"
)

// 站内通知类型常量
const (
	NotificationTypePromotionActivated = "promotion_activated"
	NotificationTypePromotionExpiring  = "promotion_expiring"
	NotificationTypePromotionRenewed   = "promotion_renewed"
	NotificationTypePromotionExpired   = "promotion_expired"
	NotificationTypeCommissionDue      = "commission_due"
)

// 推广到期扫描参数
const (
	// PromotionExpiryLookaheadDays 到期提醒固定提前天数
	PromotionExpiryLookaheadDays = 3
	// PromotionUrgentDaysRemaining 剩余天数不超过该值时使用紧急模板
	PromotionUrgentDaysRemaining = 1
)

// 队列名称常量
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// 异步任务类型常量
const (
	TaskPromotionScanExpiring = "promotion:scan_expiring"
	TaskPromotionAutoRenew    = "promotion:auto_renew"
	TaskNotificationEmail     = "notification:email"
)

// 定时任务锁名称
const (
	JobLockScanExpiring = "job:scan_expiring"
	JobLockAutoRenew    = "job:auto_renew"
)

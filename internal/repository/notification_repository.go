package repository

import (
	"context"
	"errors"
	"time"

	"github.com/realty-promo/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NotificationRepository 站内通知数据访问接口
type NotificationRepository interface {
	Insert(ctx context.Context, notification *models.Notification) (bool, error)
	ExistsByDedupKey(ctx context.Context, dedupKey string) (bool, error)
	ExistsForPromotionOnDay(ctx context.Context, promotionID, notificationType string, dayStart, dayEnd time.Time) (bool, error)
	GetByID(ctx context.Context, id string) (*models.Notification, error)
	ListByUser(ctx context.Context, filter NotificationListFilter) ([]models.Notification, int64, error)
	MarkRead(ctx context.Context, userID, id string) (bool, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
}

// GormNotificationRepository GORM 实现
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository 创建通知仓库
func NewNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// WithTx 绑定事务
func (r *GormNotificationRepository) WithTx(tx *gorm.DB) *GormNotificationRepository {
	if tx == nil {
		return r
	}
	return &GormNotificationRepository{db: tx}
}

// Insert 写入通知；带去重键时冲突则忽略，返回是否实际写入
func (r *GormNotificationRepository) Insert(ctx context.Context, notification *models.Notification) (bool, error) {
	if notification == nil {
		return false, nil
	}
	query := r.db.WithContext(ctx)
	if notification.DedupKey != nil {
		query = query.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "dedup_key"}},
			DoNothing: true,
		})
	}
	result := query.Create(notification)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ExistsByDedupKey 判断去重键是否已存在
func (r *GormNotificationRepository) ExistsByDedupKey(ctx context.Context, dedupKey string) (bool, error) {
	if dedupKey == "" {
		return false, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("dedup_key = ?", dedupKey).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ExistsForPromotionOnDay 兼容旧数据：按正文包含推广ID且创建时间落在当天判断
func (r *GormNotificationRepository) ExistsForPromotionOnDay(ctx context.Context, promotionID, notificationType string, dayStart, dayEnd time.Time) (bool, error) {
	if promotionID == "" {
		return false, nil
	}
	query := whereContains(r.db.WithContext(ctx).Model(&models.Notification{}), promotionID, "message").
		Where("created_at >= ? AND created_at < ?", dayStart.UTC(), dayEnd.UTC())
	if notificationType != "" {
		query = query.Where("type = ?", notificationType)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetByID 根据ID获取通知
func (r *GormNotificationRepository) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	var notification models.Notification
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&notification).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &notification, nil
}

// ListByUser 获取用户通知列表
func (r *GormNotificationRepository) ListByUser(ctx context.Context, filter NotificationListFilter) ([]models.Notification, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", filter.UserID)
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.UnreadOnly {
		query = query.Where("is_read = ?", false)
	}

	return paginate[models.Notification](query, filter.Page, filter.PageSize)
}

// MarkRead 标记通知已读，仅允许本人操作，返回记录是否存在
func (r *GormNotificationRepository) MarkRead(ctx context.Context, userID, id string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// CountUnread 统计未读通知数
func (r *GormNotificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

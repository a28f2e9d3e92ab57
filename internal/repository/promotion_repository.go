package repository

import (
	"context"
	"errors"
	"time"

	"github.com/realty-promo/internal/models"

	"gorm.io/gorm"
)

// PromotionRepository 推广数据访问接口
type PromotionRepository interface {
	GetByID(ctx context.Context, id string) (*models.Promotion, error)
	Find(ctx context.Context, filter PromotionFilter) ([]models.Promotion, error)
	Create(ctx context.Context, promotion *models.Promotion) error
	Update(ctx context.Context, id string, fields map[string]interface{}) (bool, error)
	UpdateIfUnchanged(ctx context.Context, id string, snapshot PromotionSnapshot, fields map[string]interface{}) (bool, error)
	List(ctx context.Context, filter PromotionListFilter) ([]models.Promotion, int64, error)
	ListLive(ctx context.Context, promotionType string, now time.Time, limit int) ([]models.Promotion, error)
}

// GormPromotionRepository GORM 实现
type GormPromotionRepository struct {
	db *gorm.DB
}

// NewPromotionRepository 创建推广仓库
func NewPromotionRepository(db *gorm.DB) *GormPromotionRepository {
	return &GormPromotionRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPromotionRepository) WithTx(tx *gorm.DB) *GormPromotionRepository {
	if tx == nil {
		return r
	}
	return &GormPromotionRepository{db: tx}
}

// GetByID 根据ID获取推广，不存在时返回 nil
func (r *GormPromotionRepository) GetByID(ctx context.Context, id string) (*models.Promotion, error) {
	var promotion models.Promotion
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&promotion).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &promotion, nil
}

// Find 按启用状态与结束时间区间查询推广，结果按 end_date 升序
func (r *GormPromotionRepository) Find(ctx context.Context, filter PromotionFilter) ([]models.Promotion, error) {
	query := r.db.WithContext(ctx).Model(&models.Promotion{})
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.EndAfter != nil {
		query = query.Where("end_date > ?", filter.EndAfter.UTC())
	}
	if filter.EndAtOrAfter != nil {
		query = query.Where("end_date >= ?", filter.EndAtOrAfter.UTC())
	}
	if filter.EndAtOrBefore != nil {
		query = query.Where("end_date <= ?", filter.EndAtOrBefore.UTC())
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var promotions []models.Promotion
	if err := query.Order("end_date ASC").Order("id ASC").Find(&promotions).Error; err != nil {
		return nil, err
	}
	return promotions, nil
}

// Create 创建推广
func (r *GormPromotionRepository) Create(ctx context.Context, promotion *models.Promotion) error {
	return r.db.WithContext(ctx).Create(promotion).Error
}

// Update 按字段更新推广，返回记录是否存在
func (r *GormPromotionRepository) Update(ctx context.Context, id string, fields map[string]interface{}) (bool, error) {
	if len(fields) == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.Promotion{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return false, err
		}
		return count > 0, nil
	}
	if _, ok := fields["updated_at"]; !ok {
		fields["updated_at"] = time.Now().UTC()
	}
	result := r.db.WithContext(ctx).Model(&models.Promotion{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// UpdateIfUnchanged 仅当 is_active 与 end_date 仍等于快照时更新，返回是否命中
func (r *GormPromotionRepository) UpdateIfUnchanged(ctx context.Context, id string, snapshot PromotionSnapshot, fields map[string]interface{}) (bool, error) {
	if len(fields) == 0 {
		return false, nil
	}
	if _, ok := fields["updated_at"]; !ok {
		fields["updated_at"] = time.Now().UTC()
	}
	result := r.db.WithContext(ctx).Model(&models.Promotion{}).
		Where("id = ? AND is_active = ? AND end_date = ?", id, snapshot.IsActive, snapshot.EndDate.UTC()).
		Updates(fields)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// List 获取推广列表
func (r *GormPromotionRepository) List(ctx context.Context, filter PromotionListFilter) ([]models.Promotion, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Promotion{})

	if filter.OwnerID != "" {
		query = query.Where("owner_id = ?", filter.OwnerID)
	}
	if filter.PropertyID != "" {
		query = query.Where("property_id = ?", filter.PropertyID)
	}
	if filter.PromotionType != "" {
		query = query.Where("promotion_type = ?", filter.PromotionType)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.AutoRenew != nil {
		query = query.Where("auto_renew = ?", *filter.AutoRenew)
	}

	return paginate[models.Promotion](query, filter.Page, filter.PageSize)
}

// ListLive 获取当前生效中的推广（is_active 且 end_date > now）
func (r *GormPromotionRepository) ListLive(ctx context.Context, promotionType string, now time.Time, limit int) ([]models.Promotion, error) {
	query := r.db.WithContext(ctx).Model(&models.Promotion{}).
		Where("is_active = ?", true).
		Where("end_date > ?", now.UTC()).
		Where("start_date <= ?", now.UTC())
	if promotionType != "" {
		query = query.Where("promotion_type = ?", promotionType)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	var promotions []models.Promotion
	if err := query.Order("start_date DESC").Find(&promotions).Error; err != nil {
		return nil, err
	}
	return promotions, nil
}

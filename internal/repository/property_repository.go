package repository

import (
	"context"
	"errors"

	"github.com/realty-promo/internal/models"

	"gorm.io/gorm"
)

// PropertyRepository 房源数据访问接口（只读投影）
type PropertyRepository interface {
	GetByID(ctx context.Context, id string) (*models.Property, error)
	ListByIDs(ctx context.Context, ids []string) ([]models.Property, error)
}

// GormPropertyRepository GORM 实现
type GormPropertyRepository struct {
	db *gorm.DB
}

// NewPropertyRepository 创建房源仓库
func NewPropertyRepository(db *gorm.DB) *GormPropertyRepository {
	return &GormPropertyRepository{db: db}
}

// GetByID 根据ID获取房源，不存在时返回 nil
func (r *GormPropertyRepository) GetByID(ctx context.Context, id string) (*models.Property, error) {
	var property models.Property
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&property).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &property, nil
}

// ListByIDs 批量获取房源
func (r *GormPropertyRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Property, error) {
	if len(ids) == 0 {
		return []models.Property{}, nil
	}
	var properties []models.Property
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&properties).Error; err != nil {
		return nil, err
	}
	return properties, nil
}

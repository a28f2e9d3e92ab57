package repository

import (
	"context"
	"errors"
	"time"

	"github.com/realty-promo/internal/models"

	"gorm.io/gorm"
)

// TransactionRepository 成交记录数据访问接口
type TransactionRepository interface {
	GetByID(ctx context.Context, id string) (*models.Transaction, error)
	Create(ctx context.Context, transaction *models.Transaction) error
	MarkCommissionPaid(ctx context.Context, id string, paidAt time.Time) (bool, error)
	List(ctx context.Context, filter TransactionListFilter) ([]models.Transaction, int64, error)
}

// GormTransactionRepository GORM 实现
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository 创建成交记录仓库
func NewTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// WithTx 绑定事务
func (r *GormTransactionRepository) WithTx(tx *gorm.DB) *GormTransactionRepository {
	if tx == nil {
		return r
	}
	return &GormTransactionRepository{db: tx}
}

// GetByID 根据ID获取成交记录
func (r *GormTransactionRepository) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &transaction, nil
}

// Create 创建成交记录
func (r *GormTransactionRepository) Create(ctx context.Context, transaction *models.Transaction) error {
	return r.db.WithContext(ctx).Create(transaction).Error
}

// MarkCommissionPaid 标记佣金已付，仅更新 commission_paid / commission_paid_at，返回是否发生变更
func (r *GormTransactionRepository) MarkCommissionPaid(ctx context.Context, id string, paidAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("id = ? AND commission_paid = ?", id, false).
		Updates(map[string]interface{}{
			"commission_paid":    true,
			"commission_paid_at": paidAt.UTC(),
			"updated_at":         time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// List 获取成交记录列表
func (r *GormTransactionRepository) List(ctx context.Context, filter TransactionListFilter) ([]models.Transaction, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Transaction{})

	if filter.OwnerID != "" {
		query = query.Where("owner_id = ?", filter.OwnerID)
	}
	if filter.PropertyID != "" {
		query = query.Where("property_id = ?", filter.PropertyID)
	}
	if filter.TransactionType != "" {
		query = query.Where("transaction_type = ?", filter.TransactionType)
	}
	if filter.CommissionPaid != nil {
		query = query.Where("commission_paid = ?", *filter.CommissionPaid)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", filter.CreatedFrom.UTC())
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", filter.CreatedTo.UTC())
	}

	return paginate[models.Transaction](query, filter.Page, filter.PageSize)
}

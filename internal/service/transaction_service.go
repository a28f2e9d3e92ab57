package service

import (
	"context"
	"strings"

	"github.com/realty-promo/internal/logger"
	"github.com/realty-promo/internal/metrics"
	"github.com/realty-promo/internal/models"
	"github.com/realty-promo/internal/repository"

	"github.com/shopspring/decimal"
)

// TransactionService 成交记录与佣金服务
type TransactionService struct {
	repo         repository.TransactionRepository
	propertyRepo repository.PropertyRepository
	notifier     *NotificationService
	siteBaseURL  string
	now          Clock
}

// NewTransactionService 创建成交服务
func NewTransactionService(
	repo repository.TransactionRepository,
	propertyRepo repository.PropertyRepository,
	notifier *NotificationService,
	siteBaseURL string,
) *TransactionService {
	return &TransactionService{
		repo:         repo,
		propertyRepo: propertyRepo,
		notifier:     notifier,
		siteBaseURL:  siteBaseURL,
		now:          systemClock,
	}
}

// SetClock 替换时钟
func (s *TransactionService) SetClock(clock Clock) {
	if clock != nil {
		s.now = clock
	}
}

// CreateTransactionInput 录入成交输入
type CreateTransactionInput struct {
	PropertyID        string
	TransactionType   string
	TransactionAmount models.Money
}

// Create 录入成交：快照房源面积并计算佣金，之后通知房东待付佣金
func (s *TransactionService) Create(ctx context.Context, actor Actor, input CreateTransactionInput) (*models.Transaction, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	propertyID := strings.TrimSpace(input.PropertyID)
	transactionType := strings.ToLower(strings.TrimSpace(input.TransactionType))
	if propertyID == "" || !IsTransactionTypeValid(transactionType) {
		return nil, ErrTransactionInvalid
	}
	if !input.TransactionAmount.Decimal.GreaterThan(decimal.Zero) {
		return nil, ErrTransactionInvalid
	}

	property, err := s.propertyRepo.GetByID(ctx, propertyID)
	if err != nil {
		return nil, storeError(err)
	}
	if property == nil {
		return nil, ErrPropertyNotFound
	}

	var area *decimal.Decimal
	if property.Area.Valid {
		v := property.Area.Decimal
		area = &v
	}
	amount := models.NewMoneyFromDecimal(input.TransactionAmount.Decimal)
	commission := ComputeCommission(transactionType, amount, area)

	transaction := &models.Transaction{
		PropertyID:        property.ID,
		OwnerID:           property.OwnerID,
		TransactionType:   transactionType,
		TransactionAmount: amount,
		CommissionAmount:  commission,
		PropertyArea:      property.Area,
		CreatedBy:         actor.UserID,
	}
	if err := s.repo.Create(ctx, transaction); err != nil {
		return nil, storeError(err)
	}
	metrics.IncCommission(transactionType)
	logger.FromContext(ctx).Infow("transaction_created",
		"transaction_id", transaction.ID,
		"property_id", transaction.PropertyID,
		"transaction_type", transactionType,
		"commission_amount", commission.String(),
	)

	if s.notifier != nil && commission.Decimal.GreaterThan(decimal.Zero) {
		content := buildCommissionDueContent(transaction, resolvePropertyTitle(property), s.siteBaseURL)
		if _, _, err := s.notifier.Notify(ctx, notifyInputFromContent(transaction.OwnerID, "", content)); err != nil {
			logger.FromContext(ctx).Warnw("transaction_commission_notify_failed", "transaction_id", transaction.ID, "error", err)
		}
	}
	return transaction, nil
}

// MarkCommissionPaid 标记佣金已付，重复标记直接返回当前记录
func (s *TransactionService) MarkCommissionPaid(ctx context.Context, actor Actor, id string) (*models.Transaction, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	transaction, err := s.getTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	if transaction.CommissionPaid {
		return transaction, nil
	}
	now := s.now().UTC()
	updated, err := s.repo.MarkCommissionPaid(ctx, transaction.ID, now)
	if err != nil {
		return nil, storeError(err)
	}
	if !updated {
		// 并发标记时以库中记录为准
		return s.getTransaction(ctx, transaction.ID)
	}
	logger.FromContext(ctx).Infow("transaction_commission_paid", "transaction_id", transaction.ID, "operator", actor.UserID)
	transaction.CommissionPaid = true
	transaction.CommissionPaidAt = &now
	return transaction, nil
}

// Get 获取成交详情
func (s *TransactionService) Get(ctx context.Context, id string) (*models.Transaction, error) {
	return s.getTransaction(ctx, id)
}

// List 管理端成交列表
func (s *TransactionService) List(ctx context.Context, filter repository.TransactionListFilter) ([]models.Transaction, int64, error) {
	filter.Page, filter.PageSize = normalizePage(filter.Page, filter.PageSize)
	if filter.TransactionType != "" {
		filter.TransactionType = strings.ToLower(strings.TrimSpace(filter.TransactionType))
	}
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, storeError(err)
	}
	return rows, total, nil
}

// ListForOwner 房东本人成交列表
func (s *TransactionService) ListForOwner(ctx context.Context, actor Actor, page, pageSize int) ([]models.Transaction, int64, error) {
	if strings.TrimSpace(actor.UserID) == "" {
		return nil, 0, ErrActorRequired
	}
	return s.List(ctx, repository.TransactionListFilter{
		Page:     page,
		PageSize: pageSize,
		OwnerID:  actor.UserID,
	})
}

func (s *TransactionService) getTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrTransactionNotFound
	}
	transaction, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	if transaction == nil {
		return nil, ErrTransactionNotFound
	}
	return transaction, nil
}

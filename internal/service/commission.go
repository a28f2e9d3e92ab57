package service

import (
	"strings"

	"github.com/realty-promo/internal/constants"
	"github.com/realty-promo/internal/models"

	"github.com/shopspring/decimal"
)

var (
	commissionDailyRent     = decimal.NewFromInt(3)
	commissionMonthlyRent   = decimal.NewFromInt(5)
	commissionPermanentRent = decimal.NewFromInt(10)
	commissionSaleLarge     = decimal.NewFromInt(100)
	commissionSaleSmall     = decimal.NewFromInt(50)

	// 面积超过该值按大户型计佣
	saleLargeAreaThreshold = decimal.NewFromInt(200)
	// 面积未知时按该值计
	saleDefaultArea = decimal.NewFromInt(100)
)

// ComputeCommission 计算成交佣金：租赁类固定金额，买卖按面积分档，未知类型为 0。
// 成交金额目前不参与计算。
func ComputeCommission(transactionType string, _ models.Money, propertyArea *decimal.Decimal) models.Money {
	switch strings.ToLower(strings.TrimSpace(transactionType)) {
	case constants.TransactionTypeDailyRent:
		return models.NewMoneyFromDecimal(commissionDailyRent)
	case constants.TransactionTypeMonthlyRent:
		return models.NewMoneyFromDecimal(commissionMonthlyRent)
	case constants.TransactionTypePermanentRent:
		return models.NewMoneyFromDecimal(commissionPermanentRent)
	case constants.TransactionTypeSale:
		area := saleDefaultArea
		if propertyArea != nil {
			area = *propertyArea
		}
		if area.GreaterThan(saleLargeAreaThreshold) {
			return models.NewMoneyFromDecimal(commissionSaleLarge)
		}
		return models.NewMoneyFromDecimal(commissionSaleSmall)
	default:
		return models.NewMoneyFromDecimal(decimal.Zero)
	}
}

// IsTransactionTypeValid 判断交易类型是否受支持
func IsTransactionTypeValid(transactionType string) bool {
	switch strings.ToLower(strings.TrimSpace(transactionType)) {
	case constants.TransactionTypeDailyRent,
		constants.TransactionTypeMonthlyRent,
		constants.TransactionTypePermanentRent,
		constants.TransactionTypeSale:
		return true
	}
	return false
}

package admin

import (
	"encoding/json"
	"strings"

	handlershared "github.com/realty-promo/internal/http/handlers/shared"
	"github.com/realty-promo/internal/http/response"
	"github.com/realty-promo/internal/models"
	"github.com/realty-promo/internal/repository"
	"github.com/realty-promo/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateTransactionRequest 录入成交请求，同时接受 camelCase 与 snake_case 字段
type CreateTransactionRequest struct {
	PropertyID        string       `json:"propertyId" binding:"required"`
	TransactionType   string       `json:"transactionType" binding:"required"`
	TransactionAmount models.Money `json:"transactionAmount"`
}

// UnmarshalJSON camelCase 字段优先，缺失时回退到 snake_case
func (r *CreateTransactionRequest) UnmarshalJSON(data []byte) error {
	type camel CreateTransactionRequest
	var wire struct {
		camel
		SnakePropertyID        string        `json:"property_id"`
		SnakeTransactionType   string        `json:"transaction_type"`
		SnakeTransactionAmount *models.Money `json:"transaction_amount"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*r = CreateTransactionRequest(wire.camel)
	if r.PropertyID == "" {
		r.PropertyID = wire.SnakePropertyID
	}
	if r.TransactionType == "" {
		r.TransactionType = wire.SnakeTransactionType
	}
	if r.TransactionAmount.IsZero() && wire.SnakeTransactionAmount != nil {
		r.TransactionAmount = *wire.SnakeTransactionAmount
	}
	return nil
}

// CreateTransaction 录入成交并计算佣金
func (h *Handler) CreateTransaction(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	transaction, err := h.TransactionService.Create(c.Request.Context(), actor, service.CreateTransactionInput{
		PropertyID:        req.PropertyID,
		TransactionType:   req.TransactionType,
		TransactionAmount: req.TransactionAmount,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, transaction)
}

// GetAdminTransactions 成交列表
func (h *Handler) GetAdminTransactions(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	createdFrom, err := parseTimeNullable(strings.TrimSpace(c.Query("created_from")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	createdTo, err := parseTimeNullable(strings.TrimSpace(c.Query("created_to")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	transactions, total, err := h.TransactionService.List(c.Request.Context(), repository.TransactionListFilter{
		Page:            page,
		PageSize:        pageSize,
		OwnerID:         strings.TrimSpace(c.Query("owner_id")),
		PropertyID:      strings.TrimSpace(c.Query("property_id")),
		TransactionType: c.Query("transaction_type"),
		CommissionPaid:  handlershared.ParseOptionalBool(c, "commission_paid"),
		CreatedFrom:     createdFrom,
		CreatedTo:       createdTo,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, transactions, response.NewPagination(page, pageSize, total))
}

// GetAdminTransaction 成交详情
func (h *Handler) GetAdminTransaction(c *gin.Context) {
	transaction, err := h.TransactionService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, transaction)
}

// MarkTransactionCommissionPaid 标记佣金已付
func (h *Handler) MarkTransactionCommissionPaid(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	transaction, err := h.TransactionService.MarkCommissionPaid(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, transaction)
}

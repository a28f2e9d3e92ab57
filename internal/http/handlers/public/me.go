package public

import (
	handlershared "github.com/realty-promo/internal/http/handlers/shared"
	"github.com/realty-promo/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetMyPromotions 房东本人推广列表
func (h *Handler) GetMyPromotions(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.ParsePagination(c)
	promotions, total, err := h.PromotionService.ListForOwner(c.Request.Context(), actor, page, pageSize)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, promotions, response.NewPagination(page, pageSize, total))
}

// GetMyTransactions 房东本人成交与佣金列表
func (h *Handler) GetMyTransactions(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.ParsePagination(c)
	transactions, total, err := h.TransactionService.ListForOwner(c.Request.Context(), actor, page, pageSize)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, transactions, response.NewPagination(page, pageSize, total))
}

// GetMyNotifications 本人站内通知
func (h *Handler) GetMyNotifications(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.ParsePagination(c)
	unreadOnly := false
	if v := handlershared.ParseOptionalBool(c, "unread"); v != nil {
		unreadOnly = *v
	}
	notifications, total, err := h.NotificationService.ListForUser(c.Request.Context(), actor, page, pageSize, unreadOnly)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, notifications, response.NewPagination(page, pageSize, total))
}

// GetMyUnreadCount 本人未读通知数
func (h *Handler) GetMyUnreadCount(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	count, err := h.NotificationService.CountUnread(c.Request.Context(), actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"unread": count})
}

// MarkMyNotificationRead 标记通知已读
func (h *Handler) MarkMyNotificationRead(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	if err := h.NotificationService.MarkRead(c.Request.Context(), actor, c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

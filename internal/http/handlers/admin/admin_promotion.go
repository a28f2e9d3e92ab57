package admin

import (
	"strings"

	handlershared "github.com/realty-promo/internal/http/handlers/shared"
	"github.com/realty-promo/internal/http/response"
	"github.com/realty-promo/internal/models"
	"github.com/realty-promo/internal/repository"
	"github.com/realty-promo/internal/service"

	"github.com/gin-gonic/gin"
)

// CreatePromotionRequest 开通推广请求
type CreatePromotionRequest struct {
	PropertyID    string       `json:"property_id" binding:"required"`
	PromotionType string       `json:"promotion_type" binding:"required"`
	VideoURL      string       `json:"video_url"`
	BannerURL     string       `json:"banner_url"`
	DurationDays  int          `json:"duration_days" binding:"required"`
	AmountPaid    models.Money `json:"amount_paid"`
	AutoRenew     bool         `json:"auto_renew"`
}

// DeactivatePromotionRequest 停用推广请求
type DeactivatePromotionRequest struct {
	Reason string `json:"reason"`
}

// UpdateAutoRenewRequest 自动续期开关请求
type UpdateAutoRenewRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// CreatePromotion 开通推广
func (h *Handler) CreatePromotion(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	var req CreatePromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	promotion, err := h.PromotionService.Activate(c.Request.Context(), actor, service.ActivateInput{
		PropertyID:    req.PropertyID,
		PromotionType: req.PromotionType,
		VideoURL:      req.VideoURL,
		BannerURL:     req.BannerURL,
		DurationDays:  req.DurationDays,
		AmountPaid:    req.AmountPaid,
		AutoRenew:     req.AutoRenew,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, promotion)
}

// GetAdminPromotions 推广列表
func (h *Handler) GetAdminPromotions(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	filter := repository.PromotionListFilter{
		Page:          page,
		PageSize:      pageSize,
		OwnerID:       strings.TrimSpace(c.Query("owner_id")),
		PropertyID:    strings.TrimSpace(c.Query("property_id")),
		PromotionType: strings.ToLower(strings.TrimSpace(c.Query("promotion_type"))),
		IsActive:      handlershared.ParseOptionalBool(c, "is_active"),
		AutoRenew:     handlershared.ParseOptionalBool(c, "auto_renew"),
	}

	promotions, total, err := h.PromotionService.List(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, promotions, response.NewPagination(page, pageSize, total))
}

// GetAdminPromotion 推广详情
func (h *Handler) GetAdminPromotion(c *gin.Context) {
	promotion, err := h.PromotionService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, promotion)
}

// DeactivatePromotion 停用推广
func (h *Handler) DeactivatePromotion(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	var req DeactivatePromotionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, response.CodeBadRequest, "bad request", err)
			return
		}
	}

	promotion, err := h.PromotionService.Deactivate(c.Request.Context(), actor, c.Param("id"), req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, promotion)
}

// UpdatePromotionAutoRenew 设置自动续期
func (h *Handler) UpdatePromotionAutoRenew(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	var req UpdateAutoRenewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	promotion, err := h.PromotionService.SetAutoRenew(c.Request.Context(), actor, c.Param("id"), *req.Enabled)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, promotion)
}

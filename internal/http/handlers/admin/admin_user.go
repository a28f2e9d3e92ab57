package admin

import (
	"strings"

	handlershared "github.com/realty-promo/internal/http/handlers/shared"
	"github.com/realty-promo/internal/http/response"
	"github.com/realty-promo/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetAdminUsers 获取用户列表（房东查询，用于开通推广时选择房源归属）
func (h *Handler) GetAdminUsers(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	users, total, err := h.UserRepo.List(c.Request.Context(), repository.UserListFilter{
		Page:     page,
		PageSize: pageSize,
		Keyword:  strings.TrimSpace(c.Query("keyword")),
		Role:     strings.TrimSpace(c.Query("role")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "user fetch failed", err)
		return
	}
	response.SuccessWithPage(c, users, response.NewPagination(page, pageSize, total))
}

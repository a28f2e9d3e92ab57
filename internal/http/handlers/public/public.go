package public

import (
	"strconv"

	"github.com/realty-promo/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetLivePromotions 当前生效中的推广（展示位读取，可按类型过滤）
func (h *Handler) GetLivePromotions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	promotions, err := h.PromotionService.ListLive(c.Request.Context(), c.Query("type"), limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, promotions)
}

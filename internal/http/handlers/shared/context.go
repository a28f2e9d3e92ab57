package shared

import (
	"strings"

	"github.com/realty-promo/internal/http/response"
	"github.com/realty-promo/internal/service"

	"github.com/gin-gonic/gin"
)

// 鉴权中间件写入的上下文键
const (
	ContextKeyUserID   = "user_id"
	ContextKeyUserRole = "user_role"
)

// ActorFromContext 读取当前操作者；缺失时返回 401。
func ActorFromContext(c *gin.Context) (service.Actor, bool) {
	userID := strings.TrimSpace(c.GetString(ContextKeyUserID))
	if userID == "" {
		RespondError(c, response.CodeUnauthorized, "unauthorized", nil)
		return service.Actor{}, false
	}
	return service.Actor{
		UserID: userID,
		Role:   strings.TrimSpace(c.GetString(ContextKeyUserRole)),
	}, true
}

package public

import (
	handlershared "github.com/realty-promo/internal/http/handlers/shared"
	"github.com/realty-promo/internal/service"

	"github.com/gin-gonic/gin"
)

func respondServiceError(c *gin.Context, err error) {
	handlershared.RespondServiceError(c, err)
}

func getActor(c *gin.Context) (service.Actor, bool) {
	return handlershared.ActorFromContext(c)
}

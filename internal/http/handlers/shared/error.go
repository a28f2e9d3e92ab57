package shared

import (
	"github.com/realty-promo/internal/http/response"
	"github.com/realty-promo/internal/logger"
	"github.com/realty-promo/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id / trace_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil || c.Request == nil {
		return logger.S()
	}
	return logger.FromContext(c.Request.Context())
}

// RespondError 返回错误响应，并在有原始错误时记录日志。
func RespondError(c *gin.Context, code int, msg string, err error) {
	appErr := response.WrapError(code, msg, err)
	if err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"message", appErr.Message,
			"error", err,
		)
	}
	response.Error(c, appErr.Code, appErr.Message)
}

// 顺序敏感：权限类错误同时属于校验类，需要先匹配
var serviceErrorClasses = []response.ErrorClass{
	{Target: service.ErrAdminRequired, Code: response.CodeForbidden, Expose: true},
	{Target: service.ErrActorRequired, Code: response.CodeUnauthorized, Expose: true},
	{Target: service.ErrValidation, Code: response.CodeBadRequest, Expose: true},
	{Target: service.ErrNotFound, Code: response.CodeNotFound, Expose: true},
	{Target: service.ErrConflict, Code: response.CodeConflict, Expose: true},
}

// RespondServiceError 按业务错误类别映射响应码，依赖错误不向调用方暴露细节
func RespondServiceError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	appErr := Classify(err)
	RespondError(c, appErr.Code, appErr.Message, appErr.Err)
}

// Classify 将服务层错误归类为带业务码的错误
func Classify(err error) *response.AppError {
	return response.Classify(err, serviceErrorClasses)
}

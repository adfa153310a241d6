package shared

import (
	"errors"

	"github.com/leafcart/internal/http/response"
	"github.com/leafcart/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const internalErrorMessage = "internal server error"

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
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
	response.Fail(c, appErr)
}

// MappedError 业务错误到接口错误码的映射
// 命中时直接以错误文本作为提示，业务错误文本即面向用户的原因。
type MappedError struct {
	Target error
	Code   int
}

// RespondMappedError 按规则表映射业务错误，未命中时按内部错误处理
func RespondMappedError(c *gin.Context, err error, rules ...[]MappedError) {
	for _, group := range rules {
		for _, rule := range group {
			if errors.Is(err, rule.Target) {
				appErr := response.FromBusinessError(rule.Code, err)
				if appErr.Internal() {
					RequestLog(c).Errorw("handler_error", "code", appErr.Code, "error", err)
				}
				response.Fail(c, appErr)
				return
			}
		}
	}
	RespondError(c, response.CodeInternal, internalErrorMessage, err)
}

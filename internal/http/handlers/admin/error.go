package admin

import (
	handlershared "github.com/leafcart/internal/http/handlers/shared"
	"github.com/leafcart/internal/http/response"
	"github.com/leafcart/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 后台按 ID 查询优惠码时不存在为 404，而非下单路径上的冲突
var adminPromoCodeErrorRules = []handlershared.MappedError{
	{Target: service.ErrPromoCodeNotFound, Code: response.CodeNotFound},
	{Target: service.ErrPromoCodeExists, Code: response.CodeConflict},
}

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

func respondMappedError(c *gin.Context, err error) {
	handlershared.RespondMappedError(c, err,
		adminPromoCodeErrorRules,
		handlershared.NotFoundErrorRules,
		handlershared.ValidationErrorRules,
		handlershared.ConflictErrorRules,
	)
}

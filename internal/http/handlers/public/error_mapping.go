package public

import (
	handlershared "github.com/leafcart/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

// 下单与预览：参数错误 400，库存/优惠码/重复提交 409
func respondOrderError(c *gin.Context, err error) {
	handlershared.RespondMappedError(c, err,
		handlershared.ValidationErrorRules,
		handlershared.ConflictErrorRules,
		handlershared.NotFoundErrorRules,
	)
}

func respondQueryError(c *gin.Context, err error) {
	handlershared.RespondMappedError(c, err,
		handlershared.NotFoundErrorRules,
		handlershared.ValidationErrorRules,
	)
}

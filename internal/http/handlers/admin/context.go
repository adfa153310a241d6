package admin

import (
	handlershared "github.com/leafcart/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

// getAdminID 管理端操作人即令牌中的用户 ID
func getAdminID(c *gin.Context) (uint, bool) {
	return handlershared.GetUserID(c)
}

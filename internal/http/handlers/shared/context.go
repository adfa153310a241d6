package shared

import (
	"github.com/leafcart/internal/http/response"

	"github.com/gin-gonic/gin"
)

// 鉴权中间件写入上下文的键
const (
	ContextUserIDKey = "user_id"
	ContextRoleKey   = "user_role"
)

// GetContextUint 从上下文读取 uint 值并统一处理错误响应。
func GetContextUint(c *gin.Context, key string) (uint, bool) {
	value, exists := c.Get(key)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "unauthorized", nil)
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		if v == 0 {
			RespondError(c, response.CodeUnauthorized, "unauthorized", nil)
			return 0, false
		}
		return v, true
	case int:
		if v <= 0 {
			RespondError(c, response.CodeBadRequest, "invalid user id", nil)
			return 0, false
		}
		return uint(v), true
	case float64:
		if v <= 0 {
			RespondError(c, response.CodeBadRequest, "invalid user id", nil)
			return 0, false
		}
		return uint(v), true
	default:
		RespondError(c, response.CodeInternal, "invalid user id type", nil)
		return 0, false
	}
}

// GetUserID 读取当前登录用户 ID
func GetUserID(c *gin.Context) (uint, bool) {
	return GetContextUint(c, ContextUserIDKey)
}

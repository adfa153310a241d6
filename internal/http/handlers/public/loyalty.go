package public

import (
	handlershared "github.com/leafcart/internal/http/handlers/shared"
	"github.com/leafcart/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetLoyalty 获取积分账户、等级与积分流水
func (h *Handler) GetLoyalty(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	page, pageSize := handlershared.ParsePagination(c)
	account, err := h.LoyaltyService.GetAccount(uid, page, pageSize)
	if err != nil {
		respondQueryError(c, err)
		return
	}

	response.SuccessWithPage(c, account, response.BuildPagination(page, pageSize, account.Total))
}

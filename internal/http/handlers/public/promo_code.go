package public

import (
	"github.com/leafcart/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ValidatePromoCodeRequest 优惠码校验请求
type ValidatePromoCodeRequest struct {
	Code     string `json:"code" binding:"required"`
	Currency string `json:"currency"`
}

// ValidatePromoCode 以当前购物车校验优惠码
// 校验失败时返回 valid=false 及原因，不视为接口错误。
func (h *Handler) ValidatePromoCode(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req ValidatePromoCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	view, err := h.CartService.View(c.Request.Context(), uid, req.Currency)
	if err != nil {
		respondQueryError(c, err)
		return
	}
	productIDs := make([]uint, 0, len(view.Items))
	for _, line := range view.Items {
		productIDs = append(productIDs, line.ProductID)
	}

	result, err := h.PromoCodeService.Validate(req.Code, uid, view.Subtotal, productIDs, view.Currency)
	if err != nil && (result == nil || result.Reason == "") {
		respondError(c, response.CodeInternal, "internal server error", err)
		return
	}

	response.Success(c, result)
}

package public

import (
	handlershared "github.com/leafcart/internal/http/handlers/shared"
	"github.com/leafcart/internal/http/response"
	"github.com/leafcart/internal/service"

	"github.com/gin-gonic/gin"
)

// CartItemRequest 购物车项请求
type CartItemRequest struct {
	ProductID uint  `json:"product_id" binding:"required"`
	StrainID  *uint `json:"strain_id"`
	Quantity  int   `json:"quantity" binding:"required"`
}

// GetCart 获取购物车（按 currency 查询参数计价）
func (h *Handler) GetCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	view, err := h.CartService.View(c.Request.Context(), uid, c.Query("currency"))
	if err != nil {
		respondQueryError(c, err)
		return
	}

	response.Success(c, view)
}

// UpsertCartItem 加入或更新购物车项
func (h *Handler) UpsertCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	item, err := h.CartService.AddItem(c.Request.Context(), service.AddCartItemInput{
		UserID:    uid,
		ProductID: req.ProductID,
		StrainID:  req.StrainID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		respondQueryError(c, err)
		return
	}

	response.Success(c, item)
}

// DeleteCartItem 删除购物车项
func (h *Handler) DeleteCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	productID, ok := handlershared.ParseUintParam(c, "product_id")
	if !ok {
		respondError(c, response.CodeBadRequest, "invalid product id", nil)
		return
	}

	if err := h.CartService.RemoveItem(c.Request.Context(), uid, productID); err != nil {
		respondQueryError(c, err)
		return
	}

	response.Success(c, gin.H{"deleted": true})
}

package admin

import (
	"strings"

	handlershared "github.com/leafcart/internal/http/handlers/shared"
	"github.com/leafcart/internal/http/response"
	"github.com/leafcart/internal/models"
	"github.com/leafcart/internal/repository"
	"github.com/leafcart/internal/service"

	"github.com/gin-gonic/gin"
)

// PromoCodeRequest 创建/更新优惠码请求
type PromoCodeRequest struct {
	Code             string       `json:"code" binding:"required"`
	DiscountType     string       `json:"discount_type" binding:"required"`
	DiscountValue    models.Money `json:"discount_value"`
	DiscountValueUSD models.Money `json:"discount_value_usd"`
	DiscountValueEUR models.Money `json:"discount_value_eur"`
	MinOrderAmount   models.Money `json:"min_order_amount"`
	UsageLimit       *int         `json:"usage_limit"`
	ValidFrom        string       `json:"valid_from"`
	ValidUntil       string       `json:"valid_until"`
	IsActive         *bool        `json:"is_active"`
	ProductIDs       []uint       `json:"product_ids"`
}

func (r PromoCodeRequest) toInput() (service.PromoCodeInput, error) {
	validFrom, err := handlershared.ParseTimeNullable(r.ValidFrom)
	if err != nil {
		return service.PromoCodeInput{}, err
	}
	validUntil, err := handlershared.ParseTimeNullable(r.ValidUntil)
	if err != nil {
		return service.PromoCodeInput{}, err
	}
	return service.PromoCodeInput{
		Code:             r.Code,
		DiscountType:     r.DiscountType,
		DiscountValue:    r.DiscountValue,
		DiscountValueUSD: r.DiscountValueUSD,
		DiscountValueEUR: r.DiscountValueEUR,
		MinOrderAmount:   r.MinOrderAmount,
		UsageLimit:       r.UsageLimit,
		ValidFrom:        validFrom,
		ValidUntil:       validUntil,
		IsActive:         r.IsActive,
		ProductIDs:       r.ProductIDs,
	}, nil
}

// AdminListPromoCodes 优惠码列表
func (h *Handler) AdminListPromoCodes(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)

	var isActive *bool
	switch strings.TrimSpace(c.Query("is_active")) {
	case "true":
		v := true
		isActive = &v
	case "false":
		v := false
		isActive = &v
	}

	items, total, err := h.PromoCodeAdminService.List(repository.PromoCodeListFilter{
		Page:     page,
		PageSize: pageSize,
		Code:     strings.TrimSpace(c.Query("code")),
		IsActive: isActive,
	})
	if err != nil {
		respondMappedError(c, err)
		return
	}

	response.SuccessWithPage(c, items, response.BuildPagination(page, pageSize, total))
}

// AdminGetPromoCode 优惠码详情
func (h *Handler) AdminGetPromoCode(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "invalid promo code id", nil)
		return
	}

	promo, err := h.PromoCodeAdminService.Get(id)
	if err != nil {
		respondMappedError(c, err)
		return
	}

	response.Success(c, promo)
}

// AdminCreatePromoCode 创建优惠码
func (h *Handler) AdminCreatePromoCode(c *gin.Context) {
	var req PromoCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	input, err := req.toInput()
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid time format, expected RFC3339", nil)
		return
	}

	promo, err := h.PromoCodeAdminService.Create(input)
	if err != nil {
		respondMappedError(c, err)
		return
	}

	response.Success(c, promo)
}

// AdminUpdatePromoCode 更新优惠码
func (h *Handler) AdminUpdatePromoCode(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "invalid promo code id", nil)
		return
	}

	var req PromoCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	input, err := req.toInput()
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid time format, expected RFC3339", nil)
		return
	}

	promo, err := h.PromoCodeAdminService.Update(id, input)
	if err != nil {
		respondMappedError(c, err)
		return
	}

	response.Success(c, promo)
}

// AdminDeletePromoCode 停用优惠码（保留核销记录，不做物理删除）
func (h *Handler) AdminDeletePromoCode(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "invalid promo code id", nil)
		return
	}

	promo, err := h.PromoCodeAdminService.Deactivate(id)
	if err != nil {
		respondMappedError(c, err)
		return
	}

	response.Success(c, promo)
}

package public

import (
	"strings"

	handlershared "github.com/leafcart/internal/http/handlers/shared"
	"github.com/leafcart/internal/http/response"
	"github.com/leafcart/internal/repository"
	"github.com/leafcart/internal/service"

	"github.com/gin-gonic/gin"
)

// IdempotencyKeyHeader 幂等键请求头
const IdempotencyKeyHeader = "Idempotency-Key"

// DeliveryRequest 收货信息
type DeliveryRequest struct {
	Method        string `json:"method" binding:"required"`
	RecipientName string `json:"recipient_name"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	City          string `json:"city"`
	Comment       string `json:"comment"`
}

// CreateOrderRequest 创建订单请求（订单行取自购物车）
type CreateOrderRequest struct {
	Delivery       DeliveryRequest `json:"delivery" binding:"required"`
	PromoCode      string          `json:"promo_code"`
	Currency       string          `json:"currency"`
	IdempotencyKey string          `json:"idempotency_key"`
}

func (r CreateOrderRequest) toCheckoutInput(userID uint, headerKey string) service.CheckoutInput {
	key := strings.TrimSpace(headerKey)
	if key == "" {
		key = strings.TrimSpace(r.IdempotencyKey)
	}
	return service.CheckoutInput{
		UserID: userID,
		Delivery: service.DeliveryDetails{
			Method:         r.Delivery.Method,
			RecipientName:  r.Delivery.RecipientName,
			RecipientPhone: r.Delivery.Phone,
			Address:        r.Delivery.Address,
			City:           r.Delivery.City,
			Comment:        r.Delivery.Comment,
		},
		PromoCode:      r.PromoCode,
		Currency:       r.Currency,
		IdempotencyKey: key,
	}
}

// PreviewOrder 订单金额预览
func (h *Handler) PreviewOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	preview, err := h.OrderService.PreviewCheckout(c.Request.Context(), req.toCheckoutInput(uid, ""))
	if err != nil {
		respondOrderError(c, err)
		return
	}

	response.Success(c, preview)
}

// CreateOrder 从购物车创建订单
func (h *Handler) CreateOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	order, err := h.OrderService.CreateOrderFromCart(c.Request.Context(), req.toCheckoutInput(uid, c.GetHeader(IdempotencyKeyHeader)))
	if err != nil {
		respondOrderError(c, err)
		return
	}

	response.Success(c, order)
}

// ListOrders 获取订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	page, pageSize := handlershared.ParsePagination(c)
	createdFrom, err := handlershared.ParseTimeNullable(c.Query("created_from"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid created_from", nil)
		return
	}
	createdTo, err := handlershared.ParseTimeNullable(c.Query("created_to"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid created_to", nil)
		return
	}

	orders, total, err := h.OrderService.ListOrdersForUser(repository.OrderListFilter{
		Page:        page,
		PageSize:    pageSize,
		UserID:      uid,
		Status:      strings.TrimSpace(c.Query("status")),
		OrderNo:     strings.TrimSpace(c.Query("order_no")),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		respondQueryError(c, err)
		return
	}

	response.SuccessWithPage(c, orders, response.BuildPagination(page, pageSize, total))
}

// GetOrder 获取订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	orderID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "invalid order id", nil)
		return
	}

	order, err := h.OrderService.GetOrderForUser(uid, orderID)
	if err != nil {
		respondQueryError(c, err)
		return
	}

	response.Success(c, order)
}

// GetOrderByOrderNo 按订单号获取订单详情
func (h *Handler) GetOrderByOrderNo(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	orderNo := strings.TrimSpace(c.Param("order_no"))
	if orderNo == "" {
		respondError(c, response.CodeBadRequest, "invalid order number", nil)
		return
	}

	order, err := h.OrderService.GetOrderByNoForUser(uid, orderNo)
	if err != nil {
		respondQueryError(c, err)
		return
	}

	response.Success(c, order)
}

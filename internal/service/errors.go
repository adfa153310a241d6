package service

import (
	"errors"
	"fmt"
)

// 参数/状态校验错误
var (
	ErrEmptyCart               = errors.New("cart is empty")
	ErrInvalidQuantity         = errors.New("quantity must be positive")
	ErrInvalidOrderItem        = errors.New("invalid order item")
	ErrIdempotencyKeyRequired  = errors.New("idempotency key is required")
	ErrInvalidIdempotencyKey   = errors.New("idempotency key is too long")
	ErrInvalidDeliveryMethod   = errors.New("invalid delivery method")
	ErrDeliveryDetailsRequired = errors.New("delivery details are incomplete")
	ErrInvalidCurrency         = errors.New("unsupported currency")
	ErrInvalidOrderStatus      = errors.New("unknown order status")
	ErrOrderStatusInvalid      = errors.New("order status transition not allowed")
	ErrInvalidPaymentStatus    = errors.New("unknown payment status")
	ErrPaymentStatusTransition = errors.New("payment status transition not allowed")
	ErrInvalidStockChange      = errors.New("invalid stock change")
	ErrStockBelowReserved      = errors.New("stock cannot drop below reserved quantity")
	ErrInvalidThreshold        = errors.New("low stock threshold must not be negative")
	ErrPromoCodeInvalid        = errors.New("promo code definition is invalid")
	ErrUserRequired            = errors.New("user is required")
	ErrInvalidLoyaltyPoints    = errors.New("loyalty points must not be negative")
	ErrLoyaltyReferenceMissing = errors.New("loyalty reference is required")
)

// 资源不存在
var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrInventoryNotFound = errors.New("inventory record not found")
	ErrUserNotFound      = errors.New("user not found")
)

// 业务冲突（向调用方返回具体原因）
var (
	ErrOutOfStock             = errors.New("out of stock")
	ErrPromoCodeNotFound      = errors.New("Promo code not found")
	ErrPromoCodeInactive      = errors.New("Promo code is not active")
	ErrPromoCodeNotStarted    = errors.New("Promo code is not valid yet")
	ErrPromoCodeExpired       = errors.New("Promo code expired")
	ErrPromoCodeMinAmount     = errors.New("Order total is below the promo code minimum")
	ErrPromoCodeUsageLimit    = errors.New("Promo code usage limit reached")
	ErrPromoCodeNotApplicable = errors.New("Promo code does not apply to any product in the cart")
	ErrPromoCodeExists        = errors.New("promo code already exists")
	ErrDuplicateRequest       = errors.New("an identical order request is already being processed")
)

// OutOfStockError 某商品库存不足
type OutOfStockError struct {
	ProductID   uint
	ProductName string
}

func (e *OutOfStockError) Error() string {
	if e.ProductName != "" {
		return fmt.Sprintf("Product %s is out of stock", e.ProductName)
	}
	return fmt.Sprintf("Product %d is out of stock", e.ProductID)
}

// Is 使 errors.Is(err, ErrOutOfStock) 成立
func (e *OutOfStockError) Is(target error) bool {
	return target == ErrOutOfStock
}

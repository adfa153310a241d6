package shared

import (
	"github.com/leafcart/internal/http/response"
	"github.com/leafcart/internal/service"
)

// ValidationErrorRules 参数校验类错误
var ValidationErrorRules = []MappedError{
	{Target: service.ErrEmptyCart, Code: response.CodeBadRequest},
	{Target: service.ErrInvalidQuantity, Code: response.CodeBadRequest},
	{Target: service.ErrInvalidOrderItem, Code: response.CodeBadRequest},
	{Target: service.ErrIdempotencyKeyRequired, Code: response.CodeBadRequest},
	{Target: service.ErrInvalidIdempotencyKey, Code: response.CodeBadRequest},
	{Target: service.ErrInvalidDeliveryMethod, Code: response.CodeBadRequest},
	{Target: service.ErrDeliveryDetailsRequired, Code: response.CodeBadRequest},
	{Target: service.ErrInvalidCurrency, Code: response.CodeBadRequest},
	{Target: service.ErrInvalidOrderStatus, Code: response.CodeBadRequest},
	{Target: service.ErrOrderStatusInvalid, Code: response.CodeBadRequest},
	{Target: service.ErrInvalidPaymentStatus, Code: response.CodeBadRequest},
	{Target: service.ErrPaymentStatusTransition, Code: response.CodeBadRequest},
	{Target: service.ErrInvalidStockChange, Code: response.CodeBadRequest},
	{Target: service.ErrStockBelowReserved, Code: response.CodeBadRequest},
	{Target: service.ErrInvalidThreshold, Code: response.CodeBadRequest},
	{Target: service.ErrPromoCodeInvalid, Code: response.CodeBadRequest},
	{Target: service.ErrUserRequired, Code: response.CodeUnauthorized},
}

// NotFoundErrorRules 资源不存在类错误
var NotFoundErrorRules = []MappedError{
	{Target: service.ErrOrderNotFound, Code: response.CodeNotFound},
	{Target: service.ErrProductNotFound, Code: response.CodeNotFound},
	{Target: service.ErrInventoryNotFound, Code: response.CodeNotFound},
	{Target: service.ErrUserNotFound, Code: response.CodeNotFound},
}

// ConflictErrorRules 下单冲突类错误（库存、优惠码、重复提交）
var ConflictErrorRules = []MappedError{
	{Target: service.ErrOutOfStock, Code: response.CodeConflict},
	{Target: service.ErrPromoCodeNotFound, Code: response.CodeConflict},
	{Target: service.ErrPromoCodeInactive, Code: response.CodeConflict},
	{Target: service.ErrPromoCodeNotStarted, Code: response.CodeConflict},
	{Target: service.ErrPromoCodeExpired, Code: response.CodeConflict},
	{Target: service.ErrPromoCodeMinAmount, Code: response.CodeConflict},
	{Target: service.ErrPromoCodeUsageLimit, Code: response.CodeConflict},
	{Target: service.ErrPromoCodeNotApplicable, Code: response.CodeConflict},
	{Target: service.ErrDuplicateRequest, Code: response.CodeConflict},
	{Target: service.ErrPromoCodeExists, Code: response.CodeConflict},
}

package constants

// 订单状态常量
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// 支付状态常量（仅记录标记，不对接支付网关）
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// 配送方式常量
const (
	DeliveryMethodStandard = "standard"
	DeliveryMethodExpress  = "express"
)

// 库存变动类型常量
const (
	InventoryChangeAdjustment  = "adjustment"
	InventoryChangeRestock     = "restock"
	InventoryChangeReservation = "reservation"
)

// 优惠码类型常量
const (
	DiscountTypePercentage = "percentage"
	DiscountTypeFixed      = "fixed"
)

// 币种常量：基础币种 + 两个备选币种
const (
	CurrencyBase = "RUB"
	CurrencyUSD  = "USD"
	CurrencyEUR  = "EUR"
)

// 会员等级常量
const (
	LoyaltyLevelBronze   = "Bronze"
	LoyaltyLevelSilver   = "Silver"
	LoyaltyLevelGold     = "Gold"
	LoyaltyLevelPlatinum = "Platinum"
)

// 队列常量
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// 队列任务类型
const (
	TaskOrderPostCommit = "order:post_commit"
)

package repository

import "time"

// InventoryListFilter 库存列表过滤条件
type InventoryListFilter struct {
	Page         int
	PageSize     int
	ProductIDs   []uint
	OnlyLowStock bool
}

// InventoryLogListFilter 库存日志过滤条件
type InventoryLogListFilter struct {
	Page        int
	PageSize    int
	ProductID   uint
	ChangeType  string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// OrderListFilter 订单列表过滤条件
type OrderListFilter struct {
	Page          int
	PageSize      int
	UserID        uint
	Status        string
	PaymentStatus string
	OrderNo       string
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
}

// PromoCodeListFilter 优惠码列表过滤条件
type PromoCodeListFilter struct {
	Page     int
	PageSize int
	Code     string
	IsActive *bool
}

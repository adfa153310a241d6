package models

import (
	"time"

	"gorm.io/gorm"
)

// PromoCode 优惠码
type PromoCode struct {
	ID               uint           `gorm:"primarykey" json:"id"`                                                                      // 主键
	Code             string         `gorm:"type:varchar(64);uniqueIndex;not null" json:"code"`                                         // 优惠码（大写存储）
	DiscountType     string         `gorm:"type:varchar(20);not null" json:"discount_type"`                                            // percentage / fixed
	DiscountValue    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"discount_value"`                               // 百分比或基础币种固定额
	DiscountValueUSD Money          `gorm:"column:discount_value_usd;type:decimal(20,2);not null;default:0" json:"discount_value_usd"` // 美元固定额
	DiscountValueEUR Money          `gorm:"column:discount_value_eur;type:decimal(20,2);not null;default:0" json:"discount_value_eur"` // 欧元固定额
	MinOrderAmount   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"min_order_amount"`                             // 最低订单金额
	UsageLimit       *int           `json:"usage_limit,omitempty"`                                                                     // 总使用次数上限（空为不限）
	UsedCount        int            `gorm:"not null;default:0" json:"used_count"`                                                      // 已使用次数
	ValidFrom        time.Time      `gorm:"not null" json:"valid_from"`                                                                // 生效时间
	ValidUntil       *time.Time     `json:"valid_until,omitempty"`                                                                     // 失效时间（空为长期）
	IsActive         bool           `gorm:"not null" json:"is_active"`                                                                 // 是否启用
	CreatedAt        time.Time      `gorm:"index" json:"created_at"`                                                                   // 创建时间
	UpdatedAt        time.Time      `gorm:"index" json:"updated_at"`                                                                   // 更新时间
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`                                                                            // 软删除时间

	Products []PromoCodeProduct `gorm:"foreignKey:PromoCodeID" json:"products,omitempty"` // 适用商品（空为全部）
}

// TableName 指定表名
func (PromoCode) TableName() string {
	return "promo_codes"
}

// EligibleProductIDs 适用商品 ID 列表
func (p PromoCode) EligibleProductIDs() []uint {
	ids := make([]uint, 0, len(p.Products))
	for _, item := range p.Products {
		ids = append(ids, item.ProductID)
	}
	return ids
}

// PromoCodeProduct 优惠码适用商品
type PromoCodeProduct struct {
	ID          uint `gorm:"primarykey" json:"id"`
	PromoCodeID uint `gorm:"not null;uniqueIndex:idx_promo_product" json:"promo_code_id"`
	ProductID   uint `gorm:"not null;uniqueIndex:idx_promo_product" json:"product_id"`
}

// TableName 指定表名
func (PromoCodeProduct) TableName() string {
	return "promo_code_products"
}

// PromoCodeUsage 优惠码使用记录
type PromoCodeUsage struct {
	ID             uint      `gorm:"primarykey" json:"id"`                                          // 主键
	PromoCodeID    uint      `gorm:"index;not null" json:"promo_code_id"`                           // 优惠码ID
	UserID         uint      `gorm:"index;not null" json:"user_id"`                                 // 用户ID
	OrderID        uint      `gorm:"index;not null" json:"order_id"`                                // 订单ID
	IdempotencyKey string    `gorm:"type:varchar(120);uniqueIndex;not null" json:"idempotency_key"` // 幂等键
	UsedAt         time.Time `gorm:"not null" json:"used_at"`                                       // 使用时间
}

// TableName 指定表名
func (PromoCodeUsage) TableName() string {
	return "promo_code_usages"
}

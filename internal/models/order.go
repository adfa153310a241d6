package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表
// 约束：Total = Subtotal - DiscountAmount + DeliveryFee，Subtotal = Σ Items.Total。
type Order struct {
	ID               uint           `gorm:"primarykey" json:"id"`                                                // 主键
	OrderNo          string         `gorm:"type:varchar(40);uniqueIndex;not null" json:"order_no"`               // 订单编号
	UserID           uint           `gorm:"not null;uniqueIndex:idx_order_user_idem" json:"user_id"`             // 用户ID
	IdempotencyKey   string         `gorm:"type:varchar(120);not null;uniqueIndex:idx_order_user_idem" json:"-"` // 幂等键
	Status           string         `gorm:"type:varchar(20);index;not null" json:"status"`                       // 订单状态
	PaymentStatus    string         `gorm:"type:varchar(20);index;not null" json:"payment_status"`               // 支付状态
	Currency         string         `gorm:"type:varchar(8);not null" json:"currency"`                            // 币种
	Subtotal         Money          `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`               // 商品小计
	DiscountAmount   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"`        // 优惠金额
	DeliveryFee      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"delivery_fee"`           // 运费
	Total            Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total"`                  // 应付金额
	PromoCodeID      *uint          `gorm:"index" json:"promo_code_id,omitempty"`                                // 优惠码ID
	PromoCode        string         `gorm:"type:varchar(64)" json:"promo_code,omitempty"`                        // 优惠码
	DeliveryMethod   string         `gorm:"type:varchar(20);not null" json:"delivery_method"`                    // 配送方式
	RecipientName    string         `gorm:"type:varchar(120)" json:"recipient_name"`                             // 收件人
	RecipientPhone   string         `gorm:"type:varchar(40)" json:"recipient_phone"`                             // 联系电话
	DeliveryAddress  string         `gorm:"type:varchar(500)" json:"delivery_address"`                           // 地址
	DeliveryCity     string         `gorm:"type:varchar(120)" json:"delivery_city"`                              // 城市
	DeliveryComment  string         `gorm:"type:text" json:"delivery_comment,omitempty"`                         // 备注
	TrackingNumber   *string        `gorm:"type:varchar(120)" json:"tracking_number,omitempty"`                  // 物流单号
	LoyaltyPoints    int64          `gorm:"not null;default:0" json:"loyalty_points"`                            // 应得积分
	PostCommitDoneAt *time.Time     `json:"-"`                                                                   // 提交后副作用完成时间
	ShippedAt        *time.Time     `json:"shipped_at,omitempty"`                                                // 发货时间
	DeliveredAt      *time.Time     `json:"delivered_at,omitempty"`                                              // 送达时间
	CancelledAt      *time.Time     `json:"cancelled_at,omitempty"`                                              // 取消时间
	CreatedAt        time.Time      `gorm:"index" json:"created_at"`                                             // 创建时间
	UpdatedAt        time.Time      `gorm:"index" json:"updated_at"`                                             // 更新时间
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`                                                      // 软删除时间

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // 订单项
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

package models

import "time"

// OrderItem 订单项（创建后不可变）
type OrderItem struct {
	ID          uint      `gorm:"primarykey" json:"id"`                          // 主键
	OrderID     uint      `gorm:"index;not null" json:"order_id"`                // 订单ID
	ProductID   uint      `gorm:"index;not null" json:"product_id"`              // 商品ID
	StrainID    *uint     `json:"strain_id,omitempty"`                           // 品种ID
	ProductName string    `gorm:"type:varchar(200)" json:"product_name"`         // 商品名称快照
	Quantity    int       `gorm:"not null" json:"quantity"`                      // 数量
	UnitPrice   Money     `gorm:"type:decimal(20,2);not null" json:"unit_price"` // 单价
	Total       Money     `gorm:"type:decimal(20,2);not null" json:"total"`      // 小计
	CreatedAt   time.Time `json:"created_at"`                                    // 创建时间
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}

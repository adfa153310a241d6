package models

import "time"

// CartItem 购物车项，单价为加入购物车时的快照
type CartItem struct {
	ID           uint      `gorm:"primarykey" json:"id"`                                                              // 主键
	UserID       uint      `gorm:"index;not null" json:"user_id"`                                                     // 用户ID
	ProductID    uint      `gorm:"index;not null" json:"product_id"`                                                  // 商品ID
	StrainID     *uint     `gorm:"index" json:"strain_id,omitempty"`                                                  // 品种ID
	Quantity     int       `gorm:"not null" json:"quantity"`                                                          // 数量
	UnitPrice    Money     `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`                           // 基础币种单价快照
	UnitPriceUSD Money     `gorm:"column:unit_price_usd;type:decimal(20,2);not null;default:0" json:"unit_price_usd"` // 美元单价快照
	UnitPriceEUR Money     `gorm:"column:unit_price_eur;type:decimal(20,2);not null;default:0" json:"unit_price_eur"` // 欧元单价快照
	CreatedAt    time.Time `gorm:"index" json:"created_at"`                                                           // 加入时间
	UpdatedAt    time.Time `json:"updated_at"`                                                                        // 更新时间

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"` // 关联商品
}

// TableName 指定表名
func (CartItem) TableName() string {
	return "cart_items"
}

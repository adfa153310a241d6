package models

import "time"

// Inventory 商品库存（与商品一对一）
// 约束：0 <= ReservedQuantity <= Quantity，可用量 = Quantity - ReservedQuantity。
type Inventory struct {
	ID                uint       `gorm:"primarykey" json:"id"`                          // 主键
	ProductID         uint       `gorm:"uniqueIndex;not null" json:"product_id"`        // 商品ID
	Quantity          int        `gorm:"not null;default:0" json:"quantity"`            // 在库数量
	ReservedQuantity  int        `gorm:"not null;default:0" json:"reserved_quantity"`   // 已预留数量
	LowStockThreshold int        `gorm:"not null;default:0" json:"low_stock_threshold"` // 低库存阈值
	LastRestockDate   *time.Time `json:"last_restock_date,omitempty"`                   // 最近补货时间
	CreatedAt         time.Time  `json:"created_at"`                                    // 创建时间
	UpdatedAt         time.Time  `json:"updated_at"`                                    // 更新时间

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"` // 关联商品
}

// TableName 指定表名
func (Inventory) TableName() string {
	return "inventories"
}

// Available 可用数量
func (i Inventory) Available() int {
	return i.Quantity - i.ReservedQuantity
}

// InventoryLog 库存变动日志（只追加）
type InventoryLog struct {
	ID            uint      `gorm:"primarykey" json:"id"`                               // 主键
	ProductID     uint      `gorm:"index;not null" json:"product_id"`                   // 商品ID
	ChangeType    string    `gorm:"type:varchar(20);index;not null" json:"change_type"` // 变动类型
	QuantityDelta int       `gorm:"not null" json:"quantity_delta"`                     // 变动数量
	Notes         string    `gorm:"type:text" json:"notes"`                             // 备注
	ActorID       uint      `gorm:"index" json:"actor_id"`                              // 操作人
	CreatedAt     time.Time `gorm:"index" json:"created_at"`                            // 创建时间
}

// TableName 指定表名
func (InventoryLog) TableName() string {
	return "inventory_logs"
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// Product 商品表（目录由商品服务维护，这里只读取名称与价格）
type Product struct {
	ID        uint           `gorm:"primarykey" json:"id"`                                                    // 主键
	Name      string         `gorm:"type:varchar(200);not null" json:"name"`                                  // 名称
	Price     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price"`                      // 基础币种价格
	PriceUSD  Money          `gorm:"column:price_usd;type:decimal(20,2);not null;default:0" json:"price_usd"` // 美元价格
	PriceEUR  Money          `gorm:"column:price_eur;type:decimal(20,2);not null;default:0" json:"price_eur"` // 欧元价格
	IsActive  bool           `gorm:"not null" json:"is_active"`                                               // 是否上架
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                                                 // 创建时间
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"`                                                 // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                                                          // 软删除时间

	Strains []Strain `gorm:"foreignKey:ProductID" json:"strains,omitempty"` // 品种
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}

// Strain 商品品种
type Strain struct {
	ID        uint      `gorm:"primarykey" json:"id"`                   // 主键
	ProductID uint      `gorm:"index;not null" json:"product_id"`       // 商品ID
	Name      string    `gorm:"type:varchar(120);not null" json:"name"` // 名称
	CreatedAt time.Time `json:"created_at"`                             // 创建时间
}

// TableName 指定表名
func (Strain) TableName() string {
	return "strains"
}

package models

import "time"

// LoyaltyTransaction 积分入账流水（按 Reference 去重）
type LoyaltyTransaction struct {
	ID           uint      `gorm:"primarykey" json:"id"`                                    // 主键
	UserID       uint      `gorm:"index;not null" json:"user_id"`                           // 用户ID
	OrderID      *uint     `gorm:"index" json:"order_id,omitempty"`                         // 关联订单
	Points       int64     `gorm:"not null" json:"points"`                                  // 本次积分
	BalanceAfter int64     `gorm:"not null" json:"balance_after"`                           // 入账后累计积分
	LevelAfter   string    `gorm:"type:varchar(20);not null" json:"level_after"`            // 入账后等级
	Reference    string    `gorm:"type:varchar(120);uniqueIndex;not null" json:"reference"` // 幂等引用
	CreatedAt    time.Time `gorm:"index" json:"created_at"`                                 // 创建时间
}

// TableName 指定表名
func (LoyaltyTransaction) TableName() string {
	return "loyalty_transactions"
}

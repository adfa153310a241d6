package models

import (
	"time"
)

// User 用户表（本服务仅维护积分相关字段，账号由认证服务管理）
type User struct {
	ID            uint      `gorm:"primarykey" json:"id"`                                            // 主键
	Email         string    `gorm:"uniqueIndex;not null" json:"email"`                               // 邮箱
	DisplayName   string    `gorm:"default:''" json:"display_name"`                                  // 昵称
	Status        string    `gorm:"type:varchar(20);not null;default:'active'" json:"status"`        // 账号状态
	LoyaltyPoints int64     `gorm:"not null;default:0" json:"loyalty_points"`                        // 累计积分
	LoyaltyLevel  string    `gorm:"type:varchar(20);not null;default:'Bronze'" json:"loyalty_level"` // 会员等级
	CreatedAt     time.Time `gorm:"index" json:"created_at"`                                         // 创建时间
	UpdatedAt     time.Time `gorm:"index" json:"updated_at"`                                         // 更新时间
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

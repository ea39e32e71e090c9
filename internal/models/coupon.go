package models

import (
	"time"

	"gorm.io/gorm"
)

// Coupon 等级专属优惠券
type Coupon struct {
	ID           uint           `gorm:"primarykey" json:"id"`                                // 主键
	Code         string         `gorm:"type:varchar(64);uniqueIndex;not null" json:"code"`   // 优惠码（大写）
	RequiredTier *string        `gorm:"type:varchar(32);index" json:"required_tier"`         // 限定等级（为空表示不限）
	Type         string         `gorm:"type:varchar(20);not null" json:"type"`               // 类型（fixed/percent/free_shipping）
	Value        Money          `gorm:"type:decimal(20,2);not null;default:0" json:"value"`  // 面额或百分比
	Description  string         `gorm:"type:varchar(255)" json:"description"`                // 说明
	IsActive     bool           `gorm:"not null" json:"is_active"`                           // 是否启用
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`                             // 创建时间
	UpdatedAt    time.Time      `gorm:"index" json:"updated_at"`                             // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                                      // 软删除时间
}

// TableName 指定表名
func (Coupon) TableName() string {
	return "coupons"
}

// RequiresTier 是否限定等级
func (c *Coupon) RequiresTier() bool {
	return c != nil && c.RequiredTier != nil && *c.RequiredTier != ""
}

package models

import "time"

// CouponUsage 用户优惠券使用记录（只增不删）
type CouponUsage struct {
	ID         uint      `gorm:"primarykey" json:"id"`                                                                  // 主键
	UserID     uint      `gorm:"not null;uniqueIndex:idx_coupon_usage_user_code" json:"user_id"`                        // 用户ID
	CouponCode string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_coupon_usage_user_code" json:"coupon_code"`   // 优惠码
	OrderID    uint      `gorm:"index" json:"order_id"`                                                                 // 首次使用的订单
	CreatedAt  time.Time `gorm:"index" json:"created_at"`                                                               // 使用时间
}

// TableName 指定表名
func (CouponUsage) TableName() string {
	return "coupon_usages"
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单投影（外部订单系统同步而来）
type Order struct {
	ID          uint           `gorm:"primarykey" json:"id"`                      // 主键（与外部订单系统一致）
	OrderNo     string         `gorm:"type:varchar(64);index" json:"order_no"`    // 订单编号
	UserID      uint           `gorm:"index;not null" json:"user_id"`             // 下单用户（游客订单为 0）
	Status      string         `gorm:"type:varchar(32);index;not null" json:"status"` // 订单状态
	CompletedAt *time.Time     `gorm:"index" json:"completed_at"`                 // 完成时间
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                   // 创建时间
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`                   // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                            // 软删除时间

	Coupons []OrderCoupon `gorm:"foreignKey:OrderID" json:"coupons,omitempty"` // 订单使用的优惠券
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

// OrderCoupon 订单使用的优惠码
type OrderCoupon struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	OrderID    uint      `gorm:"not null;uniqueIndex:idx_order_coupon_unique" json:"order_id"`
	CouponCode string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_order_coupon_unique" json:"coupon_code"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName 指定表名
func (OrderCoupon) TableName() string {
	return "order_coupons"
}

package models

import "time"

// ReferralEdge 推荐关系（注册时建立，首单完成后入账）
type ReferralEdge struct {
	ID              uint       `gorm:"primarykey" json:"id"`                      // 主键
	ReferrerID      uint       `gorm:"not null;index" json:"referrer_id"`         // 推荐人
	ReferredID      uint       `gorm:"not null;uniqueIndex" json:"referred_id"`   // 被推荐人（每人仅一条）
	ReferralCode    string     `gorm:"type:varchar(32)" json:"referral_code"`     // 注册时填写的推广码
	Credited        bool       `gorm:"not null;default:false;index" json:"credited"` // 是否已入账
	CreditedAt      *time.Time `json:"credited_at,omitempty"`                     // 入账时间
	CreditedOrderID *uint      `json:"credited_order_id,omitempty"`               // 触发入账的订单
	CreatedAt       time.Time  `gorm:"index" json:"created_at"`                   // 创建时间
	UpdatedAt       time.Time  `json:"updated_at"`                                // 更新时间
}

// TableName 指定表名
func (ReferralEdge) TableName() string {
	return "referral_edges"
}

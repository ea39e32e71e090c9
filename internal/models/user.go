package models

import (
	"time"

	"gorm.io/gorm"
)

// User 用户账户（会员体系投影）
type User struct {
	ID              uint           `gorm:"primarykey" json:"id"`                                    // 主键（与外部用户系统一致）
	Email           string         `gorm:"type:varchar(255);index" json:"email"`                    // 邮箱
	DisplayName     string         `gorm:"default:''" json:"display_name"`                          // 昵称
	Status          string         `gorm:"type:varchar(20);default:'active'" json:"status"`         // 账号状态
	RegisteredAt    time.Time      `gorm:"index;not null" json:"registered_at"`                     // 注册时间（账龄计算基准）
	AffiliateCode   *string        `gorm:"type:varchar(32);uniqueIndex" json:"affiliate_code"`      // 推广码（生成前为空）
	LoyaltyTier     string         `gorm:"type:varchar(32);not null;default:''" json:"loyalty_tier"` // 会员等级
	TierVersion     uint64         `gorm:"not null;default:0" json:"-"`                             // 等级写入版本（乐观锁）
	NewTierUnlocked string         `gorm:"type:varchar(32);not null;default:''" json:"new_tier_unlocked"`
	ReferrerID      *uint          `gorm:"index" json:"referrer_id,omitempty"`         // 推荐人
	ReferralCount   int            `gorm:"not null;default:0" json:"referral_count"`   // 已入账推荐数
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                    // 创建时间
	UpdatedAt       time.Time      `gorm:"index" json:"updated_at"`                    // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                             // 软删除时间
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// HasAffiliateCode 是否已生成推广码
func (u *User) HasAffiliateCode() bool {
	return u != nil && u.AffiliateCode != nil && *u.AffiliateCode != ""
}

package models

import (
	"github.com/dujiao-next/loyalty/internal/constants"
	"github.com/dujiao-next/loyalty/internal/logger"

	"github.com/shopspring/decimal"
)

// DefaultTierCoupon 默认等级专属优惠券
type DefaultTierCoupon struct {
	Code        string
	Tier        string
	Type        string
	Value       int64
	Description string
}

// DefaultTierCoupons 默认等级优惠券表（每个非基础等级一张）
var DefaultTierCoupons = []DefaultTierCoupon{
	{Code: "ROOKIE10", Tier: constants.TierRookie, Type: constants.CouponTypePercent, Value: 10, Description: "10% off for Rookie members"},
	{Code: "HUSTLER20", Tier: constants.TierHustler, Type: constants.CouponTypePercent, Value: 20, Description: "20% off for Hustler members"},
	{Code: "PLAYMAKERFREE", Tier: constants.TierPlaymaker, Type: constants.CouponTypeShipping, Value: 0, Description: "Free shipping for Playmaker members"},
	{Code: "MAVERICK30", Tier: constants.TierMaverick, Type: constants.CouponTypePercent, Value: 30, Description: "30% off for Maverick members"},
	{Code: "TRAILBLAZERHOT", Tier: constants.TierTrailblazer, Type: constants.CouponTypeFixed, Value: 35, Description: "Hot deal for Trailblazer members"},
	{Code: "LEGENDARY", Tier: constants.TierLegend, Type: constants.CouponTypeFixed, Value: 50, Description: "Legendary reward"},
	{Code: "ELITE75", Tier: constants.TierElite, Type: constants.CouponTypeFixed, Value: 75, Description: "75 off for Elite members"},
	{Code: "OGMAX", Tier: constants.TierOG, Type: constants.CouponTypePercent, Value: 50, Description: "Maximum reward for OG members"},
}

// InitDefaultCoupons 初始化默认等级优惠券（已存在的优惠码跳过）
func InitDefaultCoupons() error {
	created := 0
	for _, item := range DefaultTierCoupons {
		var count int64
		if err := DB.Unscoped().Model(&Coupon{}).Where("code = ?", item.Code).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		tier := item.Tier
		coupon := Coupon{
			Code:         item.Code,
			RequiredTier: &tier,
			Type:         item.Type,
			Value:        NewMoneyFromDecimal(decimal.NewFromInt(item.Value)),
			Description:  item.Description,
			IsActive:     true,
		}
		if err := DB.Create(&coupon).Error; err != nil {
			return err
		}
		created++
	}
	if created > 0 {
		logger.Infow("default_coupons_created", "count", created)
	}
	return nil
}

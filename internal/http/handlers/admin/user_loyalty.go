package admin

import (
	handlershared "github.com/dujiao-next/loyalty/internal/http/handlers/shared"
	"github.com/dujiao-next/loyalty/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetUserLoyalty 查询用户会员状态、已用优惠码与推荐关系
func (h *Handler) GetUserLoyalty(c *gin.Context) {
	userID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	status, err := h.LoyaltyService.Status(userID)
	if err != nil {
		respondMappedError(c, err, "error.loyalty_fetch_failed")
		return
	}
	usedCodes, err := h.CouponService.UsedCodes(userID)
	if err != nil {
		respondMappedError(c, err, "error.loyalty_fetch_failed")
		return
	}
	referrals, err := h.ReferralService.ListReferrals(userID)
	if err != nil {
		respondMappedError(c, err, "error.loyalty_fetch_failed")
		return
	}
	response.Success(c, gin.H{
		"status":            status,
		"used_coupon_codes": usedCodes,
		"referrals":         referrals,
	})
}

// MintUserAffiliateCode 为用户生成推广码（已有则直接返回）
func (h *Handler) MintUserAffiliateCode(c *gin.Context) {
	userID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	code, err := h.AffiliateService.MintCode(userID)
	if err != nil {
		respondMappedError(c, err, "error.affiliate_code_failed")
		return
	}
	response.Success(c, gin.H{"user_id": userID, "affiliate_code": code})
}

// RecalculateUserTier 立即重算用户等级
func (h *Handler) RecalculateUserTier(c *gin.Context) {
	userID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	result, err := h.LoyaltyService.Update(userID)
	if err != nil {
		respondMappedError(c, err, "error.loyalty_fetch_failed")
		return
	}
	response.Success(c, result)
}

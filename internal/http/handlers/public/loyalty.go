package public

import (
	"github.com/dujiao-next/loyalty/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetMyLoyalty 获取当前用户会员状态（积分明细、等级、下一等级）
func (h *Handler) GetMyLoyalty(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	status, err := h.LoyaltyService.Status(uid)
	if err != nil {
		respondLoyaltyError(c, err, "error.loyalty_fetch_failed")
		return
	}
	response.Success(c, status)
}

// GetMyAffiliateCode 获取当前用户推广码，尚未生成时即时生成
func (h *Handler) GetMyAffiliateCode(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	code, err := h.AffiliateService.MintCode(uid)
	if err != nil {
		respondLoyaltyError(c, err, "error.affiliate_code_failed")
		return
	}
	response.Success(c, gin.H{"affiliate_code": code})
}

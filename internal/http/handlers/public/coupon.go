package public

import (
	"strings"

	handlershared "github.com/dujiao-next/loyalty/internal/http/handlers/shared"
	"github.com/dujiao-next/loyalty/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ValidateCouponRequest 优惠券校验请求
type ValidateCouponRequest struct {
	Code string `json:"code" binding:"required"`
}

// ValidateCouponResponse 优惠券校验结果
type ValidateCouponResponse struct {
	Code    string `json:"code"`
	Valid   bool   `json:"valid"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
}

// ValidateMyCoupon 校验当前用户能否使用优惠券
func (h *Handler) ValidateMyCoupon(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req ValidateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	code := strings.ToUpper(strings.TrimSpace(req.Code))

	err := h.CouponService.Validate(uid, code)
	if err == nil {
		response.Success(c, ValidateCouponResponse{Code: code, Valid: true})
		return
	}
	if rule := couponRejection(err); rule != nil {
		handlershared.RequestLog(c).Infow("coupon_validate_rejected", "user_id", uid, "coupon_code", code, "reason", rule.key)
		response.Success(c, ValidateCouponResponse{
			Code:    code,
			Valid:   false,
			Reason:  strings.TrimPrefix(rule.key, "error."),
			Message: handlershared.Message(rule.key),
		})
		return
	}
	respondLoyaltyError(c, err, "error.coupon_fetch_failed")
}

// GetMyAvailableCoupon 获取当前等级可用且未使用的优惠券
func (h *Handler) GetMyAvailableCoupon(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	coupon, err := h.CouponService.GetAvailableCouponForUser(uid)
	if err != nil {
		respondLoyaltyError(c, err, "error.coupon_fetch_failed")
		return
	}
	response.Success(c, gin.H{"coupon": coupon})
}

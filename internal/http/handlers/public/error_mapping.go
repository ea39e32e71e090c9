package public

import (
	"errors"

	"github.com/dujiao-next/loyalty/internal/http/response"
	"github.com/dujiao-next/loyalty/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

// couponRejectionRules 用户可见的优惠券拒绝原因
var couponRejectionRules = []mappedHandlerError{
	{target: service.ErrCouponNotFound, code: response.CodeNotFound, key: "error.coupon_not_found"},
	{target: service.ErrCouponInactive, code: response.CodeBadRequest, key: "error.coupon_inactive"},
	{target: service.ErrCouponTierMismatch, code: response.CodeBadRequest, key: "error.coupon_tier_mismatch"},
	{target: service.ErrCouponAlreadyUsed, code: response.CodeBadRequest, key: "error.coupon_already_used"},
}

var userLoyaltyErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidInput, code: response.CodeBadRequest, key: "error.bad_request"},
	{target: service.ErrUserNotFound, code: response.CodeNotFound, key: "error.user_not_found"},
	{target: service.ErrCollisionExhausted, code: response.CodeServiceUnavailable, key: "error.affiliate_code_exhausted"},
	{target: service.ErrStaleWrite, code: response.CodeConflict, key: "error.loyalty_write_conflict"},
}

// couponRejection 返回拒绝原因对应的规则，非拒绝类错误返回 nil
func couponRejection(err error) *mappedHandlerError {
	for i := range couponRejectionRules {
		if errors.Is(err, couponRejectionRules[i].target) {
			return &couponRejectionRules[i]
		}
	}
	return nil
}

func respondLoyaltyError(c *gin.Context, err error, fallbackKey string) {
	respondWithMappedError(c, err, userLoyaltyErrorRules, response.CodeInternal, fallbackKey)
}

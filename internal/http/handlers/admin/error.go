package admin

import (
	"errors"

	handlershared "github.com/dujiao-next/loyalty/internal/http/handlers/shared"
	"github.com/dujiao-next/loyalty/internal/http/response"
	"github.com/dujiao-next/loyalty/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

type mappedHandlerError struct {
	target error
	code   int
	key    string
}

var internalErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidInput, code: response.CodeBadRequest, key: "error.bad_request"},
	{target: service.ErrLoyaltyConfigInvalid, code: response.CodeBadRequest, key: "error.loyalty_config_invalid"},
	{target: service.ErrUserNotFound, code: response.CodeNotFound, key: "error.user_not_found"},
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, key: "error.order_not_found"},
	{target: service.ErrCouponNotFound, code: response.CodeNotFound, key: "error.coupon_not_found"},
	{target: service.ErrCollisionExhausted, code: response.CodeServiceUnavailable, key: "error.affiliate_code_exhausted"},
	{target: service.ErrStaleWrite, code: response.CodeConflict, key: "error.loyalty_write_conflict"},
}

func respondMappedError(c *gin.Context, err error, fallbackKey string) {
	for _, rule := range internalErrorRules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, response.CodeInternal, fallbackKey, err)
}

package admin

import (
	"strconv"
	"strings"

	handlershared "github.com/dujiao-next/loyalty/internal/http/handlers/shared"
	"github.com/dujiao-next/loyalty/internal/http/response"
	"github.com/dujiao-next/loyalty/internal/repository"
	"github.com/dujiao-next/loyalty/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CreateCouponRequest 创建优惠券请求
type CreateCouponRequest struct {
	Code         string          `json:"code" binding:"required"`
	RequiredTier string          `json:"required_tier"`
	Type         string          `json:"type" binding:"required"`
	Value        decimal.Decimal `json:"value"`
	Description  string          `json:"description"`
	IsActive     *bool           `json:"is_active"`
}

// CreateCoupon 创建等级优惠券
func (h *Handler) CreateCoupon(c *gin.Context) {
	var req CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	coupon, err := h.CouponService.CreateCoupon(service.CreateCouponInput{
		Code:         req.Code,
		RequiredTier: req.RequiredTier,
		Type:         req.Type,
		Value:        req.Value,
		Description:  req.Description,
		IsActive:     req.IsActive,
	})
	if err != nil {
		respondMappedError(c, err, "error.coupon_create_failed")
		return
	}
	response.Success(c, coupon)
}

// ListCoupons 优惠券列表
func (h *Handler) ListCoupons(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	filter := repository.CouponListFilter{
		Page:         page,
		PageSize:     pageSize,
		Code:         strings.TrimSpace(c.Query("code")),
		RequiredTier: strings.TrimSpace(c.Query("required_tier")),
	}
	if raw := strings.TrimSpace(c.Query("is_active")); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
		filter.IsActive = &active
	}
	coupons, total, err := h.CouponService.ListCoupons(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.coupon_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, coupons, response.NewPagination(page, pageSize, total))
}

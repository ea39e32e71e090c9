package service

import (
	"errors"
	"fmt"
)

// 通用错误
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

// 资源不存在（均包装 ErrNotFound）
var (
	ErrUserNotFound   = fmt.Errorf("user %w", ErrNotFound)
	ErrOrderNotFound  = fmt.Errorf("order %w", ErrNotFound)
	ErrCouponNotFound = fmt.Errorf("coupon %w", ErrNotFound)
)

// 推广码
var (
	ErrAffiliateCodeTaken = errors.New("affiliate code already taken")
	ErrCollisionExhausted = errors.New("affiliate code collision retries exhausted")
)

// 会员等级
var (
	ErrStaleWrite           = errors.New("loyalty tier write conflict")
	ErrLoyaltyConfigInvalid = errors.New("loyalty config invalid")
)

// 优惠券校验结果
var (
	ErrCouponTierMismatch = errors.New("coupon not available for current tier")
	ErrCouponAlreadyUsed  = errors.New("coupon already used")
	ErrCouponInactive     = errors.New("coupon inactive")
)

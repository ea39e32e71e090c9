package service

import (
	"strings"

	"github.com/dujiao-next/loyalty/internal/constants"
	"github.com/dujiao-next/loyalty/internal/logger"
	"github.com/dujiao-next/loyalty/internal/models"
	"github.com/dujiao-next/loyalty/internal/repository"

	"github.com/shopspring/decimal"
)

// CouponService 等级优惠券校验服务
type CouponService struct {
	couponRepo repository.CouponRepository
	usageRepo  repository.CouponUsageRepository
	userRepo   repository.UserRepository
}

// NewCouponService 创建优惠券服务
func NewCouponService(
	couponRepo repository.CouponRepository,
	usageRepo repository.CouponUsageRepository,
	userRepo repository.UserRepository,
) *CouponService {
	return &CouponService{
		couponRepo: couponRepo,
		usageRepo:  usageRepo,
		userRepo:   userRepo,
	}
}

// CreateCouponInput 创建优惠券输入
type CreateCouponInput struct {
	Code         string
	RequiredTier string
	Type         string
	Value        decimal.Decimal
	Description  string
	IsActive     *bool
}

// Validate 校验优惠券：先校验等级（严格相等），再校验是否已使用。返回 nil 表示可用
func (s *CouponService) Validate(userID uint, rawCode string) error {
	code := normalizeCouponCode(rawCode)
	if userID == 0 || code == "" {
		return ErrInvalidInput
	}
	coupon, err := s.couponRepo.GetByCode(code)
	if err != nil {
		return err
	}
	if coupon == nil {
		return ErrCouponNotFound
	}
	if !coupon.IsActive {
		return ErrCouponInactive
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	if coupon.RequiresTier() && *coupon.RequiredTier != user.LoyaltyTier {
		return ErrCouponTierMismatch
	}
	used, err := s.usageRepo.IsUsed(userID, code)
	if err != nil {
		return err
	}
	if used {
		return ErrCouponAlreadyUsed
	}
	return nil
}

// MarkUsed 记录用户已使用优惠券（重复调用无副作用）
func (s *CouponService) MarkUsed(userID uint, rawCode string, orderID uint) error {
	code := normalizeCouponCode(rawCode)
	if userID == 0 || code == "" {
		return ErrInvalidInput
	}
	created, err := s.usageRepo.MarkUsed(&models.CouponUsage{
		UserID:     userID,
		CouponCode: code,
		OrderID:    orderID,
	})
	if err != nil {
		return err
	}
	if created {
		logger.ForUser(userID).Infow("coupon_marked_used", "coupon_code", code, "order_id", orderID)
	}
	return nil
}

// GetAvailableCouponForUser 获取与用户当前等级匹配且未使用的优惠券，没有则返回 nil
func (s *CouponService) GetAvailableCouponForUser(userID uint) (*models.Coupon, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.LoyaltyTier == "" {
		return nil, nil
	}
	coupons, err := s.couponRepo.ListActiveByTier(user.LoyaltyTier)
	if err != nil {
		return nil, err
	}
	for i := range coupons {
		used, err := s.usageRepo.IsUsed(userID, coupons[i].Code)
		if err != nil {
			return nil, err
		}
		if !used {
			return &coupons[i], nil
		}
	}
	return nil, nil
}

// UsedCodes 用户已使用的优惠码
func (s *CouponService) UsedCodes(userID uint) ([]string, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	return s.usageRepo.ListCodesByUser(userID)
}

// CreateCoupon 创建优惠券
func (s *CouponService) CreateCoupon(input CreateCouponInput) (*models.Coupon, error) {
	code := normalizeCouponCode(input.Code)
	if code == "" {
		return nil, ErrInvalidInput
	}
	couponType := strings.ToLower(strings.TrimSpace(input.Type))
	switch couponType {
	case constants.CouponTypeFixed, constants.CouponTypePercent, constants.CouponTypeShipping:
	default:
		return nil, ErrInvalidInput
	}
	if input.Value.IsNegative() {
		return nil, ErrInvalidInput
	}
	if couponType == constants.CouponTypePercent && input.Value.GreaterThan(decimal.NewFromInt(100)) {
		return nil, ErrInvalidInput
	}

	coupon := &models.Coupon{
		Code:        code,
		Type:        couponType,
		Value:       models.NewMoneyFromDecimal(input.Value),
		Description: strings.TrimSpace(input.Description),
		IsActive:    true,
	}
	if tier := strings.TrimSpace(input.RequiredTier); tier != "" {
		coupon.RequiredTier = &tier
	}
	if input.IsActive != nil {
		coupon.IsActive = *input.IsActive
	}
	if err := s.couponRepo.Create(coupon); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrInvalidInput
		}
		return nil, err
	}
	return coupon, nil
}

// ListCoupons 优惠券列表
func (s *CouponService) ListCoupons(filter repository.CouponListFilter) ([]models.Coupon, int64, error) {
	return s.couponRepo.List(filter)
}

func normalizeCouponCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

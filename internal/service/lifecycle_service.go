package service

import (
	"errors"

	"github.com/dujiao-next/loyalty/internal/constants"
	"github.com/dujiao-next/loyalty/internal/logger"
	"github.com/dujiao-next/loyalty/internal/models"
	"github.com/dujiao-next/loyalty/internal/repository"
)

// 订单跳过原因
const (
	OrderSkipGuest        = "guest_order"
	OrderSkipNotCompleted = "not_completed"
)

// RegistrationResult 注册流程结果
type RegistrationResult struct {
	UserID        uint                 `json:"user_id"`
	AffiliateCode string               `json:"affiliate_code"`
	Tier          string               `json:"tier"`
	Referral      *models.ReferralEdge `json:"referral,omitempty"`
}

// OrderCompletionResult 订单完成流程结果
type OrderCompletionResult struct {
	OrderID          uint             `json:"order_id"`
	UserID           uint             `json:"user_id"`
	Skipped          bool             `json:"skipped"`
	SkipReason       string           `json:"skip_reason,omitempty"`
	Tier             TierUpdateResult `json:"tier"`
	CouponsMarked    []string         `json:"coupons_marked"`
	ReferralCredited bool             `json:"referral_credited"`
}

// LifecycleService 按固定顺序编排注册与订单完成流程
type LifecycleService struct {
	orderRepo repository.OrderRepository
	affiliate *AffiliateService
	loyalty   *LoyaltyService
	coupons   *CouponService
	referrals *ReferralService
}

// NewLifecycleService 创建流程编排服务
func NewLifecycleService(
	orderRepo repository.OrderRepository,
	affiliate *AffiliateService,
	loyalty *LoyaltyService,
	coupons *CouponService,
	referrals *ReferralService,
) *LifecycleService {
	return &LifecycleService{
		orderRepo: orderRepo,
		affiliate: affiliate,
		loyalty:   loyalty,
		coupons:   coupons,
		referrals: referrals,
	}
}

// OnUserRegistered 注册：生成推广码 -> 分配基础等级 -> 建立推荐关系。
// 推广码重试耗尽时仍继续后两步，最终返回 ErrCollisionExhausted。
func (s *LifecycleService) OnUserRegistered(userID uint, referralCode string) (RegistrationResult, error) {
	result := RegistrationResult{UserID: userID}
	if userID == 0 {
		return result, ErrInvalidInput
	}

	code, mintErr := s.affiliate.MintCode(userID)
	if mintErr != nil && !errors.Is(mintErr, ErrCollisionExhausted) {
		return result, mintErr
	}
	result.AffiliateCode = code

	tier, err := s.loyalty.AssignBaselineTier(userID)
	if err != nil {
		return result, err
	}
	result.Tier = tier

	edge, err := s.referrals.Link(userID, referralCode)
	if err != nil {
		return result, err
	}
	result.Referral = edge

	logger.ForUser(userID).Infow("lifecycle_user_registered",
		"affiliate_code", result.AffiliateCode,
		"tier", result.Tier,
		"referred", edge != nil,
	)
	return result, mintErr
}

// OnOrderCompleted 订单完成：重算等级 -> 标记优惠券已使用 -> 推荐首单入账。
// 各步骤幂等，任一步失败立即返回，整体重放安全。
func (s *LifecycleService) OnOrderCompleted(orderID uint) (OrderCompletionResult, error) {
	result := OrderCompletionResult{OrderID: orderID, CouponsMarked: []string{}}
	if orderID == 0 {
		return result, ErrInvalidInput
	}
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return result, err
	}
	if order == nil {
		return result, ErrOrderNotFound
	}
	result.UserID = order.UserID
	if order.UserID == 0 {
		result.Skipped = true
		result.SkipReason = OrderSkipGuest
		return result, nil
	}
	if order.Status != constants.OrderStatusCompleted {
		result.Skipped = true
		result.SkipReason = OrderSkipNotCompleted
		return result, nil
	}

	tierResult, err := s.loyalty.Update(order.UserID)
	if err != nil {
		return result, err
	}
	result.Tier = tierResult

	codes, err := s.orderRepo.ListCouponCodes(orderID)
	if err != nil {
		return result, err
	}
	for _, code := range codes {
		if err := s.coupons.MarkUsed(order.UserID, code, orderID); err != nil {
			return result, err
		}
		result.CouponsMarked = append(result.CouponsMarked, code)
	}

	credited, err := s.referrals.CreditOnFirstOrder(order.UserID, orderID)
	result.ReferralCredited = credited
	if err != nil {
		return result, err
	}

	logger.ForUser(order.UserID).Infow("lifecycle_order_completed",
		"order_id", orderID,
		"tier", result.Tier.CurrentTier,
		"tier_changed", result.Tier.Changed,
		"coupons", len(result.CouponsMarked),
		"referral_credited", credited,
	)
	return result, nil
}

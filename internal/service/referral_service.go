package service

import (
	"time"

	"github.com/dujiao-next/loyalty/internal/logger"
	"github.com/dujiao-next/loyalty/internal/models"
	"github.com/dujiao-next/loyalty/internal/repository"

	"gorm.io/gorm"
)

// ReferralCreditListener 推荐入账订阅者
type ReferralCreditListener interface {
	OnReferralCredited(edge models.ReferralEdge) error
}

// ReferralService 推荐关系业务服务
type ReferralService struct {
	repo      repository.ReferralRepository
	userRepo  repository.UserRepository
	orderRepo repository.OrderRepository
	affiliate *AffiliateService
	loyalty   *LoyaltyService
	listeners []ReferralCreditListener
	now       func() time.Time
}

// NewReferralService 创建推荐关系服务
func NewReferralService(
	repo repository.ReferralRepository,
	userRepo repository.UserRepository,
	orderRepo repository.OrderRepository,
	affiliate *AffiliateService,
	loyalty *LoyaltyService,
) *ReferralService {
	return &ReferralService{
		repo:      repo,
		userRepo:  userRepo,
		orderRepo: orderRepo,
		affiliate: affiliate,
		loyalty:   loyalty,
		now:       time.Now,
	}
}

// AddListener 注册推荐入账订阅者
func (s *ReferralService) AddListener(listener ReferralCreditListener) {
	if listener == nil {
		return
	}
	s.listeners = append(s.listeners, listener)
}

// Link 根据注册时填写的推广码建立推荐关系。
// 空码、无效码与自推荐都返回 (nil, nil)；同一用户重复建立返回已有关系。
func (s *ReferralService) Link(referredID uint, rawCode string) (*models.ReferralEdge, error) {
	if referredID == 0 {
		return nil, ErrInvalidInput
	}
	code := normalizeAffiliateCode(rawCode)
	if code == "" {
		return nil, nil
	}
	referred, err := s.userRepo.GetByID(referredID)
	if err != nil {
		return nil, err
	}
	if referred == nil {
		return nil, ErrUserNotFound
	}
	existing, err := s.repo.GetByReferred(referredID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	referrer, err := s.affiliate.ResolveCode(code)
	if err != nil {
		return nil, err
	}
	if referrer == nil {
		logger.ForUser(referredID).Infow("referral_code_unresolved", "referral_code", code)
		return nil, nil
	}
	if referrer.ID == referredID {
		logger.ForUser(referredID).Warnw("referral_self_rejected", "referral_code", code)
		return nil, nil
	}

	edge := &models.ReferralEdge{
		ReferrerID:   referrer.ID,
		ReferredID:   referredID,
		ReferralCode: code,
	}
	err = s.repo.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(edge); err != nil {
			return err
		}
		_, err := s.userRepo.WithTx(tx).SetReferrer(referredID, referrer.ID)
		return err
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return s.repo.GetByReferred(referredID)
		}
		return nil, err
	}
	logger.ForUser(referredID).Infow("referral_linked", "referrer_id", referrer.ID)
	return edge, nil
}

// CreditOnFirstOrder 被推荐人完成首单时为推荐人入账（至多一次），随后重算推荐人等级
func (s *ReferralService) CreditOnFirstOrder(referredID uint, orderID uint) (bool, error) {
	if referredID == 0 {
		return false, ErrInvalidInput
	}
	completed, err := s.orderRepo.CountCompletedByUser(referredID)
	if err != nil {
		return false, err
	}
	edge, err := s.repo.GetByReferred(referredID)
	if err != nil {
		return false, err
	}
	if edge == nil {
		return false, nil
	}
	if edge.Credited {
		// 同一订单重放：入账已提交，补做推荐人等级重算
		if orderID != 0 && edge.CreditedOrderID != nil && *edge.CreditedOrderID == orderID {
			if _, err := s.loyalty.Update(edge.ReferrerID); err != nil {
				return false, err
			}
		}
		return false, nil
	}
	if completed != 1 {
		return false, nil
	}

	credited := false
	now := s.now()
	err = s.repo.Transaction(func(tx *gorm.DB) error {
		applied, err := s.repo.WithTx(tx).MarkCredited(referredID, orderID, now)
		if err != nil || !applied {
			return err
		}
		if err := s.userRepo.WithTx(tx).IncrementReferralCount(edge.ReferrerID, 1); err != nil {
			return err
		}
		credited = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if !credited {
		return false, nil
	}

	logger.ForUser(edge.ReferrerID).Infow("referral_credited", "referred_id", referredID, "order_id", orderID)
	edge.Credited = true
	edge.CreditedAt = &now
	if orderID != 0 {
		edge.CreditedOrderID = &orderID
	}
	for _, listener := range s.listeners {
		if err := listener.OnReferralCredited(*edge); err != nil {
			logger.ForUser(edge.ReferrerID).Warnw("referral_credit_listener_failed", "error", err)
		}
	}
	if _, err := s.loyalty.Update(edge.ReferrerID); err != nil {
		return true, err
	}
	return true, nil
}

// ListReferrals 推荐人名下的推荐关系
func (s *ReferralService) ListReferrals(referrerID uint) ([]models.ReferralEdge, error) {
	if referrerID == 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByReferrer(referrerID)
}

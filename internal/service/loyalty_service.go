package service

import (
	"fmt"
	"time"

	"github.com/dujiao-next/loyalty/internal/constants"
	"github.com/dujiao-next/loyalty/internal/logger"
	"github.com/dujiao-next/loyalty/internal/models"
	"github.com/dujiao-next/loyalty/internal/repository"
)

const defaultTierUpdateRetries = 3

// PointsConfig 积分权重
type PointsConfig struct {
	PerReferral       int
	PerCompletedOrder int
	PerAgePeriod      int
	AgePeriod         time.Duration
}

// DefaultPointsConfig 默认积分权重：推荐 20、完成订单 10、每满 30 天账龄 5
func DefaultPointsConfig() PointsConfig {
	return PointsConfig{
		PerReferral:       constants.PointsPerReferral,
		PerCompletedOrder: constants.PointsPerCompletedOrder,
		PerAgePeriod:      constants.PointsPerAgePeriod,
		AgePeriod:         time.Duration(constants.AccountAgePeriodDays) * 24 * time.Hour,
	}
}

// PointsBreakdown 积分明细
type PointsBreakdown struct {
	ReferralCount   int   `json:"referral_count"`
	CompletedOrders int64 `json:"completed_orders"`
	AgePeriods      int   `json:"age_periods"`
	ReferralPoints  int   `json:"referral_points"`
	OrderPoints     int   `json:"order_points"`
	AgePoints       int   `json:"age_points"`
	Total           int   `json:"total"`
}

// TierUpdateResult 等级重算结果
type TierUpdateResult struct {
	UserID       uint   `json:"user_id"`
	Points       int    `json:"points"`
	PreviousTier string `json:"previous_tier"`
	CurrentTier  string `json:"current_tier"`
	Changed      bool   `json:"changed"`
}

// TierChangeEvent 等级变化事件
type TierChangeEvent struct {
	UserID       uint
	PreviousTier string
	NewTier      string
	Points       int
	Upgraded     bool
	OccurredAt   time.Time
}

// TierChangeListener 等级变化订阅者
type TierChangeListener interface {
	OnTierChanged(event TierChangeEvent) error
}

// NextTier 下一等级信息
type NextTier struct {
	Name           string `json:"name"`
	PointsRequired int    `json:"points_required"`
	IsMax          bool   `json:"is_max"`
	Label          string `json:"label"`
}

// LoyaltyStatus 用户会员概览
type LoyaltyStatus struct {
	UserID          uint            `json:"user_id"`
	Tier            string          `json:"tier"`
	Points          PointsBreakdown `json:"points"`
	Next            NextTier        `json:"next"`
	NewTierUnlocked string          `json:"new_tier_unlocked"`
	AffiliateCode   string          `json:"affiliate_code"`
	ReferralCount   int             `json:"referral_count"`
}

// LoyaltyService 积分与等级业务服务
type LoyaltyService struct {
	userRepo       repository.UserRepository
	orderRepo      repository.OrderRepository
	settingService *SettingService
	locker         UserLocker
	points         PointsConfig
	maxRetries     int
	now            func() time.Time
	listeners      []TierChangeListener
}

// NewLoyaltyService 创建积分与等级服务
func NewLoyaltyService(
	userRepo repository.UserRepository,
	orderRepo repository.OrderRepository,
	settingService *SettingService,
	locker UserLocker,
	points PointsConfig,
	maxRetries int,
) *LoyaltyService {
	defaults := DefaultPointsConfig()
	if points.AgePeriod <= 0 {
		points.AgePeriod = defaults.AgePeriod
	}
	if maxRetries <= 0 {
		maxRetries = defaultTierUpdateRetries
	}
	if locker == nil {
		locker = newLocalUserLocker()
	}
	return &LoyaltyService{
		userRepo:       userRepo,
		orderRepo:      orderRepo,
		settingService: settingService,
		locker:         locker,
		points:         points,
		maxRetries:     maxRetries,
		now:            time.Now,
	}
}

// AddListener 注册等级变化订阅者
func (s *LoyaltyService) AddListener(listener TierChangeListener) {
	if listener == nil {
		return
	}
	s.listeners = append(s.listeners, listener)
}

// CalculatePoints 实时计算积分（每次读取最新的推荐数、订单数与账龄）
func (s *LoyaltyService) CalculatePoints(userID uint) (PointsBreakdown, error) {
	user, err := s.loadUser(userID)
	if err != nil {
		return PointsBreakdown{}, err
	}
	return s.calculate(user)
}

// GetPoints 获取积分总数
func (s *LoyaltyService) GetPoints(userID uint) (int, error) {
	breakdown, err := s.CalculatePoints(userID)
	if err != nil {
		return 0, err
	}
	return breakdown.Total, nil
}

// GetTier 获取用户当前存储的等级
func (s *LoyaltyService) GetTier(userID uint) (string, error) {
	user, err := s.loadUser(userID)
	if err != nil {
		return "", err
	}
	return user.LoyaltyTier, nil
}

// Tiers 当前生效的等级表
func (s *LoyaltyService) Tiers() ([]LoyaltyTier, error) {
	setting, err := s.settingService.GetLoyaltySetting()
	if err != nil {
		return nil, err
	}
	return setting.Tiers, nil
}

// GetNextTier 获取下一等级；已是最高等级时 IsMax 为 true
func (s *LoyaltyService) GetNextTier(userID uint) (NextTier, error) {
	user, err := s.loadUser(userID)
	if err != nil {
		return NextTier{}, err
	}
	tiers, err := s.Tiers()
	if err != nil {
		return NextTier{}, err
	}
	return nextTierOf(tiers, user.LoyaltyTier), nil
}

// Status 用户会员概览
func (s *LoyaltyService) Status(userID uint) (*LoyaltyStatus, error) {
	user, err := s.loadUser(userID)
	if err != nil {
		return nil, err
	}
	breakdown, err := s.calculate(user)
	if err != nil {
		return nil, err
	}
	tiers, err := s.Tiers()
	if err != nil {
		return nil, err
	}
	status := &LoyaltyStatus{
		UserID:          user.ID,
		Tier:            user.LoyaltyTier,
		Points:          breakdown,
		Next:            nextTierOf(tiers, user.LoyaltyTier),
		NewTierUnlocked: user.NewTierUnlocked,
		ReferralCount:   user.ReferralCount,
	}
	if user.HasAffiliateCode() {
		status.AffiliateCode = *user.AffiliateCode
	}
	return status, nil
}

// AssignBaselineTier 为新用户写入基础等级，已有等级时不变
func (s *LoyaltyService) AssignBaselineTier(userID uint) (string, error) {
	user, err := s.loadUser(userID)
	if err != nil {
		return "", err
	}
	if user.LoyaltyTier != "" {
		return user.LoyaltyTier, nil
	}
	tiers, err := s.Tiers()
	if err != nil {
		return "", err
	}
	baseline := tiers[0].Name
	if _, err := s.userRepo.SetBaselineTier(userID, baseline); err != nil {
		return "", err
	}
	return s.GetTier(userID)
}

// Update 重算积分与等级，仅在等级变化时写入并通知订阅者
func (s *LoyaltyService) Update(userID uint) (TierUpdateResult, error) {
	if userID == 0 {
		return TierUpdateResult{}, ErrInvalidInput
	}
	unlock, err := s.locker.Lock(userID)
	if err != nil {
		return TierUpdateResult{}, err
	}
	defer unlock()

	tiers, err := s.Tiers()
	if err != nil {
		return TierUpdateResult{}, err
	}

	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		user, err := s.loadUser(userID)
		if err != nil {
			return TierUpdateResult{}, err
		}
		breakdown, err := s.calculate(user)
		if err != nil {
			return TierUpdateResult{}, err
		}
		target := ResolveTier(breakdown.Total, tiers)
		result := TierUpdateResult{
			UserID:       userID,
			Points:       breakdown.Total,
			PreviousTier: user.LoyaltyTier,
			CurrentTier:  target.Name,
		}
		if user.LoyaltyTier == target.Name {
			return result, nil
		}

		applied, err := s.userRepo.UpdateTier(userID, user.TierVersion, target.Name, target.Name)
		if err != nil {
			return TierUpdateResult{}, err
		}
		if !applied {
			logger.ForUser(userID).Debugw("loyalty_tier_update_conflict", "attempt", attempt)
			continue
		}

		result.Changed = true
		logger.ForUser(userID).Infow("loyalty_tier_changed",
			"previous_tier", result.PreviousTier,
			"new_tier", result.CurrentTier,
			"points", result.Points,
		)
		s.emit(TierChangeEvent{
			UserID:       userID,
			PreviousTier: result.PreviousTier,
			NewTier:      result.CurrentTier,
			Points:       result.Points,
			Upgraded:     tierIndex(tiers, result.CurrentTier) > tierIndex(tiers, result.PreviousTier),
			OccurredAt:   s.now(),
		})
		return result, nil
	}
	return TierUpdateResult{}, fmt.Errorf("%w: user %d after %d attempts", ErrStaleWrite, userID, s.maxRetries)
}

func (s *LoyaltyService) emit(event TierChangeEvent) {
	for _, listener := range s.listeners {
		if err := listener.OnTierChanged(event); err != nil {
			logger.ForUser(event.UserID).Warnw("loyalty_tier_listener_failed", "new_tier", event.NewTier, "error", err)
		}
	}
}

func (s *LoyaltyService) loadUser(userID uint) (*models.User, error) {
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
	return user, nil
}

func (s *LoyaltyService) calculate(user *models.User) (PointsBreakdown, error) {
	completed, err := s.orderRepo.CountCompletedByUser(user.ID)
	if err != nil {
		return PointsBreakdown{}, err
	}
	referrals := user.ReferralCount
	if referrals < 0 {
		referrals = 0
	}
	if completed < 0 {
		completed = 0
	}
	periods := 0
	if age := s.now().Sub(user.RegisteredAt); age > 0 && !user.RegisteredAt.IsZero() {
		periods = int(age / s.points.AgePeriod)
	}

	breakdown := PointsBreakdown{
		ReferralCount:   referrals,
		CompletedOrders: completed,
		AgePeriods:      periods,
		ReferralPoints:  referrals * s.points.PerReferral,
		OrderPoints:     int(completed) * s.points.PerCompletedOrder,
		AgePoints:       periods * s.points.PerAgePeriod,
	}
	breakdown.Total = breakdown.ReferralPoints + breakdown.OrderPoints + breakdown.AgePoints
	if breakdown.Total < 0 {
		breakdown.Total = 0
	}
	return breakdown, nil
}

func nextTierOf(tiers []LoyaltyTier, current string) NextTier {
	if len(tiers) == 0 {
		return NextTier{IsMax: true}
	}
	idx := tierIndex(tiers, current)
	if idx >= len(tiers)-1 {
		top := tiers[len(tiers)-1]
		return NextTier{
			Name:           top.Name,
			PointsRequired: top.Threshold,
			IsMax:          true,
			Label:          fmt.Sprintf("%s (Max)", top.Name),
		}
	}
	next := tiers[idx+1]
	return NextTier{
		Name:           next.Name,
		PointsRequired: next.Threshold,
		Label:          fmt.Sprintf("%s (%d pts)", next.Name, next.Threshold),
	}
}

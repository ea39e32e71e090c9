package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/dujiao-next/loyalty/internal/constants"
	"github.com/dujiao-next/loyalty/internal/logger"
	"github.com/dujiao-next/loyalty/internal/models"
	"github.com/dujiao-next/loyalty/internal/repository"
)

const (
	notificationMessageMaxRune  = 500
	notificationDefaultPageSize = 20
	notificationMaxPageSize     = 100
)

// NotificationService 站内通知服务，订阅等级变化与推荐入账
type NotificationService struct {
	repo           repository.NotificationRepository
	userRepo       repository.UserRepository
	couponService  *CouponService
	settingService *SettingService
	now            func() time.Time
}

// NewNotificationService 创建站内通知服务
func NewNotificationService(
	repo repository.NotificationRepository,
	userRepo repository.UserRepository,
	couponService *CouponService,
	settingService *SettingService,
) *NotificationService {
	return &NotificationService{
		repo:           repo,
		userRepo:       userRepo,
		couponService:  couponService,
		settingService: settingService,
		now:            time.Now,
	}
}

// NotificationList 通知列表
type NotificationList struct {
	Items       []models.Notification `json:"items"`
	Total       int64                 `json:"total"`
	UnreadCount int64                 `json:"unread_count"`
}

// Add 新增一条通知
func (s *NotificationService) Add(userID uint, notificationType, message string, data models.JSON) (*models.Notification, error) {
	text := clipRunes(strings.TrimSpace(message), notificationMessageMaxRune)
	if userID == 0 || text == "" {
		return nil, ErrInvalidInput
	}
	if data == nil {
		data = models.JSON{}
	}
	notification := &models.Notification{
		UserID:    userID,
		Type:      strings.TrimSpace(notificationType),
		Message:   text,
		Data:      data,
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(notification); err != nil {
		return nil, err
	}
	logger.ForUser(userID).Debugw("notification_added", "type", notification.Type)
	return notification, nil
}

// OnTierChanged 等级提升时提醒用户，可附带当前等级的专属优惠码
func (s *NotificationService) OnTierChanged(event TierChangeEvent) error {
	if !event.Upgraded {
		return nil
	}
	setting, err := s.settingService.GetLoyaltySetting()
	if err != nil {
		return err
	}
	if !setting.NotifyOnTierChange {
		return nil
	}

	message := fmt.Sprintf("Congratulations! You reached the %s level.", event.NewTier)
	data := models.JSON{
		"previous_tier": event.PreviousTier,
		"new_tier":      event.NewTier,
		"points":        event.Points,
	}
	if setting.MentionTierCoupon && s.couponService != nil {
		coupon, err := s.couponService.GetAvailableCouponForUser(event.UserID)
		if err != nil {
			logger.ForUser(event.UserID).Warnw("notification_tier_coupon_lookup_failed", "error", err)
		} else if coupon != nil {
			message += fmt.Sprintf(" Use coupon %s on your next order.", coupon.Code)
			data["coupon_code"] = coupon.Code
		}
	}
	_, err = s.Add(event.UserID, constants.NotificationTypeTierUnlocked, message, data)
	return err
}

// OnReferralCredited 推荐入账时提醒推荐人
func (s *NotificationService) OnReferralCredited(edge models.ReferralEdge) error {
	data := models.JSON{"referred_id": edge.ReferredID}
	if edge.CreditedOrderID != nil {
		data["order_id"] = *edge.CreditedOrderID
	}
	_, err := s.Add(edge.ReferrerID, constants.NotificationTypeReferralGiven,
		"A friend you referred completed their first order. Your referral has been credited.", data)
	return err
}

// List 通知列表（新的在前）
func (s *NotificationService) List(userID uint, page, pageSize int) (*NotificationList, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	if pageSize <= 0 {
		pageSize = notificationDefaultPageSize
	}
	if pageSize > notificationMaxPageSize {
		pageSize = notificationMaxPageSize
	}
	items, total, err := s.repo.List(repository.NotificationListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   userID,
	})
	if err != nil {
		return nil, err
	}
	unread, err := s.repo.CountUnread(userID)
	if err != nil {
		return nil, err
	}
	return &NotificationList{Items: items, Total: total, UnreadCount: unread}, nil
}

// UnreadCount 未读数量
func (s *NotificationService) UnreadCount(userID uint) (int64, error) {
	if userID == 0 {
		return 0, ErrInvalidInput
	}
	return s.repo.CountUnread(userID)
}

// MarkAllRead 全部标记已读，同时清除新等级解锁标记
func (s *NotificationService) MarkAllRead(userID uint) (int64, error) {
	if userID == 0 {
		return 0, ErrInvalidInput
	}
	affected, err := s.repo.MarkAllRead(userID, s.now())
	if err != nil {
		return 0, err
	}
	if err := s.userRepo.ClearNewTierUnlocked(userID); err != nil {
		return affected, err
	}
	return affected, nil
}

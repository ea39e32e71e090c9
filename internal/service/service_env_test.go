package service

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dujiao-next/loyalty/internal/constants"
	"github.com/dujiao-next/loyalty/internal/models"
	"github.com/dujiao-next/loyalty/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

var loyaltyTestNow = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

type loyaltyTestEnv struct {
	db            *gorm.DB
	users         *countingUserRepo
	orders        *repository.GormOrderRepository
	settings      *SettingService
	generator     *CodeGenerator
	affiliate     *AffiliateService
	loyalty       *LoyaltyService
	coupons       *CouponService
	referrals     *ReferralService
	notifications *NotificationService
	lifecycle     *LifecycleService
}

// countingUserRepo 统计等级写入次数，可强制模拟版本冲突
type countingUserRepo struct {
	*repository.GormUserRepository
	mu            sync.Mutex
	tierWrites    int
	forceConflict bool
}

func (r *countingUserRepo) UpdateTier(userID uint, expectedVersion uint64, tier string, unlocked string) (bool, error) {
	r.mu.Lock()
	r.tierWrites++
	force := r.forceConflict
	r.mu.Unlock()
	if force {
		return false, nil
	}
	return r.GormUserRepository.UpdateTier(userID, expectedVersion, tier, unlocked)
}

func (r *countingUserRepo) writes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tierWrites
}

func setupLoyaltyTestEnv(t *testing.T) *loyaltyTestEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:loyalty_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.AutoMigrate(models.Tables()...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	users := &countingUserRepo{GormUserRepository: repository.NewUserRepository(db)}
	orders := repository.NewOrderRepository(db)
	settings := NewSettingService(repository.NewSettingRepository(db), time.Minute)

	generator := NewCodeGenerator(CodeGeneratorConfig{Prefix: constants.AffiliateCodePrefix})
	generator.now = func() time.Time { return loyaltyTestNow }
	affiliate := NewAffiliateService(users, generator)

	loyalty := NewLoyaltyService(users, orders, settings, nil, DefaultPointsConfig(), 3)
	loyalty.now = func() time.Time { return loyaltyTestNow }

	coupons := NewCouponService(repository.NewCouponRepository(db), repository.NewCouponUsageRepository(db), users)
	referrals := NewReferralService(repository.NewReferralRepository(db), users, orders, affiliate, loyalty)
	referrals.now = func() time.Time { return loyaltyTestNow }

	notifications := NewNotificationService(repository.NewNotificationRepository(db), users, coupons, settings)
	notifications.now = func() time.Time { return loyaltyTestNow }
	loyalty.AddListener(notifications)
	referrals.AddListener(notifications)

	return &loyaltyTestEnv{
		db:            db,
		users:         users,
		orders:        orders,
		settings:      settings,
		generator:     generator,
		affiliate:     affiliate,
		loyalty:       loyalty,
		coupons:       coupons,
		referrals:     referrals,
		notifications: notifications,
		lifecycle:     NewLifecycleService(orders, affiliate, loyalty, coupons, referrals),
	}
}

func (env *loyaltyTestEnv) createUser(t *testing.T, id uint, ageDays int) *models.User {
	t.Helper()
	user := &models.User{
		ID:           id,
		Email:        fmt.Sprintf("user_%d@example.com", id),
		Status:       constants.UserStatusActive,
		RegisteredAt: loyaltyTestNow.Add(-time.Duration(ageDays) * 24 * time.Hour),
	}
	if err := env.db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func (env *loyaltyTestEnv) setTier(t *testing.T, userID uint, tier string) {
	t.Helper()
	if err := env.db.Model(&models.User{}).Where("id = ?", userID).Update("loyalty_tier", tier).Error; err != nil {
		t.Fatalf("set tier failed: %v", err)
	}
}

func (env *loyaltyTestEnv) completeOrder(t *testing.T, orderID, userID uint, coupons ...string) {
	t.Helper()
	completedAt := loyaltyTestNow
	order := &models.Order{
		ID:          orderID,
		OrderNo:     fmt.Sprintf("DJ%06d", orderID),
		UserID:      userID,
		Status:      constants.OrderStatusCompleted,
		CompletedAt: &completedAt,
	}
	if err := env.orders.Upsert(order, coupons); err != nil {
		t.Fatalf("upsert order failed: %v", err)
	}
}

func (env *loyaltyTestEnv) createTierCoupon(t *testing.T, code, tier string) {
	t.Helper()
	if _, err := env.coupons.CreateCoupon(CreateCouponInput{
		Code:         code,
		RequiredTier: tier,
		Type:         constants.CouponTypePercent,
	}); err != nil {
		t.Fatalf("create coupon %s failed: %v", code, err)
	}
}

func (env *loyaltyTestEnv) reloadUser(t *testing.T, id uint) *models.User {
	t.Helper()
	user, err := env.users.GetByID(id)
	if err != nil || user == nil {
		t.Fatalf("reload user %d failed: %v", id, err)
	}
	return user
}

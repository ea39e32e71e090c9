package worker

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dujiao-next/loyalty/internal/config"
	"github.com/dujiao-next/loyalty/internal/constants"
	"github.com/dujiao-next/loyalty/internal/models"
	"github.com/dujiao-next/loyalty/internal/provider"
	"github.com/dujiao-next/loyalty/internal/queue"
	"github.com/dujiao-next/loyalty/internal/service"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

func setupWorkerTestConsumer(t *testing.T) *Consumer {
	t.Helper()
	dsn := fmt.Sprintf("file:worker_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
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

	prevDB := models.DB
	models.DB = db
	t.Cleanup(func() { models.DB = prevDB })

	return NewConsumer(provider.NewContainer(&config.Config{}))
}

func TestHandleOrderCompletedRunsLifecycle(t *testing.T) {
	consumer := setupWorkerTestConsumer(t)
	if err := consumer.UserRepo.Upsert(&models.User{
		ID:           1,
		Email:        "buyer@example.com",
		Status:       constants.UserStatusActive,
		RegisteredAt: time.Now(),
	}); err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	completedAt := time.Now()
	if err := consumer.OrderRepo.Upsert(&models.Order{
		ID:          5,
		OrderNo:     "DJ000005",
		UserID:      1,
		Status:      constants.OrderStatusCompleted,
		CompletedAt: &completedAt,
	}, []string{"spring"}); err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	task, err := queue.NewOrderCompletedTask(queue.OrderCompletedPayload{OrderID: 5})
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	if err := consumer.handleOrderCompleted(context.Background(), task); err != nil {
		t.Fatalf("handle task failed: %v", err)
	}
	codes, err := consumer.CouponService.UsedCodes(1)
	if err != nil || len(codes) != 1 || codes[0] != "SPRING" {
		t.Fatalf("coupon should be marked used, got %v err=%v", codes, err)
	}
	tier, err := consumer.LoyaltyService.GetTier(1)
	if err != nil || tier != constants.TierSubscriber {
		t.Fatalf("unexpected tier %q err=%v", tier, err)
	}
}

func TestHandleUserRegisteredDropsUnknownUser(t *testing.T) {
	consumer := setupWorkerTestConsumer(t)
	task, err := queue.NewUserRegisteredTask(queue.UserRegisteredPayload{UserID: 99})
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	if err := consumer.handleUserRegistered(context.Background(), task); err != nil {
		t.Fatalf("unknown user should be dropped, got %v", err)
	}
}

func TestHandleMalformedPayloadSkipsRetry(t *testing.T) {
	consumer := setupWorkerTestConsumer(t)
	task := asynq.NewTask(queue.TaskOrderCompleted, []byte("{"))
	err := consumer.handleOrderCompleted(context.Background(), task)
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
}

func TestRetryableLifecycleError(t *testing.T) {
	if err := retryableLifecycleError("test", service.ErrOrderNotFound, "order_id", 1); err != nil {
		t.Fatalf("not found should be dropped, got %v", err)
	}
	if err := retryableLifecycleError("test", service.ErrInvalidInput); err != nil {
		t.Fatalf("invalid input should be dropped, got %v", err)
	}
	if err := retryableLifecycleError("test", service.ErrStaleWrite); !errors.Is(err, service.ErrStaleWrite) {
		t.Fatalf("stale write should be retried, got %v", err)
	}
}

package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dujiao-next/loyalty/internal/logger"
	"github.com/dujiao-next/loyalty/internal/provider"
	"github.com/dujiao-next/loyalty/internal/queue"
	"github.com/dujiao-next/loyalty/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskUserRegistered, c.handleUserRegistered)
	mux.HandleFunc(queue.TaskOrderCompleted, c.handleOrderCompleted)
}

func (c *Consumer) handleUserRegistered(_ context.Context, task *asynq.Task) error {
	if c == nil || c.Container == nil || task == nil {
		logger.Debugw("worker_user_registered_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.UserRegisteredPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_user_registered_unmarshal_failed", "error", err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	if payload.UserID == 0 {
		logger.Debugw("worker_user_registered_skip_invalid_payload", "user_id", payload.UserID)
		return nil
	}
	result, err := c.LifecycleService.OnUserRegistered(payload.UserID, payload.ReferralCode)
	if err != nil {
		return retryableLifecycleError("worker_user_registered", err, "user_id", payload.UserID)
	}
	logger.Debugw("worker_user_registered_done", "user_id", result.UserID, "tier", result.Tier)
	return nil
}

func (c *Consumer) handleOrderCompleted(_ context.Context, task *asynq.Task) error {
	if c == nil || c.Container == nil || task == nil {
		logger.Debugw("worker_order_completed_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderCompletedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_completed_unmarshal_failed", "error", err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_completed_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	result, err := c.LifecycleService.OnOrderCompleted(payload.OrderID)
	if err != nil {
		return retryableLifecycleError("worker_order_completed", err, "order_id", payload.OrderID)
	}
	if result.Skipped {
		logger.Debugw("worker_order_completed_skipped", "order_id", payload.OrderID, "reason", result.SkipReason)
	}
	return nil
}

// retryableLifecycleError 输入无效或数据不存在时丢弃任务，其余错误交由队列重试
func retryableLifecycleError(event string, err error, kv ...interface{}) error {
	fields := append(kv, "error", err)
	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrNotFound):
		logger.Debugw(event+"_skip", fields...)
		return nil
	default:
		logger.Warnw(event+"_failed", fields...)
		return err
	}
}

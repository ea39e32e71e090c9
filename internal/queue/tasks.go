package queue

import (
	"encoding/json"
	"fmt"

	"github.com/dujiao-next/loyalty/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskUserRegistered 用户注册流程任务
	TaskUserRegistered = constants.TaskUserRegistered
	// TaskOrderCompleted 订单完成流程任务
	TaskOrderCompleted = constants.TaskOrderCompleted
)

// UserRegisteredPayload 用户注册任务载荷
type UserRegisteredPayload struct {
	UserID       uint   `json:"user_id"`
	ReferralCode string `json:"referral_code,omitempty"`
}

// OrderCompletedPayload 订单完成任务载荷
type OrderCompletedPayload struct {
	OrderID uint `json:"order_id"`
}

// NewUserRegisteredTask 创建用户注册任务
func NewUserRegisteredTask(payload UserRegisteredPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskUserRegistered, body), nil
}

// NewOrderCompletedTask 创建订单完成任务
func NewOrderCompletedTask(payload OrderCompletedPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderCompleted, body), nil
}

// userRegisteredTaskID 同一用户的注册任务在保留期内只入队一次
func userRegisteredTaskID(userID uint) string {
	return fmt.Sprintf("user_registered:%d", userID)
}

func orderCompletedTaskID(orderID uint) string {
	return fmt.Sprintf("order_completed:%d", orderID)
}

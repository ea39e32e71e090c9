package service

import (
	"strings"
	"time"

	"github.com/dujiao-next/loyalty/internal/constants"
	"github.com/dujiao-next/loyalty/internal/models"
	"github.com/dujiao-next/loyalty/internal/repository"
)

// OrderService 订单投影服务（同步外部订单系统的完成事件）
type OrderService struct {
	orderRepo repository.OrderRepository
	now       func() time.Time
}

// NewOrderService 创建订单投影服务
func NewOrderService(orderRepo repository.OrderRepository) *OrderService {
	return &OrderService{orderRepo: orderRepo, now: time.Now}
}

// CompletedOrderInput 订单同步输入
type CompletedOrderInput struct {
	OrderID     uint
	OrderNo     string
	UserID      uint
	Status      string
	CompletedAt *time.Time
	CouponCodes []string
}

// RecordCompleted 写入或刷新订单投影（重复同步幂等）
func (s *OrderService) RecordCompleted(input CompletedOrderInput) (*models.Order, error) {
	if input.OrderID == 0 {
		return nil, ErrInvalidInput
	}
	status, ok := normalizeOrderStatus(input.Status)
	if !ok {
		return nil, ErrInvalidInput
	}
	order := &models.Order{
		ID:          input.OrderID,
		OrderNo:     strings.TrimSpace(input.OrderNo),
		UserID:      input.UserID,
		Status:      status,
		CompletedAt: input.CompletedAt,
	}
	if status == constants.OrderStatusCompleted && order.CompletedAt == nil {
		now := s.now()
		order.CompletedAt = &now
	}
	if err := s.orderRepo.Upsert(order, input.CouponCodes); err != nil {
		return nil, err
	}
	return s.orderRepo.GetByID(input.OrderID)
}

// GetByID 获取订单投影
func (s *OrderService) GetByID(orderID uint) (*models.Order, error) {
	if orderID == 0 {
		return nil, ErrInvalidInput
	}
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

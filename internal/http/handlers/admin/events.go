package admin

import (
	"strings"
	"time"

	"github.com/dujiao-next/loyalty/internal/http/response"
	"github.com/dujiao-next/loyalty/internal/queue"
	"github.com/dujiao-next/loyalty/internal/service"

	"github.com/gin-gonic/gin"
)

// UserRegisteredRequest 用户注册事件
type UserRegisteredRequest struct {
	UserID       uint       `json:"user_id" binding:"required"`
	Email        string     `json:"email"`
	DisplayName  string     `json:"display_name"`
	RegisteredAt *time.Time `json:"registered_at"`
	ReferralCode string     `json:"referral_code"`
}

// OrderCompletedRequest 订单完成事件
type OrderCompletedRequest struct {
	OrderID     uint       `json:"order_id" binding:"required"`
	OrderNo     string     `json:"order_no"`
	UserID      uint       `json:"user_id"`
	Status      string     `json:"status"`
	CompletedAt *time.Time `json:"completed_at"`
	CouponCodes []string   `json:"coupon_codes"`
}

// EventAcceptedResponse 事件已入队
type EventAcceptedResponse struct {
	Queued bool        `json:"queued"`
	Result interface{} `json:"result,omitempty"`
}

// HandleUserRegistered 接收注册事件：同步用户投影，入队或同步执行注册流程
func (h *Handler) HandleUserRegistered(c *gin.Context) {
	var req UserRegisteredRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if _, err := h.UserService.UpsertRegistered(service.RegisteredUserInput{
		UserID:       req.UserID,
		Email:        req.Email,
		DisplayName:  req.DisplayName,
		RegisteredAt: req.RegisteredAt,
	}); err != nil {
		respondMappedError(c, err, "error.event_failed")
		return
	}

	referralCode := strings.TrimSpace(req.ReferralCode)
	if h.QueueClient.Enabled() {
		if err := h.QueueClient.EnqueueUserRegistered(queue.UserRegisteredPayload{
			UserID:       req.UserID,
			ReferralCode: referralCode,
		}); err != nil {
			respondError(c, response.CodeServiceUnavailable, "error.queue_unavailable", err)
			return
		}
		requestLog(c).Infow("event_user_registered_queued", "user_id", req.UserID)
		response.Success(c, EventAcceptedResponse{Queued: true})
		return
	}

	result, err := h.LifecycleService.OnUserRegistered(req.UserID, referralCode)
	if err != nil {
		respondMappedError(c, err, "error.event_failed")
		return
	}
	response.Success(c, EventAcceptedResponse{Queued: false, Result: result})
}

// HandleOrderCompleted 接收订单事件：同步订单投影，入队或同步执行订单完成流程
func (h *Handler) HandleOrderCompleted(c *gin.Context) {
	var req OrderCompletedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if _, err := h.OrderService.RecordCompleted(service.CompletedOrderInput{
		OrderID:     req.OrderID,
		OrderNo:     req.OrderNo,
		UserID:      req.UserID,
		Status:      req.Status,
		CompletedAt: req.CompletedAt,
		CouponCodes: req.CouponCodes,
	}); err != nil {
		respondMappedError(c, err, "error.order_sync_failed")
		return
	}

	if h.QueueClient.Enabled() {
		if err := h.QueueClient.EnqueueOrderCompleted(queue.OrderCompletedPayload{OrderID: req.OrderID}); err != nil {
			respondError(c, response.CodeServiceUnavailable, "error.queue_unavailable", err)
			return
		}
		requestLog(c).Infow("event_order_completed_queued", "order_id", req.OrderID)
		response.Success(c, EventAcceptedResponse{Queued: true})
		return
	}

	result, err := h.LifecycleService.OnOrderCompleted(req.OrderID)
	if err != nil {
		respondMappedError(c, err, "error.event_failed")
		return
	}
	response.Success(c, EventAcceptedResponse{Queued: false, Result: result})
}

package public

import (
	handlershared "github.com/dujiao-next/loyalty/internal/http/handlers/shared"
	"github.com/dujiao-next/loyalty/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ListMyNotifications 获取当前用户站内通知
func (h *Handler) ListMyNotifications(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.ParsePagination(c)
	list, err := h.NotificationService.List(uid, page, pageSize)
	if err != nil {
		respondLoyaltyError(c, err, "error.notification_failed")
		return
	}
	response.SuccessWithPage(c, gin.H{
		"items":        list.Items,
		"unread_count": list.UnreadCount,
	}, response.NewPagination(page, pageSize, list.Total))
}

// MarkMyNotificationsRead 全部标记已读
func (h *Handler) MarkMyNotificationsRead(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	affected, err := h.NotificationService.MarkAllRead(uid)
	if err != nil {
		respondLoyaltyError(c, err, "error.notification_failed")
		return
	}
	response.Success(c, gin.H{"updated": affected})
}

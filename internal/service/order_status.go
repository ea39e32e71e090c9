package service

import (
	"strings"

	"github.com/dujiao-next/loyalty/internal/constants"
)

// normalizeOrderStatus 归一化外部订单状态，未知状态返回 false
func normalizeOrderStatus(raw string) (string, bool) {
	status := strings.ToLower(strings.TrimSpace(raw))
	switch status {
	case "":
		return constants.OrderStatusCompleted, true
	case constants.OrderStatusPending,
		constants.OrderStatusPaid,
		constants.OrderStatusCompleted,
		constants.OrderStatusCanceled,
		constants.OrderStatusRefunded:
		return status, true
	default:
		return "", false
	}
}

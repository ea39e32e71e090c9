package shared

// 错误消息表，键与处理器中的错误映射一致
var messages = map[string]string{
	"error.bad_request":              "invalid request",
	"error.unauthorized":             "unauthorized",
	"error.forbidden":                "forbidden",
	"error.auth_header_missing":      "authorization header missing",
	"error.auth_header_invalid":      "authorization header invalid",
	"error.token_invalid":            "token invalid",
	"error.jwt_secret_missing":       "token secret not configured",
	"error.user_disabled":            "user disabled",
	"error.user_id_invalid":          "user id invalid",
	"error.user_id_type_invalid":     "user id type invalid",
	"error.user_not_found":           "user not found",
	"error.user_fetch_failed":        "failed to load user",
	"error.order_not_found":          "order not found",
	"error.order_sync_failed":        "failed to record order",
	"error.coupon_not_found":         "coupon not found",
	"error.coupon_inactive":          "coupon is no longer active",
	"error.coupon_tier_mismatch":     "coupon is not available for your current tier",
	"error.coupon_already_used":      "coupon has already been used",
	"error.coupon_fetch_failed":      "failed to load coupons",
	"error.coupon_create_failed":     "failed to create coupon",
	"error.loyalty_fetch_failed":     "failed to load loyalty status",
	"error.loyalty_config_invalid":   "loyalty config invalid",
	"error.loyalty_write_conflict":   "loyalty status is being updated, please retry",
	"error.affiliate_code_exhausted": "affiliate code could not be generated, please retry",
	"error.affiliate_code_failed":    "failed to generate affiliate code",
	"error.notification_failed":      "failed to load notifications",
	"error.settings_fetch_failed":    "failed to load settings",
	"error.settings_save_failed":     "failed to save settings",
	"error.event_failed":             "failed to process event",
	"error.queue_unavailable":        "queue unavailable",
	"error.rate_limited":             "too many requests, retry in %d seconds",
	"error.rate_limit_unavailable":   "rate limiter unavailable",
	"error.authz_unavailable":        "authorization unavailable",
	"error.authz_fetch_failed":       "failed to load authorization roles",
}

// Message 按键取错误消息，未登记的键原样返回
func Message(key string) string {
	if msg, ok := messages[key]; ok {
		return msg
	}
	return key
}

package repository

// CouponListFilter 查询优惠券列表的过滤条件
type CouponListFilter struct {
	Page         int
	PageSize     int
	Code         string
	RequiredTier string
	IsActive     *bool
}

// NotificationListFilter 查询通知列表的过滤条件
type NotificationListFilter struct {
	Page       int
	PageSize   int
	UserID     uint
	OnlyUnread bool
}

package constants

// 订单状态常量
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusCompleted = "completed"
	OrderStatusCanceled  = "canceled"
	OrderStatusRefunded  = "refunded"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 会员等级名称（默认等级表）
const (
	TierSubscriber  = "Subscriber"
	TierRookie      = "Rookie"
	TierHustler     = "Hustler"
	TierPlaymaker   = "Playmaker"
	TierMaverick    = "Maverick"
	TierTrailblazer = "Trailblazer"
	TierLegend      = "Legend"
	TierElite       = "Elite"
	TierOG          = "OG"
)

// 积分规则默认值
const (
	PointsPerReferral       = 20
	PointsPerCompletedOrder = 10
	PointsPerAgePeriod      = 5
	AccountAgePeriodDays    = 30
)

// 推广码默认生成规则
const (
	AffiliateCodePrefix       = "FS"
	AffiliateCodeDateLayout   = "0106" // MMYY
	AffiliateCodeSuffixLength = 3
	AffiliateCodeCharset      = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	AffiliateCodeMaxAttempts  = 10
)

// 优惠券类型常量
const (
	CouponTypeFixed    = "fixed"
	CouponTypePercent  = "percent"
	CouponTypeShipping = "free_shipping"
)

// 通知类型常量
const (
	NotificationTypeTierUnlocked  = "tier_unlocked"
	NotificationTypeReferralGiven = "referral_credited"
)

// 设置键常量
const (
	SettingKeyLoyaltyConfig = "loyalty_config"
)

// 异步任务常量
const (
	TaskUserRegistered = "loyalty:user_registered"
	TaskOrderCompleted = "loyalty:order_completed"
)

// 队列名称常量
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

package router

import (
	"github.com/dujiao-next/loyalty/internal/cache"
	"github.com/dujiao-next/loyalty/internal/config"
	adminhandlers "github.com/dujiao-next/loyalty/internal/http/handlers/admin"
	publichandlers "github.com/dujiao-next/loyalty/internal/http/handlers/public"
	"github.com/dujiao-next/loyalty/internal/logger"
	"github.com/dujiao-next/loyalty/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按用户侧/内部接口分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	couponRule := RateLimitRule{
		Prefix:        cache.Key("rate", "coupon_validate"),
		WindowSeconds: cfg.Security.CouponRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.CouponRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.CouponRateLimit.BlockSeconds,
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		// 用户接口（需用户令牌）
		user := apiV1.Group("/me")
		user.Use(UserJWTAuthMiddleware(c.AuthService, cfg.Auth.User.SecretKey, c.UserRepo))
		{
			user.GET("/loyalty", publicHandler.GetMyLoyalty)
			user.GET("/affiliate-code", publicHandler.GetMyAffiliateCode)
			user.POST("/coupons/validate", RateLimitMiddleware(cache.Client(), couponRule, KeyByUserID), publicHandler.ValidateMyCoupon)
			user.GET("/coupons/available", publicHandler.GetMyAvailableCoupon)
			user.GET("/notifications", publicHandler.ListMyNotifications)
			user.POST("/notifications/read", publicHandler.MarkMyNotificationsRead)
		}

		// 内部接口（需服务令牌）
		internal := apiV1.Group("/internal")
		internal.Use(ServiceJWTAuthMiddleware(c.AuthService, cfg.Auth.Service.SecretKey))
		internal.Use(ServiceAuthzMiddleware(c.AuthzService))
		{
			// 上游事件
			internal.POST("/events/user-registered", adminHandler.HandleUserRegistered)
			internal.POST("/events/order-completed", adminHandler.HandleOrderCompleted)

			// 用户会员
			internal.GET("/users/:id/loyalty", adminHandler.GetUserLoyalty)
			internal.POST("/users/:id/affiliate-code", adminHandler.MintUserAffiliateCode)
			internal.POST("/users/:id/recalculate", adminHandler.RecalculateUserTier)

			// 配置与优惠券
			internal.GET("/settings/loyalty", adminHandler.GetLoyaltySettings)
			internal.PUT("/settings/loyalty", adminHandler.UpdateLoyaltySettings)
			internal.GET("/coupons", adminHandler.ListCoupons)
			internal.POST("/coupons", adminHandler.CreateCoupon)

			// 授权查看
			internal.GET("/authz/roles", adminHandler.ListAuthzRoles)
			internal.GET("/authz/services/:name/roles", adminHandler.GetServiceRoles)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

package main

import (
	"flag"
	"time"

	"github.com/dujiao-next/loyalty/internal/app"
	"github.com/dujiao-next/loyalty/internal/config"
	"github.com/dujiao-next/loyalty/internal/constants"
	"github.com/dujiao-next/loyalty/internal/logger"
	"github.com/dujiao-next/loyalty/internal/provider"
	"github.com/dujiao-next/loyalty/internal/service"
)

func main() {
	var withDemo bool
	var tokenFor string
	flag.BoolVar(&withDemo, "demo", false, "写入演示用户、推荐关系与订单")
	flag.StringVar(&tokenFor, "service-token", "", "为指定服务名签发内部接口令牌")
	flag.Parse()

	// 连接数据库、迁移并写入默认优惠券
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := app.PrepareDatabase(cfg.Database); err != nil {
		stdLog.Fatalf("Failed to prepare database: %v", err)
	}

	c := provider.NewContainer(cfg)

	// 默认等级表（已配置则保留）
	raw, err := c.SettingService.GetByKey(constants.SettingKeyLoyaltyConfig)
	if err != nil {
		stdLog.Fatalf("Failed to load loyalty setting: %v", err)
	}
	if raw == nil {
		if _, err := c.SettingService.UpdateLoyaltySetting(service.LoyaltyDefaultSetting()); err != nil {
			stdLog.Fatalf("Failed to seed loyalty setting: %v", err)
		}
		stdLog.Printf("Seeded default loyalty tiers")
	} else {
		stdLog.Printf("Loyalty setting already exists, skipped")
	}

	if withDemo {
		seedDemo(c)
	}

	if tokenFor != "" {
		token, expiresAt, err := c.AuthService.GenerateServiceJWT(tokenFor, cfg.Auth.Service.ExpireHours)
		if err != nil {
			stdLog.Fatalf("Failed to sign service token: %v", err)
		}
		stdLog.Printf("Service token for %s (expires %s):\n%s", tokenFor, expiresAt.Format(time.RFC3339), token)
	}

	stdLog.Printf("Seed completed")
}

// seedDemo 写入一对推荐关系：推荐人注册 90 天，被推荐人完成首单后推荐人获得积分
func seedDemo(c *provider.Container) {
	stdLog := logger.StdLogger()
	now := time.Now()
	referrerSince := now.AddDate(0, 0, -90)

	if _, err := c.UserService.UpsertRegistered(service.RegisteredUserInput{
		UserID:       1001,
		Email:        "referrer@example.com",
		DisplayName:  "Demo Referrer",
		RegisteredAt: &referrerSince,
	}); err != nil {
		stdLog.Fatalf("Failed to seed referrer: %v", err)
	}
	referrer, err := c.LifecycleService.OnUserRegistered(1001, "")
	if err != nil {
		stdLog.Fatalf("Failed to register referrer: %v", err)
	}
	stdLog.Printf("Referrer 1001 code=%s tier=%s", referrer.AffiliateCode, referrer.Tier)

	if _, err := c.UserService.UpsertRegistered(service.RegisteredUserInput{
		UserID:      1002,
		Email:       "friend@example.com",
		DisplayName: "Demo Friend",
	}); err != nil {
		stdLog.Fatalf("Failed to seed referred user: %v", err)
	}
	if _, err := c.LifecycleService.OnUserRegistered(1002, referrer.AffiliateCode); err != nil {
		stdLog.Fatalf("Failed to register referred user: %v", err)
	}

	if _, err := c.OrderService.RecordCompleted(service.CompletedOrderInput{
		OrderID: 900001,
		OrderNo: "DEMO900001",
		UserID:  1002,
		Status:  constants.OrderStatusCompleted,
	}); err != nil {
		stdLog.Fatalf("Failed to seed demo order: %v", err)
	}
	result, err := c.LifecycleService.OnOrderCompleted(900001)
	if err != nil {
		stdLog.Fatalf("Failed to complete demo order: %v", err)
	}
	stdLog.Printf("Demo order completed, referral_credited=%v", result.ReferralCredited)

	status, err := c.LoyaltyService.Status(1001)
	if err != nil {
		stdLog.Fatalf("Failed to load referrer status: %v", err)
	}
	stdLog.Printf("Referrer 1001 points=%d tier=%s next=%s", status.Points.Total, status.Tier, status.Next.Label)
}

package provider

import (
	"time"

	"github.com/dujiao-next/loyalty/internal/authz"
	"github.com/dujiao-next/loyalty/internal/cache"
	"github.com/dujiao-next/loyalty/internal/config"
	"github.com/dujiao-next/loyalty/internal/logger"
	"github.com/dujiao-next/loyalty/internal/models"
	"github.com/dujiao-next/loyalty/internal/queue"
	"github.com/dujiao-next/loyalty/internal/repository"
	"github.com/dujiao-next/loyalty/internal/service"

	"gorm.io/gorm"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	UserRepo         repository.UserRepository
	OrderRepo        repository.OrderRepository
	CouponRepo       repository.CouponRepository
	CouponUsageRepo  repository.CouponUsageRepository
	ReferralRepo     repository.ReferralRepository
	NotificationRepo repository.NotificationRepository
	SettingRepo      repository.SettingRepository

	// Services
	AuthzService        *authz.Service
	AuthService         *service.AuthService
	SettingService      *service.SettingService
	UserService         *service.UserService
	OrderService        *service.OrderService
	AffiliateService    *service.AffiliateService
	LoyaltyService      *service.LoyaltyService
	CouponService       *service.CouponService
	ReferralService     *service.ReferralService
	NotificationService *service.NotificationService
	LifecycleService    *service.LifecycleService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories(models.DB)

	// 2. 初始化内部接口授权
	c.initAuthz(models.DB)

	// 3. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories(db *gorm.DB) {
	c.UserRepo = repository.NewUserRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.CouponRepo = repository.NewCouponRepository(db)
	c.CouponUsageRepo = repository.NewCouponUsageRepository(db)
	c.ReferralRepo = repository.NewReferralRepository(db)
	c.NotificationRepo = repository.NewNotificationRepository(db)
	c.SettingRepo = repository.NewSettingRepository(db)
}

func (c *Container) initAuthz(db *gorm.DB) {
	authzService, err := authz.NewService(db)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		return
	}
	if err := authzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_authz_roles_failed", "error", err)
		return
	}
	if err := authzService.ApplyServiceGrants(c.Config.Auth.ServiceRoles); err != nil {
		logger.Errorw("provider_apply_service_roles_failed", "error", err)
	}
	c.AuthzService = authzService
}

func (c *Container) initServices() {
	loyaltyCfg := c.Config.Loyalty

	c.AuthService = service.NewAuthService(c.Config.Auth)
	c.SettingService = service.NewSettingService(c.SettingRepo, seconds(loyaltyCfg.CacheTTLSec))
	c.UserService = service.NewUserService(c.UserRepo)
	c.OrderService = service.NewOrderService(c.OrderRepo)

	generator := service.NewCodeGenerator(service.CodeGeneratorConfig{
		Prefix:       loyaltyCfg.Code.Prefix,
		DateLayout:   loyaltyCfg.Code.DateLayout,
		SuffixLength: loyaltyCfg.Code.SuffixLength,
		Charset:      loyaltyCfg.Code.Charset,
		MaxAttempts:  loyaltyCfg.Code.MaxAttempts,
	})
	c.AffiliateService = service.NewAffiliateService(c.UserRepo, generator)

	locker := service.NewUserLocker(millis(loyaltyCfg.LockTTLMillis), millis(loyaltyCfg.LockWaitMS))
	c.LoyaltyService = service.NewLoyaltyService(
		c.UserRepo,
		c.OrderRepo,
		c.SettingService,
		locker,
		pointsConfig(loyaltyCfg.Points),
		loyaltyCfg.UpdateRetries,
	)
	c.CouponService = service.NewCouponService(c.CouponRepo, c.CouponUsageRepo, c.UserRepo)
	c.ReferralService = service.NewReferralService(c.ReferralRepo, c.UserRepo, c.OrderRepo, c.AffiliateService, c.LoyaltyService)
	c.NotificationService = service.NewNotificationService(c.NotificationRepo, c.UserRepo, c.CouponService, c.SettingService)
	c.LifecycleService = service.NewLifecycleService(c.OrderRepo, c.AffiliateService, c.LoyaltyService, c.CouponService, c.ReferralService)

	// 订阅等级变化与推荐入账
	c.LoyaltyService.AddListener(c.NotificationService)
	c.ReferralService.AddListener(c.NotificationService)
}

func pointsConfig(cfg config.PointsConfig) service.PointsConfig {
	points := service.DefaultPointsConfig()
	if cfg.PerReferral > 0 {
		points.PerReferral = cfg.PerReferral
	}
	if cfg.PerCompletedOrder > 0 {
		points.PerCompletedOrder = cfg.PerCompletedOrder
	}
	if cfg.PerAgePeriod > 0 {
		points.PerAgePeriod = cfg.PerAgePeriod
	}
	if cfg.AgePeriodDays > 0 {
		points.AgePeriod = time.Duration(cfg.AgePeriodDays) * 24 * time.Hour
	}
	return points
}

func seconds(value int) time.Duration {
	return time.Duration(value) * time.Second
}

func millis(value int) time.Duration {
	return time.Duration(value) * time.Millisecond
}

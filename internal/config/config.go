package config

import (
	"fmt"
	"strings"

	"github.com/dujiao-next/loyalty/internal/constants"
	"github.com/dujiao-next/loyalty/internal/logger"

	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Queue    QueueConfig    `mapstructure:"queue"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Security SecurityConfig `mapstructure:"security"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Loyalty  LoyaltyConfig  `mapstructure:"loyalty"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release

	ReadHeaderTimeoutSeconds int `mapstructure:"read_header_timeout_seconds"`
	ReadTimeoutSeconds       int `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds      int `mapstructure:"write_timeout_seconds"`
	IdleTimeoutSeconds       int `mapstructure:"idle_timeout_seconds"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggerOptions 转换为 logger 配置
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Level:      c.Level,
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// DatabasePoolConfig 数据库连接池配置
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver string             `mapstructure:"driver"` // 数据库驱动（sqlite/postgres）
	DSN    string             `mapstructure:"dsn"`    // 数据库连接串
	Pool   DatabasePoolConfig `mapstructure:"pool"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// QueueConfig 异步队列配置
type QueueConfig struct {
	Enabled     bool           `mapstructure:"enabled"`
	Host        string         `mapstructure:"host"`
	Port        int            `mapstructure:"port"`
	Password    string         `mapstructure:"password"`
	DB          int            `mapstructure:"db"`
	Concurrency int            `mapstructure:"concurrency"`
	MaxRetry    int            `mapstructure:"max_retry"`
	Queues      map[string]int `mapstructure:"queues"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	CouponRateLimit RateLimitConfig `mapstructure:"coupon_rate_limit"`
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxAttempts   int `mapstructure:"max_attempts"`
	BlockSeconds  int `mapstructure:"block_seconds"`
}

// AuthConfig 鉴权配置：用户令牌与内部服务令牌分别签名
type AuthConfig struct {
	User    JWTConfig `mapstructure:"user"`
	Service JWTConfig `mapstructure:"service"`
	// ServiceRoles 服务名 -> 内部接口角色（readonly_auditor / event_publisher / loyalty_operator）
	ServiceRoles map[string][]string `mapstructure:"service_roles"`
}

// JWTConfig JWT 配置
type JWTConfig struct {
	SecretKey   string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
	Issuer      string `mapstructure:"issuer"`
}

// LoyaltyConfig 会员体系配置
type LoyaltyConfig struct {
	Code          AffiliateCodeConfig `mapstructure:"code"`
	Points        PointsConfig        `mapstructure:"points"`
	UpdateRetries int                 `mapstructure:"update_retries"`
	LockTTLMillis int                 `mapstructure:"lock_ttl_ms"`
	LockWaitMS    int                 `mapstructure:"lock_wait_ms"`
	CacheTTLSec   int                 `mapstructure:"cache_ttl_seconds"`
}

// AffiliateCodeConfig 推广码生成配置
type AffiliateCodeConfig struct {
	Prefix       string `mapstructure:"prefix"`
	DateLayout   string `mapstructure:"date_layout"`
	SuffixLength int    `mapstructure:"suffix_length"`
	Charset      string `mapstructure:"charset"`
	MaxAttempts  int    `mapstructure:"max_attempts"`
}

// PointsConfig 积分权重配置
type PointsConfig struct {
	PerReferral       int `mapstructure:"per_referral"`
	PerCompletedOrder int `mapstructure:"per_completed_order"`
	PerAgePeriod      int `mapstructure:"per_age_period"`
	AgePeriodDays     int `mapstructure:"age_period_days"`
}

// Load 从 config.yml 加载配置
func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../") // 从 cmd/server 运行
	viper.AddConfigPath("./etc")

	setDefaults(viper.GetViper())

	// 环境变量支持（例如 loyalty.points.per_referral -> LOYALTY_POINTS_PER_REFERRAL）
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		logger.Warnw("config_file_read_failed",
			"error", err,
			"fallback", "env_or_defaults",
		)
	} else {
		logger.Infow("config_file_loaded", "file", viper.ConfigFileUsed())
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		panic(fmt.Errorf("配置解析失败: %w", err))
	}
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("log.level", "")
	v.SetDefault("log.dir", "")
	v.SetDefault("log.filename", "loyalty.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./db/loyalty.db")
	v.SetDefault("database.pool.max_open_conns", 1)
	v.SetDefault("database.pool.max_idle_conns", 1)
	v.SetDefault("database.pool.conn_max_lifetime_seconds", 0)
	v.SetDefault("database.pool.conn_max_idle_time_seconds", 0)
	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "loyalty")
	v.SetDefault("queue.enabled", true)
	v.SetDefault("queue.host", "127.0.0.1")
	v.SetDefault("queue.port", 6379)
	v.SetDefault("queue.password", "")
	v.SetDefault("queue.db", 1)
	v.SetDefault("queue.concurrency", 10)
	v.SetDefault("queue.max_retry", 8)
	v.SetDefault("queue.queues", map[string]int{
		constants.QueueCritical: 6,
		constants.QueueDefault:  3,
	})
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{
		"Content-Type",
		"Content-Length",
		"Accept-Encoding",
		"Authorization",
		"X-Request-ID",
	})
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", 600)
	v.SetDefault("security.coupon_rate_limit.window_seconds", 60)
	v.SetDefault("security.coupon_rate_limit.max_attempts", 20)
	v.SetDefault("security.coupon_rate_limit.block_seconds", 300)
	v.SetDefault("auth.user.secret", "user-change-me-in-production")
	v.SetDefault("auth.user.expire_hours", 24)
	v.SetDefault("auth.user.issuer", "")
	v.SetDefault("auth.service.secret", "service-change-me-in-production")
	v.SetDefault("auth.service.expire_hours", 1)
	v.SetDefault("auth.service.issuer", "")
	v.SetDefault("auth.service_roles", map[string][]string{
		"order-system": {"event_publisher"},
		"console":      {"loyalty_operator"},
	})
	v.SetDefault("loyalty.code.prefix", constants.AffiliateCodePrefix)
	v.SetDefault("loyalty.code.date_layout", constants.AffiliateCodeDateLayout)
	v.SetDefault("loyalty.code.suffix_length", constants.AffiliateCodeSuffixLength)
	v.SetDefault("loyalty.code.charset", constants.AffiliateCodeCharset)
	v.SetDefault("loyalty.code.max_attempts", constants.AffiliateCodeMaxAttempts)
	v.SetDefault("loyalty.points.per_referral", constants.PointsPerReferral)
	v.SetDefault("loyalty.points.per_completed_order", constants.PointsPerCompletedOrder)
	v.SetDefault("loyalty.points.per_age_period", constants.PointsPerAgePeriod)
	v.SetDefault("loyalty.points.age_period_days", constants.AccountAgePeriodDays)
	v.SetDefault("loyalty.update_retries", 3)
	v.SetDefault("loyalty.lock_ttl_ms", 5000)
	v.SetDefault("loyalty.lock_wait_ms", 3000)
	v.SetDefault("loyalty.cache_ttl_seconds", 300)
}

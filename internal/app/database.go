package app

import (
	"fmt"

	"github.com/dujiao-next/loyalty/internal/config"
	"github.com/dujiao-next/loyalty/internal/models"
)

// PrepareDatabase 连接数据库、迁移表结构并写入默认等级优惠券
func PrepareDatabase(cfg config.DatabaseConfig) error {
	pool := models.DBPoolConfig{
		MaxOpenConns:           cfg.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Pool.ConnMaxIdleTimeSeconds,
	}
	if err := models.InitDB(cfg.Driver, cfg.DSN, pool); err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	if err := models.AutoMigrate(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	if err := models.InitDefaultCoupons(); err != nil {
		return fmt.Errorf("seed default coupons: %w", err)
	}
	return nil
}

package repository

import (
	"errors"
	"strings"

	"github.com/dujiao-next/loyalty/internal/constants"
	"github.com/dujiao-next/loyalty/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	GetByID(id uint) (*models.Order, error)
	CountCompletedByUser(userID uint) (int64, error)
	ListCouponCodes(orderID uint) ([]string, error)
	Upsert(order *models.Order, couponCodes []string) error
	WithTx(tx *gorm.DB) *GormOrderRepository
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// GetByID 获取订单（含使用的优惠码）
func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Coupons").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// CountCompletedByUser 统计用户已完成订单数
func (r *GormOrderRepository) CountCompletedByUser(userID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Order{}).
		Where("user_id = ? AND status = ?", userID, constants.OrderStatusCompleted).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ListCouponCodes 获取订单使用的优惠码
func (r *GormOrderRepository) ListCouponCodes(orderID uint) ([]string, error) {
	var codes []string
	if err := r.db.Model(&models.OrderCoupon{}).
		Where("order_id = ?", orderID).
		Order("id ASC").
		Pluck("coupon_code", &codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}

// Upsert 同步外部订单及其优惠码，重复同步不产生重复记录
func (r *GormOrderRepository) Upsert(order *models.Order, couponCodes []string) error {
	if order == nil {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Coupons").Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"order_no", "user_id", "status", "completed_at", "updated_at"}),
		}).Create(order).Error; err != nil {
			return err
		}
		rows := make([]models.OrderCoupon, 0, len(couponCodes))
		seen := make(map[string]struct{}, len(couponCodes))
		for _, raw := range couponCodes {
			code := strings.ToUpper(strings.TrimSpace(raw))
			if code == "" {
				continue
			}
			if _, ok := seen[code]; ok {
				continue
			}
			seen[code] = struct{}{}
			rows = append(rows, models.OrderCoupon{OrderID: order.ID, CouponCode: code})
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
	})
}

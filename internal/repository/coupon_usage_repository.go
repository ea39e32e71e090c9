package repository

import (
	"github.com/dujiao-next/loyalty/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CouponUsageRepository 优惠券使用记录数据访问接口
type CouponUsageRepository interface {
	IsUsed(userID uint, code string) (bool, error)
	MarkUsed(usage *models.CouponUsage) (bool, error)
	ListCodesByUser(userID uint) ([]string, error)
	WithTx(tx *gorm.DB) *GormCouponUsageRepository
}

// GormCouponUsageRepository GORM 实现
type GormCouponUsageRepository struct {
	db *gorm.DB
}

// NewCouponUsageRepository 创建优惠券使用记录仓库
func NewCouponUsageRepository(db *gorm.DB) *GormCouponUsageRepository {
	return &GormCouponUsageRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCouponUsageRepository) WithTx(tx *gorm.DB) *GormCouponUsageRepository {
	if tx == nil {
		return r
	}
	return &GormCouponUsageRepository{db: tx}
}

// IsUsed 用户是否已使用该优惠码
func (r *GormCouponUsageRepository) IsUsed(userID uint, code string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.CouponUsage{}).
		Where("user_id = ? AND coupon_code = ?", userID, code).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// MarkUsed 记录使用（唯一键冲突时忽略），返回是否新写入
func (r *GormCouponUsageRepository) MarkUsed(usage *models.CouponUsage) (bool, error) {
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "coupon_code"}},
		DoNothing: true,
	}).Create(usage)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ListCodesByUser 获取用户已使用的全部优惠码
func (r *GormCouponUsageRepository) ListCodesByUser(userID uint) ([]string, error) {
	var codes []string
	if err := r.db.Model(&models.CouponUsage{}).
		Where("user_id = ?", userID).
		Order("id ASC").
		Pluck("coupon_code", &codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}

package repository

import (
	"errors"
	"time"

	"github.com/dujiao-next/loyalty/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository 用户数据访问接口
type UserRepository interface {
	GetByID(id uint) (*models.User, error)
	GetByAffiliateCode(code string) (*models.User, error)
	Upsert(user *models.User) error
	ReserveAffiliateCode(userID uint, code string) (bool, error)
	SetBaselineTier(userID uint, tier string) (bool, error)
	UpdateTier(userID uint, expectedVersion uint64, tier string, unlocked string) (bool, error)
	ClearNewTierUnlocked(userID uint) error
	SetReferrer(userID, referrerID uint) (bool, error)
	IncrementReferralCount(userID uint, delta int) error
	WithTx(tx *gorm.DB) *GormUserRepository
}

// GormUserRepository GORM 实现
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓库
func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// WithTx 绑定事务
func (r *GormUserRepository) WithTx(tx *gorm.DB) *GormUserRepository {
	if tx == nil {
		return r
	}
	return &GormUserRepository{db: tx}
}

// GetByID 根据 ID 获取用户
func (r *GormUserRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByAffiliateCode 根据推广码获取用户
func (r *GormUserRepository) GetByAffiliateCode(code string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("affiliate_code = ?", code).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Upsert 同步外部用户（已存在时只刷新资料字段，不覆盖会员状态）
func (r *GormUserRepository) Upsert(user *models.User) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "display_name", "status", "updated_at"}),
	}).Create(user).Error
}

// ReserveAffiliateCode 原子写入推广码：仅当用户尚无推广码时生效，唯一索引保证全局不重复
func (r *GormUserRepository) ReserveAffiliateCode(userID uint, code string) (bool, error) {
	result := r.db.Model(&models.User{}).
		Where("id = ? AND affiliate_code IS NULL", userID).
		Updates(map[string]interface{}{
			"affiliate_code": code,
			"updated_at":     time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// SetBaselineTier 为尚未分配等级的用户写入基础等级
func (r *GormUserRepository) SetBaselineTier(userID uint, tier string) (bool, error) {
	result := r.db.Model(&models.User{}).
		Where("id = ? AND (loyalty_tier = '' OR loyalty_tier IS NULL)", userID).
		Updates(map[string]interface{}{
			"loyalty_tier": tier,
			"tier_version": gorm.Expr("tier_version + 1"),
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// UpdateTier 按版本号条件更新等级，版本不一致时返回 false
func (r *GormUserRepository) UpdateTier(userID uint, expectedVersion uint64, tier string, unlocked string) (bool, error) {
	result := r.db.Model(&models.User{}).
		Where("id = ? AND tier_version = ?", userID, expectedVersion).
		Updates(map[string]interface{}{
			"loyalty_tier":      tier,
			"new_tier_unlocked": unlocked,
			"tier_version":      gorm.Expr("tier_version + 1"),
			"updated_at":        time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ClearNewTierUnlocked 清除新等级解锁标记
func (r *GormUserRepository) ClearNewTierUnlocked(userID uint) error {
	return r.db.Model(&models.User{}).
		Where("id = ? AND new_tier_unlocked <> ''", userID).
		Update("new_tier_unlocked", "").Error
}

// SetReferrer 写入推荐人（已有推荐人或自推荐时不生效）
func (r *GormUserRepository) SetReferrer(userID, referrerID uint) (bool, error) {
	if userID == referrerID {
		return false, nil
	}
	result := r.db.Model(&models.User{}).
		Where("id = ? AND referrer_id IS NULL", userID).
		Update("referrer_id", referrerID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// IncrementReferralCount 累加推荐数
func (r *GormUserRepository) IncrementReferralCount(userID uint, delta int) error {
	if delta == 0 {
		return nil
	}
	return r.db.Model(&models.User{}).
		Where("id = ?", userID).
		Update("referral_count", gorm.Expr("referral_count + ?", delta)).Error
}

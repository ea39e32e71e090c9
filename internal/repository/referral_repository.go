package repository

import (
	"errors"
	"time"

	"github.com/dujiao-next/loyalty/internal/models"

	"gorm.io/gorm"
)

// ReferralRepository 推荐关系数据访问接口
type ReferralRepository interface {
	GetByReferred(referredID uint) (*models.ReferralEdge, error)
	Create(edge *models.ReferralEdge) error
	MarkCredited(referredID, orderID uint, at time.Time) (bool, error)
	ListByReferrer(referrerID uint) ([]models.ReferralEdge, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormReferralRepository
}

// GormReferralRepository GORM 实现
type GormReferralRepository struct {
	db *gorm.DB
}

// NewReferralRepository 创建推荐关系仓库
func NewReferralRepository(db *gorm.DB) *GormReferralRepository {
	return &GormReferralRepository{db: db}
}

// WithTx 绑定事务
func (r *GormReferralRepository) WithTx(tx *gorm.DB) *GormReferralRepository {
	if tx == nil {
		return r
	}
	return &GormReferralRepository{db: tx}
}

// Transaction 执行事务
func (r *GormReferralRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// GetByReferred 获取被推荐人的推荐关系
func (r *GormReferralRepository) GetByReferred(referredID uint) (*models.ReferralEdge, error) {
	var edge models.ReferralEdge
	if err := r.db.Where("referred_id = ?", referredID).First(&edge).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &edge, nil
}

// Create 创建推荐关系
func (r *GormReferralRepository) Create(edge *models.ReferralEdge) error {
	return r.db.Create(edge).Error
}

// MarkCredited 条件更新入账标记，仅首次调用返回 true
func (r *GormReferralRepository) MarkCredited(referredID, orderID uint, at time.Time) (bool, error) {
	result := r.db.Model(&models.ReferralEdge{}).
		Where("referred_id = ? AND credited = ?", referredID, false).
		Updates(map[string]interface{}{
			"credited":          true,
			"credited_at":       at,
			"credited_order_id": orderID,
			"updated_at":        at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ListByReferrer 获取推荐人名下的推荐关系
func (r *GormReferralRepository) ListByReferrer(referrerID uint) ([]models.ReferralEdge, error) {
	var edges []models.ReferralEdge
	if err := r.db.Where("referrer_id = ?", referrerID).Order("id DESC").Find(&edges).Error; err != nil {
		return nil, err
	}
	return edges, nil
}

package service

import (
	"time"

	"github.com/dujiao-next/loyalty/internal/models"
	"github.com/dujiao-next/loyalty/internal/repository"
)

const defaultSettingCacheTTL = 5 * time.Minute

// SettingService 设置业务服务
type SettingService struct {
	repo     repository.SettingRepository
	cacheTTL time.Duration
}

// NewSettingService 创建设置服务
func NewSettingService(repo repository.SettingRepository, cacheTTL time.Duration) *SettingService {
	if cacheTTL <= 0 {
		cacheTTL = defaultSettingCacheTTL
	}
	return &SettingService{repo: repo, cacheTTL: cacheTTL}
}

// GetByKey 获取设置
func (s *SettingService) GetByKey(key string) (models.JSON, error) {
	setting, err := s.repo.GetByKey(key)
	if err != nil {
		return nil, err
	}
	if setting == nil {
		return nil, nil
	}
	return setting.ValueJSON, nil
}

package service

import (
	"strings"
	"time"

	"github.com/dujiao-next/loyalty/internal/constants"
	"github.com/dujiao-next/loyalty/internal/models"
	"github.com/dujiao-next/loyalty/internal/repository"
)

// UserService 用户投影服务（同步外部用户系统的注册事件）
type UserService struct {
	userRepo repository.UserRepository
	now      func() time.Time
}

// NewUserService 创建用户投影服务
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo, now: time.Now}
}

// RegisteredUserInput 注册同步输入
type RegisteredUserInput struct {
	UserID       uint
	Email        string
	DisplayName  string
	RegisteredAt *time.Time
}

// UpsertRegistered 写入或刷新用户投影；注册时间以首次写入为准
func (s *UserService) UpsertRegistered(input RegisteredUserInput) (*models.User, error) {
	if input.UserID == 0 {
		return nil, ErrInvalidInput
	}
	registeredAt := s.now()
	if input.RegisteredAt != nil && !input.RegisteredAt.IsZero() {
		registeredAt = *input.RegisteredAt
	}
	user := &models.User{
		ID:           input.UserID,
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		DisplayName:  strings.TrimSpace(input.DisplayName),
		Status:       constants.UserStatusActive,
		RegisteredAt: registeredAt,
	}
	if err := s.userRepo.Upsert(user); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(input.UserID)
}

// GetByID 获取用户投影
func (s *UserService) GetByID(userID uint) (*models.User, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

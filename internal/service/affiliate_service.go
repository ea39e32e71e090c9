package service

import (
	"errors"
	"strings"

	"github.com/dujiao-next/loyalty/internal/logger"
	"github.com/dujiao-next/loyalty/internal/models"
	"github.com/dujiao-next/loyalty/internal/repository"
)

// errAffiliateCodeAssigned 并发铸码时用户已被其他请求写入推广码
var errAffiliateCodeAssigned = errors.New("affiliate code already assigned")

// AffiliateService 推广码业务服务
type AffiliateService struct {
	userRepo  repository.UserRepository
	generator *CodeGenerator
}

// NewAffiliateService 创建推广码服务
func NewAffiliateService(userRepo repository.UserRepository, generator *CodeGenerator) *AffiliateService {
	if generator == nil {
		generator = NewCodeGenerator(CodeGeneratorConfig{})
	}
	return &AffiliateService{
		userRepo:  userRepo,
		generator: generator,
	}
}

// MintCode 为用户生成推广码；已生成过则直接返回原推广码
func (s *AffiliateService) MintCode(userID uint) (string, error) {
	if userID == 0 {
		return "", ErrInvalidInput
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrUserNotFound
	}
	if user.HasAffiliateCode() {
		return *user.AffiliateCode, nil
	}

	code, err := s.generator.Mint(s.generator.SeedPrefix(), func(candidate string) error {
		reserved, err := s.userRepo.ReserveAffiliateCode(userID, candidate)
		if err != nil {
			if repository.IsUniqueViolation(err) {
				return ErrAffiliateCodeTaken
			}
			return err
		}
		if !reserved {
			return errAffiliateCodeAssigned
		}
		return nil
	})
	if errors.Is(err, errAffiliateCodeAssigned) {
		return s.GetCode(userID)
	}
	if err != nil {
		if errors.Is(err, ErrCollisionExhausted) {
			logger.ForUser(userID).Errorw("affiliate_code_collision_exhausted", "attempts", s.generator.MaxAttempts())
		}
		return "", err
	}
	logger.ForUser(userID).Infow("affiliate_code_minted", "code", code)
	return code, nil
}

// GetCode 获取用户推广码，未生成时返回空串
func (s *AffiliateService) GetCode(userID uint) (string, error) {
	if userID == 0 {
		return "", ErrInvalidInput
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrUserNotFound
	}
	if !user.HasAffiliateCode() {
		return "", nil
	}
	return *user.AffiliateCode, nil
}

// ResolveCode 根据推广码查找所属用户，未命中返回 nil
func (s *AffiliateService) ResolveCode(rawCode string) (*models.User, error) {
	code := normalizeAffiliateCode(rawCode)
	if code == "" {
		return nil, nil
	}
	return s.userRepo.GetByAffiliateCode(code)
}

func normalizeAffiliateCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

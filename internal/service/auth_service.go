package service

import (
	"errors"
	"strings"
	"time"

	"github.com/dujiao-next/loyalty/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenInvalid 令牌无效
var ErrTokenInvalid = errors.New("token invalid")

// AuthService 令牌签发与解析：用户令牌由外部用户系统签发，服务令牌供内部事件推送使用
type AuthService struct {
	cfg config.AuthConfig
}

// NewAuthService 创建鉴权服务
func NewAuthService(cfg config.AuthConfig) *AuthService {
	return &AuthService{cfg: cfg}
}

// UserJWTClaims 用户 JWT 声明
type UserJWTClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// ServiceJWTClaims 内部服务 JWT 声明
type ServiceJWTClaims struct {
	Service string `json:"service"`
	jwt.RegisteredClaims
}

// GenerateUserJWT 生成用户 JWT Token
func (s *AuthService) GenerateUserJWT(userID uint, email string, expireHours int) (string, time.Time, error) {
	if userID == 0 {
		return "", time.Time{}, ErrInvalidInput
	}
	expiresAt := time.Now().Add(resolveExpireHours(expireHours, s.cfg.User.ExpireHours, 24))
	claims := UserJWTClaims{
		UserID:           userID,
		Email:            email,
		RegisteredClaims: registeredClaims(s.cfg.User.Issuer, expiresAt),
	}
	return signJWT(claims, s.cfg.User.SecretKey, expiresAt)
}

// ParseUserJWT 解析用户 JWT Token
func (s *AuthService) ParseUserJWT(tokenString string) (*UserJWTClaims, error) {
	claims := &UserJWTClaims{}
	if err := parseJWT(tokenString, s.cfg.User, claims); err != nil {
		return nil, err
	}
	if claims.UserID == 0 {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// GenerateServiceJWT 生成内部服务 JWT Token
func (s *AuthService) GenerateServiceJWT(serviceName string, expireHours int) (string, time.Time, error) {
	name := strings.TrimSpace(serviceName)
	if name == "" {
		return "", time.Time{}, ErrInvalidInput
	}
	expiresAt := time.Now().Add(resolveExpireHours(expireHours, s.cfg.Service.ExpireHours, 1))
	claims := ServiceJWTClaims{
		Service:          name,
		RegisteredClaims: registeredClaims(s.cfg.Service.Issuer, expiresAt),
	}
	return signJWT(claims, s.cfg.Service.SecretKey, expiresAt)
}

// ParseServiceJWT 解析内部服务 JWT Token
func (s *AuthService) ParseServiceJWT(tokenString string) (*ServiceJWTClaims, error) {
	claims := &ServiceJWTClaims{}
	if err := parseJWT(tokenString, s.cfg.Service, claims); err != nil {
		return nil, err
	}
	if strings.TrimSpace(claims.Service) == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func registeredClaims(issuer string, expiresAt time.Time) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		Issuer:    strings.TrimSpace(issuer),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}
}

func signJWT(claims jwt.Claims, secret string, expiresAt time.Time) (string, time.Time, error) {
	if secret == "" {
		return "", time.Time{}, ErrTokenInvalid
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

func parseJWT(tokenString string, cfg config.JWTConfig, claims jwt.Claims) error {
	if cfg.SecretKey == "" || strings.TrimSpace(tokenString) == "" {
		return ErrTokenInvalid
	}
	options := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer := strings.TrimSpace(cfg.Issuer); issuer != "" {
		options = append(options, jwt.WithIssuer(issuer))
	}
	token, err := jwt.NewParser(options...).ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.SecretKey), nil
	})
	if err != nil || !token.Valid {
		return ErrTokenInvalid
	}
	return nil
}

func resolveExpireHours(requested, configured, fallback int) time.Duration {
	hours := requested
	if hours <= 0 {
		hours = configured
	}
	if hours <= 0 {
		hours = fallback
	}
	return time.Duration(hours) * time.Hour
}

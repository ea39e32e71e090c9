package service

import (
	"errors"
	"testing"

	"github.com/dujiao-next/loyalty/internal/config"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		User:    config.JWTConfig{SecretKey: "user-secret", ExpireHours: 2},
		Service: config.JWTConfig{SecretKey: "service-secret", Issuer: "shop"},
	}
}

func TestUserJWTRoundTrip(t *testing.T) {
	auth := NewAuthService(testAuthConfig())
	token, _, err := auth.GenerateUserJWT(12, "a@example.com", 0)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	claims, err := auth.ParseUserJWT(token)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if claims.UserID != 12 || claims.Email != "a@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if _, err := auth.ParseServiceJWT(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("user token must not pass service auth, got %v", err)
	}
}

func TestServiceJWTChecksIssuer(t *testing.T) {
	auth := NewAuthService(testAuthConfig())
	token, _, err := auth.GenerateServiceJWT("order-system", 0)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	claims, err := auth.ParseServiceJWT(token)
	if err != nil || claims.Service != "order-system" {
		t.Fatalf("unexpected claims %+v err=%v", claims, err)
	}

	other := testAuthConfig()
	other.Service.Issuer = "someone-else"
	if _, err := NewAuthService(other).ParseServiceJWT(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("issuer mismatch should be rejected, got %v", err)
	}
	if _, _, err := auth.GenerateServiceJWT("  ", 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("blank service name should be rejected, got %v", err)
	}
}

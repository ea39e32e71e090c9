package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	handlershared "github.com/dujiao-next/loyalty/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func TestKeyByUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/me/coupons/validate", nil)
	c.Request.RemoteAddr = "1.2.3.4:5678"

	if key := KeyByUserID(c); key != "1.2.3.4" {
		t.Fatalf("anonymous request should fall back to ip, got %s", key)
	}
	c.Set(handlershared.ContextUserIDKey, uint(42))
	if key := KeyByUserID(c); key != "user:42" {
		t.Fatalf("key want user:42 got %s", key)
	}
}

func TestRateLimitMiddlewareWithoutClient(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RateLimitMiddleware(nil, RateLimitRule{WindowSeconds: 60, MaxRequests: 1}, KeyByIP))
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok":true`) {
		t.Fatalf("expected handler response body, got %s", w.Body.String())
	}
}

func TestRetryAfterSeconds(t *testing.T) {
	rule := RateLimitRule{WindowSeconds: 60, BlockSeconds: 300}
	if got := retryAfterSeconds(42, rule); got != 42 {
		t.Fatalf("ttl should win, got %d", got)
	}
	if got := retryAfterSeconds(-1, rule); got != 300 {
		t.Fatalf("block seconds expected, got %d", got)
	}
	if got := retryAfterSeconds(0, RateLimitRule{WindowSeconds: 60}); got != 60 {
		t.Fatalf("window seconds expected, got %d", got)
	}
	if got := retryAfterSeconds(0, RateLimitRule{}); got != 1 {
		t.Fatalf("minimum wait is 1, got %d", got)
	}
}

func TestRateLimitRuleBucket(t *testing.T) {
	rule := RateLimitRule{Prefix: "coupon_validate", WindowSeconds: 60, MaxRequests: 20}
	if got := rule.bucket("user:7"); got != "coupon_validate:user:7" {
		t.Fatalf("bucket want coupon_validate:user:7 got %s", got)
	}
	if got := (RateLimitRule{}).bucket("1.2.3.4"); got != "1.2.3.4" {
		t.Fatalf("bucket without prefix should be raw key, got %s", got)
	}
	if got := rule.messageKey(); got != "error.rate_limited" {
		t.Fatalf("default message key want error.rate_limited got %s", got)
	}
	if (RateLimitRule{WindowSeconds: 60}).enabled() {
		t.Fatalf("rule without max requests should be disabled")
	}
}

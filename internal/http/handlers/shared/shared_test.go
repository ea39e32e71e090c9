package shared

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestNormalizePagination(t *testing.T) {
	page, size := NormalizePagination(0, 500)
	if page != 1 || size != 100 {
		t.Fatalf("unexpected pagination %d/%d", page, size)
	}
	page, size = NormalizePagination(3, 0)
	if page != 3 || size != 20 {
		t.Fatalf("unexpected pagination %d/%d", page, size)
	}
}

func TestMessageFallsBackToKey(t *testing.T) {
	if Message("error.coupon_already_used") != "coupon has already been used" {
		t.Fatalf("unexpected message: %s", Message("error.coupon_already_used"))
	}
	if Message("error.unknown_key") != "error.unknown_key" {
		t.Fatalf("unknown key should be returned as-is")
	}
}

func TestParseUintParam(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/users/12", nil)
	c.Params = gin.Params{{Key: "id", Value: "12"}}
	if id, ok := ParseUintParam(c, "id"); !ok || id != 12 {
		t.Fatalf("expected 12, got %d ok=%v", id, ok)
	}
	c.Params = gin.Params{{Key: "id", Value: "abc"}}
	if _, ok := ParseUintParam(c, "id"); ok {
		t.Fatalf("non-numeric id should be rejected")
	}
}

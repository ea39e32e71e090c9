package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 20, 41)
	if p.TotalPage != 3 || p.Page != 2 || p.Total != 41 {
		t.Fatalf("unexpected pagination: %+v", p)
	}
	if NewPagination(1, 0, 10).TotalPage != 0 {
		t.Fatalf("zero page size should yield zero pages")
	}
}

func TestErrorAttachesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Set(RequestIDKey, "req-1")

	Error(c, CodeNotFound, "missing")

	var resp struct {
		StatusCode int               `json:"status_code"`
		Msg        string            `json:"msg"`
		Data       map[string]string `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if resp.StatusCode != CodeNotFound || resp.Msg != "missing" || resp.Data[RequestIDKey] != "req-1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAttachRequestID(t *testing.T) {
	if got := attachRequestID("", "raw"); got != "raw" {
		t.Fatalf("blank request id should keep data, got %v", got)
	}
	withMap, ok := attachRequestID("req-2", gin.H{"retry_after": 30}).(gin.H)
	if !ok || withMap[RequestIDKey] != "req-2" || withMap["retry_after"] != 30 {
		t.Fatalf("map data should gain request id, got %v", withMap)
	}
	kept := attachRequestID("req-3", gin.H{RequestIDKey: "upstream"}).(gin.H)
	if kept[RequestIDKey] != "upstream" {
		t.Fatalf("existing request id should be kept, got %v", kept[RequestIDKey])
	}
	wrapped := attachRequestID("req-4", []int{1}).(gin.H)
	if wrapped[RequestIDKey] != "req-4" || wrapped["data"] == nil {
		t.Fatalf("non-map data should be wrapped, got %v", wrapped)
	}
}

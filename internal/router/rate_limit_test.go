package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	handlershared "github.com/leafcart/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func TestKeyByUser(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/orders", nil)
	c.Request.RemoteAddr = "1.2.3.4:5678"

	if key := KeyByUser(c); key != "1.2.3.4" {
		t.Fatalf("anonymous key want 1.2.3.4 got %s", key)
	}
	c.Set(handlershared.ContextUserIDKey, uint(7))
	if key := KeyByUser(c); key != "user:7" {
		t.Fatalf("user key want user:7 got %s", key)
	}
}

func TestRateLimitMessage(t *testing.T) {
	got := rateLimitMessage(RateLimitRule{Message: "slow down, %d s"}, 12)
	if got != "slow down, 12 s" {
		t.Fatalf("unexpected message: %s", got)
	}
	got = rateLimitMessage(RateLimitRule{Message: "no placeholder"}, 3)
	if got != "too many requests, retry in 3 seconds" {
		t.Fatalf("fallback message want default got %s", got)
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

func TestToInt64(t *testing.T) {
	cases := []struct {
		name  string
		input interface{}
		want  int64
		ok    bool
	}{
		{name: "int64", input: int64(10), want: 10, ok: true},
		{name: "int", input: int(11), want: 11, ok: true},
		{name: "uint8", input: uint8(12), want: 12, ok: true},
		{name: "float64", input: float64(13.9), want: 13, ok: true},
		{name: "string", input: "bad", want: 0, ok: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := toInt64(tc.input)
			if ok != tc.ok {
				t.Fatalf("ok want %v got %v", tc.ok, ok)
			}
			if got != tc.want {
				t.Fatalf("value want %d got %d", tc.want, got)
			}
		})
	}
}

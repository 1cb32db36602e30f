package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"campus_lostfound/pkg/util/jwt"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCookieAuth(t *testing.T) {
	jwt.Init("middleware-test-secret-0123456789ab", 1)
	r := gin.New()
	r.GET("/me", CookieAuth(), func(c *gin.Context) {
		id, ok := UserID(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id})
	})

	if w := serve(r, httptest.NewRequest(http.MethodGet, "/me", nil)); w.Code != http.StatusUnauthorized {
		t.Errorf("no cookie: status %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "garbage"})
	if w := serve(r, req); w.Code != http.StatusUnauthorized {
		t.Errorf("bad cookie: status %d", w.Code)
	}

	token, err := jwt.GenerateToken(9)
	if err != nil {
		t.Fatal(err)
	}
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	w := serve(r, req)
	if w.Code != http.StatusOK || w.Body.String() != `{"id":9}` {
		t.Errorf("valid cookie: %d %s", w.Code, w.Body.String())
	}
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.POST("/auth/login", RateLimit(time.Hour, 2), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		codes = append(codes, serve(r, req).Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v", codes)
	}

	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	if w := serve(r, req); w.Code != http.StatusOK {
		t.Errorf("other client limited: %d", w.Code)
	}
}

func TestSecureHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecureHeaders("localhost", 8443, false))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w.Header().Get("X-Frame-Options") != "DENY" || w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Errorf("headers %v", w.Header())
	}

	r = gin.New()
	r.Use(SecureHeaders("localhost", 8443, true))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	w = serve(r, httptest.NewRequest(http.MethodGet, "http://localhost:8080/ping", nil))
	if w.Code != http.StatusMovedPermanently {
		t.Errorf("ssl redirect: status %d", w.Code)
	}
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/drapery_api/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestJWTMiddleware(t *testing.T) {
	utils.SetJWTSecret("mw-secret")
	t.Cleanup(func() { utils.SetJWTSecret("") })
	token, err := utils.GenerateJWT(5, "staff@example.com")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/h", NewJWTMiddleware().Handle(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("owner"))
	})
	r.GET("/q", NewJWTMiddleware().WithQueryToken().Handle(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("owner"))
	})

	tests := []struct {
		name   string
		path   string
		header string
		status int
		body   string
	}{
		{"bearer", "/h", "Bearer " + token, http.StatusOK, "5"},
		{"missing", "/h", "", http.StatusUnauthorized, ""},
		{"bad scheme", "/h", "Basic abc", http.StatusUnauthorized, ""},
		{"bad token", "/h", "Bearer nope", http.StatusUnauthorized, ""},
		{"query refused", "/h?token=" + token, "", http.StatusUnauthorized, ""},
		{"query accepted", "/q?token=" + token, "", http.StatusOK, "5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"quotes.example.com"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://quotes.example.com:443")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "https://quotes.example.com:443", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://evil.example.net")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestLoginRateLimiter(t *testing.T) {
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	rl := NewLoginRateLimiter(3, time.Minute)
	rl.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		assert.False(t, rl.Blocked("1.2.3.4"))
		rl.Fail("1.2.3.4")
	}
	assert.True(t, rl.Blocked("1.2.3.4"))
	assert.False(t, rl.Blocked("5.6.7.8"))

	now = now.Add(2 * time.Minute)
	assert.False(t, rl.Blocked("1.2.3.4"))

	rl.Fail("1.2.3.4")
	rl.Reset("1.2.3.4")
	assert.False(t, rl.Blocked("1.2.3.4"))
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shortlink/internal/config"
	"shortlink/internal/model"
	auth "shortlink/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	manager := auth.NewManager("secret", "shortlink", 1)
	r := gin.New()
	r.GET("/api/me", AuthMiddleware(manager), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": CurrentUserID(c), "role": c.GetString(RoleKey)})
	})
	r.GET("/api/admin", AuthMiddleware(manager), AdminMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	viewer, err := manager.GenerateToken(3, "bob", model.RoleViewer)
	require.NoError(t, err)
	admin, err := manager.GenerateToken(1, "admin", model.RoleAdmin)
	require.NoError(t, err)

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"缺少令牌", "/api/me", "", http.StatusUnauthorized},
		{"格式错误", "/api/me", "Token " + viewer, http.StatusUnauthorized},
		{"令牌无效", "/api/me", "Bearer nope", http.StatusUnauthorized},
		{"普通用户", "/api/me", "Bearer " + viewer, http.StatusOK},
		{"普通用户访问管理接口", "/api/admin", "Bearer " + viewer, http.StatusForbidden},
		{"管理员", "/api/admin", "Bearer " + admin, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := serve(r, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+viewer)
	assert.JSONEq(t, `{"id":3,"role":"viewer"}`, serve(r, req).Body.String())
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(config.Limit{Enabled: true, Requests: 60, Burst: 2, SkipPaths: []string{"/health"}}))
	r.GET("/api/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, serve(r, httptest.NewRequest(http.MethodGet, "/api/x", nil)).Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)
	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/health", nil)).Code, "跳过的路径不限流")
}

func TestRateLimit_Disabled(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(config.Limit{Enabled: false}))
	r.GET("/api/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	for i := 0; i < 10; i++ {
		assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/api/x", nil)).Code)
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, w.Header().Get(RequestIDHeader), 36, "自动生成 uuid")
	assert.Equal(t, w.Header().Get(RequestIDHeader), w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	assert.Equal(t, "abc-123", serve(r, req).Header().Get(RequestIDHeader))
}

func TestGinZapRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), GinZapLogger(zap.NewNop()), GinZapRecovery(zap.NewNop(), true))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"ok":false,"msg":"INTERNAL_ERROR"}`, w.Body.String())
}

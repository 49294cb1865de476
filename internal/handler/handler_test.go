package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"shortlink/internal/config"
	"shortlink/internal/middleware"
	"shortlink/internal/model"
	"shortlink/internal/ratelimit"
	"shortlink/internal/recorder"
	"shortlink/internal/redirect"
	"shortlink/internal/repository"
	"shortlink/internal/service"
	"shortlink/internal/shortcode"
	"shortlink/pkg/database"
	auth "shortlink/pkg/jwt"
)

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
	tokens *auth.TokenManager
	admin  string
}

// setupTest 为集成测试初始化一个干净的环境：内存数据库、同步访问记录、内存限流计数
func setupTest(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(database.Options{Driver: "sqlite", DSN: "file:" + t.Name() + "?mode=memory&cache=shared"})
	require.NoError(t, err, "无法连接到内存数据库")
	t.Cleanup(func() { database.Close(db) })

	logger := zap.NewNop()
	links := repository.NewLinkRepository(db)
	clicks := repository.NewClickRepository(db)
	rules := shortcode.DefaultRules(config.DefaultReserved)

	generator := shortcode.NewGenerator(links, rules, logger.Sugar())
	t.Cleanup(generator.Stop)

	engine := redirect.NewEngine(
		links,
		redirect.NewSelector(nil, logger),
		ratelimit.New(ratelimit.NewMemoryStore(), "salt"),
		recorder.NewSync(clicks, logger),
		redirect.Options{RedirectCode: http.StatusFound},
		logger,
	)

	tokens := auth.NewManager("secret", "shortlink", 1)
	require.NoError(t, EnsureAdmin(db, "admin", "admin-pass"))

	router := gin.New()
	RegisterRoutes(router, Handlers{
		Redirect: NewRedirectHandler(engine),
		Auth:     NewAuthHandler(db, tokens),
		Links:    NewLinkHandler(service.NewLinkService(links, generator, rules, nil, logger), "https://s.example"),
		Stats:    NewStatsHandler(service.NewStatsService(clicks)),
	}, Middlewares{
		Auth:     middleware.AuthMiddleware(tokens),
		Admin:    middleware.AdminMiddleware(),
		APILimit: middleware.RateLimit(config.Limit{}),
	})

	env := &testEnv{router: router, db: db, tokens: tokens}
	env.admin = env.login(t, "admin", "admin-pass")
	return env
}

func (e *testEnv) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) login(t *testing.T, username, password string) string {
	t.Helper()
	w := e.do(http.MethodPost, "/auth/login", "", LoginRequest{Username: username, Password: password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		OK   bool         `json:"ok"`
		Data AuthResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.Token)
	return resp.Data.Token
}

// decode 解析 {"ok":..,"data":..} 中的 data
func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) {
	t.Helper()
	var resp struct {
		OK   bool            `json:"ok"`
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	require.True(t, resp.OK, w.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(resp.Data, data))
	}
}

func (e *testEnv) createLink(t *testing.T, slug string, targets ...service.TargetInput) LinkView {
	t.Helper()
	w := e.do(http.MethodPost, "/api/links", e.admin, service.CreateLinkInput{Slug: slug, DefaultURL: "https://default.example"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var link LinkView
	decode(t, w, &link)

	for _, target := range targets {
		w := e.do(http.MethodPost, fmt.Sprintf("/api/links/%d/targets", link.ID), e.admin, target)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}
	return link
}

func ptr[T any](v T) *T { return &v }

// TestRedirect_Integration 创建链接、跳转、查询访问记录的完整流程
func TestRedirect_Integration(t *testing.T) {
	env := setupTest(t)
	link := env.createLink(t, "promo",
		service.TargetInput{TargetURL: ptr("https://a.example"), Weight: ptr(1)},
		service.TargetInput{TargetURL: ptr("https://b.example"), Weight: ptr(0)},
	)
	assert.Equal(t, "https://s.example/promo", link.ShortURL)

	for i := 0; i < 20; i++ {
		w := env.do(http.MethodGet, "/promo?utm_source=news", "", nil)
		require.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "https://a.example?utm_source=news", w.Header().Get("Location"))
		assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	}

	w := env.do(http.MethodGet, "/api/clicks?slug=promo&size=5", env.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Items []model.Click `json:"items"`
		Total int64         `json:"total"`
		Size  int           `json:"size"`
	}
	decode(t, w, &page)
	assert.Equal(t, int64(20), page.Total, "不限流时每次跳转都有记录")
	assert.Len(t, page.Items, 5)
	require.NotNil(t, page.Items[0].UtmSource)
	assert.Equal(t, "news", *page.Items[0].UtmSource)
	assert.Equal(t, "192.0.2.1", page.Items[0].IP)

	w = env.do(http.MethodGet, "/api/stats/overview", env.admin, nil)
	var overview repository.Overview
	decode(t, w, &overview)
	assert.Equal(t, int64(20), overview.TotalClicks)
	assert.Equal(t, int64(1), overview.ActiveLinks)

	w = env.do(http.MethodGet, fmt.Sprintf("/api/stats/targets?link_id=%d", link.ID), env.admin, nil)
	var stats []repository.TargetStat
	decode(t, w, &stats)
	require.Len(t, stats, 2)
	assert.Equal(t, "https://a.example", stats[0].TargetURL)
	assert.Equal(t, int64(20), stats[0].Total)

	w = env.do(http.MethodGet, "/api/stats/daily?days=3", env.admin, nil)
	var daily []service.DailyCount
	decode(t, w, &daily)
	require.Len(t, daily, 3)
	assert.Equal(t, int64(20), daily[2].Total)
}

func TestRedirect_NotFound(t *testing.T) {
	env := setupTest(t)
	link := env.createLink(t, "deadlink")

	w := env.do(http.MethodPost, fmt.Sprintf("/api/links/%d/toggle", link.ID), env.admin, ToggleRequest{IsActive: ptr(false)})
	require.Equal(t, http.StatusOK, w.Code)

	for _, path := range []string{"/deadlink", "/missing", "/", "/a/b"} {
		w := env.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.Equal(t, redirect.NotFoundBody, w.Body.String(), path)
		assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain"), path)
	}

	w = env.do(http.MethodGet, "/api/nothing", env.admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"ok":false,"msg":"NOT_FOUND"}`, w.Body.String())
}

func TestRedirect_TrailingSlash(t *testing.T) {
	env := setupTest(t)
	env.createLink(t, "plain")

	w := env.do(http.MethodGet, "/plain/?utm_source=news", "", nil)
	assert.Equal(t, http.StatusFound, w.Code, "直接跳转到目标，不经过 /plain")
	assert.Equal(t, "https://default.example?utm_source=news", w.Header().Get("Location"))

	for _, path := range []string{"/missing/", "/plain//", "/a/b/"} {
		w := env.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.Equal(t, redirect.NotFoundBody, w.Body.String(), path)
	}
}

func TestRedirect_DefaultURLWithoutTargets(t *testing.T) {
	env := setupTest(t)
	env.createLink(t, "plain")

	w := env.do(http.MethodGet, "/plain?utm_medium=email&other=1", "", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://default.example?utm_medium=email", w.Header().Get("Location"))
}

func TestLinks_CRUD(t *testing.T) {
	env := setupTest(t)
	link := env.createLink(t, "promo")

	tests := []struct {
		name string
		body service.CreateLinkInput
		code int
		msg  string
	}{
		{"短码重复", service.CreateLinkInput{Slug: "promo", DefaultURL: "https://a.example"}, http.StatusConflict, "SLUG_EXISTS"},
		{"保留字", service.CreateLinkInput{Slug: "swagger", DefaultURL: "https://a.example"}, http.StatusBadRequest, "INVALID_SLUG"},
		{"地址非法", service.CreateLinkInput{Slug: "ok-slug", DefaultURL: "a.example"}, http.StatusBadRequest, "INVALID_URL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(http.MethodPost, "/api/links", env.admin, tt.body)
			assert.Equal(t, tt.code, w.Code)
			assert.JSONEq(t, fmt.Sprintf(`{"ok":false,"msg":%q}`, tt.msg), w.Body.String())
		})
	}

	w := env.do(http.MethodPost, "/api/links", env.admin, service.CreateLinkInput{DefaultURL: "https://gen.example"})
	require.Equal(t, http.StatusCreated, w.Code)
	var generated LinkView
	decode(t, w, &generated)
	assert.Len(t, generated.Slug, 6, "自动生成短码")

	w = env.do(http.MethodPut, fmt.Sprintf("/api/links/%d", link.ID), env.admin, service.UpdateLinkInput{Title: ptr("新标题")})
	require.Equal(t, http.StatusOK, w.Code)
	var updated LinkView
	decode(t, w, &updated)
	require.NotNil(t, updated.Title)
	assert.Equal(t, "新标题", *updated.Title)

	w = env.do(http.MethodGet, "/api/links?q=promo", env.admin, nil)
	var list struct {
		Items []repository.LinkSummary `json:"items"`
		Total int64                    `json:"total"`
	}
	decode(t, w, &list)
	assert.Equal(t, int64(1), list.Total)

	w = env.do(http.MethodGet, fmt.Sprintf("/api/links/%d/qrcode", link.ID), env.admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	w = env.do(http.MethodDelete, fmt.Sprintf("/api/links/%d", link.ID), env.admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = env.do(http.MethodGet, fmt.Sprintf("/api/links/%d", link.ID), env.admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = env.do(http.MethodGet, "/api/links/abc", env.admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTargets(t *testing.T) {
	env := setupTest(t)
	link := env.createLink(t, "promo")

	w := env.do(http.MethodPost, fmt.Sprintf("/api/links/%d/targets", link.ID), env.admin,
		service.TargetInput{TargetURL: ptr("https://a.example"), Weight: ptr(-1)})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_WEIGHT")

	w = env.do(http.MethodPost, fmt.Sprintf("/api/links/%d/targets", link.ID), env.admin,
		service.TargetInput{TargetURL: ptr("https://a.example"), Weight: ptr(2)})
	require.Equal(t, http.StatusCreated, w.Code)
	var target model.Target
	decode(t, w, &target)

	w = env.do(http.MethodPut, fmt.Sprintf("/api/targets/%d", target.ID), env.admin, service.TargetInput{TargetURL: ptr("https://c.example")})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://c.example", env.do(http.MethodGet, "/promo", "", nil).Header().Get("Location"))

	w = env.do(http.MethodPost, fmt.Sprintf("/api/targets/%d/toggle", target.ID), env.admin, ToggleRequest{IsActive: ptr(false)})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://default.example", env.do(http.MethodGet, "/promo", "", nil).Header().Get("Location"), "没有可用目标时使用默认地址")

	w = env.do(http.MethodGet, fmt.Sprintf("/api/links/%d/targets", link.ID), env.admin, nil)
	var targets []model.Target
	decode(t, w, &targets)
	assert.Len(t, targets, 1)

	w = env.do(http.MethodDelete, fmt.Sprintf("/api/targets/%d", target.ID), env.admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = env.do(http.MethodDelete, fmt.Sprintf("/api/targets/%d", target.ID), env.admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuth(t *testing.T) {
	env := setupTest(t)

	w := env.do(http.MethodPost, "/auth/login", "", LoginRequest{Username: "admin", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodGet, "/api/links", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	viewer := model.User{Username: "bob", Role: model.RoleViewer, IsActive: true}
	require.NoError(t, viewer.SetPassword("bob-pass"))
	require.NoError(t, env.db.Create(&viewer).Error)
	token := env.login(t, "bob", "bob-pass")

	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/links", token, nil).Code, "只读接口登录即可")
	w = env.do(http.MethodPost, "/api/links", token, service.CreateLinkInput{Slug: "nope", DefaultURL: "https://a.example"})
	assert.Equal(t, http.StatusForbidden, w.Code, "修改需要管理员")

	w = env.do(http.MethodGet, "/api/me", token, nil)
	var me model.User
	decode(t, w, &me)
	assert.Equal(t, "bob", me.Username)
	assert.Empty(t, me.PasswordHash, "不返回密码哈希")

	require.NoError(t, EnsureAdmin(env.db, "admin", "another"), "已存在时不修改")
	env.login(t, "admin", "admin-pass")
}

func TestExport(t *testing.T) {
	env := setupTest(t)
	env.createLink(t, "promo")
	env.do(http.MethodGet, "/promo?utm_source=%3Dcmd", "", nil)

	w := env.do(http.MethodGet, "/api/clicks/export?slug=promo", env.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=UTF-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")

	body := w.Body.String()
	assert.True(t, strings.HasPrefix(body, "\xEF\xBB\xBF"))
	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(body, "\xEF\xBB\xBF")), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(service.ExportHeader, ","), lines[0])
	assert.Contains(t, lines[1], "\"\t=cmd\"")
}

func TestHealthCheck(t *testing.T) {
	env := setupTest(t)
	w := env.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestEnsureAdmin_RequiresCredentials(t *testing.T) {
	env := setupTest(t)
	assert.Error(t, EnsureAdmin(env.db, "", ""))
}

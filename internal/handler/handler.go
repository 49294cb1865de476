package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"shortlink/internal/redirect"
)

// RedirectHandler 处理短链接访问
type RedirectHandler struct {
	engine *redirect.Engine
}

func NewRedirectHandler(engine *redirect.Engine) *RedirectHandler {
	return &RedirectHandler{engine: engine}
}

// Redirect godoc
// @Summary 短链接跳转
// @Description 按权重选择目标并跳转，访问参数中的 utm_* 会合并到目标地址
// @Tags Redirect
// @Param   slug  path  string  true  "短码"
// @Success 302 "跳转到目标地址"
// @Failure 404 {string} string "Shortlink not found"
// @Router /{slug} [get]
func (h *RedirectHandler) Redirect(c *gin.Context) {
	h.serve(c, c.Param("slug"))
}

func (h *RedirectHandler) serve(c *gin.Context, slug string) {
	out := h.engine.Redirect(c.Request.Context(), redirect.Request{
		Slug:       slug,
		Query:      c.Request.URL.Query(),
		Header:     c.Request.Header,
		RemoteAddr: c.Request.RemoteAddr,
	})
	out.Write(c.Writer)
	c.Abort()
}

// NotFound 未匹配的路由。管理接口返回 JSON；/slug/ 去掉结尾斜杠后直接跳转，其余按短链接不存在处理
func (h *RedirectHandler) NotFound(c *gin.Context) {
	path := c.Request.URL.Path
	if strings.HasPrefix(path, "/api/") {
		fail(c, http.StatusNotFound, "NOT_FOUND")
		return
	}
	if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
		if slug, found := strings.CutSuffix(strings.TrimPrefix(path, "/"), "/"); found && slug != "" && !strings.Contains(slug, "/") {
			h.serve(c, slug)
			return
		}
	}
	redirect.Outcome{Status: http.StatusNotFound}.Write(c.Writer)
	c.Abort()
}

// HealthCheck godoc
// @Summary 健康检查
// @Tags System
// @Produce  json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
}

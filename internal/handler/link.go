package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"

	"shortlink/internal/middleware"
	"shortlink/internal/model"
	"shortlink/internal/service"
)

// LinkHandler 链接和目标管理接口
type LinkHandler struct {
	links   *service.LinkService
	baseURL string
}

// NewLinkHandler baseURL 为空时用请求的 Host 拼接短链接
func NewLinkHandler(links *service.LinkService, baseURL string) *LinkHandler {
	return &LinkHandler{links: links, baseURL: strings.TrimRight(baseURL, "/")}
}

// LinkView 链接详情，带完整短链接地址
type LinkView struct {
	*model.Link
	ShortURL string `json:"short_url" example:"http://localhost:8080/promo"`
}

// ToggleRequest 启用或禁用
type ToggleRequest struct {
	IsActive *bool `json:"is_active" binding:"required" example:"false"`
}

func (h *LinkHandler) shortURL(c *gin.Context, slug string) string {
	base := h.baseURL
	if base == "" {
		scheme := "http"
		if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
			scheme = "https"
		}
		base = scheme + "://" + c.Request.Host
	}
	return base + "/" + slug
}

func (h *LinkHandler) view(c *gin.Context, link *model.Link) LinkView {
	return LinkView{Link: link, ShortURL: h.shortURL(c, link.Slug)}
}

// Create godoc
// @Summary 创建短链接
// @Description 短码为空时自动生成
// @Tags Link
// @Security ApiKeyAuth
// @Accept  json
// @Produce  json
// @Param   link  body   service.CreateLinkInput  true  "链接信息"
// @Success 201 {object} Response "成功响应"
// @Failure 400 {object} Response "INVALID_SLUG / INVALID_URL"
// @Failure 409 {object} Response "SLUG_EXISTS"
// @Router /api/links [post]
func (h *LinkHandler) Create(c *gin.Context) {
	var req service.CreateLinkInput
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "INVALID_REQUEST")
		return
	}
	link, err := h.links.Create(c.Request.Context(), req, middleware.CurrentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusCreated, h.view(c, link))
}

// List godoc
// @Summary 链接列表
// @Tags Link
// @Security ApiKeyAuth
// @Produce  json
// @Param   page  query  int     false  "页码"
// @Param   size  query  int     false  "每页条数 1-100"
// @Param   q     query  string  false  "搜索短码、标题或地址"
// @Success 200 {object} Response{data=PageData}
// @Router /api/links [get]
func (h *LinkHandler) List(c *gin.Context) {
	page := pageQuery(c)
	rows, total, err := h.links.List(c.Request.Context(), c.Query("q"), page)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, PageData{Items: rows, Total: total, Page: page.Number, Size: page.Size})
}

// Get godoc
// @Summary 链接详情
// @Tags Link
// @Security ApiKeyAuth
// @Produce  json
// @Param   id  path  int  true  "链接 id"
// @Success 200 {object} Response{data=LinkView}
// @Failure 404 {object} Response
// @Router /api/links/{id} [get]
func (h *LinkHandler) Get(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	link, err := h.links.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, h.view(c, link))
}

// Update godoc
// @Summary 修改链接标题或默认地址
// @Tags Link
// @Security ApiKeyAuth
// @Accept  json
// @Produce  json
// @Param   id    path  int                      true  "链接 id"
// @Param   link  body  service.UpdateLinkInput  true  "要修改的字段"
// @Success 200 {object} Response{data=LinkView}
// @Router /api/links/{id} [put]
func (h *LinkHandler) Update(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	var req service.UpdateLinkInput
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "INVALID_REQUEST")
		return
	}
	link, err := h.links.Update(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, h.view(c, link))
}

// Toggle godoc
// @Summary 启用或禁用链接
// @Tags Link
// @Security ApiKeyAuth
// @Accept  json
// @Produce  json
// @Param   id    path  int            true  "链接 id"
// @Param   body  body  ToggleRequest  true  "状态"
// @Success 200 {object} Response{data=LinkView}
// @Router /api/links/{id}/toggle [post]
func (h *LinkHandler) Toggle(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	var req ToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "INVALID_REQUEST")
		return
	}
	link, err := h.links.Toggle(c.Request.Context(), id, *req.IsActive)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, h.view(c, link))
}

// Delete godoc
// @Summary 删除链接
// @Description 同时删除链接下的目标，访问记录保留
// @Tags Link
// @Security ApiKeyAuth
// @Produce  json
// @Param   id  path  int  true  "链接 id"
// @Success 200 {object} Response
// @Router /api/links/{id} [delete]
func (h *LinkHandler) Delete(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	if err := h.links.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, nil)
}

// QRCode godoc
// @Summary 短链接二维码
// @Tags Link
// @Security ApiKeyAuth
// @Produce  png
// @Param   id    path   int  true   "链接 id"
// @Param   size  query  int  false  "边长像素，128-1024"
// @Success 200 {file} binary
// @Router /api/links/{id}/qrcode [get]
func (h *LinkHandler) QRCode(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	link, err := h.links.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	size, _ := strconv.Atoi(c.DefaultQuery("size", "256"))
	if size < 128 {
		size = 128
	}
	if size > 1024 {
		size = 1024
	}
	png, err := qrcode.Encode(h.shortURL(c, link.Slug), qrcode.Medium, size)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// ListTargets godoc
// @Summary 链接下的目标
// @Tags Target
// @Security ApiKeyAuth
// @Produce  json
// @Param   id  path  int  true  "链接 id"
// @Success 200 {object} Response{data=[]model.Target}
// @Router /api/links/{id}/targets [get]
func (h *LinkHandler) ListTargets(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	targets, err := h.links.ListTargets(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, targets)
}

// AddTarget godoc
// @Summary 添加目标
// @Description 权重必须大于等于 0，权重为 0 的目标不参与选择
// @Tags Target
// @Security ApiKeyAuth
// @Accept  json
// @Produce  json
// @Param   id      path  int                  true  "链接 id"
// @Param   target  body  service.TargetInput  true  "目标"
// @Success 201 {object} Response{data=model.Target}
// @Failure 400 {object} Response "INVALID_URL / INVALID_WEIGHT"
// @Router /api/links/{id}/targets [post]
func (h *LinkHandler) AddTarget(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	var req service.TargetInput
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "INVALID_REQUEST")
		return
	}
	target, err := h.links.AddTarget(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusCreated, target)
}

// UpdateTarget godoc
// @Summary 修改目标地址或权重
// @Tags Target
// @Security ApiKeyAuth
// @Accept  json
// @Produce  json
// @Param   id      path  int                  true  "目标 id"
// @Param   target  body  service.TargetInput  true  "要修改的字段"
// @Success 200 {object} Response{data=model.Target}
// @Router /api/targets/{id} [put]
func (h *LinkHandler) UpdateTarget(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	var req service.TargetInput
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "INVALID_REQUEST")
		return
	}
	target, err := h.links.UpdateTarget(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, target)
}

// ToggleTarget godoc
// @Summary 启用或禁用目标
// @Tags Target
// @Security ApiKeyAuth
// @Accept  json
// @Produce  json
// @Param   id    path  int            true  "目标 id"
// @Param   body  body  ToggleRequest  true  "状态"
// @Success 200 {object} Response{data=model.Target}
// @Router /api/targets/{id}/toggle [post]
func (h *LinkHandler) ToggleTarget(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	var req ToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "INVALID_REQUEST")
		return
	}
	target, err := h.links.ToggleTarget(c.Request.Context(), id, *req.IsActive)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, target)
}

// DeleteTarget godoc
// @Summary 删除目标
// @Tags Target
// @Security ApiKeyAuth
// @Produce  json
// @Param   id  path  int  true  "目标 id"
// @Success 200 {object} Response
// @Router /api/targets/{id} [delete]
func (h *LinkHandler) DeleteTarget(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	if err := h.links.DeleteTarget(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, nil)
}

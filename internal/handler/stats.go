package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shortlink/internal/service"
)

// StatsHandler 统计、访问记录和导出接口
type StatsHandler struct {
	stats *service.StatsService
}

func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// Overview godoc
// @Summary 访问总览
// @Tags Stats
// @Security ApiKeyAuth
// @Produce  json
// @Success 200 {object} Response{data=repository.Overview}
// @Router /api/stats/overview [get]
func (h *StatsHandler) Overview(c *gin.Context) {
	o, err := h.stats.Overview(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, o)
}

// Daily godoc
// @Summary 每日访问量
// @Description 最近 days 天，没有访问的日期补 0
// @Tags Stats
// @Security ApiKeyAuth
// @Produce  json
// @Param   days  query  int  false  "天数 1-90，默认 7"
// @Success 200 {object} Response{data=[]service.DailyCount}
// @Router /api/stats/daily [get]
func (h *StatsHandler) Daily(c *gin.Context) {
	days, _ := strconv.Atoi(c.Query("days"))
	rows, err := h.stats.Daily(c.Request.Context(), days)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, rows)
}

// Targets godoc
// @Summary 按目标统计访问量
// @Tags Stats
// @Security ApiKeyAuth
// @Produce  json
// @Param   link_id  query  int  false  "只统计该链接的目标"
// @Success 200 {object} Response{data=[]repository.TargetStat}
// @Router /api/stats/targets [get]
func (h *StatsHandler) Targets(c *gin.Context) {
	linkID, _ := strconv.ParseUint(c.Query("link_id"), 10, 64)
	rows, err := h.stats.Targets(c.Request.Context(), uint(linkID))
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, rows)
}

// Clicks godoc
// @Summary 访问记录
// @Tags Clicks
// @Security ApiKeyAuth
// @Produce  json
// @Param   slug         query  string  false  "短码"
// @Param   date_from    query  string  false  "开始日期 YYYY-MM-DD"
// @Param   date_to      query  string  false  "结束日期 YYYY-MM-DD，包含当天"
// @Param   utm_source   query  string  false  "utm_source"
// @Param   utm_content  query  string  false  "utm_content"
// @Param   page         query  int     false  "页码"
// @Param   size         query  int     false  "每页条数 1-100"
// @Success 200 {object} Response{data=PageData}
// @Router /api/clicks [get]
func (h *StatsHandler) Clicks(c *gin.Context) {
	var q service.ClickQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		fail(c, http.StatusBadRequest, "INVALID_REQUEST")
		return
	}
	page := pageQuery(c)
	rows, total, err := h.stats.Clicks(c.Request.Context(), q, page)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, PageData{Items: rows, Total: total, Page: page.Number, Size: page.Size})
}

// Export godoc
// @Summary 导出访问记录
// @Description 筛选条件同访问记录接口，返回带 BOM 的 UTF-8 CSV
// @Tags Clicks
// @Security ApiKeyAuth
// @Produce  text/csv
// @Param   slug         query  string  false  "短码"
// @Param   date_from    query  string  false  "开始日期 YYYY-MM-DD"
// @Param   date_to      query  string  false  "结束日期 YYYY-MM-DD"
// @Param   utm_source   query  string  false  "utm_source"
// @Param   utm_content  query  string  false  "utm_content"
// @Success 200 {file} binary
// @Router /api/clicks/export [get]
func (h *StatsHandler) Export(c *gin.Context) {
	var q service.ClickQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		fail(c, http.StatusBadRequest, "INVALID_REQUEST")
		return
	}

	filename := fmt.Sprintf("clicks_%s.csv", time.Now().Format("20060102_150405"))
	c.Header("Content-Type", "text/csv; charset=UTF-8")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Status(http.StatusOK)

	// 响应头已发出，出错时只能记日志
	if err := h.stats.ExportClicks(c.Request.Context(), q, c.Writer); err != nil {
		zap.L().Error("导出访问记录失败", zap.Error(err))
		_ = c.Error(err)
	}
}

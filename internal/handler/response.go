package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shortlink/internal/repository"
	"shortlink/internal/service"
)

// Response 管理接口统一的返回格式
type Response struct {
	OK   bool        `json:"ok" example:"true"`
	Data interface{} `json:"data,omitempty"`
	Msg  string      `json:"msg,omitempty" example:"NOT_FOUND"`
}

// PageData 分页数据
type PageData struct {
	Items interface{} `json:"items"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Size  int         `json:"size"`
}

func ok(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{OK: true, Data: data})
}

func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, Response{OK: false, Msg: msg})
}

// writeError 把业务错误映射成 HTTP 状态码
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		fail(c, http.StatusNotFound, "NOT_FOUND")
	case errors.Is(err, service.ErrInvalidSlug),
		errors.Is(err, service.ErrInvalidURL),
		errors.Is(err, service.ErrInvalidWeight):
		fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrSlugExists):
		fail(c, http.StatusConflict, err.Error())
	default:
		zap.L().Error("请求处理出错", zap.String("path", c.FullPath()), zap.Error(err))
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, "INTERNAL_ERROR")
	}
}

// idParam 解析路径中的数字 id
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		fail(c, http.StatusBadRequest, "INVALID_ID")
		return 0, false
	}
	return uint(id), true
}

// pageQuery 读取 page 和 size，默认第 1 页每页 20 条
func pageQuery(c *gin.Context) repository.Page {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 1
	}
	if size > 100 {
		size = 100
	}
	return repository.Page{Number: page, Size: size}
}

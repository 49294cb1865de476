package handler

import (
	"github.com/gin-gonic/gin"
)

// Handlers 路由需要的全部处理器
type Handlers struct {
	Redirect *RedirectHandler
	Auth     *AuthHandler
	Links    *LinkHandler
	Stats    *StatsHandler
}

// Middlewares 管理接口使用的中间件
type Middlewares struct {
	Auth     gin.HandlerFunc
	Admin    gin.HandlerFunc
	APILimit gin.HandlerFunc
}

// RegisterRoutes 注册全部路由。只读接口登录即可访问，修改类接口需要管理员
func RegisterRoutes(router *gin.Engine, h Handlers, m Middlewares) {
	// /slug/ 由 NotFound 一次跳转到目标，不先 301 到 /slug
	router.RedirectTrailingSlash = false

	router.GET("/health", HealthCheck)
	router.GET("/:slug", h.Redirect.Redirect)
	router.HEAD("/:slug", h.Redirect.Redirect)
	router.NoRoute(h.Redirect.NotFound)

	authGroup := router.Group("/auth")
	authGroup.Use(m.APILimit)
	{
		authGroup.POST("/login", h.Auth.Login)
	}

	api := router.Group("/api")
	api.Use(m.APILimit, m.Auth)
	{
		api.GET("/me", h.Auth.GetCurrentUser)

		api.GET("/links", h.Links.List)
		api.GET("/links/:id", h.Links.Get)
		api.GET("/links/:id/qrcode", h.Links.QRCode)
		api.GET("/links/:id/targets", h.Links.ListTargets)

		api.GET("/stats/overview", h.Stats.Overview)
		api.GET("/stats/daily", h.Stats.Daily)
		api.GET("/stats/targets", h.Stats.Targets)
		api.GET("/clicks", h.Stats.Clicks)
		api.GET("/clicks/export", h.Stats.Export)
	}

	admin := api.Group("")
	admin.Use(m.Admin)
	{
		admin.POST("/links", h.Links.Create)
		admin.PUT("/links/:id", h.Links.Update)
		admin.POST("/links/:id/toggle", h.Links.Toggle)
		admin.DELETE("/links/:id", h.Links.Delete)

		admin.POST("/links/:id/targets", h.Links.AddTarget)
		admin.PUT("/targets/:id", h.Links.UpdateTarget)
		admin.POST("/targets/:id/toggle", h.Links.ToggleTarget)
		admin.DELETE("/targets/:id", h.Links.DeleteTarget)
	}
}

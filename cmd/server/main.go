package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	redisClient "github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "shortlink/docs"
	"shortlink/internal/config"
	"shortlink/internal/handler"
	"shortlink/internal/middleware"
	"shortlink/internal/ratelimit"
	"shortlink/internal/recorder"
	"shortlink/internal/redirect"
	"shortlink/internal/repository"
	"shortlink/internal/service"
	"shortlink/internal/shortcode"
	"shortlink/pkg/database"
	auth "shortlink/pkg/jwt"
	"shortlink/pkg/logger"
	"shortlink/pkg/redis"
)

// @title ShortLink API
// @version 1.0
// @description 短链接跳转服务：加权目标、UTM 透传、访问记录和统计导出。
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	configPath := flag.String("config", "", "配置文件路径")
	flag.Parse()
	if *configPath == "" {
		*configPath = os.Getenv("CONFIG_PATH")
	}
	if *configPath == "" {
		*configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "配置加载失败:", err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
		Color:      cfg.App.Mode != "production",
	})
	defer func() {
		if err := log.Sync(); err != nil {
			fmt.Println("日志同步失败:", err)
		}
	}()
	sugaredLogger := log.Sugar()

	db, err := database.Open(database.Options{
		Driver:   cfg.Database.Driver,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Name:     cfg.Database.Name,
		Charset:  cfg.Database.Charset,
		DSN:      cfg.Database.DSN,
	})
	if err != nil {
		sugaredLogger.Fatalf("数据库初始化失败: %v", err)
	}
	defer database.Close(db)
	sugaredLogger.Info("✅ 数据库连接成功")

	var rdb *redisClient.Client
	if cfg.Cache.Host != "" {
		rdb, err = redis.NewRedisClient(&redis.Options{
			Host: cfg.Cache.Host, Port: cfg.Cache.Port, Password: cfg.Cache.Password, DB: cfg.Cache.DB,
		})
		if err != nil {
			sugaredLogger.Warnf("缓存连接失败，继续以无缓存模式运行: %v", err)
			rdb = nil
		} else {
			defer func() {
				if err := rdb.Close(); err != nil {
					sugaredLogger.Errorf("关闭 Redis 连接失败: %v", err)
				}
			}()
			sugaredLogger.Info("✅ 缓存连接成功")
		}
	}

	links := repository.NewLinkRepository(db)
	clicks := repository.NewClickRepository(db)

	var (
		linkSource  redirect.LinkRepository = links
		invalidator service.CacheInvalidator
	)
	if rdb != nil && cfg.Cache.LinkTTLSeconds > 0 {
		cached := repository.NewCachedLinkRepository(links, rdb, time.Duration(cfg.Cache.LinkTTLSeconds)*time.Second, log)
		linkSource = cached
		invalidator = cached
	}

	store, err := ratelimit.NewStore(cfg.Redirect.RateLimitStore, cfg.Redirect.RateLimitDir, rdb, log)
	if err != nil {
		sugaredLogger.Fatalf("限流存储初始化失败: %v", err)
	}
	limiter := ratelimit.New(store, cfg.App.Salt, ratelimit.WithLogger(log))

	clickRecorder := recorder.New(clicks, cfg.Redirect.RecordQueueSize, cfg.Redirect.RecordWorkers, log)

	engine := redirect.NewEngine(
		linkSource,
		redirect.NewSelector(nil, log),
		limiter,
		clickRecorder,
		redirect.Options{RedirectCode: cfg.Redirect.Code, RateLimitPerMin: cfg.Redirect.RateLimitPerMin},
		log,
	)

	rules := shortcode.NewRules(cfg.Slug.DefaultLength, cfg.Slug.MinLength, cfg.Slug.MaxLength, cfg.Slug.Reserved)
	shortcodeGenerator := shortcode.NewGenerator(links, rules, sugaredLogger)
	shortcodeGenerator.Start()
	sugaredLogger.Info("✅ 短码生成器已启动")

	tokenManager := auth.NewManager(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.ExpirationHours)

	if cfg.Auth.AdminPassword != "" {
		if err := handler.EnsureAdmin(db, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
			sugaredLogger.Errorf("创建管理员失败: %v", err)
		}
	} else {
		sugaredLogger.Warn("未配置 auth.admin_password，跳过创建管理员")
	}

	if cfg.App.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.GinZapLogger(log))
	router.Use(middleware.GinZapRecovery(log, true))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	handler.RegisterRoutes(router, handler.Handlers{
		Redirect: handler.NewRedirectHandler(engine),
		Auth:     handler.NewAuthHandler(db, tokenManager),
		Links:    handler.NewLinkHandler(service.NewLinkService(links, shortcodeGenerator, rules, invalidator, log), cfg.App.BaseURL),
		Stats:    handler.NewStatsHandler(service.NewStatsService(clicks)),
	}, handler.Middlewares{
		Auth:     middleware.AuthMiddleware(tokenManager),
		Admin:    middleware.AdminMiddleware(),
		APILimit: middleware.RateLimit(cfg.RateLimit),
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		sugaredLogger.Infof("🚀 服务启动成功, 访问 http://localhost:%d", cfg.Server.Port)
		sugaredLogger.Infof("📚 Swagger 文档地址: http://localhost:%d/swagger/index.html", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugaredLogger.Fatalf("服务启动失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	sugaredLogger.Info("正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		sugaredLogger.Errorf("HTTP 服务关闭失败: %v", err)
	}
	// 先停止接收请求，再把队列里的访问记录写完
	if err := clickRecorder.Close(ctx); err != nil {
		sugaredLogger.Warnf("访问记录未全部写入: %v", err)
	}
	shortcodeGenerator.Stop()
	zap.S().Info("服务已退出")
}

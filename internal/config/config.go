package config

import (
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// 主配置结构
type Config struct {
	App       App      `yaml:"app"`
	Server    Server   `yaml:"server"`
	Database  DB       `yaml:"database"`
	Cache     Cache    `yaml:"cache"`
	Log       Log      `yaml:"log"`
	Auth      Auth     `yaml:"auth"`
	Redirect  Redirect `yaml:"redirect"`
	Slug      Slug     `yaml:"slug"`
	RateLimit Limit    `yaml:"rate_limit"`
}

// 应用配置
type App struct {
	Name    string `yaml:"name"`
	Mode    string `yaml:"mode"`
	Version string `yaml:"version"`
	// BaseURL 生成短链接地址时使用，为空时取请求的主机名
	BaseURL string `yaml:"base_url"`
	// Salt 用于对访客 IP 做哈希，不能为空
	Salt string `yaml:"salt"`
}

// 服务器配置
type Server struct {
	Port            int `yaml:"port"`
	ReadTimeout     int `yaml:"read_timeout"`
	WriteTimeout    int `yaml:"write_timeout"`
	ShutdownTimeout int `yaml:"shutdown_timeout"`
}

// 数据库配置
type DB struct {
	Driver   string `yaml:"driver"` // mysql | sqlite
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	Charset  string `yaml:"charset"`
	DSN      string `yaml:"dsn"` // sqlite 文件路径
}

// 缓存配置（Redis）
type Cache struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Password       string `yaml:"password"`
	DB             int    `yaml:"db"`
	LinkTTLSeconds int    `yaml:"link_ttl_seconds"`
}

// 日志配置
type Log struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
	Compress   bool   `yaml:"compress"`
}

// 认证配置
type Auth struct {
	Secret          string `yaml:"secret"`
	Issuer          string `yaml:"issuer"`
	ExpirationHours int    `yaml:"expiration_hours"`
	AdminUsername   string `yaml:"admin_username"`
	AdminPassword   string `yaml:"admin_password"`
}

// 跳转配置
type Redirect struct {
	Code            int    `yaml:"redirect_code"`
	RateLimitPerMin int    `yaml:"rate_limit_per_min"`
	RateLimitStore  string `yaml:"rate_limit_store"` // memory | file | redis
	RateLimitDir    string `yaml:"rate_limit_dir"`
	RecordQueueSize int    `yaml:"record_queue_size"`
	RecordWorkers   int    `yaml:"record_workers"`
}

// 短码规则
type Slug struct {
	DefaultLength int      `yaml:"default_length"`
	MinLength     int      `yaml:"min_length"`
	MaxLength     int      `yaml:"max_length"`
	Reserved      []string `yaml:"reserved"`
}

// 管理接口限流配置
type Limit struct {
	Enabled   bool     `yaml:"enabled"`
	Requests  int64    `yaml:"requests_per_minute"`
	Burst     int64    `yaml:"burst"`
	SkipPaths []string `yaml:"skip_paths"`
}

// DefaultReserved 是不能作为短码的保留字
var DefaultReserved = []string{
	"admin", "admin.php", "assets", "index.php", "healthz", "robots.txt", "favicon.ico",
	"api", "login", "logout", "swagger", "health", "auth",
}

// Load 读取 YAML 配置。读取前会加载 .env 并展开 ${VAR} 引用
func Load(path string) (*Config, error) {
	_ = godotenv.Load() // 生产环境通常没有 .env

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default 返回带默认值的配置
func Default() *Config {
	return &Config{
		App:      App{Name: "ShortLink", Mode: "debug", Version: "1.0.0"},
		Server:   Server{Port: 8080, ReadTimeout: 10, WriteTimeout: 10, ShutdownTimeout: 10},
		Database: DB{Driver: "mysql", Host: "127.0.0.1", Port: 3306, User: "root", Name: "shortlink", Charset: "utf8mb4"},
		Cache:    Cache{Port: 6379, LinkTTLSeconds: 60},
		Log:      Log{Level: "info", File: "./logs/app.log", MaxSize: 10, MaxBackups: 5, MaxAge: 30},
		Auth:     Auth{Issuer: "shortlink", ExpirationHours: 24, AdminUsername: "admin"},
		Redirect: Redirect{
			Code:            http.StatusFound,
			RateLimitStore:  "memory",
			RateLimitDir:    "./storage/cache",
			RecordQueueSize: 1024,
			RecordWorkers:   4,
		},
		Slug: Slug{DefaultLength: 6, MinLength: 3, MaxLength: 20, Reserved: DefaultReserved},
	}
}

func (c *Config) normalize() {
	if !ValidRedirectCode(c.Redirect.Code) {
		c.Redirect.Code = http.StatusFound
	}
	if c.Redirect.RateLimitPerMin < 0 {
		c.Redirect.RateLimitPerMin = 0
	}
	if c.Redirect.RateLimitStore == "" {
		c.Redirect.RateLimitStore = "memory"
	}
	if c.Redirect.RecordQueueSize <= 0 {
		c.Redirect.RecordQueueSize = 1024
	}
	if c.Redirect.RecordWorkers < 0 {
		c.Redirect.RecordWorkers = 0
	}
	if c.Slug.DefaultLength <= 0 {
		c.Slug.DefaultLength = 6
	}
	if c.Slug.MinLength <= 0 {
		c.Slug.MinLength = 3
	}
	if c.Slug.MaxLength < c.Slug.MinLength {
		c.Slug.MaxLength = 20
	}
	if len(c.Slug.Reserved) == 0 {
		c.Slug.Reserved = DefaultReserved
	}
}

// Validate 检查必须由部署方提供的配置项
func (c *Config) Validate() error {
	if c.App.Salt == "" {
		return fmt.Errorf("app.salt 不能为空")
	}
	if c.Auth.Secret == "" {
		return fmt.Errorf("auth.secret 不能为空")
	}
	switch c.Redirect.RateLimitStore {
	case "memory", "file", "redis":
	default:
		return fmt.Errorf("未知的 rate_limit_store: %s", c.Redirect.RateLimitStore)
	}
	switch c.Database.Driver {
	case "mysql", "sqlite":
	default:
		return fmt.Errorf("未知的数据库驱动: %s", c.Database.Driver)
	}
	return nil
}

// ValidRedirectCode 判断状态码是否为可用的跳转码
func ValidRedirectCode(code int) bool {
	switch code {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"shortlink/internal/model"
)

// Options 数据库连接参数
type Options struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	Charset  string
	DSN      string
	LogLevel gormlogger.LogLevel
}

// Open 按驱动打开数据库连接并自动迁移表结构
func Open(opts Options) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch opts.Driver {
	case "sqlite":
		dsn := opts.DSN
		if dsn == "" {
			dsn = "file:shortlink.db?_foreign_keys=on"
		}
		dialector = sqlite.Open(dsn)
	case "mysql", "":
		dialector = mysql.Open(mysqlDSN(opts))
	default:
		return nil, fmt.Errorf("不支持的数据库驱动: %s", opts.Driver)
	}

	level := opts.LogLevel
	if level == 0 {
		level = gormlogger.Warn
	}
	connection, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(level)})
	if err != nil {
		return nil, fmt.Errorf("数据库连接失败: %w", err)
	}

	if opts.Driver == "mysql" || opts.Driver == "" {
		sqlDB, err := connection.DB()
		if err != nil {
			return nil, fmt.Errorf("获取连接池失败: %w", err)
		}
		sqlDB.SetMaxOpenConns(50)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	if err := Migrate(connection); err != nil {
		return nil, err
	}
	return connection, nil
}

// mysqlTableOptions 使用二进制排序规则，短码按字节比较、区分大小写
const mysqlTableOptions = "ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_bin"

// tableOptions 返回建表时附加的选项，sqlite 本身按字节比较，不需要
func tableOptions(dialect string) string {
	if dialect == "mysql" {
		return mysqlTableOptions
	}
	return ""
}

// Migrate 自动迁移所有表。已有的 mysql 表不会改排序规则，需要手工 ALTER TABLE ... COLLATE utf8mb4_bin
func Migrate(db *gorm.DB) error {
	if options := tableOptions(db.Dialector.Name()); options != "" {
		db = db.Set("gorm:table_options", options)
	}
	if err := db.AutoMigrate(&model.User{}, &model.Link{}, &model.Target{}, &model.Click{}); err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}
	return nil
}

// Close 关闭底层连接池
func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		zap.S().Errorf("关闭数据库连接失败: %v", err)
	}
}

func mysqlDSN(opts Options) string {
	charset := opts.Charset
	if charset == "" {
		charset = "utf8mb4"
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local",
		opts.User, opts.Password, opts.Host, opts.Port, opts.Name, charset)
}

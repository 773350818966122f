package database

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"

	"pharma-scanner/internal/domain"
)

type Opts struct {
	Driver             string // sqlite | mysql | postgres
	DSN                string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	LogLevel           string
}

var ErrUnsupportedDriver = fmt.Errorf("unsupported db driver")

// New 打开（或创建）本地存储并返回连接。
// 默认是单文件 sqlite；mysql/postgres 留给托管部署。
// 打不开（权限、配额）时返回包着 ErrStorageUnavailable 的错误。
// 连接只在 main 里建一次、注入给仓储层，不做包级单例。
func New(o Opts) (*gorm.DB, error) {
	var dial gorm.Dialector
	switch o.Driver {
	case "sqlite", "":
		dial = sqlite.Open(normalizeSQLiteDSN(o.DSN))
	case "mysql":
		dial = mysql.Open(o.DSN)
	case "postgres":
		dial = postgres.Open(o.DSN)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, o.Driver)
	}

	lvl := logger.Warn
	switch o.LogLevel {
	case "silent":
		lvl = logger.Silent
	case "error":
		lvl = logger.Error
	case "info":
		lvl = logger.Info
	}

	db, err := gorm.Open(dial, &gorm.Config{
		Logger: logger.Default.LogMode(lvl),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	sqlDB.SetMaxOpenConns(o.MaxOpenConns)
	sqlDB.SetMaxIdleConns(o.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(o.ConnMaxLifetimeMin) * time.Minute)

	db = db.Session(&gorm.Session{
		PrepareStmt:            true,
		CreateBatchSize:        200,
		SkipDefaultTransaction: true, // 事务只在需要跨表原子性时手动开
	})
	return db, nil
}

// Migrate 建表并维护二级索引（users.email/username 唯一，
// products 的 user_id/barcode/category/favorite 非唯一，settings 以 user_id 为主键）。
// 索引定义都在实体的 gorm tag 上，这里只触发 DDL 对比。
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.User{}, &domain.Product{}, &domain.Settings{})
}

// normalizeSQLiteDSN 给文件型 DSN 补上忙等和外键参数；
// 内存库（测试用）原样返回。
func normalizeSQLiteDSN(dsn string) string {
	if dsn == "" {
		dsn = "pharma.db"
	}
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return dsn
	}
	if !strings.Contains(dsn, "?") {
		return dsn + "?_busy_timeout=5000&_foreign_keys=on"
	}
	return dsn
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"pharma-scanner/internal/core/auth"
	"pharma-scanner/internal/core/cache"
	"pharma-scanner/internal/core/config"
	"pharma-scanner/internal/core/database"
	"pharma-scanner/internal/core/logger"
	"pharma-scanner/internal/core/server"
	"pharma-scanner/internal/domain"
	"pharma-scanner/internal/lookup"
	"pharma-scanner/internal/notify"
	"pharma-scanner/internal/repo"
	"pharma-scanner/internal/service"
	"pharma-scanner/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.New(cfg.Log.Level, cfg.Log.JSON)
	defer cleanup()

	// 数据库（失败会直接 Fatal）
	db := mustOpenDB(cfg, log)
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	// 自动建表
	if cfg.DB.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}

	// JWT
	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
	}

	// 仓储
	userRepo := repo.NewUserRepo(db)
	productRepo := repo.NewProductRepo(db)
	settingsRepo := repo.NewSettingsRepo(db)

	// 仪表盘缓存（可选）
	var statsCache *cache.Cache
	if cfg.Redis.Enable {
		statsCache = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		log.Info("stats cache enabled", zap.String("addr", cfg.Redis.Addr))
	}

	// 外部商品库（可选）
	var metaLookup domain.MetadataLookup
	if cfg.Lookup.Enable {
		metaLookup = lookup.NewOpenFoodFacts(cfg.Lookup.BaseURL,
			time.Duration(cfg.Lookup.TimeoutSec)*time.Second, log)
		log.Info("barcode lookup enabled", zap.String("base_url", cfg.Lookup.BaseURL))
	}

	// 服务
	statsSvc := service.NewStatsService(productRepo, statsCache)
	authSvc := service.NewAuthService(userRepo, settingsRepo, jwter)
	productSvc := service.NewProductService(productRepo, metaLookup, statsSvc)
	settingsSvc := service.NewSettingsService(settingsRepo)
	backupSvc := service.NewBackupService(db, userRepo, productRepo, settingsRepo, statsSvc)

	// 过期提醒（可选，没配 SMTP 就不起）
	rootCtx, stopJobs := context.WithCancel(context.Background())
	defer stopJobs()
	if cfg.Notify.Enable && cfg.Notify.SMTPHost != "" {
		mailer := notify.NewSMTPMailer(cfg.Notify.SMTPHost, cfg.Notify.SMTPPort,
			cfg.Notify.SMTPUser, cfg.Notify.SMTPPassword, cfg.Notify.From)
		notifier := notify.NewExpiryNotifier(userRepo, productRepo, settingsRepo, mailer, log)
		go notifier.Start(rootCtx, time.Duration(cfg.Notify.IntervalHour)*time.Hour)
		log.Info("expiry notifier started", zap.Int("interval_hour", cfg.Notify.IntervalHour))
	}

	// 路由（用户端）
	r := router.NewAPIEngine(log, router.Deps{
		Auth:     authSvc,
		Products: productSvc,
		Stats:    statsSvc,
		Settings: settingsSvc,
		Backup:   backupSvc,
		JWTer:    jwter,
	})

	// HTTP Server
	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.Build(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	// 启动日志
	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("api_v1", baseURL+"/api/v1"),
	)

	// 异步启动
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("api start FAILED", zap.Error(err))
		}
	}()
	log.Info("api started SUCCESS")

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	stopJobs()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info("api stopped gracefully")
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.New(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}

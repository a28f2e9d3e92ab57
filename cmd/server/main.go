package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/realty-promo/internal/app"
	"github.com/realty-promo/internal/config"
	"github.com/realty-promo/internal/logger"
	"github.com/realty-promo/internal/metrics"
	"github.com/realty-promo/internal/models"
	"github.com/realty-promo/internal/tracing"

	"github.com/gin-gonic/gin"
)

func main() {
	mode := flag.String("mode", app.ModeAll, "启动模式: all (默认), api, worker")
	migrateOnly := flag.Bool("migrate-only", false, "只执行数据库迁移后退出")
	flag.Parse()

	if err := run(*mode, *migrateOnly); err != nil {
		logger.Errorw("server_exit", "error", err)
		_ = logger.Z().Sync()
		os.Exit(1)
	}
}

func run(mode string, migrateOnly bool) error {
	mode, err := app.ParseMode(mode)
	if err != nil {
		return err
	}

	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	defer func() { _ = logger.Z().Sync() }()

	release := cfg.Server.Mode == "release"
	if weakSecret(cfg.JWT.SecretKey) {
		if release {
			return errors.New("jwt secret is weak or default, configure the key shared with the auth service")
		}
		logger.Warnw("jwt_secret_weak", "hint", "set jwt.secret_key before deploying")
	}

	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	if err := models.AutoMigrate(models.DB); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	if migrateOnly {
		logger.Infow("migrate_finished", "driver", cfg.Database.Driver)
		return nil
	}

	shutdownTracing, err := tracing.Init(cfg.Tracing)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Warnw("tracing_shutdown_failed", "error", err)
		}
	}()
	metrics.Register()

	if release {
		gin.SetMode(gin.ReleaseMode)
	}

	return app.Run(app.Options{
		Config:  cfg,
		Logger:  logger.S(),
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:    mode,
	})
}

// weakSecret 过短或仍为示例值的密钥
func weakSecret(secret string) bool {
	if len(secret) < 32 {
		return true
	}
	lower := strings.ToLower(secret)
	for _, marker := range []string{"change-me", "change-in-production", "your-secret-key"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

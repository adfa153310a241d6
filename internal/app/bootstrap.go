package app

import (
	"errors"
	"fmt"

	"github.com/leafcart/internal/authz"
	"github.com/leafcart/internal/config"
	"github.com/leafcart/internal/models"
	"github.com/leafcart/internal/provider"
	"github.com/leafcart/internal/router"
	"github.com/leafcart/internal/worker"

	"gorm.io/gorm"
)

// OpenDatabase 按配置打开数据库并迁移本服务的表
func OpenDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := models.OpenDB(cfg.Database.Driver, cfg.Database.DSN, cfg.Database.LogMode, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, nil
}

// BuildRunner 构建服务运行器
func BuildRunner(cfg *config.Config, db *gorm.DB, opts Options) (*Runner, *provider.Container, error) {
	opts = normalizeOptions(opts)
	if cfg == nil {
		return nil, nil, errors.New("config is nil")
	}

	container, err := provider.NewContainer(cfg, db)
	if err != nil {
		return nil, nil, err
	}
	if opts.AdminUserID > 0 {
		if err := container.AuthzService.SetStaffRoles(opts.AdminUserID, []string{authz.RoleAdmin}); err != nil {
			container.Close()
			return nil, nil, fmt.Errorf("grant bootstrap admin: %w", err)
		}
		opts.Logger.Infow("bootstrap_admin_granted", "user_id", opts.AdminUserID)
	}

	var services []Service

	// 初始化 HTTP 服务
	if opts.Mode == ModeAll || opts.Mode == ModeAPI {
		engine := router.SetupRouter(cfg, container)
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		services = append(services, NewHTTPService(addr, engine))
	}

	// 初始化 Worker 服务（队列关闭时只在 worker 模式下报错）
	if opts.Mode == ModeAll || opts.Mode == ModeWorker {
		consumer := worker.NewConsumer(container)
		workerService, err := worker.NewService(&cfg.Queue, consumer)
		switch {
		case err == nil:
			services = append(services, workerService)
		case opts.Mode == ModeWorker:
			container.Close()
			return nil, nil, err
		default:
			opts.Logger.Warnw("worker_disabled", "error", err)
		}
	}

	if len(services) == 0 {
		container.Close()
		return nil, nil, errors.New("no services initialized (check mode and config)")
	}

	runner := NewRunner(services...)
	opts.Logger.Infow("runner_ready", "mode", opts.Mode, "services", runner.Names())
	return runner, container, nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	db, err := OpenDatabase(opts.Config)
	if err != nil {
		return err
	}

	runner, container, err := BuildRunner(opts.Config, db, opts)
	if err != nil {
		return err
	}
	defer container.Close()

	addr := opts.Config.Server.Host + ":" + opts.Config.Server.Port
	opts.Logger.Infow("app_start", "addr", addr, "mode", opts.Mode)
	return RunWithOptions(runner, opts)
}

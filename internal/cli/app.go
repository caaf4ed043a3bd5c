package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"taskflow/internal/config"
	"taskflow/internal/logger"
	"taskflow/internal/notify"
	"taskflow/internal/repository"
	"taskflow/internal/service"
)

// app is the wiring shared by every subcommand.
type app struct {
	cfg   config.Config
	db    *gorm.DB
	tasks *service.TaskService
}

// loadConfig reads the environment and applies the --db override.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if dsn, _ := cmd.Flags().GetString("db"); dsn != "" {
		cfg.DatabaseURL = dsn
	}
	logger.Init(cfg.Env)
	return cfg, nil
}

// openApp opens the store and loads state. sink may be nil.
func openApp(ctx context.Context, cfg config.Config, sink notify.Sink) (*app, error) {
	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}

	kv := repository.NewKVRepository(db)
	taskSvc := service.NewTaskService(
		repository.NewTaskRepository(kv),
		repository.NewCategoryRepository(kv),
		sink,
	)
	taskSvc.Load(ctx)

	return &app{cfg: cfg, db: db, tasks: taskSvc}, nil
}

func (a *app) Close() {
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Sync()
}

// withApp runs fn against a store opened without a reminder sink.
func withApp(cmd *cobra.Command, fn func(a *app) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	a, err := openApp(cmd.Context(), cfg, nil)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

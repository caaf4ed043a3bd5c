package repository

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"taskflow/internal/logger"
	"taskflow/internal/model"
)

const defaultDSN = "taskflow.db"

// sqlitePragmas let the bot and a CLI invocation open one file concurrently.
var sqlitePragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=5000",
}

// gormWriter routes gorm's slow-query and error lines into the zap logger.
type gormWriter struct{}

func (gormWriter) Printf(format string, args ...interface{}) {
	logger.Get().Warnf(format, args...)
}

// NewDB opens the SQLite file backing the key-value store and migrates it.
// An empty dsn means taskflow.db in the working directory.
func NewDB(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		dsn = defaultDSN
	}

	if err := ensureDirForSQLite(dsn); err != nil {
		return nil, err
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.New(gormWriter{}, gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("open db %s: %w", dsn, err)
	}

	if !isMemoryDSN(dsn) {
		for _, pragma := range sqlitePragmas {
			if err := db.Exec(pragma).Error; err != nil {
				return nil, fmt.Errorf("%s: %w", pragma, err)
			}
		}
	}

	if err := db.AutoMigrate(&model.Entry{}); err != nil {
		return nil, fmt.Errorf("migrate db: %w", err)
	}

	return db, nil
}

func isMemoryDSN(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

// ensureDirForSQLite creates parent dir for SQLite file if needed.
func ensureDirForSQLite(dsn string) error {
	if isMemoryDSN(dsn) {
		return nil
	}
	path, _, _ := strings.Cut(strings.TrimPrefix(dsn, "file:"), "?")
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}
	return nil
}

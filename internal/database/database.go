// Package database handles database connections and migrations.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"postboard/internal/config"
	"postboard/internal/middleware"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	connectTimeout      = 5 * time.Second
	defaultMaxOpenConns = 25
	defaultMaxIdleConns = 5
)

// SQLiteDSN builds a go-sqlite3 DSN with WAL journaling, a bounded busy wait
// and immediate write transactions so concurrent writers queue instead of
// failing on lock upgrade.
func SQLiteDSN(path string, busyTimeout time.Duration) string {
	return fmt.Sprintf("file:%s?_busy_timeout=%d&_journal_mode=WAL&_txlock=immediate&_foreign_keys=1",
		path, busyTimeout.Milliseconds())
}

// PostgresDSN builds a libpq-style connection string.
func PostgresDSN(cfg *config.Config) string {
	sslMode := cfg.DBSSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost,
		cfg.DBPort,
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBName,
		sslMode,
	)
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:         NewGormLogger(),
		TranslateError: true,
	}
}

// OpenSQLite opens (and creates) a SQLite database file.
func OpenSQLite(path string, busyTimeout time.Duration) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(SQLiteDSN(path, busyTimeout)), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	return db, nil
}

// OpenPostgres opens a PostgreSQL connection.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Connect opens the configured store, verifies it is reachable and migrates the schema.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	db, err := open(cfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	tunePool(sqlDB, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("database unreachable: %w", err)
	}
	middleware.Logger.Info("database connected", slog.String("driver", driverName(cfg)))

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func open(cfg *config.Config) (*gorm.DB, error) {
	if cfg.DBDriver == "postgres" {
		return OpenPostgres(PostgresDSN(cfg))
	}
	return OpenSQLite(cfg.DBPath, cfg.BusyTimeout())
}

func driverName(cfg *config.Config) string {
	if cfg.DBDriver == "postgres" {
		return "postgres"
	}
	return "sqlite"
}

// Migrate creates or updates every persistent table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(PersistentModels()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	middleware.Logger.Info("database schema migrated", slog.Int("tables", len(PersistentModels())))
	return nil
}

func tunePool(sqlDB *sql.DB, cfg *config.Config) {
	sqlDB.SetMaxOpenConns(orDefault(cfg.DBMaxOpenConns, defaultMaxOpenConns))
	sqlDB.SetMaxIdleConns(orDefault(cfg.DBMaxIdleConns, defaultMaxIdleConns))
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.DBConnMaxLifetimeMinutes) * time.Minute)
}

func orDefault(n, fallback int) int {
	if n <= 0 {
		return fallback
	}
	return n
}

// Package database opens the shared gorm connection pool.
//
// The pool is built once at startup and passed explicitly to every
// repository; nothing in the storefront reaches for a package-level handle.
package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/apperr"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Options describes how to reach the database and how hard to try.
type Options struct {
	Driver string
	DSN    string
	Retry  Retry

	MaxOpenConns int
	MaxIdleConns int
}

// Retry is a bounded, fixed-interval retry policy.
type Retry struct {
	Attempts int
	Interval time.Duration
	// Sleep waits between attempts. Defaults to a context-aware timer;
	// tests swap it for a recorder.
	Sleep func(ctx context.Context, d time.Duration) error
}

// OptionsFromConfig reads driver, DSN and retry policy from config.
func OptionsFromConfig() Options {
	return Options{
		Driver: config.DatabaseDriver(),
		DSN:    config.DatabaseDSN(),
		Retry: Retry{
			Attempts: config.DBConnectAttempts(),
			Interval: config.DBConnectInterval(),
		},
	}
}

// Connect opens the pool, retrying per opts.Retry. After the last failed
// attempt the returned error matches apperr.ErrStorageUnavailable; the
// caller decides whether to run degraded or abort.
func Connect(ctx context.Context, opts Options) (*gorm.DB, error) {
	dialector, err := buildDialector(opts.Driver, opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("database: build dialector: %w", err)
	}

	attempts := opts.Retry.Attempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := opts.Retry.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		db, err := open(dialector, opts)
		if err == nil {
			logger.Info("database: connected", "driver", opts.Driver, "attempt", attempt)
			return db, nil
		}
		lastErr = err
		logger.Warn("database: connection attempt failed",
			"driver", opts.Driver,
			"attempt", attempt,
			"max_attempts", attempts,
			"error", err,
		)

		if attempt == attempts {
			break
		}
		if err := sleep(ctx, opts.Retry.Interval); err != nil {
			lastErr = errors.Join(lastErr, err)
			break
		}
	}

	return nil, apperr.StorageUnavailable(fmt.Errorf("database: giving up: %w", lastErr))
}

func open(dialector gorm.Dialector, opts Options) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent), // use pkg/logger, not GORM's own
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("database: open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database: get sql.DB: %w", err)
	}
	maxOpen, maxIdle := opts.MaxOpenConns, opts.MaxIdleConns
	if maxOpen <= 0 {
		maxOpen = 25
	}
	if maxIdle <= 0 {
		maxIdle = 10
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(2 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("database: ping: %w", err)
	}

	Instrument(db)
	return db, nil
}

// Ping reports whether db is reachable right now. A nil db is never healthy.
func Ping(ctx context.Context, db *gorm.DB) bool {
	if db == nil {
		return false
	}
	sqlDB, err := db.DB()
	if err != nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx) == nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func buildDialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "sqlite":
		return sqlite.Open(sqliteDSN(dsn)), nil
	case "postgres":
		return postgres.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	case "sqlserver":
		return sqlserver.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (supported: sqlite, postgres, mysql, sqlserver)", driver)
	}
}

// sqliteDSN turns on foreign keys for every pooled connection; without it
// SQLite ignores ON DELETE CASCADE.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&_foreign_keys=1"
	}
	return dsn + "?_foreign_keys=1"
}

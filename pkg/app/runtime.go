package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/database"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/migration"
	"github.com/shashiranjanraj/storefront/pkg/storage"
)

// Options configures Boot and the listeners.
type Options struct {
	Database database.Options
	Storage  storage.Options

	RedisAddr     string
	RedisPassword string

	// Migrate runs pending migrations after connecting.
	Migrate bool

	// ReconnectInterval is the pause between reconnect rounds while the
	// server runs degraded. Each round uses the Database retry policy.
	ReconnectInterval time.Duration

	HTTPAddr string
	GRPCAddr string
}

// OptionsFromConfig reads every option from config.
func OptionsFromConfig() Options {
	return Options{
		Database:          database.OptionsFromConfig(),
		Storage:           storage.OptionsFromConfig(),
		RedisAddr:         config.RedisAddr(),
		RedisPassword:     config.RedisPassword(),
		Migrate:           true,
		ReconnectInterval: config.DBReconnectInterval(),
		HTTPAddr:          ":" + config.AppPort(),
		GRPCAddr:          ":" + config.GRPCPort(),
	}
}

// Runtime is the set of shared handles every component is built from.
// DB is nil while the server runs degraded. Components built from a
// degraded runtime keep their nil pool; a reconnect hands out a fresh view
// carrying the new pool so callers can rebuild them.
type Runtime struct {
	DB    *gorm.DB
	Disk  storage.Disk
	Cache cache.Store

	mu      sync.RWMutex
	closed  bool
	closers []func()
}

// Available reports whether a database pool has been established.
func (rt *Runtime) Available() bool { return rt != nil && rt.pool() != nil }

// Ready reports whether the database answers right now.
func (rt *Runtime) Ready(ctx context.Context) bool {
	db := rt.pool()
	return db != nil && database.Ping(ctx, db)
}

func (rt *Runtime) pool() *gorm.DB {
	if rt == nil {
		return nil
	}
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.DB
}

// attach installs db as the runtime's pool. It reports false, and closes db,
// when the runtime was closed in the meantime.
func (rt *Runtime) attach(db *gorm.DB) bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.closed {
		closeDB(db)
		return false
	}
	rt.DB = db
	rt.closers = append(rt.closers, func() { closeDB(db) })
	return true
}

// Close releases the pool and the cache connection.
func (rt *Runtime) Close() {
	rt.mu.Lock()
	closers := rt.closers
	rt.closers = nil
	rt.closed = true
	rt.mu.Unlock()

	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// migrate applies pending migrations to db when opts asks for it.
func migrate(db *gorm.DB, opts Options) error {
	if !opts.Migrate {
		return nil
	}
	applied, err := migration.New(db).Run()
	if err != nil {
		return err
	}
	if len(applied) > 0 {
		logger.Info("boot: schema updated", "migrations", applied)
	}
	return nil
}

// reconnect keeps trying to reach the database until it succeeds or ctx is
// done. On success it migrates, passes onReady a view of the runtime that
// carries the new pool, then attaches the pool to rt. A failed migration
// leaves the server degraded and stops the loop.
func (rt *Runtime) reconnect(ctx context.Context, opts Options, onReady func(*Runtime)) {
	every := opts.ReconnectInterval
	if every <= 0 {
		every = time.Second
	}
	sleep := opts.Database.Retry.Sleep
	if sleep == nil {
		sleep = func(ctx context.Context, d time.Duration) error {
			t := time.NewTimer(d)
			defer t.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-t.C:
				return nil
			}
		}
	}

	for round := 1; ; round++ {
		if err := sleep(ctx, every); err != nil {
			return
		}
		db, err := database.Connect(ctx, opts.Database)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn("boot: reconnect round failed", "round", round, "error", err)
			continue
		}
		if err := migrate(db, opts); err != nil {
			logger.Error("boot: migrate after reconnect failed, staying degraded", "error", err)
			closeDB(db)
			return
		}
		if onReady != nil {
			onReady(&Runtime{DB: db, Disk: rt.Disk, Cache: rt.Cache})
		}
		if rt.attach(db) {
			logger.Info("boot: database reachable, leaving degraded mode", "round", round)
		}
		return
	}
}

// Boot connects to the database, ensures the schema, and opens the asset
// disk and the read cache. An unreachable database is not an error: the
// runtime comes back with a nil DB and the caller serves degraded.
func Boot(ctx context.Context, opts Options) (*Runtime, error) {
	rt := &Runtime{Cache: cache.Nop{}}

	db, err := database.Connect(ctx, opts.Database)
	if err != nil {
		logger.Error("boot: database unavailable, serving degraded", "error", err)
	} else {
		rt.attach(db)
		if err := migrate(db, opts); err != nil {
			rt.Close()
			return nil, fmt.Errorf("boot: migrate: %w", err)
		}
	}

	disk, err := storage.Open(ctx, opts.Storage)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("boot: %w", err)
	}
	rt.Disk = disk

	if opts.RedisAddr != "" {
		rc, err := cache.Connect(ctx, opts.RedisAddr, opts.RedisPassword)
		if err != nil {
			logger.Warn("boot: redis unavailable, product cache disabled", "addr", opts.RedisAddr, "error", err)
		} else {
			rt.Cache = rc
			rt.mu.Lock()
			rt.closers = append(rt.closers, func() { _ = rc.Close() })
			rt.mu.Unlock()
		}
	}

	return rt, nil
}

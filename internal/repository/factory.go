package repository

import (
	"context"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Options параметры открытия хранилища
type Options struct {
	Driver      string
	DSN         string
	AutoMigrate bool
	LogLevel    logger.LogLevel
}

// Open создаёт Store по типу драйвера: memory, postgres или sqlite
func Open(ctx context.Context, opts Options) (*Store, error) {
	switch opts.Driver {
	case "", "memory", "mem":
		return NewMemory(), nil
	case "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("unknown store driver: %s", opts.Driver)
	}
	if opts.DSN == "" {
		return nil, fmt.Errorf("dsn required for %s store", opts.Driver)
	}
	if opts.LogLevel == 0 {
		opts.LogLevel = logger.Warn
	}
	cfg := &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(opts.LogLevel),
	}

	var dialector gorm.Dialector
	if opts.Driver == "postgres" {
		dialector = postgres.Open(opts.DSN)
	} else {
		dialector = sqlite.Open(opts.DSN)
	}
	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", opts.Driver, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if opts.Driver == "sqlite" {
		// у sqlite один писатель; единственное соединение исключает SQLITE_BUSY
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping %s: %w", opts.Driver, err)
	}

	gs := NewGormStore(db)
	if opts.AutoMigrate {
		if err := gs.Migrate(ctx); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	return gs.Store(), nil
}

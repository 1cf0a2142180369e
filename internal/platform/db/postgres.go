package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Options sizes the pool. Zero values keep database/sql defaults, except
// ConnectTimeout which falls back to five seconds.
type Options struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnectTimeout  time.Duration
}

// Postgres owns the gorm handle shared by the voting repository. Vote and
// transition writes open their own transactions through DB.Transaction.
type Postgres struct {
	DB *gorm.DB
}

func Connect(ctx context.Context, opts Options, logger *slog.Logger) (*Postgres, error) {
	if opts.DSN == "" {
		return nil, errors.New("postgres dsn is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	db, err := gorm.Open(postgres.Open(opts.DSN), &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open gorm postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("resolve postgres sql db handle: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	timeout := opts.ConnectTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		logger.Error("postgres ping failed",
			"event", "db_postgres_ping_failed",
			"module", "internal/platform/db",
			"layer", "platform",
			"error", err.Error(),
		)
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	logger.Info("postgres connected",
		"event", "db_postgres_connected",
		"module", "internal/platform/db",
		"layer", "platform",
		"max_open_conns", opts.MaxOpenConns,
		"max_idle_conns", opts.MaxIdleConns,
	)
	return &Postgres{DB: db}, nil
}

func (p *Postgres) Close() error {
	if p == nil || p.DB == nil {
		return nil
	}
	sqlDB, err := p.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

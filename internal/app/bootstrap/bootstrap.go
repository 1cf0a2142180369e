package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	votingcore "agora/contexts/governance/voting-core"
	postgresadapter "agora/contexts/governance/voting-core/adapters/postgres"
	workerapp "agora/contexts/governance/voting-core/application/workers"
	"agora/contexts/governance/voting-core/domain/voterhash"
	"agora/internal/platform/config"
	"agora/internal/platform/db"
	"agora/internal/platform/httpserver"
	"agora/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres      *db.Postgres
	sweeper       workerapp.LifecycleSweeper
	outboxRelay   workerapp.OutboxRelay
	sweepInterval time.Duration
	pollInterval  time.Duration
	enableSweep   bool
	enableRelay   bool
	logger        *slog.Logger
}

func BuildAPI(ctx context.Context) (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	module, pg, err := buildVotingModule(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	server := httpserver.New(module, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker(ctx context.Context) (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	module, pg, err := buildVotingModule(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	bus := messaging.NewEventBus(cfg.KafkaBrokers, logger)
	repo := postgresadapter.NewRepository(pg.DB, logger)
	return &WorkerApp{
		postgres: pg,
		sweeper:  module.Sweeper,
		outboxRelay: workerapp.OutboxRelay{
			Outbox:    repo,
			Publisher: bus,
			Clock:     postgresadapter.SystemClock{},
			BatchSize: 100,
			Logger:    logger,
		},
		sweepInterval: cfg.LifecycleSweepInterval,
		pollInterval:  cfg.OutboxPollInterval,
		enableSweep:   cfg.EnableLifecycleSweep,
		enableRelay:   cfg.EnableOutboxRelay,
		logger:        logger,
	}, nil
}

// buildVotingModule refuses to start without the voter hash secret; a
// default would make the audit hashes guessable.
func buildVotingModule(ctx context.Context, cfg config.Config, logger *slog.Logger) (votingcore.Module, *db.Postgres, error) {
	hasher, err := voterhash.New(cfg.VotingSecretSalt)
	if err != nil {
		return votingcore.Module{}, nil, fmt.Errorf("VOTING_SECRET_SALT: %w", err)
	}
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return votingcore.Module{}, nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(ctx, db.Options{
		DSN:             cfg.PostgresDSN,
		MaxOpenConns:    cfg.PostgresMaxOpenConns,
		MaxIdleConns:    cfg.PostgresMaxIdleConns,
		ConnMaxLifetime: cfg.PostgresConnMaxLifetime,
	}, logger)
	if err != nil {
		return votingcore.Module{}, nil, err
	}

	repo := postgresadapter.NewRepository(pg.DB, logger)
	if err := repo.Migrate(ctx); err != nil {
		_ = pg.Close()
		return votingcore.Module{}, nil, err
	}

	module := votingcore.NewModule(votingcore.Dependencies{
		Articles:         repo,
		Votes:            repo,
		Lifecycle:        repo,
		Hasher:           hasher,
		Clock:            postgresadapter.SystemClock{},
		IDGen:            postgresadapter.UUIDGenerator{},
		SweepConcurrency: cfg.LifecycleSweepConcurrency,
		SweepBatchSize:   cfg.LifecycleSweepBatchSize,
		Logger:           logger,
	})
	return module, pg, nil
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (a *APIApp) Run(ctx context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	}
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	sweepTicker := time.NewTicker(w.sweepInterval)
	defer sweepTicker.Stop()
	pollTicker := time.NewTicker(w.pollInterval)
	defer pollTicker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"sweep_interval", w.sweepInterval.String(),
		"poll_interval", w.pollInterval.String(),
		"sweep_enabled", w.enableSweep,
		"relay_enabled", w.enableRelay,
	)

	w.sweepOnce(ctx)
	w.relayOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-sweepTicker.C:
			w.sweepOnce(ctx)
		case <-pollTicker.C:
			w.relayOnce(ctx)
		}
	}
}

// sweepOnce and relayOnce log failures and leave the retry to the next tick;
// a database blip must not stop the worker.
func (w *WorkerApp) sweepOnce(ctx context.Context) {
	if !w.enableSweep {
		return
	}
	if _, err := w.sweeper.RunOnce(ctx); err != nil && ctx.Err() == nil {
		w.logger.Error("lifecycle sweep cycle failed",
			"event", "bootstrap_worker_sweep_failed",
			"module", "internal/app/bootstrap",
			"layer", "platform",
			"error", err.Error(),
		)
	}
}

func (w *WorkerApp) relayOnce(ctx context.Context) {
	if !w.enableRelay {
		return
	}
	if err := w.outboxRelay.RunOnce(ctx); err != nil && ctx.Err() == nil {
		w.logger.Error("outbox relay cycle failed",
			"event", "bootstrap_worker_relay_failed",
			"module", "internal/app/bootstrap",
			"layer", "platform",
			"error", err.Error(),
		)
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}

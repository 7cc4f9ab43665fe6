package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	electionengine "hustings/contexts/election-core/election-engine"
	"hustings/contexts/election-core/election-engine/adapters/memory"
	postgresadapter "hustings/contexts/election-core/election-engine/adapters/postgres"
	snapshotadapter "hustings/contexts/election-core/election-engine/adapters/snapshot"
	sqliteadapter "hustings/contexts/election-core/election-engine/adapters/sqlite"
	workerapp "hustings/contexts/election-core/election-engine/application/workers"
	"hustings/contexts/election-core/election-engine/domain/entities"
	"hustings/contexts/election-core/election-engine/ports"
	"hustings/internal/platform/config"
	"hustings/internal/platform/db"
	"hustings/internal/platform/httpserver"
	"hustings/internal/platform/identity"
	"hustings/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server  *httpserver.Server
	storage *storage
	logger  *slog.Logger
}

type WorkerApp struct {
	storage         *storage
	outboxRelay     workerapp.OutboxRelay
	audit           workerapp.AuditTrailConsumer
	snapshots       workerapp.SnapshotWriter
	snapshotEnabled bool
	snapshotEvery   time.Duration
	pollInterval    time.Duration
	logger          *slog.Logger
}

// storage bundles the ports served by the selected storage driver together
// with the handles that must be closed on shutdown.
type storage struct {
	elections ports.ElectionRepository
	outbox    ports.OutboxWriter
	pending   ports.OutboxRepository
	dedup     ports.EventDedupStore
	audit     ports.AuditLogStore
	clock     ports.Clock
	idGen     ports.IDGenerator
	snapshots ports.SnapshotStore

	memory       *memory.Store
	postgres     *db.Postgres
	sqlite       *db.SQLite
	snapshotFile *snapshotadapter.FileStore
}

func (s *storage) Close() error {
	var errs []error
	if s.snapshotFile != nil {
		errs = append(errs, s.snapshotFile.Close())
	}
	if s.sqlite != nil {
		errs = append(errs, s.sqlite.Close())
	}
	if s.postgres != nil {
		errs = append(errs, s.postgres.Close())
	}
	return errors.Join(errs...)
}

func openStorage(ctx context.Context, cfg config.Config, logger *slog.Logger) (*storage, error) {
	res := &storage{}

	switch cfg.StorageDriver {
	case "memory":
		store := memory.NewStore()
		res.memory = store
		res.elections = store
		res.outbox = store
		res.pending = store
		res.dedup = store
		res.audit = store
		res.clock = store
		res.idGen = store
	case "sqlite":
		handle, err := db.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := sqliteadapter.CreateSchema(handle.DB); err != nil {
			_ = handle.Close()
			return nil, err
		}
		repo := sqliteadapter.NewRepository(handle.DB, logger)
		res.sqlite = handle
		res.elections = repo
		res.outbox = repo
		res.pending = repo
		res.dedup = repo
		res.audit = repo
		res.clock = sqliteadapter.SystemClock{}
		res.idGen = sqliteadapter.UUIDGenerator{}
	case "postgres":
		pg, err := db.Connect(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		repo := postgresadapter.NewRepository(pg.DB, logger)
		res.postgres = pg
		res.elections = repo
		res.outbox = repo
		res.pending = repo
		res.dedup = repo
		res.audit = repo
		res.clock = postgresadapter.SystemClock{}
		res.idGen = postgresadapter.UUIDGenerator{}
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}

	if path := strings.TrimSpace(cfg.SnapshotPath); path != "" {
		fileStore, err := snapshotadapter.NewFileStore(path)
		if err != nil {
			_ = res.Close()
			return nil, err
		}
		res.snapshotFile = fileStore
		res.snapshots = fileStore
	}

	// The memory driver loses state on restart; rehydrate from the last
	// snapshot before seeding.
	if res.memory != nil && res.snapshots != nil {
		snapshot, found, err := res.snapshots.ReadSnapshot(ctx)
		if err != nil {
			_ = res.Close()
			return nil, err
		}
		if found {
			res.memory.RestoreSnapshot(snapshot)
			logger.Info("election state restored from snapshot",
				"event", "bootstrap_snapshot_restored",
				"module", "internal/app/bootstrap",
				"layer", "platform",
				"taken_at", snapshot.TakenAt,
			)
		}
	}

	return res, nil
}

// seedElection creates the election row on first boot. Later boots keep the
// stored administrator and phase; config values only apply to a fresh store.
func seedElection(ctx context.Context, cfg config.Config, res *storage, logger *slog.Logger) error {
	election, err := res.elections.InitElection(ctx, entities.Election{
		Administrator:  cfg.ElectionAdmin,
		DelegationMode: entities.DelegationMode(cfg.DelegationMode),
	})
	if err != nil {
		return err
	}
	logger.Info("election ready",
		"event", "bootstrap_election_ready",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"administrator", election.Administrator,
		"phase", string(election.Phase),
		"delegation_mode", string(election.DelegationMode),
	)
	return nil
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	ctx := context.Background()

	res, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := seedElection(ctx, cfg, res, logger); err != nil {
		_ = res.Close()
		return nil, err
	}

	module := electionengine.NewModule(electionengine.Dependencies{
		Elections: res.elections,
		Outbox:    res.outbox,
		Audit:     res.audit,
		Clock:     res.clock,
		IDGen:     res.idGen,
		Logger:    logger,
	})
	module.Store = res.memory

	resolver := identity.NewResolver(cfg.IdentitySecret, logger)
	server := httpserver.New(module, resolver, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:  server,
		storage: res,
		logger:  logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if cfg.StorageDriver == "memory" {
		return nil, errors.New("the worker requires the sqlite or postgres storage driver")
	}

	ctx := context.Background()
	res, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := seedElection(ctx, cfg, res, logger); err != nil {
		_ = res.Close()
		return nil, err
	}

	kafka, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		_ = res.Close()
		return nil, err
	}

	return &WorkerApp{
		storage: res,
		outboxRelay: workerapp.OutboxRelay{
			Outbox:    res.pending,
			Publisher: kafka,
			Clock:     res.clock,
			BatchSize: 100,
			Logger:    logger,
		},
		audit: workerapp.AuditTrailConsumer{
			Subscriber: kafka,
			Dedup:      res.dedup,
			Audit:      res.audit,
			Clock:      res.clock,
			IDGen:      res.idGen,
			DedupTTL:   7 * 24 * time.Hour,
			Disabled:   !cfg.EnableAuditConsumer,
			Logger:     logger,
		},
		snapshots: workerapp.SnapshotWriter{
			Elections: res.elections,
			Snapshots: res.snapshots,
			Clock:     res.clock,
			Logger:    logger,
		},
		snapshotEnabled: cfg.EnableSnapshotWriter && res.snapshots != nil,
		snapshotEvery:   cfg.SnapshotInterval,
		pollInterval:    cfg.WorkerPollInterval,
		logger:          logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.storage != nil {
		return a.storage.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	if err := w.audit.Start(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
		"snapshot_enabled", w.snapshotEnabled,
	)

	lastSnapshot := time.Now()
	for {
		if err := w.outboxRelay.RunOnce(ctx); err != nil {
			return err
		}
		if w.snapshotEnabled && time.Since(lastSnapshot) >= w.snapshotEvery {
			if err := w.snapshots.RunOnce(ctx); err != nil {
				return err
			}
			lastSnapshot = time.Now()
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.storage != nil {
		return w.storage.Close()
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

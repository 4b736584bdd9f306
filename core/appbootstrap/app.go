// Package appbootstrap opens the database, brings its schema in line and
// wires the runtime around it.
package appbootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"inventory-system/api"
	"inventory-system/config"
	"inventory-system/core/backups"
	"inventory-system/core/schema"
	"inventory-system/core/store"
	"inventory-system/core/utils"
)

type App struct {
	cfg     *config.AppConfig
	db      *sql.DB
	report  *store.SyncReport
	server  *api.Server
	workers []backgroundWorker
	logger  *utils.Logger
}

// Bootstrap opens the database and synchronizes its schema. A failed
// synchronization closes the database and is returned; nothing is served.
func Bootstrap(ctx context.Context, cfg *config.AppConfig, logger *utils.Logger) (*App, error) {
	descriptor := schema.Inventory()
	db, report, err := openSynchronized(ctx, cfg, descriptor, logger)
	if err != nil {
		return nil, err
	}
	rt := composeRuntime(cfg, db, descriptor, report, logger)
	return &App{
		cfg:     cfg,
		db:      db,
		report:  report,
		server:  api.NewServer(rt.serverDeps),
		workers: rt.workers,
		logger:  logger,
	}, nil
}

func (a *App) Report() *store.SyncReport {
	return a.report
}

// Run starts the background workers and serves the API until ctx is done.
func (a *App) Run(ctx context.Context) error {
	for _, w := range a.workers {
		if err := w.StartWithContext(ctx); err != nil {
			a.stopWorkers()
			return err
		}
	}
	err := a.server.Serve(ctx)
	a.stopWorkers()
	return err
}

func (a *App) stopWorkers() {
	stopCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout())
	defer cancel()
	for _, w := range a.workers {
		if err := w.StopWithContext(stopCtx); err != nil {
			a.logger.Errorf("stop worker: %v", err)
		}
	}
}

func (a *App) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	return a.db.Close()
}

// Migrate synchronizes the schema and closes the database again.
func Migrate(ctx context.Context, cfg *config.AppConfig, logger *utils.Logger) (*store.SyncReport, error) {
	db, report, err := openSynchronized(ctx, cfg, schema.Inventory(), logger)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return report, nil
}

// PlanSchema reports what Migrate would change without writing anything.
func PlanSchema(ctx context.Context, cfg *config.AppConfig, logger *utils.Logger) (store.SchemaPlan, error) {
	db, err := store.NewDB(config.ResolveDataLocation(cfg), logger)
	if err != nil {
		return store.SchemaPlan{}, err
	}
	defer db.Close()
	return store.Plan(ctx, db, schema.Inventory())
}

func openSynchronized(ctx context.Context, cfg *config.AppConfig, descriptor schema.Descriptor, logger *utils.Logger) (*sql.DB, *store.SyncReport, error) {
	loc := config.ResolveDataLocation(cfg)
	db, err := store.NewDB(loc, logger)
	if err != nil {
		return nil, nil, err
	}
	if err := snapshotBeforeRewrite(ctx, db, descriptor, backups.NewService(loc, cfg.Backup, logger.With("component", "backups"))); err != nil {
		db.Close()
		return nil, nil, err
	}
	report, err := store.NewSynchronizer(db, descriptor, logger.With("component", "schema")).Synchronize(ctx)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("schema synchronization: %w", err)
	}
	return db, report, nil
}

// snapshotBeforeRewrite copies the database aside when synchronization is
// about to drop or rebuild existing tables. A failed snapshot stops startup.
func snapshotBeforeRewrite(ctx context.Context, db *sql.DB, descriptor schema.Descriptor, svc *backups.Service) error {
	if !svc.Enabled() {
		return nil
	}
	plan, err := store.Plan(ctx, db, descriptor)
	if err != nil {
		return fmt.Errorf("schema plan: %w", err)
	}
	if !plan.RewritesExisting() {
		return nil
	}
	if _, err := svc.Snapshot(ctx, db, "pre-migration", plan.ExistingTables()); err != nil {
		return fmt.Errorf("pre-migration backup: %w", err)
	}
	return nil
}

// ListBackups returns the pre-migration snapshots, newest first.
func ListBackups(cfg *config.AppConfig) ([]backups.Artifact, error) {
	return backups.NewService(config.ResolveDataLocation(cfg), cfg.Backup, nil).List()
}

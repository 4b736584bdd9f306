package appbootstrap

import (
	"context"
	"database/sql"

	"inventory-system/api"
	"inventory-system/config"
	"inventory-system/core/backups"
	"inventory-system/core/barcode"
	"inventory-system/core/expiry"
	"inventory-system/core/schema"
	"inventory-system/core/store"
	"inventory-system/core/utils"
)

type backgroundWorker interface {
	StartWithContext(ctx context.Context) error
	StopWithContext(ctx context.Context) error
}

type runtimeComposition struct {
	serverDeps api.ServerDeps
	workers    []backgroundWorker
}

// composeRuntime wires the stores over an already synchronized database.
func composeRuntime(cfg *config.AppConfig, db *sql.DB, descriptor schema.Descriptor, report *store.SyncReport, logger *utils.Logger) *runtimeComposition {
	barcodes := barcode.NewGenerator()
	events := store.NewEventsStore(db)
	ingredients := store.NewIngredientsStore(db, barcodes, events)
	products := store.NewProductsStore(db, barcodes)
	groups := store.NewGroupsStore(db)
	expiryWatcher := expiry.NewWatcher(cfg.Expiry, ingredients, logger.With("component", "expiry"))

	return &runtimeComposition{
		serverDeps: api.ServerDeps{
			Config:      cfg,
			DB:          db,
			Descriptor:  descriptor,
			Report:      report,
			Ingredients: ingredients,
			Products:    products,
			Groups:      groups,
			Events:      events,
			Backups:     backups.NewService(config.ResolveDataLocation(cfg), cfg.Backup, nil),
			Logger:      logger.With("component", "api"),
		},
		workers: []backgroundWorker{expiryWatcher},
	}
}

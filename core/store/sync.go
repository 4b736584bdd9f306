package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"inventory-system/core/schema"
	"inventory-system/core/utils"
)

// SyncReport records what one synchronization did.
type SyncReport struct {
	StartedAt            time.Time     `json:"started_at"`
	Duration             time.Duration `json:"duration"`
	DroppedLegacy        []string      `json:"dropped_legacy,omitempty"`
	Tables               []Outcome     `json:"tables"`
	IndexesEnsured       int           `json:"indexes_ensured"`
	IndexFailures        []string      `json:"index_failures,omitempty"`
	ForeignKeyViolations int           `json:"foreign_key_violations"`
}

func (r *SyncReport) Outcome(table string) (Outcome, bool) {
	if r == nil {
		return Outcome{}, false
	}
	for _, o := range r.Tables {
		if o.Table == table {
			return o, true
		}
	}
	return Outcome{}, false
}

// Changed reports whether any table was created or rebuilt or any legacy
// table dropped.
func (r *SyncReport) Changed() bool {
	if r == nil {
		return false
	}
	if len(r.DroppedLegacy) > 0 {
		return true
	}
	for _, o := range r.Tables {
		if o.Kind != OutcomeNoOpMatched {
			return true
		}
	}
	return false
}

// Synchronizer brings the whole database in line with a Descriptor. It runs
// once at startup, before any store is constructed.
type Synchronizer struct {
	db         *sql.DB
	descriptor schema.Descriptor
	migrator   *TableMigrator
	logger     *utils.Logger
}

func NewSynchronizer(db *sql.DB, descriptor schema.Descriptor, logger *utils.Logger) *Synchronizer {
	return &Synchronizer{
		db:         db,
		descriptor: descriptor,
		migrator:   NewTableMigrator(logger),
		logger:     logger,
	}
}

// Synchronize drops legacy tables, reconciles every declared table in order,
// ensures indexes and commits it all as one transaction. Any table error
// rolls everything back and is returned; the caller must not start serving.
func (s *Synchronizer) Synchronize(ctx context.Context) (*SyncReport, error) {
	if err := s.descriptor.Validate(); err != nil {
		return nil, err
	}
	report := &SyncReport{StartedAt: utils.NowUTC()}
	err := withMigrationTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.dropLegacy(ctx, tx, report); err != nil {
			return err
		}
		for _, spec := range s.descriptor.Tables {
			out, err := s.migrator.Reconcile(ctx, tx, spec)
			if err != nil {
				return fmt.Errorf("reconcile %s: %w", spec.Name, err)
			}
			report.Tables = append(report.Tables, out)
		}
		s.ensureIndexes(ctx, tx, report)
		s.checkForeignKeys(ctx, tx, report)
		return nil
	})
	if err != nil {
		s.logger.Errorf("schema synchronization failed: %v", err)
		return nil, err
	}
	report.Duration = time.Since(report.StartedAt)
	s.logger.Printf("schema synchronized: tables=%d changed=%v index_failures=%d", len(report.Tables), report.Changed(), len(report.IndexFailures))
	return report, nil
}

// reconcileTable runs the table migrator for a single spec under the same
// connection discipline as Synchronize.
func (s *Synchronizer) reconcileTable(ctx context.Context, spec schema.TableSpec) (Outcome, error) {
	var out Outcome
	err := withMigrationTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		out, err = s.migrator.Reconcile(ctx, tx, spec)
		return err
	})
	return out, err
}

func (s *Synchronizer) dropLegacy(ctx context.Context, tx *sql.Tx, report *SyncReport) error {
	for _, name := range s.descriptor.Legacy {
		exists, err := tableExists(ctx, tx, name)
		if err != nil {
			return fmt.Errorf("inspect table %s: %w", name, err)
		}
		if !exists {
			continue
		}
		if _, err := tx.ExecContext(ctx, "DROP TABLE "+schema.QuoteIdent(name)); err != nil {
			return fmt.Errorf("drop legacy table %s: %w", name, err)
		}
		report.DroppedLegacy = append(report.DroppedLegacy, name)
		s.logger.Warnf("schema: dropped legacy table %s", name)
	}
	return nil
}

func (s *Synchronizer) ensureIndexes(ctx context.Context, tx *sql.Tx, report *SyncReport) {
	for _, idx := range s.descriptor.Indexes {
		if _, err := tx.ExecContext(ctx, idx.CreateStatement()); err != nil {
			report.IndexFailures = append(report.IndexFailures, idx.Name)
			s.logger.Errorf("schema: create index %s on %s: %v", idx.Name, idx.Table, err)
			continue
		}
		report.IndexesEnsured++
	}
}

func (s *Synchronizer) checkForeignKeys(ctx context.Context, tx *sql.Tx, report *SyncReport) {
	rows, err := tx.QueryContext(ctx, "PRAGMA foreign_key_check")
	if err != nil {
		s.logger.Errorf("schema: foreign key check: %v", err)
		return
	}
	defer rows.Close()
	for rows.Next() {
		var table, parent string
		var rowID sql.NullInt64
		var fkID int64
		if err := rows.Scan(&table, &rowID, &parent, &fkID); err != nil {
			s.logger.Errorf("schema: foreign key check: %v", err)
			return
		}
		report.ForeignKeyViolations++
		if report.ForeignKeyViolations <= 10 {
			s.logger.Warnf("schema: %s rowid=%d references missing %s row", table, rowID.Int64, parent)
		}
	}
	if err := rows.Err(); err != nil {
		s.logger.Errorf("schema: foreign key check: %v", err)
	}
}

// withMigrationTx pins one pooled connection, suspends foreign key enforcement
// on it (a no-op inside a transaction, so it must precede BEGIN), and runs fn
// in a single transaction. Dropping a parent table with enforcement on would
// cascade into its children.
func withMigrationTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) (err error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()
	if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys=OFF"); err != nil {
		return fmt.Errorf("disable foreign keys: %w", err)
	}
	defer func() {
		if _, ferr := conn.ExecContext(context.Background(), "PRAGMA foreign_keys=ON"); ferr != nil && err == nil {
			err = fmt.Errorf("enable foreign keys: %w", ferr)
		}
	}()
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema transaction: %w", err)
	}
	return nil
}

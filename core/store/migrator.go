package store

import (
	"context"
	"fmt"
	"strings"

	"inventory-system/core/schema"
	"inventory-system/core/utils"
)

type OutcomeKind string

const (
	OutcomeCreated     OutcomeKind = "created"
	OutcomeNoOpMatched OutcomeKind = "noop_matched"
	OutcomeRebuilt     OutcomeKind = "rebuilt"
)

// rebuildSuffix names the sibling table a rebuild copies into. A sibling left
// behind by an interrupted run is dropped before the next rebuild.
const rebuildSuffix = "__rebuild"

type Outcome struct {
	Table       string      `json:"table"`
	Kind        OutcomeKind `json:"kind"`
	Added       []string    `json:"added,omitempty"`
	Dropped     []string    `json:"dropped,omitempty"`
	RowsCopied  int64       `json:"rows_copied"`
	RowsSkipped int         `json:"rows_skipped"`
	TypeDrift   []TypeDrift `json:"type_drift,omitempty"`
}

// TableMigrator reconciles one table with its TableSpec. It must run on a
// connection the caller owns exclusively, with foreign keys disabled.
type TableMigrator struct {
	logger *utils.Logger
}

func NewTableMigrator(logger *utils.Logger) *TableMigrator {
	return &TableMigrator{logger: logger}
}

// Reconcile creates the table when missing, does nothing when the column names
// already match, and otherwise rebuilds it: create sibling, copy the common
// columns, drop the original, rename the sibling.
func (m *TableMigrator) Reconcile(ctx context.Context, q Queryer, spec schema.TableSpec) (Outcome, error) {
	out := Outcome{Table: spec.Name}
	if err := spec.Validate(); err != nil {
		return out, err
	}
	exists, err := tableExists(ctx, q, spec.Name)
	if err != nil {
		return out, fmt.Errorf("inspect table %s: %w", spec.Name, err)
	}
	if !exists {
		if _, err := q.ExecContext(ctx, spec.CreateStatement(spec.Name)); err != nil {
			return out, fmt.Errorf("create table %s: %w", spec.Name, err)
		}
		out.Kind = OutcomeCreated
		m.logger.Printf("schema: created table %s", spec.Name)
		return out, nil
	}

	live, err := introspectTable(ctx, q, spec.Name)
	if err != nil {
		return out, fmt.Errorf("introspect table %s: %w", spec.Name, err)
	}
	diff := diffTable(spec, live)
	out.TypeDrift = diff.TypeDrift
	for _, d := range diff.TypeDrift {
		m.logger.Warnf("schema: %s.%s is %q on disk but declared %q; type changes are not migrated", spec.Name, d.Column, d.Live, d.Declared)
	}
	if diff.Matched() {
		out.Kind = OutcomeNoOpMatched
		return out, nil
	}

	out.Added = diff.Add
	out.Dropped = diff.Drop
	if len(diff.Drop) > 0 {
		m.logger.Warnf("schema: rebuilding %s drops columns %s and their data", spec.Name, strings.Join(diff.Drop, ", "))
	}
	copied, skipped, err := m.rebuild(ctx, q, spec, diff.Common)
	if err != nil {
		return out, err
	}
	out.Kind = OutcomeRebuilt
	out.RowsCopied = copied
	out.RowsSkipped = skipped
	m.logger.Printf("schema: rebuilt table %s (added=%v dropped=%v copied=%d skipped=%d)", spec.Name, out.Added, out.Dropped, copied, skipped)
	return out, nil
}

func (m *TableMigrator) rebuild(ctx context.Context, q Queryer, spec schema.TableSpec, common []string) (int64, int, error) {
	sibling := spec.Name + rebuildSuffix
	if _, err := q.ExecContext(ctx, "DROP TABLE IF EXISTS "+schema.QuoteIdent(sibling)); err != nil {
		return 0, 0, fmt.Errorf("drop stale table %s: %w", sibling, err)
	}
	if _, err := q.ExecContext(ctx, spec.CreateStatement(sibling)); err != nil {
		return 0, 0, fmt.Errorf("create table %s: %w", sibling, err)
	}
	var copied int64
	var skipped int
	if len(common) > 0 {
		var err error
		copied, skipped, err = m.copyRows(ctx, q, spec.Name, sibling, common)
		if err != nil {
			return 0, 0, err
		}
	}
	if _, err := q.ExecContext(ctx, "DROP TABLE "+schema.QuoteIdent(spec.Name)); err != nil {
		return 0, 0, fmt.Errorf("drop table %s: %w", spec.Name, err)
	}
	if _, err := q.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s RENAME TO %s", schema.QuoteIdent(sibling), schema.QuoteIdent(spec.Name))); err != nil {
		return 0, 0, fmt.Errorf("rename %s to %s: %w", sibling, spec.Name, err)
	}
	return copied, skipped, nil
}

// copyRows moves the common columns in one statement and falls back to one
// statement per source row when that fails. Values never leave SQLite, so
// copied cells keep their stored bytes and storage class.
func (m *TableMigrator) copyRows(ctx context.Context, q Queryer, from, to string, cols []string) (int64, int, error) {
	quoted := make([]string, 0, len(cols))
	for _, c := range cols {
		quoted = append(quoted, schema.QuoteIdent(c))
	}
	list := strings.Join(quoted, ", ")
	bulk := fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s", schema.QuoteIdent(to), list, list, schema.QuoteIdent(from))
	res, err := q.ExecContext(ctx, bulk)
	if err == nil {
		n, _ := res.RowsAffected()
		return n, 0, nil
	}
	m.logger.Warnf("schema: bulk copy %s -> %s failed, copying row by row: %v", from, to, err)

	rowIDs, err := listRowIDs(ctx, q, from)
	if err != nil {
		return 0, 0, fmt.Errorf("list rows of %s: %w", from, err)
	}
	single := bulk + " WHERE rowid = ?"
	var copied int64
	skipped := 0
	for _, id := range rowIDs {
		if _, err := q.ExecContext(ctx, single, id); err != nil {
			skipped++
			m.logger.Errorf("schema: skipped row rowid=%d of %s: %v", id, from, err)
			continue
		}
		copied++
	}
	return copied, skipped, nil
}

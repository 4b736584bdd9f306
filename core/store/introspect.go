package store

import (
	"context"
	"database/sql"
	"fmt"

	"inventory-system/core/schema"
)

// LiveColumn is one row of PRAGMA table_info.
type LiveColumn struct {
	Name    string
	Type    string
	NotNull bool
	PK      int
}

// LiveSchema is the on-disk column set of one table, read fresh at startup.
type LiveSchema struct {
	Table   string
	Columns []LiveColumn
}

func (l LiveSchema) Names() []string {
	out := make([]string, 0, len(l.Columns))
	for _, c := range l.Columns {
		out = append(out, c.Name)
	}
	return out
}

func (l LiveSchema) Column(name string) (LiveColumn, bool) {
	for _, c := range l.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return LiveColumn{}, false
}

func tableExists(ctx context.Context, q Queryer, table string) (bool, error) {
	var n int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name = ? COLLATE NOCASE`, table).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func introspectTable(ctx context.Context, q Queryer, table string) (LiveSchema, error) {
	rows, err := q.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", schema.QuoteIdent(table)))
	if err != nil {
		return LiveSchema{}, err
	}
	defer rows.Close()
	live := LiveSchema{Table: table}
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull int
		var dflt sql.NullString
		var pk int
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return LiveSchema{}, err
		}
		live.Columns = append(live.Columns, LiveColumn{Name: name, Type: ctype, NotNull: notnull == 1, PK: pk})
	}
	return live, rows.Err()
}

func listRowIDs(ctx context.Context, q Queryer, table string) ([]int64, error) {
	rows, err := q.QueryContext(ctx, fmt.Sprintf("SELECT rowid FROM %s ORDER BY rowid", schema.QuoteIdent(table)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

package backups

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// snapshotRowCounts records how many rows each existing table held when the
// snapshot was taken. Tables that cannot be counted are left out.
func snapshotRowCounts(ctx context.Context, db *sql.DB, tables []string) map[string]int64 {
	out := map[string]int64{}
	for _, table := range tables {
		if n, err := queryCount(ctx, db, fmt.Sprintf(`SELECT COUNT(*) FROM "%s"`, strings.ReplaceAll(table, `"`, `""`))); err == nil {
			out[table] = n
		}
	}
	return out
}

func queryCount(ctx context.Context, db *sql.DB, query string) (int64, error) {
	if db == nil {
		return 0, sql.ErrConnDone
	}
	var n int64
	if err := db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

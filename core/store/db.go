package store

import (
	"context"
	"database/sql"
	"fmt"

	"inventory-system/config"
	"inventory-system/core/utils"

	_ "modernc.org/sqlite"
)

const sqliteDriver = "sqlite"

// Queryer is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type Queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// NewDB opens the database file at loc, creating its directory first. Foreign
// keys are enforced on every pooled connection.
func NewDB(loc config.DataLocation, logger *utils.Logger) (*sql.DB, error) {
	if err := loc.Ensure(); err != nil {
		return nil, err
	}
	path := loc.DBPath()
	db, err := sql.Open(sqliteDriver, sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if logger != nil {
		logger.Printf("database opened at %s", path)
	}
	return db, nil
}

func sqliteDSN(path string) string {
	return path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

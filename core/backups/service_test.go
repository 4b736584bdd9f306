package backups

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"inventory-system/config"

	_ "modernc.org/sqlite"
)

func openDB(t *testing.T, dir string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(dir, "inventory.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if _, err := db.Exec(`CREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT)`); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO items (name) VALUES ('a'), ('b'), ('c')`); err != nil {
		t.Fatalf("insert: %v", err)
	}
	return db
}

func TestSnapshotWritesCopyWithDigest(t *testing.T) {
	dir := t.TempDir()
	db := openDB(t, dir)
	svc := NewService(config.DataLocation{Dir: dir}, config.BackupConfig{Enabled: true, Keep: 3}, nil)

	art, err := svc.Snapshot(context.Background(), db, "test", []string{"items", "missing"})
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if art.SizeBytes == 0 || len(art.SHA256) != 64 {
		t.Fatalf("unexpected artifact: %+v", art)
	}
	if art.RowCounts["items"] != 3 {
		t.Fatalf("expected 3 items counted, got %v", art.RowCounts)
	}
	if _, ok := art.RowCounts["missing"]; ok {
		t.Fatalf("missing table should not be counted")
	}

	copyDB, err := sql.Open("sqlite", art.Path)
	if err != nil {
		t.Fatalf("open snapshot: %v", err)
	}
	defer copyDB.Close()
	var n int
	if err := copyDB.QueryRow(`SELECT COUNT(*) FROM items`).Scan(&n); err != nil || n != 3 {
		t.Fatalf("snapshot rows: n=%d err=%v", n, err)
	}
}

func TestSnapshotPrunesOldest(t *testing.T) {
	dir := t.TempDir()
	db := openDB(t, dir)
	svc := NewService(config.DataLocation{Dir: dir}, config.BackupConfig{Enabled: true, Keep: 2}, nil)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		at := base.Add(time.Duration(i) * time.Minute)
		svc.now = func() time.Time { return at }
		if _, err := svc.Snapshot(context.Background(), db, "test", nil); err != nil {
			t.Fatalf("snapshot %d: %v", i, err)
		}
	}
	items, err := svc.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 snapshots kept, got %d", len(items))
	}
	if !items[0].CreatedAt.Equal(base.Add(3 * time.Minute)) {
		t.Fatalf("expected newest first, got %v", items[0].CreatedAt)
	}
}

func TestListIgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(config.DataLocation{Dir: dir}, config.BackupConfig{Enabled: true}, nil)
	items, err := svc.List()
	if err != nil || len(items) != 0 {
		t.Fatalf("missing dir: items=%v err=%v", items, err)
	}
	if err := os.MkdirAll(svc.Dir(), 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(svc.Dir(), "notes.txt"), []byte("x"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	items, err = svc.List()
	if err != nil || len(items) != 0 {
		t.Fatalf("foreign file listed: items=%v err=%v", items, err)
	}
}

func TestDisabledServiceRefusesSnapshot(t *testing.T) {
	dir := t.TempDir()
	db := openDB(t, dir)
	svc := NewService(config.DataLocation{Dir: dir}, config.BackupConfig{}, nil)
	if _, err := svc.Snapshot(context.Background(), db, "test", nil); err != ErrDisabled {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
}

// Package backups takes file snapshots of the inventory database before the
// schema synchronizer rewrites existing tables.
package backups

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"inventory-system/config"
	"inventory-system/core/utils"
)

const (
	snapshotPrefix = "snapshot-"
	snapshotSuffix = ".db"
	snapshotLayout = "20060102T150405.000Z"
)

var ErrDisabled = errors.New("backups disabled")

type Artifact struct {
	Name      string           `json:"name"`
	Path      string           `json:"path"`
	Reason    string           `json:"reason,omitempty"`
	SizeBytes int64            `json:"size_bytes"`
	SHA256    string           `json:"sha256"`
	RowCounts map[string]int64 `json:"row_counts,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

type Service struct {
	cfg    config.BackupConfig
	dir    string
	logger *utils.Logger
	now    func() time.Time
	opMu   sync.Mutex
}

func NewService(loc config.DataLocation, cfg config.BackupConfig, logger *utils.Logger) *Service {
	dir := strings.TrimSpace(cfg.Dir)
	if dir == "" {
		dir = filepath.Join(loc.Dir, "backups")
	}
	return &Service{cfg: cfg, dir: dir, logger: logger, now: utils.NowUTC}
}

func (s *Service) Enabled() bool {
	return s != nil && s.cfg.Enabled
}

func (s *Service) Dir() string {
	if s == nil {
		return ""
	}
	return s.dir
}

// Snapshot writes a consistent copy of db with VACUUM INTO, then prunes the
// oldest snapshots beyond the configured retention.
func (s *Service) Snapshot(ctx context.Context, db *sql.DB, reason string, tables []string) (*Artifact, error) {
	if !s.Enabled() {
		return nil, ErrDisabled
	}
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return nil, fmt.Errorf("create backup dir: %w", err)
	}
	created := s.now().UTC()
	name := snapshotPrefix + created.Format(snapshotLayout) + snapshotSuffix
	path := filepath.Join(s.dir, name)
	if _, err := db.ExecContext(ctx, "VACUUM INTO ?", path); err != nil {
		return nil, fmt.Errorf("snapshot database: %w", err)
	}
	size, sum, err := fileDigest(path)
	if err != nil {
		return nil, err
	}
	art := &Artifact{
		Name:      name,
		Path:      path,
		Reason:    reason,
		SizeBytes: size,
		SHA256:    sum,
		RowCounts: snapshotRowCounts(ctx, db, tables),
		CreatedAt: created,
	}
	s.logger.Printf("backup %s written (%d bytes, %s)", name, size, reason)
	if err := s.prune(); err != nil {
		s.logger.Warnf("backup prune: %v", err)
	}
	return art, nil
}

// List returns the snapshots on disk, newest first.
func (s *Service) List() ([]Artifact, error) {
	if s == nil {
		return []Artifact{}, nil
	}
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return []Artifact{}, nil
	}
	if err != nil {
		return nil, err
	}
	out := []Artifact{}
	for _, e := range entries {
		created, ok := parseSnapshotName(e.Name())
		if e.IsDir() || !ok {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, Artifact{
			Name:      e.Name(),
			Path:      filepath.Join(s.dir, e.Name()),
			SizeBytes: info.Size(),
			CreatedAt: created,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Service) prune() error {
	if s.cfg.Keep <= 0 {
		return nil
	}
	items, err := s.List()
	if err != nil {
		return err
	}
	for i := s.cfg.Keep; i < len(items); i++ {
		if err := os.Remove(items[i].Path); err != nil && !os.IsNotExist(err) {
			return err
		}
		s.logger.Debugf("backup %s pruned", items[i].Name)
	}
	return nil
}

func parseSnapshotName(name string) (time.Time, bool) {
	if !strings.HasPrefix(name, snapshotPrefix) || !strings.HasSuffix(name, snapshotSuffix) {
		return time.Time{}, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, snapshotPrefix), snapshotSuffix)
	t, err := time.Parse(snapshotLayout, stamp)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func fileDigest(path string) (int64, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, "", err
	}
	defer f.Close()
	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return 0, "", err
	}
	return n, hex.EncodeToString(h.Sum(nil)), nil
}

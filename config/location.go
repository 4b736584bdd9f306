package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// DataLocation is where the single database file lives. It is resolved once at
// startup and handed to every component that touches the file.
type DataLocation struct {
	Dir    string
	DBFile string
}

func (l DataLocation) DBPath() string {
	return filepath.Join(l.Dir, l.DBFile)
}

func (l DataLocation) Ensure() error {
	if l.Dir == "" {
		return fmt.Errorf("data location has no directory")
	}
	if err := os.MkdirAll(l.Dir, 0o755); err != nil {
		return fmt.Errorf("create data dir %s: %w", l.Dir, err)
	}
	return nil
}

// ResolveDataLocation picks the data directory: an explicit data_dir wins, a
// packaged build uses the per-user application directory, a source run uses
// ./data.
func ResolveDataLocation(cfg *AppConfig) DataLocation {
	loc := DataLocation{DBFile: cfg.DBFile}
	switch {
	case cfg.DataDir != "":
		loc.Dir = cfg.DataDir
	case cfg.Packaged:
		base, err := os.UserConfigDir()
		if err != nil || base == "" {
			base = os.TempDir()
		}
		loc.Dir = filepath.Join(base, cfg.AppName)
	default:
		loc.Dir = "data"
	}
	return loc
}

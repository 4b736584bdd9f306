package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFileWithDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "inventory.yaml")
	content := `data_dir: /tmp/inv
listen_addr: 127.0.0.1:9999
expiry:
  schedule: "@daily"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DataDir != "/tmp/inv" || cfg.ListenAddr != "127.0.0.1:9999" {
		t.Fatalf("unexpected values: %+v", cfg)
	}
	if cfg.DBFile != "inventory.db" {
		t.Fatalf("expected default db file, got %q", cfg.DBFile)
	}
	if !cfg.Expiry.Enabled || cfg.Expiry.Schedule != "@daily" {
		t.Fatalf("unexpected expiry config: %+v", cfg.Expiry)
	}
	if !cfg.Backup.Enabled || cfg.Backup.Keep != 5 || cfg.Backup.Dir != "" {
		t.Fatalf("unexpected backup config: %+v", cfg.Backup)
	}
}

func TestLoadEnvOnly(t *testing.T) {
	t.Setenv("INVENTORY_DB_FILE", "stock.db")
	t.Setenv("INVENTORY_LOG_LEVEL", "debug")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBFile != "stock.db" || cfg.LogLevel != "debug" {
		t.Fatalf("env not applied: %+v", cfg)
	}
}

func TestValidateRejectsPathInDBFile(t *testing.T) {
	cfg := &AppConfig{AppName: "x", DBFile: "../evil.db"}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestValidateRejectsNegativeBackupKeep(t *testing.T) {
	cfg := &AppConfig{AppName: "x", DBFile: "a.db", Backup: BackupConfig{Enabled: true, Keep: -1}}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestResolveDataLocation(t *testing.T) {
	explicit := ResolveDataLocation(&AppConfig{AppName: "Inv", DBFile: "a.db", DataDir: "/srv/inv"})
	if explicit.DBPath() != filepath.Join("/srv/inv", "a.db") {
		t.Fatalf("explicit: %s", explicit.DBPath())
	}
	source := ResolveDataLocation(&AppConfig{AppName: "Inv", DBFile: "a.db"})
	if source.Dir != "data" {
		t.Fatalf("source run should use ./data, got %s", source.Dir)
	}
	packaged := ResolveDataLocation(&AppConfig{AppName: "Inv", DBFile: "a.db", Packaged: true})
	if filepath.Base(packaged.Dir) != "Inv" {
		t.Fatalf("packaged dir should end with app name, got %s", packaged.Dir)
	}
}

func TestDataLocationEnsure(t *testing.T) {
	loc := DataLocation{Dir: filepath.Join(t.TempDir(), "nested", "data"), DBFile: "x.db"}
	if err := loc.Ensure(); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if st, err := os.Stat(loc.Dir); err != nil || !st.IsDir() {
		t.Fatalf("dir not created: %v", err)
	}
}

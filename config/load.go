package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// Load reads the config file at path (yaml) and overlays INVENTORY_* environment
// variables. An empty path reads the environment only.
func Load(path string) (*AppConfig, error) {
	var cfg AppConfig
	if strings.TrimSpace(path) != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *AppConfig) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if strings.TrimSpace(c.AppName) == "" {
		return errors.New("app_name is required")
	}
	if strings.TrimSpace(c.DBFile) == "" {
		return errors.New("db_file is required")
	}
	if strings.ContainsAny(c.DBFile, `/\`) {
		return fmt.Errorf("db_file must be a file name, got %q", c.DBFile)
	}
	if c.Expiry.Enabled && strings.TrimSpace(c.Expiry.Schedule) == "" {
		return errors.New("expiry.schedule is required when the expiry watcher is enabled")
	}
	if c.Backup.Keep < 0 {
		return fmt.Errorf("backup.keep must not be negative, got %d", c.Backup.Keep)
	}
	return nil
}

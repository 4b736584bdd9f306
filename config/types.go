package config

import "time"

type AppConfig struct {
	AppName    string       `yaml:"app_name" env:"INVENTORY_APP_NAME" env-default:"InventorySystem"`
	AppVersion string       `yaml:"app_version" env:"INVENTORY_APP_VERSION" env-default:"0.2.0"`
	DataDir    string       `yaml:"data_dir" env:"INVENTORY_DATA_DIR"`
	Packaged   bool         `yaml:"packaged" env:"INVENTORY_PACKAGED" env-default:"false"`
	DBFile     string       `yaml:"db_file" env:"INVENTORY_DB_FILE" env-default:"inventory.db"`
	ListenAddr string       `yaml:"listen_addr" env:"INVENTORY_LISTEN_ADDR" env-default:"127.0.0.1:8765"`
	LogLevel   string       `yaml:"log_level" env:"INVENTORY_LOG_LEVEL" env-default:"info"`
	Expiry     ExpiryConfig `yaml:"expiry"`
	Backup     BackupConfig `yaml:"backup"`
}

type ExpiryConfig struct {
	Enabled  bool   `yaml:"enabled" env:"INVENTORY_EXPIRY_ENABLED" env-default:"true"`
	Schedule string `yaml:"schedule" env:"INVENTORY_EXPIRY_SCHEDULE" env-default:"@every 1h"`
}

// BackupConfig controls the snapshot taken before a schema synchronization
// rewrites existing tables. An empty Dir means <data_dir>/backups.
type BackupConfig struct {
	Enabled bool   `yaml:"enabled" env:"INVENTORY_BACKUP_ENABLED" env-default:"true"`
	Keep    int    `yaml:"keep" env:"INVENTORY_BACKUP_KEEP" env-default:"5"`
	Dir     string `yaml:"dir" env:"INVENTORY_BACKUP_DIR"`
}

const shutdownTimeout = 10 * time.Second

func (c *AppConfig) ShutdownTimeout() time.Duration {
	return shutdownTimeout
}

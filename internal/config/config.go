// Package config resolves EventsPark settings from defaults, an optional YAML
// file, a .env file, EVENTSPARK_* environment variables and command flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Shivanand-hulikatti/eventspark/internal/i18n"
	"github.com/Shivanand-hulikatti/eventspark/internal/store"
)

// Store backends.
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// StoreConfig selects where collections are persisted.
type StoreConfig struct {
	Backend string `mapstructure:"backend" yaml:"backend"`
	DSN     string `mapstructure:"dsn" yaml:"dsn"`
}

// Config holds all application settings.
type Config struct {
	DataDir  string      `mapstructure:"data_dir" yaml:"data_dir"`
	Store    StoreConfig `mapstructure:"store" yaml:"store"`
	LoadMode string      `mapstructure:"load_mode" yaml:"load_mode"`
	Language string      `mapstructure:"language" yaml:"language"`
	LogLevel string      `mapstructure:"log_level" yaml:"log_level"`
}

// flagKeys maps command flag names to config keys.
var flagKeys = map[string]string{
	"data-dir":  "data_dir",
	"store":     "store.backend",
	"dsn":       "store.dsn",
	"load-mode": "load_mode",
	"lang":      "language",
	"log-level": "log_level",
}

// Defaults returns the default value of every config key.
func Defaults() map[string]any {
	return map[string]any{
		"data_dir":      ".",
		"store.backend": BackendFile,
		"store.dsn":     "",
		"load_mode":     string(store.Lenient),
		"language":      "en",
		"log_level":     "warn",
	}
}

// Default returns the configuration used when nothing else is set.
func Default() Config {
	d := Defaults()
	return Config{
		DataDir:  d["data_dir"].(string),
		Store:    StoreConfig{Backend: d["store.backend"].(string), DSN: d["store.dsn"].(string)},
		LoadMode: d["load_mode"].(string),
		Language: d["language"].(string),
		LogLevel: d["log_level"].(string),
	}
}

// Load resolves the configuration for cmd. configFile, when set, must exist;
// otherwise eventspark.yaml is looked up in the user config dir and the
// working directory, and a missing file is fine.
func Load(cmd *cobra.Command, configFile string) (Config, error) {
	var c Config
	v := viper.New()

	for key, value := range Defaults() {
		v.SetDefault(key, value)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("eventspark")
		v.SetConfigType("yaml")
		if p, err := DefaultPath(); err == nil {
			v.AddConfigPath(filepath.Dir(p))
		}
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return c, fmt.Errorf("read config: %w", err)
		}
	}

	if err := LoadDotEnv(".env"); err != nil {
		return c, err
	}
	v.SetEnvPrefix("eventspark")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cmd != nil {
		for name, key := range flagKeys {
			if f := cmd.Flags().Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return c, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("parse config: %w", err)
	}
	return c, c.Validate()
}

// LoadDotEnv adds the variables in path to the environment without
// overriding ones already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", path, err)
}

// Validate rejects unknown backends, load modes and languages, and a missing
// postgres DSN.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case BackendFile, BackendSQLite, BackendMemory:
	case BackendPostgres:
		if c.Store.DSN == "" {
			return errors.New("store.dsn is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown store backend %q (want %s, %s, %s or %s)",
			c.Store.Backend, BackendFile, BackendSQLite, BackendPostgres, BackendMemory)
	}
	if _, err := c.Mode(); err != nil {
		return err
	}
	if !i18n.Supported(c.Language) {
		return fmt.Errorf("unsupported language %q (want one of %s)", c.Language, strings.Join(i18n.Languages(), ", "))
	}
	return nil
}

// Mode returns the parsed load mode.
func (c Config) Mode() (store.LoadMode, error) {
	return store.ParseLoadMode(c.LoadMode)
}

// SQLiteDSN returns the configured DSN, or eventspark.db in the data dir.
func (c Config) SQLiteDSN() string {
	if c.Store.DSN != "" {
		return c.Store.DSN
	}
	return filepath.Join(c.DataDir, "eventspark.db")
}

// DefaultPath returns the per-user config file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not get user config directory: %w", err)
	}
	return filepath.Join(dir, "eventspark", "eventspark.yaml"), nil
}

// WriteFile writes c as YAML to path, creating parent directories.
func WriteFile(path string, c Config) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("could not create config directory %s: %w", filepath.Dir(path), err)
	}
	// The postgres DSN may hold a password.
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

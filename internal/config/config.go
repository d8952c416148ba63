// Package config resolves where medialedger keeps its data and loads the
// runtime settings shared by the CLI, HTTP and MCP surfaces.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

const appName = "medialedger"

// EnvPrefix prefixes every environment variable viper reads.
const EnvPrefix = "MEDIALEDGER"

// GetDataDir resolves the base directory for the database. MEDIALEDGER_DIR
// wins, then the XDG data home, then ~/.local/share.
func GetDataDir() string {
	if explicit := os.Getenv(EnvPrefix + "_DIR"); explicit != "" {
		return explicit
	}

	xdg.Reload()

	dataHome := xdg.DataHome
	if dataHome == "" {
		home := xdg.Home
		if home == "" {
			var err error
			home, err = os.UserHomeDir()
			if err != nil {
				return filepath.Join(os.TempDir(), appName)
			}
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	return filepath.Join(dataHome, appName)
}

// GetDBPath returns the default SQLite database path.
func GetDBPath() string {
	return filepath.Join(GetDataDir(), appName+".db")
}

// GetConfigDir returns the directory searched for config.yaml.
func GetConfigDir() string {
	xdg.Reload()
	return filepath.Join(xdg.ConfigHome, appName)
}

// Config is the resolved runtime configuration.
type Config struct {
	DBPath   string
	LogLevel string
	HTTPAddr string
	Retry    RetryConfig
}

// RetryConfig bounds how callers retry version conflicts.
type RetryConfig struct {
	MaxAttempts int
	MinBackoff  time.Duration
	MaxBackoff  time.Duration
}

// Viper keys.
const (
	KeyDBPath           = "db_path"
	KeyLogLevel         = "log_level"
	KeyHTTPAddr         = "http.addr"
	KeyRetryMaxAttempts = "retry.max_attempts"
	KeyRetryMinBackoff  = "retry.min_backoff"
	KeyRetryMaxBackoff  = "retry.max_backoff"
)

// SetDefaults registers defaults and environment binding on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDBPath, "")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyHTTPAddr, "127.0.0.1:8080")
	v.SetDefault(KeyRetryMaxAttempts, 3)
	v.SetDefault(KeyRetryMinBackoff, 20*time.Millisecond)
	v.SetDefault(KeyRetryMaxBackoff, 500*time.Millisecond)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads an optional config file into v and returns the resolved
// settings. With an empty configFile, config.yaml is looked up in
// GetConfigDir and its absence is not an error.
func Load(v *viper.Viper, configFile string) (Config, error) {
	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(GetConfigDir())
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := Config{
		DBPath:   v.GetString(KeyDBPath),
		LogLevel: v.GetString(KeyLogLevel),
		HTTPAddr: v.GetString(KeyHTTPAddr),
		Retry: RetryConfig{
			MaxAttempts: v.GetInt(KeyRetryMaxAttempts),
			MinBackoff:  v.GetDuration(KeyRetryMinBackoff),
			MaxBackoff:  v.GetDuration(KeyRetryMaxBackoff),
		},
	}
	if cfg.DBPath == "" {
		cfg.DBPath = GetDBPath()
	}
	if cfg.Retry.MaxAttempts < 1 {
		cfg.Retry.MaxAttempts = 1
	}
	return cfg, nil
}

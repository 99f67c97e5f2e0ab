package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Search  SearchConfig  `toml:"search"`
	Storage StorageConfig `toml:"storage"`
	Actors  ActorsConfig  `toml:"actors"`
	Bridge  BridgeConfig  `toml:"bridge"`
	UI      UIConfig      `toml:"ui"`
}

// SearchConfig tunes the session state machine and watchdog.
type SearchConfig struct {
	IdleTimeoutSeconds int      `toml:"idle_timeout_seconds"`
	WatchdogTickMs     int      `toml:"watchdog_tick_ms"`
	ResultLimit        int      `toml:"result_limit"`
	SnapshotTTLMinutes int      `toml:"snapshot_ttl_minutes"`
	RecentQueryCap     int      `toml:"recent_query_cap"`
	DefaultSources     []string `toml:"default_sources"`
}

// IdleTimeout returns the watchdog idle threshold as a duration.
func (c SearchConfig) IdleTimeout() time.Duration {
	return time.Duration(c.IdleTimeoutSeconds) * time.Second
}

// WatchdogTick returns the watchdog polling interval as a duration.
func (c SearchConfig) WatchdogTick() time.Duration {
	return time.Duration(c.WatchdogTickMs) * time.Millisecond
}

// SnapshotTTL returns the snapshot freshness window as a duration.
func (c SearchConfig) SnapshotTTL() time.Duration {
	return time.Duration(c.SnapshotTTLMinutes) * time.Minute
}

// StorageConfig contains database connection settings.
type StorageConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ActorsConfig locates the actor directory file.
type ActorsConfig struct {
	File string `toml:"file"`
}

// BridgeConfig contains event-channel transport settings.
type BridgeConfig struct {
	Address            string  `toml:"address"`
	DialTimeoutSeconds int     `toml:"dial_timeout_seconds"`
	JoinRatePerMinute  float64 `toml:"join_rate_per_minute"`
	JoinBurst          int     `toml:"join_burst"`
}

// DialTimeout returns the transport dial timeout as a duration.
func (c BridgeConfig) DialTimeout() time.Duration {
	return time.Duration(c.DialTimeoutSeconds) * time.Second
}

// UIConfig contains view settings shared by the TUI and CLI table output.
type UIConfig struct {
	PageSizes       []int `toml:"page_sizes"`
	DefaultPageSize int   `toml:"default_page_size"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the complete application configuration
type Config struct {
	Server    ServerConfig  `mapstructure:"server"`
	Metrics   MetricsConfig `mapstructure:"metrics"`
	Poll      PollConfig    `mapstructure:"poll"`
	Logging   LoggingConfig `mapstructure:"logging"`
	Overlay   OverlayConfig `mapstructure:"overlay"`
	Autostart bool          `mapstructure:"autostart"`
}

// ServerConfig defines the local control server
type ServerConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	ListenAddr string `mapstructure:"listen_addr"`
}

// MetricsConfig toggles the /metrics route
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// PollConfig defines how often observers refresh
type PollConfig struct {
	Interval string `mapstructure:"interval"`
}

// LoggingConfig defines logging behavior
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// OverlayConfig defines how the break overlay window looks and closes
type OverlayConfig struct {
	Fullscreen bool    `mapstructure:"fullscreen"`
	Opacity    float64 `mapstructure:"opacity"`
	AutoClose  bool    `mapstructure:"auto_close"`
}

// PollInterval returns the parsed poll interval.
func (cfg *Config) PollInterval() time.Duration {
	interval, err := time.ParseDuration(cfg.Poll.Interval)
	if err != nil || interval <= 0 {
		return time.Second
	}
	return interval
}

// Load loads configuration from file and environment variables.
// An empty configPath uses defaults and environment only.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Configure viper
	v.SetEnvPrefix("BREAKTIME")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.enabled", true)
	v.SetDefault("server.listen_addr", "127.0.0.1:47615")

	v.SetDefault("metrics.enabled", true)

	v.SetDefault("poll.interval", "1s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("overlay.fullscreen", true)
	v.SetDefault("overlay.opacity", 0.85)
	v.SetDefault("overlay.auto_close", true)

	v.SetDefault("autostart", false)
}

// validate validates the configuration
func validate(cfg *Config) error {
	if cfg.Server.Enabled && cfg.Server.ListenAddr == "" {
		return fmt.Errorf("server.listen_addr is required when the server is enabled")
	}

	interval, err := time.ParseDuration(cfg.Poll.Interval)
	if err != nil {
		return fmt.Errorf("invalid poll interval %q: %w", cfg.Poll.Interval, err)
	}
	if interval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", interval)
	}

	if cfg.Overlay.Opacity < 0 || cfg.Overlay.Opacity > 1 {
		return fmt.Errorf("overlay opacity must be within 0..1, got %v", cfg.Overlay.Opacity)
	}

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %q", cfg.Logging.Level)
	}
	switch cfg.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format: %q", cfg.Logging.Format)
	}

	return nil
}

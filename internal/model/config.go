package model

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// envPrefix is prepended to every environment override,
// e.g. MEMORYBOX_API_BASE_URL.
const envPrefix = "MEMORYBOX"

// APIConfig holds the remote service endpoints.
type APIConfig struct {
	// BaseURL is the HTTP API root, e.g. https://api.example.com/api.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// WSBaseURL is the WebSocket root. When empty it is derived from
	// BaseURL by swapping the scheme and dropping the path.
	WSBaseURL string `mapstructure:"ws_base_url" yaml:"ws_base_url"`

	// TimeoutSec bounds every HTTP round trip.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// NotificationsConfig controls the notification center.
type NotificationsConfig struct {
	PageSize int `mapstructure:"page_size" yaml:"page_size"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
	Env   string `mapstructure:"env" yaml:"env"`
}

// JournalConfig controls the local notification history.
type JournalConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	API           APIConfig           `mapstructure:"api" yaml:"api"`
	Notifications NotificationsConfig `mapstructure:"notifications" yaml:"notifications"`
	Display       DisplayConfig       `mapstructure:"display" yaml:"display"`
	Log           LogConfig           `mapstructure:"log" yaml:"log"`
	Journal       JournalConfig       `mapstructure:"journal" yaml:"journal"`
}

// ConfigDir returns ~/.config/memorybox, or "." if the home directory
// cannot be resolved.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "memorybox")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/memorybox/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

func setDefaults(v *viper.Viper) {
	dir := ConfigDir()
	v.SetDefault("api.base_url", "http://localhost:8080/api")
	v.SetDefault("api.ws_base_url", "")
	v.SetDefault("api.timeout_sec", 15)
	v.SetDefault("notifications.page_size", 20)
	v.SetDefault("display.theme", "default")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", filepath.Join(dir, "memorybox.log"))
	v.SetDefault("log.env", "development")
	v.SetDefault("journal.enabled", true)
	v.SetDefault("journal.path", filepath.Join(dir, "journal.db"))
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// A missing file is not an error: defaults and MEMORYBOX_* environment
// overrides still apply.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		var pathErr *os.PathError
		if !errors.As(err, &notFound) && !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Notifications.PageSize <= 0 {
		cfg.Notifications.PageSize = 20
	}
	if cfg.API.TimeoutSec <= 0 {
		cfg.API.TimeoutSec = 15
	}
	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("api", cfg.API)
	v.Set("notifications", cfg.Notifications)
	v.Set("display", cfg.Display)
	v.Set("log", cfg.Log)
	v.Set("journal", cfg.Journal)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}

// WebSocketBase returns the WebSocket root URL, deriving it from BaseURL
// (http→ws, https→wss, path dropped) when WSBaseURL is unset.
func (c APIConfig) WebSocketBase() (string, error) {
	if c.WSBaseURL != "" {
		return strings.TrimRight(c.WSBaseURL, "/"), nil
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parsing api base url %q: %w", c.BaseURL, err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported api scheme %q", u.Scheme)
	}
	u.Path = ""
	u.RawQuery = ""
	return strings.TrimRight(u.String(), "/"), nil
}

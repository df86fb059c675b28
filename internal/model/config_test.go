package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080/api", cfg.API.BaseURL)
	assert.Equal(t, 15, cfg.API.TimeoutSec)
	assert.Equal(t, 20, cfg.Notifications.PageSize)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.Journal.Enabled)
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
api:
  base_url: https://memorybox.example.com/api/
  timeout_sec: 0
notifications:
  page_size: 50
log:
  level: debug
journal:
  enabled: false
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://memorybox.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, 15, cfg.API.TimeoutSec)
	assert.Equal(t, 50, cfg.Notifications.PageSize)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.False(t, cfg.Journal.Enabled)
}

func TestLoadConfigEnvironmentOverrides(t *testing.T) {
	t.Setenv("MEMORYBOX_API_BASE_URL", "http://10.0.0.5:9000/api")
	t.Setenv("MEMORYBOX_NOTIFICATIONS_PAGE_SIZE", "5")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "http://10.0.0.5:9000/api", cfg.API.BaseURL)
	assert.Equal(t, 5, cfg.Notifications.PageSize)
}

func TestLoadConfigRejectsBrokenYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api: [unterminated"), 0o600))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	cfg.API.BaseURL = "https://memorybox.example.com/api"
	cfg.Notifications.PageSize = 30
	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://memorybox.example.com/api", loaded.API.BaseURL)
	assert.Equal(t, 30, loaded.Notifications.PageSize)
}

func TestWebSocketBase(t *testing.T) {
	tests := []struct {
		name string
		cfg  APIConfig
		want string
	}{
		{"http", APIConfig{BaseURL: "http://localhost:8080/api"}, "ws://localhost:8080"},
		{"https", APIConfig{BaseURL: "https://memorybox.example.com/api"}, "wss://memorybox.example.com"},
		{"explicit", APIConfig{BaseURL: "https://a.example.com/api", WSBaseURL: "wss://push.example.com/"}, "wss://push.example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cfg.WebSocketBase()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := APIConfig{BaseURL: "ftp://example.com"}.WebSocketBase()
	assert.Error(t, err)
}

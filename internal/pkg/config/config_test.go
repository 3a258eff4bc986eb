package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fullYAML задает все секции конфигурации.
const fullYAML = `
api:
  base_url: "https://mood.example.com/api/v1"
  timeout: 5s
storage:
  path: "/tmp/mood/storage.yml"
store:
  mock_entries: false
  create_delay: 250ms
loadtest:
  base_url: "http://127.0.0.1:9000"
  iteration_pause: 500ms
  request_timeout: 3s
  reports_dir: "reports"
  stages:
    - duration: 30s
      target: 5
    - duration: 10s
      target: 0
  thresholds:
    http_req_duration:
      - "p(95)<300"
server:
  host: "127.0.0.1"
  port: 8081
  shutdown_timeout: 15s
  jwt_secret: "dev-secret"
  cors_origins:
    - "http://localhost:5173"
bot:
  token: "123456:test-token"
  dashboard_url: "http://localhost:5173"
  update_timeout_seconds: 30
  min_mood_text_length: 5
  handler_timeout: 10s
logging:
  level: "debug"
  format: "json"
`

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	err := os.WriteFile(path, []byte(content), 0644)
	require.NoError(t, err)
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	assert.Equal(t, "http://localhost:8000/api/v1", cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.True(t, cfg.Store.MockEntries)
	assert.Equal(t, time.Second, cfg.Store.CreateDelay)
	assert.NotEmpty(t, cfg.Storage.Path)
	require.Len(t, cfg.LoadTest.Stages, 5)
	assert.Equal(t, 20, cfg.LoadTest.Stages[3].Target)
	assert.Equal(t, []string{"p(95)<500"}, cfg.LoadTest.Thresholds["http_req_duration"])
	assert.Equal(t, "0.0.0.0:8000", cfg.Address())
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromYAML(t *testing.T) {
	t.Run("all sections", func(t *testing.T) {
		path := createTempConfigFile(t, fullYAML)
		cfg := defaultConfig()
		err := loadFromYAML(path, cfg)
		require.NoError(t, err)

		assert.Equal(t, "https://mood.example.com/api/v1", cfg.API.BaseURL)
		assert.Equal(t, 5*time.Second, cfg.API.Timeout)
		assert.Equal(t, "/tmp/mood/storage.yml", cfg.Storage.Path)
		assert.False(t, cfg.Store.MockEntries)
		assert.Equal(t, 250*time.Millisecond, cfg.Store.CreateDelay)

		assert.Equal(t, "http://127.0.0.1:9000", cfg.LoadTest.BaseURL)
		assert.Equal(t, 500*time.Millisecond, cfg.LoadTest.IterationPause)
		assert.Equal(t, 3*time.Second, cfg.LoadTest.RequestTimeout)
		assert.Equal(t, "reports", cfg.LoadTest.ReportsDir)
		require.Len(t, cfg.LoadTest.Stages, 2)
		assert.Equal(t, Stage{Duration: 30 * time.Second, Target: 5}, cfg.LoadTest.Stages[0])
		assert.Equal(t, []string{"p(95)<300"}, cfg.LoadTest.Thresholds["http_req_duration"])

		assert.Equal(t, "127.0.0.1:8081", cfg.Address())
		assert.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)
		assert.Equal(t, "dev-secret", cfg.Server.JWTSecret)
		assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.CORSOrigins)

		assert.Equal(t, "123456:test-token", cfg.Bot.Token)
		assert.Equal(t, "http://localhost:5173", cfg.Bot.DashboardURL)
		assert.Equal(t, 30, cfg.Bot.UpdateTimeout)
		assert.Equal(t, 5, cfg.Bot.MinMoodTextLen)
		assert.Equal(t, 10*time.Second, cfg.Bot.HandlerTimeout)

		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Equal(t, "json", cfg.Logging.Format)
		assert.NoError(t, cfg.Validate())
		assert.NoError(t, cfg.ValidateBot())
	})

	t.Run("missing file is not an error", func(t *testing.T) {
		cfg := defaultConfig()
		err := loadFromYAML("non_existent_file.yml", cfg)
		assert.NoError(t, err)
		assert.Equal(t, DefaultAPIBaseURL, cfg.API.BaseURL)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := createTempConfigFile(t, "invalid yaml: {")
		cfg := defaultConfig()
		err := loadFromYAML(path, cfg)
		assert.Error(t, err)
	})
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := createTempConfigFile(t, fullYAML)

	t.Setenv("MOOD_API_BASE_URL", "http://api.local:8000/api/v1")
	t.Setenv("MOOD_API_TIMEOUT", "2s")
	t.Setenv("MOOD_MOCK_ENTRIES", "true")
	t.Setenv("BASE_URL", "http://lt.local:8000")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CORS_ORIGINS", "http://a.local, http://b.local,")
	t.Setenv("LOG_LEVEL", "WARN")
	t.Setenv("TELEGRAM_BOT_TOKEN", "654321:env-token")
	t.Setenv("MOOD_BOT_API_TOKEN", "api-token")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "http://api.local:8000/api/v1", cfg.API.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.API.Timeout)
	assert.True(t, cfg.Store.MockEntries)
	assert.Equal(t, "http://lt.local:8000", cfg.LoadTest.BaseURL)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"http://a.local", "http://b.local"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "654321:env-token", cfg.Bot.Token)
	assert.Equal(t, "api-token", cfg.Bot.APIToken)
}

func TestLoadConfigViteFallback(t *testing.T) {
	t.Setenv("MOOD_API_BASE_URL", "")
	t.Setenv("VITE_API_BASE_URL", "http://vite.local/api/v1")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "http://vite.local/api/v1", cfg.API.BaseURL)
}

func TestLoadConfigInvalidEnv(t *testing.T) {
	testCases := []struct {
		name string
		key  string
		val  string
	}{
		{"timeout", "MOOD_API_TIMEOUT", "ten seconds"},
		{"mock entries", "MOOD_MOCK_ENTRIES", "maybe"},
		{"port", "SERVER_PORT", "http"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.val)
			_, err := LoadConfig("")
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutator func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"relative base url", func(c *Config) { c.API.BaseURL = "/api/v1" }, true},
		{"ftp base url", func(c *Config) { c.API.BaseURL = "ftp://host/api" }, true},
		{"zero timeout", func(c *Config) { c.API.Timeout = 0 }, true},
		{"empty storage path", func(c *Config) { c.Storage.Path = "" }, true},
		{"negative create delay", func(c *Config) { c.Store.CreateDelay = -time.Second }, true},
		{"zero create delay", func(c *Config) { c.Store.CreateDelay = 0 }, false},
		{"bad loadtest url", func(c *Config) { c.LoadTest.BaseURL = "localhost" }, true},
		{"no stages", func(c *Config) { c.LoadTest.Stages = nil }, true},
		{"zero stage duration", func(c *Config) { c.LoadTest.Stages[0].Duration = 0 }, true},
		{"negative stage target", func(c *Config) { c.LoadTest.Stages[0].Target = -1 }, true},
		{"zero request timeout", func(c *Config) { c.LoadTest.RequestTimeout = 0 }, true},
		{"invalid port", func(c *Config) { c.Server.Port = 0 }, true},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, true},
		{"invalid shutdown timeout", func(c *Config) { c.Server.ShutdownTimeout = 0 }, true},
		{"invalid logging level", func(c *Config) { c.Logging.Level = "wrong" }, true},
		{"invalid logging format", func(c *Config) { c.Logging.Format = "xml" }, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			tc.mutator(cfg)
			err := cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateBot(t *testing.T) {
	testCases := []struct {
		name    string
		mutator func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"empty token", func(c *Config) { c.Bot.Token = "" }, true},
		{"placeholder token", func(c *Config) { c.Bot.Token = "YOUR_TELEGRAM_BOT_TOKEN" }, true},
		{"zero update timeout", func(c *Config) { c.Bot.UpdateTimeout = 0 }, true},
		{"negative text length", func(c *Config) { c.Bot.MinMoodTextLen = -1 }, true},
		{"zero handler timeout", func(c *Config) { c.Bot.HandlerTimeout = 0 }, true},
		{"relative dashboard url", func(c *Config) { c.Bot.DashboardURL = "/dashboard" }, true},
		{"no dashboard url", func(c *Config) { c.Bot.DashboardURL = "" }, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.Bot.Token = "123456:test-token"
			tc.mutator(cfg)
			err := cfg.ValidateBot()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

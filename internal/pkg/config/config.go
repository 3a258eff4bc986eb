// Package config предоставляет управление конфигурацией приложения
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// API содержит настройки HTTP-клиента
type API struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// Storage содержит настройки локального постоянного хранилища
type Storage struct {
	Path string `yaml:"path"`
}

// Store содержит настройки хранилища состояния клиента
type Store struct {
	// MockEntries включает локальную генерацию записей вместо обращения к API.
	MockEntries bool          `yaml:"mock_entries"`
	CreateDelay time.Duration `yaml:"create_delay"`
}

// Stage — одна ступень профиля нагрузки
type Stage struct {
	Duration time.Duration `yaml:"duration"`
	Target   int           `yaml:"target"`
}

// LoadTest содержит конфигурацию нагрузочного теста
type LoadTest struct {
	BaseURL        string              `yaml:"base_url"`
	Stages         []Stage             `yaml:"stages"`
	Thresholds     map[string][]string `yaml:"thresholds"`
	IterationPause time.Duration       `yaml:"iteration_pause"`
	RequestTimeout time.Duration       `yaml:"request_timeout"`
	ReportsDir     string              `yaml:"reports_dir"`
}

// Server содержит конфигурацию dev-сервера API
type Server struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	JWTSecret       string        `yaml:"jwt_secret"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	PidFile         string        `yaml:"pid_file"`
	LogFile         string        `yaml:"log_file"`
}

// Bot содержит конфигурацию Telegram-бота дневника
type Bot struct {
	Token string `yaml:"token"`
	// APIToken — bearer-токен для API, если dev-сервер запущен с jwt_secret.
	APIToken       string        `yaml:"api_token"`
	DashboardURL   string        `yaml:"dashboard_url"`
	UpdateTimeout  int           `yaml:"update_timeout_seconds"`
	MinMoodTextLen int           `yaml:"min_mood_text_length"`
	HandlerTimeout time.Duration `yaml:"handler_timeout"`
}

// Logging содержит конфигурацию логирования
type Logging struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Config содержит конфигурацию приложения
type Config struct {
	API      API      `yaml:"api"`
	Storage  Storage  `yaml:"storage"`
	Store    Store    `yaml:"store"`
	LoadTest LoadTest `yaml:"loadtest"`
	Server   Server   `yaml:"server"`
	Bot      Bot      `yaml:"bot"`
	Logging  Logging  `yaml:"logging"`
}

// LoadConfig загружает конфигурацию: значения по умолчанию, затем YAML-файл
// (если он существует), затем переменные окружения (включая .env).
func LoadConfig(path string) (*Config, error) {
	// Отсутствие .env не является ошибкой
	_ = godotenv.Load()

	cfg := defaultConfig()
	if err := loadFromYAML(path, cfg); err != nil {
		return nil, err
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		API: API{
			BaseURL: DefaultAPIBaseURL,
			Timeout: DefaultAPITimeout,
		},
		Storage: Storage{
			Path: defaultStoragePath(),
		},
		Store: Store{
			MockEntries: DefaultMockEntries,
			CreateDelay: DefaultCreateDelay,
		},
		LoadTest: LoadTest{
			BaseURL:        DefaultLoadTestBaseURL,
			Stages:         DefaultStages(),
			Thresholds:     DefaultThresholds(),
			IterationPause: DefaultIterationPause,
			RequestTimeout: DefaultLoadTestTimeout,
			ReportsDir:     DefaultLoadTestReportsDir,
		},
		Server: Server{
			Host:            DefaultServerHost,
			Port:            DefaultServerPort,
			ShutdownTimeout: DefaultShutdownTimeout,
			CORSOrigins:     DefaultCORSOrigins(),
			PidFile:         DefaultPidFile,
			LogFile:         DefaultLogFile,
		},
		Bot: Bot{
			DashboardURL:   DefaultDashboardURL,
			UpdateTimeout:  DefaultUpdateTimeoutSeconds,
			MinMoodTextLen: DefaultMinMoodTextLength,
			HandlerTimeout: DefaultBotHandlerTimeout,
		},
		Logging: Logging{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

func defaultStoragePath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return filepath.Join(".", "."+DefaultStorageDir+".yml")
	}
	return filepath.Join(dir, DefaultStorageDir, DefaultStorageFile)
}

// loadFromYAML накладывает значения из YAML-файла поверх cfg.
// Отсутствующий файл не считается ошибкой.
func loadFromYAML(filename string, cfg *Config) error {
	if filename == "" {
		return nil
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("не удалось прочитать файл конфигурации %s: %w", filename, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("не удалось разобрать YAML конфигурацию: %w", err)
	}
	return nil
}

// applyEnv накладывает переменные окружения поверх cfg
func applyEnv(cfg *Config) error {
	// VITE_API_BASE_URL поддерживается для совместимости с фронтендом
	if v := firstEnv("MOOD_API_BASE_URL", "VITE_API_BASE_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if err := envDuration("MOOD_API_TIMEOUT", &cfg.API.Timeout); err != nil {
		return err
	}
	if v := os.Getenv("MOOD_STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("MOOD_MOCK_ENTRIES"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("недопустимый MOOD_MOCK_ENTRIES: %w", err)
		}
		cfg.Store.MockEntries = b
	}
	if err := envDuration("MOOD_CREATE_DELAY", &cfg.Store.CreateDelay); err != nil {
		return err
	}
	if v := os.Getenv("BASE_URL"); v != "" {
		cfg.LoadTest.BaseURL = v
	}
	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("недопустимый SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Server.JWTSecret = v
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.Server.CORSOrigins = origins
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Bot.Token = v
	}
	if v := os.Getenv("MOOD_BOT_API_TOKEN"); v != "" {
		cfg.Bot.APIToken = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	return nil
}

// Address возвращает адрес сервера в формате "host:port"
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Validate проверяет, являются ли значения конфигурации допустимыми
func (c *Config) Validate() error {
	if err := validateURL("api.base_url", c.API.BaseURL); err != nil {
		return err
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout должен быть положительным")
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("storage.path не может быть пустым")
	}
	if c.Store.CreateDelay < 0 {
		return fmt.Errorf("store.create_delay должен быть неотрицательным")
	}

	if err := validateURL("loadtest.base_url", c.LoadTest.BaseURL); err != nil {
		return err
	}
	if len(c.LoadTest.Stages) == 0 {
		return fmt.Errorf("loadtest.stages не может быть пустым")
	}
	for i, s := range c.LoadTest.Stages {
		if s.Duration <= 0 {
			return fmt.Errorf("loadtest.stages[%d].duration должна быть положительной", i)
		}
		if s.Target < 0 {
			return fmt.Errorf("loadtest.stages[%d].target должен быть неотрицательным", i)
		}
	}
	if c.LoadTest.IterationPause < 0 {
		return fmt.Errorf("loadtest.iteration_pause должна быть неотрицательной")
	}
	if c.LoadTest.RequestTimeout <= 0 {
		return fmt.Errorf("loadtest.request_timeout должен быть положительным")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port должен быть действительным номером порта (1-65535)")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout должен быть положительным")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level должен быть одним из: debug, info, warn, error")
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format должен быть одним из: text, json")
	}

	return nil
}

// ValidateBot проверяет секцию bot. Вызывается только бинарником бота,
// остальным командам токен Telegram не нужен.
func (c *Config) ValidateBot() error {
	if c.Bot.Token == "" || c.Bot.Token == "YOUR_TELEGRAM_BOT_TOKEN" {
		return fmt.Errorf("bot.token не настроен")
	}
	if c.Bot.UpdateTimeout <= 0 {
		return fmt.Errorf("bot.update_timeout_seconds должен быть положительным")
	}
	if c.Bot.MinMoodTextLen < 0 {
		return fmt.Errorf("bot.min_mood_text_length должен быть неотрицательным")
	}
	if c.Bot.HandlerTimeout <= 0 {
		return fmt.Errorf("bot.handler_timeout должен быть положительным")
	}
	if c.Bot.DashboardURL != "" {
		if err := validateURL("bot.dashboard_url", c.Bot.DashboardURL); err != nil {
			return err
		}
	}
	return nil
}

func validateURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: недопустимый URL: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s: схема должна быть http или https", field)
	}
	if u.Host == "" {
		return fmt.Errorf("%s: не указан хост", field)
	}
	return nil
}

func envDuration(key string, dst *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("недопустимый %s: %w", key, err)
	}
	*dst = d
	return nil
}

// firstEnv возвращает первое непустое значение из перечисленных переменных
func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

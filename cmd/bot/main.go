package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"mood-diary/internal/api"
	"mood-diary/internal/auth"
	"mood-diary/internal/bot"
	"mood-diary/internal/httpclient"
	applog "mood-diary/internal/log"
	"mood-diary/internal/pkg/config"
	"mood-diary/internal/storage"
)

// botTokenTTL — срок жизни токена API, выпущенного из server.jwt_secret.
const botTokenTTL = 365 * 24 * time.Hour

func main() {
	if err := run(); err != nil {
		slog.Error("bot run failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	flag.StringVar(&configPath, "config", "config.yml", "Path to YAML config")
	flag.Parse()

	// 1. Загрузка конфигурации
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Логгер с маскировкой токенов; через него же пишет библиотека Bot API
	logger := applog.New(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)
	if err := tgbotapi.SetLogger(applog.NewTGBotAPIAdapter(logger)); err != nil {
		return fmt.Errorf("failed to set bot api logger: %w", err)
	}

	// 3. Валидация
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if err := cfg.ValidateBot(); err != nil {
		return fmt.Errorf("bot config validation failed: %w", err)
	}

	// 4. Компоненты
	diary, err := newDiaryClient(cfg, logger.With(slog.String("component", "api")))
	if err != nil {
		return err
	}

	b, err := bot.NewBot(cfg.Bot, diary, bot.NewSessionStore(), logger.With(slog.String("component", "bot")))
	if err != nil {
		return fmt.Errorf("failed to create bot: %w", err)
	}

	slog.Info("Bot created successfully, starting...", "api", cfg.API.BaseURL)

	// 5. Работа до сигнала завершения
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		b.Start(ctx)
	}()

	<-ctx.Done()
	slog.Info("Shutting down bot...")
	<-done

	slog.Info("Bot stopped gracefully")
	return nil
}

// newDiaryClient строит API-клиент бота. Токен берется из bot.api_token,
// а если он пуст и задан server.jwt_secret, выпускается для служебного
// пользователя 1.
func newDiaryClient(cfg *config.Config, logger *slog.Logger) (*api.Client, error) {
	store := storage.NewMemoryStorage()

	token := cfg.Bot.APIToken
	if token == "" && cfg.Server.JWTSecret != "" {
		var err error
		token, err = auth.IssueToken([]byte(cfg.Server.JWTSecret), 1, botTokenTTL, time.Now())
		if err != nil {
			return nil, fmt.Errorf("failed to issue api token: %w", err)
		}
	}
	if token != "" {
		if err := store.SetItem(storage.KeyAuthToken, token); err != nil {
			return nil, err
		}
	}

	return api.New(httpclient.New(cfg.API.BaseURL, cfg.API.Timeout, store, logger)), nil
}

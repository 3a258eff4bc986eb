package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sevlyar/go-daemon"

	applog "mood-diary/internal/log"
	"mood-diary/internal/pkg/config"
	"mood-diary/internal/server"
)

const cacheCleanupInterval = time.Minute

func main() {
	if err := run(); err != nil {
		slog.Error("application run failed", "error", err)
		os.Exit(1)
	}
}

// run инкапсулирует всю логику инициализации и запуска dev-сервера API.
func run() error {
	var (
		configPath string
		detach     bool
	)
	flag.StringVar(&configPath, "config", "config.yml", "Path to YAML config")
	flag.BoolVar(&detach, "daemon", false, "Run in background")
	flag.Parse()

	// 1. Загрузка конфигурации
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		// Логгер еще не инициализирован, выводим в stderr
		_, _ = fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Отсоединение от терминала. Родительский процесс завершается здесь.
	if detach {
		dctx := &daemon.Context{
			PidFileName: cfg.Server.PidFile,
			PidFilePerm: 0o644,
			LogFileName: cfg.Server.LogFile,
			LogFilePerm: 0o640,
			WorkDir:     ".",
			Umask:       0o27,
		}
		child, err := dctx.Reborn()
		if err != nil {
			return fmt.Errorf("failed to daemonize: %w", err)
		}
		if child != nil {
			fmt.Printf("Server started in background, pid %d\n", child.Pid)
			return nil
		}
		defer func() { _ = dctx.Release() }()
	}

	// 3. Инициализация логгеров
	logger := applog.New(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	zapLogger, err := applog.NewZap(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	defer func() { _ = zapLogger.Sync() }()

	// 4. Валидация конфигурации (после инициализации логгера)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if cfg.Server.JWTSecret == "" {
		slog.Warn("JWT_SECRET is not set, API authentication is disabled")
	}

	// 5. Зависимости и HTTP-сервер
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	repo := server.NewRepository(time.Now)
	srv, err := server.New(cfg, repo, logger, server.WithZapLogger(zapLogger))
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	srv.StartCleanup(appCtx, cacheCleanupInterval)

	// 6. Запуск сервера и graceful shutdown
	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		slog.Info("Starting server", "addr", cfg.Address())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			appCancel()
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		slog.Info("Signal received, shutting down...")
	case <-appCtx.Done():
	}

	// Сначала останавливаем фоновую очистку кэша
	appCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	<-serverDone
	slog.Info("Application exited gracefully")
	return nil
}

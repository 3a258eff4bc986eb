package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mood-diary/internal/api"
	"mood-diary/internal/httpclient"
	applog "mood-diary/internal/log"
	"mood-diary/internal/pkg/config"
	"mood-diary/internal/pkg/term"
	"mood-diary/internal/storage"
	"mood-diary/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(newApp()).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Ошибка:", err)
		os.Exit(1)
	}
}

// app — зависимости, общие для всех команд клиента.
type app struct {
	configPath string
	userID     int64

	cfg     *config.Config
	logger  *slog.Logger
	storage *storage.FileStorage
	store   *store.Store
	term    *term.Terminal
}

func newApp() *app {
	return &app{term: term.NewTerminal()}
}

// setup загружает конфигурацию и собирает цепочку storage → httpclient → api → store.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	a.cfg = cfg

	a.logger = applog.New(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)

	fs, err := storage.OpenFileStorage(cfg.Storage.Path)
	if err != nil {
		return err
	}
	a.storage = fs

	client := httpclient.New(cfg.API.BaseURL, cfg.API.Timeout, fs, a.logger)
	a.store = store.New(api.New(client), fs, a.logger,
		store.WithCreateDelay(cfg.Store.CreateDelay),
		store.WithRemoteEntries(!cfg.Store.MockEntries),
	)
	a.store.LoadCurrentUser()
	a.store.LoadThemePreference()
	return nil
}

// currentUserID возвращает пользователя из флага --user или текущего пользователя.
func (a *app) currentUserID() (int64, error) {
	if a.userID > 0 {
		return a.userID, nil
	}
	if u := a.store.CurrentUser(); u != nil {
		return u.ID, nil
	}
	return 0, errors.New("пользователь не выбран: выполните `user use <id>` или передайте --user")
}

// storeError превращает ошибку, выставленную действием хранилища, в error команды.
func (a *app) storeError() error {
	if msg := a.store.Snapshot().Error; msg != "" {
		return errors.New(msg)
	}
	return nil
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "client",
		Short:         "Консольный клиент дневника настроения",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "config.yml", "путь к YAML-конфигурации")
	root.PersistentFlags().Int64Var(&a.userID, "user", 0, "id пользователя вместо текущего")

	root.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newTokenCmd(a),
		newUserCmd(a),
		newHealthCmd(a),
		newDashboardCmd(a),
		newTrendsCmd(a),
		newInsightsCmd(a),
		newCompareCmd(a),
		newEntriesCmd(a),
		newStatsCmd(a),
		newThemeCmd(a),
	)
	return root
}

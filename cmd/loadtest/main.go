package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"mood-diary/internal/auth"
	"mood-diary/internal/loadtest"
	applog "mood-diary/internal/log"
	"mood-diary/internal/pkg/config"
)

// errThresholds сообщает main, что прогон завершился, но пороги нарушены.
var errThresholds = errors.New("some thresholds have failed")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	switch {
	case errors.Is(err, errThresholds):
		fmt.Fprintln(os.Stderr, err)
		os.Exit(loadtest.ExitThresholdsFailed)
	case err != nil:
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type flags struct {
	configPath string
	baseURL    string
	reportsDir string
	token      string
	stages     []string
	noReports  bool
}

func newRootCmd() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:           "loadtest",
		Short:         "Нагрузочный тест API дневника настроения",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, f)
		},
	}
	cmd.Flags().StringVar(&f.configPath, "config", "config.yml", "путь к YAML-конфигурации")
	cmd.Flags().StringVar(&f.baseURL, "base-url", "", "адрес API без /api/v1 (переопределяет loadtest.base_url)")
	cmd.Flags().StringVar(&f.reportsDir, "reports-dir", "", "каталог для отчетов")
	cmd.Flags().StringVar(&f.token, "token", "", "bearer-токен; по умолчанию выпускается из server.jwt_secret")
	cmd.Flags().StringSliceVar(&f.stages, "stage", nil, "ступень профиля duration:target, можно повторять")
	cmd.Flags().BoolVar(&f.noReports, "no-reports", false, "не сохранять файлы отчетов")
	return cmd
}

// parseStage разбирает ступень в формате "30s:10".
func parseStage(raw string) (config.Stage, error) {
	d, t, ok := strings.Cut(raw, ":")
	if !ok {
		return config.Stage{}, fmt.Errorf("stage %q: expected duration:target", raw)
	}
	duration, err := time.ParseDuration(d)
	if err != nil || duration <= 0 {
		return config.Stage{}, fmt.Errorf("stage %q: invalid duration", raw)
	}
	target, err := strconv.Atoi(t)
	if err != nil || target < 0 {
		return config.Stage{}, fmt.Errorf("stage %q: invalid target", raw)
	}
	return config.Stage{Duration: duration, Target: target}, nil
}

func run(cmd *cobra.Command, f flags) error {
	cfg, err := config.LoadConfig(f.configPath)
	if err != nil {
		return err
	}
	if f.baseURL != "" {
		cfg.LoadTest.BaseURL = f.baseURL
	}
	if f.reportsDir != "" {
		cfg.LoadTest.ReportsDir = f.reportsDir
	}
	if len(f.stages) > 0 {
		cfg.LoadTest.Stages = cfg.LoadTest.Stages[:0]
		for _, raw := range f.stages {
			st, err := parseStage(raw)
			if err != nil {
				return err
			}
			cfg.LoadTest.Stages = append(cfg.LoadTest.Stages, st)
		}
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	logger := applog.New(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)

	opts, err := loadtest.OptionsFromConfig(cfg.LoadTest, logger)
	if err != nil {
		return err
	}
	opts.Token = f.token
	if opts.Token == "" && cfg.Server.JWTSecret != "" {
		// Dev-сервер проверяет только подпись, владелец данных не сверяется.
		opts.Token, err = auth.IssueToken([]byte(cfg.Server.JWTSecret), 1, auth.DefaultTTL, time.Now())
		if err != nil {
			return err
		}
	}

	runner, err := loadtest.NewRunner(opts)
	if err != nil {
		return err
	}
	res := runner.Run(cmd.Context())

	summary := loadtest.Summarize(res)
	names := res.Metrics.Names()
	if err := loadtest.WriteConsole(cmd.OutOrStdout(), summary, names); err != nil {
		return err
	}
	if !f.noReports {
		paths, err := loadtest.WriteReports(cfg.LoadTest.ReportsDir, summary, names)
		if err != nil {
			return err
		}
		for _, p := range paths {
			logger.Info("Report written", "path", p)
		}
	}

	if !summary.Passed {
		return errThresholds
	}
	return nil
}

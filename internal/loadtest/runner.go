package loadtest

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"mood-diary/internal/pkg/config"
)

const defaultTick = 100 * time.Millisecond

// Options — параметры прогона.
type Options struct {
	BaseURL        string
	Stages         []config.Stage
	Thresholds     []Threshold
	IterationPause time.Duration
	RequestTimeout time.Duration
	// Token передается как Bearer, если сервер требует аутентификацию.
	Token  string
	Client *http.Client
	Logger *slog.Logger
	// Tick — период пересчета числа виртуальных пользователей.
	Tick time.Duration
	Rand *rand.Rand
}

// OptionsFromConfig собирает параметры прогона из конфигурации.
func OptionsFromConfig(cfg config.LoadTest, logger *slog.Logger) (Options, error) {
	thresholds, err := ParseThresholds(cfg.Thresholds)
	if err != nil {
		return Options{}, fmt.Errorf("failed to parse thresholds: %w", err)
	}
	return Options{
		BaseURL:        cfg.BaseURL,
		Stages:         cfg.Stages,
		Thresholds:     thresholds,
		IterationPause: cfg.IterationPause,
		RequestTimeout: cfg.RequestTimeout,
		Logger:         logger,
	}, nil
}

// Result — итог прогона.
type Result struct {
	RunID      string
	Started    time.Time
	Duration   time.Duration
	Metrics    *Metrics
	Thresholds []ThresholdResult
	MaxVUs     int
}

// Passed сообщает, выполнены ли все пороги.
func (r *Result) Passed() bool {
	for _, th := range r.Thresholds {
		if !th.OK {
			return false
		}
	}
	return true
}

// Runner управляет виртуальными пользователями по профилю нагрузки.
type Runner struct {
	opts     Options
	metrics  *Metrics
	scenario *Scenario
	logger   *slog.Logger
}

// NewRunner проверяет параметры и создает исполнителя.
func NewRunner(opts Options) (*Runner, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if len(opts.Stages) == 0 {
		return nil, fmt.Errorf("at least one stage is required")
	}
	if opts.Tick <= 0 {
		opts.Tick = defaultTick
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.RequestTimeout}
	}

	m := NewMetrics()
	return &Runner{
		opts:     opts,
		metrics:  m,
		scenario: NewScenario(opts.BaseURL, opts.Token, client, m, opts.Logger, opts.Rand),
		logger:   opts.Logger,
	}, nil
}

// Run выполняет setup, профиль нагрузки и teardown. Отмена ctx прерывает
// прогон; итоги по уже собранным метрикам возвращаются в любом случае.
func (r *Runner) Run(ctx context.Context) *Result {
	started := time.Now()
	runID := uuid.NewString()
	r.logger.Info("Starting load test",
		"run_id", runID,
		"base_url", r.opts.BaseURL,
		"duration", TotalDuration(r.opts.Stages).String(),
		"max_vus", MaxVUs(r.opts.Stages))

	userID := r.scenario.Setup(ctx)
	r.drive(ctx, userID, started)

	// teardown должен пройти и после отмены прогона
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.requestTimeout())
	defer cancel()
	r.scenario.Teardown(cleanupCtx, userID)

	elapsed := time.Since(started)
	res := &Result{
		RunID:      runID,
		Started:    started,
		Duration:   elapsed,
		Metrics:    r.metrics,
		Thresholds: Evaluate(r.metrics, r.opts.Thresholds, elapsed),
		MaxVUs:     MaxVUs(r.opts.Stages),
	}
	r.logger.Info("Load test finished", "run_id", runID, "elapsed", elapsed.String(), "passed", res.Passed())
	return res
}

func (r *Runner) requestTimeout() time.Duration {
	if r.opts.RequestTimeout > 0 {
		return r.opts.RequestTimeout
	}
	return config.DefaultLoadTestTimeout
}

// drive поддерживает число VU согласно профилю. Остановленный VU доводит
// текущую итерацию до конца.
func (r *Runner) drive(ctx context.Context, userID int64, started time.Time) {
	g, gctx := errgroup.WithContext(ctx)
	var stops []context.CancelFunc

	ticker := time.NewTicker(r.opts.Tick)
	defer ticker.Stop()

	total := TotalDuration(r.opts.Stages)
	for {
		elapsed := time.Since(started)
		target := 0
		if elapsed < total {
			target = TargetVUs(r.opts.Stages, elapsed)
		}

		for len(stops) < target {
			vuCtx, stop := context.WithCancel(gctx)
			stops = append(stops, stop)
			vu := len(stops)
			g.Go(func() error {
				r.vu(gctx, vuCtx, vu, userID)
				return nil
			})
		}
		for len(stops) > target {
			stops[len(stops)-1]()
			stops = stops[:len(stops)-1]
		}

		if elapsed >= total {
			break
		}
		select {
		case <-ctx.Done():
			for _, stop := range stops {
				stop()
			}
			_ = g.Wait()
			return
		case <-ticker.C:
		}
	}
	_ = g.Wait()
}

// vu крутит итерации, пока stopCtx не отменен. Запросы идут в runCtx,
// чтобы начатая итерация не обрывалась при снижении нагрузки.
func (r *Runner) vu(runCtx, stopCtx context.Context, id int, userID int64) {
	r.logger.Debug("VU started", "vu", id)
	defer r.logger.Debug("VU stopped", "vu", id)

	for stopCtx.Err() == nil {
		r.scenario.Iteration(runCtx, userID)
		if r.opts.IterationPause <= 0 {
			continue
		}
		timer := time.NewTimer(r.opts.IterationPause)
		select {
		case <-stopCtx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

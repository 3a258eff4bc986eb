// Package server реализует REST API дневника настроения в памяти процесса.
// Используется для локальной разработки, нагрузочных и интеграционных тестов.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"mood-diary/internal/cache"
	"mood-diary/internal/domain"
	"mood-diary/internal/pkg/config"
)

// Параметры ответа /health.
const (
	ServiceName    = "ai-mood-diary-bot"
	ServiceVersion = "1.0.0"
)

// insightsTTL — сколько живут сгенерированные инсайты, если записи
// пользователя не менялись.
const insightsTTL = 10 * time.Minute

// Server представляет HTTP-сервер
type Server struct {
	HTTPServer *http.Server
	cfg        *config.Config
	repo       *Repository
	insights   *cache.CacheStore[domain.Insights]
	logger     *slog.Logger
	zap        *zap.Logger
	now        func() time.Time
}

// Option настраивает Server.
type Option func(*Server)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithZapLogger включает журнал запросов через zap.
func WithZapLogger(l *zap.Logger) Option {
	return func(s *Server) { s.zap = l }
}

// New создает новый экземпляр Server
func New(cfg *config.Config, repo *Repository, logger *slog.Logger, opts ...Option) (*Server, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:      cfg,
		repo:     repo,
		insights: cache.NewCacheStore[domain.Insights](),
		logger:   logger,
		zap:      zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.HTTPServer = &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      s.routes(),
		ReadTimeout:  config.DefaultReadTimeout,
		WriteTimeout: config.DefaultWriteTimeout,
		IdleTimeout:  config.DefaultIdleTimeout,
	}
	return s, nil
}

func (s *Server) routes() http.Handler {
	chiRouter := chi.NewRouter()

	// Промежуточное ПО
	chiRouter.Use(middleware.RequestID)
	chiRouter.Use(middleware.RealIP)
	chiRouter.Use(ZapRequestLogger(s.zap))
	chiRouter.Use(middleware.Recoverer)
	chiRouter.Use(middleware.StripSlashes)
	chiRouter.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	chiRouter.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"message": "AI Mood Diary API работает",
			"version": ServiceVersion,
		})
	})
	chiRouter.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, domain.Health{
			Status:  "healthy",
			Service: ServiceName,
			Version: ServiceVersion,
		})
	})

	chiRouter.Route("/api/v1", func(r chi.Router) {
		if s.cfg.Server.JWTSecret != "" {
			r.Use(NewAuthMiddleware([]byte(s.cfg.Server.JWTSecret)).RequireAuth)
		}

		r.Route("/users", func(r chi.Router) {
			r.Get("/", s.handleListUsers)
			r.Post("/", s.handleCreateUser)
			r.Get("/stats/summary", s.handleUsersSummary)
			r.Get("/telegram/{telegramID}", s.handleGetUserByTelegram)
			r.Get("/{userID}", s.handleGetUser)
			r.Put("/{userID}", s.handleUpdateUser)
			r.Delete("/{userID}", s.handleDeleteUser)
			r.Post("/{userID}/activate", s.handleSetActive(true))
			r.Post("/{userID}/deactivate", s.handleSetActive(false))
		})

		r.Route("/mood-entries", func(r chi.Router) {
			r.Get("/", s.handleListEntries)
			r.Post("/", s.handleCreateEntry)
			r.Get("/{entryID}", s.handleGetEntry)
			r.Put("/{entryID}", s.handleUpdateEntry)
			r.Delete("/{entryID}", s.handleDeleteEntry)

			r.Route("/user/{userID}", func(r chi.Router) {
				r.Get("/recent", s.handleRecentEntries)
				r.Get("/stats", s.handleUserStats)
				r.Get("/analytics", s.handleUserAnalytics)
				r.Get("/summary", s.handleUserSummary)
				r.Get("/recommendations", s.handleUserRecommendations)
				r.Get("/check-today", s.handleCheckToday)
			})
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/dashboard/{userID}", s.handleDashboard)
			r.Get("/trends/{userID}", s.handleTrends)
			r.Get("/insights/{userID}", s.handleInsights)
			r.Get("/compare-periods/{userID}", s.handleComparePeriods)
			r.Get("/global-stats", s.handleGlobalStats)
		})
	})

	return chiRouter
}

// Handler возвращает корневой обработчик.
func (s *Server) Handler() http.Handler {
	return s.HTTPServer.Handler
}

// StartCleanup периодически удаляет просроченные инсайты из кэша.
func (s *Server) StartCleanup(ctx context.Context, interval time.Duration) {
	s.insights.StartCleanupTicker(ctx, interval)
}

// ListenAndServe запускает HTTP-сервер
func (s *Server) ListenAndServe() error {
	s.logger.Info("Dev API server listening", "addr", s.HTTPServer.Addr, "auth", s.cfg.Server.JWTSecret != "")
	return s.HTTPServer.ListenAndServe()
}

// Shutdown корректно останавливает HTTP-сервер
func (s *Server) Shutdown(ctx context.Context) error {
	return s.HTTPServer.Shutdown(ctx)
}

func (s *Server) invalidate(userID int64) {
	if n := s.insights.DeletePrefix(strconv.FormatInt(userID, 10) + ":"); n > 0 {
		s.logger.Debug("Insights cache invalidated", "user_id", userID, "items", n)
	}
}

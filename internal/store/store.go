// Package store — хранилище состояния клиента дневника настроения:
// текущий пользователь, данные дашборда, записи, аналитика и флаги UI.
// Действия обращаются к API, производные значения вычисляются геттерами
// при каждом обращении.
package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"mood-diary/internal/domain"
	"mood-diary/internal/storage"
)

// Сообщения об ошибках, которые видит пользователь.
const (
	ErrMsgDashboard     = "Не удалось загрузить данные дашборда"
	ErrMsgTrends        = "Не удалось загрузить тренды настроения"
	ErrMsgInsights      = "Не удалось загрузить инсайты"
	ErrMsgCreateEntry   = "Не удалось создать запись настроения"
	ErrMsgRecentEntries = "Не удалось загрузить последние записи"
	ErrMsgEntries       = "Не удалось загрузить записи настроения"
	ErrMsgStats         = "Не удалось загрузить статистику настроения"
	ErrMsgAnalytics     = "Не удалось загрузить аналитику настроения"
	ErrMsgRecommend     = "Не удалось загрузить рекомендации"
	ErrMsgCompare       = "Не удалось сравнить периоды"
	ErrMsgUser          = "Не удалось загрузить пользователя"
)

// API — вызовы, которые использует хранилище. Реализуется api.Client.
type API interface {
	GetHealth(ctx context.Context) (*domain.Health, error)
	GetUser(ctx context.Context, userID int64) (*domain.User, error)
	GetDashboardData(ctx context.Context, userID int64) (*domain.DashboardData, error)
	GetMoodTrends(ctx context.Context, userID int64, period domain.Period) (*domain.MoodTrends, error)
	GenerateInsights(ctx context.Context, userID int64, days int) (*domain.Insights, error)
	CreateMoodEntry(ctx context.Context, data domain.MoodEntryCreate, userID int64, analyze bool) (*domain.MoodEntry, error)
	GetMoodEntries(ctx context.Context, p domain.EntryListParams) ([]domain.MoodEntry, error)
	GetUserMoodStats(ctx context.Context, userID int64) (*domain.MoodStats, error)
	GetUserMoodAnalytics(ctx context.Context, userID int64, period domain.Period) (*domain.MoodAnalytics, error)
	GetUserRecommendations(ctx context.Context, userID int64) (*domain.Recommendations, error)
	ComparePeriods(ctx context.Context, userID int64, currentDays, previousDays int) (*domain.PeriodComparison, error)
	GetGlobalStats(ctx context.Context) (*domain.GlobalStats, error)
}

// State — снимок состояния хранилища. Указатели разделяются с хранилищем,
// изменять объекты по ним нельзя.
type State struct {
	CurrentUser *domain.User

	Dashboard *domain.DashboardData
	Loading   bool
	Error     string

	MoodEntries   []domain.MoodEntry
	RecentEntries []domain.MoodEntry

	MoodStats       *domain.MoodStats
	MoodAnalytics   *domain.MoodAnalytics
	MoodTrends      *domain.MoodTrends
	Insights        *domain.Insights
	Recommendations *domain.Recommendations
	Comparison      *domain.PeriodComparison

	SelectedPeriod domain.Period
	DarkTheme      bool

	GlobalStats *domain.GlobalStats
}

func initialState() State {
	return State{SelectedPeriod: domain.DefaultPeriod}
}

// Store хранит состояние клиента. Действия не сериализуются между собой:
// при конкурентных вызовах побеждает ответ, пришедший последним.
// Мьютекс защищает только отдельные чтения и записи полей.
type Store struct {
	api     API
	storage storage.Storage
	logger  *slog.Logger

	now           func() time.Time
	rnd           *rand.Rand
	createDelay   time.Duration
	remoteEntries bool

	mu    sync.RWMutex
	state State
}

// Option настраивает Store.
type Option func(*Store)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithRand задает генератор для синтезированных записей.
func WithRand(r *rand.Rand) Option {
	return func(s *Store) { s.rnd = r }
}

// WithCreateDelay задает искусственную задержку локального создания записи.
func WithCreateDelay(d time.Duration) Option {
	return func(s *Store) { s.createDelay = d }
}

// WithRemoteEntries переключает создание и загрузку последних записей
// с локальной генерации на вызовы API.
func WithRemoteEntries(remote bool) Option {
	return func(s *Store) { s.remoteEntries = remote }
}

// DefaultCreateDelay — задержка локального создания записи по умолчанию.
const DefaultCreateDelay = time.Second

// New создает хранилище с начальным состоянием.
func New(api API, store storage.Storage, logger *slog.Logger, opts ...Option) *Store {
	s := &Store{
		api:         api,
		storage:     store,
		logger:      logger,
		now:         time.Now,
		createDelay: DefaultCreateDelay,
		state:       initialState(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rnd == nil {
		seed := uint64(s.now().UnixNano())
		s.rnd = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	return s
}

// Reset возвращает состояние к начальному. Локальное хранилище не трогается.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = initialState()
}

// Snapshot возвращает копию текущего состояния.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	st.MoodEntries = cloneEntries(s.state.MoodEntries)
	st.RecentEntries = cloneEntries(s.state.RecentEntries)
	return st
}

func cloneEntries(in []domain.MoodEntry) []domain.MoodEntry {
	if in == nil {
		return nil
	}
	out := make([]domain.MoodEntry, len(in))
	copy(out, in)
	return out
}

func (s *Store) update(fn func(st *State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
}

// CurrentUser возвращает текущего пользователя или nil.
func (s *Store) CurrentUser() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.CurrentUser
}

// SetCurrentUser запоминает пользователя и сохраняет его в локальное хранилище.
func (s *Store) SetCurrentUser(user *domain.User) error {
	s.update(func(st *State) { st.CurrentUser = user })

	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.storage.SetItem(storage.KeyCurrentUser, string(raw))
}

// LoadCurrentUser восстанавливает пользователя из локального хранилища.
func (s *Store) LoadCurrentUser() {
	raw, ok := s.storage.GetItem(storage.KeyCurrentUser)
	if !ok || raw == "" {
		return
	}
	var user *domain.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.logger.Warn("stored user is corrupted", slog.String("error", err.Error()))
		return
	}
	s.update(func(st *State) { st.CurrentUser = user })
}

// SetAuthToken сохраняет bearer-токен для последующих запросов.
func (s *Store) SetAuthToken(token string) error {
	return s.storage.SetItem(storage.KeyAuthToken, token)
}

// Logout удаляет токен и текущего пользователя.
func (s *Store) Logout() error {
	s.update(func(st *State) { st.CurrentUser = nil })
	if err := s.storage.RemoveItem(storage.KeyAuthToken); err != nil {
		return err
	}
	return s.storage.RemoveItem(storage.KeyCurrentUser)
}

// SetLoading устанавливает флаг загрузки.
func (s *Store) SetLoading(loading bool) {
	s.update(func(st *State) { st.Loading = loading })
}

// SetError устанавливает сообщение об ошибке.
func (s *Store) SetError(msg string) {
	s.update(func(st *State) { st.Error = msg })
}

// ClearError сбрасывает сообщение об ошибке.
func (s *Store) ClearError() {
	s.SetError("")
}

// ToggleTheme переключает темную тему и сохраняет выбор.
func (s *Store) ToggleTheme() (bool, error) {
	var dark bool
	s.update(func(st *State) {
		st.DarkTheme = !st.DarkTheme
		dark = st.DarkTheme
	})
	return dark, s.storage.SetItem(storage.KeyDarkTheme, strconv.FormatBool(dark))
}

// LoadThemePreference восстанавливает выбор темы.
func (s *Store) LoadThemePreference() {
	raw, ok := s.storage.GetItem(storage.KeyDarkTheme)
	if !ok || raw == "" {
		return
	}
	dark, err := strconv.ParseBool(raw)
	if err != nil {
		s.logger.Warn("stored theme flag is corrupted", slog.String("value", raw))
		return
	}
	s.update(func(st *State) { st.DarkTheme = dark })
}

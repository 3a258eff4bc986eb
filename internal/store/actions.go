package store

import (
	"context"
	"errors"
	"log/slog"

	"mood-diary/internal/domain"
)

// Значения по умолчанию для действий.
const (
	DefaultInsightsDays  = 30
	DefaultRecentLimit   = 10
	DefaultCompareWindow = 30
)

// ErrNoCurrentUser возвращается, когда действию нужен текущий пользователь.
var ErrNoCurrentUser = errors.New("current user is not set")

// CreateResult — результат создания записи настроения.
type CreateResult struct {
	Success    bool
	AIAnalysis string
	Entry      *domain.MoodEntry
	Error      string
}

func (s *Store) fail(msg, action string, err error) {
	s.logger.Error(action, slog.String("error", err.Error()))
	s.SetError(msg)
}

// FetchDashboardData загружает дашборд и раскладывает его по полям
// хранилища. При ошибке прежние данные остаются нетронутыми.
func (s *Store) FetchDashboardData(ctx context.Context, userID int64) {
	s.SetLoading(true)
	s.ClearError()
	defer s.SetLoading(false)

	data, err := s.api.GetDashboardData(ctx, userID)
	if err != nil {
		s.fail(ErrMsgDashboard, "Error fetching dashboard data", err)
		return
	}

	s.update(func(st *State) {
		st.Dashboard = data
		if data.RecentEntries != nil {
			st.RecentEntries = data.RecentEntries
		}
		if data.Stats != nil {
			st.MoodStats = data.Stats
		}
		if data.Recommendations != nil {
			st.Recommendations = data.Recommendations
		}
		if data.MonthlyAnalytics != nil {
			st.MoodAnalytics = data.MonthlyAnalytics
		}
	})
}

// FetchMoodTrends загружает тренды за период и запоминает выбранный период.
// Повторный вызов всегда обращается к API.
func (s *Store) FetchMoodTrends(ctx context.Context, userID int64, period domain.Period) {
	if period == "" {
		period = domain.DefaultPeriod
	}
	s.SetLoading(true)
	defer s.SetLoading(false)

	trends, err := s.api.GetMoodTrends(ctx, userID, period)
	if err != nil {
		s.fail(ErrMsgTrends, "Error fetching mood trends", err)
		return
	}
	s.update(func(st *State) {
		st.MoodTrends = trends
		st.SelectedPeriod = period
	})
}

// FetchInsights загружает инсайты за последние days дней.
func (s *Store) FetchInsights(ctx context.Context, userID int64, days int) {
	if days <= 0 {
		days = DefaultInsightsDays
	}
	insights, err := s.api.GenerateInsights(ctx, userID, days)
	if err != nil {
		s.fail(ErrMsgInsights, "Error fetching insights", err)
		return
	}
	s.update(func(st *State) { st.Insights = insights })
}

// CreateMoodEntry создает запись. По умолчанию запись синтезируется локально
// после искусственной задержки; с WithRemoteEntries отправляется в API
// от имени текущего пользователя. Новая запись добавляется в начало
// списка последних записей.
func (s *Store) CreateMoodEntry(ctx context.Context, data domain.MoodEntryCreate) CreateResult {
	s.SetLoading(true)
	s.ClearError()
	defer s.SetLoading(false)

	var (
		entry    *domain.MoodEntry
		analysis string
		err      error
	)
	if s.remoteEntries {
		entry, analysis, err = s.createRemote(ctx, data)
	} else {
		entry, analysis, err = s.createLocal(ctx, data)
	}
	if err != nil {
		s.fail(ErrMsgCreateEntry, "Error creating mood entry", err)
		return CreateResult{Success: false, Error: err.Error()}
	}

	s.update(func(st *State) {
		st.RecentEntries = append([]domain.MoodEntry{*entry}, st.RecentEntries...)
	})
	return CreateResult{Success: true, AIAnalysis: analysis, Entry: entry}
}

func (s *Store) createRemote(ctx context.Context, data domain.MoodEntryCreate) (*domain.MoodEntry, string, error) {
	user := s.CurrentUser()
	if user == nil {
		return nil, "", ErrNoCurrentUser
	}
	entry, err := s.api.CreateMoodEntry(ctx, data, user.ID, true)
	if err != nil {
		return nil, "", err
	}
	var analysis string
	if a := entry.AIAnalysis; a != nil {
		analysis = a.Insights
		if analysis == "" {
			analysis = a.Recommendations
		}
	}
	return entry, analysis, nil
}

// FetchRecentEntries заменяет список последних записей. По умолчанию
// записи синтезируются локально; с WithRemoteEntries запрашиваются у API.
func (s *Store) FetchRecentEntries(ctx context.Context, userID int64, limit int) []domain.MoodEntry {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	var (
		entries []domain.MoodEntry
		err     error
	)
	if s.remoteEntries {
		entries, err = s.api.GetMoodEntries(ctx, domain.EntryListParams{UserID: userID, Limit: limit})
	} else {
		entries = s.synthesizeEntries(userID, limit)
	}
	if err != nil {
		s.fail(ErrMsgRecentEntries, "Error fetching recent entries", err)
		return []domain.MoodEntry{}
	}

	s.update(func(st *State) { st.RecentEntries = entries })
	return cloneEntries(entries)
}

// FetchMoodEntries загружает список записей с фильтрами.
func (s *Store) FetchMoodEntries(ctx context.Context, p domain.EntryListParams) {
	entries, err := s.api.GetMoodEntries(ctx, p)
	if err != nil {
		s.fail(ErrMsgEntries, "Error fetching mood entries", err)
		return
	}
	s.update(func(st *State) { st.MoodEntries = entries })
}

// FetchMoodStats загружает статистику пользователя.
func (s *Store) FetchMoodStats(ctx context.Context, userID int64) {
	stats, err := s.api.GetUserMoodStats(ctx, userID)
	if err != nil {
		s.fail(ErrMsgStats, "Error fetching mood stats", err)
		return
	}
	s.update(func(st *State) { st.MoodStats = stats })
}

// FetchMoodAnalytics загружает аналитику за период.
func (s *Store) FetchMoodAnalytics(ctx context.Context, userID int64, period domain.Period) {
	if period == "" {
		period = domain.DefaultPeriod
	}
	analytics, err := s.api.GetUserMoodAnalytics(ctx, userID, period)
	if err != nil {
		s.fail(ErrMsgAnalytics, "Error fetching mood analytics", err)
		return
	}
	s.update(func(st *State) { st.MoodAnalytics = analytics })
}

// FetchRecommendations загружает персональные рекомендации.
func (s *Store) FetchRecommendations(ctx context.Context, userID int64) {
	rec, err := s.api.GetUserRecommendations(ctx, userID)
	if err != nil {
		s.fail(ErrMsgRecommend, "Error fetching recommendations", err)
		return
	}
	s.update(func(st *State) { st.Recommendations = rec })
}

// ComparePeriods сравнивает текущий и предыдущий периоды.
func (s *Store) ComparePeriods(ctx context.Context, userID int64, currentDays, previousDays int) {
	if currentDays <= 0 {
		currentDays = DefaultCompareWindow
	}
	if previousDays <= 0 {
		previousDays = DefaultCompareWindow
	}
	cmp, err := s.api.ComparePeriods(ctx, userID, currentDays, previousDays)
	if err != nil {
		s.fail(ErrMsgCompare, "Error comparing periods", err)
		return
	}
	s.update(func(st *State) { st.Comparison = cmp })
}

// FetchGlobalStats загружает глобальную статистику. Ошибка только логируется.
func (s *Store) FetchGlobalStats(ctx context.Context) {
	stats, err := s.api.GetGlobalStats(ctx)
	if err != nil {
		s.logger.Error("Error fetching global stats", slog.String("error", err.Error()))
		return
	}
	s.update(func(st *State) { st.GlobalStats = stats })
}

// CheckAPIHealth сообщает, отвечает ли API.
func (s *Store) CheckAPIHealth(ctx context.Context) bool {
	if _, err := s.api.GetHealth(ctx); err != nil {
		s.logger.Error("API health check failed", slog.String("error", err.Error()))
		return false
	}
	return true
}

// SelectUser загружает пользователя и делает его текущим.
func (s *Store) SelectUser(ctx context.Context, userID int64) error {
	user, err := s.api.GetUser(ctx, userID)
	if err != nil {
		s.fail(ErrMsgUser, "Error fetching user", err)
		return err
	}
	return s.SetCurrentUser(user)
}

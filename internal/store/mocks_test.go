package store

import (
	"context"
	"errors"

	"mood-diary/internal/domain"
)

var errBackend = errors.New("backend is down")

// MockAPI — мок-реализация API для тестирования. Неустановленные функции
// возвращают errBackend.
type MockAPI struct {
	GetHealthFunc              func(ctx context.Context) (*domain.Health, error)
	GetUserFunc                func(ctx context.Context, userID int64) (*domain.User, error)
	GetDashboardDataFunc       func(ctx context.Context, userID int64) (*domain.DashboardData, error)
	GetMoodTrendsFunc          func(ctx context.Context, userID int64, period domain.Period) (*domain.MoodTrends, error)
	GenerateInsightsFunc       func(ctx context.Context, userID int64, days int) (*domain.Insights, error)
	CreateMoodEntryFunc        func(ctx context.Context, data domain.MoodEntryCreate, userID int64, analyze bool) (*domain.MoodEntry, error)
	GetMoodEntriesFunc         func(ctx context.Context, p domain.EntryListParams) ([]domain.MoodEntry, error)
	GetUserMoodStatsFunc       func(ctx context.Context, userID int64) (*domain.MoodStats, error)
	GetUserMoodAnalyticsFunc   func(ctx context.Context, userID int64, period domain.Period) (*domain.MoodAnalytics, error)
	GetUserRecommendationsFunc func(ctx context.Context, userID int64) (*domain.Recommendations, error)
	ComparePeriodsFunc         func(ctx context.Context, userID int64, currentDays, previousDays int) (*domain.PeriodComparison, error)
	GetGlobalStatsFunc         func(ctx context.Context) (*domain.GlobalStats, error)
}

func (m *MockAPI) GetHealth(ctx context.Context) (*domain.Health, error) {
	if m.GetHealthFunc != nil {
		return m.GetHealthFunc(ctx)
	}
	return nil, errBackend
}

func (m *MockAPI) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	if m.GetUserFunc != nil {
		return m.GetUserFunc(ctx, userID)
	}
	return nil, errBackend
}

func (m *MockAPI) GetDashboardData(ctx context.Context, userID int64) (*domain.DashboardData, error) {
	if m.GetDashboardDataFunc != nil {
		return m.GetDashboardDataFunc(ctx, userID)
	}
	return nil, errBackend
}

func (m *MockAPI) GetMoodTrends(ctx context.Context, userID int64, period domain.Period) (*domain.MoodTrends, error) {
	if m.GetMoodTrendsFunc != nil {
		return m.GetMoodTrendsFunc(ctx, userID, period)
	}
	return nil, errBackend
}

func (m *MockAPI) GenerateInsights(ctx context.Context, userID int64, days int) (*domain.Insights, error) {
	if m.GenerateInsightsFunc != nil {
		return m.GenerateInsightsFunc(ctx, userID, days)
	}
	return nil, errBackend
}

func (m *MockAPI) CreateMoodEntry(ctx context.Context, data domain.MoodEntryCreate, userID int64, analyze bool) (*domain.MoodEntry, error) {
	if m.CreateMoodEntryFunc != nil {
		return m.CreateMoodEntryFunc(ctx, data, userID, analyze)
	}
	return nil, errBackend
}

func (m *MockAPI) GetMoodEntries(ctx context.Context, p domain.EntryListParams) ([]domain.MoodEntry, error) {
	if m.GetMoodEntriesFunc != nil {
		return m.GetMoodEntriesFunc(ctx, p)
	}
	return nil, errBackend
}

func (m *MockAPI) GetUserMoodStats(ctx context.Context, userID int64) (*domain.MoodStats, error) {
	if m.GetUserMoodStatsFunc != nil {
		return m.GetUserMoodStatsFunc(ctx, userID)
	}
	return nil, errBackend
}

func (m *MockAPI) GetUserMoodAnalytics(ctx context.Context, userID int64, period domain.Period) (*domain.MoodAnalytics, error) {
	if m.GetUserMoodAnalyticsFunc != nil {
		return m.GetUserMoodAnalyticsFunc(ctx, userID, period)
	}
	return nil, errBackend
}

func (m *MockAPI) GetUserRecommendations(ctx context.Context, userID int64) (*domain.Recommendations, error) {
	if m.GetUserRecommendationsFunc != nil {
		return m.GetUserRecommendationsFunc(ctx, userID)
	}
	return nil, errBackend
}

func (m *MockAPI) ComparePeriods(ctx context.Context, userID int64, currentDays, previousDays int) (*domain.PeriodComparison, error) {
	if m.ComparePeriodsFunc != nil {
		return m.ComparePeriodsFunc(ctx, userID, currentDays, previousDays)
	}
	return nil, errBackend
}

func (m *MockAPI) GetGlobalStats(ctx context.Context) (*domain.GlobalStats, error) {
	if m.GetGlobalStatsFunc != nil {
		return m.GetGlobalStatsFunc(ctx)
	}
	return nil, errBackend
}

// Package api — типизированные обертки над эндпоинтами сервиса дневника
// настроения. Каждый метод соответствует ровно одному HTTP-вызову.
package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"mood-diary/internal/domain"
	"mood-diary/internal/httpclient"
)

// Значения по умолчанию для параметров запросов.
const (
	DefaultRecentDays   = 7
	DefaultSummaryDays  = 7
	DefaultInsightsDays = 30
	DefaultCompareDays  = 30
)

// Doer выполняет один HTTP-вызов. Реализуется httpclient.Client.
type Doer interface {
	Do(ctx context.Context, r httpclient.Request, out any) error
}

// validatable — ответы, которые умеют проверять собственную схему.
type validatable interface {
	Validate() error
}

// Client — поверхность API дневника настроения.
type Client struct {
	http Doer
}

// New создает API поверх HTTP-клиента.
func New(doer Doer) *Client {
	return &Client{http: doer}
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	return c.call(ctx, httpclient.Request{Method: http.MethodGet, Path: path, Query: q}, out)
}

func (c *Client) call(ctx context.Context, r httpclient.Request, out any) error {
	if err := c.http.Do(ctx, r, out); err != nil {
		return err
	}
	if v, ok := out.(validatable); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("%s %s: %w", r.Method, r.Path, err)
		}
	}
	return nil
}

func id(v int64) string {
	return strconv.FormatInt(v, 10)
}

// GetHealth: GET /health относительно корня сервера.
func (c *Client) GetHealth(ctx context.Context) (*domain.Health, error) {
	var out domain.Health
	err := c.call(ctx, httpclient.Request{Method: http.MethodGet, Path: "/health", Root: true}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Пользователи ---

// GetUsers: GET /users.
func (c *Client) GetUsers(ctx context.Context, p domain.UserListParams) ([]domain.User, error) {
	q := url.Values{}
	if p.Skip > 0 {
		q.Set("skip", strconv.Itoa(p.Skip))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.ActiveOnly {
		q.Set("active_only", "true")
	}

	var out []domain.User
	if err := c.get(ctx, "/users", q, &out); err != nil {
		return nil, err
	}
	for i := range out {
		if err := out[i].Validate(); err != nil {
			return nil, fmt.Errorf("GET /users: %w", err)
		}
	}
	return out, nil
}

// GetUser: GET /users/{id}.
func (c *Client) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	var out domain.User
	if err := c.get(ctx, "/users/"+id(userID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetUserByTelegramID: GET /users/telegram/{telegramId}.
func (c *Client) GetUserByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	var out domain.User
	if err := c.get(ctx, "/users/telegram/"+id(telegramID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateUser: POST /users.
func (c *Client) CreateUser(ctx context.Context, data domain.UserCreate) (*domain.User, error) {
	var out domain.User
	if err := c.call(ctx, httpclient.Request{Method: http.MethodPost, Path: "/users", Body: data}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateUser: PUT /users/{id}.
func (c *Client) UpdateUser(ctx context.Context, userID int64, data domain.UserUpdate) (*domain.User, error) {
	var out domain.User
	if err := c.call(ctx, httpclient.Request{Method: http.MethodPut, Path: "/users/" + id(userID), Body: data}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteUser: DELETE /users/{id}.
func (c *Client) DeleteUser(ctx context.Context, userID int64) (*domain.Message, error) {
	var out domain.Message
	if err := c.call(ctx, httpclient.Request{Method: http.MethodDelete, Path: "/users/" + id(userID)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetUsersStats: GET /users/stats/summary.
func (c *Client) GetUsersStats(ctx context.Context) (*domain.UsersSummary, error) {
	var out domain.UsersSummary
	if err := c.get(ctx, "/users/stats/summary", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Записи настроения ---

// GetMoodEntries: GET /mood-entries.
func (c *Client) GetMoodEntries(ctx context.Context, p domain.EntryListParams) ([]domain.MoodEntry, error) {
	q := url.Values{}
	if p.Skip > 0 {
		q.Set("skip", strconv.Itoa(p.Skip))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.UserID > 0 {
		q.Set("user_id", id(p.UserID))
	}
	if p.StartDate != "" {
		q.Set("start_date", p.StartDate)
	}
	if p.EndDate != "" {
		q.Set("end_date", p.EndDate)
	}
	return c.entries(ctx, "/mood-entries", q)
}

func (c *Client) entries(ctx context.Context, path string, q url.Values) ([]domain.MoodEntry, error) {
	var out []domain.MoodEntry
	if err := c.get(ctx, path, q, &out); err != nil {
		return nil, err
	}
	if err := domain.ValidateEntries(out); err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	return out, nil
}

// GetMoodEntry: GET /mood-entries/{id}.
func (c *Client) GetMoodEntry(ctx context.Context, entryID int64) (*domain.MoodEntry, error) {
	var out domain.MoodEntry
	if err := c.get(ctx, "/mood-entries/"+id(entryID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateMoodEntry: POST /mood-entries?user_id=&analyze=.
func (c *Client) CreateMoodEntry(ctx context.Context, data domain.MoodEntryCreate, userID int64, analyze bool) (*domain.MoodEntry, error) {
	q := url.Values{}
	q.Set("user_id", id(userID))
	q.Set("analyze", strconv.FormatBool(analyze))

	var out domain.MoodEntry
	if err := c.call(ctx, httpclient.Request{Method: http.MethodPost, Path: "/mood-entries", Query: q, Body: data}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateMoodEntry: PUT /mood-entries/{id}?reanalyze=.
func (c *Client) UpdateMoodEntry(ctx context.Context, entryID int64, data domain.MoodEntryUpdate, reanalyze bool) (*domain.MoodEntry, error) {
	q := url.Values{}
	q.Set("reanalyze", strconv.FormatBool(reanalyze))

	var out domain.MoodEntry
	if err := c.call(ctx, httpclient.Request{Method: http.MethodPut, Path: "/mood-entries/" + id(entryID), Query: q, Body: data}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteMoodEntry: DELETE /mood-entries/{id}.
func (c *Client) DeleteMoodEntry(ctx context.Context, entryID int64) (*domain.Message, error) {
	var out domain.Message
	if err := c.call(ctx, httpclient.Request{Method: http.MethodDelete, Path: "/mood-entries/" + id(entryID)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func userPath(userID int64, suffix string) string {
	return "/mood-entries/user/" + id(userID) + "/" + suffix
}

func daysQuery(days, def int) url.Values {
	if days <= 0 {
		days = def
	}
	q := url.Values{}
	q.Set("days", strconv.Itoa(days))
	return q
}

func periodQuery(p domain.Period) url.Values {
	if p == "" {
		p = domain.DefaultPeriod
	}
	q := url.Values{}
	q.Set("period", string(p))
	return q
}

// GetUserRecentEntries: GET /mood-entries/user/{id}/recent?days=.
func (c *Client) GetUserRecentEntries(ctx context.Context, userID int64, days int) ([]domain.MoodEntry, error) {
	return c.entries(ctx, userPath(userID, "recent"), daysQuery(days, DefaultRecentDays))
}

// GetUserMoodStats: GET /mood-entries/user/{id}/stats.
func (c *Client) GetUserMoodStats(ctx context.Context, userID int64) (*domain.MoodStats, error) {
	var out domain.MoodStats
	if err := c.get(ctx, userPath(userID, "stats"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetUserMoodAnalytics: GET /mood-entries/user/{id}/analytics?period=.
func (c *Client) GetUserMoodAnalytics(ctx context.Context, userID int64, period domain.Period) (*domain.MoodAnalytics, error) {
	var out domain.MoodAnalytics
	if err := c.get(ctx, userPath(userID, "analytics"), periodQuery(period), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetUserMoodSummary: GET /mood-entries/user/{id}/summary?days=.
func (c *Client) GetUserMoodSummary(ctx context.Context, userID int64, days int) (*domain.MoodSummary, error) {
	var out domain.MoodSummary
	if err := c.get(ctx, userPath(userID, "summary"), daysQuery(days, DefaultSummaryDays), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetUserRecommendations: GET /mood-entries/user/{id}/recommendations.
func (c *Client) GetUserRecommendations(ctx context.Context, userID int64) (*domain.Recommendations, error) {
	var out domain.Recommendations
	if err := c.get(ctx, userPath(userID, "recommendations"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CheckTodayEntry: GET /mood-entries/user/{id}/check-today.
func (c *Client) CheckTodayEntry(ctx context.Context, userID int64) (*domain.TodayCheck, error) {
	var out domain.TodayCheck
	if err := c.get(ctx, userPath(userID, "check-today"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Аналитика ---

// GetDashboardData: GET /analytics/dashboard/{id}.
func (c *Client) GetDashboardData(ctx context.Context, userID int64) (*domain.DashboardData, error) {
	var out domain.DashboardData
	if err := c.get(ctx, "/analytics/dashboard/"+id(userID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetMoodTrends: GET /analytics/trends/{id}?period=.
func (c *Client) GetMoodTrends(ctx context.Context, userID int64, period domain.Period) (*domain.MoodTrends, error) {
	var out domain.MoodTrends
	if err := c.get(ctx, "/analytics/trends/"+id(userID), periodQuery(period), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateInsights: GET /analytics/insights/{id}?days=.
func (c *Client) GenerateInsights(ctx context.Context, userID int64, days int) (*domain.Insights, error) {
	var out domain.Insights
	if err := c.get(ctx, "/analytics/insights/"+id(userID), daysQuery(days, DefaultInsightsDays), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ComparePeriods: GET /analytics/compare-periods/{id}?current_days=&previous_days=.
func (c *Client) ComparePeriods(ctx context.Context, userID int64, currentDays, previousDays int) (*domain.PeriodComparison, error) {
	if currentDays <= 0 {
		currentDays = DefaultCompareDays
	}
	if previousDays <= 0 {
		previousDays = DefaultCompareDays
	}
	q := url.Values{}
	q.Set("current_days", strconv.Itoa(currentDays))
	q.Set("previous_days", strconv.Itoa(previousDays))

	var out domain.PeriodComparison
	if err := c.get(ctx, "/analytics/compare-periods/"+id(userID), q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetGlobalStats: GET /analytics/global-stats.
func (c *Client) GetGlobalStats(ctx context.Context) (*domain.GlobalStats, error) {
	var out domain.GlobalStats
	if err := c.get(ctx, "/analytics/global-stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

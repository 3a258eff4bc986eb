package domain

import (
	"fmt"
	"strings"
)

// Period — период аналитики.
type Period string

const (
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
	PeriodYear    Period = "year"
)

// DefaultPeriod используется, когда период не выбран.
const DefaultPeriod = PeriodMonth

// ParsePeriod разбирает строковое представление периода.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case PeriodWeek, PeriodMonth, PeriodQuarter, PeriodYear:
		return p, nil
	case "":
		return DefaultPeriod, nil
	default:
		return "", fmt.Errorf("unknown period %q: expected week, month, quarter or year", s)
	}
}

// Days возвращает длину периода в днях.
func (p Period) Days() int {
	switch p {
	case PeriodWeek:
		return 7
	case PeriodQuarter:
		return 90
	case PeriodYear:
		return 365
	default:
		return 30
	}
}

// Направления тренда настроения.
const (
	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendStable    = "stable"
	TrendNoData    = "no_data"
)

// MoodStats — статистика пользователя (/mood-entries/user/{id}/stats).
type MoodStats struct {
	UserID        int64   `json:"user_id,omitempty"`
	TotalEntries  int     `json:"total_entries"`
	AverageMood   float64 `json:"average_mood"`
	MoodTrend     string  `json:"mood_trend,omitempty"`
	StreakDays    int     `json:"streak_days"`
	LastEntryDate *string `json:"last_entry_date"`
}

// Validate проверяет статистику.
func (s *MoodStats) Validate() error {
	if s.TotalEntries < 0 || s.StreakDays < 0 {
		return invalid("stats counters must be non-negative")
	}
	switch s.MoodTrend {
	case "", TrendImproving, TrendDeclining, TrendStable, TrendNoData:
		return nil
	default:
		return invalid("stats.mood_trend unknown value %q", s.MoodTrend)
	}
}

// MoodDistribution — распределение оценок по категориям.
type MoodDistribution struct {
	Positive int `json:"positive"`
	Neutral  int `json:"neutral"`
	Negative int `json:"negative"`
}

// DailyAverage — средняя оценка за день.
type DailyAverage struct {
	Date         string  `json:"date"`
	AverageMood  float64 `json:"average_mood"`
	EntriesCount int     `json:"entries_count"`
}

// MoodAnalytics — аналитика за период.
type MoodAnalytics struct {
	Period           string           `json:"period"`
	AverageMood      float64          `json:"average_mood"`
	MoodDistribution MoodDistribution `json:"mood_distribution"`
	DailyAverages    []DailyAverage   `json:"daily_averages"`
	TotalEntries     int              `json:"total_entries"`
}

// Validate проверяет аналитику.
func (a *MoodAnalytics) Validate() error {
	if a.Period == "" {
		return invalid("analytics.period is required")
	}
	return nil
}

// TrendPoint — точка ряда средних оценок.
type TrendPoint struct {
	Date         string  `json:"date"`
	AverageMood  float64 `json:"average_mood"`
	EntriesCount int     `json:"entries_count"`
}

// EmotionPoint — точка ряда интенсивности эмоции.
type EmotionPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// MoodTrends соответствует ответу /analytics/trends/{userId}.
type MoodTrends struct {
	Period        string                    `json:"period"`
	StartDate     string                    `json:"start_date"`
	EndDate       string                    `json:"end_date"`
	MoodTrend     []TrendPoint              `json:"mood_trend"`
	EmotionTrends map[string][]EmotionPoint `json:"emotion_trends"`
	AverageMood   float64                   `json:"average_mood"`
}

// Validate проверяет наличие периода и дат в каждой точке.
func (t *MoodTrends) Validate() error {
	if t.Period == "" {
		return invalid("trends.period is required")
	}
	for i, p := range t.MoodTrend {
		if p.Date == "" {
			return invalid("trends.mood_trend[%d].date is empty", i)
		}
	}
	for emotion, points := range t.EmotionTrends {
		for i, p := range points {
			if p.Date == "" {
				return invalid("trends.emotion_trends[%s][%d].date is empty", emotion, i)
			}
		}
	}
	return nil
}

// MoodSummary — сводка настроения за N дней.
type MoodSummary struct {
	PeriodDays            int                `json:"period_days"`
	TotalEntries          int                `json:"total_entries"`
	AverageMood           float64            `json:"average_mood,omitempty"`
	MoodTrend             string             `json:"mood_trend,omitempty"`
	DominantEmotion       string             `json:"dominant_emotion,omitempty"`
	EmotionAverages       map[string]float64 `json:"emotion_averages,omitempty"`
	SentimentDistribution map[string]int     `json:"sentiment_distribution,omitempty"`
	LatestEntryDate       *string            `json:"latest_entry_date,omitempty"`
	Message               string             `json:"message,omitempty"`
	Error                 string             `json:"error,omitempty"`
}

// Validate проверяет сводку.
func (s *MoodSummary) Validate() error {
	if s.PeriodDays < 0 || s.TotalEntries < 0 {
		return invalid("summary counters must be non-negative")
	}
	return nil
}

// Recommendations — персональные рекомендации.
type Recommendations struct {
	Message                string   `json:"message,omitempty"`
	Recommendations        []string `json:"recommendations,omitempty"`
	AverageMood            float64  `json:"average_mood,omitempty"`
	Period                 string   `json:"period,omitempty"`
	AIRecommendations      []string `json:"ai_recommendations,omitempty"`
	GeneralRecommendations []string `json:"general_recommendations,omitempty"`
	TotalEntriesAnalyzed   int      `json:"total_entries_analyzed,omitempty"`
	Error                  string   `json:"error,omitempty"`
}

// All возвращает все рекомендации одним списком.
func (r *Recommendations) All() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.Recommendations)+len(r.AIRecommendations)+len(r.GeneralRecommendations))
	out = append(out, r.Recommendations...)
	out = append(out, r.AIRecommendations...)
	out = append(out, r.GeneralRecommendations...)
	return out
}

// Validate проверяет, что ответ содержит хотя бы что-то полезное.
func (r *Recommendations) Validate() error {
	if r.Message == "" && r.Error == "" && len(r.All()) == 0 && r.TotalEntriesAnalyzed == 0 {
		return invalid("recommendations payload is empty")
	}
	return nil
}

// Insights соответствует ответу /analytics/insights/{userId}.
type Insights struct {
	PeriodDays      int          `json:"period_days,omitempty"`
	EntriesAnalyzed int          `json:"entries_analyzed,omitempty"`
	AIInsights      string       `json:"ai_insights,omitempty"`
	Summary         *MoodSummary `json:"summary,omitempty"`
	Message         string       `json:"message,omitempty"`
	Recommendations []string     `json:"recommendations,omitempty"`
	Error           string       `json:"error,omitempty"`
}

// Validate различает два варианта ответа: с инсайтами и "недостаточно данных".
func (i *Insights) Validate() error {
	if i.Message != "" {
		return nil
	}
	if i.PeriodDays <= 0 {
		return invalid("insights.period_days must be positive")
	}
	if i.Summary != nil {
		return i.Summary.Validate()
	}
	return nil
}

// PeriodStats — статистика одного из сравниваемых периодов.
type PeriodStats struct {
	EntriesCount     int                `json:"entries_count"`
	AverageMood      float64            `json:"average_mood"`
	MoodDistribution MoodDistribution   `json:"mood_distribution"`
	DominantEmotions map[string]float64 `json:"dominant_emotions"`
}

// PeriodWindow описывает границы периода.
type PeriodWindow struct {
	Days      int         `json:"days"`
	StartDate string      `json:"start_date"`
	EndDate   string      `json:"end_date"`
	Stats     PeriodStats `json:"stats"`
}

// PeriodDelta — разница между периодами.
type PeriodDelta struct {
	MoodChange    float64 `json:"mood_change"`
	MoodTrend     string  `json:"mood_trend"`
	EntriesChange int     `json:"entries_change"`
}

// PeriodComparison соответствует ответу /analytics/compare-periods/{userId}.
type PeriodComparison struct {
	CurrentPeriod  PeriodWindow `json:"current_period"`
	PreviousPeriod PeriodWindow `json:"previous_period"`
	Comparison     PeriodDelta  `json:"comparison"`
}

// Validate проверяет сравнение периодов.
func (c *PeriodComparison) Validate() error {
	if c.CurrentPeriod.Days <= 0 || c.PreviousPeriod.Days <= 0 {
		return invalid("compare-periods: days must be positive")
	}
	return nil
}

// GlobalStats — статистика по всем пользователям.
type GlobalStats struct {
	Users struct {
		Total    int `json:"total"`
		Active   int `json:"active"`
		Inactive int `json:"inactive"`
	} `json:"users"`
	Entries struct {
		Total          int     `json:"total"`
		AveragePerUser float64 `json:"average_per_user"`
	} `json:"entries"`
	Mood struct {
		GlobalAverage   float64 `json:"global_average"`
		TotalMoodPoints int     `json:"total_mood_points"`
	} `json:"mood"`
}

// Validate проверяет глобальную статистику.
func (g *GlobalStats) Validate() error {
	if g.Users.Total < 0 || g.Entries.Total < 0 {
		return invalid("global stats counters must be non-negative")
	}
	return nil
}

// DashboardData — агрегированный ответ /analytics/dashboard/{userId}.
type DashboardData struct {
	User             *User            `json:"user,omitempty"`
	Summary          *MoodSummary     `json:"summary,omitempty"`
	RecentEntries    []MoodEntry      `json:"recent_entries"`
	MonthlyAnalytics *MoodAnalytics   `json:"monthly_analytics,omitempty"`
	Recommendations  *Recommendations `json:"recommendations,omitempty"`
	Stats            *MoodStats       `json:"stats,omitempty"`
}

// Validate проверяет все вложенные части дашборда.
func (d *DashboardData) Validate() error {
	if d.User != nil {
		if err := d.User.Validate(); err != nil {
			return err
		}
	}
	if err := ValidateEntries(d.RecentEntries); err != nil {
		return err
	}
	if d.Stats != nil {
		if err := d.Stats.Validate(); err != nil {
			return err
		}
	}
	if d.MonthlyAnalytics != nil {
		if err := d.MonthlyAnalytics.Validate(); err != nil {
			return err
		}
	}
	if d.Summary != nil {
		if err := d.Summary.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Health соответствует ответу /health.
type Health struct {
	Status  string `json:"status"`
	Service string `json:"service,omitempty"`
	Version string `json:"version,omitempty"`
}

// Validate проверяет ответ health-check.
func (h *Health) Validate() error {
	if h.Status == "" {
		return invalid("health.status is required")
	}
	return nil
}

// Message — простой ответ вида {"message": "..."}.
type Message struct {
	Message string `json:"message"`
}

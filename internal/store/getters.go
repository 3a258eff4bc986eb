package store

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"mood-diary/internal/domain"
)

// Оформление графиков.
const (
	moodChartLabel      = "Настроение"
	moodChartColor      = "#1976D2"
	moodChartBackground = "rgba(25, 118, 210, 0.1)"
	chartTension        = 0.4
)

var emotionColors = []string{"#FF6384", "#36A2EB", "#FFCE56", "#4BC0C0", "#9966FF", "#FF9F40"}

// Dataset — один ряд графика.
type Dataset struct {
	Label           string    `json:"label"`
	Data            []float64 `json:"data"`
	BorderColor     string    `json:"borderColor"`
	BackgroundColor string    `json:"backgroundColor"`
	Tension         float64   `json:"tension"`
}

// ChartData — подписи оси X и ряды значений.
type ChartData struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// AverageMood — средняя оценка последних записей с точностью до десятых.
func (s *Store) AverageMood() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.state.RecentEntries
	if len(entries) == 0 {
		return 0
	}
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(decimal.NewFromFloat(e.MoodScore))
	}
	avg, _ := total.Div(decimal.NewFromInt(int64(len(entries)))).Round(1).Float64()
	return avg
}

// MoodTrend — направление тренда из статистики, по умолчанию "stable".
func (s *Store) MoodTrend() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.MoodStats == nil || s.state.MoodStats.MoodTrend == "" {
		return domain.TrendStable
	}
	return s.state.MoodStats.MoodTrend
}

// HasEntryToday сообщает, начинается ли дата какой-либо из последних записей
// с сегодняшней даты UTC в формате YYYY-MM-DD.
func (s *Store) HasEntryToday() bool {
	today := s.now().UTC().Format("2006-01-02")

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.state.RecentEntries {
		if e.EntryDate != "" && strings.HasPrefix(e.EntryDate, today) {
			return true
		}
	}
	return false
}

// CurrentStreak — серия дней подряд из статистики, по умолчанию 0.
func (s *Store) CurrentStreak() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.MoodStats == nil {
		return 0
	}
	return s.state.MoodStats.StreakDays
}

// ChartData возвращает ряд средних оценок для графика или nil,
// если тренды не загружены.
func (s *Store) ChartData() *ChartData {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trends := s.state.MoodTrends
	if trends == nil || trends.MoodTrend == nil {
		return nil
	}

	labels := make([]string, len(trends.MoodTrend))
	data := make([]float64, len(trends.MoodTrend))
	for i, p := range trends.MoodTrend {
		labels[i] = shortDateLabel(p.Date)
		data[i] = p.AverageMood
	}

	return &ChartData{
		Labels: labels,
		Datasets: []Dataset{{
			Label:           moodChartLabel,
			Data:            data,
			BorderColor:     moodChartColor,
			BackgroundColor: moodChartBackground,
			Tension:         chartTension,
		}},
	}
}

// EmotionTrendsData возвращает ряды эмоций или nil, если тренды не загружены.
// Подписи берутся из дат ряда настроения (либо из объединения дат эмоций),
// каждый ряд выравнивается по подписям, пропуски заполняются нулем.
func (s *Store) EmotionTrendsData() *ChartData {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trends := s.state.MoodTrends
	if trends == nil || trends.EmotionTrends == nil {
		return nil
	}

	dates := trendDates(trends)
	labels := make([]string, len(dates))
	for i, d := range dates {
		labels[i] = shortDateLabel(d)
	}

	emotions := make([]string, 0, len(trends.EmotionTrends))
	for emotion := range trends.EmotionTrends {
		emotions = append(emotions, emotion)
	}
	sort.Strings(emotions)

	datasets := make([]Dataset, 0, len(emotions))
	for i, emotion := range emotions {
		byDate := make(map[string]float64, len(trends.EmotionTrends[emotion]))
		for _, p := range trends.EmotionTrends[emotion] {
			byDate[p.Date] = p.Value
		}
		data := make([]float64, len(dates))
		for j, d := range dates {
			data[j] = byDate[d]
		}

		color := emotionColors[i%len(emotionColors)]
		datasets = append(datasets, Dataset{
			Label:           emotion,
			Data:            data,
			BorderColor:     color,
			BackgroundColor: color + "20",
			Tension:         chartTension,
		})
	}

	return &ChartData{Labels: labels, Datasets: datasets}
}

func trendDates(t *domain.MoodTrends) []string {
	if t.MoodTrend != nil {
		dates := make([]string, len(t.MoodTrend))
		for i, p := range t.MoodTrend {
			dates[i] = p.Date
		}
		return dates
	}

	seen := make(map[string]struct{})
	var dates []string
	for _, points := range t.EmotionTrends {
		for _, p := range points {
			if _, ok := seen[p.Date]; !ok {
				seen[p.Date] = struct{}{}
				dates = append(dates, p.Date)
			}
		}
	}
	sort.Strings(dates)
	if dates == nil {
		dates = []string{}
	}
	return dates
}

// Сокращенные названия месяцев в родительном падеже, как в ru-RU.
var ruShortMonths = [...]string{
	"янв.", "февр.", "мар.", "апр.", "мая", "июн.",
	"июл.", "авг.", "сент.", "окт.", "нояб.", "дек.",
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999",
}

// shortDateLabel форматирует дату как "2 янв.". Нераспознанная дата
// возвращается без изменений.
func shortDateLabel(raw string) string {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return fmt.Sprintf("%d %s", t.Day(), ruShortMonths[t.Month()-1])
		}
	}
	return raw
}

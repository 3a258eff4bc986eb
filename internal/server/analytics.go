package server

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"mood-diary/internal/domain"
)

// Пороги категорий и тренда.
const (
	positiveThreshold = 7
	neutralThreshold  = 4
	trendDelta        = 0.5
	statsWindow       = 7
	recommendWindow   = 5
	insightsWindow    = 10
)

const (
	noEntriesMessage       = "Нет записей за указанный период"
	noDataForRecommend     = "Недостаточно данных для рекомендаций"
	noDataForInsights      = "Недостаточно данных для генерации инсайтов"
	undefinedEmotion       = "неопределено"
	recommendPeriodLabel   = "последние 5 записей"
	summaryTrendImproving  = "улучшается 📈"
	summaryTrendDeclining  = "ухудшается 📉"
	summaryTrendStable     = "стабильно ➡️"
	summaryTrendNotEnough  = "недостаточно данных"
	summaryDateLayout      = "02.01.2006"
	recommendationsSummary = 3
)

var (
	starterRecommendations = []string{
		"Начните вести дневник настроения регулярно",
		"Записывайте не только оценку, но и подробности дня",
	}
	starterInsights = []string{
		"Начните вести дневник настроения регулярно",
		"Записывайте подробности о своем дне и эмоциях",
	}
	lowMoodRecommendations = []string{
		"🌱 Рассмотрите возможность обращения к специалисту",
		"🚶‍♀️ Попробуйте ежедневные прогулки на свежем воздухе",
		"🧘‍♀️ Практикуйте техники релаксации или медитацию",
	}
	midMoodRecommendations = []string{
		"💪 Добавьте физическую активность в свой день",
		"👥 Проводите больше времени с близкими людьми",
		"🎯 Поставьте себе небольшие достижимые цели",
	}
	highMoodRecommendations = []string{
		"✨ Продолжайте в том же духе!",
		"📚 Попробуйте изучить что-то новое",
		"🤝 Поделитесь своим позитивом с окружающими",
	}
)

func round(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

func meanScore(entries []domain.MoodEntry) float64 {
	if len(entries) == 0 {
		return 0
	}
	sum := 0.0
	for _, e := range entries {
		sum += e.MoodScore
	}
	return sum / float64(len(entries))
}

func distribution(entries []domain.MoodEntry) domain.MoodDistribution {
	var d domain.MoodDistribution
	for _, e := range entries {
		switch {
		case e.MoodScore >= positiveThreshold:
			d.Positive++
		case e.MoodScore >= neutralThreshold:
			d.Neutral++
		default:
			d.Negative++
		}
	}
	return d
}

func trendDirection(recent, previous float64) string {
	switch {
	case recent > previous+trendDelta:
		return domain.TrendImproving
	case recent < previous-trendDelta:
		return domain.TrendDeclining
	default:
		return domain.TrendStable
	}
}

// emotionAverages усредняет эмоции из AI-анализа записей.
func emotionAverages(entries []domain.MoodEntry) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, e := range entries {
		if e.AIAnalysis == nil {
			continue
		}
		for emotion, v := range e.AIAnalysis.Emotions {
			sums[emotion] += v
			counts[emotion]++
		}
	}
	out := make(map[string]float64, len(sums))
	for emotion, total := range sums {
		out[emotion] = round(total/float64(counts[emotion]), 2)
	}
	return out
}

// UserStats считает статистику по всем записям пользователя.
// entries упорядочены от новых к старым.
func UserStats(entries []domain.MoodEntry, now time.Time) domain.MoodStats {
	if len(entries) == 0 {
		return domain.MoodStats{MoodTrend: domain.TrendNoData}
	}

	recent := entries[:min(statsWindow, len(entries))]
	var previous []domain.MoodEntry
	if len(entries) > statsWindow {
		previous = entries[statsWindow:min(2*statsWindow, len(entries))]
	}
	trend := domain.TrendStable
	if len(previous) > 0 {
		trend = trendDirection(meanScore(recent), meanScore(previous))
	}

	last := entries[0].EntryDate
	return domain.MoodStats{
		TotalEntries:  len(entries),
		AverageMood:   round(meanScore(entries), 2),
		MoodTrend:     trend,
		StreakDays:    streak(entries, now),
		LastEntryDate: &last,
	}
}

// streak — число дней подряд с записями, считая назад от сегодняшнего.
func streak(entries []domain.MoodEntry, now time.Time) int {
	days := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		days[entryDay(e)] = struct{}{}
	}
	n := 0
	for day := now.UTC(); ; day = day.AddDate(0, 0, -1) {
		if _, ok := days[day.Format(dateLayout)]; !ok {
			return n
		}
		n++
	}
}

// PeriodAnalytics строит аналитику по записям окна периода.
func PeriodAnalytics(entries []domain.MoodEntry, period domain.Period) domain.MoodAnalytics {
	a := domain.MoodAnalytics{
		Period:        string(period),
		DailyAverages: []domain.DailyAverage{},
	}
	if len(entries) == 0 {
		return a
	}

	a.AverageMood = round(meanScore(entries), 2)
	a.MoodDistribution = distribution(entries)
	a.TotalEntries = len(entries)

	for _, b := range bucketize(entries, func(t time.Time) time.Time { return t }) {
		a.DailyAverages = append(a.DailyAverages, domain.DailyAverage{
			Date:         b.key,
			AverageMood:  round(meanScore(b.entries), 2),
			EntriesCount: len(b.entries),
		})
	}
	return a
}

type bucket struct {
	key     string
	entries []domain.MoodEntry
}

// bucketize группирует записи по дате, приведенной функцией keyOf,
// и возвращает группы по возрастанию даты.
func bucketize(entries []domain.MoodEntry, keyOf func(time.Time) time.Time) []bucket {
	index := make(map[string]int)
	var out []bucket
	for _, e := range entries {
		key := keyOf(entryTime(e)).Format(dateLayout)
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, bucket{key: key})
		}
		out[i].entries = append(out[i].entries, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].key < out[j].key })
	return out
}

// trendGrouping — шаг группировки ряда для периода.
func trendGrouping(p domain.Period) func(time.Time) time.Time {
	switch p {
	case domain.PeriodQuarter:
		return func(t time.Time) time.Time {
			offset := (int(t.Weekday()) + 6) % 7
			return t.AddDate(0, 0, -offset)
		}
	case domain.PeriodYear:
		return func(t time.Time) time.Time {
			return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
		}
	default:
		return func(t time.Time) time.Time { return t }
	}
}

// Trends строит ряды средних оценок и эмоций за окно периода.
func Trends(entries []domain.MoodEntry, period domain.Period, start, end time.Time) domain.MoodTrends {
	t := domain.MoodTrends{
		Period:        string(period),
		StartDate:     start.UTC().Format(dateTimeLayout),
		EndDate:       end.UTC().Format(dateTimeLayout),
		MoodTrend:     []domain.TrendPoint{},
		EmotionTrends: map[string][]domain.EmotionPoint{},
	}
	if len(entries) == 0 {
		return t
	}

	for _, b := range bucketize(entries, trendGrouping(period)) {
		t.MoodTrend = append(t.MoodTrend, domain.TrendPoint{
			Date:         b.key,
			AverageMood:  round(meanScore(b.entries), 2),
			EntriesCount: len(b.entries),
		})
		for emotion, v := range emotionAverages(b.entries) {
			t.EmotionTrends[emotion] = append(t.EmotionTrends[emotion], domain.EmotionPoint{Date: b.key, Value: v})
		}
	}
	t.AverageMood = round(meanScore(entries), 2)
	return t
}

// Summary сводит записи за последние days дней.
func Summary(entries []domain.MoodEntry, days int) domain.MoodSummary {
	if len(entries) == 0 {
		return domain.MoodSummary{PeriodDays: days, Message: noEntriesMessage}
	}

	averages := emotionAverages(entries)
	dominant := undefinedEmotion
	best := -1.0
	for emotion, v := range averages {
		if v > best || (v == best && emotion < dominant) {
			dominant, best = emotion, v
		}
	}

	sentiments := map[string]int{"positive": 0, "negative": 0, "neutral": 0}
	for _, e := range entries {
		if e.AIAnalysis == nil {
			continue
		}
		if _, ok := sentiments[e.AIAnalysis.SentimentLabel]; ok {
			sentiments[e.AIAnalysis.SentimentLabel]++
		}
	}

	trend := summaryTrendNotEnough
	if len(entries) >= 3 {
		switch trendDirection(meanScore(entries[:3]), meanScore(entries[len(entries)-3:])) {
		case domain.TrendImproving:
			trend = summaryTrendImproving
		case domain.TrendDeclining:
			trend = summaryTrendDeclining
		default:
			trend = summaryTrendStable
		}
	}

	latest := entryTime(entries[0]).Format(summaryDateLayout)
	return domain.MoodSummary{
		PeriodDays:            days,
		TotalEntries:          len(entries),
		AverageMood:           round(meanScore(entries), 1),
		MoodTrend:             trend,
		DominantEmotion:       dominant,
		EmotionAverages:       averages,
		SentimentDistribution: sentiments,
		LatestEntryDate:       &latest,
	}
}

// Recommend подбирает рекомендации по последним записям.
func Recommend(entries []domain.MoodEntry) domain.Recommendations {
	if len(entries) == 0 {
		return domain.Recommendations{
			Message:         noDataForRecommend,
			Recommendations: append([]string(nil), starterRecommendations...),
		}
	}

	latest := entries[:min(recommendWindow, len(entries))]
	var fromAnalysis []string
	for _, e := range latest {
		if e.AIAnalysis != nil && e.AIAnalysis.Recommendations != "" {
			fromAnalysis = append(fromAnalysis, e.AIAnalysis.Recommendations)
		}
	}
	if len(fromAnalysis) > recommendationsSummary {
		fromAnalysis = fromAnalysis[len(fromAnalysis)-recommendationsSummary:]
	}

	avg := meanScore(latest)
	general := highMoodRecommendations
	switch {
	case avg < 4:
		general = lowMoodRecommendations
	case avg < 6:
		general = midMoodRecommendations
	}

	return domain.Recommendations{
		AverageMood:            round(avg, 1),
		Period:                 recommendPeriodLabel,
		AIRecommendations:      fromAnalysis,
		GeneralRecommendations: append([]string(nil), general...),
		TotalEntriesAnalyzed:   len(latest),
	}
}

// GenerateInsights собирает инсайты за days дней.
func GenerateInsights(entries []domain.MoodEntry, days int) domain.Insights {
	if len(entries) == 0 {
		return domain.Insights{
			Message:         noDataForInsights,
			Recommendations: append([]string(nil), starterInsights...),
		}
	}
	sum := Summary(entries, days)
	return domain.Insights{
		PeriodDays:      days,
		EntriesAnalyzed: min(insightsWindow, len(entries)),
		AIInsights:      trendInsight(sum),
		Summary:         &sum,
	}
}

// PeriodStatistics — статистика одного окна сравнения.
func PeriodStatistics(entries []domain.MoodEntry) domain.PeriodStats {
	s := domain.PeriodStats{DominantEmotions: emotionAverages(entries)}
	if len(entries) == 0 {
		return s
	}
	s.EntriesCount = len(entries)
	s.AverageMood = round(meanScore(entries), 2)
	s.MoodDistribution = distribution(entries)
	return s
}

// Compare сравнивает два соседних окна.
func Compare(current, previous domain.PeriodWindow) domain.PeriodComparison {
	change := round(current.Stats.AverageMood-previous.Stats.AverageMood, 2)
	trend := domain.TrendStable
	switch {
	case change > trendDelta:
		trend = domain.TrendImproving
	case change < -trendDelta:
		trend = domain.TrendDeclining
	}
	return domain.PeriodComparison{
		CurrentPeriod:  current,
		PreviousPeriod: previous,
		Comparison: domain.PeriodDelta{
			MoodChange:    change,
			MoodTrend:     trend,
			EntriesChange: current.Stats.EntriesCount - previous.Stats.EntriesCount,
		},
	}
}

// Global считает статистику по всем пользователям.
func Global(users domain.UsersSummary, scores []float64) domain.GlobalStats {
	var g domain.GlobalStats
	g.Users.Total = users.TotalUsers
	g.Users.Active = users.ActiveUsers
	g.Users.Inactive = users.InactiveUsers
	g.Entries.Total = len(scores)
	if users.TotalUsers > 0 {
		g.Entries.AveragePerUser = round(float64(len(scores))/float64(users.TotalUsers), 1)
	}
	if len(scores) > 0 {
		sum := 0.0
		for _, s := range scores {
			sum += s
		}
		g.Mood.GlobalAverage = round(sum/float64(len(scores)), 2)
	}
	g.Mood.TotalMoodPoints = len(scores)
	return g
}

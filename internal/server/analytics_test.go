package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mood-diary/internal/domain"
)

var fixedNow = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

func entryOn(id int64, score float64, date string, emotions map[string]float64) domain.MoodEntry {
	e := domain.MoodEntry{ID: id, UserID: 1, MoodScore: score, MoodText: "текст", EntryDate: date + "T09:00:00"}
	if emotions != nil {
		e.AIAnalysis = &domain.AIAnalysis{Emotions: emotions, SentimentLabel: "positive"}
	}
	return e
}

// daysBack строит записи по одной на день, начиная с fixedNow и назад.
func daysBack(scores ...float64) []domain.MoodEntry {
	out := make([]domain.MoodEntry, len(scores))
	for i, s := range scores {
		out[i] = entryOn(int64(i+1), s, fixedNow.AddDate(0, 0, -i).Format(dateLayout), nil)
	}
	return out
}

func TestUserStats(t *testing.T) {
	t.Run("no entries", func(t *testing.T) {
		s := UserStats(nil, fixedNow)
		assert.Equal(t, domain.TrendNoData, s.MoodTrend)
		assert.Zero(t, s.TotalEntries)
		assert.Nil(t, s.LastEntryDate)
		require.NoError(t, s.Validate())
	})

	t.Run("improvement over previous week", func(t *testing.T) {
		s := UserStats(daysBack(8, 8, 8, 8, 8, 8, 8, 4, 4, 4, 4, 4, 4, 4), fixedNow)
		assert.Equal(t, domain.TrendImproving, s.MoodTrend)
		assert.Equal(t, 14, s.TotalEntries)
		assert.Equal(t, 6.0, s.AverageMood)
		assert.Equal(t, 14, s.StreakDays)
		require.NotNil(t, s.LastEntryDate)
		assert.Equal(t, "2024-01-15T09:00:00", *s.LastEntryDate)
	})

	t.Run("less than a week of entries is stable", func(t *testing.T) {
		s := UserStats(daysBack(1, 10), fixedNow)
		assert.Equal(t, domain.TrendStable, s.MoodTrend)
	})

	t.Run("streak breaks on missed day", func(t *testing.T) {
		entries := []domain.MoodEntry{
			entryOn(1, 5, "2024-01-15", nil),
			entryOn(2, 5, "2024-01-14", nil),
			entryOn(3, 5, "2024-01-13", nil),
			entryOn(4, 5, "2024-01-11", nil),
		}
		assert.Equal(t, 3, UserStats(entries, fixedNow).StreakDays)
	})

	t.Run("no entry today means zero streak", func(t *testing.T) {
		entries := []domain.MoodEntry{entryOn(1, 5, "2024-01-14", nil)}
		assert.Zero(t, UserStats(entries, fixedNow).StreakDays)
	})
}

func TestPeriodAnalytics(t *testing.T) {
	entries := []domain.MoodEntry{
		entryOn(1, 9, "2024-01-15", nil),
		entryOn(2, 5, "2024-01-15", nil),
		entryOn(3, 2, "2024-01-12", nil),
	}

	a := PeriodAnalytics(entries, domain.PeriodWeek)

	assert.Equal(t, "week", a.Period)
	assert.Equal(t, 5.33, a.AverageMood)
	assert.Equal(t, domain.MoodDistribution{Positive: 1, Neutral: 1, Negative: 1}, a.MoodDistribution)
	assert.Equal(t, []domain.DailyAverage{
		{Date: "2024-01-12", AverageMood: 2, EntriesCount: 1},
		{Date: "2024-01-15", AverageMood: 7, EntriesCount: 2},
	}, a.DailyAverages)

	empty := PeriodAnalytics(nil, domain.PeriodMonth)
	assert.NotNil(t, empty.DailyAverages)
	assert.Zero(t, empty.TotalEntries)
}

func TestTrends(t *testing.T) {
	entries := []domain.MoodEntry{
		entryOn(1, 8, "2024-01-17", map[string]float64{"радость": 0.8}),
		entryOn(2, 6, "2024-01-15", map[string]float64{"радость": 0.6}),
		entryOn(3, 4, "2024-01-10", map[string]float64{"грусть": 0.4}),
	}
	start, end := fixedNow.AddDate(0, 0, -90), fixedNow

	t.Run("quarter groups by mondays", func(t *testing.T) {
		tr := Trends(entries, domain.PeriodQuarter, start, end)

		require.Len(t, tr.MoodTrend, 2)
		assert.Equal(t, domain.TrendPoint{Date: "2024-01-08", AverageMood: 4, EntriesCount: 1}, tr.MoodTrend[0])
		assert.Equal(t, domain.TrendPoint{Date: "2024-01-15", AverageMood: 7, EntriesCount: 2}, tr.MoodTrend[1])
		assert.Equal(t, []domain.EmotionPoint{{Date: "2024-01-15", Value: 0.7}}, tr.EmotionTrends["радость"])
		assert.Equal(t, []domain.EmotionPoint{{Date: "2024-01-08", Value: 0.4}}, tr.EmotionTrends["грусть"])
		assert.Equal(t, 6.0, tr.AverageMood)
		require.NoError(t, tr.Validate())
	})

	t.Run("year groups by months", func(t *testing.T) {
		tr := Trends(entries, domain.PeriodYear, start, end)
		require.Len(t, tr.MoodTrend, 1)
		assert.Equal(t, "2024-01-01", tr.MoodTrend[0].Date)
		assert.Equal(t, 3, tr.MoodTrend[0].EntriesCount)
	})

	t.Run("month groups by days", func(t *testing.T) {
		tr := Trends(entries, domain.PeriodMonth, start, end)
		assert.Len(t, tr.MoodTrend, 3)
	})

	t.Run("empty period", func(t *testing.T) {
		tr := Trends(nil, domain.PeriodWeek, start, end)
		assert.Equal(t, "week", tr.Period)
		assert.Empty(t, tr.MoodTrend)
		assert.NotNil(t, tr.MoodTrend)
		assert.NotNil(t, tr.EmotionTrends)
		assert.Equal(t, "2024-01-15T10:30:00", tr.EndDate)
	})
}

func TestSummary(t *testing.T) {
	t.Run("no entries", func(t *testing.T) {
		s := Summary(nil, 7)
		assert.Equal(t, 7, s.PeriodDays)
		assert.Equal(t, "Нет записей за указанный период", s.Message)
	})

	t.Run("trend and dominant emotion", func(t *testing.T) {
		entries := daysBack(9, 9, 9, 3, 3, 3)
		entries[0].AIAnalysis = &domain.AIAnalysis{Emotions: map[string]float64{"радость": 0.9, "грусть": 0.1}, SentimentLabel: "positive"}
		entries[5].AIAnalysis = &domain.AIAnalysis{Emotions: map[string]float64{"грусть": 0.7}, SentimentLabel: "negative"}

		s := Summary(entries, 7)

		assert.Equal(t, 6, s.TotalEntries)
		assert.Equal(t, 6.0, s.AverageMood)
		assert.Equal(t, "улучшается 📈", s.MoodTrend)
		assert.Equal(t, "радость", s.DominantEmotion)
		assert.Equal(t, map[string]float64{"радость": 0.9, "грусть": 0.4}, s.EmotionAverages)
		assert.Equal(t, map[string]int{"positive": 1, "negative": 1, "neutral": 0}, s.SentimentDistribution)
		require.NotNil(t, s.LatestEntryDate)
		assert.Equal(t, "15.01.2024", *s.LatestEntryDate)
	})

	t.Run("too few entries for trend", func(t *testing.T) {
		s := Summary(daysBack(5, 5), 7)
		assert.Equal(t, "недостаточно данных", s.MoodTrend)
		assert.Equal(t, "неопределено", s.DominantEmotion)
	})
}

func TestRecommend(t *testing.T) {
	t.Run("no entries", func(t *testing.T) {
		r := Recommend(nil)
		assert.Equal(t, "Недостаточно данных для рекомендаций", r.Message)
		assert.Len(t, r.Recommendations, 2)
	})

	tests := []struct {
		name   string
		scores []float64
		first  string
	}{
		{"low mood", []float64{2, 3, 3}, lowMoodRecommendations[0]},
		{"medium mood", []float64{5, 5, 5}, midMoodRecommendations[0]},
		{"high mood", []float64{8, 9}, highMoodRecommendations[0]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Recommend(daysBack(tt.scores...))
			require.NotEmpty(t, r.GeneralRecommendations)
			assert.Equal(t, tt.first, r.GeneralRecommendations[0])
			assert.Equal(t, len(tt.scores), r.TotalEntriesAnalyzed)
			assert.Equal(t, "последние 5 записей", r.Period)
		})
	}

	t.Run("at most three analysis recommendations", func(t *testing.T) {
		entries := daysBack(7, 7, 7, 7, 7)
		for i := range entries {
			entries[i].AIAnalysis = Analyze(entries[i])
		}
		r := Recommend(entries)
		assert.Len(t, r.AIRecommendations, 3)
	})
}

func TestGenerateInsights(t *testing.T) {
	empty := GenerateInsights(nil, 30)
	assert.Equal(t, "Недостаточно данных для генерации инсайтов", empty.Message)
	require.NoError(t, empty.Validate())

	entries := daysBack(7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7)
	ins := GenerateInsights(entries, 30)
	assert.Equal(t, 30, ins.PeriodDays)
	assert.Equal(t, 10, ins.EntriesAnalyzed)
	assert.NotEmpty(t, ins.AIInsights)
	require.NotNil(t, ins.Summary)
	assert.Equal(t, 12, ins.Summary.TotalEntries)
	require.NoError(t, ins.Validate())
}

func TestCompareAndGlobal(t *testing.T) {
	cur := domain.PeriodWindow{Days: 30, Stats: PeriodStatistics(daysBack(7, 7))}
	prev := domain.PeriodWindow{Days: 30, Stats: PeriodStatistics(daysBack(5))}

	c := Compare(cur, prev)
	assert.Equal(t, 2.0, c.Comparison.MoodChange)
	assert.Equal(t, domain.TrendImproving, c.Comparison.MoodTrend)
	assert.Equal(t, 1, c.Comparison.EntriesChange)
	assert.NotNil(t, PeriodStatistics(nil).DominantEmotions)

	g := Global(domain.UsersSummary{TotalUsers: 2, ActiveUsers: 1, InactiveUsers: 1}, []float64{4, 6, 8})
	assert.Equal(t, 2, g.Users.Total)
	assert.Equal(t, 1, g.Users.Inactive)
	assert.Equal(t, 3, g.Entries.Total)
	assert.Equal(t, 1.5, g.Entries.AveragePerUser)
	assert.Equal(t, 6.0, g.Mood.GlobalAverage)
	assert.Equal(t, 3, g.Mood.TotalMoodPoints)
}

func TestAnalyze(t *testing.T) {
	a := Analyze(domain.MoodEntry{MoodScore: 8, Emotions: []string{"радость"}})
	assert.Equal(t, "positive", a.SentimentLabel)
	assert.Equal(t, "радость", a.DominantEmotion)
	assert.Equal(t, 0.6, a.Emotions["радость"])
	assert.Equal(t, 0.1, a.Emotions["грусть"])
	assert.Equal(t, []string{"радость"}, a.Keywords)
	assert.Contains(t, a.Insights, "8/10")
	assert.Contains(t, a.Insights, "хорошем")

	low := Analyze(domain.MoodEntry{MoodScore: 2})
	assert.Equal(t, "negative", low.SentimentLabel)
	assert.Equal(t, defaultKeywords, low.Keywords)
}

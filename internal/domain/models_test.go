package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		in      string
		want    Period
		wantErr bool
	}{
		{in: "week", want: PeriodWeek},
		{in: " Month ", want: PeriodMonth},
		{in: "quarter", want: PeriodQuarter},
		{in: "year", want: PeriodYear},
		{in: "", want: DefaultPeriod},
		{in: "decade", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePeriod(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPeriodDays(t *testing.T) {
	assert.Equal(t, 7, PeriodWeek.Days())
	assert.Equal(t, 30, PeriodMonth.Days())
	assert.Equal(t, 90, PeriodQuarter.Days())
	assert.Equal(t, 365, PeriodYear.Days())
}

func TestUserDisplayName(t *testing.T) {
	assert.Equal(t, "Иван Петров", User{FirstName: "Иван", LastName: "Петров"}.DisplayName())
	assert.Equal(t, "Иван", User{FirstName: "Иван"}.DisplayName())
	assert.Equal(t, "@ivan", User{Username: "ivan"}.DisplayName())
	assert.Equal(t, "user#5", User{ID: 5}.DisplayName())
}

func TestDashboardDataDecodeAndValidate(t *testing.T) {
	t.Run("Full dashboard response", func(t *testing.T) {
		raw := `{
			"user": {"id": 1, "telegram_id": 42, "username": "ivan", "is_active": true},
			"summary": {"period_days": 7, "total_entries": 2, "average_mood": 6.5},
			"recent_entries": [
				{"id": 10, "user_id": 1, "mood_score": 7, "entry_date": "2024-05-01T10:00:00"},
				{"id": 11, "user_id": 1, "mood_score": 6, "entry_date": "2024-05-02T10:00:00", "note": null}
			],
			"monthly_analytics": {"period": "month", "average_mood": 6.5, "mood_distribution": {"positive": 1, "neutral": 1, "negative": 0}, "daily_averages": []},
			"recommendations": {"general_recommendations": ["a", "b"], "average_mood": 6.5},
			"stats": {"total_entries": 2, "average_mood": 6.5, "mood_trend": "stable", "streak_days": 1, "last_entry_date": null}
		}`

		var d DashboardData
		require.NoError(t, json.Unmarshal([]byte(raw), &d))
		require.NoError(t, d.Validate())

		require.NotNil(t, d.User)
		assert.Equal(t, int64(42), d.User.TelegramID)
		assert.Len(t, d.RecentEntries, 2)
		assert.Nil(t, d.RecentEntries[1].Note)
		assert.Equal(t, "stable", d.Stats.MoodTrend)
		assert.Equal(t, []string{"a", "b"}, d.Recommendations.All())
	})

	t.Run("Invalid entry inside dashboard", func(t *testing.T) {
		d := DashboardData{RecentEntries: []MoodEntry{{ID: 0, MoodScore: 5}}}
		err := d.Validate()
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidPayload))
	})

	t.Run("Unknown trend direction", func(t *testing.T) {
		d := DashboardData{Stats: &MoodStats{MoodTrend: "sideways"}}
		assert.ErrorIs(t, d.Validate(), ErrInvalidPayload)
	})
}

func TestMoodTrendsValidate(t *testing.T) {
	valid := MoodTrends{
		Period:    "week",
		MoodTrend: []TrendPoint{{Date: "2024-05-01", AverageMood: 5}},
		EmotionTrends: map[string][]EmotionPoint{
			"радость": {{Date: "2024-05-01", Value: 0.7}},
		},
	}
	assert.NoError(t, valid.Validate())

	noPeriod := valid
	noPeriod.Period = ""
	assert.ErrorIs(t, noPeriod.Validate(), ErrInvalidPayload)

	badPoint := valid
	badPoint.EmotionTrends = map[string][]EmotionPoint{"грусть": {{Value: 1}}}
	assert.ErrorIs(t, badPoint.Validate(), ErrInvalidPayload)
}

func TestInsightsValidate(t *testing.T) {
	notEnough := Insights{Message: "Недостаточно данных для генерации инсайтов"}
	assert.NoError(t, notEnough.Validate())

	full := Insights{PeriodDays: 30, EntriesAnalyzed: 3, AIInsights: "ok", Summary: &MoodSummary{PeriodDays: 30}}
	assert.NoError(t, full.Validate())

	broken := Insights{}
	assert.ErrorIs(t, broken.Validate(), ErrInvalidPayload)
}

func TestTodayCheckValidate(t *testing.T) {
	assert.NoError(t, (&TodayCheck{}).Validate())
	assert.ErrorIs(t, (&TodayCheck{HasEntryToday: true}).Validate(), ErrInvalidPayload)
}

func TestMoodEntryCreateOmitsEmptyOptionalFields(t *testing.T) {
	data, err := json.Marshal(MoodEntryCreate{MoodScore: 8, EntryDate: "2024-05-01T00:00:00Z"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"mood_score": 8, "entry_date": "2024-05-01T00:00:00Z"}`, string(data))
}

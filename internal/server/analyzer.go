package server

import (
	"fmt"
	"strconv"

	"mood-diary/internal/domain"
)

const analysisRecommendation = "Попробуйте медитацию или прогулку на свежем воздухе для улучшения настроения."

var defaultKeywords = []string{"настроение", "день", "эмоции"}

// Analyze строит анализ записи по оценке настроения без обращения
// к внешней модели.
func Analyze(e domain.MoodEntry) *domain.AIAnalysis {
	s := e.MoodScore

	var (
		score    float64
		label    string
		dominant string
	)
	switch {
	case s >= 7:
		score, label, dominant = 0.7, "positive", "радость"
	case s >= 4:
		score, label, dominant = 0, "neutral", "спокойствие"
	default:
		score, label, dominant = -0.7, "negative", "грусть"
	}

	keywords := append(append([]string(nil), e.Emotions...), e.Activities...)
	if len(keywords) == 0 {
		keywords = append([]string(nil), defaultKeywords...)
	}

	return &domain.AIAnalysis{
		SentimentScore:  &score,
		SentimentLabel:  label,
		Emotions:        emotionProfile(s),
		DominantEmotion: dominant,
		Keywords:        keywords,
		Themes:          []string{"ежедневная жизнь"},
		Recommendations: analysisRecommendation,
		Insights: fmt.Sprintf("Текущая оценка настроения %s/10 говорит о %s эмоциональном состоянии.",
			strconv.FormatFloat(s, 'f', -1, 64), moodLevel(s)),
	}
}

func emotionProfile(s float64) map[string]float64 {
	return map[string]float64{
		"радость":       round(max(0.1, (s-5)/5), 2),
		"грусть":        round(max(0.1, (5-s)/5), 2),
		"тревога":       0.2,
		"спокойствие":   0.4,
		"раздражение":   0.1,
		"воодушевление": round(max(0.1, (s-6)/4), 2),
	}
}

func moodLevel(s float64) string {
	switch {
	case s >= 6:
		return "хорошем"
	case s >= 4:
		return "среднем"
	default:
		return "низком"
	}
}

// trendInsight описывает сводку за период одним абзацем.
func trendInsight(sum domain.MoodSummary) string {
	if sum.TotalEntries == 0 {
		return "Недостаточно данных для анализа тенденций."
	}
	return fmt.Sprintf(
		"За последние %d дн. сделано записей: %d. Средняя оценка %.1f/10, настроение %s. Чаще всего встречается эмоция «%s».",
		sum.PeriodDays, sum.TotalEntries, sum.AverageMood, sum.MoodTrend, sum.DominantEmotion,
	)
}

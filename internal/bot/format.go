package bot

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"unicode/utf8"

	"mood-diary/internal/domain"
)

// Тексты отправляются с ParseMode HTML: все данные пользователя и API
// проходят через html.EscapeString.

const backendErrorText = "❌ Сервис дневника временно недоступен. Попробуйте позже."

const helpText = `🤖 <b>AI Mood Diary Bot - Справка</b>

📝 <b>Основные команды:</b>
/start - Начать работу с ботом
/mood - Записать настроение дня
/stats - Посмотреть статистику
/recommendations - Получить рекомендации
/analytics - Подробная аналитика
/help - Эта справка

🎯 <b>Как пользоваться:</b>

1️⃣ <b>Запись настроения:</b> Используйте /mood или кнопку "📝 Записать настроение"
2️⃣ <b>Оценка:</b> Поставьте оценку от 1 до 10
3️⃣ <b>Описание:</b> Опишите свое состояние и день
4️⃣ <b>AI анализ:</b> Получите автоматический анализ эмоций

💡 <b>Советы:</b>
• Ведите дневник регулярно для лучшего анализа
• Будьте честны в описаниях
• Используйте рекомендации для улучшения настроения`

const scorePromptText = `📊 <b>Оцените ваше настроение сегодня от 1 до 10:</b>

1-2: Очень плохо 😞
3-4: Плохо 😔
5-6: Нормально 😐
7-8: Хорошо 😊
9-10: Отлично! 😄`

// previewLen — сколько символов описания показывать в подтверждении.
const previewLen = 100

func esc(s string) string {
	return html.EscapeString(s)
}

// formatScore печатает оценку без лишних нулей: 7, 7.5.
func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func welcomeText(firstName string, user *domain.User, created bool) string {
	name := esc(orDefault(firstName, "друг"))
	if created {
		return fmt.Sprintf("🎉 Добро пожаловать в AI Mood Diary Bot, %s!\n\n"+
			"Я помогу вам вести дневник настроения и анализировать эмоциональное состояние.\n\n"+
			"🔥 Что я умею:\n"+
			"• 📝 Записывать ваше настроение каждый день\n"+
			"• 🧠 Анализировать эмоции\n"+
			"• 📊 Показывать статистику и тренды\n"+
			"• 💡 Давать персональные рекомендации\n\n"+
			"Начните с команды /mood чтобы записать настроение дня!", name)
	}
	return fmt.Sprintf("👋 С возвращением, %s!\n\n"+
		"У вас уже %d записей в дневнике. Продолжаем отслеживать ваше настроение!\n\n"+
		"Используйте /mood для новой записи или /stats для статистики.", name, user.MoodEntriesCount)
}

func savedText(entry *domain.MoodEntry) string {
	preview := entry.MoodText
	if utf8.RuneCountInString(preview) > previewLen {
		preview = string([]rune(preview)[:previewLen]) + "..."
	}
	return fmt.Sprintf("✅ <b>Запись сохранена!</b>\n\n"+
		"📊 Оценка: %s/10\n"+
		"📝 Описание: %s", formatScore(entry.MoodScore), esc(preview))
}

func sentimentEmoji(label string) string {
	switch label {
	case "positive":
		return "😊"
	case "neutral":
		return "😐"
	case "negative":
		return "😔"
	default:
		return "🤔"
	}
}

func analysisText(a *domain.AIAnalysis) string {
	return fmt.Sprintf("🧠 <b>Анализ завершен!</b>\n\n"+
		"🎭 Доминирующая эмоция: %s\n"+
		"📈 Тональность: %s %s\n\n"+
		"💡 <b>Рекомендация:</b>\n%s\n\n"+
		"🔍 <b>Инсайт:</b>\n%s",
		esc(orDefault(a.DominantEmotion, "неопределено")),
		sentimentEmoji(a.SentimentLabel), esc(orDefault(a.SentimentLabel, "нейтральная")),
		esc(orDefault(a.Recommendations, "Продолжайте вести дневник для лучшего анализа")),
		esc(orDefault(a.Insights, "Ваши записи помогают лучше понять эмоциональные паттерны")))
}

func statsText(s *domain.MoodSummary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 <b>Ваша статистика за %d дней:</b>\n\n", s.PeriodDays)
	fmt.Fprintf(&sb, "📈 Всего записей: %d\n", s.TotalEntries)
	fmt.Fprintf(&sb, "⭐ Среднее настроение: %s/10\n", formatScore(s.AverageMood))
	fmt.Fprintf(&sb, "📉 Тренд: %s\n", esc(orDefault(s.MoodTrend, "недостаточно данных")))
	fmt.Fprintf(&sb, "🎭 Основная эмоция: %s\n", esc(orDefault(s.DominantEmotion, "неопределено")))

	latest := "нет данных"
	if s.LatestEntryDate != nil && *s.LatestEntryDate != "" {
		latest = *s.LatestEntryDate
	}
	fmt.Fprintf(&sb, "\n💾 Последняя запись: %s\n", esc(latest))

	if len(s.SentimentDistribution) > 0 {
		sb.WriteString("\n🎯 <b>Распределение настроения:</b>\n")
		fmt.Fprintf(&sb, "• Позитивное: %d дней\n", s.SentimentDistribution["positive"])
		fmt.Fprintf(&sb, "• Нейтральное: %d дней\n", s.SentimentDistribution["neutral"])
		fmt.Fprintf(&sb, "• Негативное: %d дней\n", s.SentimentDistribution["negative"])
	}
	return sb.String()
}

func recommendationsText(r *domain.Recommendations) string {
	var sb strings.Builder
	sb.WriteString("💡 <b>Персональные рекомендации</b>\n\n")

	if r.AverageMood > 0 {
		fmt.Fprintf(&sb, "📊 Среднее настроение: %s/10\n", formatScore(r.AverageMood))
		fmt.Fprintf(&sb, "📅 Период анализа: %s\n\n", esc(orDefault(r.Period, "последние записи")))
	}
	if r.Message != "" {
		fmt.Fprintf(&sb, "%s\n\n", esc(r.Message))
	}

	if len(r.AIRecommendations) > 0 {
		sb.WriteString("🧠 <b>Рекомендации по вашим записям:</b>\n")
		for i, rec := range r.AIRecommendations {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, esc(rec))
		}
		sb.WriteString("\n")
	}

	general := append(append([]string(nil), r.GeneralRecommendations...), r.Recommendations...)
	if len(general) > 0 {
		sb.WriteString("🎯 <b>Общие рекомендации:</b>\n")
		for _, rec := range general {
			fmt.Fprintf(&sb, "• %s\n", esc(rec))
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func analyticsText(a *domain.MoodAnalytics) string {
	var sb strings.Builder
	sb.WriteString("📈 <b>Подробная аналитика за месяц:</b>\n\n")
	sb.WriteString("📊 <b>Общие показатели:</b>\n")
	fmt.Fprintf(&sb, "• Всего записей: %d\n", a.TotalEntries)
	fmt.Fprintf(&sb, "• Среднее настроение: %s/10\n\n", formatScore(a.AverageMood))

	d := a.MoodDistribution
	sb.WriteString("🎭 <b>Распределение настроения:</b>\n")
	fmt.Fprintf(&sb, "• Позитивное (7-10): %d дней\n", d.Positive)
	fmt.Fprintf(&sb, "• Нейтральное (4-6): %d дней\n", d.Neutral)
	fmt.Fprintf(&sb, "• Негативное (1-3): %d дней\n", d.Negative)

	days := a.DailyAverages
	if len(days) > analyticsTail {
		days = days[len(days)-analyticsTail:]
	}
	if len(days) > 0 {
		sb.WriteString("\n📅 <b>Активность по дням:</b>\n")
		for _, day := range days {
			fmt.Fprintf(&sb, "• %s: %s/10\n", esc(day.Date), formatScore(day.AverageMood))
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

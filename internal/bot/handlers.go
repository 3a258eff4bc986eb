package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"mood-diary/internal/domain"
	"mood-diary/internal/httpclient"
)

// Окна статистики, как в исходном боте: сводка за неделю, аналитика за месяц.
const (
	statsDays       = 7
	analyticsPeriod = domain.PeriodMonth
	analyticsTail   = 7
)

const defaultLanguage = "ru"

// resolveUser находит пользователя по Telegram ID и регистрирует его,
// если API ответил 404. created сообщает, что пользователь только что создан.
func (b *Bot) resolveUser(ctx context.Context, from *tgbotapi.User) (user *domain.User, created bool, err error) {
	user, err = b.diary.GetUserByTelegramID(ctx, from.ID)
	if err == nil {
		return user, false, nil
	}
	if httpclient.StatusCode(err) != http.StatusNotFound {
		return nil, false, fmt.Errorf("failed to get user by telegram id: %w", err)
	}

	lang := from.LanguageCode
	if lang == "" {
		lang = defaultLanguage
	}
	user, err = b.diary.CreateUser(ctx, domain.UserCreate{
		TelegramID:   from.ID,
		Username:     from.UserName,
		FirstName:    from.FirstName,
		LastName:     from.LastName,
		LanguageCode: lang,
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to register user: %w", err)
	}
	b.logger.Info("user registered", slog.Int64("telegram_id", from.ID), slog.Int64("user_id", user.ID))
	return user, true, nil
}

// userOrReply возвращает пользователя либо сообщает об ошибке в чат.
func (b *Bot) userOrReply(ctx context.Context, chatID int64, from *tgbotapi.User) (*domain.User, bool) {
	user, _, err := b.resolveUser(ctx, from)
	if err != nil {
		b.logger.Error("failed to resolve user", slog.Int64("telegram_id", from.ID), slog.String("error", err.Error()))
		b.reply(chatID, backendErrorText, nil)
		return nil, false
	}
	return user, true
}

func (b *Bot) sendWelcome(ctx context.Context, chatID int64, from *tgbotapi.User) {
	user, created, err := b.resolveUser(ctx, from)
	if err != nil {
		b.logger.Error("failed to register user", slog.Int64("telegram_id", from.ID), slog.String("error", err.Error()))
		b.reply(chatID, backendErrorText, nil)
		return
	}
	b.reply(chatID, welcomeText(from.FirstName, user, created), mainKeyboard())
}

// startMoodEntry начинает диалог записи, если за сегодня записи еще нет.
func (b *Bot) startMoodEntry(ctx context.Context, chatID int64, from *tgbotapi.User) {
	user, ok := b.userOrReply(ctx, chatID, from)
	if !ok {
		return
	}

	today, err := b.diary.CheckTodayEntry(ctx, user.ID)
	if err != nil {
		b.logger.Error("failed to check today entry", slog.Int64("user_id", user.ID), slog.String("error", err.Error()))
		b.reply(chatID, backendErrorText, nil)
		return
	}
	if today.HasEntryToday && today.Entry != nil {
		b.reply(chatID, fmt.Sprintf("📅 На сегодня у вас уже есть запись с оценкой %s/10.\n\n"+
			"Хотите посмотреть статистику (/stats)?", formatScore(today.Entry.MoodScore)), nil)
		return
	}

	b.sessions.Set(from.ID, Session{Action: actionWaitingScore})
	b.reply(chatID, scorePromptText, scoreKeyboard())
}

// handleMoodText принимает описание дня и сохраняет запись.
func (b *Bot) handleMoodText(ctx context.Context, chatID int64, from *tgbotapi.User, session Session, text string) {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < b.cfg.MinMoodTextLen {
		b.reply(chatID, fmt.Sprintf("📝 Пожалуйста, опишите ваше настроение подробнее (минимум %d символов).\n\n"+
			"Например: что происходило в течение дня, что повлияло на настроение, как вы себя чувствуете.",
			b.cfg.MinMoodTextLen), nil)
		return
	}

	user, ok := b.userOrReply(ctx, chatID, from)
	if !ok {
		return
	}

	entry, err := b.diary.CreateMoodEntry(ctx, domain.MoodEntryCreate{
		MoodScore: session.Score,
		MoodText:  text,
	}, user.ID, true)
	if err != nil {
		b.logger.Error("failed to save mood entry", slog.Int64("user_id", user.ID), slog.String("error", err.Error()))
		var apiErr *httpclient.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest {
			b.sessions.Delete(from.ID)
			b.reply(chatID, "📅 На сегодня запись уже сохранена. Посмотрите статистику: /stats", nil)
			return
		}
		b.reply(chatID, "❌ Произошла ошибка при сохранении записи. Попробуйте позже.", nil)
		return
	}
	b.sessions.Delete(from.ID)

	b.reply(chatID, savedText(entry), nil)
	if entry.AIAnalysis == nil {
		b.reply(chatID, "⚠️ Анализ временно недоступен, но запись сохранена.\n"+
			"Используйте /stats для просмотра статистики.", nil)
		return
	}
	b.reply(chatID, analysisText(entry.AIAnalysis), nil)
}

func (b *Bot) sendStats(ctx context.Context, chatID int64, from *tgbotapi.User) {
	user, ok := b.userOrReply(ctx, chatID, from)
	if !ok {
		return
	}

	summary, err := b.diary.GetUserMoodSummary(ctx, user.ID, statsDays)
	if err != nil {
		b.logger.Error("failed to get mood summary", slog.Int64("user_id", user.ID), slog.String("error", err.Error()))
		b.reply(chatID, backendErrorText, nil)
		return
	}
	if summary.TotalEntries == 0 {
		b.reply(chatID, "📊 У вас пока нет записей в дневнике.\n\n"+
			"Начните с команды /mood для записи настроения дня!", nil)
		return
	}

	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📈 Подробная аналитика", analyticsCallback)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("💡 Рекомендации", recommendationsCallback)),
	)
	b.reply(chatID, statsText(summary), markup)
}

func (b *Bot) sendRecommendations(ctx context.Context, chatID int64, from *tgbotapi.User) {
	user, ok := b.userOrReply(ctx, chatID, from)
	if !ok {
		return
	}

	rec, err := b.diary.GetUserRecommendations(ctx, user.ID)
	if err != nil || rec.Error != "" {
		if err == nil {
			err = errors.New(rec.Error)
		}
		b.logger.Error("failed to get recommendations", slog.Int64("user_id", user.ID), slog.String("error", err.Error()))
		b.reply(chatID, "❌ Произошла ошибка при получении рекомендаций.\n"+
			"Попробуйте позже или напишите /help", nil)
		return
	}
	b.reply(chatID, recommendationsText(rec), nil)
}

func (b *Bot) sendAnalytics(ctx context.Context, chatID int64, from *tgbotapi.User) {
	user, ok := b.userOrReply(ctx, chatID, from)
	if !ok {
		return
	}

	analytics, err := b.diary.GetUserMoodAnalytics(ctx, user.ID, analyticsPeriod)
	if err != nil {
		b.logger.Error("failed to get mood analytics", slog.Int64("user_id", user.ID), slog.String("error", err.Error()))
		b.reply(chatID, backendErrorText, nil)
		return
	}
	if analytics.TotalEntries == 0 {
		b.reply(chatID, "📈 Недостаточно данных для аналитики.\n\n"+
			"Ведите дневник регулярно для получения подробной статистики!", nil)
		return
	}

	var markup any
	if b.cfg.DashboardURL != "" {
		markup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL("🌐 Открыть веб-дашборд", b.cfg.DashboardURL)),
		)
	}
	b.reply(chatID, analyticsText(analytics), markup)
}

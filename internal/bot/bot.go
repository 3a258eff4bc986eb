// Package bot — Telegram-бот дневника настроения поверх API сервиса.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"mood-diary/internal/domain"
	"mood-diary/internal/pkg/config"
)

// Команды бота.
const (
	startCommand           = "start"
	helpCommand            = "help"
	moodCommand            = "mood"
	statsCommand           = "stats"
	recommendationsCommand = "recommendations"
	analyticsCommand       = "analytics"
)

// Данные inline-кнопок.
const (
	moodScorePrefix         = "mood_score_"
	analyticsCallback       = "analytics"
	recommendationsCallback = "recommendations"
)

// Кнопки постоянной клавиатуры.
const (
	buttonMood            = "📝 Записать настроение"
	buttonStats           = "📊 Моя статистика"
	buttonRecommendations = "💡 Рекомендации"
	buttonAnalytics       = "📈 Аналитика"
	buttonHelp            = "❓ Помощь"
)

// DiaryAPI — методы API дневника, которые использует бот.
// Реализуется *api.Client.
type DiaryAPI interface {
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error)
	CreateUser(ctx context.Context, data domain.UserCreate) (*domain.User, error)
	CheckTodayEntry(ctx context.Context, userID int64) (*domain.TodayCheck, error)
	CreateMoodEntry(ctx context.Context, data domain.MoodEntryCreate, userID int64, analyze bool) (*domain.MoodEntry, error)
	GetUserMoodSummary(ctx context.Context, userID int64, days int) (*domain.MoodSummary, error)
	GetUserRecommendations(ctx context.Context, userID int64) (*domain.Recommendations, error)
	GetUserMoodAnalytics(ctx context.Context, userID int64, period domain.Period) (*domain.MoodAnalytics, error)
}

// Bot представляет собой Telegram-бота дневника настроения.
type Bot struct {
	api      *tgbotapi.BotAPI
	cfg      config.Bot
	diary    DiaryAPI
	sessions *SessionStore
	logger   *slog.Logger

	// Вызовы Bot API вынесены в поля, чтобы тесты могли их подменить.
	sendMessageFunc func(c tgbotapi.Chattable) (tgbotapi.Message, error)
	requestFunc     func(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// NewBot создает бота и проверяет токен запросом getMe.
func NewBot(cfg config.Bot, diary DiaryAPI, sessions *SessionStore, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot api: %w", err)
	}

	logger.Info("Authorized on account", slog.String("username", api.Self.UserName))

	return &Bot{
		api:             api,
		cfg:             cfg,
		diary:           diary,
		sessions:        sessions,
		logger:          logger,
		sendMessageFunc: api.Send,
		requestFunc:     api.Request,
	}, nil
}

// Start регистрирует меню команд и обрабатывает обновления до отмены ctx.
func (b *Bot) Start(ctx context.Context) {
	b.registerCommands()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.UpdateTimeout

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Context cancelled, stopping bot...")
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) registerCommands() {
	cmds := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: startCommand, Description: "Начать работу с ботом"},
		tgbotapi.BotCommand{Command: moodCommand, Description: "Записать настроение дня"},
		tgbotapi.BotCommand{Command: statsCommand, Description: "Статистика за неделю"},
		tgbotapi.BotCommand{Command: recommendationsCommand, Description: "Персональные рекомендации"},
		tgbotapi.BotCommand{Command: analyticsCommand, Description: "Аналитика за месяц"},
		tgbotapi.BotCommand{Command: helpCommand, Description: "Справка"},
	)
	if _, err := b.requestFunc(cmds); err != nil {
		b.logger.Warn("failed to register bot commands", slog.String("error", err.Error()))
	}
}

// handleUpdate обрабатывает одно обновление с ограничением по времени.
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	ctx, cancel := context.WithTimeout(ctx, b.cfg.HandlerTimeout)
	defer cancel()

	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

// handleMessage обрабатывает входящее сообщение.
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || msg.Chat == nil {
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	chatID, from := msg.Chat.ID, msg.From
	switch msg.Text {
	case buttonMood:
		b.startMoodEntry(ctx, chatID, from)
		return
	case buttonStats:
		b.sendStats(ctx, chatID, from)
		return
	case buttonRecommendations:
		b.sendRecommendations(ctx, chatID, from)
		return
	case buttonAnalytics:
		b.sendAnalytics(ctx, chatID, from)
		return
	case buttonHelp:
		b.reply(chatID, helpText, nil)
		return
	}

	session, ok := b.sessions.Get(from.ID)
	switch {
	case ok && session.Action == actionWaitingText:
		b.handleMoodText(ctx, chatID, from, session, msg.Text)
	case ok && session.Action == actionWaitingScore:
		b.reply(chatID, "👆 Сначала выберите оценку настроения кнопками выше.", nil)
	default:
		b.reply(chatID, "🤔 Не понимаю команду. Используйте /help для справки или кнопки меню.", nil)
	}
}

// handleCommand обрабатывает команды.
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID, from := msg.Chat.ID, msg.From
	switch msg.Command() {
	case startCommand:
		b.sendWelcome(ctx, chatID, from)
	case helpCommand:
		b.reply(chatID, helpText, nil)
	case moodCommand:
		b.startMoodEntry(ctx, chatID, from)
	case statsCommand:
		b.sendStats(ctx, chatID, from)
	case recommendationsCommand:
		b.sendRecommendations(ctx, chatID, from)
	case analyticsCommand:
		b.sendAnalytics(ctx, chatID, from)
	default:
		b.reply(chatID, "Я не знаю такой команды. Используйте /help.", nil)
	}
}

// handleCallback обрабатывает нажатия inline-кнопок.
func (b *Bot) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	if _, err := b.requestFunc(tgbotapi.NewCallback(q.ID, "")); err != nil {
		b.logger.Warn("failed to answer callback", slog.String("error", err.Error()))
	}
	if q.From == nil {
		return
	}

	// В личном чате ID чата совпадает с ID пользователя.
	chatID := q.From.ID
	if q.Message != nil && q.Message.Chat != nil {
		chatID = q.Message.Chat.ID
	}

	switch {
	case strings.HasPrefix(q.Data, moodScorePrefix):
		score, err := strconv.Atoi(strings.TrimPrefix(q.Data, moodScorePrefix))
		if err != nil || score < 1 || score > 10 {
			b.logger.Warn("invalid mood score callback", slog.String("data", q.Data))
			return
		}
		b.sessions.Set(q.From.ID, Session{Action: actionWaitingText, Score: float64(score)})

		text := fmt.Sprintf("✅ Оценка настроения: %d/10\n\n"+
			"📝 Теперь опишите ваш день и настроение:\n"+
			"Что происходило? Как вы себя чувствуете? Что повлияло на настроение?", score)
		if q.Message != nil {
			b.send(tgbotapi.NewEditMessageText(chatID, q.Message.MessageID, text))
		} else {
			b.reply(chatID, text, nil)
		}
	case q.Data == analyticsCallback:
		b.sendAnalytics(ctx, chatID, q.From)
	case q.Data == recommendationsCallback:
		b.sendRecommendations(ctx, chatID, q.From)
	default:
		b.logger.Warn("unknown callback", slog.String("data", q.Data))
	}
}

// reply отправляет HTML-сообщение в чат.
func (b *Bot) reply(chatID int64, text string, markup any) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	b.send(msg)
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.sendMessageFunc(c); err != nil {
		b.logger.Error("failed to send message", slog.String("error", err.Error()))
	}
}

func mainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(buttonMood), tgbotapi.NewKeyboardButton(buttonStats)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(buttonRecommendations), tgbotapi.NewKeyboardButton(buttonAnalytics)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(buttonHelp)),
	)
	kb.ResizeKeyboard = true
	return kb
}

// scoreKeyboard — оценки 1..10 в два ряда.
func scoreKeyboard() tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, 2)
	for row := 0; row < 2; row++ {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, 5)
		for col := 1; col <= 5; col++ {
			score := strconv.Itoa(row*5 + col)
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(score, moodScorePrefix+score))
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(buttons...))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

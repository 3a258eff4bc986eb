package log

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// TGBotAPIAdapter направляет внутренние сообщения go-telegram-bot-api/v5
// в slog. Библиотека пишет в лог URL запросов вместе с токеном бота,
// поэтому логгер должен быть построен через NewMaskedLogger.
type TGBotAPIAdapter struct {
	Logger *slog.Logger
	// Level — уровень сообщений библиотеки. По умолчанию debug:
	// библиотека логирует каждый long polling запрос.
	Level slog.Level
}

// NewTGBotAPIAdapter создает адаптер с уровнем debug.
func NewTGBotAPIAdapter(logger *slog.Logger) *TGBotAPIAdapter {
	return &TGBotAPIAdapter{
		Logger: logger.With(slog.String("component", "tgbotapi")),
		Level:  slog.LevelDebug,
	}
}

// Println реализует tgbotapi.BotLogger.
func (a *TGBotAPIAdapter) Println(v ...any) {
	a.log(strings.TrimSpace(fmt.Sprintln(v...)))
}

// Printf реализует tgbotapi.BotLogger.
func (a *TGBotAPIAdapter) Printf(format string, v ...any) {
	a.log(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (a *TGBotAPIAdapter) log(msg string) {
	a.Logger.Log(context.Background(), a.Level, msg)
}

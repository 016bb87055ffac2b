// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"fmt"
	"strings"
	"time"

	"homework_status_bot/internal/app"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// StatusSource exposes the poller state shown by /status.
type StatusSource interface {
	Snapshot() app.Snapshot
}

// RegisterBotCommands wires /start and /status. Only the configured chat gets answers.
func RegisterBotCommands(
	b *telebot.Bot,
	ownerChatID int64,
	source StatusSource,
	pollInterval time.Duration,
	baseLogger *logrus.Entry,
) {
	commandLogger := baseLogger.WithField("handler_group", "commands")

	b.Handle("/start", func(c telebot.Context) error {
		logCtx := commandLogger.WithField("command", "/start").WithField("chat_id", c.Chat().ID)
		logCtx.Info("Processing /start command")

		if c.Chat().ID != ownerChatID {
			logCtx.Warn("Command from unknown chat")
			return c.Send("Этот бот работает только для своего владельца.")
		}
		return c.Send(fmt.Sprintf("Привет! Я проверяю статус домашней работы каждые %s и сообщу, когда он изменится. /status покажет последнее состояние.", pollInterval))
	})

	b.Handle("/status", func(c telebot.Context) error {
		logCtx := commandLogger.WithField("command", "/status").WithField("chat_id", c.Chat().ID)
		logCtx.Info("Processing /status command")

		if c.Chat().ID != ownerChatID {
			logCtx.Warn("Command from unknown chat")
			return c.Send("Этот бот работает только для своего владельца.")
		}
		return c.Send(RenderStatus(source.Snapshot()))
	})
}

// RenderStatus formats a poller snapshot for the /status reply.
func RenderStatus(s app.Snapshot) string {
	var text strings.Builder
	text.WriteString("Состояние бота:\n")

	if s.LastPolledAt.IsZero() {
		text.WriteString("Последняя проверка: ещё не было\n")
	} else {
		text.WriteString(fmt.Sprintf("Последняя проверка: %s\n", s.LastPolledAt.Format("2006-01-02 15:04:05")))
	}
	text.WriteString(fmt.Sprintf("Курсор from_date: %d (%s)\n", s.Cursor, time.Unix(s.Cursor, 0).UTC().Format(time.RFC3339)))

	if s.LastMessage == "" {
		text.WriteString("Последнее уведомление: нет")
	} else {
		text.WriteString(fmt.Sprintf("Последнее уведомление: %s", s.LastMessage))
	}
	if s.LastError != "" {
		text.WriteString(fmt.Sprintf("\nПоследняя ошибка: %s", s.LastError))
	}
	return text.String()
}

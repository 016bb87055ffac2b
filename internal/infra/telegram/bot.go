// internal/infra/telegram/bot.go
package telegram

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// DefaultConnectRetryDelay is the pause between attempts to reach Telegram at startup.
const DefaultConnectRetryDelay = 30 * time.Second

// ErrInvalidToken means Telegram refused the bot token. Retrying will not help.
var ErrInvalidToken = errors.New("telegram rejected the bot token")

// ConnectBot creates the bot, retrying every retryDelay while Telegram is
// unreachable. It returns ctx.Err() if ctx is cancelled between attempts.
func ConnectBot(ctx context.Context, pref telebot.Settings, retryDelay time.Duration, logger *logrus.Entry) (*telebot.Bot, error) {
	for attempt := 1; ; attempt++ {
		bot, err := telebot.NewBot(pref)
		if err == nil {
			logger.WithField("username", bot.Me.Username).Info("Connected to Telegram")
			return bot, nil
		}
		if errors.Is(err, telebot.ErrUnauthorized) || errors.Is(err, telebot.ErrNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
		}

		logger.WithError(err).WithFields(logrus.Fields{
			"attempt":  attempt,
			"retry_in": retryDelay.String(),
		}).Warn("Could not reach Telegram, retrying")

		timer := time.NewTimer(retryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

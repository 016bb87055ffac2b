package telegram

import (
	"context"
	"errors"
	"fmt"

	domainTelegram "homework_status_bot/internal/domain/telegram"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"gopkg.in/telebot.v3"
)

// ErrDelivery wraps every failure to hand a message to Telegram.
var ErrDelivery = errors.New("telegram delivery failed")

// Notifier sends poll results to a single preconfigured chat.
type Notifier struct {
	client  domainTelegram.Client
	chatID  int64
	limiter *rate.Limiter
	logger  *logrus.Entry
}

func NewNotifier(client domainTelegram.Client, chatID int64, ratePerSec int, logger *logrus.Entry) *Notifier {
	if ratePerSec <= 0 {
		ratePerSec = 1
	}
	return &Notifier{
		client:  client,
		chatID:  chatID,
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec),
		logger:  logger.WithField("chat_id", chatID),
	}
}

// Notify delivers message. A failure is logged and returned wrapping ErrDelivery;
// callers are expected to record it and carry on.
func (n *Notifier) Notify(ctx context.Context, message string) error {
	if err := n.limiter.Wait(ctx); err != nil {
		n.logger.WithError(err).Warn("Notification dropped while waiting for send slot")
		return fmt.Errorf("%w: %w", ErrDelivery, err)
	}

	n.logger.WithField("text", message).Debug("Sending notification")
	err := n.client.SendMessage(n.chatID, message, &telebot.SendOptions{DisableWebPagePreview: true})
	if err != nil {
		n.logger.WithError(err).Error("Failed to send message to Telegram")
		return fmt.Errorf("%w: %w", ErrDelivery, err)
	}
	n.logger.Info("Message sent to Telegram")
	return nil
}

// Package notify announces newly ingested titles to a Telegram channel.
// Announcement is strictly fire-and-forget: a failed send is logged and
// dropped, never surfaced to the ingest path.
package notify

import (
	"context"
	"fmt"

	tgbot "github.com/go-telegram/bot"
	"github.com/sirupsen/logrus"

	"cinedex/internal/domain"
)

// TelegramNotifier posts new-item announcements to a configured chat.
type TelegramNotifier struct {
	bot    *tgbot.Bot
	chatID string
	log    logrus.FieldLogger
}

// NewTelegramNotifier creates a notifier for the given bot token and
// chat id.
func NewTelegramNotifier(token, chatID string, logger logrus.FieldLogger) (*TelegramNotifier, error) {
	log := logger.WithField("component", "notifier")

	b, err := tgbot.New(token)
	if err != nil {
		log.WithError(err).Error("Failed to create Telegram bot instance")
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	log.Info("Telegram notifier initialized")
	return &TelegramNotifier{bot: b, chatID: chatID, log: log}, nil
}

// AnnounceNewItem posts a short message for an item seen for the first
// time.
func (n *TelegramNotifier) AnnounceNewItem(ctx context.Context, item domain.ContentItem) {
	log := n.log.WithFields(logrus.Fields{
		"url":   item.URL,
		"title": item.Title,
	})

	text := fmt.Sprintf("New: %s\n%s", item.Title, item.URL)
	_, err := n.bot.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID: n.chatID,
		Text:   text,
	})
	if err != nil {
		log.WithError(err).Error("Failed to send announcement")
		return
	}
	log.Debug("Announcement sent")
}

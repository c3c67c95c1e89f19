// Package telegram forwards stored notifications to a user's linked
// Telegram chat. Delivery is best effort: the notification record is the
// source of truth, the push is a convenience.
package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/example/lexibot/pkg/models"
)

// Pusher sends notification messages through the Telegram Bot API.
type Pusher struct {
	bot *tgbotapi.BotAPI
	log *zap.Logger
}

// NewPusher authenticates against the Telegram Bot API.
func NewPusher(token string, log *zap.Logger) (*Pusher, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	log.Info("telegram pusher authorized", zap.String("account", bot.Self.UserName))
	return &Pusher{bot: bot, log: log}, nil
}

// Push delivers one notification to the user's chat. Users without a
// linked chat are skipped silently.
func (p *Pusher) Push(ctx context.Context, user models.User, n models.Notification) error {
	if user.TelegramChatID == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	text := fmt.Sprintf("%s %s\n\n%s", n.Icon, n.Title, n.Message)
	msg := tgbotapi.NewMessage(user.TelegramChatID, text)
	if _, err := p.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

// handleGroupMessage reposts a group message under the sender's game nickname
// and removes the original. Senders without a nickname get a transient
// reminder instead.
func (b *Bot) handleGroupMessage(ctx context.Context, msg *tgbotapi.Message) error {
	nick, found, err := b.nicks.GetNick(ctx, msg.From.ID)
	if err != nil || !found {
		// A lookup failure degrades to the no-nickname flow; the cause is
		// already logged at the service layer.
		return b.remindSetNick(msg)
	}

	relay := tgbotapi.NewMessage(msg.Chat.ID, fmt.Sprintf("<b>🎮 %s:</b> %s", escape(nick), escape(msg.Text)))
	relay.ParseMode = tgbotapi.ModeHTML
	sent, err := b.api.Send(relay)
	if err != nil {
		return fmt.Errorf("send relay message: %w", err)
	}

	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(msg.Chat.ID, msg.MessageID)); err != nil {
		log.Warn().
			Err(err).
			Int64("chat_id", msg.Chat.ID).
			Int("message_id", msg.MessageID).
			Msg("original message not deleted")

		// Remove the relayed copy so the chat does not end up with both.
		if _, err := b.api.Request(tgbotapi.NewDeleteMessage(msg.Chat.ID, sent.MessageID)); err != nil {
			log.Debug().Err(err).Int("message_id", sent.MessageID).Msg("relay rollback delete failed")
		}
	}
	return nil
}

// remindSetNick replies with a nickname-setup prompt and schedules its
// removal. All failures here are logged and dropped.
func (b *Bot) remindSetNick(msg *tgbotapi.Message) error {
	name := strings.TrimSpace(msg.From.FirstName)
	if name == "" {
		name = "игрок"
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, fmt.Sprintf(
		"👤 %s, для отправки сообщений нужен игровой ник!\n\n"+
			"Напиши мне в личные сообщения:\n"+
			"<code>/nick ТвойИгровойНик</code>",
		escape(name)))
	reply.ParseMode = tgbotapi.ModeHTML
	reply.ReplyToMessageID = msg.MessageID

	sent, err := b.api.Send(reply)
	if err != nil {
		log.Error().Err(err).Int64("chat_id", msg.Chat.ID).Msg("reminder send failed")
		return nil
	}

	chatID := msg.Chat.ID
	reminderID := sent.MessageID
	b.reminders.Schedule(chatID, reminderID, b.reminderTTL, func() {
		if _, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, reminderID)); err != nil {
			// The reminder may already be gone if the chat cleaned it up.
			log.Debug().Err(err).Int("message_id", reminderID).Msg("reminder delete failed")
		}
	})
	return nil
}

package bot

import (
	"context"
	"fmt"
	"html"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"gamenick-bot/internal/config"
	"gamenick-bot/internal/service"
)

// sender is the slice of the Telegram client the handlers use.
// *tgbotapi.BotAPI satisfies it.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot relays group messages under stored game nicknames and serves the
// nickname commands in private chats.
type Bot struct {
	client      *tgbotapi.BotAPI
	api         sender
	nicks       *service.NickService
	reminders   *reminderJanitor
	reminderTTL time.Duration
	adminIDs    []int64
}

func New(token string, nicks *service.NickService, cfg config.Config) (*Bot, error) {
	client, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	client.Debug = cfg.Debug

	log.Info().Str("account", client.Self.UserName).Msg("bot authorized")

	return &Bot{
		client:      client,
		api:         client,
		nicks:       nicks,
		reminders:   newReminderJanitor(),
		reminderTTL: cfg.ReminderTTL,
		adminIDs:    cfg.AdminIDs,
	}, nil
}

// Start polls updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	b.dropPendingUpdates()

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.client.GetUpdatesChan(updateConfig)

	log.Info().Msg("start polling updates")

	go func() {
		<-ctx.Done()
		b.client.StopReceivingUpdates()
	}()

	for update := range updates {
		msg := update.Message
		if msg == nil || msg.From == nil || msg.Chat == nil {
			continue
		}
		if err := b.handleMessage(ctx, msg); err != nil {
			log.Error().
				Err(err).
				Int64("chat_id", msg.Chat.ID).
				Int64("from", msg.From.ID).
				Msg("update handling failed")
			b.notifyFailure(msg.Chat.ID)
		}
	}

	b.reminders.Stop()
	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.IsCommand() {
		log.Info().
			Int64("from", msg.From.ID).
			Str("command", msg.Command()).
			Msg("command received")
		return b.handleCommand(ctx, msg)
	}

	if msg.Text == "" {
		return nil
	}

	if msg.Chat.IsGroup() || msg.Chat.IsSuperGroup() {
		return b.handleGroupMessage(ctx, msg)
	}
	if msg.Chat.IsPrivate() {
		return b.sendText(msg.Chat.ID, privateHintText)
	}
	return nil
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg)
	case "nick":
		return b.handleNick(ctx, msg)
	case "mynick":
		return b.handleMyNick(ctx, msg)
	case "stats":
		return b.handleStats(ctx, msg)
	case "find":
		return b.handleFind(ctx, msg)
	case "help":
		return b.handleHelp(msg)
	default:
		return nil
	}
}

// SendStatsReport sends the /stats rendering to every configured admin chat.
func (b *Bot) SendStatsReport(ctx context.Context) error {
	stats, err := b.nicks.Stats(ctx)
	if err != nil {
		return err
	}
	text := formatStats(stats)
	for _, chatID := range b.adminIDs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := b.sendText(chatID, text); err != nil {
			log.Error().Err(err).Int64("chat_id", chatID).Msg("stats report send failed")
		}
	}
	return nil
}

// dropPendingUpdates discards the backlog accumulated while the bot was
// down, so a restart does not replay stale group messages.
func (b *Bot) dropPendingUpdates() {
	if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: true}); err != nil {
		log.Warn().Err(err).Msg("drop pending updates failed")
	}
}

// notifyFailure best-effort informs the chat that the update failed.
func (b *Bot) notifyFailure(chatID int64) {
	text := "❌ Произошла ошибка при обработке команды.\nПопробуй еще раз или обратись к администратору."
	if err := b.sendText(chatID, text); err != nil {
		log.Debug().Err(err).Int64("chat_id", chatID).Msg("failure notice not delivered")
	}
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := b.api.Send(msg)
	return err
}

func escape(s string) string {
	return html.EscapeString(s)
}

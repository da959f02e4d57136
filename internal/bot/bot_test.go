package bot

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gamenick-bot/internal/repository"
	"gamenick-bot/internal/service"
)

// fakeSender records outgoing API calls instead of hitting Telegram.
type fakeSender struct {
	mu           sync.Mutex
	sent         []tgbotapi.MessageConfig
	deleted      []tgbotapi.DeleteMessageConfig
	webhookDrops []tgbotapi.DeleteWebhookConfig
	sendErr      error
	deleteErrs   map[int]error
	nextID       int
}

func newFakeSender() *fakeSender {
	return &fakeSender{deleteErrs: make(map[int]error), nextID: 100}
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return tgbotapi.Message{}, f.sendErr
	}
	msg, ok := c.(tgbotapi.MessageConfig)
	if !ok {
		return tgbotapi.Message{}, fmt.Errorf("unexpected chattable %T", c)
	}
	f.sent = append(f.sent, msg)
	f.nextID++
	return tgbotapi.Message{MessageID: f.nextID}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if wh, ok := c.(tgbotapi.DeleteWebhookConfig); ok {
		f.webhookDrops = append(f.webhookDrops, wh)
		return &tgbotapi.APIResponse{Ok: true}, nil
	}
	del, ok := c.(tgbotapi.DeleteMessageConfig)
	if !ok {
		return &tgbotapi.APIResponse{Ok: true}, nil
	}
	f.deleted = append(f.deleted, del)
	if err := f.deleteErrs[del.MessageID]; err != nil {
		return nil, err
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeSender) sentTexts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	texts := make([]string, len(f.sent))
	for i, msg := range f.sent {
		texts[i] = msg.Text
	}
	return texts
}

func (f *fakeSender) deletedIDs() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]int, len(f.deleted))
	for i, del := range f.deleted {
		ids[i] = del.MessageID
	}
	return ids
}

func newTestBot(t *testing.T) (*Bot, *fakeSender, *gorm.DB) {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "bot_test.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))

	api := newFakeSender()
	b := &Bot{
		api:         api,
		nicks:       service.NewNickService(repository.NewUserRepository(db)),
		reminders:   newReminderJanitor(),
		reminderTTL: 20 * time.Millisecond,
	}
	t.Cleanup(b.reminders.Stop)
	return b, api, db
}

// newCommandMessage builds a private-chat message whose entities mark the
// leading /command the way Telegram does.
func newCommandMessage(from int64, command, args string) *tgbotapi.Message {
	text := command
	if args != "" {
		text += " " + args
	}
	return &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: from, FirstName: "Вася", UserName: "vasya"},
		Chat:      &tgbotapi.Chat{ID: from, Type: "private"},
		Text:      text,
		Entities: []tgbotapi.MessageEntity{
			{Type: "bot_command", Offset: 0, Length: len(command)},
		},
	}
}

func newGroupMessage(from int64, messageID int, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: messageID,
		From:      &tgbotapi.User{ID: from, FirstName: "Вася", UserName: "vasya"},
		Chat:      &tgbotapi.Chat{ID: -1001, Type: "supergroup"},
		Text:      text,
	}
}

func messageEntityCommand(length int) tgbotapi.MessageEntity {
	return tgbotapi.MessageEntity{Type: "bot_command", Offset: 0, Length: length}
}

package bot

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"gamenick-bot/internal/model"
	"gamenick-bot/internal/service"
)

const (
	nickMinLen = 2
	nickMaxLen = 32
)

// Characters that must not appear in a nickname: they break the HTML rendering
// of relayed messages or the storage layer's quoting.
const forbiddenNickChars = "<>&\"'`\\"

const privateHintText = "💬 <b>Я бот для игровых ников!</b>\n\n" +
	"Доступные команды:\n" +
	"<code>/start</code> - Начало работы\n" +
	"<code>/nick</code> - Установить ник\n" +
	"<code>/help</code> - Все команды\n\n" +
	"Добавь меня в группу для работы!"

// validateNick returns a user-facing objection, or "" when the nickname is
// acceptable. The first violated rule wins.
func validateNick(nick string) string {
	if utf8.RuneCountInString(nick) < nickMinLen {
		return fmt.Sprintf("❌ Слишком короткий ник. Минимум %d символа.", nickMinLen)
	}
	if utf8.RuneCountInString(nick) > nickMaxLen {
		return fmt.Sprintf("❌ Слишком длинный ник. Максимум %d символа.", nickMaxLen)
	}
	for _, char := range nick {
		if strings.ContainsRune(forbiddenNickChars, char) {
			return fmt.Sprintf("❌ Ник содержит запрещенный символ: %s", escape(string(char)))
		}
	}
	return ""
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	name := strings.TrimSpace(msg.From.FirstName)
	if name == "" {
		name = "игрок"
	}

	var text strings.Builder
	text.WriteString(fmt.Sprintf("👋 <b>Привет, %s!</b>\n\n", escape(name)))
	text.WriteString("Я бот для отображения игровых ников в Telegram группах.\n\n")

	nick, found, _ := b.nicks.GetNick(ctx, msg.From.ID)
	if found {
		text.WriteString(fmt.Sprintf("✅ Твой текущий ник: <b>%s</b>\n\n", escape(nick)))
		text.WriteString("📝 Изменить: <code>/nick НовыйНик</code>\n")
		text.WriteString("📊 Статистика: <code>/stats</code>\n")
		text.WriteString("🔍 Найти игрока: <code>/find ник</code>\n\n")
	} else {
		text.WriteString("🎮 <b>Чтобы начать:</b>\n")
		text.WriteString("1. Установи игровой ник: <code>/nick ТвойНик</code>\n")
		text.WriteString("2. Добавь меня в группу как администратора\n")
		text.WriteString("3. Пиши в группе - я подпишу твои сообщения!\n\n")
		text.WriteString("📝 Пример: <code>/nick КрутойИгрок</code>\n\n")
	}

	text.WriteString("⚙️ <b>Техническая информация:</b>\n")
	text.WriteString("• База данных: Supabase\n")
	text.WriteString("• Хостинг: Railway\n")
	text.WriteString("• Код: GitHub\n\n")
	text.WriteString("Напиши /help для всех команд")
	return b.sendText(msg.Chat.ID, text.String())
}

func (b *Bot) handleNick(ctx context.Context, msg *tgbotapi.Message) error {
	nick := strings.Join(strings.Fields(msg.CommandArguments()), " ")

	// Without an argument the command shows the current nickname.
	if nick == "" {
		current, found, _ := b.nicks.GetNick(ctx, msg.From.ID)
		if found {
			return b.sendText(msg.Chat.ID, fmt.Sprintf(
				"🎮 <b>Твой текущий ник:</b> %s\n\nЧтобы изменить, напиши:\n<code>/nick НовыйИгровойНик</code>",
				escape(current)))
		}
		return b.sendText(msg.Chat.ID,
			"📝 <b>Установи игровой ник:</b>\n\n"+
				"Напиши: <code>/nick ТвойНик</code>\n\n"+
				"Примеры:\n"+
				"• <code>/nick ProPlayer</code>\n"+
				"• <code>/nick КрутойГеймер</code>\n"+
				"• <code>/nick Охотник23</code>\n\n"+
				"⚠️ <b>Требования:</b>\n"+
				"• От 2 до 32 символов\n"+
				"• Без запрещенных символов")
	}

	if objection := validateNick(nick); objection != "" {
		return b.sendText(msg.Chat.ID, objection)
	}

	if err := b.nicks.SaveNick(ctx, msg.From.ID, msg.From.UserName, msg.From.FirstName, nick); err != nil {
		return b.sendText(msg.Chat.ID,
			"❌ Не удалось сохранить ник. Попробуй позже или обратись к администратору.")
	}

	// Count failures degrade to zero, the save itself already succeeded.
	stats, _ := b.nicks.Stats(ctx)

	name := strings.TrimSpace(msg.From.FirstName)
	if name == "" {
		name = "игрок"
	}

	return b.sendText(msg.Chat.ID, fmt.Sprintf(
		"✅ <b>Отлично, %s!</b>\n\n"+
			"🎮 Твой игровой ник: <b>%s</b>\n\n"+
			"📊 Всего игроков в базе: <b>%d</b>\n\n"+
			"<b>Что дальше:</b>\n"+
			"1. Добавь меня в группу как администратора\n"+
			"2. Дай права на удаление сообщений\n"+
			"3. Пиши в группе - я подпишу твои сообщения!\n\n"+
			"🔄 Изменить ник: <code>/nick НовыйНик</code>",
		escape(name), escape(nick), stats.Total))
}

func (b *Bot) handleMyNick(ctx context.Context, msg *tgbotapi.Message) error {
	user, found, _ := b.nicks.Profile(ctx, msg.From.ID)
	if !found {
		return b.sendText(msg.Chat.ID,
			"❌ У тебя еще нет игрового ника.\n\n"+
				"Установи его командой:\n"+
				"<code>/nick ТвойИгровойНик</code>\n\n"+
				"Пример: <code>/nick Игрок007</code>")
	}

	regDate := ""
	if !user.CreatedAt.IsZero() {
		regDate = user.CreatedAt.Format(" (02.01.2006)")
	}

	return b.sendText(msg.Chat.ID, fmt.Sprintf(
		"🎮 <b>Твой игровой ник:</b> %s%s\n\n"+
			"Изменить: <code>/nick НовыйНик</code>\n"+
			"Посмотреть статистику: <code>/stats</code>",
		escape(user.GameNick), regDate))
}

func (b *Bot) handleStats(ctx context.Context, msg *tgbotapi.Message) error {
	// A failed query renders as an empty report rather than an error.
	stats, _ := b.nicks.Stats(ctx)
	return b.sendText(msg.Chat.ID, formatStats(stats))
}

func formatStats(stats service.Stats) string {
	var text strings.Builder
	text.WriteString("📊 <b>Статистика бота:</b>\n\n")
	text.WriteString(fmt.Sprintf("👥 <b>Всего игроков:</b> %d\n", stats.Total))
	text.WriteString("🗄 <b>База данных:</b> Supabase\n")
	text.WriteString("🚂 <b>Хостинг:</b> Railway\n")
	text.WriteString("💾 <b>Хранилище:</b> PostgreSQL\n\n")

	if len(stats.Recent) > 0 {
		text.WriteString("🆕 <b>Последние игроки:</b>\n")
		for idx, user := range stats.Recent {
			date := "сегодня"
			if !user.CreatedAt.IsZero() {
				date = user.CreatedAt.Format("02.01")
			}
			text.WriteString(fmt.Sprintf("%d. %s (%s) - %s\n",
				idx+1, escape(user.GameNick), escape(user.TelegramName), date))
		}
		text.WriteByte('\n')
	}

	text.WriteString("🔍 Найти игрока: <code>/find ник</code>")
	return text.String()
}

func (b *Bot) handleFind(ctx context.Context, msg *tgbotapi.Message) error {
	query := strings.Join(strings.Fields(msg.CommandArguments()), " ")
	if query == "" {
		return b.sendText(msg.Chat.ID,
			"🔍 <b>Поиск игроков:</b>\n\n"+
				"Напиши: <code>/find ник_или_имя</code>\n\n"+
				"Примеры:\n"+
				"• <code>/find pro</code> - найдет ProPlayer, ProGamer и т.д.\n"+
				"• <code>/find алекс</code> - найдет Алексей, Александр\n"+
				"• <code>/find 007</code> - найдет по цифрам в нике")
	}

	results, err := b.nicks.Search(ctx, query)
	if err != nil {
		results = nil
	}
	return b.sendText(msg.Chat.ID, formatFound(query, results))
}

func formatFound(query string, results []model.User) string {
	if len(results) == 0 {
		return fmt.Sprintf("❌ По запросу '%s' ничего не найдено.\n\nПопробуй другой запрос.", escape(query))
	}

	var text strings.Builder
	text.WriteString(fmt.Sprintf("🔍 <b>Найдено по запросу '%s':</b>\n\n", escape(query)))

	shown := results
	if len(shown) > 10 {
		shown = shown[:10]
	}
	for idx, user := range shown {
		text.WriteString(fmt.Sprintf("%d. <b>%s</b> (%s)\n",
			idx+1, escape(user.GameNick), escape(user.TelegramName)))
	}
	if omitted := len(results) - len(shown); omitted > 0 {
		text.WriteString(fmt.Sprintf("\n... и еще %d результатов", omitted))
	}
	return strings.TrimRight(text.String(), "\n")
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	text := "🆘 <b>Доступные команды:</b>\n\n" +
		"<code>/start</code> - Начало работы с ботом\n" +
		"<code>/nick [ник]</code> - Установить/изменить игровой ник\n" +
		"<code>/mynick</code> - Показать текущий ник\n" +
		"<code>/stats</code> - Статистика бота и игроков\n" +
		"<code>/find [текст]</code> - Поиск игрока по нику или имени\n" +
		"<code>/help</code> - Эта справка\n\n" +
		"<b>📖 Как использовать:</b>\n" +
		"1. Установи ник через <code>/nick ТвойНик</code>\n" +
		"2. Добавь бота в группу как администратора\n" +
		"3. Дай права: удаление и отправка сообщений\n" +
		"4. Пиши в группе - бот подпишет твои сообщения!\n\n" +
		"<b>⚙️ Техническая информация:</b>\n" +
		"• База данных: Supabase (PostgreSQL)\n" +
		"• Хостинг: Railway\n\n" +
		"<b>📞 Поддержка:</b>\n" +
		"Проблемы с ботом? Обратись к администратору."
	return b.sendText(msg.Chat.ID, text)
}

package telegram

import (
	"context"
	"errors"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"lesson-ledger/internal/clearing"
	"lesson-ledger/internal/storage"
)

// Reply keyboard buttons.
const (
	btnFillForm = "📝 Заполнить форму"
	btnReport   = "📊 Отчёт за всё время"
	btnClear    = "🧹 Очистить таблицу"
)

const (
	msgAdminGreeting    = "Здравствуйте, администратор!\n\nВы можете получить отчёт или очистить таблицу:"
	msgEmployeeGreeting = "Здравствуйте! Выберите действие:"
	msgNoPermission     = "⛔ У вас нет прав для этой команды."
	msgNoActiveForm     = "Нет активной формы."
	msgStorageDown      = "⚠️ Хранилище недоступно, попробуйте позже."
	msgClearPrompt      = "⚠️ Вы уверены, что хотите удалить все записи из базы данных?"
	msgCleared          = "🧹 Таблица успешно очищена!"
	msgClearCancelled   = "❌ Очистка таблицы отменена."
	msgClearStale       = "⌛ Запрос устарел."
	msgStatus           = "📈 Состояние бота:\nЗаписей: %d\nАктивных форм: %d\nОжидающих очистки: %d\nНедоставленных уведомлений: %d"
)

var employeeKeyboard = tgbotapi.NewReplyKeyboard(
	tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnFillForm)),
)

var adminKeyboard = tgbotapi.NewReplyKeyboard(
	tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnReport)),
	tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnClear)),
	tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnFillForm)),
)

func (b *Bot) handleIncomingMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || msg.Chat == nil || msg.Text == "" {
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	// Menu buttons win over form input in any state.
	switch msg.Text {
	case btnFillForm:
		b.form.Start(ctx, msg.Chat.ID)
	case btnReport:
		b.handleReport(ctx, msg)
	case btnClear:
		b.handleClearRequest(msg)
	default:
		b.form.Handle(ctx, msg.Chat.ID, msg.Text)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		if b.authSvc.IsAdmin(msg.From.ID) {
			b.sendWithMarkup(msg.Chat.ID, msgAdminGreeting, adminKeyboard)
		} else {
			b.sendWithMarkup(msg.Chat.ID, msgEmployeeGreeting, employeeKeyboard)
		}
	case "form":
		b.form.Start(ctx, msg.Chat.ID)
	case "cancel":
		if !b.form.Cancel(ctx, msg.Chat.ID) {
			b.sendMessage(msg.Chat.ID, msgNoActiveForm)
		}
	case "report_all":
		b.handleReport(ctx, msg)
	case "clear_table":
		b.handleClearRequest(msg)
	case "status":
		b.handleStatus(ctx, msg)
	}
}

// handleStatus shows admins the record count and the in-memory workload.
func (b *Bot) handleStatus(ctx context.Context, msg *tgbotapi.Message) {
	if !b.authSvc.IsAdmin(msg.From.ID) {
		log.Printf("Unauthorized status attempt by user ID: %d, username: @%s", msg.From.ID, msg.From.UserName)
		b.sendMessage(msg.Chat.ID, msgNoPermission)
		return
	}
	records, err := b.store.Count(ctx)
	if err != nil {
		log.Printf("❌ status failed: %v", err)
		b.sendMessage(msg.Chat.ID, storageErrorText(err))
		return
	}
	b.sendMessage(msg.Chat.ID, fmt.Sprintf(msgStatus,
		records, b.sessions.Active(), b.clearing.Pending(), b.form.NotifyFailures()))
}

func (b *Bot) handleReport(ctx context.Context, msg *tgbotapi.Message) {
	if !b.authSvc.IsAdmin(msg.From.ID) {
		log.Printf("Unauthorized report attempt by user ID: %d, username: @%s", msg.From.ID, msg.From.UserName)
		b.sendMessage(msg.Chat.ID, msgNoPermission)
		return
	}
	text, err := b.reports.Build(ctx)
	if err != nil {
		log.Printf("❌ report failed: %v", err)
		b.sendMessage(msg.Chat.ID, storageErrorText(err))
		return
	}
	b.sendMessage(msg.Chat.ID, text)
}

func (b *Bot) handleClearRequest(msg *tgbotapi.Message) {
	if !b.authSvc.IsAdmin(msg.From.ID) {
		log.Printf("Unauthorized clear attempt by user ID: %d, username: @%s", msg.From.ID, msg.From.UserName)
		b.sendMessage(msg.Chat.ID, msgNoPermission)
		return
	}
	token := b.clearing.Request()
	log.Printf("🧹 clear requested by admin %d in chat %d", msg.From.ID, msg.Chat.ID)
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Да, очистить", clearing.CallbackData(clearing.ActionConfirm, token)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отмена", clearing.CallbackData(clearing.ActionCancel, token)),
		),
	)
	b.sendWithMarkup(msg.Chat.ID, msgClearPrompt, kb)
}

// handleCallback resolves the confirm and cancel buttons of a clear prompt.
func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	confirm, token, ok := clearing.ParseCallbackData(cb.Data)
	if !ok {
		b.answerCallback(cb.ID, "")
		return
	}
	if cb.From == nil || !b.authSvc.IsAdmin(cb.From.ID) {
		if cb.From != nil {
			log.Printf("Unauthorized clear callback by user ID: %d, username: @%s", cb.From.ID, cb.From.UserName)
		}
		b.answerCallback(cb.ID, msgNoPermission)
		return
	}

	outcome, deleted, err := b.clearing.Resolve(ctx, token, confirm)
	if err != nil {
		log.Printf("❌ clear failed: %v", err)
		b.answerCallback(cb.ID, storageErrorText(err))
		return
	}

	var text, ack string
	switch outcome {
	case clearing.Confirmed:
		log.Printf("🧹 admin %d cleared %d record(s)", cb.From.ID, deleted)
		text, ack = msgCleared, "Данные удалены."
	case clearing.Cancelled:
		text, ack = msgClearCancelled, "Отмена."
	default:
		text, ack = msgClearStale, "Запрос устарел."
	}
	if cb.Message != nil && cb.Message.Chat != nil {
		b.editMessage(cb.Message.Chat.ID, cb.Message.MessageID, text)
	}
	b.answerCallback(cb.ID, ack)
}

func storageErrorText(err error) string {
	if errors.Is(err, storage.ErrUnavailable) {
		return msgStorageDown
	}
	return "Произошла ошибка, попробуйте позже."
}

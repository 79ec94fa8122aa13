package telegram

import (
	"context"
	"log"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"lesson-ledger/internal/auth"
	"lesson-ledger/internal/clearing"
	"lesson-ledger/internal/form"
	"lesson-ledger/internal/report"
	"lesson-ledger/internal/session"
	"lesson-ledger/internal/storage"
)

type Bot struct {
	api      *tgbotapi.BotAPI
	s        sender
	authSvc  *auth.Service
	store    storage.Store
	sessions *session.Manager
	form     *form.Engine
	reports  *report.Engine
	clearing *clearing.Workflow
	dispatch *dispatcher
}

func New(botToken string, authSvc *auth.Service, store storage.Store, sessions *session.Manager) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	b := newBot(botAPISender{api: api}, authSvc, store, sessions)
	b.api = api
	log.Printf("Authorized on account @%s", api.Self.UserName)
	return b, nil
}

func newBot(s sender, authSvc *auth.Service, store storage.Store, sessions *session.Manager) *Bot {
	b := &Bot{
		s:        s,
		authSvc:  authSvc,
		store:    store,
		sessions: sessions,
		reports:  report.NewEngine(store),
		clearing: clearing.New(store),
		dispatch: newDispatcher(),
	}
	b.form = form.NewEngine(sessions, store, b, authSvc)
	return b
}

// Start polls for updates until ctx is cancelled. Updates of one chat are
// handled in order; different chats are handled concurrently.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.dispatch.Wait()
			return
		case update, ok := <-updates:
			if !ok {
				b.dispatch.Wait()
				return
			}
			b.enqueue(ctx, update)
		}
	}
}

func (b *Bot) enqueue(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil && update.Message.Chat != nil:
		msg := update.Message
		b.dispatch.Do(msg.Chat.ID, func() { b.handleIncomingMessage(ctx, msg) })
	case update.CallbackQuery != nil:
		cb := update.CallbackQuery
		chatID := cb.From.ID
		if cb.Message != nil && cb.Message.Chat != nil {
			chatID = cb.Message.Chat.ID
		}
		b.dispatch.Do(chatID, func() { b.handleCallback(ctx, cb) })
	}
}

// Notify sends plain text to a chat.
func (b *Bot) Notify(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := b.s.Send(msg)
	return err
}

// Broadcast sends text to every admin, ignoring delivery failures, and
// returns how many admins received it.
func (b *Bot) Broadcast(text string) int {
	delivered := 0
	for _, id := range b.authSvc.Admins() {
		if err := b.Notify(id, text); err != nil {
			log.Printf("⚠️ broadcast to admin %d failed: %v", id, err)
			continue
		}
		delivered++
	}
	return delivered
}

// SendScheduledReport builds the all-time report and broadcasts it to admins.
func (b *Bot) SendScheduledReport(ctx context.Context) error {
	text, err := b.reports.Build(ctx)
	if err != nil {
		return err
	}
	b.Broadcast(text)
	return nil
}

// NotifyFailures is the number of undelivered admin copies of submissions.
func (b *Bot) NotifyFailures() int64 { return b.form.NotifyFailures() }

func (b *Bot) sendMessage(chatID int64, text string) {
	if err := b.Notify(chatID, text); err != nil {
		log.Printf("failed to send message: %v", err)
	}
}

func (b *Bot) sendWithMarkup(chatID int64, text string, markup interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	if _, err := b.s.Send(msg); err != nil {
		log.Printf("failed to send message: %v", err)
	}
}

func (b *Bot) editMessage(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	if _, err := b.s.Send(edit); err != nil {
		log.Printf("⚠️ failed to edit message: %v", err)
	}
}

func (b *Bot) answerCallback(id, text string) {
	if _, err := b.s.Request(tgbotapi.NewCallback(id, text)); err != nil {
		log.Printf("failed to answer callback: %v", err)
	}
}

// ExpireClearRequests drops clear prompts nobody answered within maxAge.
func (b *Bot) ExpireClearRequests(maxAge time.Duration) int {
	return b.clearing.Expire(maxAge)
}

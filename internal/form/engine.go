package form

import (
	"context"
	"log"
	"math"
	"strconv"
	"sync/atomic"

	"lesson-ledger/internal/session"
	"lesson-ledger/internal/storage"
)

const (
	msgEnterNumber = "Введите число!"
	msgCancelled   = "Заполнение формы отменено."
	msgStoreFailed = "⚠️ Не удалось сохранить запись, хранилище недоступно. Отправьте оплату за 1 час ещё раз."
	msgFormCorrupt = "⚠️ Данные формы повреждены, начните заполнение заново."
)

// Sessions is the part of the session manager the engine relies on.
type Sessions interface {
	State(chatID int64) session.State
	SetState(chatID int64, st session.State)
	UpdateFields(chatID int64, partial map[string]string) map[string]string
	Fields(chatID int64) map[string]string
	Clear(chatID int64)
}

// Notifier delivers a text message to a chat.
type Notifier interface {
	Notify(chatID int64, text string) error
}

// Inserter persists a completed submission.
type Inserter interface {
	Insert(ctx context.Context, sub storage.Submission) (uint64, error)
}

// Admins lists the identities that receive a copy of every submission.
type Admins interface {
	Admins() []int64
}

type Engine struct {
	sessions Sessions
	store    Inserter
	notifier Notifier
	admins   Admins

	notifyFailures atomic.Int64
}

func NewEngine(sessions Sessions, store Inserter, notifier Notifier, admins Admins) *Engine {
	return &Engine{sessions: sessions, store: store, notifier: notifier, admins: admins}
}

// Start (re)starts the form for chatID, dropping anything collected so far.
func (e *Engine) Start(ctx context.Context, chatID int64) {
	next, err := transition(ctx, e.sessions.State(chatID), eventStart)
	if err != nil {
		log.Printf("form start for chat %d: %v", chatID, err)
		return
	}
	e.sessions.Clear(chatID)
	e.sessions.SetState(chatID, next)
	e.reply(chatID, prompts[next])
}

// Cancel abandons an in-progress form. It reports false when the chat had
// no form to cancel.
func (e *Engine) Cancel(ctx context.Context, chatID int64) bool {
	next, err := transition(ctx, e.sessions.State(chatID), eventCancel)
	if err != nil {
		return false
	}
	e.sessions.SetState(chatID, next)
	e.reply(chatID, msgCancelled)
	return true
}

// Handle feeds a text answer to the chat's current step. It reports whether
// the text was consumed; text for an idle chat is dropped.
func (e *Engine) Handle(ctx context.Context, chatID int64, text string) bool {
	cur := e.sessions.State(chatID)
	st, ok := steps[cur]
	if !ok {
		return false
	}

	value, valid := st.parse(text)
	if !valid {
		e.reply(chatID, msgEnterNumber)
		return true
	}

	if cur == session.AwaitingRate {
		e.commit(ctx, chatID, value)
		return true
	}

	next, err := transition(ctx, cur, eventAnswer)
	if err != nil {
		log.Printf("form transition from %s for chat %d: %v", cur, chatID, err)
		return true
	}
	e.sessions.UpdateFields(chatID, map[string]string{st.field: value})
	e.sessions.SetState(chatID, next)
	e.reply(chatID, prompts[next])
	return true
}

// NotifyFailures is the number of admin copies that could not be delivered
// since start.
func (e *Engine) NotifyFailures() int64 { return e.notifyFailures.Load() }

func (e *Engine) commit(ctx context.Context, chatID int64, rateValue string) {
	fields := e.sessions.Fields(chatID)
	hours, errH := strconv.ParseInt(fields[FieldHours], 10, 64)
	rate, errR := strconv.ParseFloat(rateValue, 64)
	if errH != nil || errR != nil {
		log.Printf("form commit for chat %d: bad collected data: hours=%q rate=%q", chatID, fields[FieldHours], rateValue)
		e.sessions.Clear(chatID)
		e.reply(chatID, msgFormCorrupt)
		return
	}
	total := float64(hours) * rate
	if math.IsInf(total, 0) || math.IsNaN(total) {
		e.reply(chatID, msgEnterNumber)
		return
	}

	sub := storage.Submission{
		ChatID:       fields[FieldChatID],
		StudentName:  fields[FieldStudentName],
		EmployeeName: fields[FieldEmployeeName],
		NextLesson:   fields[FieldNextLesson],
		Hours:        hours,
		Rate:         rate,
		Total:        total,
	}

	id, err := e.store.Insert(ctx, sub)
	if err != nil {
		log.Printf("❌ failed to save record for chat %d: %v", chatID, err)
		e.reply(chatID, msgStoreFailed)
		return
	}
	log.Printf("📝 record %d saved for chat %d (employee %q, total %s)", id, chatID, sub.EmployeeName, FormatAmount(sub.Total))

	next, err := transition(ctx, session.AwaitingRate, eventAnswer)
	if err != nil {
		log.Printf("form transition after commit for chat %d: %v", chatID, err)
	}
	e.sessions.SetState(chatID, next)

	e.reply(chatID, formatConfirmation(sub))
	e.notifyAdmins(formatAdminCopy(sub))
}

// notifyAdmins sends text to every admin independently. Failures are counted
// and logged, never returned.
func (e *Engine) notifyAdmins(text string) {
	if e.admins == nil {
		return
	}
	for _, id := range e.admins.Admins() {
		if err := e.notifier.Notify(id, text); err != nil {
			total := e.notifyFailures.Add(1)
			log.Printf("⚠️ failed to notify admin %d (failures so far: %d): %v", id, total, err)
		}
	}
}

func (e *Engine) reply(chatID int64, text string) {
	if err := e.notifier.Notify(chatID, text); err != nil {
		log.Printf("failed to send message to chat %d: %v", chatID, err)
	}
}

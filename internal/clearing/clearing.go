// Package clearing implements the two-step "clear all records" operation:
// an admin requests it, then confirms or cancels through inline buttons.
// Every request carries its own token, so several pending prompts resolve
// independently and a button that was already used does nothing.
package clearing

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	ActionConfirm = "confirm_clear"
	ActionCancel  = "cancel_clear"
)

// Outcome of resolving a request.
type Outcome int

const (
	Confirmed Outcome = iota + 1
	Cancelled
	// Stale means the token is unknown: already resolved, expired, or issued
	// before a restart.
	Stale
)

type Purger interface {
	DeleteAll(ctx context.Context) (int64, error)
}

type Workflow struct {
	mu sync.Mutex
	// pending maps a token to the time it was issued.
	pending map[string]time.Time
	store   Purger
	now     func() time.Time
}

func New(store Purger) *Workflow {
	return &Workflow{pending: make(map[string]time.Time), store: store, now: time.Now}
}

// Request opens a new clear request and returns its token. Earlier pending
// requests stay valid.
func (w *Workflow) Request() string {
	token := uuid.NewString()
	w.mu.Lock()
	w.pending[token] = w.now()
	w.mu.Unlock()
	return token
}

// Resolve confirms or cancels the request identified by token. On a storage
// error the request stays pending so it can be confirmed again.
func (w *Workflow) Resolve(ctx context.Context, token string, confirm bool) (Outcome, int64, error) {
	w.mu.Lock()
	_, ok := w.pending[token]
	if !ok {
		w.mu.Unlock()
		return Stale, 0, nil
	}
	if !confirm {
		delete(w.pending, token)
		w.mu.Unlock()
		return Cancelled, 0, nil
	}
	w.mu.Unlock()

	n, err := w.store.DeleteAll(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("clear records: %w", err)
	}

	w.mu.Lock()
	delete(w.pending, token)
	w.mu.Unlock()
	return Confirmed, n, nil
}

// Expire drops requests older than maxAge and returns how many were
// dropped. Their buttons then resolve as Stale.
func (w *Workflow) Expire(maxAge time.Duration) int {
	cutoff := w.now().Add(-maxAge)
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for token, issued := range w.pending {
		if issued.Before(cutoff) {
			delete(w.pending, token)
			n++
		}
	}
	return n
}

// Pending returns the number of unresolved requests.
func (w *Workflow) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

// CallbackData builds the inline button payload for action and token.
func CallbackData(action, token string) string {
	return action + ":" + token
}

// ParseCallbackData splits a button payload. ok is false for payloads that
// do not belong to this workflow.
func ParseCallbackData(data string) (confirm bool, token string, ok bool) {
	action, token, found := strings.Cut(data, ":")
	if !found || token == "" {
		return false, "", false
	}
	switch action {
	case ActionConfirm:
		return true, token, true
	case ActionCancel:
		return false, token, true
	default:
		return false, "", false
	}
}

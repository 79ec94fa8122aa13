package clearing

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeStore struct {
	rows  int64
	calls int
	err   error
}

func (f *fakeStore) DeleteAll(ctx context.Context) (int64, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	n := f.rows
	f.rows = 0
	return n, nil
}

func TestWorkflow_Confirm(t *testing.T) {
	st := &fakeStore{rows: 3}
	w := New(st)
	ctx := context.Background()

	tok := w.Request()
	out, n, err := w.Resolve(ctx, tok, true)
	if err != nil || out != Confirmed || n != 3 {
		t.Fatalf("confirm: out=%v n=%d err=%v", out, n, err)
	}
	if st.rows != 0 || w.Pending() != 0 {
		t.Fatalf("store not cleared or request kept")
	}

	out, _, _ = w.Resolve(ctx, tok, true)
	if out != Stale || st.calls != 1 {
		t.Fatalf("reused token must be stale and not delete again: out=%v calls=%d", out, st.calls)
	}
}

func TestWorkflow_ConfirmOnEmptyStore(t *testing.T) {
	w := New(&fakeStore{})
	out, n, err := w.Resolve(context.Background(), w.Request(), true)
	if err != nil || out != Confirmed || n != 0 {
		t.Fatalf("empty confirm: out=%v n=%d err=%v", out, n, err)
	}
}

func TestWorkflow_CancelLeavesStore(t *testing.T) {
	st := &fakeStore{rows: 5}
	w := New(st)
	out, _, err := w.Resolve(context.Background(), w.Request(), false)
	if err != nil || out != Cancelled {
		t.Fatalf("cancel: out=%v err=%v", out, err)
	}
	if st.calls != 0 || st.rows != 5 {
		t.Fatalf("cancel touched the store")
	}
}

func TestWorkflow_IndependentRequests(t *testing.T) {
	st := &fakeStore{rows: 2}
	w := New(st)
	ctx := context.Background()
	first := w.Request()
	second := w.Request()
	if first == second {
		t.Fatalf("tokens must be unique")
	}

	if out, _, _ := w.Resolve(ctx, second, false); out != Cancelled {
		t.Fatalf("second: %v", out)
	}
	if out, _, _ := w.Resolve(ctx, first, true); out != Confirmed {
		t.Fatalf("first must still be actionable: %v", out)
	}
}

func TestWorkflow_StorageErrorKeepsRequest(t *testing.T) {
	st := &fakeStore{rows: 1, err: errors.New("disk full")}
	w := New(st)
	tok := w.Request()
	if _, _, err := w.Resolve(context.Background(), tok, true); err == nil {
		t.Fatalf("expected error")
	}
	if w.Pending() != 1 {
		t.Fatalf("request must stay pending after failure")
	}
	st.err = nil
	if out, _, _ := w.Resolve(context.Background(), tok, true); out != Confirmed {
		t.Fatalf("retry failed: %v", out)
	}
}

func TestParseCallbackData(t *testing.T) {
	confirm, tok, ok := ParseCallbackData(CallbackData(ActionConfirm, "abc"))
	if !ok || !confirm || tok != "abc" {
		t.Fatalf("confirm payload: %v %q %v", confirm, tok, ok)
	}
	confirm, tok, ok = ParseCallbackData(CallbackData(ActionCancel, "abc"))
	if !ok || confirm || tok != "abc" {
		t.Fatalf("cancel payload: %v %q %v", confirm, tok, ok)
	}
	for _, bad := range []string{"confirm_clear", "confirm_clear:", "reset_ctx", "other:abc"} {
		if _, _, ok := ParseCallbackData(bad); ok {
			t.Fatalf("%q must not parse", bad)
		}
	}
}

func TestWorkflow_ExpireDropsOldRequests(t *testing.T) {
	st := &fakeStore{rows: 2}
	w := New(st)
	now := time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return now }

	old := w.Request()
	now = now.Add(2 * time.Hour)
	fresh := w.Request()
	now = now.Add(30 * time.Minute)

	if n := w.Expire(time.Hour); n != 1 {
		t.Fatalf("want 1 expired, got %d", n)
	}
	if w.Pending() != 1 {
		t.Fatalf("fresh request must stay pending")
	}
	out, _, err := w.Resolve(context.Background(), old, true)
	if err != nil || out != Stale || st.calls != 0 {
		t.Fatalf("expired token must be stale: out=%v err=%v calls=%d", out, err, st.calls)
	}
	out, n, err := w.Resolve(context.Background(), fresh, true)
	if err != nil || out != Confirmed || n != 2 {
		t.Fatalf("fresh token: out=%v n=%d err=%v", out, n, err)
	}
}

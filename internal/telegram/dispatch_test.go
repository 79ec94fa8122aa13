package telegram

import (
	"sync"
	"testing"
	"time"
)

func TestDispatcher_PreservesPerChatOrder(t *testing.T) {
	d := newDispatcher()
	var mu sync.Mutex
	got := map[int64][]int{}

	for i := 0; i < 100; i++ {
		for chat := int64(1); chat <= 3; chat++ {
			i, chat := i, chat
			d.Do(chat, func() {
				mu.Lock()
				got[chat] = append(got[chat], i)
				mu.Unlock()
			})
		}
	}
	d.Wait()

	for chat := int64(1); chat <= 3; chat++ {
		seq := got[chat]
		if len(seq) != 100 {
			t.Fatalf("chat %d: want 100 jobs, got %d", chat, len(seq))
		}
		for i, v := range seq {
			if v != i {
				t.Fatalf("chat %d out of order at %d: %v", chat, i, v)
			}
		}
	}
}

func TestDispatcher_ChatsRunConcurrently(t *testing.T) {
	d := newDispatcher()
	release := make(chan struct{})
	done := make(chan struct{})

	d.Do(1, func() { <-release })
	d.Do(2, func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("chat 2 blocked by chat 1")
	}
	close(release)
	d.Wait()
}

func TestDispatcher_PanicKeepsQueueRunning(t *testing.T) {
	d := newDispatcher()
	var ran bool
	d.Do(7, func() { panic("bad update") })
	d.Do(7, func() { ran = true })
	d.Wait()
	if !ran {
		t.Fatalf("job after a panicking one did not run")
	}
}

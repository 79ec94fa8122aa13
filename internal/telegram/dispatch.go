package telegram

import (
	"log"
	"runtime/debug"
	"sync"
)

// dispatcher runs jobs of the same chat one at a time in arrival order,
// while different chats proceed concurrently. A chat's worker goroutine
// exits as soon as its queue drains.
type dispatcher struct {
	mu     sync.Mutex
	queues map[int64][]func()
	wg     sync.WaitGroup
}

func newDispatcher() *dispatcher {
	return &dispatcher{queues: make(map[int64][]func())}
}

func (d *dispatcher) Do(chatID int64, job func()) {
	d.mu.Lock()
	q, running := d.queues[chatID]
	d.queues[chatID] = append(q, job)
	if !running {
		d.wg.Add(1)
		go d.drain(chatID)
	}
	d.mu.Unlock()
}

func (d *dispatcher) drain(chatID int64) {
	defer d.wg.Done()
	for {
		d.mu.Lock()
		q := d.queues[chatID]
		if len(q) == 0 {
			delete(d.queues, chatID)
			d.mu.Unlock()
			return
		}
		job := q[0]
		d.queues[chatID] = q[1:]
		d.mu.Unlock()
		run(chatID, job)
	}
}

// run executes job, turning a panic into a log line so that one bad update
// does not stop the chat's queue or the process.
func run(chatID int64, job func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ panic while handling chat %d: %v\n%s", chatID, r, debug.Stack())
		}
	}()
	job()
}

// Wait blocks until every queued job has run.
func (d *dispatcher) Wait() { d.wg.Wait() }

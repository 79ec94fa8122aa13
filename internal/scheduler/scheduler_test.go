package scheduler

import (
	"context"
	"testing"
	"time"
)

func TestAddJob_RejectsBadSpec(t *testing.T) {
	s := New()
	defer s.Stop()
	if err := s.AddJob("not a cron", "bad", func(context.Context) error { return nil }); err == nil {
		t.Fatalf("expected error for invalid spec")
	}
	if n := len(s.cron.Entries()); n != 0 {
		t.Fatalf("no job must be registered, got %d", n)
	}
}

func TestAddJob_RegistersEntries(t *testing.T) {
	s := New()
	defer s.Stop()
	if err := s.AddJob("0 21 * * *", "report", func(context.Context) error { return nil }); err != nil {
		t.Fatalf("add report: %v", err)
	}
	if err := s.AddJob("@every 10m", "reap", func(context.Context) error { return nil }); err != nil {
		t.Fatalf("add reap: %v", err)
	}
	if n := len(s.cron.Entries()); n != 2 {
		t.Fatalf("want 2 jobs, got %d", n)
	}
	s.Start()
}

func TestJobPanicDoesNotStopScheduler(t *testing.T) {
	s := New()
	defer s.Stop()

	ran := make(chan struct{}, 4)
	if err := s.AddJob("@every 1s", "boom", func(context.Context) error {
		ran <- struct{}{}
		panic("bad report")
	}); err != nil {
		t.Fatalf("add: %v", err)
	}
	s.Start()

	for i := 0; i < 2; i++ {
		select {
		case <-ran:
		case <-time.After(5 * time.Second):
			t.Fatalf("job did not run again after a panic (run %d)", i+1)
		}
	}
}

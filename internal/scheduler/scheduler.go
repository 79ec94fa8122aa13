package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs periodic jobs in UTC.
type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
}

func New() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithChain(cron.Recover(cron.PrintfLogger(log.Default()))),
	)

	return &Scheduler{
		cron:   c,
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddJob registers job under a standard 5-field cron spec or a descriptor
// such as "@every 10m".
func (s *Scheduler) AddJob(spec, name string, job func(ctx context.Context) error) error {
	_, err := s.cron.AddFunc(spec, func() {
		log.Printf("🕘 running scheduled job %s", name)
		if err := job(s.ctx); err != nil {
			log.Printf("❌ scheduled job %s failed: %v", name, err)
		}
	})
	return err
}

// Start launches the scheduler if any job is registered.
func (s *Scheduler) Start() {
	if len(s.cron.Entries()) == 0 {
		log.Println("📅 No scheduled jobs configured")
		return
	}
	s.cron.Start()
	log.Printf("📅 Scheduler started with %d job(s)", len(s.cron.Entries()))
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	if s.cancel != nil {
		s.cancel()
	}
	log.Println("📅 Scheduler stopped")
}

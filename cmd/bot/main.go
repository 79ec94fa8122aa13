package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"lesson-ledger/internal/auth"
	"lesson-ledger/internal/config"
	"lesson-ledger/internal/scheduler"
	"lesson-ledger/internal/session"
	"lesson-ledger/internal/storage"
	"lesson-ledger/internal/telegram"
)

const (
	reapEvery       = "@every 10m"
	clearRequestTTL = time.Hour
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(string(cfg.Store.DBDriver), cfg.Store.DatabaseDSN)
	if err != nil {
		log.Fatalf("failed to open record store: %v", err)
	}
	defer store.Close()
	if err := store.InitSchema(ctx); err != nil {
		log.Fatalf("failed to init record schema: %v", err)
	}
	if n, err := store.Count(ctx); err == nil {
		log.Printf("Record store ready (%s, %d record(s))", cfg.Store.DBDriver, n)
	}

	authSvc := auth.New(cfg.AdminIDs)
	log.Printf("Loaded %d admin(s)", len(authSvc.Admins()))

	var sessRepo session.Repository
	if cfg.SessionDBPath != "" {
		repo, err := session.NewBoltRepository(cfg.SessionDBPath)
		if err != nil {
			log.Printf("failed to init session store, sessions will not survive restarts: %v", err)
		} else {
			sessRepo = repo
			defer repo.Close()
		}
	}
	sessions := session.NewManager(sessRepo)
	if n := sessions.Active(); n > 0 {
		log.Printf("Restored %d form session(s)", n)
	}

	bot, err := telegram.New(cfg.BotToken, authSvc, store, sessions)
	if err != nil {
		log.Fatalf("failed to create bot: %v", err)
	}

	bot.Broadcast(cfg.StartupMessage)

	sched := scheduler.New()
	if cfg.ReportCron != "" {
		if err := sched.AddJob(cfg.ReportCron, "report", bot.SendScheduledReport); err != nil {
			log.Printf("invalid REPORT_CRON %q: %v", cfg.ReportCron, err)
		}
	}
	ttl := cfg.SessionIdleTTL
	err = sched.AddJob(reapEvery, "housekeeping", func(context.Context) error {
		if ttl > 0 {
			if expired := sessions.Reap(ttl); len(expired) > 0 {
				log.Printf("🧹 expired %d idle form session(s)", len(expired))
			}
		}
		if n := bot.ExpireClearRequests(clearRequestTTL); n > 0 {
			log.Printf("🧹 expired %d unanswered clear request(s)", n)
		}
		return nil
	})
	if err != nil {
		log.Printf("failed to schedule housekeeping: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	bot.Start(ctx)
	log.Printf("Shutting down (undelivered admin notifications: %d)", bot.NotifyFailures())
}

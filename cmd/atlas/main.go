package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"PulseAtlas/internal/collector"
	"PulseAtlas/internal/config"
	"PulseAtlas/internal/decision"
	"PulseAtlas/internal/docs"
	"PulseAtlas/internal/index"
	"PulseAtlas/internal/notifier"
	"PulseAtlas/internal/scheduler"
	"PulseAtlas/internal/scoring"
	"PulseAtlas/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] Pulse Atlas starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Open store
	st, err := store.Open(cfg.Database.SQLitePath)
	if err != nil {
		log.Fatalf("[FATAL] open store: %v", err)
	}
	defer st.Close()

	// Build fetchers from config
	var fetchers []collector.Fetcher
	for _, r := range cfg.GitHub.Repos {
		fetchers = append(fetchers, collector.NewGitHubFetcher(r.Project, r.Repo, cfg.GitHub.Token, cfg.Proxy))
	}
	for _, feedURL := range cfg.Feeds {
		fetchers = append(fetchers, collector.NewFeedFetcher(feedURL, cfg.Proxy))
	}
	if cfg.Metrics.Endpoint != "" {
		fetchers = append(fetchers, collector.NewMetricsFetcher(cfg.Metrics.Endpoint, cfg.Metrics.Netuid, cfg.Metrics.Object, cfg.Proxy))
	}
	log.Printf("[INFO] %d source(s) configured", len(fetchers))

	col := collector.NewCollector(st, fetchers...)
	score := scoring.NewEngine(st)
	dec := decision.NewEngine(st)
	idx := index.NewEngine(st, cfg.Projects, cfg.Index.WindowDays, cfg.Index.RecentDays)

	var inbox *docs.Inbox
	if cfg.Docs.InboxDir != "" {
		inbox = docs.NewInbox(cfg.Docs.InboxDir, st)
	}

	var alerts notifier.Notifier = notifier.NewNoop()
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
		alerts = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		log.Println("[INFO] Telegram alerts enabled")
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, col, score, dec, idx, inbox, alerts, st, cfg.Scoring.Limit)
	if err := sched.Register(cfg.Schedule.PipelineCron); err != nil {
		log.Fatalf("[FATAL] register cron task: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing pipeline now")
		go sched.RunPipeline()
	}

	log.Println("[INFO] Pulse Atlas is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] Pulse Atlas stopped")
}

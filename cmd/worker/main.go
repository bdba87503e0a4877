package main

import (
	"os"
	"os/signal"
	"syscall"

	"fitgrid/internal/cache"
	"fitgrid/internal/config"
	"fitgrid/internal/database"
	"fitgrid/internal/jobs"
	"fitgrid/internal/logger"
	"fitgrid/internal/messaging"
	"fitgrid/internal/repository"
	"fitgrid/internal/search"
	"fitgrid/internal/service"
)

func main() {
	cfg := config.Load()
	cfg.NATS.ClientID = envOr("NATS_CLIENT_ID", "fitgrid-worker")
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log := logger.Get()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("failed to connect to database", "error", err)
	}
	defer db.Close()

	repo := repository.New(db)

	deps := service.Deps{
		Lookups:     repo.Lookups,
		Series:      repo.Series,
		Occurrences: repo.Occurrences,
		Bookings:    repo.Bookings,
		Location:    cfg.Location(),
		HorizonDays: cfg.HorizonDays,
	}

	natsClient, err := messaging.Connect(cfg.NATS)
	if err != nil {
		log.Warn("running without booking audit", "error", err)
	} else {
		defer natsClient.Close()
		deps.Publisher = natsClient
	}

	esClient, err := search.NewClient(cfg.Elasticsearch)
	if err != nil {
		log.Warn("running without search indexing", "error", err)
	} else {
		deps.Indexer = esClient
	}

	scheduleCache, err := cache.NewScheduleCache(cfg.Redis)
	if err != nil {
		log.Warn("running without schedule caching", "error", err)
	} else {
		defer scheduleCache.Close()
		deps.Cache = scheduleCache
	}

	svc := service.New(deps)

	topUp, err := jobs.NewTopUpJob(svc, cfg.TopupCron)
	if err != nil {
		logger.Fatal("invalid top-up schedule", "spec", cfg.TopupCron, "error", err)
	}
	topUp.Start()
	defer topUp.Stop()
	log.Info("top-up job scheduled", "spec", cfg.TopupCron)

	if natsClient != nil {
		auditor, err := jobs.StartBookingAuditor(natsClient)
		if err != nil {
			log.Error("failed to start booking auditor", "error", err)
		} else {
			defer auditor.Stop()
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("worker stopped")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fitgrid/internal/api"
	"fitgrid/internal/cache"
	"fitgrid/internal/config"
	"fitgrid/internal/database"
	"fitgrid/internal/handlers"
	"fitgrid/internal/logger"
	"fitgrid/internal/messaging"
	"fitgrid/internal/repository"
	"fitgrid/internal/search"
	"fitgrid/internal/service"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log := logger.Get()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("failed to connect to database", "error", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		logger.Fatal("failed to run migrations", "error", err)
	}

	repo := repository.New(db)

	deps := service.Deps{
		Lookups:     repo.Lookups,
		Series:      repo.Series,
		Occurrences: repo.Occurrences,
		Bookings:    repo.Bookings,
		Location:    cfg.Location(),
		HorizonDays: cfg.HorizonDays,
	}

	// the side channels are optional: the API keeps serving without
	// events, search or caching
	natsClient, err := messaging.Connect(cfg.NATS)
	if err != nil {
		log.Warn("running without event publishing", "error", err)
	} else {
		defer natsClient.Close()
		deps.Publisher = natsClient
	}

	esClient, err := search.NewClient(cfg.Elasticsearch)
	if err != nil {
		log.Warn("running without class search", "error", err)
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
	server := api.NewServer(cfg, handlers.New(svc, db))

	go func() {
		log.Info("starting api server", "port", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", "error", err)
	}
	log.Info("stopped")
}

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"contentsync/app/api"
	"contentsync/app/cfg"
	"contentsync/app/database"
	"contentsync/app/feed"
	"contentsync/app/notify"
	"contentsync/app/push"
	"contentsync/app/ratelimit"
	"contentsync/app/sources"
	"contentsync/app/sync"
	"contentsync/app/tasks"
)

func main() {
	conf, err := cfg.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if conf == nil {
		// Help was shown, exit gracefully
		return
	}

	setupLogger(conf.Debug)

	slog.Info("Starting ContentSync server", "version", conf.Version)

	db, err := database.NewConnection(conf.DBHost, conf.DBPort, conf.DBUser, conf.DBPassword, conf.DBName)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	slog.Info("Connected to database")

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database migrations applied", "version", version, "dirty", dirty)

	sourceRepo := database.NewSourceRepository(db)
	itemRepo := database.NewItemRepository(db)

	seeds, err := sources.NewLoader(conf.SeedsDir).LoadAll()
	if err != nil {
		log.Fatalf("Failed to load source seeds: %v", err)
	}
	if len(seeds) > 0 {
		if err := sources.Apply(sourceRepo, seeds); err != nil {
			log.Fatalf("Failed to apply source seeds: %v", err)
		}
		slog.Info("Source seeds applied", "count", len(seeds))
	}

	notifier := buildNotifier(conf)
	defer notifier.Close()

	limiter := ratelimit.NewRedisLimiter(conf.RedisAddr, conf.RedisPassword)
	defer limiter.Close()

	httpClient := &http.Client{Timeout: 30 * time.Second}
	fetcher := sync.NewHTTPFetcher(httpClient, conf.UserAgent)
	prober := sync.NewHTTPProber(httpClient, conf.UserAgent)
	archiver := sync.NewArchiveDetector(itemRepo, prober)
	verifier := sync.NewRecordedVerifier(sourceRepo)
	providers := push.NewRegistry()

	engine := sync.NewEngine(sourceRepo, itemRepo, fetcher, feed.NewParser(),
		archiver, verifier, notifier, providers)

	slog.Info("Starting background scheduler", "workers", conf.WorkerCount, "interval_seconds", conf.SchedulerInterval)
	scheduler := tasks.NewScheduler(sourceRepo, engine)
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(sourceRepo, itemRepo, engine, providers, limiter, scheduler,
		conf.SyncRateMax, time.Duration(conf.SyncRateWindow)*time.Second)
	server := api.NewServer(handler, conf.ServiceKey)

	httpServer := &http.Server{
		Addr:         ":" + conf.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", conf.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	// Scheduler and notifier are stopped via defer
	slog.Info("Shutdown complete")
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
}

func buildNotifier(conf *cfg.Cfg) notify.Notifier {
	if conf.RabbitMQURL == "" {
		slog.Info("RabbitMQ not configured, notifications go to the log")
		return notify.NewLogNotifier()
	}

	broker, err := notify.NewRabbitMQ(conf.RabbitMQURL, conf.RabbitMQExchange, "notifications")
	if err != nil {
		slog.Warn("Failed to connect to RabbitMQ, notifications go to the log", "error", err)
		return notify.NewLogNotifier()
	}

	slog.Info("Connected to RabbitMQ", "exchange", conf.RabbitMQExchange)
	return broker
}

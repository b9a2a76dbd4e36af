package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/garnizeh/bidtrack/api"
	dbfs "github.com/garnizeh/bidtrack/db"
	"github.com/garnizeh/bidtrack/internal/config"
	"github.com/garnizeh/bidtrack/internal/db"
	"github.com/garnizeh/bidtrack/internal/files"
	"github.com/garnizeh/bidtrack/internal/jobs"
	"github.com/garnizeh/bidtrack/pkg/push"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	var configPath = flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	// .env is optional; absence is not an error
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)
	api.SetLogger(logger)

	logger.Info("starting bidtrack server", "version", version, "buildTime", buildTime)

	ctx := context.Background()

	database, err := db.New(ctx, cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}

	if err := db.Migrate(ctx, database, dbfs.Migrations, dbfs.SeedFiles); err != nil {
		log.Fatalf("Failed to migrate DB: %v", err)
	}

	store, err := files.NewStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to prepare upload dir: %v", err)
	}

	pushClient, err := push.NewClient(push.Config{
		BaseURL: cfg.Push.BaseURL,
		AppKey:  cfg.Push.AppKey,
		Timeout: cfg.Push.Timeout,
	}, nil)
	if err != nil {
		log.Fatalf("Failed to build push client: %v", err)
	}

	// Background job pool: push fan-out and attachment cleanup
	pool := jobs.NewWorkerPool(jobs.NewRepository(database), map[string]jobs.Handler{
		jobs.TypeNotifyPush:   jobs.NewPushHandler(pushClient, logger),
		jobs.TypeFilesCleanup: jobs.NewCleanupHandler(store, logger),
	}, logger, cfg.WorkerCount)

	workerCtx, stopWorkers := context.WithCancel(ctx)
	pool.Start(workerCtx)

	handler, err := api.SetupRoutes(cfg, version, buildTime, database, pool, store)
	if err != nil {
		log.Fatalf("Failed to set up routes: %v", err)
	}

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.APITimeout,
		WriteTimeout: cfg.APITimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	stopWorkers()
	pool.Stop()

	if err := database.Close(); err != nil {
		logger.Error("closing DB", "err", err)
	}

	logger.Info("server exited")
}

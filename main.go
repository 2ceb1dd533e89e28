package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/payflow/escrow/escrow"
	"github.com/payflow/escrow/escrow/database"
	"github.com/payflow/escrow/escrow/events"
	"github.com/payflow/escrow/escrow/logger"
	"github.com/payflow/escrow/escrow/services"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	slog.SetDefault(slog.New(logger.NewHandler()))

	slog.Info("Starting escrow trade service",
		slog.String("version", version),
		slog.String("commit", commit))

	path := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	cfg, err := escrow.LoadConfig(*path)
	if err != nil {
		logger.LogError("Failed to load configuration", err)
		os.Exit(-1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	dbStartTime := time.Now()
	db, err := database.New(ctx, cfg.DB)
	if err != nil {
		logger.LogError("Database connection failed", err,
			slog.Duration("attempted_for", time.Since(dbStartTime)))
		os.Exit(-1)
	}
	defer db.Close()

	if err := db.InitializeSchema(ctx); err != nil {
		logger.LogError("Failed to initialize database schema", err)
		os.Exit(-1)
	}
	logger.LogSystem("Database ready",
		slog.String("database", cfg.DB.Database),
		slog.Duration("took", time.Since(dbStartTime)))

	var sink events.Sink
	if cfg.Events.MongoURI != "" {
		mongoSink, err := events.NewMongoSink(ctx, cfg.Events.MongoURI, cfg.Events.Database, cfg.Events.Collection)
		if err != nil {
			logger.LogError("Failed to connect event sink", err)
			os.Exit(-1)
		}
		defer mongoSink.Close(context.Background())
		sink = mongoSink
	}

	app := escrow.New(*cfg, version, commit)
	app.Setup(db, sink)

	if cfg.Spaces.Key != "" {
		receipts, err := services.NewReceiptService(
			cfg.Spaces.Key,
			cfg.Spaces.Secret,
			cfg.Spaces.Region,
			cfg.Spaces.Bucket,
			cfg.Spaces.ReceiptRoot,
		)
		if err != nil {
			logger.LogError("Failed to initialize receipt storage", err)
			os.Exit(-1)
		}
		app.Receipts = receipts
	}

	logger.LogSystem("Escrow trade service is now ready",
		slog.String("version", version))

	s := make(chan os.Signal, 1)
	signal.Notify(s, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-s
	logger.LogSystem("Shutting down")
}

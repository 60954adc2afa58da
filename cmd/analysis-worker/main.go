// Command analysis-worker is the batch worker entrypoint: it wires an
// engine driver pool, an opening book, a Persistence adapter, and (in
// normal mode) a queue.Client into a worker.Worker and runs it until a
// termination signal arrives or, in single-shot mode, until GAME_ID has
// been analyzed.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/chessreview/analysis-worker/internal/book"
	"github.com/chessreview/analysis-worker/internal/config"
	"github.com/chessreview/analysis-worker/internal/engineclient"
	"github.com/chessreview/analysis-worker/internal/metrics"
	"github.com/chessreview/analysis-worker/internal/queue"
	"github.com/chessreview/analysis-worker/internal/storage"
	"github.com/chessreview/analysis-worker/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logrus.StandardLogger()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.JSONFormatter{})

	pool, err := engineclient.NewPool(cfg.EnginePath, cfg.WorkerConcurrency)
	if err != nil {
		logger.WithError(err).Fatal("spawning engine pool")
	}
	defer pool.Shutdown()

	store, err := openStore(cfg)
	if err != nil {
		pool.Shutdown()
		logger.WithError(err).Fatal("opening persistence store")
	}
	defer store.Close()

	var dict *book.Book
	if path := os.Getenv("OPENING_BOOK_PATH"); path != "" {
		dict, err = book.LoadPolyglot(path)
		if err != nil {
			logger.WithError(err).Warn("failed to load opening book, continuing without one")
			dict = nil
		}
	}

	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := m.Serve(ctx, cfg.MetricsAddr); err != nil {
			logger.WithError(err).Warn("metrics server exited with error")
		}
	}()

	w := worker.New(nil, pool, store, dict, m, logger, worker.Config{
		NodesPerPosition:      cfg.NodesPerPosition,
		Concurrency:           cfg.WorkerConcurrency,
		MaxEmptyReceives:      cfg.MaxEmptyReceives,
		VisibilityTimeoutSecs: cfg.VisibilityTimeoutSecs,
		LongPollSeconds:       20,
		MaxMessages:           10,
	})

	if cfg.SingleShot() {
		if err := w.RunOne(ctx, cfg.GameID); err != nil {
			logger.WithError(err).WithField("game_id", cfg.GameID).Error("single-shot analysis failed")
			pool.Shutdown()
			store.Close()
			os.Exit(1)
		}
		logger.WithField("game_id", cfg.GameID).Info("single-shot analysis complete")
		return
	}

	w.Queue = mustQueueClient(cfg, logger)
	if err := w.Run(ctx); err != nil {
		logger.WithError(err).Error("worker loop exited with error")
		pool.Shutdown()
		store.Close()
		os.Exit(1)
	}
	logger.Info("worker shut down cleanly")
}

func openStore(cfg *config.Config) (storage.Persistence, error) {
	if cfg.DatabaseURL != "" {
		return storage.NewPostgresStore(context.Background(), cfg.DatabaseURL)
	}
	dir, err := storage.GetDatabaseDir()
	if err != nil {
		return nil, err
	}
	return storage.NewBadgerStore(dir)
}

// mustQueueClient wires the queue client. No cloud adapter ships in this
// repo; a deployer supplies a queue.Client implementation and wires it
// here. QUEUE_ENDPOINT_URL takes precedence over QUEUE_URL; one of them
// must be set, but either is only logged, and the returned client is always
// the in-memory double.
func mustQueueClient(cfg *config.Config, logger *logrus.Logger) queue.Client {
	url := cfg.QueueEndpointURL
	if url == "" {
		url = cfg.QueueURL
	}
	if url == "" {
		logger.Fatal("QUEUE_URL (or QUEUE_ENDPOINT_URL) is required outside single-shot mode")
	}
	logger.WithField("queue_url", url).Warn("no cloud queue adapter is wired into this binary; supply one via queue.Client")
	return queue.NewMem()
}

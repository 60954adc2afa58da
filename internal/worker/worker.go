// Package worker implements the queue-draining job loop: receive a small
// batch of messages, dispatch one game per message against a
// semaphore-gated pool of engine drivers, commit (delete) or abandon
// (leave for redelivery) on outcome, and honor graceful shutdown. The
// semaphore-via-buffered-channel admission pattern mirrors
// engineclient.Pool's own driver free-list.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/chessreview/analysis-worker/internal/book"
	"github.com/chessreview/analysis-worker/internal/engineclient"
	"github.com/chessreview/analysis-worker/internal/metrics"
	"github.com/chessreview/analysis-worker/internal/pipeline"
	"github.com/chessreview/analysis-worker/internal/queue"
	"github.com/chessreview/analysis-worker/internal/storage"
)

// Config bundles the per-job knobs the worker loop needs beyond its
// collaborators (queue, pool, store): node budget, polling shape, and the
// graceful-exit threshold for environments without a signal to watch.
type Config struct {
	NodesPerPosition      int
	Concurrency           int
	MaxEmptyReceives      int
	VisibilityTimeoutSecs int
	LongPollSeconds       int
	MaxMessages           int
}

// Worker drains a queue.Client, running one pipeline.AnalyzeGame per
// message against a pooled engine driver, and persists through a
// storage.Persistence collaborator.
type Worker struct {
	Queue   queue.Client
	Pool    *engineclient.Pool
	Store   storage.Persistence
	Book    *book.Book
	Metrics *metrics.Metrics
	Log     *logrus.Logger
	Cfg     Config

	sem chan struct{}
	wg  sync.WaitGroup
}

// New builds a Worker ready to Run. log defaults to logrus.StandardLogger()
// when nil.
func New(q queue.Client, pool *engineclient.Pool, store storage.Persistence, dict *book.Book, m *metrics.Metrics, log *logrus.Logger, cfg Config) *Worker {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.MaxMessages < 1 || cfg.MaxMessages > 10 {
		cfg.MaxMessages = 10
	}
	return &Worker{
		Queue:   q,
		Pool:    pool,
		Store:   store,
		Book:    dict,
		Metrics: m,
		Log:     log,
		Cfg:     cfg,
		sem:     make(chan struct{}, cfg.Concurrency),
	}
}

// RunOne processes exactly one game id (single-shot mode, GAME_ID set) and
// returns its outcome without touching the queue.
func (w *Worker) RunOne(ctx context.Context, gameID string) error {
	return w.process(ctx, gameID)
}

// Run drains the queue until ctx is cancelled (graceful shutdown) or
// MaxEmptyReceives consecutive empty polls occur (the fallback for
// platforms lacking a termination signal). It blocks until every
// in-flight task has drained before returning.
func (w *Worker) Run(ctx context.Context) error {
	emptyPolls := 0
	for {
		select {
		case <-ctx.Done():
			w.wg.Wait()
			return nil
		default:
		}

		msgs, err := w.Queue.Receive(ctx, w.Cfg.MaxMessages, w.Cfg.LongPollSeconds, w.Cfg.VisibilityTimeoutSecs)
		if err != nil {
			w.Log.WithError(err).Warn("queue receive failed, retrying after backoff")
			select {
			case <-ctx.Done():
				w.wg.Wait()
				return nil
			case <-time.After(2 * time.Second):
			}
			continue
		}

		if len(msgs) == 0 {
			emptyPolls++
			if w.Cfg.MaxEmptyReceives > 0 && emptyPolls >= w.Cfg.MaxEmptyReceives {
				w.wg.Wait()
				return nil
			}
			continue
		}
		emptyPolls = 0

		for _, msg := range msgs {
			msg := msg
			select {
			case w.sem <- struct{}{}:
			case <-ctx.Done():
				w.wg.Wait()
				return nil
			}
			w.wg.Add(1)
			go func() {
				defer w.wg.Done()
				defer func() { <-w.sem }()
				w.handleMessage(ctx, msg)
			}()
		}
	}
}

func (w *Worker) handleMessage(ctx context.Context, msg queue.Message) {
	gameID, err := parseGameID(msg.Body)
	if err != nil {
		w.Log.WithFields(logrus.Fields{"phase": "decode", "outcome": "poison"}).
			WithError(err).Warn("malformed queue message body")
		w.deletePoison(ctx, msg.Receipt)
		return
	}

	if err := w.process(ctx, gameID); err != nil {
		if err == errGameNotFound {
			w.Log.WithFields(logrus.Fields{"game_id": gameID, "phase": "load", "outcome": "poison"}).
				Warn("game not found, deleting poison message")
			w.deletePoison(ctx, msg.Receipt)
			if w.Metrics != nil {
				w.Metrics.JobsPoisoned.Inc()
			}
			return
		}
		w.Log.WithFields(logrus.Fields{"game_id": gameID, "phase": "analyze", "outcome": "failed"}).
			WithError(err).Error("game analysis failed, leaving for redelivery")
		if w.Metrics != nil {
			w.Metrics.JobsFailed.Inc()
		}
		return
	}

	if err := w.Queue.Delete(ctx, msg.Receipt); err != nil {
		w.Log.WithFields(logrus.Fields{"game_id": gameID, "phase": "commit", "outcome": "failed"}).
			WithError(err).Error("failed to delete committed message")
	}
}

func (w *Worker) deletePoison(ctx context.Context, receipt string) {
	if err := w.Queue.Delete(ctx, receipt); err != nil {
		w.Log.WithError(err).Error("failed to delete poison message")
	}
}

var errGameNotFound = fmt.Errorf("worker: game not found")

// process runs the full per-game pipeline: load, acquire a driver, analyze,
// store, release. Engine transport failures drop (recycle) the driver
// rather than reusing it in an undefined state.
func (w *Worker) process(ctx context.Context, gameID string) error {
	start := time.Now()
	log := w.Log.WithFields(logrus.Fields{"game_id": gameID, "phase": "analyze"})

	input, err := w.Store.LoadGame(ctx, gameID)
	if err != nil {
		return fmt.Errorf("worker: load game %s: %w", gameID, err)
	}
	if input == nil {
		return errGameNotFound
	}

	if input.NodesPerPosition <= 0 {
		input.NodesPerPosition = w.Cfg.NodesPerPosition
	}

	driver, err := w.Pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("worker: acquire engine driver: %w", err)
	}

	record, err := pipeline.AnalyzeGame(driver, w.Book, *input)
	if err != nil {
		w.Pool.Recycle(driver)
		return fmt.Errorf("worker: analyze game %s: %w", gameID, err)
	}
	w.Pool.Release(driver)

	if err := w.Store.StoreAnalysis(ctx, gameID, record); err != nil {
		return fmt.Errorf("worker: store analysis for %s: %w", gameID, err)
	}

	if w.Metrics != nil {
		w.Metrics.JobsProcessed.Inc()
		w.Metrics.AnalysisDuration.Observe(time.Since(start).Seconds())
		w.Metrics.EngineEvaluations.Add(float64(len(record.Moves) + 1))
	}
	log.WithField("outcome", "ok").WithField("duration", time.Since(start)).Info("game analyzed")
	return nil
}

func parseGameID(body string) (string, error) {
	if _, err := strconv.ParseInt(body, 10, 64); err != nil {
		return "", fmt.Errorf("expected ASCII decimal game id, got %q: %w", body, err)
	}
	return body, nil
}

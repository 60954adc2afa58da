package worker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/chessreview/analysis-worker/internal/pipeline"
	"github.com/chessreview/analysis-worker/internal/queue"
)

// fakeStore is an in-memory Persistence double; full pipeline execution
// against a pooled driver is covered by internal/pipeline's own tests, so
// these tests exercise only the worker-loop plumbing (poison handling,
// redelivery, shutdown) and never reach engineclient.Pool.Acquire.
type fakeStore struct {
	games   map[string]*pipeline.GameInput
	stored  map[string]*pipeline.GameAnalysisRecord
	failGID string
}

func (s *fakeStore) LoadGame(_ context.Context, gameID string) (*pipeline.GameInput, error) {
	if gameID == s.failGID {
		return nil, fmt.Errorf("simulated load failure")
	}
	g, ok := s.games[gameID]
	if !ok {
		return nil, nil
	}
	return g, nil
}

func (s *fakeStore) StoreAnalysis(_ context.Context, gameID string, rec *pipeline.GameAnalysisRecord) error {
	s.stored[gameID] = rec
	return nil
}

func (s *fakeStore) Close() error { return nil }

func newTestWorker(q queue.Client, store *fakeStore) *Worker {
	return New(q, nil, store, nil, nil, nil, Config{
		NodesPerPosition:      1000,
		Concurrency:           2,
		MaxEmptyReceives:      2,
		VisibilityTimeoutSecs: 30,
		LongPollSeconds:       0,
		MaxMessages:           10,
	})
}

func TestHandleMessagePoisonOnMissingGame(t *testing.T) {
	q := queue.NewMem()
	q.Enqueue("404")
	store := &fakeStore{games: map[string]*pipeline.GameInput{}, stored: map[string]*pipeline.GameAnalysisRecord{}}
	w := newTestWorker(q, store)

	ctx := context.Background()
	msgs, err := q.Receive(ctx, 1, 0, 30)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}

	w.handleMessage(ctx, msgs[0])

	if err := q.Delete(ctx, msgs[0].Receipt); err == nil {
		t.Error("expected poison message to already be deleted by handleMessage")
	}
}

func TestHandleMessageMalformedBodyIsPoison(t *testing.T) {
	q := queue.NewMem()
	q.Enqueue("not-a-game-id")
	store := &fakeStore{games: map[string]*pipeline.GameInput{}, stored: map[string]*pipeline.GameAnalysisRecord{}}
	w := newTestWorker(q, store)

	ctx := context.Background()
	msgs, _ := q.Receive(ctx, 1, 0, 30)
	w.handleMessage(ctx, msgs[0])

	if err := q.Delete(ctx, msgs[0].Receipt); err == nil {
		t.Error("malformed-body message should already be deleted as poison")
	}
}

func TestHandleMessageLoadFailureLeavesMessageForRedelivery(t *testing.T) {
	q := queue.NewMem()
	q.Enqueue("777")
	store := &fakeStore{games: map[string]*pipeline.GameInput{}, stored: map[string]*pipeline.GameAnalysisRecord{}, failGID: "777"}
	w := newTestWorker(q, store)

	ctx := context.Background()
	msgs, _ := q.Receive(ctx, 1, 0, 30)
	w.handleMessage(ctx, msgs[0])

	// A transient load failure must not delete the message: it stays
	// leased (not re-poppable) but is not acknowledged as poison or done.
	if err := q.ExtendVisibility(ctx, msgs[0].Receipt, 10); err != nil {
		t.Errorf("expected message to remain leased (extendable) after failure, got %v", err)
	}
}

func TestRunExitsAfterMaxEmptyReceives(t *testing.T) {
	q := queue.NewMem()
	store := &fakeStore{games: map[string]*pipeline.GameInput{}, stored: map[string]*pipeline.GameAnalysisRecord{}}
	w := newTestWorker(q, store)
	w.Cfg.MaxEmptyReceives = 1

	ctx := context.Background()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not exit after MaxEmptyReceives empty polls")
	}
}

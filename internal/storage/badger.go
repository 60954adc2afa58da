package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/chessreview/analysis-worker/internal/pipeline"
)

// record is the on-disk envelope for one game's analysis, keyed by game id.
type record struct {
	Game       *pipeline.GameAnalysisRecord `json:"game"`
	AnalyzedAt time.Time                    `json:"analyzed_at"`
}

// BadgerStore is the default local/single-node Persistence adapter: one
// transaction per operation, JSON values, badger.ErrKeyNotFound mapped to
// the found/not-found signal.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens (creating if needed) a badger database rooted at dir.
func NewBadgerStore(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("storage: open badger at %s: %w", dir, err)
	}
	return &BadgerStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func gameKey(gameID string) []byte {
	return []byte("game:" + gameID)
}

func inputKey(gameID string) []byte {
	return []byte("input:" + gameID)
}

// LoadGame returns the stored GameInput for gameID, or (nil, nil) if the
// game id is unknown (a poison message, per the Persistence contract).
func (s *BadgerStore) LoadGame(_ context.Context, gameID string) (*pipeline.GameInput, error) {
	var input pipeline.GameInput
	found := false

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(inputKey(gameID))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &input)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("storage: load game %s: %w", gameID, err)
	}
	if !found {
		return nil, nil
	}
	return &input, nil
}

// StoreGame seeds a badger-backed store with a game's input, used by tests
// and single-shot CLI ingestion in lieu of a real upstream game database.
func (s *BadgerStore) StoreGame(_ context.Context, input *pipeline.GameInput) error {
	data, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("storage: marshal game %s: %w", input.GameID, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(inputKey(input.GameID), data)
	})
}

// StoreAnalysis is an atomic upsert keyed by game id: it overwrites any
// prior analysis for this game (replacing its tag set) and stamps the
// analyzed-at timestamp.
func (s *BadgerStore) StoreAnalysis(_ context.Context, gameID string, rec *pipeline.GameAnalysisRecord) error {
	env := record{Game: rec, AnalyzedAt: time.Now()}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("storage: marshal analysis for %s: %w", gameID, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(gameKey(gameID), data)
	})
}

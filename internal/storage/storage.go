// Package storage adapts the pipeline's GameAnalysisRecord to durable
// storage behind the Persistence interface. Two concrete adapters are
// wired: a badger/v4-backed default for local and single-node use, and a
// pgx/v5-backed adapter for Postgres deployments.
package storage

import (
	"context"

	"github.com/chessreview/analysis-worker/internal/pipeline"
)

// Persistence is the pipeline's storage collaborator: load a game's input
// for analysis, and store the finished record. LoadGame returning
// (nil, nil) signals a poison message (the game id does not exist) rather
// than a transient error.
type Persistence interface {
	LoadGame(ctx context.Context, gameID string) (*pipeline.GameInput, error)
	StoreAnalysis(ctx context.Context, gameID string, record *pipeline.GameAnalysisRecord) error
	Close() error
}

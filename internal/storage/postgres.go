package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chessreview/analysis-worker/internal/pipeline"
)

// PostgresStore is the production-deployment Persistence adapter. The
// schema is a single table keyed by game_id; StoreAnalysis is an upsert
// that replaces the prior record (and therefore its prior tag set)
// wholesale.
type PostgresStore struct {
	pool *pgxpool.Pool
}

const schema = `
CREATE TABLE IF NOT EXISTS game_analysis (
	game_id     TEXT PRIMARY KEY,
	input       JSONB NOT NULL,
	record      JSONB,
	analyzed_at TIMESTAMPTZ
)`

// NewPostgresStore connects to dsn and ensures the backing table exists.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: connect postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("storage: ensure schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// LoadGame returns (nil, nil) if gameID has no stored input (poison
// message), per the Persistence contract.
func (s *PostgresStore) LoadGame(ctx context.Context, gameID string) (*pipeline.GameInput, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT input FROM game_analysis WHERE game_id = $1`, gameID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("storage: load game %s: %w", gameID, err)
	}
	var input pipeline.GameInput
	if err := json.Unmarshal(raw, &input); err != nil {
		return nil, fmt.Errorf("storage: decode game %s: %w", gameID, err)
	}
	return &input, nil
}

// StoreGame seeds the table with a game's input, for test/ingestion use.
func (s *PostgresStore) StoreGame(ctx context.Context, input *pipeline.GameInput) error {
	data, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("storage: marshal game %s: %w", input.GameID, err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO game_analysis (game_id, input) VALUES ($1, $2)
		ON CONFLICT (game_id) DO UPDATE SET input = EXCLUDED.input`,
		input.GameID, data)
	return err
}

// StoreAnalysis is an atomic upsert keyed by game_id: it replaces the prior
// record (and therefore its prior tag set) and stamps analyzed_at.
func (s *PostgresStore) StoreAnalysis(ctx context.Context, gameID string, rec *pipeline.GameAnalysisRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("storage: marshal analysis for %s: %w", gameID, err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO game_analysis (game_id, input, record, analyzed_at)
		VALUES ($1, '{}', $2, now())
		ON CONFLICT (game_id)
		DO UPDATE SET record = EXCLUDED.record, analyzed_at = EXCLUDED.analyzed_at`,
		gameID, data)
	if err != nil {
		return fmt.Errorf("storage: store analysis for %s: %w", gameID, err)
	}
	return nil
}

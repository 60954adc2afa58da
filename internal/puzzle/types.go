// Package puzzle extracts candidate tactical puzzles from a blundered
// position by extending the principal line with an external engine, and
// probes extracted puzzles for zugzwang via null-move evaluation.
package puzzle

import "github.com/chessreview/analysis-worker/internal/board"

const (
	// MinPuzzleLength is the minimum accepted mainline length (plies),
	// counting the opponent's blunder move as ply 0.
	MinPuzzleLength = 4
	// MaxPuzzleLength bounds line extension: MaxPuzzleLength/2 solver
	// full-moves are attempted at most.
	MaxPuzzleLength = 20
	// MinPuzzleCP is the minimum accepted |final_cp| for a puzzle.
	MinPuzzleCP = 200
	// SolverAdvantageFloor is the minimum best-vs-second-line centipawn gap
	// required to keep extending a non-mate solver line.
	SolverAdvantageFloor = 100
)

// Node is one ply of a puzzle's mainline. Ply 0 is the opponent's blunder;
// odd plies are solver moves, even plies (>0) are opponent responses.
type Node struct {
	BoardBefore *board.Position
	BoardAfter  *board.Position
	Move        board.Move
	PlyIndex    int
}

// Puzzle is an extracted tactical puzzle candidate.
type Puzzle struct {
	ID          string
	Mainline    []Node
	SolverColor board.Color
	Centipawns  int // magnitude of solver advantage at the end of extension
	Zugzwang    bool
}

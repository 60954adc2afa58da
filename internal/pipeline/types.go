// Package pipeline implements the per-game analysis orchestrator: replay,
// evaluate, classify, track endgames, extract and cook puzzles, run the
// game-level detectors, and assemble the final record.
package pipeline

import (
	"github.com/chessreview/analysis-worker/internal/board"
	"github.com/chessreview/analysis-worker/internal/endgame"
	"github.com/chessreview/analysis-worker/internal/puzzle"
	"github.com/chessreview/analysis-worker/internal/sacrifice"
	"github.com/chessreview/analysis-worker/internal/tactics"
)

// GameInput is the pipeline's input: a game identifier, its move list
// already decoded to SAN (decoding the opaque platform encoding happens
// upstream of this package), the user's color ("white" or "black"), and a
// nodes-per-position evaluation budget.
type GameInput struct {
	GameID           string
	SANMoves         []string
	UserColor        string
	NodesPerPosition int
}

// userColor resolves the input's color string; anything other than "black"
// is treated as white.
func (in GameInput) userColor() board.Color {
	if in.UserColor == "black" {
		return board.Black
	}
	return board.White
}

// MoveAnalysis is per-ply classification output.
type MoveAnalysis struct {
	Ply             int
	MoveUCI         string
	MoveEvalWhiteCP int
	BestMoveUCI     string
	BestEvalWhiteCP int
	CentipawnLoss   int
	Classification  string
}

// Classifications is a per-color count of each classification label.
type Classifications map[string]int

// PuzzleOutput pairs an extracted puzzle with its cooked tags.
type PuzzleOutput struct {
	Puzzle *puzzle.Puzzle
	Tags   []tactics.Tag
}

// GameAnalysisRecord is the pipeline's complete output.
type GameAnalysisRecord struct {
	GameID               string
	Moves                []MoveAnalysis
	WhiteAccuracy        float64
	BlackAccuracy        float64
	WhiteACPL            float64
	BlackACPL            float64
	WhiteClassifications Classifications
	BlackClassifications Classifications
	Puzzles              []PuzzleOutput
	EndgameSegments      []endgame.Segment
	GameTags             map[string]bool
	Complete             bool
}

// ply bundles the per-ply state the orchestrator threads through its steps.
type ply struct {
	boardBefore *board.Position
	boardAfter  *board.Position
	move        board.Move
	uci         string
	san         string
	legalMoves  int
}

// toSacrificePlies adapts pipeline state into sacrifice.Ply records.
func toSacrificePlies(plies []ply, evals []evalResult) []sacrifice.Ply {
	out := make([]sacrifice.Ply, 0, len(plies))
	for i, p := range plies {
		mover := board.White
		if i%2 == 1 {
			mover = board.Black
		}
		// evals[i] is the pre-move evaluation (engine's assessment of the
		// position the mover faced, i.e. the best available continuation);
		// evals[i+1] is the post-move evaluation actually reached.
		bestCP := evals[i].whiteCP
		moverCP := evals[i+1].whiteCP
		if mover == board.Black {
			bestCP = -bestCP
			moverCP = -moverCP
		}
		out = append(out, sacrifice.Ply{
			BoardBefore: p.boardBefore,
			BoardAfter:  p.boardAfter,
			Move:        p.move,
			Mover:       mover,
			MoverEvalCP: moverCP,
			BestEvalCP:  bestCP,
			IsBestMove:  evals[i].bestMoveUCI == p.uci,
			PieceCount:  p.boardBefore.AllOccupied.PopCount(),
		})
	}
	return out
}

type evalResult struct {
	whiteCP     int
	bestMoveUCI string
}

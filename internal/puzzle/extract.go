package puzzle

import (
	"fmt"
	"math"

	"github.com/chessreview/analysis-worker/internal/board"
	"github.com/chessreview/analysis-worker/internal/engineclient"
)

// Engine is the subset of engineclient.Driver the extractor needs, accepted
// as an interface so tests can substitute a stub.
type Engine interface {
	EvaluateMultiPV(fen string, nodes, k int) ([]engineclient.PvLine, error)
}

// pvScore returns pv's score from the perspective of the side that produced
// it (the engine always reports scores relative to the side to move).
func pvScore(pv engineclient.PvLine) (score int, isMate bool) {
	if pv.HasMate {
		m := pv.MateInPlies
		if m > 0 {
			return 10000 - 10*m, true
		}
		return -10000 - 10*m, true
	}
	if pv.HasCP {
		return pv.Centipawns, false
	}
	return 0, false
}

// Extract attempts to extend a blundered position into a puzzle. gameID and
// blunderPlyIndex derive a deterministic puzzle id ("<gameID>_m<blunderPlyIndex>");
// boardAfterBlunder is the position the solver must move in, solverColor is
// the side that plays the tactic (the opponent of whoever blundered), and
// nodes is the per-position search budget.
func Extract(eng Engine, gameID string, blunderPlyIndex int, blunderMove board.Move, boardBeforeBlunder, boardAfterBlunder *board.Position, solverColor board.Color, nodes int) (*Puzzle, bool, error) {
	mainline := []Node{{
		BoardBefore: boardBeforeBlunder,
		BoardAfter:  boardAfterBlunder,
		Move:        blunderMove,
		PlyIndex:    0,
	}}

	current := boardAfterBlunder
	finalCP := 0
	ply := 1

	for fullMove := 0; fullMove < MaxPuzzleLength/2; fullMove++ {
		// Solver's turn.
		node, next, cp, ok, err := stepSolver(eng, current, ply, nodes)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			break
		}
		mainline = append(mainline, node)
		finalCP = cp
		current = next
		ply++
		if !current.HasLegalMoves() {
			break
		}

		// Opponent's turn.
		node, next, ok, err = stepOpponent(eng, current, ply, nodes)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			break
		}
		mainline = append(mainline, node)
		current = next
		ply++
		if !current.HasLegalMoves() {
			break
		}
	}

	if len(mainline) < MinPuzzleLength {
		return nil, false, nil
	}
	absCP := finalCP
	if absCP < 0 {
		absCP = -absCP
	}
	if absCP < MinPuzzleCP {
		return nil, false, nil
	}
	if current.IsCheckmate() && current.SideToMove == solverColor {
		// The solver got mated at the end of the line: not a valid puzzle.
		return nil, false, nil
	}

	p := &Puzzle{
		ID:          fmt.Sprintf("%s_m%d", gameID, blunderPlyIndex),
		Mainline:    mainline,
		SolverColor: solverColor,
		Centipawns:  absCP,
	}
	return p, true, nil
}

func stepSolver(eng Engine, pos *board.Position, ply, nodes int) (Node, *board.Position, int, bool, error) {
	if !pos.HasLegalMoves() {
		return Node{}, nil, 0, false, nil
	}
	lines, err := eng.EvaluateMultiPV(pos.ToFEN(), nodes, 2)
	if err != nil {
		return Node{}, nil, 0, false, err
	}
	if len(lines) == 0 || len(lines[0].PV) == 0 {
		return Node{}, nil, 0, false, nil
	}
	best := lines[0]
	bestScore, bestIsMate := pvScore(best)

	if len(lines) > 1 && len(lines[1].PV) > 0 {
		secondScore, _ := pvScore(lines[1])
		advantage := bestScore - secondScore
		if advantage < SolverAdvantageFloor && !bestIsMate {
			return Node{}, nil, 0, false, nil
		}
	}

	mv, err := board.ParseMove(best.PV[0], pos)
	if err != nil {
		return Node{}, nil, 0, false, err
	}
	next := pos.Copy()
	next.MakeMove(mv)

	node := Node{BoardBefore: pos, BoardAfter: next, Move: mv, PlyIndex: ply}
	return node, next, bestScore, true, nil
}

func stepOpponent(eng Engine, pos *board.Position, ply, nodes int) (Node, *board.Position, bool, error) {
	if !pos.HasLegalMoves() {
		return Node{}, nil, false, nil
	}
	lines, err := eng.EvaluateMultiPV(pos.ToFEN(), nodes, 1)
	if err != nil {
		return Node{}, nil, false, err
	}
	if len(lines) == 0 || len(lines[0].PV) == 0 {
		return Node{}, nil, false, nil
	}
	mv, err := board.ParseMove(lines[0].PV[0], pos)
	if err != nil {
		return Node{}, nil, false, err
	}
	next := pos.Copy()
	next.MakeMove(mv)

	node := Node{BoardBefore: pos, BoardAfter: next, Move: mv, PlyIndex: ply}
	return node, next, true, nil
}

// maxZugzwangPieces, maxLegalMovesProbe and zugzwangMargin gate the zugzwang
// probe; reducedNodes scales its node budget.
const (
	maxZugzwangPieces  = 16
	maxLegalMovesProbe = 15
	zugzwangMargin     = 0.3
)

func reducedNodes(nodes int) int {
	if nodes < 50000 {
		return nodes
	}
	return 50000
}

// WinChances maps a centipawn score to a win-probability-like value in
// [-1, 1] via 2/(1+exp(-0.004*cp)) - 1. For mate-range scores such as
// +/-10000 the float64 result is exactly +/-1.
func WinChances(cp int) float64 {
	return 2/(1+math.Exp(-0.004*float64(cp))) - 1
}

// evalWinChances converts an engine line to win chances for the side to
// move, treating a mate score as a certain +/-1.
func evalWinChances(pv engineclient.PvLine) float64 {
	if pv.HasMate {
		if pv.MateInPlies > 0 {
			return 1
		}
		return -1
	}
	return WinChances(pv.Centipawns)
}

// nullMoveFEN returns the FEN of pos with the side to move flipped and
// en-passant cleared, preserving castling rights and move counters.
func nullMoveFEN(pos *board.Position) string {
	probe := pos.Copy()
	probe.MakeNullMove()
	return probe.ToFEN()
}

// DetectZugzwang runs the post-extraction zugzwang probe: every solver-move
// node's resulting position (the opponent to move) is evaluated both as-is
// and after a null move. Scores are side-to-move relative, so the real
// evaluation IS the opponent's win chances, while the null evaluation is
// the solver's view and must be negated. If the opponent is meaningfully
// worse when forced to move than if they could pass, it's zugzwang.
func DetectZugzwang(eng Engine, p *Puzzle, nodes int) (bool, error) {
	last := p.Mainline[len(p.Mainline)-1].BoardAfter
	if last.AllOccupied.PopCount() > maxZugzwangPieces {
		return false, nil
	}
	if last.IsCheckmate() {
		return false, nil
	}

	probeNodes := reducedNodes(nodes)

	for _, node := range p.Mainline {
		if node.PlyIndex%2 == 0 {
			continue // only solver-move nodes (odd plies) are probed
		}
		pos := node.BoardAfter
		if pos.Checkers != 0 {
			continue
		}
		if pos.GenerateLegalMoves().Len() > maxLegalMovesProbe {
			continue
		}

		realLines, err := eng.EvaluateMultiPV(pos.ToFEN(), probeNodes, 1)
		if err != nil {
			return false, err
		}
		if len(realLines) == 0 {
			continue
		}

		nullLines, err := eng.EvaluateMultiPV(nullMoveFEN(pos), probeNodes, 1)
		if err != nil {
			return false, err
		}
		if len(nullLines) == 0 {
			continue
		}

		oppNormal := evalWinChances(realLines[0])
		oppNull := -evalWinChances(nullLines[0])

		if oppNormal < oppNull-zugzwangMargin {
			return true, nil
		}
	}
	return false, nil
}

package pipeline

import (
	"fmt"

	"github.com/chessreview/analysis-worker/internal/board"
	"github.com/chessreview/analysis-worker/internal/classify"
	"github.com/chessreview/analysis-worker/internal/endgame"
	"github.com/chessreview/analysis-worker/internal/engineclient"
	"github.com/chessreview/analysis-worker/internal/puzzle"
	"github.com/chessreview/analysis-worker/internal/sacrifice"
	"github.com/chessreview/analysis-worker/internal/tactics"
)

// Engine is the subset of engineclient.Driver the pipeline needs.
type Engine interface {
	Evaluate(fen string, nodes int) (engineclient.EvalResult, error)
	EvaluateMultiPV(fen string, nodes, k int) ([]engineclient.PvLine, error)
}

// OpeningDictionary answers whether a given position+move is known theory.
type OpeningDictionary interface {
	IsBookMove(fen, san string) bool
}

const blunderThreshold = 200

// AnalyzeGame replays the game, evaluates every position, classifies every
// move, tracks endgame segments, extracts and cooks puzzles, runs the
// game-level detectors, and returns the assembled record. It performs no
// persistence; the caller stores the result.
func AnalyzeGame(eng Engine, book OpeningDictionary, in GameInput) (*GameAnalysisRecord, error) {
	plies, err := replay(in.SANMoves)
	if err != nil {
		return nil, fmt.Errorf("pipeline: replay game %s: %w", in.GameID, err)
	}

	evals, err := evaluatePositions(eng, plies, in.NodesPerPosition)
	if err != nil {
		return nil, fmt.Errorf("pipeline: evaluate game %s: %w", in.GameID, err)
	}

	moves, whiteCls, blackCls, blunderPlies := classifyMoves(plies, evals, book)

	tracker := endgame.New()
	for i, p := range plies {
		tracker.TrackMove(p.boardAfter, evals[i+1].whiteCP, endgame.MoveRecord{
			FEN:         p.boardBefore.ToFEN(),
			MoveUCI:     p.uci,
			BestMoveUCI: evals[i].bestMoveUCI,
			MoveNumber:  i/2 + 1,
			IsWhite:     i%2 == 0,
			CPLoss:      moves[i].CentipawnLoss,
		})
	}
	segments := tracker.Finish()

	var puzzles []PuzzleOutput
	for _, blunderPly := range blunderPlies {
		po, ok, err := extractAndCookPuzzle(eng, in.GameID, plies, blunderPly, in.NodesPerPosition)
		if err != nil {
			return nil, fmt.Errorf("pipeline: extract puzzle at ply %d: %w", blunderPly, err)
		}
		if ok {
			puzzles = append(puzzles, po)
		}
	}

	gameTags := runGameLevelDetectors(plies, evals, in.userColor())

	whiteACPL, whiteAccuracy := colorStats(whiteCls, moves, true)
	blackACPL, blackAccuracy := colorStats(blackCls, moves, false)

	return &GameAnalysisRecord{
		GameID:               in.GameID,
		Moves:                moves,
		WhiteAccuracy:        whiteAccuracy,
		BlackAccuracy:        blackAccuracy,
		WhiteACPL:            whiteACPL,
		BlackACPL:            blackACPL,
		WhiteClassifications: whiteCls,
		BlackClassifications: blackCls,
		Puzzles:              puzzles,
		EndgameSegments:      segments,
		GameTags:             gameTags,
		Complete:             true,
	}, nil
}

func replay(sanMoves []string) ([]ply, error) {
	pos := board.NewPosition()
	plies := make([]ply, 0, len(sanMoves))
	for i, san := range sanMoves {
		legal := pos.GenerateLegalMoves()
		mv, err := board.ParseSAN(san, pos)
		if err != nil {
			return nil, fmt.Errorf("move %d (%q): %w", i, san, err)
		}
		if mv == board.NoMove || !legal.Contains(mv) {
			return nil, fmt.Errorf("move %d (%q): no legal move matches", i, san)
		}
		before := pos.Copy()
		pos.MakeMove(mv)
		after := pos.Copy()
		plies = append(plies, ply{
			boardBefore: before,
			boardAfter:  after,
			move:        mv,
			uci:         mv.String(),
			san:         san,
			legalMoves:  legal.Len(),
		})
	}
	return plies, nil
}

// evaluatePositions evaluates ply 0..n (n+1 positions: the position before
// each move plus the final position), converting every score to
// white-perspective centipawns.
func evaluatePositions(eng Engine, plies []ply, nodes int) ([]evalResult, error) {
	results := make([]evalResult, len(plies)+1)
	for i := 0; i <= len(plies); i++ {
		var pos *board.Position
		if i < len(plies) {
			pos = plies[i].boardBefore
		} else {
			pos = plies[len(plies)-1].boardAfter
		}
		res, err := eng.Evaluate(pos.ToFEN(), nodes)
		if err != nil {
			return nil, fmt.Errorf("evaluating ply %d: %w", i, err)
		}
		whiteCP := classify.EvalToWhiteCP(res.Centipawns, res.HasCentipawns, res.MateInPlies, res.HasMate, pos.SideToMove == board.White)
		results[i] = evalResult{whiteCP: whiteCP, bestMoveUCI: res.BestMove}
	}
	return results, nil
}

func classifyMoves(plies []ply, evals []evalResult, book OpeningDictionary) ([]MoveAnalysis, Classifications, Classifications, []int) {
	moves := make([]MoveAnalysis, len(plies))
	whiteCls := Classifications{}
	blackCls := Classifications{}
	var blunderPlies []int

	for i, p := range plies {
		isWhiteMover := i%2 == 0
		ma := MoveAnalysis{
			Ply:             i,
			MoveUCI:         p.uci,
			MoveEvalWhiteCP: evals[i+1].whiteCP,
			BestMoveUCI:     evals[i].bestMoveUCI,
			BestEvalWhiteCP: evals[i].whiteCP,
		}

		switch {
		case p.legalMoves == 1:
			ma.Classification = classify.Forced
			ma.CentipawnLoss = 0
			ma.BestMoveUCI = p.uci
		case book != nil && book.IsBookMove(p.boardBefore.ToFEN(), p.san):
			ma.Classification = classify.Book
			ma.CentipawnLoss = 0
		default:
			isCheckmateAfter := p.boardAfter.IsCheckmate()
			cpLoss := classify.CalculateCPLoss(evals[i].whiteCP, evals[i+1].whiteCP, isWhiteMover, isCheckmateAfter)
			mateBlunder := classify.IsMateBlunder(evals[i].whiteCP, evals[i+1].whiteCP, isWhiteMover, isCheckmateAfter)
			ma.CentipawnLoss = cpLoss
			ma.Classification = classify.ClassifyMove(cpLoss, mateBlunder)
		}

		moves[i] = ma

		cls := whiteCls
		if !isWhiteMover {
			cls = blackCls
		}
		cls[ma.Classification]++

		if ma.CentipawnLoss >= blunderThreshold && ma.Classification != classify.Forced && ma.Classification != classify.Book {
			blunderPlies = append(blunderPlies, i)
		}
	}
	return moves, whiteCls, blackCls, blunderPlies
}

func colorStats(cls Classifications, moves []MoveAnalysis, white bool) (acpl, accuracy float64) {
	total, count := 0, 0
	for i, m := range moves {
		isWhiteMover := i%2 == 0
		if isWhiteMover != white {
			continue
		}
		total += m.CentipawnLoss
		count++
	}
	if count == 0 {
		return 0, 100
	}
	acpl = float64(total) / float64(count)
	return acpl, classify.CalculateAccuracy(total, count)
}

func extractAndCookPuzzle(eng Engine, gameID string, plies []ply, blunderPly, nodes int) (PuzzleOutput, bool, error) {
	blunderMoverIsWhite := blunderPly%2 == 0
	solverColor := board.Black
	if !blunderMoverIsWhite {
		solverColor = board.White
	}

	p := plies[blunderPly]
	pz, ok, err := puzzle.Extract(eng, gameID, blunderPly, p.move, p.boardBefore, p.boardAfter, solverColor, nodes)
	if err != nil || !ok {
		return PuzzleOutput{}, false, err
	}

	zugzwang, err := puzzle.DetectZugzwang(eng, pz, nodes)
	if err != nil {
		return PuzzleOutput{}, false, err
	}
	pz.Zugzwang = zugzwang

	tags := tactics.Cook(pz)
	if zugzwang {
		tags = append(tags, tactics.Zugzwang)
	}

	return PuzzleOutput{Puzzle: pz, Tags: tags}, true, nil
}

func runGameLevelDetectors(plies []ply, evals []evalResult, user board.Color) map[string]bool {
	tags := map[string]bool{}
	if len(plies) == 0 {
		return tags
	}

	sacPlies := toSacrificePlies(plies, evals)
	for _, c := range sacrifice.Detect(sacPlies, user) {
		switch c.Piece {
		case board.Queen:
			tags["queenSacrifice"] = true
		case board.Rook:
			tags["rookSacrifice"] = true
		}
	}

	last := plies[len(plies)-1]
	lastMover := board.White
	if (len(plies)-1)%2 == 1 {
		lastMover = board.Black
	}
	if mate := sacrifice.ClassifyFinalMate(last.boardAfter, last.move, lastMover); mate != sacrifice.NoMate {
		tags[string(mate)+"Mate"] = true
	}

	return tags
}

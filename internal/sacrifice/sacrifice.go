// Package sacrifice implements the game-level queen/rook sacrifice state
// machines and the final-position mate-pattern detectors (smothered, king,
// castling, en-passant). These run once per fully-evaluated game, consuming
// the pipeline's per-ply boards, moves, and pre-computed evaluations; no
// engine call happens here.
package sacrifice

import "github.com/chessreview/analysis-worker/internal/board"
const (
	MinPieces      = 8
	EndgamePieces  = 12
	SacCPFloor     = -100
	QueenMaxCPDiff = 400
	RookMaxCPDiff  = 100
	MaxNonMateEval = 300 // rook-only: reject non-mate sacs in already-won positions
	MateThreshold  = 9000
)

// Ply bundles one played ply with the data the state machines need.
type Ply struct {
	BoardBefore  *board.Position
	BoardAfter   *board.Position
	Move         board.Move
	Mover        board.Color
	MoverEvalCP  int // mover-perspective evaluation after the move
	BestEvalCP   int // mover-perspective evaluation of the engine's best move, before the move
	IsBestMove   bool
	PieceCount   int
}

// Candidate is a raw sacrifice found by the state-machine sweep, before the
// evaluation filter is applied.
type Candidate struct {
	PlyIndex int
	Piece    board.PieceType
	Kind     string // "capture", "check", or "hanging" (rook only)
}

// Detect runs both the queen and rook sweeps plus their evaluation filters
// over the user's moves and returns the surviving candidates.
func Detect(plies []Ply, user board.Color) []Candidate {
	var out []Candidate
	out = append(out, filterCandidates(plies, sweepQueen(plies, user), board.Queen)...)
	out = append(out, filterCandidates(plies, sweepRook(plies, user), board.Rook)...)
	return out
}

func isPinnedToOwnKing(pos *board.Position, sq board.Square) bool {
	return pos.ComputePinned()&board.SquareBB(sq) != 0
}

// sharedForkAttacker reports whether the target square and the mover's own
// king square are both attacked by a single common enemy piece (a
// pre-existing fork that disqualifies the "sacrifice" as forced).
func sharedForkAttacker(pos *board.Position, mover board.Color, targetSq board.Square) bool {
	kingSq := pos.KingSquare[mover]
	enemyAttackersOfTarget := pos.AttackersByColor(targetSq, mover.Other(), pos.AllOccupied)
	enemyAttackersOfKing := pos.AttackersByColor(kingSq, mover.Other(), pos.AllOccupied)
	return enemyAttackersOfTarget&enemyAttackersOfKing != 0
}

// sweepQueen runs the capture-sacrifice and check-sacrifice machines for
// the queen. The queen machine additionally requires the opponent to keep
// their own queen through the exchange: losing yours while removing theirs
// is a trade, not a sacrifice.
func sweepQueen(plies []Ply, user board.Color) []Candidate {
	return sweep(plies, user, board.Queen, false)
}

// sweepRook runs capture-, check-, and hanging-sacrifice machines for the
// rook.
func sweepRook(plies []Ply, user board.Color) []Candidate {
	return sweep(plies, user, board.Rook, true)
}

func sweep(plies []Ply, user board.Color, piece board.PieceType, includeHanging bool) []Candidate {
	var out []Candidate
	for i, ply := range plies {
		if ply.Mover != user {
			continue
		}
		if ply.PieceCount < MinPieces {
			continue
		}

		if includeHanging {
			if kind, ok := hangingSacrifice(plies, i); ok {
				out = append(out, Candidate{PlyIndex: i, Piece: piece, Kind: kind})
				continue
			}
		}

		moved := ply.BoardBefore.PieceAt(ply.Move.From())
		if moved == board.NoPiece || moved.Type() != piece {
			continue
		}
		if isPinnedToOwnKing(ply.BoardBefore, ply.Move.From()) {
			continue
		}
		if sharedForkAttacker(ply.BoardBefore, ply.Mover, ply.Move.To()) {
			continue
		}
		if piece == board.Queen && !opponentKeepsQueen(plies, i) {
			continue
		}

		if kind, ok := captureSacrifice(plies, i); ok {
			out = append(out, Candidate{PlyIndex: i, Piece: piece, Kind: kind})
			continue
		}
		if kind, ok := checkSacrifice(plies, i); ok {
			out = append(out, Candidate{PlyIndex: i, Piece: piece, Kind: kind})
		}
	}
	return out
}

// opponentKeepsQueen reports whether the opponent still has a queen on the
// board once their recapture (if any) has resolved.
func opponentKeepsQueen(plies []Ply, i int) bool {
	opp := plies[i].Mover.Other()
	pos := plies[i].BoardAfter
	if i+1 < len(plies) {
		pos = plies[i+1].BoardAfter
	}
	return pos.Pieces[opp][board.Queen] != 0
}

// captureSacrifice: the mover captured with the target piece; the opponent
// recaptures it on the very next ply; the mover fails to regain equivalent
// material on the ply after that.
func captureSacrifice(plies []Ply, i int) (string, bool) {
	if i+1 >= len(plies) {
		return "", false
	}
	ply := plies[i]
	captured := ply.BoardBefore.PieceAt(ply.Move.To())
	if captured == board.NoPiece {
		return "", false
	}
	recapture := plies[i+1]
	if recapture.Move.To() != ply.Move.To() {
		return "", false
	}
	sacrificedValue := ply.BoardBefore.PieceAt(ply.Move.From()).Type().TacticalValue()
	if captured.Type().TacticalValue() >= sacrificedValue {
		return "", false // an even or winning trade, not a sacrifice
	}
	if recovered(plies, i+2, sacrificedValue) {
		return "", false
	}
	return "capture", true
}

// checkSacrifice: the mover moves the target piece to give check without
// capturing; the opponent captures it; the mover fails to recover.
func checkSacrifice(plies []Ply, i int) (string, bool) {
	ply := plies[i]
	if ply.BoardBefore.PieceAt(ply.Move.To()) != board.NoPiece {
		return "", false // must be non-capturing
	}
	if ply.BoardAfter.Checkers == 0 {
		return "", false
	}
	if i+1 >= len(plies) {
		return "", false
	}
	recapture := plies[i+1]
	if recapture.Move.To() != ply.Move.To() {
		return "", false
	}
	sacrificedValue := ply.BoardBefore.PieceAt(ply.Move.From()).Type().TacticalValue()
	if recovered(plies, i+2, sacrificedValue) {
		return "", false
	}
	return "check", true
}

// hangingSacrifice (rook only): the mover makes any non-target move while
// the target piece is left capturable; the opponent takes it; the mover
// fails to recover (allowing one extra ply of depth if the recovery move is
// itself a check).
func hangingSacrifice(plies []Ply, i int) (string, bool) {
	ply := plies[i]
	moved := ply.BoardBefore.PieceAt(ply.Move.From())
	if moved == board.NoPiece || moved.Type() == board.Rook {
		return "", false // must be a non-target move leaving a rook en prise
	}
	targetSq := findPieceSquare(ply.BoardBefore, ply.Mover, board.Rook, ply.Move.From())
	if targetSq == board.NoSquare {
		return "", false
	}
	if !ply.BoardAfter.IsHanging(ply.Mover, targetSq) {
		return "", false
	}
	if i+1 >= len(plies) {
		return "", false
	}
	recapture := plies[i+1]
	if recapture.Move.To() != targetSq {
		return "", false
	}
	if bishopSkewerException(ply, recapture, targetSq) {
		return "", false
	}
	depth := i + 2
	sacrificedValue := board.Rook.TacticalValue()
	if recovered(plies, depth, sacrificedValue) {
		return "", false
	}
	if depth < len(plies) && plies[depth].BoardAfter.Checkers != 0 && recovered(plies, depth+1, sacrificedValue) {
		return "", false
	}
	return "hanging", true
}

// bishopSkewerException: the "sacrifice" is really an opponent bishop taking
// a rook whose defender, a queen, just moved away along the bishop's own
// diagonal. The rook was lost to the skewer, not offered.
func bishopSkewerException(ply, recapture Ply, targetSq board.Square) bool {
	taker := recapture.BoardBefore.PieceAt(recapture.Move.From())
	if taker == board.NoPiece || taker.Type() != board.Bishop {
		return false
	}
	moved := ply.BoardBefore.PieceAt(ply.Move.From())
	if moved == board.NoPiece || moved.Type() != board.Queen {
		return false
	}
	return board.Line(recapture.Move.From(), targetSq)&board.SquareBB(ply.Move.From()) != 0
}

func findPieceSquare(pos *board.Position, color board.Color, pt board.PieceType, exclude board.Square) board.Square {
	bb := pos.Pieces[color][pt]
	found := board.NoSquare
	bb.ForEach(func(sq board.Square) {
		if sq != exclude && found == board.NoSquare {
			found = sq
		}
	})
	return found
}

func recovered(plies []Ply, idx, sacrificedValue int) bool {
	if idx >= len(plies) {
		return false
	}
	recoveryPly := plies[idx]
	captured := recoveryPly.BoardBefore.PieceAt(recoveryPly.Move.To())
	if captured == board.NoPiece {
		return false
	}
	if captured.Type() == board.Rook && recoveryPly.Move.IsPromotion() {
		return false // a rook-promotion recovery doesn't count
	}
	return captured.Type().TacticalValue() >= sacrificedValue
}

func filterCandidates(plies []Ply, candidates []Candidate, piece board.PieceType) []Candidate {
	maxCPDiff := QueenMaxCPDiff
	if piece == board.Rook {
		maxCPDiff = RookMaxCPDiff
	}

	var out []Candidate
	for _, c := range candidates {
		ply := plies[c.PlyIndex]
		bestCP, moveCP := ply.BestEvalCP, ply.MoverEvalCP

		if bestCP >= MateThreshold && moveCP < MateThreshold {
			continue
		}
		if moveCP < SacCPFloor {
			continue
		}
		if !ply.IsBestMove && bestCP-moveCP > maxCPDiff {
			continue
		}
		if ply.PieceCount <= EndgamePieces && !ply.IsBestMove {
			continue
		}
		if piece == board.Rook {
			if moveCP < MateThreshold && moveCP >= MaxNonMateEval {
				continue
			}
			if c.Kind == "hanging" && !ply.IsBestMove {
				continue
			}
		}
		out = append(out, c)
	}
	return out
}

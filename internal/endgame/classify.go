// Package endgame classifies positions into twelve named endgame categories
// by piece composition alone, and tracks per-segment move/blunder statistics
// across a game. The decision tree is ordered; the first match wins.
package endgame

import "github.com/chessreview/analysis-worker/internal/board"

// Type names the twelve FCE-style endgame categories.
type Type string

const (
	PawnEndings           Type = "Pawn Endings"
	KnightEndings         Type = "Knight Endings"
	BishopEndings         Type = "Bishop Endings"
	BishopVsKnight        Type = "Bishop vs Knight"
	RookEndings           Type = "Rook Endings"
	RookVsMinorPiece      Type = "Rook vs Minor Piece"
	RookMinorVsRookMinor  Type = "Rook + Minor vs Rook + Minor"
	RookMinorVsRook       Type = "Rook + Minor vs Rook"
	QueenEndings          Type = "Queen Endings"
	QueenVsRook           Type = "Queen vs Rook"
	QueenVsMinorPiece     Type = "Queen vs Minor Piece"
	QueenPieceVsQueen     Type = "Queen + Piece vs Queen"
)

type composition struct {
	hasKnight bool
	hasBishop bool
	hasRook   bool
	hasQueen  bool
	count     int // non-pawn, non-king piece count
}

func classifyComposition(p *board.Position, c board.Color) composition {
	return composition{
		hasKnight: p.Pieces[c][board.Knight] != 0,
		hasBishop: p.Pieces[c][board.Bishop] != 0,
		hasRook:   p.Pieces[c][board.Rook] != 0,
		hasQueen:  p.Pieces[c][board.Queen] != 0,
		count: p.Pieces[c][board.Knight].PopCount() +
			p.Pieces[c][board.Bishop].PopCount() +
			p.Pieces[c][board.Rook].PopCount() +
			p.Pieces[c][board.Queen].PopCount(),
	}
}

func (c composition) knightOnly() bool {
	return c.hasKnight && !c.hasBishop && !c.hasRook && !c.hasQueen && c.count >= 1
}

func (c composition) bishopOnly() bool {
	return c.hasBishop && !c.hasKnight && !c.hasRook && !c.hasQueen && c.count >= 1
}

func (c composition) rookOnly() bool {
	return c.hasRook && !c.hasKnight && !c.hasBishop && !c.hasQueen && c.count >= 1
}

func (c composition) queenOnly() bool {
	return c.hasQueen && !c.hasKnight && !c.hasBishop && !c.hasRook && c.count >= 1
}

func (c composition) minorOnly() bool {
	return !c.hasRook && !c.hasQueen && (c.hasKnight || c.hasBishop) && c.count >= 1
}

func (c composition) rookPlusMinor() bool {
	return c.hasRook && !c.hasQueen && (c.hasKnight || c.hasBishop) && c.count >= 2
}

// Classify returns the endgame category for pos, or "" if the position does
// not fit any of the twelve categories (e.g. too much material remains).
func Classify(pos *board.Position) Type {
	w := classifyComposition(pos, board.White)
	b := classifyComposition(pos, board.Black)

	maxCount := w.count
	if b.count > maxCount {
		maxCount = b.count
	}
	if maxCount > 3 {
		return ""
	}
	if w.hasQueen && b.hasQueen && w.count >= 2 && b.count >= 2 {
		return ""
	}

	switch {
	case w.count == 0 && b.count == 0:
		return PawnEndings
	case w.knightOnly() && b.knightOnly():
		return KnightEndings
	case w.bishopOnly() && b.bishopOnly():
		return BishopEndings
	case (w.bishopOnly() && b.knightOnly()) || (w.knightOnly() && b.bishopOnly()):
		return BishopVsKnight
	case w.rookOnly() && b.rookOnly():
		return RookEndings
	case (w.rookOnly() && b.minorOnly()) || (w.minorOnly() && b.rookOnly()):
		return RookVsMinorPiece
	case w.rookPlusMinor() && b.rookPlusMinor():
		return RookMinorVsRookMinor
	case (w.rookOnly() && b.rookPlusMinor()) || (w.rookPlusMinor() && b.rookOnly()):
		return RookMinorVsRook
	case w.queenOnly() && b.queenOnly():
		return QueenEndings
	case (w.queenOnly() && b.rookOnly()) || (w.rookOnly() && b.queenOnly()):
		return QueenVsRook
	case (w.queenOnly() && b.minorOnly()) || (w.minorOnly() && b.queenOnly()):
		return QueenVsMinorPiece
	case w.hasQueen && b.hasQueen && w.count != b.count:
		return QueenPieceVsQueen
	default:
		return ""
	}
}

// winningThreshold is the |eval| beyond which a side is "winning"/"losing"
// rather than "equal", for classification labels attached to evaluations.
const winningThreshold = 100

// ClassifyEval labels a white-perspective centipawn evaluation as seen from
// the given color's point of view.
func ClassifyEval(evalWhiteCP int, forColor board.Color) string {
	persp := evalWhiteCP
	if forColor == board.Black {
		persp = -persp
	}
	switch {
	case persp >= winningThreshold:
		return "winning"
	case persp <= -winningThreshold:
		return "losing"
	default:
		return "equal"
	}
}

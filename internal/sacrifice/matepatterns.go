package sacrifice

import "github.com/chessreview/analysis-worker/internal/board"

// MateKind names the mate pattern found on the final position, if any.
type MateKind string

const (
	NoMate    MateKind = ""
	Smothered MateKind = "smothered"
	KingMate  MateKind = "king"
	Castling  MateKind = "castling"
	EnPassant MateKind = "enPassant"
)

// ClassifyFinalMate inspects the final position and the move that produced
// it, returning the mate pattern if the game ended in checkmate.
func ClassifyFinalMate(finalPos *board.Position, lastMove board.Move, lastMoverColor board.Color) MateKind {
	if !finalPos.IsCheckmate() {
		return NoMate
	}
	matedColor := finalPos.SideToMove
	if matedColor == lastMoverColor {
		return NoMate // the mover cannot mate itself
	}

	kingSq := finalPos.KingSquare[matedColor]
	checkers := finalPos.AttackersByColor(kingSq, matedColor.Other(), finalPos.AllOccupied)

	if checkers.PopCount() == 1 {
		checkerPiece := finalPos.PieceAt(checkers.LSB())
		if checkerPiece.Type() == board.Knight {
			adjacent := board.KingAttacks(kingSq)
			smothered := true
			adjacent.ForEach(func(sq board.Square) {
				occ := finalPos.PieceAt(sq)
				if occ == board.NoPiece || occ.Color() != matedColor {
					smothered = false
				}
			})
			if smothered {
				return Smothered
			}
		}
	}

	if lastMove.IsCastling() {
		return Castling
	}
	if lastMove.IsEnPassant() {
		return EnPassant
	}

	lastMover := finalPos.PieceAt(lastMove.To())
	if lastMover.Type() == board.King {
		return KingMate
	}

	return NoMate
}

package board

// TacticalValue is the coarse material scale used by the tactical detector
// library (fork, trapped-piece, sacrifice classification, …). It is distinct
// from PieceValue, the engine-facing centipawn table: detectors compare
// pieces against each other on a 1/3/3/5/9/99 scale, not centipawns.
var TacticalValue = [7]int{1, 3, 3, 5, 9, 99, 0}

// TacticalValue returns the tactical (not centipawn) value of the piece type.
func (pt PieceType) TacticalValue() int {
	if pt > King {
		return 0
	}
	return TacticalValue[pt]
}

// IsSlider reports whether a piece type moves along rays (bishop, rook, queen).
func (pt PieceType) IsSlider() bool {
	return pt == Bishop || pt == Rook || pt == Queen
}

// IsDefended reports whether the piece of the given color on sq is defended,
// either directly or via a same-color sliding piece x-raying through an
// enemy sliding attacker on the same ray (ray defense).
func (p *Position) IsDefended(color Color, sq Square) bool {
	if p.AttackersByColor(sq, color, p.AllOccupied) != 0 {
		return true
	}

	enemyAttackers := p.AttackersByColor(sq, color.Other(), p.AllOccupied)
	for enemyAttackers != 0 {
		attSq := enemyAttackers.PopLSB()
		attPiece := p.PieceAt(attSq)
		if attPiece == NoPiece || !attPiece.Type().IsSlider() {
			continue
		}

		line := Line(sq, attSq)
		if line == Empty {
			continue
		}

		beyond := line &^ Between(sq, attSq) &^ SquareBB(sq) &^ SquareBB(attSq)
		friendly := beyond & p.Occupied[color]
		for friendly != 0 {
			friendSq := friendly.PopLSB()
			friendPiece := p.PieceAt(friendSq)
			if friendPiece == NoPiece {
				continue
			}
			if !canSlideOnLine(friendPiece.Type(), sq, attSq) {
				continue
			}
			if (Between(friendSq, attSq) & p.AllOccupied) == 0 {
				return true
			}
		}
	}
	return false
}

func canSlideOnLine(pt PieceType, a, b Square) bool {
	isDiag := abs(a.File()-b.File()) == abs(a.Rank()-b.Rank())
	switch pt {
	case Bishop:
		return isDiag
	case Rook:
		return !isDiag
	case Queen:
		return true
	default:
		return false
	}
}

// IsHanging reports whether the piece on sq (of the given color) is undefended.
func (p *Position) IsHanging(color Color, sq Square) bool {
	return !p.IsDefended(color, sq)
}

// CanBeTakenByLowerPiece reports whether an enemy piece of lower tactical
// value than pt attacks sq.
func (p *Position) CanBeTakenByLowerPiece(pt PieceType, color Color, sq Square) bool {
	attackers := p.AttackersByColor(sq, color.Other(), p.AllOccupied)
	for attackers != 0 {
		attSq := attackers.PopLSB()
		attPiece := p.PieceAt(attSq)
		if attPiece == NoPiece || attPiece.Type() == King {
			continue
		}
		if attPiece.Type().TacticalValue() < pt.TacticalValue() {
			return true
		}
	}
	return false
}

// IsInBadSpot reports whether the piece on sq is attacked and either hanging
// or takeable by a lower-value piece.
func (p *Position) IsInBadSpot(sq Square) bool {
	piece := p.PieceAt(sq)
	if piece == NoPiece {
		return false
	}
	color := piece.Color()

	if p.AttackersByColor(sq, color.Other(), p.AllOccupied) == 0 {
		return false
	}

	return p.IsHanging(color, sq) || p.CanBeTakenByLowerPiece(piece.Type(), color, sq)
}

// IsTrapped reports whether the non-pawn, non-king piece on sq is trapped: it
// sits in a bad spot and no legal move from sq captures equal-or-greater
// material or reaches a square that is not a bad spot. A piece is never
// reported trapped while the side to move is in check or when it is pinned.
func (p *Position) IsTrapped(sq Square) bool {
	if p.Checkers != 0 {
		return false
	}
	pinned := p.ComputePinned()
	if pinned&SquareBB(sq) != 0 {
		return false
	}

	piece := p.PieceAt(sq)
	if piece == NoPiece || piece.Type() == Pawn || piece.Type() == King {
		return false
	}
	if !p.IsInBadSpot(sq) {
		return false
	}

	legal := p.GenerateLegalMoves()
	for i := 0; i < legal.Len(); i++ {
		m := legal.Get(i)
		if m.From() != sq {
			continue
		}
		captured := p.PieceAt(m.To())
		if captured != NoPiece && captured.Type().TacticalValue() >= piece.Type().TacticalValue() {
			return false
		}

		undo := p.MakeMove(m)
		safe := !p.IsInBadSpot(m.To())
		p.UnmakeMove(m, undo)
		if safe {
			return false
		}
	}

	return true
}

// MaterialCount returns the tactical-scale material total for one color
// (pawns through queens; kings are excluded).
func (p *Position) MaterialCount(color Color) int {
	total := 0
	for pt := Pawn; pt < King; pt++ {
		total += p.Pieces[color][pt].PopCount() * pt.TacticalValue()
	}
	return total
}

// MaterialDiff returns MaterialCount(side) - MaterialCount(!side).
func (p *Position) MaterialDiff(side Color) int {
	return p.MaterialCount(side) - p.MaterialCount(side.Other())
}

// PieceMapCount returns the total number of pieces (of any type) on the board.
func (p *Position) PieceMapCount() int {
	return p.AllOccupied.PopCount()
}

// KingAdjacentSquares returns the squares adjacent to a color's king.
func (p *Position) KingAdjacentSquares(color Color) Bitboard {
	return KingAttacks(p.KingSquare[color])
}

// SquareDistance returns the Chebyshev distance between two squares.
func SquareDistance(a, b Square) int {
	df := abs(a.File() - b.File())
	dr := abs(a.Rank() - b.Rank())
	if df > dr {
		return df
	}
	return dr
}

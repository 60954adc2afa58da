package tactics

import (
	"github.com/chessreview/analysis-worker/internal/board"
	"github.com/chessreview/analysis-worker/internal/puzzle"
)

// Cook applies every detector to p's mainline in the exact emission order
// and returns the accumulated tag set, in emission order (duplicates never
// occur since each detector contributes at most one tag per family).
func Cook(p *puzzle.Puzzle) []Tag {
	var tags []Tag
	add := func(t Tag, ok bool) {
		if ok {
			tags = append(tags, t)
		}
	}

	last := p.Mainline[len(p.Mainline)-1]
	finalPos := last.BoardAfter
	isMate := finalPos.IsCheckmate()

	// (1) mate elif-chain, or cp-based fallback.
	if isMate {
		tags = append(tags, Mate)
		if mateTag, ok := mateInNTag(len(p.Mainline)); ok {
			tags = append(tags, mateTag)
		}
		if patternTag, ok := matePatternTag(finalPos, last.Move); ok {
			tags = append(tags, patternTag)
		}
	} else {
		switch {
		case p.Centipawns > 600:
			tags = append(tags, Crushing)
		case p.Centipawns > 200:
			tags = append(tags, Advantage)
		default:
			tags = append(tags, Equality)
		}
	}

	add(Attraction, detectAttraction(p))
	add(Deflection, detectDeflection(p))
	add(AdvancedPawn, detectAdvancedPawn(p))
	add(DoubleCheck, detectDoubleCheck(p))
	add(QuietMove, detectQuietMove(p))
	if ok := detectDefensiveMove(p); ok {
		tags = append(tags, DefensiveMove)
	}

	if sacTag, ok := detectSacrifice(p); ok {
		tags = append(tags, Sacrifice, sacTag)
	}

	add(XRayAttack, detectXRayAttack(p))
	add(Fork, detectFork(p))
	add(HangingPiece, detectHangingPiece(p))
	add(TrappedPiece, detectTrappedPiece(p))
	add(DiscoveredAttack, detectDiscoveredAttack(p))
	add(ExposedKing, detectExposedKing(p))
	add(Skewer, detectSkewer(p))

	add(Interference, detectSelfInterference(p) || detectInterference(p))
	add(Intermezzo, detectIntermezzo(p))
	add(Pin, detectPin(p))

	add(Clearance, detectClearance(p))
	add(EnPassant, detectEnPassant(p))
	add(Castling, detectCastling(p))
	if promTag, ok := detectPromotion(p); ok {
		tags = append(tags, Promotion)
		if promTag == UnderPromotion {
			tags = append(tags, UnderPromotion)
		}
	}

	// (24) endgame family.
	if egTag, ok := endgameFamilyTag(p.Mainline[0].BoardBefore); ok {
		tags = append(tags, egTag)
	}

	// (25) side-attack family, gated on absence of backRankMate AND fork.
	hasBackRank := containsTag(tags, BackRankMate)
	hasFork := containsTag(tags, Fork)
	if !hasBackRank && !hasFork {
		if sideTag, ok := sideAttackTag(p); ok {
			tags = append(tags, sideTag)
		}
	}

	// (26) length family.
	tags = append(tags, lengthTag(len(p.Mainline)))

	return tags
}

func containsTag(tags []Tag, t Tag) bool {
	for _, x := range tags {
		if x == t {
			return true
		}
	}
	return false
}

func mateInNTag(mainlineLen int) (Tag, bool) {
	solverMoves := (mainlineLen + 1) / 2 // odd plies, counting ply 0 as the blunder
	switch solverMoves {
	case 1:
		return MateIn1, true
	case 2:
		return MateIn2, true
	case 3:
		return MateIn3, true
	case 4:
		return MateIn4, true
	case 5:
		return MateIn5, true
	default:
		return "", false
	}
}

func lengthTag(mainlineLen int) Tag {
	switch {
	case mainlineLen == 2:
		return OneMove
	case mainlineLen == 4:
		return Short
	case mainlineLen >= 8:
		return VeryLong
	default:
		return Long
	}
}

// endgameFamilyTag fires only when the puzzle's starting position is a true
// piece endgame: every non-king piece is a pawn or one of the named types,
// with at least one of the named type on the board.
func endgameFamilyTag(pos *board.Position) (Tag, bool) {
	switch {
	case restrictedTo(pos):
		return PawnEndgame, true
	case restrictedTo(pos, board.Queen):
		return QueenEndgame, true
	case restrictedTo(pos, board.Rook):
		return RookEndgame, true
	case restrictedTo(pos, board.Bishop):
		return BishopEndgame, true
	case restrictedTo(pos, board.Knight):
		return KnightEndgame, true
	case restrictedTo(pos, board.Queen, board.Rook):
		return QueenRookEndgame, true
	default:
		return "", false
	}
}

// restrictedTo reports whether both sides' material consists of kings,
// pawns, and the given piece types only, with every given type present.
func restrictedTo(pos *board.Position, types ...board.PieceType) bool {
	allowed := map[board.PieceType]bool{board.Pawn: true, board.King: true}
	for _, t := range types {
		allowed[t] = true
	}
	for pt := board.Knight; pt < board.King; pt++ {
		present := pos.Pieces[board.White][pt]|pos.Pieces[board.Black][pt] != 0
		if present && !allowed[pt] {
			return false
		}
	}
	for _, t := range types {
		if pos.Pieces[board.White][t]|pos.Pieces[board.Black][t] == 0 {
			return false
		}
	}
	return true
}

// sideAttackTag fires when the attacked king sits on its back rank toward
// one wing and the solver's line actually lands material on that wing.
func sideAttackTag(p *puzzle.Puzzle) (Tag, bool) {
	opp := p.SolverColor.Other()
	first := p.Mainline[0].BoardAfter
	kingSq := first.KingSquare[opp]

	backRank := 7
	if opp == board.White {
		backRank = 0
	}
	if kingSq.Rank() != backRank {
		return "", false
	}

	var tag Tag
	switch {
	case kingSq.File() >= 5:
		tag = KingsideAttack
	case kingSq.File() <= 2:
		tag = QueensideAttack
	default:
		return "", false
	}

	for _, n := range p.Mainline {
		if n.PlyIndex%2 == 0 {
			continue
		}
		df := n.Move.To().File() - kingSq.File()
		if df < 0 {
			df = -df
		}
		if df <= 2 {
			return tag, true
		}
	}
	return "", false
}

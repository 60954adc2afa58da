package tactics

import (
	"github.com/chessreview/analysis-worker/internal/board"
	"github.com/chessreview/analysis-worker/internal/puzzle"
)

// solverNodes returns the mainline nodes where the solver moved (odd ply
// index), optionally excluding the last one (many detectors ignore the
// final, already-resolving move).
func solverNodes(p *puzzle.Puzzle, excludeLast bool) []puzzle.Node {
	var out []puzzle.Node
	for i, n := range p.Mainline {
		if n.PlyIndex%2 == 0 {
			continue
		}
		if excludeLast && i == len(p.Mainline)-1 {
			continue
		}
		out = append(out, n)
	}
	return out
}

// detectFork: a solver move (not the last) lands the moved piece (not king)
// on a safe square from which it attacks >=2 higher-value opponent pieces,
// or hanging opponent pieces undefended by a same-color recapturer.
func detectFork(p *puzzle.Puzzle) bool {
	for _, n := range solverNodes(p, true) {
		pos := n.BoardAfter
		moved := pos.PieceAt(n.Move.To())
		if moved == board.NoPiece || moved.Type() == board.King {
			continue
		}
		if pos.IsInBadSpot(n.Move.To()) {
			continue
		}
		attackers := attacksFrom(pos, n.Move.To(), moved.Type())
		hits := 0
		attackers.ForEach(func(sq board.Square) {
			target := pos.PieceAt(sq)
			if target == board.NoPiece || target.Color() == moved.Color() {
				return
			}
			if target.Type().TacticalValue() > moved.Type().TacticalValue() {
				hits++
			} else if pos.IsHanging(target.Color(), sq) {
				hits++
			}
		})
		if hits >= 2 {
			return true
		}
	}
	return false
}

func attacksFrom(pos *board.Position, sq board.Square, pt board.PieceType) board.Bitboard {
	return attacksFromOcc(pos.AllOccupied, sq, pt, func() board.Color { return pos.PieceAt(sq).Color() })
}

func attacksFromOcc(occ board.Bitboard, sq board.Square, pt board.PieceType, colorOf func() board.Color) board.Bitboard {
	switch pt {
	case board.Knight:
		return board.KnightAttacks(sq)
	case board.Bishop:
		return board.BishopAttacks(sq, occ)
	case board.Rook:
		return board.RookAttacks(sq, occ)
	case board.Queen:
		return board.QueenAttacks(sq, occ)
	case board.King:
		return board.KingAttacks(sq)
	case board.Pawn:
		return board.PawnAttacks(sq, colorOf())
	default:
		return 0
	}
}

// detectHangingPiece: the first solver move captures a non-pawn piece that
// was hanging before the capture, and (for length>=4) material advantage at
// ply 3 is at least as great as at ply 1.
func detectHangingPiece(p *puzzle.Puzzle) bool {
	nodes := solverNodes(p, false)
	if len(nodes) == 0 {
		return false
	}
	first := nodes[0]
	captured := first.BoardBefore.PieceAt(first.Move.To())
	if captured == board.NoPiece || captured.Type() == board.Pawn {
		return false
	}
	if !first.BoardBefore.IsHanging(captured.Color(), first.Move.To()) {
		return false
	}
	if len(p.Mainline) >= 4 && len(nodes) >= 2 {
		ply1Diff := first.BoardAfter.MaterialDiff(p.SolverColor)
		secondAfter := nodes[1].BoardAfter
		ply3Diff := secondAfter.MaterialDiff(p.SolverColor)
		if ply3Diff < ply1Diff {
			return false
		}
	}
	return true
}

// detectTrappedPiece: some opponent knight, bishop, rook or queen is trapped
// (per board.IsTrapped) in the position before any solver move of the line.
func detectTrappedPiece(p *puzzle.Puzzle) bool {
	for _, n := range solverNodes(p, false) {
		pos := n.BoardBefore
		opp := p.SolverColor.Other()
		trapped := pos.Pieces[opp][board.Knight] | pos.Pieces[opp][board.Bishop] |
			pos.Pieces[opp][board.Rook] | pos.Pieces[opp][board.Queen]
		found := false
		trapped.ForEach(func(sq board.Square) {
			if pos.IsTrapped(sq) {
				found = true
			}
		})
		if found {
			return true
		}
	}
	return false
}

// detectSkewer: a solver capture by a sliding piece whose previous-opponent
// move vacated a square strictly between the solver's source and target,
// where the vacated square held a higher-value piece than what was
// captured, and the target square was left in a bad spot.
func detectSkewer(p *puzzle.Puzzle) bool {
	nodes := solverNodes(p, false)
	for _, n := range nodes {
		moved := n.BoardBefore.PieceAt(n.Move.From())
		if moved == board.NoPiece || !moved.Type().IsSlider() {
			continue
		}
		prevPlyIndex := n.PlyIndex - 1
		prevMove, ok := moveAtPly(p, prevPlyIndex)
		if !ok {
			continue
		}
		if board.Between(n.Move.From(), n.Move.To())&board.SquareBB(prevMove.From()) == 0 {
			continue
		}
		captured := n.BoardBefore.PieceAt(n.Move.To())
		vacatedPiece := prevMoveOriginPiece(p, prevPlyIndex, prevMove)
		if captured == board.NoPiece || vacatedPiece == board.NoPiece {
			continue
		}
		if vacatedPiece.Type().TacticalValue() <= captured.Type().TacticalValue() {
			continue
		}
		if n.BoardAfter.IsInBadSpot(n.Move.To()) {
			return true
		}
	}
	return false
}

func moveAtPly(p *puzzle.Puzzle, ply int) (board.Move, bool) {
	for _, n := range p.Mainline {
		if n.PlyIndex == ply {
			return n.Move, true
		}
	}
	return board.Move(0), false
}

func prevMoveOriginPiece(p *puzzle.Puzzle, ply int, m board.Move) board.Piece {
	for _, n := range p.Mainline {
		if n.PlyIndex == ply {
			return n.BoardBefore.PieceAt(m.From())
		}
	}
	return board.NoPiece
}

// detectAttraction: a two-ply pattern where the opponent is forced onto a
// specific square (king/queen/rook), and the solver's subsequent move
// attacks that square from the landing square.
func detectAttraction(p *puzzle.Puzzle) bool {
	for i := 0; i+1 < len(p.Mainline); i++ {
		n := p.Mainline[i]
		if n.PlyIndex%2 == 0 {
			continue // must start with a solver move
		}
		next := p.Mainline[i+1]
		lured := next.BoardAfter.PieceAt(next.Move.To())
		if lured == board.NoPiece {
			continue
		}
		if lured.Type() != board.King && lured.Type() != board.Queen && lured.Type() != board.Rook {
			continue
		}
		if i+2 >= len(p.Mainline) {
			continue
		}
		follow := p.Mainline[i+2]
		attackers := attacksFrom(follow.BoardAfter, follow.Move.To(), follow.BoardAfter.PieceAt(follow.Move.To()).Type())
		if attackers&board.SquareBB(next.Move.To()) != 0 {
			return true
		}
	}
	return false
}

// detectDeflection: a solver move leaves hanging an opponent piece that the
// moving piece attacked from its starting square. The last solver move of
// the line is not examined, nor the one before it when the line ends on a
// solver move. The move need not be a capture or a check, and no opponent
// defender is tracked.
func detectDeflection(p *puzzle.Puzzle) bool {
	nodes := solverNodes(p, true)
	for idx, n := range nodes {
		if idx+1 >= len(nodes) {
			break
		}
		before := n.BoardBefore
		defender := before.PieceAt(n.Move.From())
		if defender == board.NoPiece {
			continue
		}
		// The defender must have been defending something that becomes
		// hanging once it moves away.
		guarded := attacksFrom(before, n.Move.From(), defender.Type()) & before.Occupied[p.SolverColor.Other()]
		hasNewlyHanging := false
		guarded.ForEach(func(sq board.Square) {
			if n.BoardAfter.IsHanging(p.SolverColor.Other(), sq) {
				hasNewlyHanging = true
			}
		})
		if hasNewlyHanging {
			return true
		}
	}
	return false
}

// detectAdvancedPawn: a solver pawn move lands on the 7th/2nd rank (one
// step from promotion) without promoting immediately.
func detectAdvancedPawn(p *puzzle.Puzzle) bool {
	for _, n := range solverNodes(p, false) {
		moved := n.BoardBefore.PieceAt(n.Move.From())
		if moved == board.NoPiece || moved.Type() != board.Pawn || n.Move.IsPromotion() {
			continue
		}
		rank := n.Move.To().Rank()
		if (moved.Color() == board.White && rank == 6) || (moved.Color() == board.Black && rank == 1) {
			return true
		}
	}
	return false
}

// detectDoubleCheck: after a solver move, the opponent king is attacked by
// two or more solver pieces simultaneously.
func detectDoubleCheck(p *puzzle.Puzzle) bool {
	for _, n := range solverNodes(p, false) {
		pos := n.BoardAfter
		kingSq := pos.KingSquare[pos.SideToMove]
		attackers := pos.AttackersByColor(kingSq, pos.SideToMove.Other(), pos.AllOccupied)
		if attackers.PopCount() >= 2 {
			return true
		}
	}
	return false
}

// detectQuietMove: some non-final solver move is neither a capture, a
// check, nor a promotion.
func detectQuietMove(p *puzzle.Puzzle) bool {
	for _, n := range solverNodes(p, true) {
		if n.BoardBefore.PieceAt(n.Move.To()) != board.NoPiece {
			continue
		}
		if n.Move.IsPromotion() {
			continue
		}
		if n.BoardAfter.Checkers != 0 {
			continue
		}
		return true
	}
	return false
}

// detectDefensiveMove: a solver move addresses a threat against the solver
// (escapes check, or moves a piece from a bad spot to a square that is not
// one). Captures are not excluded.
func detectDefensiveMove(p *puzzle.Puzzle) bool {
	for _, n := range solverNodes(p, true) {
		if n.BoardBefore.Checkers != 0 {
			return true // check escape
		}
		moved := n.BoardBefore.PieceAt(n.Move.From())
		if moved == board.NoPiece {
			continue
		}
		if n.BoardBefore.IsInBadSpot(n.Move.From()) && !n.BoardAfter.IsInBadSpot(n.Move.To()) {
			return true
		}
	}
	return false
}

// detectXRayAttack: a solver sliding piece attacks an opponent piece through
// an opponent piece it attacks directly (the attack is latent, not direct).
// X-rays through the solver's own pieces are not counted.
func detectXRayAttack(p *puzzle.Puzzle) bool {
	for _, n := range solverNodes(p, true) {
		pos := n.BoardAfter
		moved := pos.PieceAt(n.Move.To())
		if moved == board.NoPiece || !moved.Type().IsSlider() {
			continue
		}
		direct := attacksFrom(pos, n.Move.To(), moved.Type())
		occ := pos.AllOccupied &^ (direct & pos.Occupied[moved.Color().Other()])
		extended := attacksFromOcc(occ, n.Move.To(), moved.Type(), nil)
		beyond := extended &^ direct
		if beyond&pos.Occupied[moved.Color().Other()] != 0 {
			return true
		}
	}
	return false
}

// detectDiscoveredAttack: a solver move unveils an attack from a different,
// unmoved piece onto an opponent piece that was not attacked before.
func detectDiscoveredAttack(p *puzzle.Puzzle) bool {
	for _, n := range solverNodes(p, true) {
		before, after := n.BoardBefore, n.BoardAfter
		fromSq := n.Move.From()
		ownSliders := after.Pieces[p.SolverColor][board.Bishop] | after.Pieces[p.SolverColor][board.Rook] | after.Pieces[p.SolverColor][board.Queen]
		found := false
		ownSliders.ForEach(func(sq board.Square) {
			if sq == n.Move.To() {
				return
			}
			line := board.Line(sq, fromSq)
			if line == 0 {
				return
			}
			newAttacks := attacksFrom(after, sq, after.PieceAt(sq).Type())
			oldAttacks := attacksFrom(before, sq, before.PieceAt(sq).Type())
			gained := newAttacks &^ oldAttacks & after.Occupied[p.SolverColor.Other()]
			if gained != 0 {
				found = true
			}
		})
		if found {
			return true
		}
	}
	return false
}

// detectExposedKing: after a solver move fewer squares adjacent to the
// opponent king hold opponent pieces than before (its shelter was stripped).
func detectExposedKing(p *puzzle.Puzzle) bool {
	for _, n := range solverNodes(p, true) {
		opp := p.SolverColor.Other()
		before, after := n.BoardBefore, n.BoardAfter
		beforeShield := before.KingAdjacentSquares(opp) & before.Occupied[opp]
		afterShield := after.KingAdjacentSquares(opp) & after.Occupied[opp]
		if afterShield.PopCount() < beforeShield.PopCount() {
			return true
		}
	}
	return false
}

// detectInterference / detectSelfInterference: a solver move lands strictly
// between a sliding piece of either color and the king of that slider's
// opponent (interference), or lands on a common line with another sliding
// piece of the moved piece's color (self-interference; whether that slider's
// line is actually blocked is not checked).
func detectInterference(p *puzzle.Puzzle) bool {
	for _, n := range solverNodes(p, true) {
		pos := n.BoardAfter
		to := n.Move.To()
		blocksSomeone := false
		for _, c := range []board.Color{board.White, board.Black} {
			sliders := pos.Pieces[c][board.Bishop] | pos.Pieces[c][board.Rook] | pos.Pieces[c][board.Queen]
			sliders.ForEach(func(sq board.Square) {
				if sq == to {
					return
				}
				if board.Line(sq, to) != 0 && board.Between(sq, pos.KingSquare[c.Other()])&board.SquareBB(to) != 0 {
					blocksSomeone = true
				}
			})
		}
		if blocksSomeone {
			return true
		}
	}
	return false
}

func detectSelfInterference(p *puzzle.Puzzle) bool {
	for _, n := range solverNodes(p, true) {
		pos := n.BoardAfter
		to := n.Move.To()
		moved := pos.PieceAt(to)
		if moved == board.NoPiece {
			continue
		}
		own := pos.Pieces[moved.Color()][board.Bishop] | pos.Pieces[moved.Color()][board.Rook] | pos.Pieces[moved.Color()][board.Queen]
		blocked := false
		own.ForEach(func(sq board.Square) {
			if sq == to {
				return
			}
			line := board.Line(sq, to)
			if line != 0 {
				blocked = true
			}
		})
		if blocked {
			return true
		}
	}
	return false
}

// detectIntermezzo: a solver move after the first gives check or captures
// without landing on the square the opponent's previous move went to.
// Whether a recapture on that square was available is not checked.
func detectIntermezzo(p *puzzle.Puzzle) bool {
	nodes := solverNodes(p, true)
	for i, n := range nodes {
		if i == 0 {
			continue
		}
		prevOpp, ok := moveAtPly(p, n.PlyIndex-1)
		if !ok {
			continue
		}
		if n.Move.To() == prevOpp.To() {
			continue // this IS the recapture
		}
		if n.BoardAfter.Checkers != 0 || n.BoardBefore.PieceAt(n.Move.To()) != board.NoPiece {
			return true
		}
	}
	return false
}

// detectPin: some opponent non-king piece is pinned to its king in a
// position along the mainline. Both pin flavors (preventing a capture,
// preventing an escape) collapse into the one umbrella tag.
func detectPin(p *puzzle.Puzzle) bool {
	for _, n := range solverNodes(p, false) {
		if n.BoardAfter.ComputePinned() != 0 {
			return true
		}
	}
	return false
}

// detectClearance: a solver move vacates a square or line that a
// subsequent solver move then occupies or uses.
func detectClearance(p *puzzle.Puzzle) bool {
	nodes := solverNodes(p, false)
	for i := 0; i+1 < len(nodes); i++ {
		vacated := nodes[i].Move.From()
		next := nodes[i+1]
		if next.Move.From() == vacated || next.Move.To() == vacated {
			return true
		}
		if board.Line(next.Move.From(), next.Move.To()) != 0 &&
			board.Between(next.Move.From(), next.Move.To())&board.SquareBB(vacated) != 0 {
			return true
		}
	}
	return false
}

func detectEnPassant(p *puzzle.Puzzle) bool {
	for _, n := range solverNodes(p, false) {
		if n.Move.IsEnPassant() {
			return true
		}
	}
	return false
}

func detectCastling(p *puzzle.Puzzle) bool {
	for _, n := range solverNodes(p, false) {
		if n.Move.IsCastling() {
			return true
		}
	}
	return false
}

func detectPromotion(p *puzzle.Puzzle) (Tag, bool) {
	for _, n := range solverNodes(p, false) {
		if !n.Move.IsPromotion() {
			continue
		}
		if n.Move.Promotion() != board.Queen {
			return UnderPromotion, true
		}
		return Promotion, true
	}
	return "", false
}

// detectSacrifice: a solver knight, bishop, rook or queen move captures less
// than the moved piece's tactical value (or nothing) and leaves the piece
// hanging or in a bad spot; the first such move names the sacrificed piece.
// Later recaptures in the mainline and the puzzle's outcome are not counted.
func detectSacrifice(p *puzzle.Puzzle) (Tag, bool) {
	nodes := solverNodes(p, false)
	for _, n := range nodes {
		moved := n.BoardBefore.PieceAt(n.Move.From())
		if moved == board.NoPiece || moved.Type() == board.Pawn || moved.Type() == board.King {
			continue
		}
		captured := n.BoardBefore.PieceAt(n.Move.To())
		gain := 0
		if captured != board.NoPiece {
			gain = captured.Type().TacticalValue()
		}
		if gain >= moved.Type().TacticalValue() {
			continue // not a material sacrifice
		}
		if !n.BoardAfter.IsHanging(p.SolverColor, n.Move.To()) && !n.BoardAfter.IsInBadSpot(n.Move.To()) {
			continue
		}
		switch moved.Type() {
		case board.Queen:
			return QueenSacrifice, true
		case board.Rook:
			return RookSacrifice, true
		case board.Bishop:
			return BishopSacrifice, true
		case board.Knight:
			return KnightSacrifice, true
		}
	}
	return "", false
}

// matePatternTag walks the pattern-specific mate chain in its fixed order:
// smothered, back-rank, anastasia, hook, arabian, boden/double-bishop,
// dovetail. At most one tag is returned.
func matePatternTag(pos *board.Position, lastMove board.Move) (Tag, bool) {
	matedColor := pos.SideToMove
	kingSq := pos.KingSquare[matedColor]
	checkers := pos.AttackersByColor(kingSq, matedColor.Other(), pos.AllOccupied)

	var checkerSq board.Square
	var checkerType board.PieceType = board.NoPieceType
	if checkers.PopCount() == 1 {
		checkerSq = checkers.LSB()
		checkerType = pos.PieceAt(checkerSq).Type()
	}

	if checkerType == board.Knight && isSmothered(pos, matedColor, kingSq) {
		return SmotheredMate, true
	}
	if isBackRank(pos, matedColor, kingSq, checkerSq, checkerType) {
		return BackRankMate, true
	}
	if isAnastasia(pos, matedColor, kingSq, checkerSq, checkerType) {
		return AnastasiaMate, true
	}
	if isHook(pos, matedColor, kingSq, checkerSq, checkerType) {
		return HookMate, true
	}
	if isArabian(kingSq, checkerSq, checkerType, pos, matedColor) {
		return ArabianMate, true
	}
	if tag, ok := bodenOrDoubleBishop(pos, matedColor, kingSq, checkerSq, checkerType); ok {
		return tag, true
	}

	mover := pos.PieceAt(lastMove.To())
	if mover != board.NoPiece && mover.Type() == board.Queen && board.SquareDistance(lastMove.To(), kingSq) == 1 {
		if isDovetail(pos, matedColor, kingSq, lastMove.To()) {
			return DovetailMate, true
		}
	}

	return "", false
}

// isBackRank: the king is mated on its own back rank by a rook or queen
// sweeping that rank, with every escape square off the rank blocked by the
// mated side's own pieces.
func isBackRank(pos *board.Position, matedColor board.Color, kingSq, checkerSq board.Square, checkerType board.PieceType) bool {
	backRank := 0
	if matedColor == board.Black {
		backRank = 7
	}
	if kingSq.Rank() != backRank {
		return false
	}
	if checkerType != board.Rook && checkerType != board.Queen {
		return false
	}
	if checkerSq.Rank() != backRank {
		return false
	}
	escapes := board.KingAttacks(kingSq) &^ rankBB(backRank)
	blocked := true
	escapes.ForEach(func(sq board.Square) {
		p := pos.PieceAt(sq)
		if p == board.NoPiece || p.Color() != matedColor {
			blocked = false
		}
	})
	return blocked
}

func rankBB(rank int) board.Bitboard {
	var bb board.Bitboard
	for f := 0; f < 8; f++ {
		bb |= board.SquareBB(board.NewSquare(f, rank))
	}
	return bb
}

// isAnastasia: the king is pinned to the board's edge file by a rook or
// queen sweeping that file while a knight of the mating side covers the
// inner escape squares.
func isAnastasia(pos *board.Position, matedColor board.Color, kingSq, checkerSq board.Square, checkerType board.PieceType) bool {
	if kingSq.File() != 0 && kingSq.File() != 7 {
		return false
	}
	if checkerType != board.Rook && checkerType != board.Queen {
		return false
	}
	if checkerSq.File() != kingSq.File() {
		return false
	}
	knights := pos.Pieces[matedColor.Other()][board.Knight]
	near := false
	knights.ForEach(func(sq board.Square) {
		if board.SquareDistance(sq, kingSq) <= 2 {
			near = true
		}
	})
	return near
}

// isHook: a rook mates adjacent to the king, defended by a knight that is
// itself defended by a pawn.
func isHook(pos *board.Position, matedColor board.Color, kingSq, checkerSq board.Square, checkerType board.PieceType) bool {
	if checkerType != board.Rook || board.SquareDistance(checkerSq, kingSq) != 1 {
		return false
	}
	mating := matedColor.Other()
	defenders := pos.AttackersByColor(checkerSq, mating, pos.AllOccupied) & pos.Pieces[mating][board.Knight]
	found := false
	defenders.ForEach(func(knightSq board.Square) {
		pawnGuards := pos.AttackersByColor(knightSq, mating, pos.AllOccupied) & pos.Pieces[mating][board.Pawn]
		if pawnGuards != 0 {
			found = true
		}
	})
	return found
}

// isArabian: the king is mated in a corner by a rook on an adjacent square,
// with a knight guarding the rook.
func isArabian(kingSq, checkerSq board.Square, checkerType board.PieceType, pos *board.Position, matedColor board.Color) bool {
	corner := (kingSq.File() == 0 || kingSq.File() == 7) && (kingSq.Rank() == 0 || kingSq.Rank() == 7)
	if !corner {
		return false
	}
	if checkerType != board.Rook || board.SquareDistance(checkerSq, kingSq) != 1 {
		return false
	}
	mating := matedColor.Other()
	return pos.AttackersByColor(checkerSq, mating, pos.AllOccupied)&pos.Pieces[mating][board.Knight] != 0
}

// bodenOrDoubleBishop: a bishop delivers mate while a second bishop of the
// mating side covers the king's escape squares. Bishops on opposite square
// colors (crossing diagonals) is Boden's mate; on the same color, the
// double-bishop mate.
func bodenOrDoubleBishop(pos *board.Position, matedColor board.Color, kingSq, checkerSq board.Square, checkerType board.PieceType) (Tag, bool) {
	if checkerType != board.Bishop {
		return "", false
	}
	mating := matedColor.Other()
	others := pos.Pieces[mating][board.Bishop] &^ board.SquareBB(checkerSq)
	var partner board.Square = board.NoSquare
	others.ForEach(func(sq board.Square) {
		covered := board.BishopAttacks(sq, pos.AllOccupied) & board.KingAttacks(kingSq)
		if covered != 0 && partner == board.NoSquare {
			partner = sq
		}
	})
	if partner == board.NoSquare {
		return "", false
	}
	if squareColor(checkerSq) != squareColor(partner) {
		return BodenMate, true
	}
	return DoubleBishopMate, true
}

func squareColor(sq board.Square) int {
	return (sq.File() + sq.Rank()) % 2
}

func isSmothered(pos *board.Position, matedColor board.Color, kingSq board.Square) bool {
	adjacent := board.KingAttacks(kingSq)
	allOwn := true
	adjacent.ForEach(func(sq board.Square) {
		p := pos.PieceAt(sq)
		if p == board.NoPiece || p.Color() != matedColor {
			allOwn = false
		}
	})
	return allOwn
}

func isDovetail(pos *board.Position, matedColor board.Color, kingSq, queenSq board.Square) bool {
	adjacent := board.KingAttacks(kingSq)
	ok := true
	adjacent.ForEach(func(sq board.Square) {
		if sq == queenSq {
			return
		}
		attackers := pos.AttackersByColor(sq, matedColor.Other(), pos.AllOccupied)
		occupant := pos.PieceAt(sq)
		switch {
		case attackers == 0 && occupant != board.NoPiece && occupant.Color() == matedColor:
			// own piece blocks the escape square: fine.
		case occupant == board.NoPiece && attackers.PopCount() == 1 && attackers&board.SquareBB(queenSq) != 0:
			// only the mating queen covers this empty square: fine.
		default:
			ok = false
		}
	})
	return ok
}

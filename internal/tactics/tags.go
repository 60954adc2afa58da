// Package tactics implements the tagging detector library: a closed
// vocabulary of tags and a deterministic "cook" orchestrator that applies
// each detector over a puzzle's mainline in a fixed order. Downstream
// consumers read the first tag as the primary theme, so the order matters.
package tactics

// Tag is one symbol from the closed tactical-tag vocabulary.
type Tag string

const (
	// Mate family.
	Mate             Tag = "mate"
	MateIn1          Tag = "mateIn1"
	MateIn2          Tag = "mateIn2"
	MateIn3          Tag = "mateIn3"
	MateIn4          Tag = "mateIn4"
	MateIn5          Tag = "mateIn5"
	SmotheredMate    Tag = "smotheredMate"
	BackRankMate     Tag = "backRankMate"
	AnastasiaMate    Tag = "anastasiaMate"
	HookMate         Tag = "hookMate"
	ArabianMate      Tag = "arabianMate"
	BodenMate        Tag = "bodenMate"
	DoubleBishopMate Tag = "doubleBishopMate"
	DovetailMate     Tag = "dovetailMate"

	// Advantage-by-magnitude fallback (no mate detected).
	Crushing  Tag = "crushing"
	Advantage Tag = "advantage"
	Equality  Tag = "equality"

	// Independent detectors.
	Attraction        Tag = "attraction"
	Deflection        Tag = "deflection"
	AdvancedPawn      Tag = "advancedPawn"
	DoubleCheck       Tag = "doubleCheck"
	QuietMove         Tag = "quietMove"
	DefensiveMove     Tag = "defensiveMove"
	Sacrifice         Tag = "sacrifice"
	QueenSacrifice    Tag = "queenSacrifice"
	RookSacrifice     Tag = "rookSacrifice"
	BishopSacrifice   Tag = "bishopSacrifice"
	KnightSacrifice   Tag = "knightSacrifice"
	XRayAttack       Tag = "xRayAttack"
	Fork             Tag = "fork"
	HangingPiece     Tag = "hangingPiece"
	TrappedPiece     Tag = "trappedPiece"
	DiscoveredAttack Tag = "discoveredAttack"
	ExposedKing      Tag = "exposedKing"
	Skewer           Tag = "skewer"
	Interference     Tag = "interference"
	Intermezzo       Tag = "intermezzo"
	Pin              Tag = "pin"
	Clearance        Tag = "clearance"
	EnPassant        Tag = "enPassant"
	Castling         Tag = "castling"
	Promotion        Tag = "promotion"
	UnderPromotion   Tag = "underPromotion"

	// Endgame family (elif chain, single tag).
	PawnEndgame      Tag = "pawnEndgame"
	QueenEndgame     Tag = "queenEndgame"
	RookEndgame      Tag = "rookEndgame"
	BishopEndgame    Tag = "bishopEndgame"
	KnightEndgame    Tag = "knightEndgame"
	QueenRookEndgame Tag = "queenRookEndgame"

	// Side-attack family.
	KingsideAttack  Tag = "kingsideAttack"
	QueensideAttack Tag = "queensideAttack"

	// Length family.
	OneMove  Tag = "oneMove"
	Short    Tag = "short"
	Long     Tag = "long"
	VeryLong Tag = "veryLong"

	// Zugzwang, a separate post-processing entry point.
	Zugzwang Tag = "zugzwang"
)

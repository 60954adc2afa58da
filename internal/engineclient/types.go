// Package engineclient drives an external UCI-speaking search engine as a
// long-lived coprocess. Unlike internal/board's in-process move generation,
// this package never searches itself: it spawns a real engine binary
// (Stockfish or compatible), speaks the UCI text protocol over its stdin/
// stdout pipes, and exposes single-position and multi-PV evaluation.
package engineclient

// EvalResult is the outcome of a single-PV evaluation. Exactly one of
// Centipawns/MateInPlies is populated by a well-behaved engine; a driver
// that parses neither reports both zero, which callers treat as "quiet".
type EvalResult struct {
	HasCentipawns bool
	Centipawns    int
	HasMate       bool
	MateInPlies   int
	BestMove      string
}

// PvLine is one line of a multi-PV evaluation response.
type PvLine struct {
	PV          []string
	HasCP       bool
	Centipawns  int
	HasMate     bool
	MateInPlies int
}

// IsMate reports whether this line carries a mate score.
func (l PvLine) IsMate() bool {
	return l.HasMate
}

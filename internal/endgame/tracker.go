package endgame

import "github.com/chessreview/analysis-worker/internal/board"

// blunderThreshold and mistakeThreshold mirror classify's move-level
// thresholds but are applied per-move inside a tracked endgame segment.
const (
	blunderThreshold = 200
	mistakeThreshold = 50
)

// MoveRecord carries the per-ply facts the tracker folds into the open
// segment: where the move was played from, what was played versus what the
// engine preferred, and how much it cost.
type MoveRecord struct {
	FEN         string
	MoveUCI     string
	BestMoveUCI string
	MoveNumber  int
	IsWhite     bool
	CPLoss      int
}

// Mistake records one cp-loss event (>= mistakeThreshold) attributed to a
// mover within a tracked endgame segment.
type Mistake struct {
	FEN            string
	MoveUCI        string
	BestMoveUCI    string
	MoveNumber     int
	IsWhite        bool
	CPLoss         int
	Classification string // "mistake" or "blunder"
}

// Segment is one contiguous run of plies classified under the same Type.
type Segment struct {
	Kind            Type
	EntryMoveNumber int
	EntryEvalCP     int // white-perspective eval at the moment the segment began
	ExitMoveNumber  int
	WhiteCPLoss     int
	WhiteMoves      int
	WhiteBlunders   int
	BlackCPLoss     int
	BlackMoves      int
	BlackBlunders   int
	Mistakes        []Mistake
}

// Tracker accumulates Segments as a game is replayed ply by ply.
type Tracker struct {
	segments []Segment
	current  *Segment
	ply      int
}

// New returns an empty Tracker.
func New() *Tracker {
	return &Tracker{}
}

// TrackMove folds in one played ply: posAfter is the position reached,
// evalAfterWhiteCP its white-perspective evaluation, and mv the move's
// facts as computed by the classify step.
func (t *Tracker) TrackMove(posAfter *board.Position, evalAfterWhiteCP int, mv MoveRecord) {
	t.ply++
	kind := Classify(posAfter)

	if kind == "" {
		t.finalizeCurrent()
		return
	}

	if t.current == nil || t.current.Kind != kind {
		t.finalizeCurrent()
		t.current = &Segment{
			Kind:            kind,
			EntryMoveNumber: mv.MoveNumber,
			EntryEvalCP:     evalAfterWhiteCP,
		}
	}

	t.current.ExitMoveNumber = mv.MoveNumber
	if mv.IsWhite {
		t.current.WhiteCPLoss += mv.CPLoss
		t.current.WhiteMoves++
	} else {
		t.current.BlackCPLoss += mv.CPLoss
		t.current.BlackMoves++
	}

	if severity := severityOf(mv.CPLoss); severity != "" {
		t.current.Mistakes = append(t.current.Mistakes, Mistake{
			FEN:            mv.FEN,
			MoveUCI:        mv.MoveUCI,
			BestMoveUCI:    mv.BestMoveUCI,
			MoveNumber:     mv.MoveNumber,
			IsWhite:        mv.IsWhite,
			CPLoss:         mv.CPLoss,
			Classification: severity,
		})
		if severity == "blunder" {
			if mv.IsWhite {
				t.current.WhiteBlunders++
			} else {
				t.current.BlackBlunders++
			}
		}
	}
}

func severityOf(cpLoss int) string {
	switch {
	case cpLoss >= blunderThreshold:
		return "blunder"
	case cpLoss >= mistakeThreshold:
		return "mistake"
	default:
		return ""
	}
}

func (t *Tracker) finalizeCurrent() {
	if t.current == nil {
		return
	}
	t.segments = append(t.segments, *t.current)
	t.current = nil
}

// Finish closes out any in-progress segment and returns the complete list.
func (t *Tracker) Finish() []Segment {
	t.finalizeCurrent()
	return t.segments
}

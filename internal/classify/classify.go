// Package classify implements the pure move-quality functions: mapping an
// engine evaluation pair to a centipawn loss and one of eight classification
// labels, plus the accuracy formula. Every function here is deterministic
// and free of I/O.
package classify

import "math"

// Classification labels.
const (
	Best       = "best"
	Excellent  = "excellent"
	Good       = "good"
	Inaccuracy = "inaccuracy"
	Mistake    = "mistake"
	Blunder    = "blunder"
	Forced     = "forced"
	Book       = "book"
)

const (
	thresholdBest       = 0
	thresholdExcellent  = 10
	thresholdGood       = 50
	thresholdInaccuracy = 100
	thresholdMistake    = 200

	// MateThreshold marks |eval| beyond which a centipawn score is actually
	// a mate score rendered in centipawn-equivalent units.
	MateThreshold = 9000

	// MaxCPLoss is the clamp ceiling for centipawn loss.
	MaxCPLoss = 500
)

// EvalToWhiteCP converts an engine score (from the side-to-move's
// perspective) to white-perspective centipawns. Exactly one of hasCP/hasMate
// should be true; if neither is set the position is treated as quiet (0).
func EvalToWhiteCP(cp int, hasCP bool, mateInPlies int, hasMate bool, sideToMoveIsWhite bool) int {
	if hasMate {
		m := mateInPlies
		var mateScore int
		if m > 0 {
			mateScore = 10000 - 10*m
		} else {
			mateScore = -10000 - 10*m
		}
		if !sideToMoveIsWhite {
			mateScore = -mateScore
		}
		return mateScore
	}
	if hasCP {
		if !sideToMoveIsWhite {
			return -cp
		}
		return cp
	}
	return 0
}

func isMatePosition(eval int) bool {
	return abs(eval) > MateThreshold
}

// CalculateCPLoss computes the non-negative centipawn loss of a played move,
// clamped to [0, MaxCPLoss].
func CalculateCPLoss(bestEval, afterEval int, isWhiteMover, isCheckmateAfter bool) int {
	if isCheckmateAfter {
		return 0
	}

	bestIsMate := isMatePosition(bestEval)
	afterIsMate := isMatePosition(afterEval)

	if bestIsMate && afterIsMate {
		if (bestEval > 0) == (afterEval > 0) {
			return 0
		}
		return MaxCPLoss
	}

	var raw int
	if isWhiteMover {
		raw = bestEval - afterEval
	} else {
		raw = afterEval - bestEval
	}
	return clamp(raw, 0, MaxCPLoss)
}

// IsMateBlunder reports whether the move turned a won-mate into something
// less than mate, or turned a quiet/winning position into the mover getting
// mated.
func IsMateBlunder(bestEval, afterEval int, isWhiteMover, isCheckmateAfter bool) bool {
	if isCheckmateAfter {
		return false
	}

	bestIsMate := isMatePosition(bestEval)
	afterIsMate := isMatePosition(afterEval)

	if bestIsMate && !afterIsMate {
		return true
	}
	if !bestIsMate && afterIsMate {
		if isWhiteMover {
			return afterEval < 0
		}
		return afterEval > 0
	}
	return false
}

// ClassifyMove maps a centipawn loss (and mate-blunder flag) to one of
// {best, excellent, good, inaccuracy, mistake, blunder}. The "forced" and
// "book" labels are applied upstream by the pipeline orchestrator, not here.
func ClassifyMove(cpLoss int, isMateBlunder bool) string {
	if isMateBlunder {
		return Blunder
	}
	switch {
	case cpLoss <= thresholdBest:
		return Best
	case cpLoss < thresholdExcellent:
		return Excellent
	case cpLoss < thresholdGood:
		return Good
	case cpLoss < thresholdInaccuracy:
		return Inaccuracy
	case cpLoss < thresholdMistake:
		return Mistake
	default:
		return Blunder
	}
}

// CalculateAccuracy returns the accuracy percentage in [0, 100] for a
// color's total centipawn loss over move_count moves.
func CalculateAccuracy(totalCPLoss int, moveCount int) float64 {
	if moveCount == 0 {
		return 100.0
	}
	acpl := float64(totalCPLoss) / float64(moveCount)
	accuracy := 100.0 * math.Sqrt(1.0/(1.0+acpl/100.0))
	return clampF(accuracy, 0, 100)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func clamp(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func clampF(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

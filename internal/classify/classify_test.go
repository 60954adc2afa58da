package classify

import (
	"math"
	"testing"
)

func TestClassifyMoveThresholds(t *testing.T) {
	cases := []struct {
		cpLoss int
		mate   bool
		want   string
	}{
		{0, false, Best},
		{9, false, Excellent},
		{49, false, Good},
		{99, false, Inaccuracy},
		{199, false, Mistake},
		{200, false, Blunder},
		{0, true, Blunder},
	}
	for _, c := range cases {
		if got := ClassifyMove(c.cpLoss, c.mate); got != c.want {
			t.Errorf("ClassifyMove(%d, %v) = %q, want %q", c.cpLoss, c.mate, got, c.want)
		}
	}
}

func TestClassifyMoveMonotone(t *testing.T) {
	prev := -1
	order := map[string]int{Best: 0, Excellent: 1, Good: 2, Inaccuracy: 3, Mistake: 4, Blunder: 5}
	for cp := 0; cp <= 500; cp++ {
		rank := order[ClassifyMove(cp, false)]
		if rank < prev {
			t.Fatalf("classification regressed at cp_loss=%d", cp)
		}
		prev = rank
	}
}

func TestCalculateAccuracy(t *testing.T) {
	cases := []struct {
		cpLoss, moves int
		want, tol     float64
	}{
		{0, 20, 100.0, 0.1},
		{500, 20, 89.4, 1.0},
		{2000, 20, 70.7, 1.0},
		{999, 0, 100.0, 0.001},
	}
	for _, c := range cases {
		got := CalculateAccuracy(c.cpLoss, c.moves)
		if math.Abs(got-c.want) > c.tol {
			t.Errorf("CalculateAccuracy(%d,%d) = %v, want %v +-%v", c.cpLoss, c.moves, got, c.want, c.tol)
		}
	}
}

func TestCalculateAccuracyMonotone(t *testing.T) {
	prev := 101.0
	for cpLoss := 0; cpLoss <= 2000; cpLoss += 10 {
		got := CalculateAccuracy(cpLoss, 20)
		if got > prev+1e-9 {
			t.Fatalf("accuracy increased at cp_loss=%d: %v > %v", cpLoss, got, prev)
		}
		prev = got
	}
}

func TestCalculateCPLoss(t *testing.T) {
	cases := []struct {
		best, after int
		white       bool
		mate        bool
		want        int
	}{
		{100, 80, true, false, 20},
		{100, 120, false, false, 20},
		{100, 9990, true, true, 0},
		{9990, 9980, true, false, 0},
		{9990, -9990, true, false, 500},
	}
	for _, c := range cases {
		got := CalculateCPLoss(c.best, c.after, c.white, c.mate)
		if got != c.want {
			t.Errorf("CalculateCPLoss(%d,%d,%v,%v) = %d, want %d", c.best, c.after, c.white, c.mate, got, c.want)
		}
	}
}

func TestIsMateBlunder(t *testing.T) {
	cases := []struct {
		best, after int
		white, mate bool
		want        bool
	}{
		{9990, 9990, true, true, false},
		{9990, 100, true, false, true},
		{100, -9990, true, false, true},
		{100, 80, true, false, false},
	}
	for _, c := range cases {
		got := IsMateBlunder(c.best, c.after, c.white, c.mate)
		if got != c.want {
			t.Errorf("IsMateBlunder(%d,%d,%v,%v) = %v, want %v", c.best, c.after, c.white, c.mate, got, c.want)
		}
	}
}

func TestEvalToWhiteCP(t *testing.T) {
	// mate in 3 for side to move (white to move) -> positive white score.
	got := EvalToWhiteCP(0, false, 3, true, true)
	want := 10000 - 30
	if got != want {
		t.Errorf("EvalToWhiteCP mate-for-white-to-move = %d, want %d", got, want)
	}
	// mate in 3 for side to move, black to move -> negative white score.
	got = EvalToWhiteCP(0, false, 3, true, false)
	if got != -want {
		t.Errorf("EvalToWhiteCP mate-for-black-to-move = %d, want %d", got, -want)
	}
	// plain cp, black to move -> sign flipped.
	if got := EvalToWhiteCP(50, true, 0, false, false); got != -50 {
		t.Errorf("EvalToWhiteCP cp black-to-move = %d, want -50", got)
	}
	// neither cp nor mate -> quiet.
	if got := EvalToWhiteCP(0, false, 0, false, true); got != 0 {
		t.Errorf("EvalToWhiteCP quiet = %d, want 0", got)
	}
}

package pipeline

import (
	"testing"

	"github.com/chessreview/analysis-worker/internal/engineclient"
)

// quietEngine scores every position a flat +10 for the side to move, so no
// ply ever crosses the blunder threshold and no puzzle extraction runs.
type quietEngine struct {
	evaluations int
}

func (e *quietEngine) Evaluate(fen string, nodes int) (engineclient.EvalResult, error) {
	e.evaluations++
	return engineclient.EvalResult{HasCentipawns: true, Centipawns: 10, BestMove: "e2e4"}, nil
}

func (e *quietEngine) EvaluateMultiPV(fen string, nodes, k int) ([]engineclient.PvLine, error) {
	return nil, nil
}

func TestAnalyzeGameQuietGame(t *testing.T) {
	eng := &quietEngine{}
	in := GameInput{
		GameID:           "42",
		SANMoves:         []string{"e4", "e5", "Nf3", "Nc6"},
		UserColor:        "white",
		NodesPerPosition: 1000,
	}

	rec, err := AnalyzeGame(eng, nil, in)
	if err != nil {
		t.Fatalf("AnalyzeGame: %v", err)
	}

	if !rec.Complete {
		t.Error("record not marked complete")
	}
	if len(rec.Moves) != 4 {
		t.Fatalf("got %d move analyses, want 4", len(rec.Moves))
	}
	// One evaluation per position: n moves -> n+1 positions.
	if eng.evaluations != 5 {
		t.Errorf("engine evaluated %d positions, want 5", eng.evaluations)
	}

	whiteMoves, blackMoves := 0, 0
	for _, c := range rec.WhiteClassifications {
		whiteMoves += c
	}
	for _, c := range rec.BlackClassifications {
		blackMoves += c
	}
	if whiteMoves != 2 || blackMoves != 2 {
		t.Errorf("classification counts = white:%d black:%d, want 2/2", whiteMoves, blackMoves)
	}

	for i, m := range rec.Moves {
		if m.CentipawnLoss < 0 || m.CentipawnLoss > 500 {
			t.Errorf("move %d cp loss %d out of [0,500]", i, m.CentipawnLoss)
		}
		if m.Classification == "" {
			t.Errorf("move %d has empty classification", i)
		}
	}

	if rec.WhiteAccuracy < 0 || rec.WhiteAccuracy > 100 || rec.BlackAccuracy < 0 || rec.BlackAccuracy > 100 {
		t.Errorf("accuracy out of range: white %.1f black %.1f", rec.WhiteAccuracy, rec.BlackAccuracy)
	}
	if len(rec.Puzzles) != 0 {
		t.Errorf("quiet game produced %d puzzles, want 0", len(rec.Puzzles))
	}
}

func TestAnalyzeGameRejectsIllegalSAN(t *testing.T) {
	eng := &quietEngine{}
	in := GameInput{
		GameID:           "43",
		SANMoves:         []string{"e4", "Ke4"},
		NodesPerPosition: 1000,
	}
	if _, err := AnalyzeGame(eng, nil, in); err == nil {
		t.Fatal("expected replay failure for illegal SAN, got nil")
	}
}

func TestReplayRoundTrip(t *testing.T) {
	plies, err := replay([]string{"d4", "d5", "c4", "e6", "Nc3", "Nf6"})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if len(plies) != 6 {
		t.Fatalf("got %d plies, want 6", len(plies))
	}
	for i := 0; i+1 < len(plies); i++ {
		if plies[i].boardAfter.ToFEN() != plies[i+1].boardBefore.ToFEN() {
			t.Errorf("ply %d board_after != ply %d board_before", i, i+1)
		}
	}
	for i, p := range plies {
		if p.legalMoves < 1 {
			t.Errorf("ply %d recorded %d legal moves", i, p.legalMoves)
		}
	}
}

package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hailam/pvschess/internal/board"
)

func testConfig(maxPly int) Config {
	cfg := DefaultConfig()
	cfg.MaxPly = maxPly
	cfg.MoveTime = 0
	cfg.Workers = 4
	cfg.CacheCapacity = 1 << 14
	return cfg
}

func TestChooseMoveFindsMateInOne(t *testing.T) {
	p, side := mustFEN(t, "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1")
	e := NewEngine(testConfig(4))

	res, ok := e.ChooseMove(p, side, nil)
	if !ok {
		t.Fatal("ChooseMove found no move")
	}

	m, err := board.DescribeMove(p, res.Position)
	if err != nil {
		t.Fatalf("DescribeMove: %v", err)
	}
	if m.String() != "a1a8" {
		t.Errorf("Expected a1a8, got %s", m)
	}
	if res.Score < MateValue {
		t.Errorf("Expected mate score, got %d", res.Score)
	}
	if res.Ply != 2 {
		t.Errorf("Expected deepening to stop at ply 2, got %d", res.Ply)
	}
}

func TestChooseMoveNoLegalMoves(t *testing.T) {
	tests := []struct {
		name    string
		fen     string
		inCheck bool
	}{
		{"checkmate", "R6k/6pp/8/8/8/8/8/K7 b - - 0 1", true},
		{"stalemate", "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, side := mustFEN(t, tc.fen)
			e := NewEngine(testConfig(3))

			if _, ok := e.ChooseMove(p, side, nil); ok {
				t.Error("Expected no move")
			}
			if got := p.InCheck(side); got != tc.inCheck {
				t.Errorf("InCheck = %v, want %v", got, tc.inCheck)
			}
		})
	}
}

func TestChooseMoveSingleMove(t *testing.T) {
	// Black king in the corner with only h8h7 left
	p, side := mustFEN(t, "7k/8/5K2/8/8/8/8/6R1 b - - 0 1")
	moves := board.LegalMoves(p, side)
	if len(moves) != 1 {
		t.Fatalf("Setup has %d legal moves, want 1", len(moves))
	}

	e := NewEngine(testConfig(5))
	res, ok := e.ChooseMove(p, side, nil)
	if !ok {
		t.Fatal("ChooseMove found no move")
	}
	if res.Position != moves[0].Position {
		t.Error("Did not return the only legal move")
	}
	if res.Ply != 0 {
		t.Errorf("Expected no search, got ply %d", res.Ply)
	}
}

func TestChooseMoveResultIsLegal(t *testing.T) {
	fens := []string{
		board.StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R b - - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	}

	for _, fen := range fens {
		p, side := mustFEN(t, fen)
		e := NewEngine(testConfig(3))
		res, ok := e.ChooseMove(p, side, nil)
		if !ok {
			t.Fatalf("%s: no move", fen)
		}

		legal := false
		for _, m := range board.LegalMoves(p, side) {
			if m.Position == res.Position {
				legal = true
				break
			}
		}
		if !legal {
			t.Errorf("%s: chosen position is not a legal successor", fen)
		}
	}
}

func TestChooseMoveWorkerCountIndependent(t *testing.T) {
	p, side := mustFEN(t, board.StartFEN)

	serial := testConfig(3)
	serial.Workers = 1
	parallel := testConfig(3)
	parallel.Workers = 8

	a, _ := NewEngine(serial).ChooseMove(p, side, nil)
	b, _ := NewEngine(parallel).ChooseMove(p, side, nil)
	if a.Position != b.Position || a.Score != b.Score {
		t.Errorf("Serial chose %d, parallel chose %d", a.Score, b.Score)
	}
}

func TestRepetitionBias(t *testing.T) {
	p := board.StartPosition
	moves := board.LegalMoves(p, board.White)
	history := []board.Position{p, moves[0].Position, p}

	if got := RepetitionBias(p, history); got != -2*board.QueenValue {
		t.Errorf("RepetitionBias = %d, want %d", got, -2*board.QueenValue)
	}
	if got := RepetitionBias(p, nil); got != 0 {
		t.Errorf("RepetitionBias with no history = %d", got)
	}

	equal := []board.Successor{
		{Position: moves[0].Position, Score: 10},
		{Position: moves[1].Position, Score: 10},
	}
	cands := newCandidates(equal, []board.Position{moves[0].Position})
	if cands[0].score >= cands[1].score {
		t.Errorf("Repeated candidate scored %d, fresh candidate %d", cands[0].score, cands[1].score)
	}
}

func TestChooseMoveAvoidsRepetition(t *testing.T) {
	p, side := mustFEN(t, board.StartFEN)

	first, _ := NewEngine(testConfig(2)).ChooseMove(p, side, nil)
	history := []board.Position{first.Position, first.Position}
	second, _ := NewEngine(testConfig(2)).ChooseMove(p, side, history)

	if second.Position == first.Position {
		t.Error("Engine chose a position already seen twice")
	}
}

func TestChooseMoveWithoutKingPanics(t *testing.T) {
	p, err := board.ParsePosition("       k" + "        " + "        " + "        " +
		"        " + "        " + "        " + "R       ")
	if err != nil {
		t.Fatalf("ParsePosition: %v", err)
	}

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("Expected panic")
		}
		if err, ok := r.(error); !ok || !errors.Is(err, board.ErrNoKing) {
			t.Errorf("Panic value %v does not wrap ErrNoKing", r)
		}
	}()
	NewEngine(testConfig(2)).ChooseMove(p, board.White, nil)
}

func TestChooseMoveRejectsCapturableKing(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		want error
	}{
		{"opponent in check", "R6k/8/8/8/8/8/8/K7 w - - 0 1", board.ErrInvalidPosition},
		{"opponent without king", "8/8/8/8/8/8/8/K6R w - - 0 1", board.ErrNoKing},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, side := mustFEN(t, tc.fen)

			defer func() {
				r := recover()
				if r == nil {
					t.Fatal("Expected panic")
				}
				if err, ok := r.(error); !ok || !errors.Is(err, tc.want) {
					t.Errorf("Panic value %v does not wrap %v", r, tc.want)
				}
			}()
			NewEngine(testConfig(3)).ChooseMove(p, side, nil)
		})
	}
}

func TestChooseMoveContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := NewEngine(testConfig(4))
	res, ok := e.ChooseMoveContext(ctx, board.StartPosition, board.White, nil)
	if !ok {
		t.Fatal("No move")
	}
	if res.Ply > 1 {
		t.Errorf("Cancelled search completed ply %d", res.Ply)
	}

	// The stop does not leak into the next move
	res, _ = e.ChooseMove(board.StartPosition, board.White, nil)
	if res.Ply != 4 {
		t.Errorf("Search after cancellation completed ply %d, want 4", res.Ply)
	}
}

func TestChooseMoveTimeLimit(t *testing.T) {
	cfg := testConfig(MaxPly)
	cfg.MoveTime = 50 * time.Millisecond
	e := NewEngine(cfg)

	start := time.Now()
	res, ok := e.ChooseMove(board.StartPosition, board.White, nil)
	if !ok {
		t.Fatal("No move")
	}
	if res.Ply < 1 {
		t.Errorf("Expected at least one completed ply, got %d", res.Ply)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Search ignored the time limit: %v", elapsed)
	}
}

func TestChooseMoveReportsIterations(t *testing.T) {
	e := NewEngine(testConfig(3))

	var plies []int
	e.OnInfo = func(info SearchInfo) {
		plies = append(plies, info.Ply)
		if info.Candidates != 20 {
			t.Errorf("Candidates = %d, want 20", info.Candidates)
		}
	}
	e.ChooseMove(board.StartPosition, board.White, nil)

	if len(plies) != 3 || plies[0] != 1 || plies[2] != 3 {
		t.Errorf("Iterations reported: %v", plies)
	}
}

func TestConfigDifficulty(t *testing.T) {
	cfg := DefaultConfig().WithDifficulty(Easy)
	if cfg.MaxPly != 3 || cfg.MoveTime != 500*time.Millisecond {
		t.Errorf("Easy config = %d ply, %v", cfg.MaxPly, cfg.MoveTime)
	}

	for _, d := range []Difficulty{Easy, Medium, Hard} {
		got, err := ParseDifficulty(d.String())
		if err != nil || got != d {
			t.Errorf("ParseDifficulty(%q) = %v, %v", d.String(), got, err)
		}
	}
	if _, err := ParseDifficulty("grandmaster"); err == nil {
		t.Error("Expected error for unknown difficulty")
	}
}

func TestConfigNormalize(t *testing.T) {
	e := NewEngine(Config{MaxPly: 100, Workers: 0, CacheCapacity: 0})
	cfg := e.Config()
	if cfg.MaxPly != MaxPly || cfg.Workers != 1 || cfg.CacheCapacity != 1 {
		t.Errorf("normalized config = %+v", cfg)
	}
}

func TestScoreToString(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{0, "0.00"},
		{150, "1.50"},
		{-75, "-0.75"},
		{MateValue + 3, "mate"},
		{-MateValue - 1, "mated"},
	}
	for _, tc := range tests {
		if got := ScoreToString(tc.score); got != tc.want {
			t.Errorf("ScoreToString(%d) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestEnginePerft(t *testing.T) {
	e := NewEngine(testConfig(1))
	if got := e.Perft(board.StartPosition, board.White, 3); got != 8902 {
		t.Errorf("Perft(3) = %d, want 8902", got)
	}
}

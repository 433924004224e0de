package board

import (
	"errors"
	"strings"
	"testing"
)

func TestCheckmate(t *testing.T) {
	// Back rank mate - already checkmate
	// White: Ka1, Ra8
	// Black: Kh8, pawns on g7 and h7 blocking escape
	p, side, err := ParseFEN("R6k/6pp/8/8/8/8/8/K7 b - - 0 1")
	if err != nil {
		t.Fatal("Error parsing FEN:", err)
	}

	moves := LegalMoves(p, side)
	t.Log("Black legal moves:", len(moves))

	if len(moves) != 0 {
		t.Errorf("Expected no legal moves, got %d", len(moves))
	}
	if !p.InCheck(side) {
		t.Error("Expected black to be in check")
	}
}

func TestStalemate(t *testing.T) {
	// Black king h8 boxed in by Qf7 and Kg6 but not attacked
	p, side, err := ParseFEN("7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	if err != nil {
		t.Fatal("Error parsing FEN:", err)
	}

	if moves := LegalMoves(p, side); len(moves) != 0 {
		t.Errorf("Expected no legal moves, got %d", len(moves))
	}
	if p.InCheck(side) {
		t.Error("Stalemated king should not be in check")
	}
}

func TestNotCheckmate(t *testing.T) {
	// Black king on h8 in check from Rg8: it can take the rook or step to h7
	p, side, err := ParseFEN("6Rk/8/8/8/8/8/8/K7 b - - 0 1")
	if err != nil {
		t.Fatal("Error parsing FEN:", err)
	}

	if !p.InCheck(side) {
		t.Error("Expected black to be in check")
	}

	moves := LegalMoves(p, side)
	if len(moves) != 2 {
		t.Fatalf("Expected Kxg8 and Kh7, got %d moves", len(moves))
	}

	found := map[string]Piece{}
	for _, s := range moves {
		m, err := DescribeMove(p, s.Position)
		if err != nil {
			t.Fatal(err)
		}
		found[m.String()] = m.Captured
	}
	if c, ok := found["h8g8"]; !ok || c != WhiteRook {
		t.Errorf("Expected h8g8 capturing the rook, got %v", found)
	}
	if c, ok := found["h8h7"]; !ok || c != NoPiece {
		t.Errorf("Expected quiet h8h7, got %v", found)
	}
}

func TestInCheckBlockedRays(t *testing.T) {
	tests := []struct {
		name  string
		fen   string
		side  Side
		check bool
	}{
		{"rook on open file", "4k3/8/8/8/8/8/8/4R2K b - - 0 1", Black, true},
		{"rook blocked by own piece", "4k3/4n3/8/8/8/8/8/4R2K b - - 0 1", Black, false},
		{"rook blocked by enemy piece", "4k3/8/8/4P3/8/8/8/4R2K b - - 0 1", Black, false},
		{"bishop diagonal", "4k3/8/8/1B6/8/8/8/7K b - - 0 1", Black, true},
		{"rook does not attack diagonally", "4k3/8/8/1R6/8/8/8/7K b - - 0 1", Black, false},
		{"knight", "4k3/8/3N4/8/8/8/8/7K b - - 0 1", Black, true},
		{"white pawn attacks up", "4k3/3P4/8/8/8/8/8/7K b - - 0 1", Black, true},
		{"white pawn does not attack down", "7K/8/8/8/8/3P4/4k3/8 b - - 0 1", Black, false},
		{"black pawn attacks down", "7k/8/8/8/8/8/3p4/4K3 w - - 0 1", White, true},
		{"black pawn in front does not attack", "7k/8/8/8/8/8/4p3/4K3 w - - 0 1", White, false},
		{"queen long diagonal", "7k/8/8/q7/8/8/8/4K3 w - - 0 1", White, true},
		{"queen off diagonal", "7k/8/8/8/q7/8/8/4K3 w - - 0 1", White, false},
		{"queen rank", "7k/8/8/8/8/8/8/q3K3 w - - 0 1", White, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, _, err := ParseFEN(tc.fen)
			if err != nil {
				t.Fatal(err)
			}
			if got := p.InCheck(tc.side); got != tc.check {
				t.Errorf("InCheck(%s) = %v, want %v", tc.side, got, tc.check)
			}
		})
	}
}

func TestInCheckKingHint(t *testing.T) {
	p, _, err := ParseFEN("4k3/8/8/8/8/8/8/4R2K b - - 0 1")
	if err != nil {
		t.Fatal(err)
	}

	e8, _ := ParseSquare("e8")
	check, sq := InCheck(&p, Black, NoSquare)
	if !check || sq != e8 {
		t.Fatalf("InCheck = %v at %s, want true at e8", check, sq)
	}

	// A stale hint is rescanned rather than trusted
	check, sq = InCheck(&p, Black, 0)
	if !check || sq != e8 {
		t.Errorf("InCheck with stale hint = %v at %s, want true at e8", check, sq)
	}
}

func TestInCheckMissingKingPanics(t *testing.T) {
	p := MustParsePosition("K" + strings.Repeat(" ", 63))

	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrNoKing) {
			t.Errorf("Expected panic wrapping ErrNoKing, got %v", r)
		}
	}()
	p.InCheck(Black)
}

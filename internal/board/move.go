package board

import (
	"errors"
	"fmt"
)

// ErrNoMove is returned when two positions are not one move apart.
var ErrNoMove = errors.New("positions are not one move apart")

// Move describes the step between two consecutive positions. The search
// works on positions, so moves are only reconstructed for logging and
// game records.
type Move struct {
	From      Square
	To        Square
	Piece     Piece // Piece that moved, before any promotion
	Captured  Piece // NoPiece for a quiet move
	Promotion Kind  // NoKind unless a pawn promoted
}

// IsCapture returns true if the move captured a piece.
func (m Move) IsCapture() bool {
	return m.Captured != NoPiece
}

// IsPromotion returns true if a pawn promoted.
func (m Move) IsPromotion() bool {
	return m.Promotion != NoKind
}

// String returns coordinate notation, e.g. "e2e4" or "e7e8q".
func (m Move) String() string {
	s := m.From.String() + m.To.String()
	if m.IsPromotion() {
		s += string(rune(NewPiece(m.Promotion, Black)))
	}
	return s
}

// DescribeMove reconstructs the move that turned before into after.
func DescribeMove(before, after Position) (Move, error) {
	var changed []Square
	for sq := Square(0); sq < 64; sq++ {
		if before[sq] != after[sq] {
			changed = append(changed, sq)
		}
	}
	if len(changed) != 2 {
		return Move{}, fmt.Errorf("%w: %d cells differ", ErrNoMove, len(changed))
	}

	from, to := changed[0], changed[1]
	if after[from] != NoPiece {
		from, to = to, from
	}
	if after[from] != NoPiece || before[from] == NoPiece {
		return Move{}, fmt.Errorf("%w: no vacated cell", ErrNoMove)
	}

	moved := before[from]
	landed := after[to]
	if landed.Side() != moved.Side() {
		return Move{}, fmt.Errorf("%w: %s became %s", ErrNoMove, moved, landed)
	}

	m := Move{From: from, To: to, Piece: moved, Captured: before[to]}
	if landed != moved {
		if moved.Kind() != Pawn {
			return Move{}, fmt.Errorf("%w: %s cannot promote", ErrNoMove, moved)
		}
		m.Promotion = landed.Kind()
	}
	return m, nil
}

// Apply returns the position after m.
func (p Position) Apply(m Move) Position {
	landed := m.Piece
	if m.IsPromotion() {
		landed = NewPiece(m.Promotion, m.Piece.Side())
	}
	p[m.From] = NoPiece
	p[m.To] = landed
	return p
}

package board

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPosition is wrapped by every position decoding error.
	ErrInvalidPosition = errors.New("invalid position")

	// ErrNoKing signals a position without a king for the side being tested.
	// Check detection cannot work without one, so it is a programming error.
	ErrNoKing = errors.New("king not found")
)

// Position is a fixed 64-cell board. It is a comparable value: assigning or
// passing it copies the cells, so successors never alias their parent.
type Position [64]Piece

// StartPosition is the standard initial position.
var StartPosition = MustParsePosition(
	"rnbqkbnr" +
		"pppppppp" +
		"        " +
		"        " +
		"        " +
		"        " +
		"PPPPPPPP" +
		"RNBQKBNR")

// ParsePosition decodes a 64-symbol string, one symbol per cell in index
// order. Uppercase letters are White, lowercase Black, a space is empty.
func ParsePosition(s string) (Position, error) {
	var p Position
	if len(s) != 64 {
		return p, fmt.Errorf("%w: need 64 cells, got %d", ErrInvalidPosition, len(s))
	}

	kings := map[Side]int{}
	for i := 0; i < 64; i++ {
		pc := Piece(s[i])
		if !pc.Valid() {
			return p, fmt.Errorf("%w: unknown symbol %q at %s", ErrInvalidPosition, s[i], Square(i))
		}
		if pc.Kind() == King {
			kings[pc.Side()]++
		}
		p[i] = pc
	}

	for side, n := range kings {
		if n > 1 {
			return p, fmt.Errorf("%w: %d %s kings", ErrInvalidPosition, n, side)
		}
	}

	return p, nil
}

// MustParsePosition is like ParsePosition but panics on error.
// Intended for package-level fixtures.
func MustParsePosition(s string) Position {
	p, err := ParsePosition(s)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the 64-symbol encoding of the position.
func (p Position) String() string {
	b := make([]byte, 64)
	for i, pc := range p {
		b[i] = byte(pc)
	}
	return string(b)
}

// PieceAt returns the piece at the given square.
func (p *Position) PieceAt(sq Square) Piece {
	return p[sq]
}

// IsEmpty returns true if the square is empty.
func (p *Position) IsEmpty(sq Square) bool {
	return p[sq] == NoPiece
}

// KingSquare scans for the side's king, returning NoSquare if absent.
func (p *Position) KingSquare(side Side) Square {
	king := NewPiece(King, side)
	for i, pc := range p {
		if pc == king {
			return Square(i)
		}
	}
	return NoSquare
}

// Count returns the number of cells holding pc.
func (p *Position) Count(pc Piece) int {
	n := 0
	for _, c := range p {
		if c == pc {
			n++
		}
	}
	return n
}

// Validate reports whether side can move in p: each side has exactly one
// king and the side not to move is not in check. Errors wrap ErrNoKing for
// a missing king and ErrInvalidPosition otherwise.
func (p *Position) Validate(side Side) error {
	if side != White && side != Black {
		return fmt.Errorf("%w: no side to move", ErrInvalidPosition)
	}
	for _, s := range []Side{White, Black} {
		switch n := p.Count(NewPiece(King, s)); {
		case n == 0:
			return fmt.Errorf("%w: %s has no king", ErrNoKing, s)
		case n > 1:
			return fmt.Errorf("%w: %d %s kings", ErrInvalidPosition, n, s)
		}
	}
	if p.InCheck(side.Other()) {
		return fmt.Errorf("%w: %s is in check with %s to move", ErrInvalidPosition, side.Other(), side)
	}
	return nil
}

// Mirror rotates the board 180 degrees and swaps colours. The mirrored
// position with the other side to move is the same game seen from the
// opponent's chair.
func (p Position) Mirror() Position {
	var m Position
	for i, pc := range p {
		switch pc.Side() {
		case White:
			pc = NewPiece(pc.Kind(), Black)
		case Black:
			pc = NewPiece(pc.Kind(), White)
		}
		m[Square(i).Rotate()] = pc
	}
	return m
}

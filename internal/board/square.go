// Package board implements the 64-cell position model, legal move
// generation, check detection and static evaluation.
package board

import "fmt"

// Square is a cell index (0-63), row-major from the a8 corner:
// a8=0, h8=7, a1=56, h1=63. Row 0 is Black's back rank.
type Square int8

// NoSquare marks a missing square (for example an absent king).
const NoSquare Square = -1

// NewSquare creates a square from column and row (0-indexed).
func NewSquare(col, row int) Square {
	return Square(row*8 + col)
}

// Col returns the column of the square (0-7, where 0=a).
func (sq Square) Col() int {
	return int(sq) & 7
}

// Row returns the row of the square (0-7, where 0 is rank 8).
func (sq Square) Row() int {
	return int(sq) >> 3
}

// IsValid returns true if the square is on the board.
func (sq Square) IsValid() bool {
	return sq >= 0 && sq < 64
}

// String returns the algebraic notation for the square (e.g., "e4").
func (sq Square) String() string {
	if !sq.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%c%c", 'a'+sq.Col(), '8'-sq.Row())
}

// ParseSquare parses algebraic notation (e.g., "e4") into a Square.
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return NoSquare, fmt.Errorf("invalid square: %s", s)
	}

	col := int(s[0] - 'a')
	row := int('8' - s[1])

	if col < 0 || col > 7 || row < 0 || row > 7 {
		return NoSquare, fmt.Errorf("invalid square: %s", s)
	}

	return NewSquare(col, row), nil
}

// Rotate returns the square seen from the other side of the board
// (180 degree rotation).
func (sq Square) Rotate() Square {
	return 63 - sq
}

// onBoard reports whether (col, row) lies on the board.
func onBoard(col, row int) bool {
	return col >= 0 && col < 8 && row >= 0 && row < 8
}

package board

import (
	"fmt"
	"strings"
)

// StartFEN is the FEN string for the starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN parses the piece placement and side-to-move fields of a FEN
// string. Castling rights, en passant and the move clocks are accepted but
// ignored; the position model carries no such state.
func ParseFEN(fen string) (Position, Side, error) {
	var p Position
	parts := strings.Fields(fen)
	if len(parts) < 2 {
		return p, NoSide, fmt.Errorf("%w: FEN needs at least 2 fields, got %d", ErrInvalidPosition, len(parts))
	}

	placement, err := parsePiecePlacement(parts[0])
	if err != nil {
		return p, NoSide, err
	}

	var side Side
	switch parts[1] {
	case "w":
		side = White
	case "b":
		side = Black
	default:
		return p, NoSide, fmt.Errorf("%w: invalid side to move: %s", ErrInvalidPosition, parts[1])
	}

	p, err = ParsePosition(placement)
	if err != nil {
		return p, NoSide, err
	}
	return p, side, nil
}

// parsePiecePlacement expands the FEN placement field into 64 cell symbols.
func parsePiecePlacement(s string) (string, error) {
	ranks := strings.Split(s, "/")
	if len(ranks) != 8 {
		return "", fmt.Errorf("%w: FEN needs 8 ranks, got %d", ErrInvalidPosition, len(ranks))
	}

	var sb strings.Builder
	for _, rank := range ranks {
		width := 0
		for i := 0; i < len(rank); i++ {
			c := rank[i]
			if c >= '1' && c <= '8' {
				n := int(c - '0')
				sb.WriteString(strings.Repeat(" ", n))
				width += n
				continue
			}
			if Piece(c).Side() == NoSide {
				return "", fmt.Errorf("%w: invalid FEN piece %q", ErrInvalidPosition, c)
			}
			sb.WriteByte(c)
			width++
		}
		if width != 8 {
			return "", fmt.Errorf("%w: FEN rank %q has %d files", ErrInvalidPosition, rank, width)
		}
	}
	return sb.String(), nil
}

// FEN returns a FEN string for the position with side to move. Castling
// and en passant are always "-".
func (p Position) FEN(side Side) string {
	var sb strings.Builder

	for row := 0; row < 8; row++ {
		empty := 0
		for col := 0; col < 8; col++ {
			pc := p[NewSquare(col, row)]
			if pc == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(byte(pc))
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if row < 7 {
			sb.WriteByte('/')
		}
	}

	if side == Black {
		sb.WriteString(" b")
	} else {
		sb.WriteString(" w")
	}
	sb.WriteString(" - - 0 1")

	return sb.String()
}

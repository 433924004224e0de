package board

import (
	"fmt"
	"strings"
)

// SAN returns m, played by side from before, in Standard Algebraic
// Notation.
func SAN(before Position, side Side, m Move) string {
	var sb strings.Builder

	kind := m.Piece.Kind()

	// Piece letter and disambiguation (not for pawns)
	if kind != Pawn {
		sb.WriteByte(byte(NewPiece(kind, White)))
		sb.WriteString(disambiguation(before, side, m))
	}

	// Capture marker
	if m.IsCapture() {
		if kind == Pawn {
			// Pawn captures include the file of origin
			sb.WriteByte('a' + byte(m.From.Col()))
		}
		sb.WriteByte('x')
	}

	sb.WriteString(m.To.String())

	if m.IsPromotion() {
		sb.WriteByte('=')
		sb.WriteByte(byte(NewPiece(m.Promotion, White)))
	}

	// Check/checkmate marker
	after := before.Apply(m)
	them := side.Other()
	if after.InCheck(them) {
		if len(LegalMoves(after, them)) == 0 {
			sb.WriteByte('#')
		} else {
			sb.WriteByte('+')
		}
	}

	return sb.String()
}

// disambiguation returns the origin file, rank or square needed when
// another piece of the same kind can also reach m.To.
func disambiguation(before Position, side Side, m Move) string {
	var sameFile, sameRank, ambiguous bool
	for _, s := range LegalMoves(before, side) {
		other, err := DescribeMove(before, s.Position)
		if err != nil || other.To != m.To || other.From == m.From || other.Piece != m.Piece {
			continue
		}
		ambiguous = true
		if other.From.Col() == m.From.Col() {
			sameFile = true
		}
		if other.From.Row() == m.From.Row() {
			sameRank = true
		}
	}

	from := m.From.String()
	switch {
	case !ambiguous:
		return ""
	case !sameFile:
		return from[:1]
	case !sameRank:
		return from[1:]
	default:
		return from
	}
}

// ParseSAN finds the legal move of side from p written as s. Check and
// mate markers are optional.
func ParseSAN(s string, p Position, side Side) (Move, error) {
	want := strings.TrimRight(strings.TrimSpace(s), "+#")
	for _, succ := range LegalMoves(p, side) {
		m, err := DescribeMove(p, succ.Position)
		if err != nil {
			continue
		}
		if strings.TrimRight(SAN(p, side, m), "+#") == want {
			return m, nil
		}
	}
	return Move{}, fmt.Errorf("%w: %q is not a legal move for %s", ErrNoMove, s, side)
}

// SANs converts consecutive positions, starting with side to move, into
// SAN move text.
func SANs(start Position, side Side, positions []Position) ([]string, error) {
	result := make([]string, 0, len(positions))
	prev := start

	for _, next := range positions {
		m, err := DescribeMove(prev, next)
		if err != nil {
			return result, err
		}
		result = append(result, SAN(prev, side, m))
		prev, side = next, side.Other()
	}

	return result, nil
}

package board

// Successor is a legal child position paired with its static evaluation
// from the mover's point of view.
type Successor struct {
	Position Position
	Score    int
}

// StartRow returns the row a side's pawns start on.
func StartRow(side Side) int {
	if side == White {
		return 6
	}
	return 1
}

// PromotionRow returns the row on which a side's pawns promote.
func PromotionRow(side Side) int {
	if side == White {
		return 0
	}
	return 7
}

// LegalMoves generates every legal successor of p for side. Successors that
// leave the mover's king in check are discarded. An empty result means
// checkmate or stalemate; InCheck tells which.
func LegalMoves(p Position, side Side) []Successor {
	out := make([]Successor, 0, 48)
	kingSq := NoSquare

	for sq := Square(0); sq < 64; sq++ {
		pc := p[sq]
		if pc.Side() != side {
			continue
		}
		for _, child := range pieceMoves(&p, sq) {
			var check bool
			check, kingSq = InCheck(&child, side, kingSq)
			if check {
				continue
			}
			out = append(out, Successor{Position: child, Score: Evaluate(&child, side)})
		}
	}
	return out
}

// pieceMoves generates the pseudo-legal successors for the piece on from.
// p is used as a scratch board and is restored before returning.
func pieceMoves(p *Position, from Square) []Position {
	piece := p[from]
	side := piece.Side()
	isPawn := piece.Kind() == Pawn
	out := make([]Position, 0, 8)

	for _, step := range Template(piece) {
		col, row := from.Col(), from.Row()
		length := step.Length
		if length == 0 {
			// Pawn push: double step from the starting row
			length = 1
			if row == StartRow(side) {
				length = 2
			}
		}

		for ; length > 0; length-- {
			col += step.DX
			row += step.DY
			if !onBoard(col, row) {
				break
			}

			to := NewSquare(col, row)
			target := p[to]
			targetSide := target.Side()
			if targetSide == side {
				// Blocked by a friendly piece
				break
			}
			if step.Capture == Never && targetSide != NoSide {
				break
			}
			if step.Capture == Mandatory && targetSide == NoSide {
				break
			}

			p[from] = NoPiece
			if isPawn && row == PromotionRow(side) {
				for _, k := range promotionKinds {
					p[to] = NewPiece(k, side)
					out = append(out, *p)
				}
			} else {
				p[to] = piece
				out = append(out, *p)
			}
			p[from] = piece
			p[to] = target

			if targetSide != NoSide {
				// Captures never continue past the captured piece
				break
			}
		}
	}
	return out
}

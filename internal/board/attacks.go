package board

import "fmt"

// CaptureRule says whether a template step may land on an enemy piece.
type CaptureRule uint8

const (
	Never     CaptureRule = iota // Step must land on an empty cell
	Optional                     // Empty cell or enemy piece
	Mandatory                    // Enemy piece only
)

// Step is one movement template entry. A Length of 0 is the pawn sentinel:
// one step, or two from the side's starting row.
type Step struct {
	DX, DY  int
	Length  int
	Capture CaptureRule
}

// Ray is an attack vector scanned outward from a king. Only the first
// occupied cell along it can be an attacker.
type Ray struct {
	DX, DY int
	Length int
}

// AttackTest pairs a set of enemy pieces with the rays they attack along.
type AttackTest struct {
	Pieces []Piece
	Rays   []Ray
}

// Movement templates and attack vectors. Built once in init and shared
// read-only by every search worker.
var (
	templates   [128][]Step      // indexed by Piece symbol
	attackTests [3][]AttackTest // indexed by side+1
)

func init() {
	initTemplates()
	initAttackTests()
}

func initTemplates() {
	orthogonal := [][2]int{{0, -1}, {-1, 0}, {0, 1}, {1, 0}}
	diagonal := [][2]int{{-1, -1}, {1, 1}, {-1, 1}, {1, -1}}
	knightJumps := [][2]int{{-2, 1}, {2, -1}, {2, 1}, {-2, -1}, {-1, -2}, {-1, 2}, {1, -2}, {1, 2}}

	slide := func(dirs [][2]int, length int) []Step {
		steps := make([]Step, 0, len(dirs))
		for _, d := range dirs {
			steps = append(steps, Step{DX: d[0], DY: d[1], Length: length, Capture: Optional})
		}
		return steps
	}
	all := append(append([][2]int{}, orthogonal...), diagonal...)

	rook := slide(orthogonal, 7)
	bishop := slide(diagonal, 7)
	knight := slide(knightJumps, 1)
	queen := slide(all, 7)
	king := slide(all, 1)

	for _, s := range []Side{White, Black} {
		templates[NewPiece(Rook, s)] = rook
		templates[NewPiece(Bishop, s)] = bishop
		templates[NewPiece(Knight, s)] = knight
		templates[NewPiece(Queen, s)] = queen
		templates[NewPiece(King, s)] = king
	}

	// White pawns advance toward row 0, Black pawns toward row 7
	templates[WhitePawn] = []Step{
		{DX: 0, DY: -1, Length: 0, Capture: Never},
		{DX: -1, DY: -1, Length: 1, Capture: Mandatory},
		{DX: 1, DY: -1, Length: 1, Capture: Mandatory},
	}
	templates[BlackPawn] = []Step{
		{DX: 0, DY: 1, Length: 0, Capture: Never},
		{DX: -1, DY: 1, Length: 1, Capture: Mandatory},
		{DX: 1, DY: 1, Length: 1, Capture: Mandatory},
	}
}

func initAttackTests() {
	rays := func(dirs [][2]int, length int) []Ray {
		out := make([]Ray, 0, len(dirs))
		for _, d := range dirs {
			out = append(out, Ray{DX: d[0], DY: d[1], Length: length})
		}
		return out
	}

	diagonal := rays([][2]int{{-1, -1}, {1, 1}, {-1, 1}, {1, -1}}, 7)
	orthogonal := rays([][2]int{{0, -1}, {-1, 0}, {0, 1}, {1, 0}}, 7)
	knight := rays([][2]int{{-1, -2}, {-1, 2}, {-2, -1}, {-2, 1}, {1, -2}, {1, 2}, {2, -1}, {2, 1}}, 1)
	adjacent := rays([][2]int{{-1, -1}, {1, 1}, {-1, 1}, {1, -1}, {0, -1}, {-1, 0}, {0, 1}, {1, 0}}, 1)

	// A White king is hit by Black pawns from the row above it, and the
	// other way round for Black.
	whiteKingPawnRays := rays([][2]int{{-1, -1}, {1, -1}}, 1)
	blackKingPawnRays := rays([][2]int{{-1, 1}, {1, 1}}, 1)

	attackTests[White+1] = []AttackTest{
		{Pieces: []Piece{BlackQueen, BlackBishop}, Rays: diagonal},
		{Pieces: []Piece{BlackQueen, BlackRook}, Rays: orthogonal},
		{Pieces: []Piece{BlackKnight}, Rays: knight},
		{Pieces: []Piece{BlackKing}, Rays: adjacent},
		{Pieces: []Piece{BlackPawn}, Rays: whiteKingPawnRays},
	}
	attackTests[Black+1] = []AttackTest{
		{Pieces: []Piece{WhiteQueen, WhiteBishop}, Rays: diagonal},
		{Pieces: []Piece{WhiteQueen, WhiteRook}, Rays: orthogonal},
		{Pieces: []Piece{WhiteKnight}, Rays: knight},
		{Pieces: []Piece{WhiteKing}, Rays: adjacent},
		{Pieces: []Piece{WhitePawn}, Rays: blackKingPawnRays},
	}
}

// Template returns the movement template for a piece.
func Template(pc Piece) []Step {
	if !pc.Valid() || pc == NoPiece {
		return nil
	}
	return templates[pc]
}

// AttackTests returns the attack vectors checked around the king of side.
func AttackTests(side Side) []AttackTest {
	if side != White && side != Black {
		return nil
	}
	return attackTests[side+1]
}

// firstHit returns the first occupied cell along a ray from sq, or NoPiece.
func (p *Position) firstHit(sq Square, r Ray) Piece {
	col, row := sq.Col(), sq.Row()
	for n := r.Length; n > 0; n-- {
		col += r.DX
		row += r.DY
		if !onBoard(col, row) {
			break
		}
		if pc := p[NewSquare(col, row)]; pc != NoPiece {
			return pc
		}
	}
	return NoPiece
}

// InCheck reports whether the king of side is attacked. kingHint is a
// previously found king square; the board is only rescanned when the hint
// no longer holds that king. The king square actually used is returned for
// the next call.
//
// InCheck panics with an error wrapping ErrNoKing when side has no king.
func InCheck(p *Position, side Side, kingHint Square) (bool, Square) {
	king := NewPiece(King, side)
	kingSq := kingHint
	if !kingSq.IsValid() || p[kingSq] != king {
		kingSq = p.KingSquare(side)
		if kingSq == NoSquare {
			panic(fmt.Errorf("%w: %s to move", ErrNoKing, side))
		}
	}

	for _, test := range AttackTests(side) {
		for _, r := range test.Rays {
			hit := p.firstHit(kingSq, r)
			if hit == NoPiece {
				continue
			}
			for _, attacker := range test.Pieces {
				if hit == attacker {
					return true, kingSq
				}
			}
		}
	}
	return false, kingSq
}

// InCheck returns true if the side's king is attacked.
func (p *Position) InCheck(side Side) bool {
	check, _ := InCheck(p, side, NoSquare)
	return check
}

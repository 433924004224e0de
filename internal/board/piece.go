package board

// Side is the colour of a piece or player, encoded as a signed unit so that
// negation flips perspective. Empty squares classify as NoSide.
type Side int8

const (
	White  Side = 1
	Black  Side = -1
	NoSide Side = 0
)

// Other returns the opposite side.
func (s Side) Other() Side {
	return -s
}

// String returns the side name.
func (s Side) String() string {
	switch s {
	case White:
		return "White"
	case Black:
		return "Black"
	default:
		return "None"
	}
}

// Kind represents the type of a chess piece.
type Kind uint8

const (
	NoKind Kind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

// String returns the piece kind name.
func (k Kind) String() string {
	switch k {
	case Pawn:
		return "Pawn"
	case Knight:
		return "Knight"
	case Bishop:
		return "Bishop"
	case Rook:
		return "Rook"
	case Queen:
		return "Queen"
	case King:
		return "King"
	default:
		return "None"
	}
}

// Material values in centipawns.
const (
	PawnValue   = 100
	KnightValue = 320
	BishopValue = 330
	RookValue   = 500
	QueenValue  = 900
	KingValue   = 20000
)

// pieceValues is indexed by Kind.
var pieceValues = [7]int{0, PawnValue, KnightValue, BishopValue, RookValue, QueenValue, KingValue}

// Piece is the symbol occupying a cell: uppercase for White, lowercase for
// Black, a space for an empty cell.
type Piece byte

const (
	NoPiece Piece = ' '

	WhitePawn   Piece = 'P'
	WhiteKnight Piece = 'N'
	WhiteBishop Piece = 'B'
	WhiteRook   Piece = 'R'
	WhiteQueen  Piece = 'Q'
	WhiteKing   Piece = 'K'
	BlackPawn   Piece = 'p'
	BlackKnight Piece = 'n'
	BlackBishop Piece = 'b'
	BlackRook   Piece = 'r'
	BlackQueen  Piece = 'q'
	BlackKing   Piece = 'k'
)

// NewPiece creates a Piece from a Kind and Side.
func NewPiece(k Kind, s Side) Piece {
	var c byte
	switch k {
	case Pawn:
		c = 'p'
	case Knight:
		c = 'n'
	case Bishop:
		c = 'b'
	case Rook:
		c = 'r'
	case Queen:
		c = 'q'
	case King:
		c = 'k'
	default:
		return NoPiece
	}
	switch s {
	case White:
		return Piece(c - 'a' + 'A')
	case Black:
		return Piece(c)
	default:
		return NoPiece
	}
}

// Side classifies the occupant: White, Black or NoSide for an empty cell.
func (p Piece) Side() Side {
	switch {
	case p >= 'A' && p <= 'Z' && p.Kind() != NoKind:
		return White
	case p >= 'a' && p <= 'z' && p.Kind() != NoKind:
		return Black
	default:
		return NoSide
	}
}

// Kind returns the piece kind, NoKind for an empty or unknown symbol.
func (p Piece) Kind() Kind {
	switch p | 0x20 {
	case 'p':
		return Pawn
	case 'n':
		return Knight
	case 'b':
		return Bishop
	case 'r':
		return Rook
	case 'q':
		return Queen
	case 'k':
		return King
	default:
		return NoKind
	}
}

// Valid reports whether p is an empty cell or a recognised piece symbol.
func (p Piece) Valid() bool {
	return p == NoPiece || p.Side() != NoSide
}

// Value returns the material value of the piece in centipawns.
func (p Piece) Value() int {
	return pieceValues[p.Kind()]
}

// Glyph returns the unicode chess symbol for the piece.
func (p Piece) Glyph() string {
	switch p {
	case WhiteKing:
		return "♔"
	case WhiteQueen:
		return "♕"
	case WhiteRook:
		return "♖"
	case WhiteBishop:
		return "♗"
	case WhiteKnight:
		return "♘"
	case WhitePawn:
		return "♙"
	case BlackKing:
		return "♚"
	case BlackQueen:
		return "♛"
	case BlackRook:
		return "♜"
	case BlackBishop:
		return "♝"
	case BlackKnight:
		return "♞"
	case BlackPawn:
		return "♟"
	default:
		return " "
	}
}

// String returns the one-character symbol for the piece.
func (p Piece) String() string {
	return string(rune(p))
}

// promotionKinds lists the promotion choices in generation order.
var promotionKinds = [4]Kind{Queen, Rook, Bishop, Knight}

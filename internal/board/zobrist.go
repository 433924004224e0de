package board

// Zobrist keys for position hashing.
// Uses PRNG with fixed seed for reproducibility.
var zobristPiece [2][7][64]uint64 // [White=0/Black=1][Kind][Square]

func init() {
	initZobrist()
}

// Simple PRNG for reproducible Zobrist keys
type prng struct {
	state uint64
}

func newPRNG(seed uint64) *prng {
	return &prng{state: seed}
}

// xorshift64* algorithm
func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}

func initZobrist() {
	rng := newPRNG(0x98F107A2BEEF1234)

	for c := 0; c < 2; c++ {
		for k := Pawn; k <= King; k++ {
			for sq := 0; sq < 64; sq++ {
				zobristPiece[c][k][sq] = rng.next()
			}
		}
	}
}

// zobristColor maps a side to its key table row.
func zobristColor(s Side) int {
	if s == White {
		return 0
	}
	return 1
}

// Hash returns the Zobrist key of the piece placement. Equal positions
// always hash equal; distinct positions collide with negligible probability,
// so the hash may spread work but must never decide equality.
func (p *Position) Hash() uint64 {
	var h uint64
	for i, pc := range p {
		if pc == NoPiece {
			continue
		}
		h ^= zobristPiece[zobristColor(pc.Side())][pc.Kind()][i]
	}
	return h
}

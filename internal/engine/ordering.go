package engine

import (
	"cmp"
	"slices"

	"github.com/hailam/pvschess/internal/board"
	"github.com/samber/lo"
)

// orderSuccessors sorts successors best-first by static score. The sort is
// stable so equal scores keep generation order and searches stay repeatable.
func orderSuccessors(moves []board.Successor) {
	slices.SortStableFunc(moves, func(a, b board.Successor) int {
		return cmp.Compare(b.Score, a.Score)
	})
}

// candidate is a root move with its repetition bias and latest score.
type candidate struct {
	position board.Position
	bias     int
	score    int
}

// RepetitionBias penalises a candidate position by one queen for every time
// it already occurs in the game history.
func RepetitionBias(p board.Position, history []board.Position) int {
	return -lo.Count(history, p) * board.QueenValue
}

// newCandidates builds root candidates from successors, scored statically
// plus their repetition bias.
func newCandidates(moves []board.Successor, history []board.Position) []candidate {
	return lo.Map(moves, func(m board.Successor, _ int) candidate {
		bias := RepetitionBias(m.Position, history)
		return candidate{position: m.Position, bias: bias, score: m.Score + bias}
	})
}

// rankCandidates sorts candidates best-first by combined score.
func rankCandidates(cands []candidate) {
	slices.SortStableFunc(cands, func(a, b candidate) int {
		return cmp.Compare(b.score, a.score)
	})
}

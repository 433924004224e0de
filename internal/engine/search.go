package engine

import (
	"sync/atomic"

	"github.com/hailam/pvschess/internal/board"
)

// Search constants
const (
	MateValue = board.KingValue * 10 // Scores at or above this are forced mates
	Infinity  = MateValue * 10       // Root search window bound
	MaxPly    = 64

	// cacheMinDepth is the shallowest remaining depth worth memoizing.
	cacheMinDepth = 2
)

// Searcher runs negamax principal-variation search. It is safe for
// concurrent use: all shared state is the cache and the atomic counters.
type Searcher struct {
	cache     *Cache
	clock     *TimeManager
	stopFlag  *atomic.Bool
	stalemate int

	nodes atomic.Uint64
}

// NewSearcher creates a searcher. cache, clock and stopFlag may be nil.
func NewSearcher(cache *Cache, clock *TimeManager, stopFlag *atomic.Bool, stalemateScore int) *Searcher {
	return &Searcher{
		cache:     cache,
		clock:     clock,
		stopFlag:  stopFlag,
		stalemate: stalemateScore,
	}
}

// Nodes returns the number of nodes searched.
func (s *Searcher) Nodes() uint64 {
	return s.nodes.Load()
}

// stopped returns true once the clock has run out or a stop was requested.
func (s *Searcher) stopped() bool {
	if s.stopFlag != nil && s.stopFlag.Load() {
		return true
	}
	return s.clock != nil && s.clock.Expired()
}

// Score returns the value of p for side searched depth plies deep within
// the window [alpha, beta]. Remaining depths of cacheMinDepth and more go
// through the cache.
func (s *Searcher) Score(p board.Position, side board.Side, alpha, beta, depth int) int {
	if depth < cacheMinDepth || s.cache == nil {
		return s.pvs(p, side, alpha, beta, depth)
	}

	sig := Signature{Position: p, Side: side, Depth: depth, Alpha: alpha, Beta: beta}
	return s.cache.LookupOrCompute(sig, func() (int, bool) {
		score := s.pvs(p, side, alpha, beta, depth)
		return score, !s.stopped()
	})
}

// pvs implements negamax with principal-variation search and fail-hard
// cutoffs.
func (s *Searcher) pvs(p board.Position, side board.Side, alpha, beta, depth int) int {
	s.nodes.Add(1)

	if depth == 0 {
		return board.Evaluate(&p, side)
	}

	moves := board.LegalMoves(p, side)
	if len(moves) == 0 {
		if p.InCheck(side) {
			// Shallower mates score better
			return -MateValue - depth
		}
		return s.stalemate
	}

	if depth > 1 {
		orderSuccessors(moves)
	}

	for i := range moves {
		child := moves[i].Position

		var value int
		if i == 0 {
			value = -s.Score(child, side.Other(), -beta, -alpha, depth-1)
		} else {
			// Null window first, full re-search only on an unexpected fail high
			value = -s.Score(child, side.Other(), -alpha-1, -alpha, depth-1)
			if alpha < value && value < beta {
				value = -s.Score(child, side.Other(), -beta, -alpha, depth-1)
			}
		}

		if value >= MateValue {
			return value
		}
		if value >= beta {
			return beta
		}
		if value > alpha {
			alpha = value
		}

		if s.stopped() {
			break
		}
	}

	return alpha
}

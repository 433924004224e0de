// Package engine implements the move search: principal-variation negamax,
// the shared score cache and the iterative-deepening root driver.
package engine

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/hailam/pvschess/internal/board"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// SearchInfo contains information about a completed iteration.
type SearchInfo struct {
	Ply        int
	Score      int
	Best       board.Position
	Nodes      uint64
	Time       time.Duration
	Candidates int
	Cache      CacheStats
}

// Result is the move chosen by the engine.
type Result struct {
	Position board.Position // Successor position to play
	Score    int            // Combined search score and repetition bias
	Ply      int            // Deepest iteration that completed
	Nodes    uint64
	Time     time.Duration
}

// Difficulty represents the AI difficulty level.
type Difficulty int

const (
	Easy   Difficulty = iota // 3 ply, 500ms
	Medium                   // 5 ply, 2s
	Hard                     // 7 ply, 10s
)

// String returns the difficulty name.
func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	default:
		return fmt.Sprintf("difficulty(%d)", int(d))
	}
}

// ParseDifficulty parses a difficulty name.
func ParseDifficulty(s string) (Difficulty, error) {
	switch s {
	case "easy":
		return Easy, nil
	case "medium":
		return Medium, nil
	case "hard":
		return Hard, nil
	}
	return Medium, fmt.Errorf("unknown difficulty %q", s)
}

// difficultySettings maps difficulty to iteration depth and move time.
var difficultySettings = map[Difficulty]struct {
	maxPly   int
	moveTime time.Duration
}{
	Easy:   {maxPly: 3, moveTime: 500 * time.Millisecond},
	Medium: {maxPly: 5, moveTime: 2 * time.Second},
	Hard:   {maxPly: 7, moveTime: 10 * time.Second},
}

// Config holds the engine settings.
type Config struct {
	MaxPly         int           // Deepest root iteration
	MoveTime       time.Duration // Wall-clock budget per move (0 = unlimited)
	Workers        int           // Parallel root tasks
	CacheCapacity  int           // Maximum cached scores
	CacheShards    int           // Independently locked cache shards
	StalemateScore int           // Score of a stalemate for the stalemated side
	Logger         zerolog.Logger
}

// DefaultConfig returns the default engine settings.
func DefaultConfig() Config {
	return Config{
		MaxPly:         7,
		MoveTime:       10 * time.Second,
		Workers:        runtime.NumCPU(),
		CacheCapacity:  1 << 18,
		CacheShards:    16,
		StalemateScore: 0,
		Logger:         zerolog.Nop(),
	}
}

// WithDifficulty returns a copy of c using the difficulty's depth and time.
func (c Config) WithDifficulty(d Difficulty) Config {
	if s, ok := difficultySettings[d]; ok {
		c.MaxPly = s.maxPly
		c.MoveTime = s.moveTime
	}
	return c
}

// normalize clamps settings into usable ranges.
func (c Config) normalize() Config {
	if c.MaxPly < 1 {
		c.MaxPly = 1
	}
	if c.MaxPly > MaxPly {
		c.MaxPly = MaxPly
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.CacheCapacity < 1 {
		c.CacheCapacity = 1
	}
	return c
}

// Engine chooses moves. ChooseMove is not reentrant; one game loop drives
// one engine. The cache is kept between moves.
type Engine struct {
	cfg      Config
	cache    *Cache
	clock    *TimeManager
	stopFlag atomic.Bool
	log      zerolog.Logger

	// Callbacks
	OnInfo func(SearchInfo)
}

// NewEngine creates a new engine with the given settings.
func NewEngine(cfg Config) *Engine {
	cfg = cfg.normalize()
	return &Engine{
		cfg:   cfg,
		cache: NewCache(cfg.CacheCapacity, cfg.CacheShards),
		clock: NewTimeManager(),
		log:   cfg.Logger,
	}
}

// Config returns the engine settings.
func (e *Engine) Config() Config {
	return e.cfg
}

// Cache returns the engine's score cache.
func (e *Engine) Cache() *Cache {
	return e.cache
}

// Stop stops the current search. The move being computed is still
// returned from the deepest completed iteration.
func (e *Engine) Stop() {
	e.stopFlag.Store(true)
}

// Clear drops all cached scores.
func (e *Engine) Clear() {
	e.cache.Clear()
}

// ChooseMove picks the best successor of p for side. history holds the
// previously committed positions of the game and is only read. ok is false
// when side has no legal move; p.InCheck(side) then tells checkmate from
// stalemate.
//
// ChooseMove panics with the error from p.Validate if p cannot be searched
// with side to move: it wraps board.ErrNoKing when a king is missing and
// board.ErrInvalidPosition when the opponent's king is already attacked.
func (e *Engine) ChooseMove(p board.Position, side board.Side, history []board.Position) (Result, bool) {
	return e.ChooseMoveContext(context.Background(), p, side, history)
}

// ChooseMoveContext is ChooseMove stopped early when ctx is done. A search
// cut short still returns the deepest completed iteration.
func (e *Engine) ChooseMoveContext(ctx context.Context, p board.Position, side board.Side, history []board.Position) (res Result, ok bool) {
	if err := p.Validate(side); err != nil {
		panic(fmt.Errorf("cannot search for %s: %w", side, err))
	}

	e.stopFlag.Store(false)
	e.clock.Init(e.cfg.MoveTime)
	fired := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		e.Stop()
		close(fired)
	})
	defer func() {
		// A late stop must not reach the next move
		if !stop() {
			<-fired
		}
	}()
	if ctx.Err() != nil {
		e.Stop()
	}

	moves := board.LegalMoves(p, side)
	if len(moves) == 0 {
		e.log.Debug().Str("side", side.String()).Msg("no legal moves")
		return Result{}, false
	}

	cands := newCandidates(moves, history)
	rankCandidates(cands)
	if len(cands) == 1 {
		e.log.Debug().Str("side", side.String()).Msg("single legal move")
		return Result{Position: cands[0].position, Score: cands[0].score, Time: e.clock.Elapsed()}, true
	}

	searcher := NewSearcher(e.cache, e.clock, &e.stopFlag, e.cfg.StalemateScore)
	scores := make([]int, len(cands))
	completed := 0

	for ply := 1; ply <= e.cfg.MaxPly; ply++ {
		// One task per root candidate, barrier before the next ply
		var g errgroup.Group
		g.SetLimit(e.cfg.Workers)
		for i := range cands {
			i, child := i, cands[i].position
			g.Go(func() error {
				scores[i] = -searcher.Score(child, side.Other(), -Infinity, Infinity, ply-1)
				return nil
			})
		}
		_ = g.Wait()

		// A ply cut short by the clock may be wrong; keep the shallower result
		if ply > 1 && searcher.stopped() {
			e.log.Debug().Int("ply", ply).Dur("elapsed", e.clock.Elapsed()).Msg("iteration abandoned")
			break
		}

		best := -Infinity
		for i := range cands {
			cands[i].score = scores[i] + cands[i].bias
			if cands[i].score > best {
				best = cands[i].score
			}
		}
		rankCandidates(cands)
		completed = ply

		info := SearchInfo{
			Ply:        ply,
			Score:      best,
			Best:       cands[0].position,
			Nodes:      searcher.Nodes(),
			Time:       e.clock.Elapsed(),
			Candidates: len(cands),
			Cache:      e.cache.Stats(),
		}
		e.log.Debug().
			Int("ply", ply).
			Int("best", best).
			Uint64("nodes", info.Nodes).
			Dur("elapsed", info.Time).
			Uint64("cache_hits", info.Cache.Hits).
			Int("cache_entries", info.Cache.Entries).
			Msg("iteration complete")
		if e.OnInfo != nil {
			e.OnInfo(info)
		}

		if best >= MateValue {
			// A forced mate cannot be improved by searching deeper
			break
		}
		if searcher.stopped() {
			break
		}
	}

	res = Result{
		Position: cands[0].position,
		Score:    cands[0].score,
		Ply:      completed,
		Nodes:    searcher.Nodes(),
		Time:     e.clock.Elapsed(),
	}
	e.log.Info().
		Str("side", side.String()).
		Int("score", res.Score).
		Int("ply", res.Ply).
		Uint64("nodes", res.Nodes).
		Dur("elapsed", res.Time).
		Msg("move chosen")
	return res, true
}

// Evaluate returns the static evaluation of a position for side.
func (e *Engine) Evaluate(p board.Position, side board.Side) int {
	return board.Evaluate(&p, side)
}

// Perft counts leaf positions at the given depth (for debugging move
// generation).
func (e *Engine) Perft(p board.Position, side board.Side, depth int) uint64 {
	if depth == 0 {
		return 1
	}

	moves := board.LegalMoves(p, side)
	if depth == 1 {
		return uint64(len(moves))
	}

	var nodes uint64
	for _, m := range moves {
		nodes += e.Perft(m.Position, side.Other(), depth-1)
	}
	return nodes
}

// ScoreToString converts a score to a human-readable string.
func ScoreToString(score int) string {
	if score >= MateValue {
		return "mate"
	}
	if score <= -MateValue {
		return "mated"
	}

	sign := ""
	if score < 0 {
		sign = "-"
		score = -score
	}
	return fmt.Sprintf("%s%d.%02d", sign, score/100, score%100)
}

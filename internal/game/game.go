// Package game drives engine self-play from a start position until
// checkmate, stalemate, threefold repetition or a move limit.
package game

import (
	"context"
	"fmt"
	"time"

	"github.com/hailam/pvschess/internal/board"
	"github.com/hailam/pvschess/internal/engine"
	"github.com/hailam/pvschess/internal/storage"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// Outcome is the state of a game.
type Outcome int

const (
	Ongoing Outcome = iota
	Checkmate
	Stalemate
	Draw // Threefold repetition
	MoveLimit
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case Ongoing:
		return "ongoing"
	case Checkmate:
		return storage.ReasonCheckmate
	case Stalemate:
		return storage.ReasonStalemate
	case Draw:
		return storage.ReasonRepetition
	case MoveLimit:
		return storage.ReasonMoveLimit
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// repetitionLimit is how often a position may already appear in the
// history before the game is drawn.
const repetitionLimit = 3

// Renderer is notified after every committed move.
type Renderer interface {
	Render(p board.Position, m board.Move)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(p board.Position, m board.Move)

// Render calls f.
func (f RendererFunc) Render(p board.Position, m board.Move) { f(p, m) }

// Options configures a game.
type Options struct {
	Start    board.Position
	Side     board.Side // Side to move first
	MaxMoves int        // Plies before the game is abandoned (0 = unlimited)
	Renderer Renderer
	Logger   zerolog.Logger
}

// Game is a self-play game between two sides sharing one engine.
type Game struct {
	eng  *engine.Engine
	opts Options
	log  zerolog.Logger

	pos     board.Position
	side    board.Side
	history []board.Position
	moves   []board.Move
	sans    []string

	outcome  Outcome
	started  time.Time
	duration time.Duration
}

// New creates a game. A zero Start means the standard initial position and
// a zero Side means White.
func New(eng *engine.Engine, opts Options) *Game {
	if opts.Start == (board.Position{}) {
		opts.Start = board.StartPosition
	}
	if opts.Side == board.NoSide {
		opts.Side = board.White
	}
	return &Game{
		eng:  eng,
		opts: opts,
		log:  opts.Logger,
		pos:  opts.Start,
		side: opts.Side,
	}
}

// Position returns the current position.
func (g *Game) Position() board.Position { return g.pos }

// Side returns the side to move.
func (g *Game) Side() board.Side { return g.side }

// History returns the positions committed so far, oldest first.
func (g *Game) History() []board.Position { return g.history }

// Moves returns the moves played so far.
func (g *Game) Moves() []board.Move { return g.moves }

// Outcome returns the game state.
func (g *Game) Outcome() Outcome { return g.outcome }

// Winner returns the side that delivered checkmate, or NoSide.
func (g *Game) Winner() board.Side {
	if g.outcome == Checkmate {
		return g.side.Other()
	}
	return board.NoSide
}

// Step plays one move for the side to move. over reports whether the game
// has ended, in which case no move was committed.
func (g *Game) Step() (outcome Outcome, over bool) {
	return g.step(context.Background())
}

// step is Step with a search that ends early when ctx is done. A move
// found after cancellation is not committed.
func (g *Game) step(ctx context.Context) (Outcome, bool) {
	if g.outcome != Ongoing {
		return g.outcome, true
	}
	if g.started.IsZero() {
		g.started = time.Now()
	}

	res, ok := g.eng.ChooseMoveContext(ctx, g.pos, g.side, g.history)
	if ctx.Err() != nil {
		return g.outcome, false
	}
	if !ok {
		if g.pos.InCheck(g.side) {
			return g.finish(Checkmate), true
		}
		return g.finish(Stalemate), true
	}

	if lo.Count(g.history, g.pos) >= repetitionLimit {
		return g.finish(Draw), true
	}

	m, err := board.DescribeMove(g.pos, res.Position)
	if err != nil {
		// The engine only returns generated successors
		panic(fmt.Errorf("engine move for %s: %w", g.side, err))
	}
	san := board.SAN(g.pos, g.side, m)

	g.history = append(g.history, res.Position)
	g.moves = append(g.moves, m)
	g.sans = append(g.sans, san)
	g.pos = res.Position
	g.side = g.side.Other()
	g.duration = time.Since(g.started)

	g.log.Info().
		Int("ply", len(g.moves)).
		Str("move", m.String()).
		Str("san", san).
		Str("score", engine.ScoreToString(res.Score)).
		Int("depth", res.Ply).
		Dur("elapsed", res.Time).
		Msg("move played")

	if g.opts.Renderer != nil {
		g.opts.Renderer.Render(g.pos, m)
	}
	return Ongoing, false
}

// finish ends the game.
func (g *Game) finish(o Outcome) Outcome {
	g.outcome = o
	if !g.started.IsZero() {
		g.duration = time.Since(g.started)
	}
	g.log.Info().
		Str("outcome", o.String()).
		Int("plies", len(g.moves)).
		Dur("duration", g.duration).
		Msg("game over")
	return o
}

// Play steps until the game ends, the move limit is reached or ctx is
// cancelled. Cancellation stops the engine and leaves the game Ongoing.
func (g *Game) Play(ctx context.Context) Outcome {
	for {
		if ctx.Err() != nil {
			return g.outcome
		}
		if g.opts.MaxMoves > 0 && len(g.moves) >= g.opts.MaxMoves {
			return g.finish(MoveLimit)
		}
		if outcome, over := g.step(ctx); over {
			return outcome
		}
	}
}

// Result returns the game result in PGN notation.
func (g *Game) Result() string {
	switch g.outcome {
	case Checkmate:
		if g.Winner() == board.White {
			return storage.ResultWhiteWins
		}
		return storage.ResultBlackWins
	case Stalemate, Draw:
		return storage.ResultDraw
	default:
		return storage.ResultUnfinished
	}
}

// Record returns the game as a storable record.
func (g *Game) Record() *storage.GameRecord {
	finished := time.Now()
	reason := ""
	if g.outcome != Ongoing {
		reason = g.outcome.String()
	}
	moves := lo.Map(g.moves, func(m board.Move, _ int) string { return m.String() })
	positions := lo.Map(g.history, func(p board.Position, _ int) string { return p.String() })

	return &storage.GameRecord{
		ID:        storage.NewGameID(finished),
		Start:     g.opts.Start.String(),
		Side:      g.opts.Side.String(),
		Moves:     moves,
		SAN:       append([]string(nil), g.sans...),
		Positions: positions,
		Result:    g.Result(),
		Reason:    reason,
		Plies:     len(g.moves),
		Duration:  g.duration,
		Finished:  finished,
	}
}

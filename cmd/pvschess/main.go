// Command pvschess plays the engine against itself from a given position.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/hailam/pvschess/internal/board"
	"github.com/hailam/pvschess/internal/engine"
	"github.com/hailam/pvschess/internal/game"
	"github.com/hailam/pvschess/internal/render"
	"github.com/hailam/pvschess/internal/storage"
	"github.com/pkg/profile"
	"github.com/rs/zerolog"
)

var (
	boardFlag  = flag.String("board", "", "start position as 64 symbols (KQRBNPkqrbnp or space), rank 8 first")
	fenFlag    = flag.String("fen", "", "start position in FEN (castling and en passant fields are ignored)")
	sideFlag   = flag.String("side", "white", "side to move with -board: white or black")
	difficulty = flag.String("difficulty", "", "easy, medium or hard (default from preferences)")
	maxPly     = flag.Int("ply", 0, "deepest search iteration (overrides difficulty)")
	moveTime   = flag.Duration("movetime", 0, "time per move (overrides difficulty)")
	workers    = flag.Int("workers", 0, "parallel root searches (default NumCPU)")
	cacheSize  = flag.Int("cache", 0, "score cache capacity in entries")
	maxMoves   = flag.Int("maxmoves", 400, "plies before the game is abandoned (0 = unlimited)")
	dbDir      = flag.String("db", "", "database directory (default platform data directory)")
	noStore    = flag.Bool("nostore", false, "do not load preferences or record the game")
	pngPath    = flag.String("png", "", "write a PNG snapshot of the final position")
	pngSize    = flag.Int("pngsize", 480, "PNG snapshot size in pixels")
	verbose    = flag.Bool("v", false, "log search iterations")
	cpuprofile = flag.String("cpuprofile", "", "write a cpu profile to this directory")
)

func main() {
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		With().Timestamp().Logger()

	if *cpuprofile != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(*cpuprofile), profile.Quiet).Stop()
		log.Info().Str("dir", *cpuprofile).Msg("CPU profiling enabled")
	}

	if err := run(log); err != nil {
		log.Error().Err(err).Msg("pvschess failed")
		os.Exit(1)
	}
}

func run(log zerolog.Logger) error {
	start, side, err := startPosition()
	if err != nil {
		return err
	}

	var store *storage.Storage
	prefs := storage.DefaultPreferences()
	if !*noStore {
		store, err = openStorage()
		if err != nil {
			return err
		}
		defer store.Close()

		if first, err := store.IsFirstLaunch(); err == nil && first {
			log.Info().Msg("first launch, using default preferences")
			if err := store.MarkFirstLaunchComplete(); err != nil {
				return err
			}
		}
		if prefs, err = store.LoadPreferences(); err != nil {
			return err
		}
	}

	if err := applyFlags(prefs); err != nil {
		return err
	}
	cfg, err := engineConfig(prefs, log)
	if err != nil {
		return err
	}

	log.Info().
		Str("difficulty", prefs.Difficulty).
		Int("max_ply", cfg.MaxPly).
		Dur("move_time", cfg.MoveTime).
		Int("workers", cfg.Workers).
		Int("cache", cfg.CacheCapacity).
		Msg("engine configured")

	eng := engine.NewEngine(cfg)
	g := game.New(eng, game.Options{
		Start:    start,
		Side:     side,
		MaxMoves: *maxMoves,
		Renderer: &render.TerminalRenderer{W: os.Stdout, Log: log},
		Logger:   log,
	})

	fmt.Printf("%s to move\n", side)
	if err := render.Terminal(os.Stdout, start); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	outcome := g.Play(ctx)

	switch outcome {
	case game.Checkmate:
		fmt.Printf("\n** Checkmate ** %s wins\n", g.Winner())
	case game.Stalemate:
		fmt.Println("\n** Stalemate **")
	case game.Draw:
		fmt.Println("\n** Draw **")
	case game.MoveLimit:
		fmt.Printf("\n** Move limit of %d plies reached **\n", *maxMoves)
	default:
		fmt.Println("\n** Interrupted **")
	}
	cs := eng.Cache().Stats()
	log.Debug().
		Int("entries", cs.Entries).
		Uint64("hits", cs.Hits).
		Uint64("evictions", cs.Evictions).
		Float64("hit_rate", eng.Cache().HitRate()).
		Msg("cache")

	if *pngPath != "" {
		var last *board.Move
		if moves := g.Moves(); len(moves) > 0 {
			last = &moves[len(moves)-1]
		}
		if err := render.DefaultTheme().WritePNG(*pngPath, g.Position(), last, *pngSize); err != nil {
			return err
		}
		log.Info().Str("path", *pngPath).Msg("snapshot written")
	}

	if store != nil && outcome != game.Ongoing {
		rec := g.Record()
		if err := store.RecordGame(rec); err != nil {
			return err
		}
		if err := store.SavePreferences(prefs); err != nil {
			return err
		}
		stats, err := store.LoadStats()
		if err != nil {
			return err
		}
		log.Info().
			Str("id", rec.ID).
			Int("games", stats.GamesPlayed).
			Int("white_wins", stats.WhiteWins).
			Int("black_wins", stats.BlackWins).
			Int("draws", stats.Draws).
			Msg("game recorded")
	}

	return nil
}

// startPosition reads the start position from -fen or -board and checks
// that it can be searched.
func startPosition() (board.Position, board.Side, error) {
	p, side, err := parseStart()
	if err != nil {
		return p, side, err
	}
	if err := p.Validate(side); err != nil {
		return p, side, fmt.Errorf("start position: %w", err)
	}
	return p, side, nil
}

func parseStart() (board.Position, board.Side, error) {
	switch {
	case *fenFlag != "" && *boardFlag != "":
		return board.Position{}, board.NoSide, errors.New("-fen and -board are mutually exclusive")
	case *fenFlag != "":
		return board.ParseFEN(*fenFlag)
	}

	side := board.White
	switch *sideFlag {
	case "white", "w":
	case "black", "b":
		side = board.Black
	default:
		return board.Position{}, board.NoSide, fmt.Errorf("unknown side %q", *sideFlag)
	}

	if *boardFlag == "" {
		return board.StartPosition, side, nil
	}
	p, err := board.ParsePosition(*boardFlag)
	return p, side, err
}

// openStorage opens -db or the platform database.
func openStorage() (*storage.Storage, error) {
	if *dbDir != "" {
		return storage.Open(*dbDir)
	}
	return storage.NewStorage()
}

// applyFlags overrides preferences with explicitly set flags.
func applyFlags(prefs *storage.Preferences) error {
	var err error
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "difficulty":
			if _, perr := engine.ParseDifficulty(*difficulty); perr != nil {
				err = perr
				return
			}
			prefs.Difficulty = *difficulty
			// A new preset replaces remembered overrides
			prefs.MaxPly, prefs.MoveTime = 0, 0
		case "ply":
			prefs.MaxPly = *maxPly
		case "movetime":
			prefs.MoveTime = *moveTime
		case "workers":
			prefs.Workers = *workers
		case "cache":
			prefs.CacheCapacity = *cacheSize
		}
	})
	return err
}

// engineConfig builds the engine settings from preferences.
func engineConfig(prefs *storage.Preferences, log zerolog.Logger) (engine.Config, error) {
	d, err := engine.ParseDifficulty(prefs.Difficulty)
	if err != nil {
		return engine.Config{}, err
	}

	cfg := engine.DefaultConfig().WithDifficulty(d)
	cfg.Logger = log
	if prefs.MaxPly > 0 {
		cfg.MaxPly = prefs.MaxPly
	}
	if prefs.MoveTime > 0 {
		cfg.MoveTime = prefs.MoveTime
	}
	cfg.Workers = runtime.NumCPU()
	if prefs.Workers > 0 {
		cfg.Workers = prefs.Workers
	}
	if prefs.CacheCapacity > 0 {
		cfg.CacheCapacity = prefs.CacheCapacity
	}
	return cfg, nil
}

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Storage keys
const (
	keyPreferences = "preferences"
	keyStats       = "stats"
	keyFirstLaunch = "first_launch"
	gamePrefix     = "game/"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("storage: not found")

// Game results in PGN notation
const (
	ResultWhiteWins  = "1-0"
	ResultBlackWins  = "0-1"
	ResultDraw       = "1/2-1/2"
	ResultUnfinished = "*"
)

// Reasons a game ended
const (
	ReasonCheckmate  = "checkmate"
	ReasonStalemate  = "stalemate"
	ReasonRepetition = "repetition"
	ReasonMoveLimit  = "move limit"
)

// Preferences stores engine settings between runs. Zero MaxPly and MoveTime
// mean the difficulty preset decides.
type Preferences struct {
	Difficulty    string        `json:"difficulty"`
	MaxPly        int           `json:"max_ply"`
	MoveTime      time.Duration `json:"move_time"`
	Workers       int           `json:"workers"`
	CacheCapacity int           `json:"cache_capacity"`
	LastPlayed    time.Time     `json:"last_played"`
}

// DefaultPreferences returns default preferences
func DefaultPreferences() *Preferences {
	return &Preferences{
		Difficulty: "medium",
	}
}

// GameStats stores game statistics
type GameStats struct {
	GamesPlayed   int           `json:"games_played"`
	WhiteWins     int           `json:"white_wins"`
	BlackWins     int           `json:"black_wins"`
	Draws         int           `json:"draws"`
	Stalemates    int           `json:"stalemates"`
	MoveLimits    int           `json:"move_limits"`
	TotalPlayTime time.Duration `json:"total_play_time"`
}

// GameRecord is a finished or abandoned self-play game. Start and
// Positions use the 64-symbol board encoding; Moves are in coordinate
// notation and SAN in Standard Algebraic Notation.
type GameRecord struct {
	ID        string        `json:"id"`
	Start     string        `json:"start"`
	Side      string        `json:"side"`
	Moves     []string      `json:"moves"`
	SAN       []string      `json:"san"`
	Positions []string      `json:"positions"`
	Result    string        `json:"result"`
	Reason    string        `json:"reason"`
	Plies     int           `json:"plies"`
	Duration  time.Duration `json:"duration"`
	Finished  time.Time     `json:"finished"`
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db *badger.DB
}

// NewStorage opens the database in the platform data directory.
func NewStorage() (*Storage, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}
	return Open(dbDir)
}

// Open opens or creates a database in dir.
func Open(dir string) (*Storage, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", dir, err)
	}

	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// IsFirstLaunch returns true if this is the first launch
func (s *Storage) IsFirstLaunch() (bool, error) {
	firstLaunch := true

	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(keyFirstLaunch))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		firstLaunch = false
		return nil
	})

	return firstLaunch, err
}

// MarkFirstLaunchComplete marks that first launch setup is complete
func (s *Storage) MarkFirstLaunchComplete() error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyFirstLaunch), []byte("done"))
	})
}

// put JSON-encodes v under key.
func (s *Storage) put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// get decodes the value under key into v. It returns ErrNotFound when the
// key is absent.
func (s *Storage) get(key string, v any) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%s: %w", key, ErrNotFound)
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
}

// SavePreferences saves preferences
func (s *Storage) SavePreferences(prefs *Preferences) error {
	prefs.LastPlayed = time.Now()
	return s.put(keyPreferences, prefs)
}

// LoadPreferences loads preferences, returns defaults if not found
func (s *Storage) LoadPreferences() (*Preferences, error) {
	prefs := DefaultPreferences()
	if err := s.get(keyPreferences, prefs); err != nil && !errors.Is(err, ErrNotFound) {
		return prefs, err
	}
	return prefs, nil
}

// SaveStats saves game statistics
func (s *Storage) SaveStats(stats *GameStats) error {
	return s.put(keyStats, stats)
}

// LoadStats loads game statistics, returns empty stats if not found
func (s *Storage) LoadStats() (*GameStats, error) {
	stats := &GameStats{}
	if err := s.get(keyStats, stats); err != nil && !errors.Is(err, ErrNotFound) {
		return stats, err
	}
	return stats, nil
}

// NewGameID returns a game ID that sorts by finish time.
func NewGameID(finished time.Time) string {
	return fmt.Sprintf("%020d", finished.UnixNano())
}

// SaveGame stores a game record under game/<id>.
func (s *Storage) SaveGame(rec *GameRecord) error {
	if rec.ID == "" {
		return errors.New("storage: game record has no ID")
	}
	return s.put(gamePrefix+rec.ID, rec)
}

// LoadGame loads the game record with the given ID.
func (s *Storage) LoadGame(id string) (*GameRecord, error) {
	rec := &GameRecord{}
	if err := s.get(gamePrefix+id, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// ListGames returns all stored game records, oldest first.
func (s *Storage) ListGames() ([]*GameRecord, error) {
	var games []*GameRecord

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(gamePrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			rec := &GameRecord{}
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, rec)
			})
			if err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			games = append(games, rec)
		}
		return nil
	})

	return games, err
}

// RecordGame stores a finished game and updates statistics
func (s *Storage) RecordGame(rec *GameRecord) error {
	if rec.ID == "" {
		rec.ID = NewGameID(rec.Finished)
	}
	if err := s.SaveGame(rec); err != nil {
		return err
	}

	stats, err := s.LoadStats()
	if err != nil {
		return err
	}

	stats.GamesPlayed++
	stats.TotalPlayTime += rec.Duration

	switch rec.Result {
	case ResultWhiteWins:
		stats.WhiteWins++
	case ResultBlackWins:
		stats.BlackWins++
	case ResultDraw:
		stats.Draws++
	}
	switch rec.Reason {
	case ReasonStalemate:
		stats.Stalemates++
	case ReasonMoveLimit:
		stats.MoveLimits++
	}

	return s.SaveStats(stats)
}

// DrawRate returns the share of games drawn as a percentage (0-100)
func (s *GameStats) DrawRate() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.Draws) / float64(s.GamesPlayed) * 100
}

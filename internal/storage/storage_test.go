package storage

import (
	"errors"
	"os"
	"runtime"
	"testing"
	"time"
)

func openTest(t *testing.T) *Storage {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPreferences(t *testing.T) {
	s := openTest(t)

	t.Run("Defaults", func(t *testing.T) {
		prefs, err := s.LoadPreferences()
		if err != nil {
			t.Fatalf("LoadPreferences failed: %v", err)
		}
		if prefs.Difficulty != "medium" {
			t.Errorf("Expected medium difficulty, got %q", prefs.Difficulty)
		}
	})

	t.Run("RoundTrip", func(t *testing.T) {
		prefs := &Preferences{
			Difficulty:    "hard",
			MaxPly:        6,
			MoveTime:      3 * time.Second,
			Workers:       2,
			CacheCapacity: 4096,
		}
		if err := s.SavePreferences(prefs); err != nil {
			t.Fatalf("SavePreferences failed: %v", err)
		}

		got, err := s.LoadPreferences()
		if err != nil {
			t.Fatalf("LoadPreferences failed: %v", err)
		}
		if got.Difficulty != "hard" || got.MaxPly != 6 || got.MoveTime != 3*time.Second ||
			got.Workers != 2 || got.CacheCapacity != 4096 {
			t.Errorf("Loaded %+v, saved %+v", got, prefs)
		}
		if got.LastPlayed.IsZero() {
			t.Error("LastPlayed was not set")
		}
	})
}

func TestFirstLaunch(t *testing.T) {
	s := openTest(t)

	first, err := s.IsFirstLaunch()
	if err != nil || !first {
		t.Fatalf("IsFirstLaunch = %v, %v, want true", first, err)
	}
	if err := s.MarkFirstLaunchComplete(); err != nil {
		t.Fatalf("MarkFirstLaunchComplete failed: %v", err)
	}
	if first, _ = s.IsFirstLaunch(); first {
		t.Error("Still first launch after marking complete")
	}
}

func TestRecordGame(t *testing.T) {
	s := openTest(t)
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	games := []*GameRecord{
		{Result: ResultWhiteWins, Reason: ReasonCheckmate, Duration: time.Second, Finished: base},
		{Result: ResultDraw, Reason: ReasonStalemate, Duration: 2 * time.Second, Finished: base.Add(time.Minute)},
		{Result: ResultUnfinished, Reason: ReasonMoveLimit, Duration: 3 * time.Second, Finished: base.Add(2 * time.Minute)},
		{Result: ResultBlackWins, Reason: ReasonCheckmate, Moves: []string{"f7f6"}, Plies: 1, Finished: base.Add(3 * time.Minute)},
	}
	for _, g := range games {
		if err := s.RecordGame(g); err != nil {
			t.Fatalf("RecordGame failed: %v", err)
		}
	}

	stats, err := s.LoadStats()
	if err != nil {
		t.Fatalf("LoadStats failed: %v", err)
	}
	want := GameStats{
		GamesPlayed:   4,
		WhiteWins:     1,
		BlackWins:     1,
		Draws:         1,
		Stalemates:    1,
		MoveLimits:    1,
		TotalPlayTime: 6 * time.Second,
	}
	if *stats != want {
		t.Errorf("Stats = %+v, want %+v", *stats, want)
	}
	if rate := stats.DrawRate(); rate != 25 {
		t.Errorf("DrawRate = %v, want 25", rate)
	}

	list, err := s.ListGames()
	if err != nil {
		t.Fatalf("ListGames failed: %v", err)
	}
	if len(list) != len(games) {
		t.Fatalf("ListGames returned %d games, want %d", len(list), len(games))
	}
	for i := range list {
		if list[i].ID != games[i].ID {
			t.Errorf("Game %d: ID %s, want %s", i, list[i].ID, games[i].ID)
		}
	}

	got, err := s.LoadGame(games[3].ID)
	if err != nil {
		t.Fatalf("LoadGame failed: %v", err)
	}
	if got.Result != ResultBlackWins || len(got.Moves) != 1 || got.Moves[0] != "f7f6" {
		t.Errorf("LoadGame = %+v", got)
	}
}

func TestLoadGameNotFound(t *testing.T) {
	s := openTest(t)
	if _, err := s.LoadGame("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if err := s.SaveGame(&GameRecord{}); err == nil {
		t.Error("Expected error saving a record without ID")
	}
}

func TestDataPaths(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_DATA_HOME only applies on Linux")
	}
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	dbDir, err := GetDatabaseDir()
	if err != nil {
		t.Fatalf("GetDatabaseDir failed: %v", err)
	}
	if _, err := os.Stat(dbDir); os.IsNotExist(err) {
		t.Errorf("Database directory was not created: %s", dbDir)
	}
}

package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hailam/shogiplay/internal/board"
	"github.com/hailam/shogiplay/internal/game"
)

func openTemp(t *testing.T) *Storage {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to open storage: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testRecord(id, black, white, winner string, started time.Time) *game.Record {
	return &game.Record{
		ID:        id,
		Black:     black,
		White:     white,
		StartSFEN: board.StartSFEN,
		Moves:     []string{"7g7f", "3c3d"},
		KIF:       []string{"７六歩(77)", "３四歩(33)"},
		Winner:    winner,
		Reason:    game.ReasonResign,
		Started:   started,
		Finished:  started.Add(3 * time.Second),
	}
}

func TestStorage(t *testing.T) {
	t.Run("DefaultPreferences", func(t *testing.T) {
		prefs := DefaultPreferences()
		if prefs.Username != "Player" {
			t.Errorf("Expected username 'Player', got '%s'", prefs.Username)
		}
		if prefs.Difficulty != "medium" {
			t.Errorf("Expected medium difficulty, got %q", prefs.Difficulty)
		}
		if prefs.PlayerColor != game.WinnerBlack {
			t.Errorf("Expected to play black, got %q", prefs.PlayerColor)
		}
	})

	t.Run("NewAgentStats", func(t *testing.T) {
		stats := NewAgentStats("x")
		if stats.GamesPlayed != 0 {
			t.Errorf("Expected 0 games played")
		}
		if stats.GetWinRate() != 0 {
			t.Errorf("Expected 0 win rate")
		}
	})

	t.Run("WinRate", func(t *testing.T) {
		stats := &AgentStats{
			GamesPlayed: 10,
			Wins:        5,
			Losses:      3,
			Draws:       2,
		}
		rate := stats.GetWinRate()
		if rate != 50 {
			t.Errorf("Expected 50%% win rate, got %.2f%%", rate)
		}
	})
}

func TestPreferencesRoundTrip(t *testing.T) {
	s := openTemp(t)

	prefs, err := s.LoadPreferences()
	if err != nil {
		t.Fatalf("LoadPreferences: %v", err)
	}
	if prefs.Username != "Player" {
		t.Errorf("missing preferences should load defaults, got %+v", prefs)
	}

	prefs.Username = "habu"
	prefs.Difficulty = "hard"
	if err := s.SavePreferences(prefs); err != nil {
		t.Fatalf("SavePreferences: %v", err)
	}
	got, err := s.LoadPreferences()
	if err != nil {
		t.Fatalf("LoadPreferences: %v", err)
	}
	if got.Username != "habu" || got.Difficulty != "hard" {
		t.Errorf("got %+v", got)
	}
}

func TestSaveGameUpdatesStats(t *testing.T) {
	s := openTemp(t)
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	games := []*game.Record{
		testRecord("c", "engine", "random", game.WinnerBlack, t0.Add(2*time.Minute)),
		testRecord("a", "random", "engine", game.WinnerWhite, t0),
		testRecord("b", "engine", "random", game.WinnerNone, t0.Add(time.Minute)),
	}
	for _, rec := range games {
		if err := s.SaveGame(rec); err != nil {
			t.Fatalf("SaveGame(%s): %v", rec.ID, err)
		}
	}

	if err := s.SaveGame(games[0]); err == nil {
		t.Error("saving the same game twice should fail")
	}
	if err := s.SaveGame(&game.Record{}); err == nil {
		t.Error("saving a record without id should fail")
	}

	eng, err := s.LoadStats("engine")
	if err != nil {
		t.Fatalf("LoadStats: %v", err)
	}
	if eng.GamesPlayed != 3 || eng.Wins != 2 || eng.Draws != 1 || eng.Losses != 0 {
		t.Errorf("engine stats = %+v", eng)
	}
	if eng.WinsByReason[string(game.ReasonResign)] != 2 {
		t.Errorf("wins by reason = %v", eng.WinsByReason)
	}
	if eng.TotalPlayTime != 9*time.Second || eng.TotalMoves != 6 {
		t.Errorf("totals = %v, %d moves", eng.TotalPlayTime, eng.TotalMoves)
	}

	rnd, err := s.LoadStats("random")
	if err != nil {
		t.Fatalf("LoadStats: %v", err)
	}
	if rnd.Losses != 2 || rnd.Draws != 1 || rnd.GetWinRate() != 0 {
		t.Errorf("random stats = %+v", rnd)
	}

	all, err := s.AllStats()
	if err != nil {
		t.Fatalf("AllStats: %v", err)
	}
	if len(all) != 2 || all[0].Name != "engine" || all[1].Name != "random" {
		t.Errorf("AllStats returned %d entries", len(all))
	}

	list, err := s.ListGames()
	if err != nil {
		t.Fatalf("ListGames: %v", err)
	}
	if len(list) != 3 || list[0].ID != "a" || list[1].ID != "b" || list[2].ID != "c" {
		t.Errorf("ListGames order wrong: %d games", len(list))
	}

	rec, err := s.LoadGame("c")
	if err != nil {
		t.Fatalf("LoadGame: %v", err)
	}
	if rec.WinnerName() != "engine" || len(rec.Moves) != 2 || !rec.Started.Equal(games[0].Started) {
		t.Errorf("LoadGame = %+v", rec)
	}
	if _, err := s.LoadGame("missing"); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("err = %v, want ErrGameNotFound", err)
	}
}

func TestStatsSurviveReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.SaveGame(testRecord("g1", "a", "b", game.WinnerBlack, time.Now())); err != nil {
		t.Fatalf("SaveGame: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s, err = Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	stats, err := s.LoadStats("a")
	if err != nil {
		t.Fatalf("LoadStats: %v", err)
	}
	if stats.Wins != 1 || stats.CurrentStreak != 1 || stats.LongestWinStrk != 1 {
		t.Errorf("stats after reopen = %+v", stats)
	}
}

func TestDataPaths(t *testing.T) {
	t.Setenv(HomeEnv, "")
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	// Test that GetDataDir returns a valid path
	dataDir, err := GetDataDir()
	if err != nil {
		t.Fatalf("GetDataDir failed: %v", err)
	}
	if dataDir == "" {
		t.Error("GetDataDir returned empty path")
	}

	// Verify directory exists
	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		t.Errorf("Data directory was not created: %s", dataDir)
	}

	t.Logf("Data directory: %s", dataDir)

	custom := t.TempDir()
	dbDir, err := ResolveDatabaseDir(custom)
	if err != nil {
		t.Fatalf("ResolveDatabaseDir failed: %v", err)
	}
	if dbDir != filepath.Join(custom, "db") {
		t.Errorf("ResolveDatabaseDir = %s", dbDir)
	}
}

func TestHomeOverride(t *testing.T) {
	home := filepath.Join(t.TempDir(), "custom")
	t.Setenv(HomeEnv, home)

	dbDir, err := GetDatabaseDir()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(home, "db"); dbDir != want {
		t.Errorf("GetDatabaseDir = %s, want %s", dbDir, want)
	}
	if _, err := os.Stat(dbDir); err != nil {
		t.Errorf("database directory not created: %v", err)
	}
}

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/hailam/shogiplay/internal/game"
)

// Storage keys
const (
	keyPreferences = "preferences"
	prefixGame     = "game/"
	prefixStats    = "stats/"
)

// ErrGameNotFound is returned by LoadGame for an unknown id.
var ErrGameNotFound = errors.New("game not found")

// UserPreferences stores console game settings
type UserPreferences struct {
	Username    string    `json:"username"`
	Difficulty  string    `json:"difficulty"`   // easy, medium or hard
	PlayerColor string    `json:"player_color"` // black or white
	Evaluator   string    `json:"evaluator"`
	LastPlayed  time.Time `json:"last_played"`
}

// DefaultPreferences returns default user preferences
func DefaultPreferences() *UserPreferences {
	return &UserPreferences{
		Username:    "Player",
		Difficulty:  "medium",
		PlayerColor: game.WinnerBlack,
		Evaluator:   "positional",
		LastPlayed:  time.Now(),
	}
}

// AgentStats stores the results of one agent across all recorded games
type AgentStats struct {
	Name           string         `json:"name"`
	GamesPlayed    int            `json:"games_played"`
	Wins           int            `json:"wins"`
	Losses         int            `json:"losses"`
	Draws          int            `json:"draws"`
	WinsByReason   map[string]int `json:"wins_by_reason"`
	TotalPlayTime  time.Duration  `json:"total_play_time"`
	TotalMoves     int            `json:"total_moves"`
	LongestWinStrk int            `json:"longest_win_streak"`
	CurrentStreak  int            `json:"current_streak"`
}

// NewAgentStats returns empty statistics for an agent
func NewAgentStats(name string) *AgentStats {
	return &AgentStats{
		Name:         name,
		WinsByReason: make(map[string]int),
	}
}

// GetWinRate returns the win rate as a percentage (0-100)
func (s *AgentStats) GetWinRate() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.GamesPlayed) * 100
}

// record folds one finished game into the statistics.
func (s *AgentStats) record(rec *game.Record) {
	s.GamesPlayed++
	s.TotalPlayTime += rec.Duration()
	s.TotalMoves += len(rec.Moves)

	switch rec.WinnerName() {
	case "":
		s.Draws++
		s.CurrentStreak = 0
	case s.Name:
		s.Wins++
		s.CurrentStreak++
		if s.CurrentStreak > s.LongestWinStrk {
			s.LongestWinStrk = s.CurrentStreak
		}
		s.WinsByReason[string(rec.Reason)]++
	default:
		s.Losses++
		s.CurrentStreak = 0
	}
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db *badger.DB
}

// NewStorage opens the database in the platform data directory
func NewStorage() (*Storage, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}
	return Open(dbDir)
}

// Open opens or creates the database in dir
func Open(dir string) (*Storage, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dir, err)
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

// SavePreferences saves user preferences
func (s *Storage) SavePreferences(prefs *UserPreferences) error {
	prefs.LastPlayed = time.Now()

	data, err := json.Marshal(prefs)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPreferences), data)
	})
}

// LoadPreferences loads user preferences, returns defaults if not found
func (s *Storage) LoadPreferences() (*UserPreferences, error) {
	prefs := DefaultPreferences()

	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, keyPreferences, prefs)
	})

	return prefs, err
}

// SaveGame stores a finished game and updates both players' statistics in
// one transaction. Saving the same game id twice is rejected.
func (s *Storage) SaveGame(rec *game.Record) error {
	if rec.ID == "" {
		return errors.New("game record has no id")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		key := []byte(prefixGame + rec.ID)
		if _, err := txn.Get(key); err == nil {
			return fmt.Errorf("game %s already stored", rec.ID)
		} else if err != badger.ErrKeyNotFound {
			return err
		}
		if err := txn.Set(key, data); err != nil {
			return err
		}

		names := []string{rec.Black}
		if rec.White != rec.Black {
			names = append(names, rec.White)
		}
		for _, name := range names {
			stats := NewAgentStats(name)
			if err := getJSON(txn, prefixStats+name, stats); err != nil {
				return err
			}
			stats.record(rec)
			if err := setJSON(txn, prefixStats+name, stats); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadGame loads a stored game by id
func (s *Storage) LoadGame(id string) (*game.Record, error) {
	var rec *game.Record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(prefixGame + id))
		if err == badger.ErrKeyNotFound {
			return fmt.Errorf("%w: %s", ErrGameNotFound, id)
		}
		if err != nil {
			return err
		}
		rec = new(game.Record)
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, rec)
		})
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ListGames returns every stored game ordered by start time
func (s *Storage) ListGames() ([]*game.Record, error) {
	var recs []*game.Record
	err := s.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, prefixGame, func(val []byte) error {
			rec := new(game.Record)
			if err := json.Unmarshal(val, rec); err != nil {
				return err
			}
			recs = append(recs, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sortByStart(recs)
	return recs, nil
}

// LoadStats loads an agent's statistics, returns empty stats if not found
func (s *Storage) LoadStats(name string) (*AgentStats, error) {
	stats := NewAgentStats(name)

	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, prefixStats+name, stats)
	})

	return stats, err
}

// AllStats returns the statistics of every agent, ordered by name
func (s *Storage) AllStats() ([]*AgentStats, error) {
	var all []*AgentStats
	err := s.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, prefixStats, func(val []byte) error {
			stats := NewAgentStats("")
			if err := json.Unmarshal(val, stats); err != nil {
				return err
			}
			all = append(all, stats)
			return nil
		})
	})
	return all, err
}

// getJSON decodes the value at key into v, leaving v untouched if the key
// does not exist.
func getJSON(txn *badger.Txn, key string, v any) error {
	item, err := txn.Get([]byte(key))
	if err == badger.ErrKeyNotFound {
		return nil
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

func setJSON(txn *badger.Txn, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set([]byte(key), data)
}

// scanPrefix calls fn with the value of every key starting with prefix, in
// key order.
func scanPrefix(txn *badger.Txn, prefix string, fn func(val []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
		if err := it.Item().Value(fn); err != nil {
			return err
		}
	}
	return nil
}

func sortByStart(recs []*game.Record) {
	slices.SortStableFunc(recs, func(a, b *game.Record) int {
		return a.Started.Compare(b.Started)
	})
}

// Package config loads the JSON match configuration.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hailam/shogiplay/internal/board"
)

// FileName is the configuration file looked up by FindConfigPath.
const FileName = "shogiplay.json"

// ErrConfigNotFound is returned when no configuration file exists in the
// working directory or any of its parents.
var ErrConfigNotFound = errors.New("config not found")

// Agent kinds.
const (
	KindSearch = "search"
	KindRandom = "random"
	KindGreedy = "greedy"
	KindHuman  = "human"
)

// Agent configures one player.
type Agent struct {
	Kind      string `json:"kind"`
	Name      string `json:"name,omitempty"`
	Evaluator string `json:"evaluator,omitempty"` // material or positional
	Depth     int    `json:"depth,omitempty"`
	MoveTime  int    `json:"move_time_ms,omitempty"`
}

// DisplayName returns Name, or a name derived from the kind when Name is
// empty ("search-d3", "random", ...).
func (a Agent) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	if a.Kind == KindSearch {
		return fmt.Sprintf("search-d%d", a.Depth)
	}
	return a.Kind
}

// MoveTimeDuration returns MoveTime as a duration.
func (a Agent) MoveTimeDuration() time.Duration {
	return time.Duration(a.MoveTime) * time.Millisecond
}

// Config describes a match between two agents.
type Config struct {
	Games          int      `json:"games"`
	Parallelism    int      `json:"parallelism"`
	MaxMoves       int      `json:"max_moves"`
	StartPositions []string `json:"start_positions,omitempty"`
	First          Agent    `json:"first"`
	Second         Agent    `json:"second"`
	DataDir        string   `json:"data_dir,omitempty"`
	ParquetPath    string   `json:"parquet,omitempty"`
}

// Default returns a small search-versus-random match.
func Default() Config {
	return Config{
		Games:       2,
		Parallelism: 2,
		MaxMoves:    256,
		First:       Agent{Kind: KindSearch, Evaluator: "positional", Depth: 3, MoveTime: 2000},
		Second:      Agent{Kind: KindRandom},
	}
}

// FindConfigPath walks up from the working directory looking for FileName.
// It returns the file path and the directory containing it.
func FindConfigPath() (string, string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", "", err
	}
	for dir := cwd; ; dir = filepath.Dir(dir) {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return path, dir, nil
		}
		if filepath.Dir(dir) == dir {
			break
		}
	}
	return "", "", fmt.Errorf("%w: %s from %s", ErrConfigNotFound, FileName, cwd)
}

// LoadConfig reads a configuration file. Fields missing from the file keep
// their Default values.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks ranges, agent kinds and start positions.
func (c Config) Validate() error {
	if c.Games < 1 {
		return fmt.Errorf("games must be at least 1, got %d", c.Games)
	}
	if c.Parallelism < 1 {
		return fmt.Errorf("parallelism must be at least 1, got %d", c.Parallelism)
	}
	if c.MaxMoves < 1 {
		return fmt.Errorf("max_moves must be at least 1, got %d", c.MaxMoves)
	}
	for _, a := range []Agent{c.First, c.Second} {
		if err := a.Validate(); err != nil {
			return err
		}
	}
	if c.First.DisplayName() == c.Second.DisplayName() {
		return fmt.Errorf("both agents are named %q; set a distinct name", c.First.DisplayName())
	}
	for _, sfen := range c.StartPositions {
		if _, err := board.ParseSFEN(sfen); err != nil {
			return fmt.Errorf("start position: %w", err)
		}
	}
	return nil
}

// Validate checks a single agent entry.
func (a Agent) Validate() error {
	switch a.Kind {
	case KindSearch:
		if a.Depth < 1 {
			return fmt.Errorf("search agent depth must be at least 1, got %d", a.Depth)
		}
	case KindRandom, KindGreedy, KindHuman:
	default:
		return fmt.Errorf("unknown agent kind %q", a.Kind)
	}
	switch a.Evaluator {
	case "", "material", "positional":
	default:
		return fmt.Errorf("unknown evaluator %q", a.Evaluator)
	}
	if a.MoveTime < 0 {
		return fmt.Errorf("move_time_ms must not be negative, got %d", a.MoveTime)
	}
	return nil
}

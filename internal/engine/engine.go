package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hailam/shogiplay/internal/board"
)

// Difficulty represents the AI difficulty level.
type Difficulty int

const (
	Easy   Difficulty = iota // 2 ply, 500ms
	Medium                   // 3 ply, 2s
	Hard                     // 5 ply, 5s
)

// DifficultySettings maps difficulty to search limits.
var DifficultySettings = map[Difficulty]SearchLimits{
	Easy:   {Depth: 2, MoveTime: 500 * time.Millisecond},
	Medium: {Depth: 3, MoveTime: 2 * time.Second},
	Hard:   {Depth: 5, MoveTime: 5 * time.Second},
}

// String returns the lowercase difficulty name.
func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	default:
		return "difficulty(" + strconv.Itoa(int(d)) + ")"
	}
}

// ParseDifficulty parses "easy", "medium" or "hard".
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(s) {
	case "easy":
		return Easy, nil
	case "medium", "":
		return Medium, nil
	case "hard":
		return Hard, nil
	}
	return Medium, fmt.Errorf("unknown difficulty %q", s)
}

// Engine is the shogi AI engine.
type Engine struct {
	searcher   *Searcher
	eval       Evaluator
	difficulty Difficulty

	// Callbacks
	OnInfo func(SearchInfo)
}

// NewEngine creates an engine using eval for leaves and move ordering.
// A nil eval selects the PositionalEvaluator.
func NewEngine(eval Evaluator) *Engine {
	if eval == nil {
		eval = PositionalEvaluator{}
	}
	return &Engine{
		searcher:   NewSearcher(eval),
		eval:       eval,
		difficulty: Medium,
	}
}

// SetDifficulty sets the engine difficulty.
func (e *Engine) SetDifficulty(d Difficulty) {
	e.difficulty = d
}

// Difficulty returns the current difficulty.
func (e *Engine) Difficulty() Difficulty {
	return e.difficulty
}

// Search finds the best move for the given position using the difficulty's limits.
func (e *Engine) Search(ctx context.Context, pos *board.Position) (Result, error) {
	return e.SearchWithLimits(ctx, pos, DifficultySettings[e.difficulty])
}

// SearchWithLimits finds the best move with specific search limits.
func (e *Engine) SearchWithLimits(ctx context.Context, pos *board.Position, limits SearchLimits) (Result, error) {
	e.searcher.OnIteration = e.OnInfo
	return e.searcher.Search(ctx, pos, limits)
}

// Stop stops the current search.
func (e *Engine) Stop() {
	e.searcher.Stop()
}

// Perft performs a perft test (for debugging move generation).
func (e *Engine) Perft(pos *board.Position, depth int) uint64 {
	return pos.Perft(depth)
}

// Evaluate returns the static evaluation of a position.
func (e *Engine) Evaluate(pos *board.Position) int {
	return e.eval.Evaluate(pos)
}

// ScoreToString converts a score to a human-readable string.
func ScoreToString(score int) string {
	if IsDecisive(score) {
		moves := (WinScore - abs(score) + 1) / 2
		if score > 0 {
			return "Win in " + strconv.Itoa(moves)
		}
		return "Loss in " + strconv.Itoa(moves)
	}

	// Convert centipawns to pawns
	sign := ""
	if score < 0 {
		sign = "-"
		score = -score
	}
	return fmt.Sprintf("%s%d.%02d", sign, score/100, score%100)
}

package agent

import (
	"context"
	"fmt"

	"github.com/hailam/shogiplay/internal/board"
	"github.com/hailam/shogiplay/internal/engine"
)

// Search plays the engine's best move within fixed limits.
type Search struct {
	name   string
	engine *engine.Engine
	limits engine.SearchLimits
}

// NewSearch creates a search agent. A nil eval selects the engine default.
func NewSearch(name string, eval engine.Evaluator, limits engine.SearchLimits) *Search {
	if name == "" {
		name = fmt.Sprintf("search-d%d", limits.Depth)
	}
	return &Search{
		name:   name,
		engine: engine.NewEngine(eval),
		limits: limits,
	}
}

// Name implements Agent.
func (a *Search) Name() string { return a.name }

// Engine exposes the underlying engine, e.g. to attach an info callback.
func (a *Search) Engine() *engine.Engine { return a.engine }

// ChooseMove implements Agent.
func (a *Search) ChooseMove(ctx context.Context, pos *board.Position) (board.Move, error) {
	res, err := a.engine.SearchWithLimits(ctx, pos, a.limits)
	if err != nil {
		return board.NoMove, fmt.Errorf("%s: %w", a.name, err)
	}
	return res.Move, nil
}

package agent

import (
	"context"

	"lukechampine.com/frand"

	"github.com/hailam/shogiplay/internal/board"
	"github.com/hailam/shogiplay/internal/engine"
)

// Random plays a uniformly random legal move. Label names the agent in game
// records; the empty label reads "random".
type Random struct {
	Label string
}

// Name implements Agent.
func (r Random) Name() string {
	if r.Label == "" {
		return "random"
	}
	return r.Label
}

// ChooseMove implements Agent.
func (Random) ChooseMove(_ context.Context, pos *board.Position) (board.Move, error) {
	moves := pos.GenerateLegalMoves()
	if moves.Len() == 0 {
		return board.NoMove, engine.ErrNoLegalMoves
	}
	return moves.Get(frand.Intn(moves.Len())), nil
}

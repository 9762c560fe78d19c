package agent

import (
	"context"

	"lukechampine.com/frand"

	"github.com/hailam/shogiplay/internal/board"
	"github.com/hailam/shogiplay/internal/engine"
)

// Greedy plays the move with the best static evaluation one ply ahead,
// breaking ties at random.
type Greedy struct {
	name string
	eval engine.Evaluator
}

// NewGreedy creates a greedy agent. A nil eval selects MaterialEvaluator and
// an empty name reads "greedy".
func NewGreedy(name string, eval engine.Evaluator) *Greedy {
	if name == "" {
		name = "greedy"
	}
	if eval == nil {
		eval = engine.MaterialEvaluator{}
	}
	return &Greedy{name: name, eval: eval}
}

// Name implements Agent.
func (g *Greedy) Name() string { return g.name }

// ChooseMove implements Agent. Moves are tried on a clone so pos is never
// touched.
func (g *Greedy) ChooseMove(ctx context.Context, pos *board.Position) (board.Move, error) {
	moves := pos.GenerateLegalMoves()
	if moves.Len() == 0 {
		return board.NoMove, engine.ErrNoLegalMoves
	}

	scratch := pos.Clone()
	best := -engine.Infinity
	var candidates []board.Move
	for _, m := range moves.Slice() {
		if err := ctx.Err(); err != nil {
			return board.NoMove, err
		}
		scratch.MakeMove(m)
		score := -g.eval.Evaluate(scratch)
		scratch.UnmakeMove(m)

		switch {
		case score > best:
			best = score
			candidates = append(candidates[:0], m)
		case score == best:
			candidates = append(candidates, m)
		}
	}
	return candidates[frand.Intn(len(candidates))], nil
}

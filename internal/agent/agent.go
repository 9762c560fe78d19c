// Package agent provides the move-choosing players used by the game
// controller: engine search, random, one-ply greedy and human input.
package agent

import (
	"context"
	"errors"

	"github.com/hailam/shogiplay/internal/board"
)

// ErrResign is returned by an agent that gives up the game.
var ErrResign = errors.New("resigned")

// Agent chooses a move for the side to move. Implementations must return a
// legal move and leave pos unchanged.
type Agent interface {
	Name() string
	ChooseMove(ctx context.Context, pos *board.Position) (board.Move, error)
}

package engine

import (
	"github.com/hailam/shogiplay/internal/board"
)

// PVMoveScore places the principal-variation move ahead of every
// evaluator score.
const PVMoveScore = 1 << 30

// MoveOrderer ranks moves for the search: the move from the previous
// principal variation first, then the evaluator's move scores.
type MoveOrderer struct {
	eval Evaluator
}

// NewMoveOrderer creates a move orderer backed by eval's move scores.
func NewMoveOrderer(eval Evaluator) *MoveOrderer {
	return &MoveOrderer{eval: eval}
}

// ScoreMoves fills scores with one ordering score per move. pvMove may be
// NoMove.
func (mo *MoveOrderer) ScoreMoves(pos *board.Position, moves *board.MoveList, pvMove board.Move, scores []int) {
	list := moves.Slice()
	scores = scores[:len(list)]
	mo.eval.EvaluateMoves(pos, list, scores)

	if pvMove == board.NoMove {
		return
	}
	for i, m := range list {
		if m == pvMove {
			scores[i] = PVMoveScore
			break
		}
	}
}

// SortMoves sorts moves by their scores (descending).
func SortMoves(moves *board.MoveList, scores []int) {
	for i := 0; i < moves.Len()-1; i++ {
		PickMove(moves, scores, i)
	}
}

// PickMove selects the best remaining move and moves it to position index.
// This allows lazy move sorting (only sort as much as needed).
func PickMove(moves *board.MoveList, scores []int, index int) {
	best := index
	for j := index + 1; j < moves.Len(); j++ {
		if scores[j] > scores[best] {
			best = j
		}
	}
	if best != index {
		moves.Swap(index, best)
		scores[index], scores[best] = scores[best], scores[index]
	}
}

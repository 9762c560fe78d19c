package engine

import (
	"fmt"

	"github.com/hailam/shogiplay/internal/board"
	"golang.org/x/exp/constraints"
)

// WinScore is the score of a won position for the side to move.
const WinScore = 32000

// maxEval bounds static evaluations so they never look like a forced result.
const maxEval = WinScore - MaxPly - 1

// Evaluator scores positions and candidate moves from the point of view of
// the side to move. Implementations must not modify the position.
type Evaluator interface {
	// Evaluate returns the static score of pos.
	Evaluate(pos *board.Position) int

	// EvaluateMoves writes one ordering score per move into scores, which has
	// the same length as moves. Higher scores are searched first.
	EvaluateMoves(pos *board.Position, moves []board.Move, scores []int)
}

// EvaluatorByName returns the evaluator for a configuration name. The empty
// name selects the positional evaluator.
func EvaluatorByName(name string) (Evaluator, error) {
	switch name {
	case "", "positional":
		return PositionalEvaluator{}, nil
	case "material":
		return MaterialEvaluator{}, nil
	}
	return nil, fmt.Errorf("unknown evaluator %q", name)
}

// terminalScore scores a finished game at distance ply from the root. Faster
// wins score higher.
func terminalScore(r board.Result, ply int) int {
	if r.Outcome != board.Checkmate {
		return 0
	}
	// The side to move is the one that has been mated.
	return -WinScore + ply
}

func abs[T constraints.Signed](x T) T {
	if x < 0 {
		return -x
	}
	return x
}

func clamp[T constraints.Ordered](x, lo, hi T) T {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// MaterialEvaluator counts material on the board and in hand. Hand pieces
// are worth more than the same piece on the board.
type MaterialEvaluator struct{}

// materialValues[type][promoted]
var materialValues = [board.NumPieceTypes][2]int{
	board.King:   {0, 0},
	board.Gold:   {600, 600},
	board.Silver: {500, 600},
	board.Knight: {200, 600},
	board.Lance:  {400, 600},
	board.Bishop: {1000, 2000},
	board.Rook:   {1500, 2000},
	board.Pawn:   {100, 600},
}

const (
	handBonus    = 200
	checkPenalty = 200
)

func pieceValue(table *[board.NumPieceTypes][2]int, pc board.Piece) int {
	if pc.IsPromoted() {
		return table[pc.Type()][1]
	}
	return table[pc.Type()][0]
}

// Evaluate implements Evaluator.
func (MaterialEvaluator) Evaluate(pos *board.Position) int {
	if r := pos.Result(); r.IsOver() {
		return terminalScore(r, 0)
	}

	us := pos.SideToMove
	score := 0
	for sq := board.Square(0); sq < board.NoSquare; sq++ {
		pc := pos.PieceAt(sq)
		if pc == board.NoPiece {
			continue
		}
		if pc.Color() == us {
			score += pieceValue(&materialValues, pc)
		} else {
			score -= pieceValue(&materialValues, pc)
		}
	}
	for _, pt := range board.HandTypes {
		v := materialValues[pt][0] + handBonus
		score += v * (pos.HandCount(us, pt) - pos.HandCount(us.Other(), pt))
	}

	if pos.IsInCheck(us) {
		score -= checkPenalty
	}
	return clamp(score, -maxEval, maxEval)
}

// EvaluateMoves puts captures first, most valuable victim first, then
// promotions.
func (MaterialEvaluator) EvaluateMoves(pos *board.Position, moves []board.Move, scores []int) {
	for i, m := range moves {
		s := 0
		if m.IsCapture() {
			s += 1000 + pieceValue(&materialValues, m.Captured())
		}
		if m.IsPromotion() {
			pt := m.Piece().Type()
			s += materialValues[pt][1] - materialValues[pt][0]
		}
		scores[i] = s
	}
}

// PositionalEvaluator adds pawn advancement, king shelter and slider
// mobility to a material count.
type PositionalEvaluator struct{}

// positionalValues[type][promoted], in pawn units.
var positionalValues = [board.NumPieceTypes][2]int{
	board.King:   {0, 0},
	board.Gold:   {6, 6},
	board.Silver: {5, 6},
	board.Knight: {3, 6},
	board.Lance:  {4, 6},
	board.Bishop: {10, 16},
	board.Rook:   {12, 16},
	board.Pawn:   {1, 6},
}

// pawnAdvance is indexed by the pawn's rank relative to its owner.
var pawnAdvance = [board.NumRanks]int{0, 3, 3, 3, 2, 1, 0, 0, 0}

const (
	boardScale   = 100
	handScale    = 120
	kingOpenness = 3
)

// Evaluate implements Evaluator.
func (PositionalEvaluator) Evaluate(pos *board.Position) int {
	if r := pos.Result(); r.IsOver() {
		return terminalScore(r, 0)
	}

	us := pos.SideToMove
	score := sideScore(pos, us) - sideScore(pos, us.Other())
	return clamp(score, -maxEval, maxEval)
}

func sideScore(pos *board.Position, c board.Color) int {
	score := 0
	for pt := board.Gold; pt < board.NoPieceType; pt++ {
		for _, promoted := range []bool{false, true} {
			bb := pos.Pieces(c, pt, promoted)
			n := bb.PopCount()
			if n == 0 {
				continue
			}
			score += n * boardScale * positionalValues[pt][boolIndex(promoted)]

			if pt == board.Pawn && !promoted {
				for !bb.IsEmpty() {
					score += pawnAdvance[bb.PopLSB().RelativeRank(c)]
				}
			}
		}
	}

	for _, pt := range board.HandTypes {
		score += pos.HandCount(c, pt) * handScale * positionalValues[pt][0]
	}

	// A king with fewer open neighbours is better sheltered.
	if ksq := pos.KingSquare[c]; ksq != board.NoSquare {
		open := pos.AttacksFrom(ksq)
		own := pos.Occupied(c)
		score -= (open.PopCount() - open.And(own).PopCount()) * kingOpenness
	}

	for _, pt := range []board.PieceType{board.Bishop, board.Rook} {
		seen := board.Empty
		for _, promoted := range []bool{false, true} {
			bb := pos.Pieces(c, pt, promoted)
			for !bb.IsEmpty() {
				seen = seen.Or(pos.SlideAttacks(bb.PopLSB()))
			}
		}
		score += seen.PopCount()
	}
	return score
}

// EvaluateMoves orders captures by victim value less attacker value, then
// promotions.
func (PositionalEvaluator) EvaluateMoves(pos *board.Position, moves []board.Move, scores []int) {
	for i, m := range moves {
		s := 0
		if m.IsCapture() {
			s += 10*pieceValue(&positionalValues, m.Captured()) - pieceValue(&positionalValues, m.Piece()) + 100
		}
		if m.IsPromotion() {
			pt := m.Piece().Type()
			s += positionalValues[pt][1] - positionalValues[pt][0]
		}
		scores[i] = s
	}
}

func boolIndex(b bool) int {
	if b {
		return 1
	}
	return 0
}

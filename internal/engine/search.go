package engine

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hailam/shogiplay/internal/board"
)

// Search constants
const (
	Infinity = WinScore + 1
	MaxPly   = 64
)

var (
	// ErrSearchTimeout unwinds an iteration that ran out of time, was
	// stopped, or hit its node limit.
	ErrSearchTimeout = errors.New("search time limit reached")

	// ErrNoLegalMoves is returned when searching a finished position.
	ErrNoLegalMoves = errors.New("no legal moves")
)

// SearchLimits specifies constraints on the search.
type SearchLimits struct {
	Depth    int           // Maximum depth (0 = MaxPly-1)
	Nodes    uint64        // Maximum nodes (0 = no limit)
	MoveTime time.Duration // Time for this move (0 = no limit)
}

// SearchInfo describes one completed iteration.
type SearchInfo struct {
	Depth int
	Score int
	Nodes uint64
	Time  time.Duration
	PV    []board.Move
}

// Result is the outcome of a search call. Depth is the deepest completed
// iteration; it is 0 when no iteration completed and Move is the fallback.
type Result struct {
	Move    board.Move
	Score   int
	Depth   int
	Nodes   uint64
	Elapsed time.Duration
	PV      []board.Move
}

// PVTable stores the principal variation. Row ply holds the best line found
// from that ply, in moves[ply][ply:length[ply]].
type PVTable struct {
	length [MaxPly + 1]int
	moves  [MaxPly + 1][MaxPly + 1]board.Move
}

// update makes m followed by the child row the best line at ply.
func (t *PVTable) update(ply int, m board.Move) {
	t.moves[ply][ply] = m
	for j := ply + 1; j < t.length[ply+1]; j++ {
		t.moves[ply][j] = t.moves[ply+1][j]
	}
	t.length[ply] = t.length[ply+1]
}

// Line returns a copy of the root line.
func (t *PVTable) Line() []board.Move {
	pv := make([]board.Move, t.length[0])
	copy(pv, t.moves[0][:t.length[0]])
	return pv
}

// Searcher performs iterative-deepening negamax with alpha-beta pruning on
// its own copy of the position.
type Searcher struct {
	eval    Evaluator
	orderer *MoveOrderer

	pos   *board.Position
	nodes uint64
	pv    PVTable

	// prevPV is the line of the last completed iteration; followPV is set
	// while the current iteration is still walking it.
	prevPV   []board.Move
	followPV bool

	deadline time.Time
	maxNodes uint64
	stopFlag atomic.Bool

	// Per-ply buffers keep the recursion allocation-free.
	lists  [MaxPly]board.MoveList
	scores [MaxPly][board.MaxMoves]int

	// OnIteration is called after every completed iteration.
	OnIteration func(SearchInfo)
}

// NewSearcher creates a searcher that scores leaves and orders moves with eval.
func NewSearcher(eval Evaluator) *Searcher {
	return &Searcher{
		eval:    eval,
		orderer: NewMoveOrderer(eval),
	}
}

// Stop signals the running search to stop. The last completed iteration
// is still returned.
func (s *Searcher) Stop() {
	s.stopFlag.Store(true)
}

// Nodes returns the number of nodes visited by the last search.
func (s *Searcher) Nodes() uint64 {
	return s.nodes
}

// Search runs iterative deepening from depth 1 up to limits.Depth and returns
// the result of the deepest iteration that finished. The caller's position
// is not modified.
func (s *Searcher) Search(ctx context.Context, pos *board.Position, limits SearchLimits) (Result, error) {
	start := time.Now()
	s.pos = pos.Clone()
	s.nodes = 0
	s.prevPV = nil
	s.stopFlag.Store(false)
	s.maxNodes = limits.Nodes
	s.deadline = time.Time{}
	if limits.MoveTime > 0 {
		s.deadline = start.Add(limits.MoveTime)
	}

	root := s.pos.GenerateLegalMoves()
	if root.Len() == 0 {
		return Result{}, ErrNoLegalMoves
	}

	maxDepth := MaxPly - 1
	if limits.Depth > 0 && limits.Depth < maxDepth {
		maxDepth = limits.Depth
	}

	// Used only if depth 1 never completes.
	result := Result{Move: root.Get(0)}

	for depth := 1; depth <= maxDepth; depth++ {
		s.followPV = true
		score, err := s.negamax(ctx, depth, 0, -Infinity, Infinity)
		if err != nil {
			if errors.Is(err, ErrSearchTimeout) || errors.Is(err, context.Canceled) ||
				errors.Is(err, context.DeadlineExceeded) {
				log.Debug().Int("depth", depth).Err(err).Msg("iteration-abandoned")
				break
			}
			return result, err
		}

		s.prevPV = s.pv.Line()
		result.Move = s.prevPV[0]
		result.Score = score
		result.Depth = depth
		result.PV = s.prevPV

		elapsed := time.Since(start)
		log.Debug().
			Int("depth", depth).
			Int("score", score).
			Uint64("nodes", s.nodes).
			Dur("elapsed", elapsed).
			Str("pv", lineString(s.prevPV)).
			Msg("iteration-complete")
		if s.OnIteration != nil {
			s.OnIteration(SearchInfo{
				Depth: depth,
				Score: score,
				Nodes: s.nodes,
				Time:  elapsed,
				PV:    s.prevPV,
			})
		}

		if IsDecisive(score) {
			break
		}
		// A deeper iteration will not finish in the remaining time.
		if limits.MoveTime > 0 && elapsed > limits.MoveTime/2 {
			break
		}
	}

	result.Nodes = s.nodes
	result.Elapsed = time.Since(start)
	log.Info().
		Str("move", result.Move.String()).
		Int("depth", result.Depth).
		Int("score", result.Score).
		Uint64("nodes", result.Nodes).
		Dur("elapsed", result.Elapsed).
		Msg("search-complete")
	return result, nil
}

// checkLimits is polled on every node entry.
func (s *Searcher) checkLimits(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.stopFlag.Load() {
		return ErrSearchTimeout
	}
	if s.maxNodes > 0 && s.nodes >= s.maxNodes {
		return ErrSearchTimeout
	}
	if !s.deadline.IsZero() && time.Now().After(s.deadline) {
		return ErrSearchTimeout
	}
	return nil
}

// negamax returns the score of the position for the side to move. An error
// means the iteration must be abandoned; the position is restored first.
func (s *Searcher) negamax(ctx context.Context, depth, ply, alpha, beta int) (int, error) {
	if err := s.checkLimits(ctx); err != nil {
		return 0, err
	}
	s.nodes++
	s.pv.length[ply] = ply

	// A leaf ends the previous line; siblings searched later must not
	// pick up its moves.
	if r := s.pos.Result(); r.IsOver() {
		s.followPV = false
		return terminalScore(r, ply), nil
	}
	if depth == 0 {
		s.followPV = false
		return s.eval.Evaluate(s.pos), nil
	}

	moves := &s.lists[ply]
	s.pos.LegalMovesInto(moves)
	if moves.Len() == 0 {
		return 0, nil
	}

	scores := s.scores[ply][:moves.Len()]
	s.orderer.ScoreMoves(s.pos, moves, s.pvMove(ply, moves), scores)

	best := -Infinity
	for i := 0; i < moves.Len(); i++ {
		PickMove(moves, scores, i)
		m := moves.Get(i)

		s.pos.MakeMove(m)
		v, err := s.negamax(ctx, depth-1, ply+1, -beta, -alpha)
		s.pos.UnmakeMove(m)
		if err != nil {
			return 0, err
		}

		v = -v
		if v > best {
			best = v
			s.pv.update(ply, m)
			if v > alpha {
				alpha = v
			}
		}
		if alpha >= beta {
			break
		}
	}
	return best, nil
}

// pvMove returns the previous iteration's move at ply while the search is
// still on that line. Leaving the line turns following off for the rest of
// the iteration.
func (s *Searcher) pvMove(ply int, moves *board.MoveList) board.Move {
	if !s.followPV {
		return board.NoMove
	}
	s.followPV = false
	if ply < len(s.prevPV) && moves.Contains(s.prevPV[ply]) {
		s.followPV = true
		return s.prevPV[ply]
	}
	return board.NoMove
}

// IsDecisive reports whether a score is a forced win or loss.
func IsDecisive(score int) bool {
	return abs(score) >= WinScore-MaxPly
}

func lineString(pv []board.Move) string {
	parts := make([]string, len(pv))
	for i, m := range pv {
		parts[i] = m.String()
	}
	return strings.Join(parts, " ")
}

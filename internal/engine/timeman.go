package engine

import (
	"time"

	"github.com/hailam/shogiplay/internal/board"
)

// TimeControl contains the USI "go" parameters.
type TimeControl struct {
	Time     [2]time.Duration // btime, wtime (remaining time for each color)
	Inc      [2]time.Duration // binc, winc (increment per move)
	Byoyomi  time.Duration    // fixed extra time granted every move
	MoveTime time.Duration    // fixed time per move (overrides other time controls)
	Depth    int              // maximum search depth
	Nodes    uint64           // maximum nodes to search
	Infinite bool             // search until stopped
}

// TimeManager turns a time control into a single soft deadline.
type TimeManager struct {
	moveTime time.Duration
}

// NewTimeManager creates a new time manager.
func NewTimeManager() *TimeManager {
	return &TimeManager{}
}

// Init allocates time for the move about to be searched.
// moveNumber is the position's 1-based move number.
func (tm *TimeManager) Init(tc TimeControl, us board.Color, moveNumber int) {
	// Fixed move time mode
	if tc.MoveTime > 0 {
		tm.moveTime = tc.MoveTime
		return
	}

	// Infinite or depth-limited mode
	if tc.Infinite || (tc.Time[us] == 0 && tc.Byoyomi == 0 && tc.Inc[us] == 0) {
		tm.moveTime = 0
		return
	}

	timeLeft := tc.Time[us]

	// Sudden death: expect fewer moves to go as the game gets longer.
	mtg := clamp(60-moveNumber/4, 10, 60)
	budget := timeLeft/time.Duration(mtg) + tc.Inc[us]*9/10

	// Never plan to use more than 80% of the bank.
	budget = min(budget, timeLeft*8/10)

	// Byoyomi is granted on every move; keep a margin for transport.
	budget += tc.Byoyomi * 9 / 10

	tm.moveTime = max(budget, 10*time.Millisecond)
}

// MoveTime returns the allocated time, 0 for no limit.
func (tm *TimeManager) MoveTime() time.Duration {
	return tm.moveTime
}

// Limits combines the allocation with the depth and node limits of tc.
func (tm *TimeManager) Limits(tc TimeControl) SearchLimits {
	return SearchLimits{
		Depth:    tc.Depth,
		Nodes:    tc.Nodes,
		MoveTime: tm.moveTime,
	}
}

package board

import "testing"

const mateInThreeSFEN = "7nl/7k1/6Ppp/9/9/9/+p+p+p6/2+p6/K1+p6 b GG 1"

func mustParse(t *testing.T, sfen string) *Position {
	t.Helper()
	pos, err := ParseSFEN(sfen)
	if err != nil {
		t.Fatalf("Failed to parse SFEN %q: %v", sfen, err)
	}
	return pos
}

func TestCheckmateDetection(t *testing.T) {
	tests := []struct {
		name    string
		sfen    string
		outcome Outcome
		winner  Color
		inCheck bool
	}{
		{
			name:    "gold mate protected by lance",
			sfen:    "8k/8G/8L/9/9/9/9/9/4K4 w - 1",
			outcome: Checkmate,
			winner:  Black,
			inCheck: true,
		},
		{
			name:    "king boxed in without check",
			sfen:    "8k/9/6NG1/9/9/9/9/9/4K4 w - 1",
			outcome: Stalemate,
			winner:  NoColor,
		},
		{
			name:    "starting position",
			sfen:    StartSFEN,
			outcome: Ongoing,
			winner:  NoColor,
		},
		{
			name:    "mate in three before the first move",
			sfen:    mateInThreeSFEN,
			outcome: Ongoing,
			winner:  NoColor,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos := mustParse(t, tc.sfen)

			if got := pos.IsInCheck(pos.SideToMove); got != tc.inCheck {
				t.Errorf("IsInCheck = %v, want %v", got, tc.inCheck)
			}
			r := pos.Result()
			if r.Outcome != tc.outcome {
				t.Errorf("Outcome = %v, want %v", r.Outcome, tc.outcome)
			}
			if r.Winner != tc.winner {
				t.Errorf("Winner = %v, want %v", r.Winner, tc.winner)
			}
			if pos.IsGameOver() != (tc.outcome != Ongoing) {
				t.Errorf("IsGameOver = %v for outcome %v", pos.IsGameOver(), tc.outcome)
			}
			if tc.outcome != Ongoing && pos.GenerateLegalMoves().Len() != 0 {
				t.Errorf("terminal position has %d legal moves", pos.GenerateLegalMoves().Len())
			}
		})
	}
}

func TestDropPawnMateIsIllegal(t *testing.T) {
	pos := mustParse(t, "7nk/7p1/7G1/9/9/9/9/9/4K4 b P 1")

	drop := NewDrop(Black, Pawn, NewSquare(0, 1))
	if pos.IsLegal(drop) {
		t.Errorf("P*1b delivers mate and must be illegal")
	}
	if _, err := ParseMove("P*1b", pos); err == nil {
		t.Errorf("ParseMove accepted P*1b")
	}

	// Other pawn drops remain available.
	if !pos.IsLegal(NewDrop(Black, Pawn, NewSquare(4, 4))) {
		t.Errorf("P*5e should be legal")
	}
}

func TestDropPawnCheckWithEscapeIsLegal(t *testing.T) {
	// Without the supporting gold the king simply takes the pawn.
	pos := mustParse(t, "7nk/7p1/9/9/9/9/9/9/4K4 b P 1")

	m, err := ParseMove("P*1b", pos)
	if err != nil {
		t.Fatalf("P*1b should be legal: %v", err)
	}
	pos.MakeMove(m)
	if !pos.IsInCheck(White) {
		t.Errorf("P*1b should give check")
	}
	if pos.IsGameOver() {
		t.Errorf("White should be able to capture the pawn")
	}
	if _, err := ParseMove("1a1b", pos); err != nil {
		t.Errorf("1a1b should be legal: %v", err)
	}
}

func TestDropGoldMateIsLegal(t *testing.T) {
	pos := mustParse(t, "7nk/7p1/7G1/9/9/9/9/9/4K4 b G 1")

	m, err := ParseMove("G*1b", pos)
	if err != nil {
		t.Fatalf("G*1b should be legal: %v", err)
	}
	pos.MakeMove(m)

	r := pos.Result()
	if r.Outcome != Checkmate || r.Winner != Black {
		t.Errorf("after G*1b got %v winner %v, want checkmate by black", r.Outcome, r.Winner)
	}
	if pos.Winner() != Black {
		t.Errorf("Winner() = %v, want black", pos.Winner())
	}
}

func TestResultCacheFollowsMoves(t *testing.T) {
	pos := mustParse(t, "7nk/7p1/7G1/9/9/9/9/9/4K4 b G 1")
	if pos.IsGameOver() {
		t.Fatalf("position should be ongoing")
	}

	m, err := ParseMove("G*1b", pos)
	if err != nil {
		t.Fatalf("ParseMove: %v", err)
	}
	pos.MakeMove(m)
	if !pos.IsGameOver() {
		t.Errorf("cached result not invalidated by MakeMove")
	}
	pos.UnmakeMove(m)
	if pos.IsGameOver() {
		t.Errorf("cached result not invalidated by UnmakeMove")
	}
	if !pos.IsLegal(m) {
		t.Errorf("legal-move cache stale after UnmakeMove")
	}
}

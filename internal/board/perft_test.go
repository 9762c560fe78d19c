package board

import "testing"

// perft counts the number of leaf nodes at the given depth.
// This is the standard way to verify move generation correctness.
func perft(p *Position, depth int) int64 {
	if depth == 0 {
		return 1
	}

	moves := p.GenerateLegalMoves()
	if depth == 1 {
		return int64(moves.Len())
	}

	var nodes int64
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		p.MakeMove(m)
		nodes += perft(p, depth-1)
		p.UnmakeMove(m)
	}
	return nodes
}

const midgameSFEN = "ln5bl/1r2gkg2/4psnp1/p1pps1p1p/1p3p3/P1P1S1P1P/1PSPP1N2/2G2G3/LNK4RL b BPp 49"

// TestPerftStartingPosition tests move generation from the starting position.
func TestPerftStartingPosition(t *testing.T) {
	pos := NewPosition()

	tests := []struct {
		depth    int
		expected int64
	}{
		{1, 30},
		{2, 900},
		{3, 25470},
	}
	if !testing.Short() {
		tests = append(tests, struct {
			depth    int
			expected int64
		}{4, 719731})
	}

	for _, tc := range tests {
		t.Run("", func(t *testing.T) {
			got := perft(pos, tc.depth)
			if got != tc.expected {
				t.Errorf("perft(%d) = %d, want %d", tc.depth, got, tc.expected)
			}
			if fast := pos.Perft(tc.depth); int64(fast) != got {
				t.Errorf("Position.Perft(%d) = %d, helper says %d", tc.depth, fast, got)
			}
		})
	}

	if pos.SFEN() != StartSFEN {
		t.Errorf("position not restored after perft: %s", pos.SFEN())
	}
}

func TestPerftDivideSumsToPerft(t *testing.T) {
	pos, err := ParseSFEN(midgameSFEN)
	if err != nil {
		t.Fatalf("Failed to parse SFEN: %v", err)
	}

	var sum uint64
	for _, e := range pos.PerftDivide(2) {
		sum += e.Nodes
	}
	if want := pos.Perft(2); sum != want {
		t.Errorf("divide sum = %d, perft = %d", sum, want)
	}
}

// TestMakeUnmakeRoundTrip checks that every legal move restores the exact
// position when undone, two plies deep.
func TestMakeUnmakeRoundTrip(t *testing.T) {
	for _, sfen := range []string{StartSFEN, midgameSFEN, mateInThreeSFEN} {
		pos, err := ParseSFEN(sfen)
		if err != nil {
			t.Fatalf("Failed to parse SFEN %q: %v", sfen, err)
		}
		before := pos.Clone()

		moves := pos.GenerateLegalMoves()
		for i := 0; i < moves.Len(); i++ {
			m := moves.Get(i)
			pos.MakeMove(m)
			if err := pos.Validate(); err != nil {
				t.Fatalf("%s after %s: %v", sfen, m, err)
			}
			if pos.SideToMove == before.SideToMove {
				t.Fatalf("side to move did not change after %s", m)
			}

			replies := pos.GenerateLegalMoves()
			mid := pos.Clone()
			for j := 0; j < replies.Len(); j++ {
				r := replies.Get(j)
				pos.MakeMove(r)
				pos.UnmakeMove(r)
				if !pos.Equal(mid) {
					t.Fatalf("%s: %s %s not restored", sfen, m, r)
				}
			}

			pos.UnmakeMove(m)
			if !pos.Equal(before) {
				t.Fatalf("%s: %s not restored\ngot  %s\nwant %s", sfen, m, pos.SFEN(), before.SFEN())
			}
		}
	}
}

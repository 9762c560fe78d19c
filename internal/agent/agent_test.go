package agent

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/hailam/shogiplay/internal/board"
	"github.com/hailam/shogiplay/internal/config"
	"github.com/hailam/shogiplay/internal/engine"
)

func mustParse(t *testing.T, sfen string) *board.Position {
	t.Helper()
	pos, err := board.ParseSFEN(sfen)
	if err != nil {
		t.Fatalf("Failed to parse SFEN %q: %v", sfen, err)
	}
	return pos
}

func TestAgentsReturnLegalMoves(t *testing.T) {
	agents := []Agent{
		Random{},
		NewGreedy("", nil),
		NewSearch("", engine.MaterialEvaluator{}, engine.SearchLimits{Depth: 2}),
	}

	for _, a := range agents {
		t.Run(a.Name(), func(t *testing.T) {
			pos := board.NewPosition()
			for ply := 0; ply < 6; ply++ {
				before := pos.SFEN()
				m, err := a.ChooseMove(context.Background(), pos)
				if err != nil {
					t.Fatalf("ply %d: %v", ply, err)
				}
				if pos.SFEN() != before {
					t.Fatalf("agent modified the position")
				}
				if !pos.IsLegal(m) {
					t.Fatalf("ply %d: illegal move %s", ply, m)
				}
				pos.MakeMove(m)
			}
		})
	}
}

func TestAgentsOnFinishedPosition(t *testing.T) {
	pos := mustParse(t, "8k/8G/8L/9/9/9/9/9/4K4 w - 1")
	for _, a := range []Agent{Random{}, NewGreedy("", nil)} {
		if _, err := a.ChooseMove(context.Background(), pos); !errors.Is(err, engine.ErrNoLegalMoves) {
			t.Errorf("%s: err = %v, want ErrNoLegalMoves", a.Name(), err)
		}
	}
	search := NewSearch("mated", nil, engine.SearchLimits{Depth: 1})
	if _, err := search.ChooseMove(context.Background(), pos); !errors.Is(err, engine.ErrNoLegalMoves) {
		t.Errorf("search: err = %v, want ErrNoLegalMoves", err)
	}
}

func TestGreedyTakesHangingRook(t *testing.T) {
	pos := mustParse(t, "4k4/9/9/9/4r4/4S4/9/9/4K4 b - 1")
	for i := 0; i < 5; i++ {
		m, err := NewGreedy("", engine.MaterialEvaluator{}).ChooseMove(context.Background(), pos)
		if err != nil {
			t.Fatalf("ChooseMove: %v", err)
		}
		if m.String() != "5f5e" {
			t.Errorf("greedy played %s, want 5f5e", m)
		}
	}
}

func TestHuman(t *testing.T) {
	pos := board.NewPosition()

	var out bytes.Buffer
	h := NewHuman("", strings.NewReader("\nbogus\n7g7e\nmoves\n7g7f\n"), &out)
	m, err := h.ChooseMove(context.Background(), pos)
	if err != nil {
		t.Fatalf("ChooseMove: %v", err)
	}
	if m.String() != "7g7f" {
		t.Errorf("got %s, want 7g7f", m)
	}
	if n := strings.Count(out.String(), "illegal move"); n != 2 {
		t.Errorf("expected 2 illegal-move prompts, got %d:\n%s", n, out.String())
	}
	if !strings.Contains(out.String(), "2g2f") {
		t.Errorf("\"moves\" should list legal moves:\n%s", out.String())
	}

	h = NewHuman("", strings.NewReader("resign\n"), io.Discard)
	if _, err := h.ChooseMove(context.Background(), pos); !errors.Is(err, ErrResign) {
		t.Errorf("err = %v, want ErrResign", err)
	}

	h = NewHuman("", strings.NewReader(""), io.Discard)
	if _, err := h.ChooseMove(context.Background(), pos); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("err = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestHumanCancelWhileWaiting(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	h := NewHuman("", r, io.Discard)
	done := make(chan error, 1)
	go func() {
		_, err := h.ChooseMove(ctx, board.NewPosition())
		done <- err
	}()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("ChooseMove did not return after cancel")
	}
}

func TestFromConfig(t *testing.T) {
	tests := []struct {
		cfg  config.Agent
		name string
	}{
		{config.Agent{Kind: config.KindSearch, Depth: 2, Name: "deep"}, "deep"},
		{config.Agent{Kind: config.KindRandom}, "random"},
		{config.Agent{Kind: config.KindGreedy, Evaluator: "material"}, "greedy"},
		{config.Agent{Kind: config.KindHuman, Name: "alice"}, "alice"},
		{config.Agent{Kind: config.KindSearch, Depth: 3}, "search-d3"},
		{config.Agent{Kind: config.KindRandom, Name: "random-b"}, "random-b"},
		{config.Agent{Kind: config.KindGreedy, Name: "greedy-positional"}, "greedy-positional"},
	}
	for _, tc := range tests {
		a, err := FromConfig(tc.cfg, strings.NewReader(""), io.Discard)
		if err != nil {
			t.Fatalf("FromConfig(%+v): %v", tc.cfg, err)
		}
		if a.Name() != tc.name {
			t.Errorf("Name() = %q, want %q", a.Name(), tc.name)
		}
	}

	if _, err := FromConfig(config.Agent{Kind: "oracle"}, nil, nil); err == nil {
		t.Error("FromConfig should reject unknown kinds")
	}
	if _, err := engine.EvaluatorByName("nnue"); err == nil {
		t.Error("EvaluatorByName should reject unknown names")
	}
}

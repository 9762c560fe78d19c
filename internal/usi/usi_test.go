package usi

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/hailam/shogiplay/internal/board"
	"github.com/hailam/shogiplay/internal/engine"
)

const mateInThreeSFEN = "7nl/7k1/6Ppp/9/9/9/+p+p+p6/2+p6/K1+p6 b GG 1"

func run(t *testing.T, script string) string {
	t.Helper()
	var out bytes.Buffer
	u := New(engine.NewEngine(nil), &out)
	if err := u.Run(context.Background(), strings.NewReader(script)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return out.String()
}

func TestHandshake(t *testing.T) {
	out := run(t, "usi\nisready\nquit\nisready\n")
	if !strings.Contains(out, "id name ShogiPlay") || !strings.Contains(out, "usiok") {
		t.Errorf("missing usi handshake:\n%s", out)
	}
	if strings.Count(out, "readyok") != 1 {
		t.Errorf("commands after quit must be ignored:\n%s", out)
	}
}

func TestPositionAndDisplay(t *testing.T) {
	out := run(t, "position startpos moves 7g7f 3c3d\nd\n")
	want := "lnsgkgsnl/1r5b1/pppppp1pp/6p2/9/2P6/PP1PPPPPP/1B5R1/LNSGKGSNL b - 3"
	if !strings.Contains(out, want) {
		t.Errorf("display lacks %s:\n%s", want, out)
	}

	out = run(t, "position sfen "+mateInThreeSFEN+" moves G*3b\nd\n")
	if !strings.Contains(out, "Side to move: White") {
		t.Errorf("sfen position not applied:\n%s", out)
	}
}

func TestPositionErrorsKeepPrevious(t *testing.T) {
	out := run(t, "position startpos moves 7g7f\nposition startpos moves 7g7e\nposition sfen bogus\nd\n")
	if strings.Count(out, "info string") != 2 {
		t.Errorf("expected two errors:\n%s", out)
	}
	if !strings.Contains(out, "SFEN: lnsgkgsnl/1r5b1/ppppppppp/9/9/2P6/PP1PPPPPP/1B5R1/LNSGKGSNL w - 2") {
		t.Errorf("previous position was not kept:\n%s", out)
	}
}

func TestGoFindsMate(t *testing.T) {
	out := run(t, "position sfen "+mateInThreeSFEN+"\ngo depth 3\n")
	if !strings.Contains(out, "score mate 3") {
		t.Errorf("no mate score:\n%s", out)
	}
	if strings.Count(out, "bestmove ") != 1 {
		t.Fatalf("expected one bestmove:\n%s", out)
	}

	pos, _ := board.ParseSFEN(mateInThreeSFEN)
	line := out[strings.Index(out, "bestmove "):]
	move := strings.TrimSpace(strings.TrimPrefix(strings.SplitN(line, "\n", 2)[0], "bestmove "))
	if _, err := board.ParseMove(move, pos); err != nil {
		t.Errorf("bestmove %q is not legal: %v", move, err)
	}
}

func TestGoOnMatedPositionResigns(t *testing.T) {
	out := run(t, "position sfen 8k/8G/8L/9/9/9/9/9/4K4 w - 1\ngo depth 2\n")
	if !strings.Contains(out, "bestmove resign") {
		t.Errorf("expected resignation:\n%s", out)
	}
}

func TestStopInfinite(t *testing.T) {
	var out bytes.Buffer
	u := New(engine.NewEngine(nil), &out)

	start := time.Now()
	if err := u.Run(context.Background(), strings.NewReader("position startpos\ngo infinite\nstop\nquit\n")); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.Count(out.String(), "bestmove ") != 1 {
		t.Errorf("expected one bestmove:\n%s", out.String())
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Errorf("stop took %v", elapsed)
	}
}

func TestPerft(t *testing.T) {
	out := run(t, "perft 2\n")
	if !strings.Contains(out, "Nodes: 900") {
		t.Errorf("perft 2 from the start:\n%s", out)
	}
}

func TestSetOption(t *testing.T) {
	out := run(t, "setoption name Evaluator value material\nsetoption name Evaluator value nnue\nsetoption name Hash value 16\n")
	if strings.Count(out, "info string") != 2 {
		t.Errorf("expected two option errors:\n%s", out)
	}
}

func TestDebugOptionStopsSearch(t *testing.T) {
	defer func() { board.DebugMoveValidation = false }()

	var out bytes.Buffer
	u := New(engine.NewEngine(nil), &out)
	// No quit: end of input waits for the search, so only the option can end it.
	script := "position startpos\ngo infinite\nsetoption name Debug value true\nisready\n"

	done := make(chan error, 1)
	go func() { done <- u.Run(context.Background(), strings.NewReader(script)) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(30 * time.Second):
		t.Fatal("setoption Debug did not stop the running search")
	}

	got := out.String()
	best, ready := strings.Index(got, "bestmove "), strings.Index(got, "readyok")
	if best < 0 || ready < best {
		t.Errorf("bestmove should precede readyok:\n%s", got)
	}
	if !board.DebugMoveValidation {
		t.Error("Debug option not applied")
	}
}

func TestParseGoOptions(t *testing.T) {
	tc := parseGoOptions(strings.Fields("btime 60000 wtime 30000 binc 1000 winc 2000 byoyomi 10000 depth 7 nodes 5000"))
	if tc.Time[board.Black] != time.Minute || tc.Time[board.White] != 30*time.Second {
		t.Errorf("times = %v", tc.Time)
	}
	if tc.Inc[board.Black] != time.Second || tc.Inc[board.White] != 2*time.Second {
		t.Errorf("increments = %v", tc.Inc)
	}
	if tc.Byoyomi != 10*time.Second || tc.Depth != 7 || tc.Nodes != 5000 || tc.Infinite {
		t.Errorf("tc = %+v", tc)
	}

	tc = parseGoOptions(strings.Fields("movetime 250"))
	if tc.MoveTime != 250*time.Millisecond {
		t.Errorf("movetime = %v", tc.MoveTime)
	}
	if !parseGoOptions([]string{"infinite"}).Infinite {
		t.Error("infinite not parsed")
	}
}

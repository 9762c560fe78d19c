// Package usi implements the Universal Shogi Interface protocol loop.
package usi

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hailam/shogiplay/internal/board"
	"github.com/hailam/shogiplay/internal/engine"
)

// USI implements the Universal Shogi Interface protocol.
type USI struct {
	engine   *engine.Engine
	position *board.Position
	timeMgr  *engine.TimeManager
	out      io.Writer
	outMu    sync.Mutex

	// Search state
	cancel     context.CancelFunc
	searchDone chan struct{}
}

// New creates a USI protocol handler writing responses to out.
func New(eng *engine.Engine, out io.Writer) *USI {
	u := &USI{
		position: board.NewPosition(),
		timeMgr:  engine.NewTimeManager(),
		out:      out,
	}
	u.setEngine(eng)
	return u
}

func (u *USI) setEngine(eng *engine.Engine) {
	u.engine = eng
	eng.OnInfo = u.sendInfo
}

// Run reads commands from in until "quit" or end of input. At end of input
// a running search is allowed to finish; "quit" stops it.
func (u *USI) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]
		log.Debug().Str("cmd", line).Msg("usi-command")

		switch cmd {
		case "usi":
			u.handleUSI()
		case "isready":
			u.println("readyok")
		case "usinewgame":
			u.handleNewGame()
		case "position":
			u.handlePosition(args)
		case "go":
			u.handleGo(ctx, args)
		case "stop":
			u.handleStop()
		case "gameover":
			u.handleStop()
		case "quit":
			u.handleStop()
			return nil
		case "setoption":
			u.handleSetOption(args)
		// Debug commands
		case "d":
			u.println(u.position.String())
		case "perft":
			u.handlePerft(args)
		default:
			u.printf("info string unknown command: %s\n", cmd)
		}
	}

	u.wait()
	return scanner.Err()
}

func (u *USI) printf(format string, args ...any) {
	u.outMu.Lock()
	defer u.outMu.Unlock()
	fmt.Fprintf(u.out, format, args...)
}

func (u *USI) println(s string) {
	u.printf("%s\n", s)
}

// handleUSI responds to the "usi" command.
func (u *USI) handleUSI() {
	u.println("id name ShogiPlay")
	u.println("id author ShogiPlay Team")
	u.println("option name Evaluator type combo default positional var positional var material")
	u.println("option name Debug type check default false")
	u.println("usiok")
}

// handleNewGame resets the position for a new game.
func (u *USI) handleNewGame() {
	u.handleStop()
	u.position = board.NewPosition()
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves 7g7f 3c3d
//   - position sfen <sfen>
//   - position sfen <sfen> moves 7g7f
//
// On error the previous position is kept.
func (u *USI) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	movesAt := len(args)
	for i, arg := range args {
		if arg == "moves" {
			movesAt = i
			break
		}
	}

	var pos *board.Position
	switch args[0] {
	case "startpos":
		pos = board.NewPosition()
	case "sfen":
		var err error
		pos, err = board.ParseSFEN(strings.Join(args[1:movesAt], " "))
		if err != nil {
			u.printf("info string %v\n", err)
			return
		}
	default:
		u.printf("info string invalid position command\n")
		return
	}

	if movesAt < len(args) {
		for _, s := range args[movesAt+1:] {
			m, err := board.ParseMove(s, pos)
			if err != nil {
				u.printf("info string %v\n", err)
				return
			}
			pos.MakeMove(m)
		}
	}

	u.position = pos
	if board.DebugMoveValidation {
		log.Debug().Str("sfen", pos.SFEN()).Int("legal", pos.GenerateLegalMoves().Len()).Msg("position-set")
	}
}

// parseGoOptions parses "go" command arguments.
func parseGoOptions(args []string) engine.TimeControl {
	var tc engine.TimeControl

	millis := func(i int) time.Duration {
		if i+1 >= len(args) {
			return 0
		}
		ms, _ := strconv.Atoi(args[i+1])
		return time.Duration(ms) * time.Millisecond
	}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "btime":
			tc.Time[board.Black] = millis(i)
			i++
		case "wtime":
			tc.Time[board.White] = millis(i)
			i++
		case "binc":
			tc.Inc[board.Black] = millis(i)
			i++
		case "winc":
			tc.Inc[board.White] = millis(i)
			i++
		case "byoyomi":
			tc.Byoyomi = millis(i)
			i++
		case "movetime":
			tc.MoveTime = millis(i)
			i++
		case "depth":
			if i+1 < len(args) {
				tc.Depth, _ = strconv.Atoi(args[i+1])
				i++
			}
		case "nodes":
			if i+1 < len(args) {
				tc.Nodes, _ = strconv.ParseUint(args[i+1], 10, 64)
				i++
			}
		case "infinite", "ponder":
			tc.Infinite = true
		}
	}

	return tc
}

// handleGo starts a search with the given parameters.
func (u *USI) handleGo(ctx context.Context, args []string) {
	u.handleStop()

	tc := parseGoOptions(args)
	pos := u.position.Clone()
	u.timeMgr.Init(tc, pos.SideToMove, pos.MoveNumber)
	limits := u.timeMgr.Limits(tc)
	if !tc.Infinite && limits == (engine.SearchLimits{}) {
		limits = engine.DifficultySettings[u.engine.Difficulty()]
	}
	log.Debug().Dur("movetime", limits.MoveTime).Int("depth", limits.Depth).Msg("go")

	searchCtx, cancel := context.WithCancel(ctx)
	u.cancel = cancel
	u.searchDone = make(chan struct{})

	go func(done chan struct{}) {
		defer close(done)
		defer cancel()

		res, err := u.engine.SearchWithLimits(searchCtx, pos, limits)
		switch {
		case errors.Is(err, engine.ErrNoLegalMoves):
			u.println("bestmove resign")
		case err != nil:
			u.printf("info string search failed: %v\n", err)
			u.println("bestmove resign")
		default:
			u.printf("bestmove %s\n", res.Move)
		}
	}(u.searchDone)
}

// sendInfo outputs search info in USI format.
func (u *USI) sendInfo(info engine.SearchInfo) {
	parts := []string{fmt.Sprintf("depth %d", info.Depth)}

	// Mate distances are given in plies.
	switch {
	case engine.IsDecisive(info.Score) && info.Score > 0:
		parts = append(parts, fmt.Sprintf("score mate %d", engine.WinScore-info.Score))
	case engine.IsDecisive(info.Score):
		parts = append(parts, fmt.Sprintf("score mate -%d", engine.WinScore+info.Score))
	default:
		parts = append(parts, fmt.Sprintf("score cp %d", info.Score))
	}

	parts = append(parts, fmt.Sprintf("nodes %d", info.Nodes))
	parts = append(parts, fmt.Sprintf("time %d", info.Time.Milliseconds()))
	if info.Time > 0 {
		parts = append(parts, fmt.Sprintf("nps %d", uint64(float64(info.Nodes)/info.Time.Seconds())))
	}

	if len(info.PV) > 0 {
		pv := make([]string, len(info.PV))
		for i, m := range info.PV {
			pv[i] = m.String()
		}
		parts = append(parts, "pv "+strings.Join(pv, " "))
	}

	u.printf("info %s\n", strings.Join(parts, " "))
}

// handleStop stops the current search and waits for its bestmove.
func (u *USI) handleStop() {
	if u.cancel == nil {
		return
	}
	u.cancel()
	u.engine.Stop()
	u.wait()
}

// wait blocks until the running search, if any, has reported.
func (u *USI) wait() {
	if u.searchDone != nil {
		<-u.searchDone
		u.searchDone = nil
		u.cancel = nil
	}
}

// handleSetOption processes "setoption name <name> value <value>".
func (u *USI) handleSetOption(args []string) {
	var name, value string
	readingName := false
	readingValue := false

	for _, arg := range args {
		switch arg {
		case "name":
			readingName, readingValue = true, false
		case "value":
			readingName, readingValue = false, true
		default:
			if readingName {
				name = strings.TrimSpace(name + " " + arg)
			} else if readingValue {
				value = strings.TrimSpace(value + " " + arg)
			}
		}
	}

	switch strings.ToLower(name) {
	case "evaluator":
		eval, err := engine.EvaluatorByName(value)
		if err != nil {
			u.printf("info string %v\n", err)
			return
		}
		u.handleStop()
		u.setEngine(engine.NewEngine(eval))
	case "debug":
		u.handleStop()
		board.DebugMoveValidation = strings.ToLower(value) == "true"
	default:
		u.printf("info string unknown option: %s\n", name)
	}
}

// handlePerft runs a perft test.
func (u *USI) handlePerft(args []string) {
	depth := 3
	if len(args) > 0 {
		if d, err := strconv.Atoi(args[0]); err == nil && d > 0 {
			depth = d
		}
	}

	start := time.Now()
	nodes := u.engine.Perft(u.position, depth)
	elapsed := time.Since(start)

	u.printf("Nodes: %d\n", nodes)
	u.printf("Time: %v\n", elapsed)
	if elapsed > 0 {
		u.printf("NPS: %.0f\n", float64(nodes)/elapsed.Seconds())
	}
}

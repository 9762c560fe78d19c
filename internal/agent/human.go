package agent

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/hailam/shogiplay/internal/board"
)

// Human reads moves in USI notation ("7g7f", "P*5e", "8h2b+") from a reader
// and re-prompts until a legal move is entered. "resign" gives up the game.
// Lines are read on a background goroutine so a cancelled context ends the
// turn without waiting for input.
type Human struct {
	name string
	in   *bufio.Scanner
	out  io.Writer

	start sync.Once
	lines chan line
}

type line struct {
	text string
	err  error
}

// NewHuman creates a human agent reading from in and prompting on out.
func NewHuman(name string, in io.Reader, out io.Writer) *Human {
	if name == "" {
		name = "human"
	}
	return &Human{
		name: name,
		in:    bufio.NewScanner(in),
		out:   out,
		lines: make(chan line),
	}
}

// readLines feeds h.lines until the input ends. The final send carries the
// read error, or io.ErrUnexpectedEOF at end of input.
func (h *Human) readLines() {
	for h.in.Scan() {
		h.lines <- line{text: h.in.Text()}
	}
	err := h.in.Err()
	if err == nil {
		err = io.ErrUnexpectedEOF
	}
	for {
		h.lines <- line{err: err}
	}
}

func (h *Human) readLine(ctx context.Context) (string, error) {
	h.start.Do(func() { go h.readLines() })
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case l := <-h.lines:
		if l.err != nil {
			return "", fmt.Errorf("read move: %w", l.err)
		}
		return l.text, nil
	}
}

// Name implements Agent.
func (h *Human) Name() string { return h.name }

// ChooseMove implements Agent.
func (h *Human) ChooseMove(ctx context.Context, pos *board.Position) (board.Move, error) {
	for {
		if err := ctx.Err(); err != nil {
			return board.NoMove, err
		}
		fmt.Fprintf(h.out, "%s to move> ", pos.SideToMove)

		text, err := h.readLine(ctx)
		if err != nil {
			return board.NoMove, err
		}
		text = strings.TrimSpace(text)
		switch text {
		case "":
			continue
		case "resign", "quit":
			return board.NoMove, ErrResign
		case "moves":
			for _, m := range pos.GenerateLegalMoves().Slice() {
				fmt.Fprintf(h.out, "%s ", m)
			}
			fmt.Fprintln(h.out)
			continue
		}

		m, err := board.ParseMove(text, pos)
		if err != nil {
			if errors.Is(err, board.ErrInvalidMove) {
				fmt.Fprintf(h.out, "illegal move %q, try again (\"moves\" lists legal moves)\n", text)
				continue
			}
			return board.NoMove, err
		}
		return m, nil
	}
}

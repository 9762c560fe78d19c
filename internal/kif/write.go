package kif

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/hailam/shogiplay/internal/board"
	"github.com/hailam/shogiplay/internal/game"
)

// terminals maps game end reasons to KIF closing tokens.
var terminals = map[game.Reason]string{
	game.ReasonCheckmate: "詰み",
	game.ReasonResign:    "投了",
	game.ReasonStalemate: "中断",
	game.ReasonMaxMoves:  "中断",
}

// FromRecord replays a game record into a Game.
func FromRecord(rec *game.Record) (*Game, error) {
	start, err := board.ParseSFEN(rec.StartSFEN)
	if err != nil {
		return nil, err
	}
	g := &Game{
		Sente:    rec.Black,
		Gote:     rec.White,
		Start:    start,
		Terminal: terminals[rec.Reason],
		Winner:   rec.WinnerColor(),
	}
	pos := start.Clone()
	for i, s := range rec.Moves {
		m, err := board.ParseMove(s, pos)
		if err != nil {
			return nil, fmt.Errorf("move %d: %w", i+1, err)
		}
		pos.MakeMove(m)
		g.Moves = append(g.Moves, m)
	}
	return g, nil
}

// Write writes g as UTF-8 KIF. A starting position that is not a known
// handicap is written as a board diagram.
func Write(w io.Writer, g *Game) error {
	var sb strings.Builder
	sb.WriteString("# ---- shogiplay kif ----\n")
	if handicap := handicapName(g.Start); handicap != "" {
		sb.WriteString("手合割：" + handicap + "\n")
	} else {
		writeDiagram(&sb, g.Start)
	}
	sb.WriteString("先手：" + g.Sente + "\n")
	sb.WriteString("後手：" + g.Gote + "\n")
	sb.WriteString("手数----指手---------消費時間--\n")

	prevTo := board.NoSquare
	for i, m := range g.Moves {
		fmt.Fprintf(&sb, "%4d %s\n", i+1, m.KIF(prevTo))
		prevTo = m.To()
	}
	if g.Terminal != "" {
		fmt.Fprintf(&sb, "%4d %s\n", len(g.Moves)+1, g.Terminal)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteShiftJIS writes g as Shift-JIS KIF.
func WriteShiftJIS(w io.Writer, g *Game) error {
	tw := transform.NewWriter(w, japanese.ShiftJIS.NewEncoder())
	if err := Write(tw, g); err != nil {
		return err
	}
	return tw.Close()
}

func handicapName(pos *board.Position) string {
	fields := strings.Fields(pos.SFEN())
	for name, sfen := range handicaps {
		if strings.Join(strings.Fields(sfen)[:3], " ") == strings.Join(fields[:3], " ") {
			return name
		}
	}
	return ""
}

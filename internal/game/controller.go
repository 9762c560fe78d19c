package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hailam/shogiplay/internal/agent"
	"github.com/hailam/shogiplay/internal/board"
)

// Observer is called after every committed move. pos already reflects m;
// ply counts moves played in this game, starting at 1.
type Observer func(pos *board.Position, m board.Move, ply int)

// Controller plays one game at a time between two agents.
type Controller struct {
	agents    [2]agent.Agent
	maxMoves  int
	observers []Observer
}

// NewController creates a controller. A game still running after maxMoves
// moves is drawn; maxMoves <= 0 removes the cap.
func NewController(black, white agent.Agent, maxMoves int) *Controller {
	return &Controller{
		agents:   [2]agent.Agent{black, white},
		maxMoves: maxMoves,
	}
}

// AddObserver registers a callback run after each move.
func (c *Controller) AddObserver(o Observer) {
	c.observers = append(c.observers, o)
}

// Play runs a game from start, which is not modified. On error the returned
// record holds the moves played so far and has no Reason.
func (c *Controller) Play(ctx context.Context, start *board.Position) (*Record, error) {
	pos := start.Clone()
	rec := &Record{
		ID:        NewID(),
		Black:     c.agents[board.Black].Name(),
		White:     c.agents[board.White].Name(),
		StartSFEN: start.SFEN(),
		Started:   time.Now(),
	}
	log.Debug().Str("id", rec.ID).Str("black", rec.Black).Str("white", rec.White).
		Str("sfen", rec.StartSFEN).Msg("game-start")

	prevTo := board.NoSquare
	for {
		if r := pos.Result(); r.IsOver() {
			reason := ReasonStalemate
			if r.Outcome == board.Checkmate {
				reason = ReasonCheckmate
			}
			return c.finish(rec, pos, r.Winner, reason), nil
		}
		if c.maxMoves > 0 && len(rec.Moves) >= c.maxMoves {
			return c.finish(rec, pos, board.NoColor, ReasonMaxMoves), nil
		}

		us := pos.SideToMove
		m, err := c.agents[us].ChooseMove(ctx, pos)
		if errors.Is(err, agent.ErrResign) {
			return c.finish(rec, pos, us.Other(), ReasonResign), nil
		}
		if err != nil {
			rec.FinalSFEN = pos.SFEN()
			rec.Finished = time.Now()
			return rec, fmt.Errorf("game %s: %s: %w", rec.ID, c.agents[us].Name(), err)
		}
		if !pos.IsLegal(m) {
			rec.FinalSFEN = pos.SFEN()
			rec.Finished = time.Now()
			return rec, fmt.Errorf("game %s: %s played %s: %w", rec.ID, c.agents[us].Name(), m, board.ErrInvalidMove)
		}

		rec.KIF = append(rec.KIF, m.KIF(prevTo))
		rec.Moves = append(rec.Moves, m.String())
		prevTo = m.To()
		pos.MakeMove(m)

		for _, o := range c.observers {
			o(pos, m, len(rec.Moves))
		}
	}
}

func (c *Controller) finish(rec *Record, pos *board.Position, winner board.Color, reason Reason) *Record {
	rec.Winner = winnerString(winner)
	rec.Reason = reason
	rec.FinalSFEN = pos.SFEN()
	rec.Finished = time.Now()
	log.Debug().Str("id", rec.ID).Str("winner", rec.Winner).Str("reason", string(reason)).
		Int("moves", len(rec.Moves)).Dur("elapsed", rec.Duration()).Msg("game-end")
	return rec
}

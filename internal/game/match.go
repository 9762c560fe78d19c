package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/hailam/shogiplay/internal/agent"
	"github.com/hailam/shogiplay/internal/board"
	"github.com/hailam/shogiplay/internal/config"
)

// ErrDuplicateName is returned when both agents of a match report the same
// name. Records and statistics are keyed by name.
var ErrDuplicateName = errors.New("agents share a name")

// Factory builds a fresh agent for one game. Agents are not shared between
// concurrently running games.
type Factory func() (agent.Agent, error)

// MatchResult aggregates the games of a match from the first agent's side.
type MatchResult struct {
	First   string
	Second  string
	Wins    int
	Draws   int
	Losses  int
	Records []*Record // in game order
	Elapsed time.Duration
}

// Games returns the number of finished games.
func (r *MatchResult) Games() int {
	return r.Wins + r.Draws + r.Losses
}

// Score returns the first agent's points, a draw counting one half.
func (r *MatchResult) Score() float64 {
	return float64(r.Wins) + float64(r.Draws)/2
}

// String summarizes the result as "first vs second: +W =D -L".
func (r *MatchResult) String() string {
	return fmt.Sprintf("%s vs %s: +%d =%d -%d", r.First, r.Second, r.Wins, r.Draws, r.Losses)
}

// RunMatch plays cfg.Games games between the agents built by first and
// second, at most cfg.Parallelism at a time. Game i starts from
// cfg.StartPositions[i mod n] (the initial position when none are given);
// first plays Black in even-numbered games. onGame, if non-nil, is called
// once per finished game and never concurrently. The first failing game
// cancels the rest.
func RunMatch(ctx context.Context, cfg config.Config, first, second Factory, onGame func(*Record)) (*MatchResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	starts := make([]*board.Position, 0, len(cfg.StartPositions))
	for _, sfen := range cfg.StartPositions {
		pos, err := board.ParseSFEN(sfen)
		if err != nil {
			return nil, err
		}
		starts = append(starts, pos)
	}
	if len(starts) == 0 {
		starts = append(starts, board.NewPosition())
	}

	began := time.Now()
	records := make([]*Record, cfg.Games)
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Parallelism)
	for i := 0; i < cfg.Games; i++ {
		g.Go(func() error {
			a, err := first()
			if err != nil {
				return err
			}
			b, err := second()
			if err != nil {
				return err
			}
			if a.Name() == b.Name() {
				return fmt.Errorf("%w: %q", ErrDuplicateName, a.Name())
			}
			black, white := a, b
			if i%2 == 1 {
				black, white = b, a
			}

			rec, err := NewController(black, white, cfg.MaxMoves).Play(ctx, starts[i%len(starts)])
			if err != nil {
				return fmt.Errorf("game %d: %w", i+1, err)
			}
			records[i] = rec
			log.Info().Int("game", i+1).Str("black", rec.Black).Str("white", rec.White).
				Str("winner", rec.Winner).Str("reason", string(rec.Reason)).
				Int("moves", len(rec.Moves)).Msg("game-finished")

			if onGame != nil {
				mu.Lock()
				onGame(rec)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &MatchResult{Records: records, Elapsed: time.Since(began)}
	for i, rec := range records {
		firstColor := board.Black
		if i%2 == 1 {
			firstColor = board.White
		}
		if i == 0 {
			res.First, res.Second = rec.Black, rec.White
		}
		switch rec.WinnerColor() {
		case board.NoColor:
			res.Draws++
		case firstColor:
			res.Wins++
		default:
			res.Losses++
		}
	}
	log.Info().Str("result", res.String()).Dur("elapsed", res.Elapsed).Msg("match-finished")
	return res, nil
}

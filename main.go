// ShogiPlay - play shogi against the engine in a terminal
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hailam/shogiplay/internal/agent"
	"github.com/hailam/shogiplay/internal/board"
	"github.com/hailam/shogiplay/internal/cli"
	"github.com/hailam/shogiplay/internal/engine"
	"github.com/hailam/shogiplay/internal/game"
	"github.com/hailam/shogiplay/internal/storage"
)

var (
	difficulty = flag.String("difficulty", "", "easy, medium or hard (default: saved preference)")
	color      = flag.String("color", "", "your side, black or white (default: saved preference)")
	evalName   = flag.String("eval", "", "engine evaluator, material or positional")
	name       = flag.String("name", "", "your player name")
	startSFEN  = flag.String("sfen", board.StartSFEN, "starting position")
	maxMoves   = flag.Int("max-moves", 512, "declare a draw after this many plies")
	logLevel   = flag.String("log", "warn", "log level written to stderr")
)

func main() {
	flag.Parse()

	if err := cli.SetupLogging(os.Stderr, *logLevel); err != nil {
		log.Fatal().Err(err).Msg("bad-flags")
	}

	store, err := storage.NewStorage()
	if err != nil {
		log.Fatal().Err(err).Msg("open-storage")
	}
	defer store.Close()

	prefs, err := store.LoadPreferences()
	if err != nil {
		log.Warn().Err(err).Msg("load-preferences")
		prefs = storage.DefaultPreferences()
	}
	applyFlags(prefs)

	if err := play(store, prefs); err != nil {
		log.Error().Err(err).Msg("game")
		store.Close()
		os.Exit(1)
	}
}

// applyFlags overrides saved preferences with the flags that were set.
func applyFlags(prefs *storage.UserPreferences) {
	if *difficulty != "" {
		prefs.Difficulty = *difficulty
	}
	if *color != "" {
		prefs.PlayerColor = *color
	}
	if *evalName != "" {
		prefs.Evaluator = *evalName
	}
	if *name != "" {
		prefs.Username = *name
	}
}

func play(store *storage.Storage, prefs *storage.UserPreferences) error {
	diff, err := engine.ParseDifficulty(prefs.Difficulty)
	if err != nil {
		return err
	}
	eval, err := engine.EvaluatorByName(prefs.Evaluator)
	if err != nil {
		return err
	}
	start, err := board.ParseSFEN(*startSFEN)
	if err != nil {
		return err
	}

	human := agent.NewHuman(prefs.Username, os.Stdin, os.Stdout)
	ai := agent.NewSearch("engine-"+diff.String(), eval, engine.DifficultySettings[diff])

	var ctrl *game.Controller
	switch prefs.PlayerColor {
	case game.WinnerBlack:
		ctrl = game.NewController(human, ai, *maxMoves)
	case game.WinnerWhite:
		ctrl = game.NewController(ai, human, *maxMoves)
	default:
		return fmt.Errorf("unknown color %q (want black or white)", prefs.PlayerColor)
	}

	prefs.LastPlayed = time.Now()
	if err := store.SavePreferences(prefs); err != nil {
		log.Warn().Err(err).Msg("save-preferences")
	}

	fmt.Print(start)
	fmt.Println(`Enter moves in USI notation (7g7f, P*5e, 8h2b+); "moves" lists legal moves, "resign" gives up.`)
	ctrl.AddObserver(func(pos *board.Position, m board.Move, ply int) {
		fmt.Printf("\n%d. %s (%s)\n", ply, m, m.Color())
		fmt.Print(pos)
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rec, err := ctrl.Play(ctx, start)
	if err != nil {
		return err
	}
	if err := store.SaveGame(rec); err != nil {
		log.Warn().Err(err).Msg("save-game")
	}

	winner := rec.WinnerName()
	if winner == "" {
		winner = game.WinnerNone
	} else {
		winner += " wins"
	}
	fmt.Printf("\nGame over: %s by %s after %d moves.\n", winner, rec.Reason, len(rec.Moves))
	if stats, err := store.LoadStats(prefs.Username); err == nil {
		fmt.Printf("%s: %d games, +%d =%d -%d, win rate %.1f%%\n",
			stats.Name, stats.GamesPlayed, stats.Wins, stats.Draws, stats.Losses, stats.GetWinRate())
	}
	return nil
}

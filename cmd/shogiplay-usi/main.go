// Command shogiplay-usi speaks the USI protocol on stdin and stdout.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/rs/zerolog/log"

	"github.com/hailam/shogiplay/internal/board"
	"github.com/hailam/shogiplay/internal/cli"
	"github.com/hailam/shogiplay/internal/engine"
	"github.com/hailam/shogiplay/internal/usi"
)

var (
	evalName   = flag.String("eval", "positional", "evaluator: material or positional")
	logLevel   = flag.String("log", "warn", "log level written to stderr")
	debug      = flag.Bool("debug", false, "validate the position after every move")
	profMode   = flag.String("profile", "", "write a cpu or mem profile")
	profileDir = flag.String("profile-dir", ".", "directory for profile output")
)

func main() {
	flag.Parse()

	// stdout belongs to the protocol; logs go to stderr.
	if err := cli.SetupLogging(os.Stderr, *logLevel); err != nil {
		log.Fatal().Err(err).Msg("bad-flags")
	}
	eval, err := engine.EvaluatorByName(*evalName)
	if err != nil {
		log.Fatal().Err(err).Msg("bad-flags")
	}
	board.DebugMoveValidation = *debug

	prof, err := cli.StartProfile(*profMode, *profileDir)
	if err != nil {
		log.Fatal().Err(err).Msg("bad-flags")
	}
	defer prof.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	protocol := usi.New(engine.NewEngine(eval), os.Stdout)
	if err := protocol.Run(ctx, os.Stdin); err != nil {
		log.Error().Err(err).Msg("usi-exit")
	}
}

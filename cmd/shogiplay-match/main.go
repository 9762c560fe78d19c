// Command shogiplay-match plays a match between two configured agents,
// stores every game and prints the result.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hailam/shogiplay/internal/agent"
	"github.com/hailam/shogiplay/internal/archive"
	"github.com/hailam/shogiplay/internal/cli"
	"github.com/hailam/shogiplay/internal/config"
	"github.com/hailam/shogiplay/internal/game"
	"github.com/hailam/shogiplay/internal/kif"
	"github.com/hailam/shogiplay/internal/storage"
)

var (
	configPath  = flag.String("config", "", "match configuration file (default: search for "+config.FileName+")")
	games       = flag.Int("games", 0, "override the number of games")
	parallelism = flag.Int("parallel", 0, "override the number of concurrent games")
	kifDir      = flag.String("kif", "", "write each game as a KIF file into this directory")
	shiftJIS    = flag.Bool("sjis", false, "encode KIF files as Shift-JIS")
	noStore     = flag.Bool("no-store", false, "do not record games in the database")
	logLevel    = flag.String("log", "info", "log level written to stderr")
	profMode    = flag.String("profile", "", "write a cpu or mem profile")
	profileDir  = flag.String("profile-dir", ".", "directory for profile output")
)

type options struct {
	kifDir   string
	shiftJIS bool
	store    bool
}

func main() {
	flag.Parse()

	if err := cli.SetupLogging(os.Stderr, *logLevel); err != nil {
		log.Fatal().Err(err).Msg("bad-flags")
	}
	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	if *games > 0 {
		cfg.Games = *games
	}
	if *parallelism > 0 {
		cfg.Parallelism = *parallelism
	}

	prof, err := cli.StartProfile(*profMode, *profileDir)
	if err != nil {
		log.Fatal().Err(err).Msg("bad-flags")
	}
	defer prof.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := options{kifDir: *kifDir, shiftJIS: *shiftJIS, store: !*noStore}
	if err := run(ctx, cfg, opts, os.Stdout); err != nil {
		log.Error().Err(err).Msg("match-failed")
		prof.Stop()
		os.Exit(1)
	}
}

// loadConfig reads path, or the nearest config file, or falls back to the
// default match.
func loadConfig(path string) (config.Config, error) {
	if path == "" {
		found, _, err := config.FindConfigPath()
		if errors.Is(err, config.ErrConfigNotFound) {
			log.Info().Msg("no-config-using-default")
			return config.Default(), nil
		}
		if err != nil {
			return config.Config{}, err
		}
		path = found
	}
	log.Info().Str("path", path).Msg("config-loaded")
	return config.LoadConfig(path)
}

func run(ctx context.Context, cfg config.Config, opts options, out io.Writer) error {
	var store *storage.Storage
	if opts.store {
		dir, err := storage.ResolveDatabaseDir(cfg.DataDir)
		if err != nil {
			return err
		}
		store, err = storage.Open(dir)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer store.Close()
	}
	if opts.kifDir != "" {
		if err := os.MkdirAll(opts.kifDir, 0755); err != nil {
			return err
		}
	}

	first := func() (agent.Agent, error) { return agent.FromConfig(cfg.First, os.Stdin, out) }
	second := func() (agent.Agent, error) { return agent.FromConfig(cfg.Second, os.Stdin, out) }

	onGame := func(rec *game.Record) {
		if store != nil {
			if err := store.SaveGame(rec); err != nil {
				log.Error().Err(err).Str("game", rec.ID).Msg("save-game")
			}
		}
		if opts.kifDir != "" {
			if err := writeKIF(opts.kifDir, rec, opts.shiftJIS); err != nil {
				log.Error().Err(err).Str("game", rec.ID).Msg("write-kif")
			}
		}
	}

	res, err := game.RunMatch(ctx, cfg, first, second, onGame)
	if err != nil {
		return err
	}

	if cfg.ParquetPath != "" {
		if err := archive.WriteParquet(cfg.ParquetPath, res.Records, int64(cfg.Parallelism)); err != nil {
			return fmt.Errorf("write parquet: %w", err)
		}
		log.Info().Str("path", cfg.ParquetPath).Int("games", len(res.Records)).Msg("parquet-written")
	}

	fmt.Fprintln(out, res)
	fmt.Fprintf(out, "score %.1f/%d in %v\n", res.Score(), res.Games(), res.Elapsed.Round(time.Millisecond))

	if store != nil {
		stats, err := store.AllStats()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "all-time:")
		for _, s := range stats {
			fmt.Fprintf(out, "  %-20s games %4d  +%d =%d -%d  win rate %5.1f%%\n",
				s.Name, s.GamesPlayed, s.Wins, s.Draws, s.Losses, s.GetWinRate())
		}
	}
	return nil
}

func writeKIF(dir string, rec *game.Record, sjis bool) error {
	g, err := kif.FromRecord(rec)
	if err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(dir, rec.ID+".kif"))
	if err != nil {
		return err
	}
	if sjis {
		err = kif.WriteShiftJIS(f, g)
	} else {
		err = kif.Write(f, g)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

// Package cli holds the flag handling shared by the shogiplay binaries.
package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/profile"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SetupLogging points the global logger at w with a console writer and
// applies the named level ("debug", "info", "warn", ...).
func SetupLogging(w io.Writer, level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()
	return nil
}

type noopProfile struct{}

func (noopProfile) Stop() {}

// StartProfile starts a cpu or mem profile written under dir. An empty mode
// disables profiling. The CPUPROFILE environment variable names a directory
// and turns on cpu profiling when mode is empty.
func StartProfile(mode, dir string) (interface{ Stop() }, error) {
	if mode == "" {
		if env := os.Getenv("CPUPROFILE"); env != "" {
			mode, dir = "cpu", env
		}
	}
	var kind func(*profile.Profile)
	switch mode {
	case "":
		return noopProfile{}, nil
	case "cpu":
		kind = profile.CPUProfile
	case "mem":
		kind = profile.MemProfile
	default:
		return nil, fmt.Errorf("unknown profile mode %q (want cpu or mem)", mode)
	}
	if dir == "" {
		dir = "."
	}
	log.Info().Str("mode", mode).Str("dir", dir).Msg("profiling-enabled")
	return profile.Start(kind, profile.ProfilePath(dir), profile.Quiet, profile.NoShutdownHook), nil
}

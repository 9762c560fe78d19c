package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestSetupLogging(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	if err := SetupLogging(&buf, "warn"); err != nil {
		t.Fatal(err)
	}
	log.Info().Msg("hidden")
	log.Warn().Str("k", "v").Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message logged at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "k=") {
		t.Errorf("warn message missing: %q", out)
	}

	if err := SetupLogging(&buf, "loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestStartProfile(t *testing.T) {
	t.Setenv("CPUPROFILE", "")

	p, err := StartProfile("", "")
	if err != nil {
		t.Fatal(err)
	}
	p.Stop()

	if _, err := StartProfile("block", t.TempDir()); err == nil {
		t.Error("expected error for unknown mode")
	}
}

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `{
		"games": 10,
		"first": {"kind": "search", "evaluator": "material", "depth": 2, "move_time_ms": 250},
		"second": {"kind": "greedy"},
		"start_positions": ["lnsgkgsnl/1r5b1/ppppppppp/9/9/9/PPPPPPPPP/1B5R1/LNSGKGSNL b - 1"]
	}`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Games != 10 {
		t.Errorf("Games = %d, want 10", cfg.Games)
	}
	if cfg.MaxMoves != Default().MaxMoves || cfg.Parallelism != Default().Parallelism {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.First.MoveTimeDuration() != 250*time.Millisecond {
		t.Errorf("MoveTimeDuration = %v", cfg.First.MoveTimeDuration())
	}
	if cfg.Second.Kind != KindGreedy {
		t.Errorf("Second.Kind = %q", cfg.Second.Kind)
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"games": `},
		{"zero games", `{"games": 0}`},
		{"zero parallelism", `{"parallelism": 0}`},
		{"zero max moves", `{"max_moves": 0}`},
		{"unknown kind", `{"second": {"kind": "oracle"}}`},
		{"search without depth", `{"first": {"kind": "search"}}`},
		{"unknown evaluator", `{"second": {"kind": "greedy", "evaluator": "nnue"}}`},
		{"negative move time", `{"second": {"kind": "random", "move_time_ms": -1}}`},
		{"bad start position", `{"start_positions": ["9/9 b - 1"]}`},
		{"same default names", `{"first": {"kind": "random"}, "second": {"kind": "random"}}`},
		{"same search names", `{"first": {"kind": "search", "depth": 3}, "second": {"kind": "search", "depth": 3, "evaluator": "material"}}`},
		{"same explicit names", `{"first": {"kind": "random", "name": "x"}, "second": {"kind": "greedy", "name": "x"}}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tc.body)
			if _, err := LoadConfig(path); err == nil {
				t.Errorf("LoadConfig should fail for %s", tc.body)
			}
		})
	}
}

func TestFindConfigPath(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, `{}`)
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	t.Chdir(nested)

	path, dir, err := FindConfigPath()
	if err != nil {
		t.Fatalf("FindConfigPath: %v", err)
	}
	want, _ := filepath.EvalSymlinks(root)
	got, _ := filepath.EvalSymlinks(dir)
	if got != want {
		t.Errorf("dir = %s, want %s", got, want)
	}
	if filepath.Base(path) != FileName {
		t.Errorf("path = %s", path)
	}
}

func TestFindConfigPathMissing(t *testing.T) {
	t.Chdir(t.TempDir())
	_, _, err := FindConfigPath()
	if err == nil {
		t.Skip("a config file exists above the temporary directory")
	}
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("err = %v, want ErrConfigNotFound", err)
	}
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hailam/shogiplay/internal/archive"
	"github.com/hailam/shogiplay/internal/config"
	"github.com/hailam/shogiplay/internal/kif"
	"github.com/hailam/shogiplay/internal/storage"
)

func TestRun(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Config{
		Games:       2,
		Parallelism: 2,
		MaxMoves:    20,
		First:       config.Agent{Kind: config.KindGreedy, Name: "greedy"},
		Second:      config.Agent{Kind: config.KindRandom, Name: "random"},
		DataDir:     filepath.Join(dir, "data"),
		ParquetPath: filepath.Join(dir, "games.parquet"),
	}
	opts := options{kifDir: filepath.Join(dir, "kif"), shiftJIS: true, store: true}

	var out bytes.Buffer
	if err := run(context.Background(), cfg, opts, &out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "greedy vs random:") {
		t.Errorf("output missing result line:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "all-time:") {
		t.Errorf("output missing stats:\n%s", out.String())
	}

	recs, err := archive.ReadParquet(cfg.ParquetPath, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("parquet holds %d games, want 2", len(recs))
	}

	for _, rec := range recs {
		f, err := os.Open(filepath.Join(opts.kifDir, rec.ID+".kif"))
		if err != nil {
			t.Fatal(err)
		}
		g, err := kif.Read(f)
		f.Close()
		if err != nil {
			t.Fatalf("read kif %s: %v", rec.ID, err)
		}
		if len(g.Moves) != len(rec.Moves) {
			t.Errorf("kif %s has %d moves, want %d", rec.ID, len(g.Moves), len(rec.Moves))
		}
	}

	dbDir, err := storage.ResolveDatabaseDir(cfg.DataDir)
	if err != nil {
		t.Fatal(err)
	}
	store, err := storage.Open(dbDir)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	stats, err := store.LoadStats("greedy")
	if err != nil {
		t.Fatal(err)
	}
	if stats.GamesPlayed != 2 {
		t.Errorf("greedy played %d games, want 2", stats.GamesPlayed)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.FileName)
	data := `{"games": 4, "first": {"kind": "random"}, "second": {"kind": "greedy"}}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Games != 4 || cfg.First.Kind != config.KindRandom || cfg.Second.Kind != config.KindGreedy {
		t.Errorf("cfg = %+v", cfg)
	}
}

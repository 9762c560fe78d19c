package archive

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hailam/shogiplay/internal/agent"
	"github.com/hailam/shogiplay/internal/board"
	"github.com/hailam/shogiplay/internal/game"
)

func TestParquetRoundTrip(t *testing.T) {
	var recs []*game.Record
	for i := 0; i < 3; i++ {
		rec, err := game.NewController(agent.Random{}, agent.NewGreedy("", nil), 12+i).
			Play(context.Background(), board.NewPosition())
		if err != nil {
			t.Fatalf("Play: %v", err)
		}
		recs = append(recs, rec)
	}

	path := filepath.Join(t.TempDir(), "games.parquet")
	if err := WriteParquet(path, recs, 2); err != nil {
		t.Fatalf("WriteParquet: %v", err)
	}
	got, err := ReadParquet(path, 2)
	if err != nil {
		t.Fatalf("ReadParquet: %v", err)
	}
	if len(got) != len(recs) {
		t.Fatalf("read %d records, want %d", len(got), len(recs))
	}

	for i, want := range recs {
		g := got[i]
		if g.ID != want.ID || g.Black != want.Black || g.White != want.White ||
			g.Winner != want.Winner || g.Reason != want.Reason ||
			g.StartSFEN != want.StartSFEN || g.FinalSFEN != want.FinalSFEN {
			t.Errorf("record %d header mismatch:\n got %+v\nwant %+v", i, g, want)
		}
		if len(g.Moves) != len(want.Moves) {
			t.Fatalf("record %d: %d moves, want %d", i, len(g.Moves), len(want.Moves))
		}
		for j := range want.Moves {
			if g.Moves[j] != want.Moves[j] || g.KIF[j] != want.KIF[j] {
				t.Errorf("record %d ply %d: %s/%s, want %s/%s", i, j+1, g.Moves[j], g.KIF[j], want.Moves[j], want.KIF[j])
			}
		}
		if g.Started.UnixMilli() != want.Started.UnixMilli() {
			t.Errorf("record %d: started %v, want %v", i, g.Started, want.Started)
		}

		final, err := g.Replay()
		if err != nil {
			t.Fatalf("Replay: %v", err)
		}
		if final.SFEN() != want.FinalSFEN {
			t.Errorf("record %d replays to %s", i, final.SFEN())
		}
	}
}

func TestFromRecordNumbersPlies(t *testing.T) {
	row := FromRecord(&game.Record{ID: "x", Moves: []string{"7g7f", "3c3d"}, KIF: []string{"７六歩(77)"}})
	if row.MoveCount != 2 || row.Plies[1].Ply != 2 || row.Plies[1].KIF != "" {
		t.Errorf("row = %+v", row)
	}
	if rec := row.Record(); len(rec.Moves) != 2 || rec.Moves[1] != "3c3d" {
		t.Errorf("Record() = %+v", rec)
	}
}

func TestReadParquetMissingFile(t *testing.T) {
	if _, err := ReadParquet(filepath.Join(t.TempDir(), "none.parquet"), 1); err == nil {
		t.Error("reading a missing file should fail")
	}
}

// Package archive exports game records to Parquet files and reads them back.
package archive

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/hailam/shogiplay/internal/game"
)

// Ply is one move of a game in both notations.
type Ply struct {
	Ply int32  `parquet:"name=ply, type=INT32"`
	USI string `parquet:"name=usi, type=BYTE_ARRAY, convertedtype=UTF8"`
	KIF string `parquet:"name=kif, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// GameRow is the Parquet row layout of a game record.
type GameRow struct {
	GameID     string `parquet:"name=game_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	SenteName  string `parquet:"name=sente_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	GoteName   string `parquet:"name=gote_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	StartSFEN  string `parquet:"name=start_sfen, type=BYTE_ARRAY, convertedtype=UTF8"`
	FinalSFEN  string `parquet:"name=final_sfen, type=BYTE_ARRAY, convertedtype=UTF8"`
	Result     string `parquet:"name=result, type=BYTE_ARRAY, convertedtype=UTF8"`
	WinReason  string `parquet:"name=win_reason, type=BYTE_ARRAY, convertedtype=UTF8"`
	MoveCount  int32  `parquet:"name=move_count, type=INT32"`
	StartedMS  int64  `parquet:"name=started_ms, type=INT64"`
	FinishedMS int64  `parquet:"name=finished_ms, type=INT64"`
	Plies      []Ply  `parquet:"name=plies, type=LIST"`
}

// FromRecord converts a game record to a row.
func FromRecord(rec *game.Record) GameRow {
	row := GameRow{
		GameID:     rec.ID,
		SenteName:  rec.Black,
		GoteName:   rec.White,
		StartSFEN:  rec.StartSFEN,
		FinalSFEN:  rec.FinalSFEN,
		Result:     rec.Winner,
		WinReason:  string(rec.Reason),
		MoveCount:  int32(len(rec.Moves)),
		StartedMS:  rec.Started.UnixMilli(),
		FinishedMS: rec.Finished.UnixMilli(),
		Plies:      make([]Ply, len(rec.Moves)),
	}
	for i, m := range rec.Moves {
		row.Plies[i] = Ply{Ply: int32(i + 1), USI: m}
		if i < len(rec.KIF) {
			row.Plies[i].KIF = rec.KIF[i]
		}
	}
	return row
}

// Record converts a row back to a game record. Times keep millisecond
// precision.
func (r GameRow) Record() *game.Record {
	rec := &game.Record{
		ID:        r.GameID,
		Black:     r.SenteName,
		White:     r.GoteName,
		StartSFEN: r.StartSFEN,
		FinalSFEN: r.FinalSFEN,
		Winner:    r.Result,
		Reason:    game.Reason(r.WinReason),
		Started:   time.UnixMilli(r.StartedMS),
		Finished:  time.UnixMilli(r.FinishedMS),
		Moves:     make([]string, len(r.Plies)),
		KIF:       make([]string, len(r.Plies)),
	}
	for i, p := range r.Plies {
		rec.Moves[i] = p.USI
		rec.KIF[i] = p.KIF
	}
	return rec
}

// WriteParquet writes the records to path with Snappy compression.
func WriteParquet(path string, recs []*game.Record, parallel int64) error {
	log.Debug().Str("path", path).Int("games", len(recs)).Msg("writing-parquet")

	fileWriter, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	defer fileWriter.Close()

	parquetWriter, err := writer.NewParquetWriter(fileWriter, new(GameRow), parallel)
	if err != nil {
		return err
	}
	parquetWriter.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, rec := range recs {
		if err := parquetWriter.Write(FromRecord(rec)); err != nil {
			return fmt.Errorf("write game %s: %w", rec.ID, err)
		}
	}
	if err := parquetWriter.WriteStop(); err != nil {
		return err
	}
	return fileWriter.Close()
}

// ReadParquet reads every record from a file written by WriteParquet.
func ReadParquet(path string, parallel int64) ([]*game.Record, error) {
	absPath := path
	if !filepath.IsAbs(path) {
		if resolved, err := filepath.Abs(path); err == nil {
			absPath = resolved
		}
	}
	fileReader, err := local.NewLocalFileReader(absPath)
	if err != nil {
		return nil, err
	}
	defer fileReader.Close()

	parquetReader, err := reader.NewParquetReader(fileReader, new(GameRow), parallel)
	if err != nil {
		return nil, err
	}
	defer parquetReader.ReadStop()

	num := int(parquetReader.GetNumRows())
	recs := make([]*game.Record, 0, num)
	batchSize := 1024
	for offset := 0; offset < num; offset += batchSize {
		if remain := num - offset; remain < batchSize {
			batchSize = remain
		}
		batch := make([]GameRow, batchSize)
		if err := parquetReader.Read(&batch); err != nil {
			return nil, err
		}
		for _, row := range batch {
			recs = append(recs, row.Record())
		}
	}
	return recs, nil
}

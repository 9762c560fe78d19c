// Package game runs games between agents and matches of many games.
package game

import (
	"encoding/hex"
	"time"

	"lukechampine.com/frand"

	"github.com/hailam/shogiplay/internal/board"
)

// Reason tells why a game ended.
type Reason string

const (
	ReasonCheckmate Reason = "checkmate"
	ReasonStalemate Reason = "stalemate"
	ReasonMaxMoves  Reason = "max-moves"
	ReasonResign    Reason = "resign"
)

// Winner values stored in a Record.
const (
	WinnerBlack = "black"
	WinnerWhite = "white"
	WinnerNone  = "draw"
)

// Record is the complete history of one finished game.
type Record struct {
	ID        string    `json:"id"`
	Black     string    `json:"black"`
	White     string    `json:"white"`
	StartSFEN string    `json:"start_sfen"`
	Moves     []string  `json:"moves"` // USI notation
	KIF       []string  `json:"kif"`   // KIF notation, same order as Moves
	FinalSFEN string    `json:"final_sfen"`
	Winner    string    `json:"winner"`
	Reason    Reason    `json:"reason"`
	Started   time.Time `json:"started"`
	Finished  time.Time `json:"finished"`
}

// NewID returns a random 16 hex digit game id.
func NewID() string {
	var b [8]byte
	frand.Read(b[:])
	return hex.EncodeToString(b[:])
}

// WinnerColor returns the winning color, or NoColor for a draw.
func (r *Record) WinnerColor() board.Color {
	switch r.Winner {
	case WinnerBlack:
		return board.Black
	case WinnerWhite:
		return board.White
	}
	return board.NoColor
}

// WinnerName returns the winning agent's name, or "" for a draw.
func (r *Record) WinnerName() string {
	switch r.WinnerColor() {
	case board.Black:
		return r.Black
	case board.White:
		return r.White
	}
	return ""
}

// Duration returns the wall time the game took.
func (r *Record) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}

// Replay rebuilds the final position from the start SFEN and the moves.
func (r *Record) Replay() (*board.Position, error) {
	pos, err := board.ParseSFEN(r.StartSFEN)
	if err != nil {
		return nil, err
	}
	for _, s := range r.Moves {
		m, err := board.ParseMove(s, pos)
		if err != nil {
			return nil, err
		}
		pos.MakeMove(m)
	}
	return pos, nil
}

func winnerString(c board.Color) string {
	switch c {
	case board.Black:
		return WinnerBlack
	case board.White:
		return WinnerWhite
	}
	return WinnerNone
}

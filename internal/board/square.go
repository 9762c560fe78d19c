// Package board implements the shogi position: pieces, squares, move generation,
// legality and check detection, make/unmake and the SFEN codec.
package board

import "fmt"

// Square represents a square on the 9x9 board (0-80).
// Square = rank*9 + file, where file 0 is USI file "1" and rank 0 is USI rank "a",
// the far rank as seen from Black.
type Square uint8

const (
	NumFiles   = 9
	NumRanks   = 9
	NumSquares = NumFiles * NumRanks

	// NoSquare marks a hand origin (drops) or a hand destination (captures).
	NoSquare Square = NumSquares
)

// NewSquare creates a square from 0-indexed file and rank.
func NewSquare(file, rank int) Square {
	return Square(rank*NumFiles + file)
}

// File returns the 0-indexed file (0 = USI file "1").
func (sq Square) File() int {
	return int(sq) % NumFiles
}

// Rank returns the 0-indexed rank (0 = USI rank "a").
func (sq Square) Rank() int {
	return int(sq) / NumFiles
}

// IsValid returns true if the square is on the board.
func (sq Square) IsValid() bool {
	return sq < NoSquare
}

// String returns USI notation for the square (e.g. "7g").
func (sq Square) String() string {
	if sq >= NoSquare {
		return "-"
	}
	return fmt.Sprintf("%c%c", '1'+sq.File(), 'a'+sq.Rank())
}

// ParseSquare parses USI notation (e.g. "7g") into a Square.
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return NoSquare, fmt.Errorf("invalid square: %q", s)
	}

	file := int(s[0] - '1')
	rank := int(s[1] - 'a')

	if file < 0 || file >= NumFiles || rank < 0 || rank >= NumRanks {
		return NoSquare, fmt.Errorf("invalid square: %q", s)
	}

	return NewSquare(file, rank), nil
}

// RelativeRank returns the rank counted from the given color's far side:
// 0 is the last rank the color moves toward, 8 is its own back rank.
func (sq Square) RelativeRank(c Color) int {
	if c == Black {
		return sq.Rank()
	}
	return NumRanks - 1 - sq.Rank()
}

// InPromotionZone returns true if the square lies in the far three ranks for c.
func (sq Square) InPromotionZone(c Color) bool {
	return sq.RelativeRank(c) < 3
}

// Offset returns the square reached by moving df files and dr ranks, and
// false when that leaves the board.
func (sq Square) Offset(df, dr int) (Square, bool) {
	f := sq.File() + df
	r := sq.Rank() + dr
	if f < 0 || f >= NumFiles || r < 0 || r >= NumRanks {
		return NoSquare, false
	}
	return NewSquare(f, r), true
}

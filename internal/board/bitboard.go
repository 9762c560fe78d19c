package board

import (
	"math/bits"
	"strings"
)

// Bitboard is an 81-bit square set. Bits 0-63 live in Lo, bits 64-80 in Hi.
// Bit n corresponds to Square n (rank*9 + file).
type Bitboard struct {
	Lo uint64
	Hi uint64
}

// Empty is the empty square set.
var Empty Bitboard

// fileMasks[f] holds every square on file f.
var fileMasks [NumFiles]Bitboard

func init() {
	for sq := Square(0); sq < NoSquare; sq++ {
		fileMasks[sq.File()] = fileMasks[sq.File()].Set(sq)
	}
}

// FileMask returns the square set of a 0-indexed file.
func FileMask(file int) Bitboard {
	return fileMasks[file]
}

// SquareBB returns a bitboard with only the given square set.
func SquareBB(sq Square) Bitboard {
	return Empty.Set(sq)
}

// Set returns b with the square added.
func (b Bitboard) Set(sq Square) Bitboard {
	if sq < 64 {
		b.Lo |= 1 << sq
	} else {
		b.Hi |= 1 << (sq - 64)
	}
	return b
}

// Clear returns b with the square removed.
func (b Bitboard) Clear(sq Square) Bitboard {
	if sq < 64 {
		b.Lo &^= 1 << sq
	} else {
		b.Hi &^= 1 << (sq - 64)
	}
	return b
}

// IsSet returns true if the square is in the set.
func (b Bitboard) IsSet(sq Square) bool {
	if sq < 64 {
		return b.Lo&(1<<sq) != 0
	}
	if sq >= NoSquare {
		return false
	}
	return b.Hi&(1<<(sq-64)) != 0
}

// IsEmpty returns true if no square is set.
func (b Bitboard) IsEmpty() bool {
	return b.Lo == 0 && b.Hi == 0
}

// And returns the intersection of two sets.
func (b Bitboard) And(o Bitboard) Bitboard {
	return Bitboard{b.Lo & o.Lo, b.Hi & o.Hi}
}

// Or returns the union of two sets.
func (b Bitboard) Or(o Bitboard) Bitboard {
	return Bitboard{b.Lo | o.Lo, b.Hi | o.Hi}
}

// PopCount returns the number of squares in the set.
func (b Bitboard) PopCount() int {
	return bits.OnesCount64(b.Lo) + bits.OnesCount64(b.Hi)
}

// LSB returns the lowest square in the set, or NoSquare.
func (b Bitboard) LSB() Square {
	if b.Lo != 0 {
		return Square(bits.TrailingZeros64(b.Lo))
	}
	if b.Hi != 0 {
		return Square(64 + bits.TrailingZeros64(b.Hi))
	}
	return NoSquare
}

// PopLSB removes and returns the lowest square.
func (b *Bitboard) PopLSB() Square {
	if b.Lo != 0 {
		sq := Square(bits.TrailingZeros64(b.Lo))
		b.Lo &= b.Lo - 1
		return sq
	}
	if b.Hi != 0 {
		sq := Square(64 + bits.TrailingZeros64(b.Hi))
		b.Hi &= b.Hi - 1
		return sq
	}
	return NoSquare
}

// String renders the set as a 9x9 grid, rank a first, file 9 on the left.
func (b Bitboard) String() string {
	var sb strings.Builder
	for rank := 0; rank < NumRanks; rank++ {
		for file := NumFiles - 1; file >= 0; file-- {
			if b.IsSet(NewSquare(file, rank)) {
				sb.WriteString("1 ")
			} else {
				sb.WriteString(". ")
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

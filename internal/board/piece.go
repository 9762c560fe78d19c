package board

// Color represents the owner of a piece or the side to move.
// Black (sente) moves first and is written in uppercase in SFEN.
type Color uint8

const (
	Black Color = iota
	White
	NoColor Color = 2
)

// Other returns the opposite color.
func (c Color) Other() Color {
	return c ^ 1
}

// String returns the color name.
func (c Color) String() string {
	switch c {
	case Black:
		return "Black"
	case White:
		return "White"
	default:
		return "NoColor"
	}
}

// SFENChar returns the side-to-move token used in SFEN ('b' or 'w').
func (c Color) SFENChar() byte {
	if c == White {
		return 'w'
	}
	return 'b'
}

// PieceType represents the kind of a shogi piece, ignoring promotion.
type PieceType uint8

const (
	King PieceType = iota
	Gold
	Silver
	Knight
	Lance
	Bishop
	Rook
	Pawn
	NoPieceType PieceType = 8
)

// NumPieceTypes is the number of piece kinds.
const NumPieceTypes = 8

// HandTypes lists the kinds that can be held in hand, in SFEN export order.
var HandTypes = [7]PieceType{Rook, Bishop, Gold, Silver, Knight, Lance, Pawn}

// String returns the piece type name.
func (pt PieceType) String() string {
	switch pt {
	case King:
		return "King"
	case Gold:
		return "Gold"
	case Silver:
		return "Silver"
	case Knight:
		return "Knight"
	case Lance:
		return "Lance"
	case Bishop:
		return "Bishop"
	case Rook:
		return "Rook"
	case Pawn:
		return "Pawn"
	default:
		return "None"
	}
}

// Char returns the uppercase SFEN letter for the piece type.
func (pt PieceType) Char() byte {
	if pt >= NoPieceType {
		return ' '
	}
	return "KGSNLBRP"[pt]
}

// CanPromote reports whether pieces of this kind have a promoted form.
func (pt PieceType) CanPromote() bool {
	return pt != King && pt != Gold && pt < NoPieceType
}

// PieceTypeFromChar converts an SFEN letter of either case to a PieceType.
func PieceTypeFromChar(c byte) PieceType {
	switch c {
	case 'K', 'k':
		return King
	case 'G', 'g':
		return Gold
	case 'S', 's':
		return Silver
	case 'N', 'n':
		return Knight
	case 'L', 'l':
		return Lance
	case 'B', 'b':
		return Bishop
	case 'R', 'r':
		return Rook
	case 'P', 'p':
		return Pawn
	default:
		return NoPieceType
	}
}

// Piece packs owner, kind and promotion flag into one byte.
// The zero value is NoPiece, so an empty board array needs no initialisation.
//
//	bits 0-2: piece type
//	bit 3:    promoted
//	bit 4:    color
//	bit 5:    occupied marker
type Piece uint8

// NoPiece marks an empty square.
const NoPiece Piece = 0

const (
	pieceOccupied = 1 << 5
	piecePromoted = 1 << 3
	pieceColor    = 1 << 4
)

// NewPiece creates a Piece. Promotion is ignored for kinds that cannot promote.
func NewPiece(c Color, pt PieceType, promoted bool) Piece {
	if pt >= NoPieceType || c >= NoColor {
		return NoPiece
	}
	p := Piece(pt) | pieceOccupied
	if c == White {
		p |= pieceColor
	}
	if promoted && pt.CanPromote() {
		p |= piecePromoted
	}
	return p
}

// Type returns the kind of the piece.
func (p Piece) Type() PieceType {
	if p == NoPiece {
		return NoPieceType
	}
	return PieceType(p & 7)
}

// Color returns the owner of the piece.
func (p Piece) Color() Color {
	if p == NoPiece {
		return NoColor
	}
	if p&pieceColor != 0 {
		return White
	}
	return Black
}

// IsPromoted reports whether the piece is promoted.
func (p Piece) IsPromoted() bool {
	return p&piecePromoted != 0
}

// Promoted returns the promoted form of the piece.
func (p Piece) Promoted() Piece {
	return NewPiece(p.Color(), p.Type(), true)
}

// String returns the SFEN token for the piece, e.g. "P", "+r".
func (p Piece) String() string {
	if p == NoPiece {
		return " "
	}
	c := p.Type().Char()
	if p.Color() == White {
		c += 'a' - 'A'
	}
	if p.IsPromoted() {
		return "+" + string(c)
	}
	return string(c)
}

// PieceFromChar converts an SFEN letter to an unpromoted Piece; case gives the owner.
func PieceFromChar(c byte) Piece {
	pt := PieceTypeFromChar(c)
	if pt == NoPieceType {
		return NoPiece
	}
	if c >= 'a' && c <= 'z' {
		return NewPiece(White, pt, false)
	}
	return NewPiece(Black, pt, false)
}

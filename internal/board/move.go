package board

import (
	"errors"
	"fmt"
)

// ErrInvalidMove is returned when move text cannot be matched to a legal move.
var ErrInvalidMove = errors.New("invalid move")

// Change is one atomic board edit.
// From == NoSquare means the piece comes out of Owner's hand (a drop).
// To == NoSquare means the piece leaves the board for the hand of Owner's
// opponent (a capture); its promotion is discarded.
type Change struct {
	Owner        Color
	Type         PieceType
	FromPromoted bool
	ToPromoted   bool
	From         Square
	To           Square
}

// Move is an ordered sequence of one or two Changes. A capture is two
// Changes: the captured piece going to hand, then the mover's relocation.
// Moves are comparable values; the zero value is NoMove.
type Move struct {
	changes [2]Change
	n       uint8
}

// NoMove represents an invalid or null move.
var NoMove Move

// NewBoardMove creates a move of piece pc from one square to another,
// capturing captured (NoPiece for a quiet move) and optionally promoting.
func NewBoardMove(pc Piece, from, to Square, promote bool, captured Piece) Move {
	var m Move
	if captured != NoPiece {
		m.changes[0] = Change{
			Owner:        captured.Color(),
			Type:         captured.Type(),
			FromPromoted: captured.IsPromoted(),
			From:         to,
			To:           NoSquare,
		}
		m.n = 1
	}
	m.changes[m.n] = Change{
		Owner:        pc.Color(),
		Type:         pc.Type(),
		FromPromoted: pc.IsPromoted(),
		ToPromoted:   pc.IsPromoted() || promote,
		From:         from,
		To:           to,
	}
	m.n++
	return m
}

// NewDrop creates a drop of a hand piece of kind pt onto sq.
func NewDrop(c Color, pt PieceType, sq Square) Move {
	return Move{
		changes: [2]Change{{Owner: c, Type: pt, From: NoSquare, To: sq}},
		n:       1,
	}
}

// Len returns the number of Changes in the move.
func (m Move) Len() int {
	return int(m.n)
}

// Change returns the i-th Change in application order.
func (m Move) Change(i int) Change {
	return m.changes[i]
}

// Changes returns the Changes in application order.
func (m Move) Changes() []Change {
	out := make([]Change, m.n)
	copy(out, m.changes[:m.n])
	return out
}

// mover returns the Change relocating the moving piece.
func (m *Move) mover() *Change {
	return &m.changes[m.n-1]
}

// From returns the origin square, or NoSquare for a drop.
func (m Move) From() Square {
	if m.n == 0 {
		return NoSquare
	}
	return m.mover().From
}

// To returns the destination square.
func (m Move) To() Square {
	if m.n == 0 {
		return NoSquare
	}
	return m.mover().To
}

// Color returns the side making the move.
func (m Move) Color() Color {
	if m.n == 0 {
		return NoColor
	}
	return m.mover().Owner
}

// Piece returns the moving piece as it stood before the move.
func (m Move) Piece() Piece {
	if m.n == 0 {
		return NoPiece
	}
	mv := m.mover()
	return NewPiece(mv.Owner, mv.Type, mv.FromPromoted)
}

// IsDrop returns true if the piece comes from hand.
func (m Move) IsDrop() bool {
	return m.n > 0 && m.mover().From == NoSquare
}

// IsCapture returns true if the move removes an enemy piece.
func (m Move) IsCapture() bool {
	return m.n == 2
}

// Captured returns the captured piece, or NoPiece.
func (m Move) Captured() Piece {
	if m.n != 2 {
		return NoPiece
	}
	c := m.changes[0]
	return NewPiece(c.Owner, c.Type, c.FromPromoted)
}

// IsPromotion returns true if the moving piece promotes on this move.
func (m Move) IsPromotion() bool {
	if m.n == 0 {
		return false
	}
	mv := m.mover()
	return mv.ToPromoted && !mv.FromPromoted
}

// IsKingMove returns true if the king moves.
func (m Move) IsKingMove() bool {
	return m.n > 0 && m.mover().Type == King
}

// String returns USI notation: "7g7f", "8h2b+", "P*5e"; "none" for NoMove.
func (m Move) String() string {
	if m.n == 0 {
		return "none"
	}
	mv := m.mover()
	if mv.From == NoSquare {
		return fmt.Sprintf("%c*%s", mv.Type.Char(), mv.To)
	}
	s := mv.From.String() + mv.To.String()
	if m.IsPromotion() {
		s += "+"
	}
	return s
}

// ParseMove matches USI move text against the legal moves of the position.
func ParseMove(s string, pos *Position) (Move, error) {
	if len(s) < 4 || len(s) > 5 {
		return NoMove, fmt.Errorf("%w: %q", ErrInvalidMove, s)
	}
	if s[1] != '*' {
		if _, err := ParseSquare(s[0:2]); err != nil {
			return NoMove, fmt.Errorf("%w: %v", ErrInvalidMove, err)
		}
	}
	if _, err := ParseSquare(s[2:4]); err != nil {
		return NoMove, fmt.Errorf("%w: %v", ErrInvalidMove, err)
	}

	moves := pos.GenerateLegalMoves()
	for i := 0; i < moves.Len(); i++ {
		if m := moves.Get(i); m.String() == s {
			return m, nil
		}
	}
	return NoMove, fmt.Errorf("%w: %s is not legal in %s", ErrInvalidMove, s, pos.SFEN())
}

// MaxMoves bounds the number of pseudo-legal moves in any position.
const MaxMoves = 1024

// MoveList is a fixed-size list of moves to avoid allocations.
type MoveList struct {
	moves [MaxMoves]Move
	count int
}

// NewMoveList creates an empty move list.
func NewMoveList() *MoveList {
	return &MoveList{}
}

// Add adds a move to the list.
func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

// Len returns the number of moves in the list.
func (ml *MoveList) Len() int {
	return ml.count
}

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

// Swap swaps two moves in the list.
func (ml *MoveList) Swap(i, j int) {
	ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i]
}

// Clear clears the list.
func (ml *MoveList) Clear() {
	ml.count = 0
}

// CopyFrom replaces the contents of ml with those of src.
func (ml *MoveList) CopyFrom(src *MoveList) {
	ml.count = src.count
	copy(ml.moves[:src.count], src.moves[:src.count])
}

// Contains returns true if the list contains the move.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}

// Slice returns the moves as a slice backed by the list.
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.count]
}

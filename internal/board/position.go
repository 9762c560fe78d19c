package board

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// DebugMoveValidation enables consistency assertions after every committed
// move. Violations are logged; the hot path is unchanged when disabled.
var DebugMoveValidation = false

// MaxHandCount bounds the number of pieces of one kind held in hand.
const MaxHandCount = 18

// setCounts is the number of pieces of each kind in a full set, both sides
// together.
var setCounts = [NumPieceTypes]int{
	King: 2, Gold: 4, Silver: 4, Knight: 4, Lance: 4, Bishop: 2, Rook: 2, Pawn: 18,
}

// Outcome describes whether and how a game ended.
type Outcome uint8

const (
	Ongoing Outcome = iota
	Checkmate
	Stalemate
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	default:
		return "ongoing"
	}
}

// Result is the terminal status of a position.
// Winner is NoColor unless Outcome is Checkmate.
type Result struct {
	Outcome Outcome
	Winner  Color
}

// IsOver returns true if the position is terminal.
func (r Result) IsOver() bool {
	return r.Outcome != Ongoing
}

const (
	checkUnknown int8 = iota
	checkNo
	checkYes
)

// Position represents a complete shogi position.
type Position struct {
	Board      [NumSquares]Piece
	Hands      [2][NumPieceTypes]int
	SideToMove Color
	MoveNumber int // 1-based, incremented on every move

	// KingSquare caches each king's location.
	KingSquare [2]Square

	// Hash is the Zobrist key of board, hands and side to move.
	Hash uint64

	// index[color][type][promoted] holds the squares occupied by that piece.
	index [2][NumPieceTypes][2]Bitboard

	// Lazy caches over the committed state. speculative > 0 while a
	// legality probe has a temporary move applied; caches are neither read
	// nor written in that state.
	legal       MoveList
	legalValid  bool
	check       [2]int8
	result      Result
	resultValid bool
	speculative int
}

// NewPosition creates the starting position.
func NewPosition() *Position {
	pos, err := ParseSFEN(StartSFEN)
	if err != nil {
		panic(err)
	}
	return pos
}

// newEmptyPosition returns a position with no pieces and Black to move.
func newEmptyPosition() *Position {
	return &Position{
		SideToMove: Black,
		MoveNumber: 1,
		KingSquare: [2]Square{NoSquare, NoSquare},
		Hash:       0,
	}
}

// Clone returns an independent deep copy of the position.
func (p *Position) Clone() *Position {
	c := *p
	return &c
}

// PieceAt returns the piece on the square, or NoPiece.
func (p *Position) PieceAt(sq Square) Piece {
	return p.Board[sq]
}

// HandCount returns how many pieces of kind pt color c holds.
func (p *Position) HandCount(c Color, pt PieceType) int {
	return p.Hands[c][pt]
}

// Pieces returns the squares holding c's pieces of the given kind and promotion.
func (p *Position) Pieces(c Color, pt PieceType, promoted bool) Bitboard {
	return p.index[c][pt][promIndex(promoted)]
}

// putPiece places pc on an empty square.
func (p *Position) putPiece(sq Square, pc Piece) {
	c, pt, pi := pc.Color(), pc.Type(), promIndex(pc.IsPromoted())
	p.Board[sq] = pc
	p.index[c][pt][pi] = p.index[c][pt][pi].Set(sq)
	p.Hash ^= zobristPiece[c][pt][pi][sq]
	if pt == King {
		p.KingSquare[c] = sq
	}
}

// removePiece empties an occupied square.
func (p *Position) removePiece(sq Square) {
	pc := p.Board[sq]
	c, pt, pi := pc.Color(), pc.Type(), promIndex(pc.IsPromoted())
	p.Board[sq] = NoPiece
	p.index[c][pt][pi] = p.index[c][pt][pi].Clear(sq)
	p.Hash ^= zobristPiece[c][pt][pi][sq]
	if pt == King {
		p.KingSquare[c] = NoSquare
	}
}

func (p *Position) addToHand(c Color, pt PieceType) {
	n := p.Hands[c][pt]
	p.Hash ^= zobristHand[c][pt][n] ^ zobristHand[c][pt][n+1]
	p.Hands[c][pt] = n + 1
}

func (p *Position) removeFromHand(c Color, pt PieceType) {
	n := p.Hands[c][pt]
	p.Hash ^= zobristHand[c][pt][n] ^ zobristHand[c][pt][n-1]
	p.Hands[c][pt] = n - 1
}

func (p *Position) applyChange(ch *Change) {
	if ch.From == NoSquare {
		p.removeFromHand(ch.Owner, ch.Type)
	} else {
		p.removePiece(ch.From)
	}
	if ch.To == NoSquare {
		p.addToHand(ch.Owner.Other(), ch.Type)
	} else {
		p.putPiece(ch.To, NewPiece(ch.Owner, ch.Type, ch.ToPromoted))
	}
}

func (p *Position) revertChange(ch *Change) {
	if ch.To == NoSquare {
		p.removeFromHand(ch.Owner.Other(), ch.Type)
	} else {
		p.removePiece(ch.To)
	}
	if ch.From == NoSquare {
		p.addToHand(ch.Owner, ch.Type)
	} else {
		p.putPiece(ch.From, NewPiece(ch.Owner, ch.Type, ch.FromPromoted))
	}
}

func (p *Position) doMove(m *Move) {
	for i := 0; i < int(m.n); i++ {
		p.applyChange(&m.changes[i])
	}
	p.SideToMove = p.SideToMove.Other()
	p.Hash ^= zobristSideToMove
	p.MoveNumber++
}

func (p *Position) undoMove(m *Move) {
	p.MoveNumber--
	p.Hash ^= zobristSideToMove
	p.SideToMove = p.SideToMove.Other()
	for i := int(m.n) - 1; i >= 0; i-- {
		p.revertChange(&m.changes[i])
	}
}

// MakeMove applies a move taken from GenerateLegalMoves. The move is not
// re-validated. All caches are invalidated.
func (p *Position) MakeMove(m Move) {
	if DebugMoveValidation && m.Color() != p.SideToMove {
		log.Error().Str("move", m.String()).Str("side", p.SideToMove.String()).
			Msg("makemove-wrong-side")
	}
	p.doMove(&m)
	p.invalidate()
	if DebugMoveValidation {
		if err := p.Validate(); err != nil {
			log.Error().Err(err).Str("move", m.String()).Msg("makemove-inconsistent")
		}
	}
}

// UnmakeMove reverts the most recent MakeMove of m.
func (p *Position) UnmakeMove(m Move) {
	p.undoMove(&m)
	p.invalidate()
	if DebugMoveValidation {
		if err := p.Validate(); err != nil {
			log.Error().Err(err).Str("move", m.String()).Msg("unmakemove-inconsistent")
		}
	}
}

// makeSpeculative applies a temporary move used only for legality probes.
func (p *Position) makeSpeculative(m *Move) {
	p.speculative++
	p.doMove(m)
}

func (p *Position) unmakeSpeculative(m *Move) {
	p.undoMove(m)
	p.speculative--
}

func (p *Position) invalidate() {
	p.legalValid = false
	p.check = [2]int8{}
	p.resultValid = false
}

// IsInCheck returns true if c's king is attacked.
func (p *Position) IsInCheck(c Color) bool {
	if p.speculative == 0 && p.check[c] != checkUnknown {
		return p.check[c] == checkYes
	}
	in := p.KingSquare[c] != NoSquare && p.IsSquareAttacked(p.KingSquare[c], c.Other())
	if p.speculative == 0 {
		p.check[c] = checkNo
		if in {
			p.check[c] = checkYes
		}
	}
	return in
}

// Result returns the terminal status of the position.
func (p *Position) Result() Result {
	if p.speculative == 0 && p.resultValid {
		return p.result
	}

	var hasMove bool
	if p.speculative == 0 {
		hasMove = p.legalMoves().Len() > 0
	} else {
		hasMove = p.hasLegalMove()
	}

	r := Result{Outcome: Ongoing, Winner: NoColor}
	if !hasMove {
		if p.IsInCheck(p.SideToMove) {
			r = Result{Outcome: Checkmate, Winner: p.SideToMove.Other()}
		} else {
			r = Result{Outcome: Stalemate, Winner: NoColor}
		}
	}

	if p.speculative == 0 {
		p.result = r
		p.resultValid = true
	}
	return r
}

// IsGameOver returns true if the side to move has no legal move.
func (p *Position) IsGameOver() bool {
	return p.Result().IsOver()
}

// Winner returns the winning color, or NoColor when the game is drawn or
// still in progress.
func (p *Position) Winner() Color {
	return p.Result().Winner
}

// Equal reports whether two positions agree on board, hands, side to move
// and move number.
func (p *Position) Equal(o *Position) bool {
	return p.Board == o.Board &&
		p.Hands == o.Hands &&
		p.SideToMove == o.SideToMove &&
		p.MoveNumber == o.MoveNumber &&
		p.index == o.index &&
		p.KingSquare == o.KingSquare &&
		p.Hash == o.Hash
}

// Validate checks the internal invariants: board and piece index agree,
// hands are in range, each side has exactly one king and no kind exceeds
// its count in a full set.
func (p *Position) Validate() error {
	var rebuilt [2][NumPieceTypes][2]Bitboard
	var kings [2]int
	var total [NumPieceTypes]int
	for sq := Square(0); sq < NoSquare; sq++ {
		pc := p.Board[sq]
		if pc == NoPiece {
			continue
		}
		c, pt := pc.Color(), pc.Type()
		total[pt]++
		rebuilt[c][pt][promIndex(pc.IsPromoted())] = rebuilt[c][pt][promIndex(pc.IsPromoted())].Set(sq)
		if pt == King {
			kings[c]++
			if p.KingSquare[c] != sq {
				return fmt.Errorf("king square for %v is %v, board has king on %v", c, p.KingSquare[c], sq)
			}
		}
	}
	if rebuilt != p.index {
		return fmt.Errorf("piece index disagrees with board")
	}
	for c := Black; c <= White; c++ {
		if kings[c] != 1 {
			return fmt.Errorf("%v has %d kings", c, kings[c])
		}
		if p.Hands[c][King] != 0 {
			return fmt.Errorf("%v holds a king in hand", c)
		}
		for pt := Gold; pt < NoPieceType; pt++ {
			if n := p.Hands[c][pt]; n < 0 || n > MaxHandCount {
				return fmt.Errorf("%v hand count for %v out of range: %d", c, pt, n)
			}
		}
	}
	for pt := King; pt < NoPieceType; pt++ {
		n := total[pt] + p.Hands[Black][pt] + p.Hands[White][pt]
		if n > setCounts[pt] {
			return fmt.Errorf("%d %v on board and in hand, a set has %d", n, pt, setCounts[pt])
		}
	}
	if h := p.ComputeHash(); h != p.Hash {
		return fmt.Errorf("hash mismatch: have %016x, computed %016x", p.Hash, h)
	}
	return nil
}

// String returns a diagram of the position with file 9 on the left.
func (p *Position) String() string {
	var sb strings.Builder
	sb.WriteString("White hand: ")
	sb.WriteString(p.handString(White))
	sb.WriteString("\n  9  8  7  6  5  4  3  2  1\n")
	for rank := 0; rank < NumRanks; rank++ {
		for file := NumFiles - 1; file >= 0; file-- {
			pc := p.Board[NewSquare(file, rank)]
			switch {
			case pc == NoPiece:
				sb.WriteString("  .")
			case pc.IsPromoted():
				sb.WriteString(" " + pc.String())
			default:
				sb.WriteString("  " + pc.String())
			}
		}
		sb.WriteString(fmt.Sprintf("  %c\n", 'a'+rank))
	}
	sb.WriteString("Black hand: ")
	sb.WriteString(p.handString(Black))
	sb.WriteString(fmt.Sprintf("\nSide to move: %v, move %d\n", p.SideToMove, p.MoveNumber))
	sb.WriteString("SFEN: " + p.SFEN() + "\n")
	return sb.String()
}

func (p *Position) handString(c Color) string {
	var parts []string
	for _, pt := range HandTypes {
		if n := p.Hands[c][pt]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s%d", NewPiece(c, pt, false), n))
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}

package board

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidSFEN wraps every SFEN format failure.
var ErrInvalidSFEN = errors.New("invalid SFEN")

// StartSFEN is the SFEN string for the starting position.
const StartSFEN = "lnsgkgsnl/1r5b1/ppppppppp/9/9/9/PPPPPPPPP/1B5R1/LNSGKGSNL b - 1"

// ParseSFEN parses an SFEN string and returns a Position.
// Fields: board, side to move, hands, move number. A leading "sfen" token
// is tolerated. Hands accept repeated letters ("PP") or counts ("2P").
func ParseSFEN(sfen string) (*Position, error) {
	parts := strings.Fields(sfen)
	if len(parts) > 0 && parts[0] == "sfen" {
		parts = parts[1:]
	}
	if len(parts) != 4 {
		return nil, fmt.Errorf("%w: need 4 fields, got %d", ErrInvalidSFEN, len(parts))
	}

	pos := newEmptyPosition()

	if err := parseBoard(pos, parts[0]); err != nil {
		return nil, err
	}

	switch parts[1] {
	case "b":
		pos.SideToMove = Black
	case "w":
		pos.SideToMove = White
	default:
		return nil, fmt.Errorf("%w: invalid side to move %q", ErrInvalidSFEN, parts[1])
	}

	if err := parseHands(pos, parts[2]); err != nil {
		return nil, err
	}

	n, err := strconv.Atoi(parts[3])
	if err != nil || n < 1 {
		return nil, fmt.Errorf("%w: invalid move number %q", ErrInvalidSFEN, parts[3])
	}
	pos.MoveNumber = n

	pos.Hash = pos.ComputeHash()
	if err := pos.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSFEN, err)
	}
	return pos, nil
}

// parseBoard parses the board field, rank a first, file 9 to file 1.
func parseBoard(pos *Position, field string) error {
	ranks := strings.Split(field, "/")
	if len(ranks) != NumRanks {
		return fmt.Errorf("%w: need %d ranks, got %d", ErrInvalidSFEN, NumRanks, len(ranks))
	}

	for rank, rankStr := range ranks {
		file := NumFiles - 1
		promoted := false

		for i := 0; i < len(rankStr); i++ {
			c := rankStr[i]
			switch {
			case c >= '1' && c <= '9':
				if promoted {
					return fmt.Errorf("%w: '+' before digit in rank %c", ErrInvalidSFEN, 'a'+rank)
				}
				file -= int(c - '0')
			case c == '+':
				if promoted {
					return fmt.Errorf("%w: repeated '+' in rank %c", ErrInvalidSFEN, 'a'+rank)
				}
				promoted = true
			default:
				pc := PieceFromChar(c)
				if pc == NoPiece {
					return fmt.Errorf("%w: invalid piece character %q", ErrInvalidSFEN, c)
				}
				if promoted {
					if !pc.Type().CanPromote() {
						return fmt.Errorf("%w: %v cannot be promoted", ErrInvalidSFEN, pc.Type())
					}
					pc = pc.Promoted()
					promoted = false
				}
				if file < 0 {
					return fmt.Errorf("%w: too many squares in rank %c", ErrInvalidSFEN, 'a'+rank)
				}
				pos.putPiece(NewSquare(file, rank), pc)
				file--
			}
			if file < -1 {
				return fmt.Errorf("%w: too many squares in rank %c", ErrInvalidSFEN, 'a'+rank)
			}
		}

		if promoted {
			return fmt.Errorf("%w: dangling '+' in rank %c", ErrInvalidSFEN, 'a'+rank)
		}
		if file != -1 {
			return fmt.Errorf("%w: rank %c has %d squares", ErrInvalidSFEN, 'a'+rank, NumFiles-1-file)
		}
	}

	return nil
}

// parseHands parses the hand field.
func parseHands(pos *Position, field string) error {
	if field == "-" {
		return nil
	}

	count := 0
	for i := 0; i < len(field); i++ {
		c := field[i]
		if c >= '0' && c <= '9' {
			count = count*10 + int(c-'0')
			continue
		}
		pt := PieceTypeFromChar(c)
		if pt == NoPieceType || pt == King {
			return fmt.Errorf("%w: invalid hand piece %q", ErrInvalidSFEN, c)
		}
		owner := Black
		if c >= 'a' && c <= 'z' {
			owner = White
		}
		if count == 0 {
			count = 1
		}
		pos.Hands[owner][pt] += count
		if pos.Hands[owner][pt] > MaxHandCount {
			return fmt.Errorf("%w: too many %v in hand", ErrInvalidSFEN, pt)
		}
		count = 0
	}
	if count != 0 {
		return fmt.Errorf("%w: hand count without piece", ErrInvalidSFEN)
	}

	return nil
}

// SFEN returns the SFEN representation of the position.
func (p *Position) SFEN() string {
	var sb strings.Builder

	for rank := 0; rank < NumRanks; rank++ {
		empty := 0
		for file := NumFiles - 1; file >= 0; file-- {
			pc := p.Board[NewSquare(file, rank)]
			if pc == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(pc.String())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank < NumRanks-1 {
			sb.WriteByte('/')
		}
	}

	sb.WriteByte(' ')
	sb.WriteByte(p.SideToMove.SFENChar())

	sb.WriteByte(' ')
	hands := 0
	for c := Black; c <= White; c++ {
		for _, pt := range HandTypes {
			s := NewPiece(c, pt, false).String()
			for i := 0; i < p.Hands[c][pt]; i++ {
				sb.WriteString(s)
				hands++
			}
		}
	}
	if hands == 0 {
		sb.WriteByte('-')
	}

	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.MoveNumber))

	return sb.String()
}

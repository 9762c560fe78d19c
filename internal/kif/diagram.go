package kif

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hailam/shogiplay/internal/board"
)

// diagramNames[type][promoted] are the one-rune names used inside a board
// diagram.
var diagramNames = [board.NumPieceTypes][2]string{
	board.King:   {"玉", ""},
	board.Gold:   {"金", ""},
	board.Silver: {"銀", "全"},
	board.Knight: {"桂", "圭"},
	board.Lance:  {"香", "杏"},
	board.Bishop: {"角", "馬"},
	board.Rook:   {"飛", "龍"},
	board.Pawn:   {"歩", "と"},
}

func diagramRows(lines []string) []string {
	var rows []string
	for _, line := range lines {
		if trim := strings.TrimSpace(line); strings.HasPrefix(trim, "|") {
			rows = append(rows, trim)
		}
	}
	return rows
}

// parseDiagram builds the starting position from a board diagram, the hand
// lines and the optional 後手番 marker.
func parseDiagram(lines, rows []string) (*board.Position, error) {
	if len(rows) != board.NumRanks {
		return nil, fmt.Errorf("board diagram has %d rows, want %d", len(rows), board.NumRanks)
	}

	var sb strings.Builder
	for rank, row := range rows {
		if rank > 0 {
			sb.WriteByte('/')
		}
		cells := []rune(strings.TrimPrefix(row, "|"))
		if len(cells) < 2*board.NumFiles {
			return nil, fmt.Errorf("board diagram row %d is too short", rank+1)
		}
		empty := 0
		for col := 0; col < board.NumFiles; col++ {
			mark, name := cells[2*col], cells[2*col+1]
			if name == '・' {
				empty++
				continue
			}
			pt, promoted, rest, err := parsePieceName(string(name))
			if err != nil || rest != "" {
				return nil, fmt.Errorf("board diagram row %d: %w: %q", rank+1, ErrUnknownPiece, string(name))
			}
			c := board.Black
			if mark == 'v' {
				c = board.White
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(board.NewPiece(c, pt, promoted).String())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
	}

	side := "b"
	for _, line := range lines {
		if trim := strings.TrimSpace(line); trim == "後手番" || trim == "上手番" {
			side = "w"
		}
	}

	var hands strings.Builder
	for _, h := range []struct {
		keys  []string
		color board.Color
	}{
		{[]string{"先手の持駒", "下手の持駒"}, board.Black},
		{[]string{"後手の持駒", "上手の持駒"}, board.White},
	} {
		for _, key := range h.keys {
			v := headerValue(lines, key)
			if v == "" {
				continue
			}
			s, err := parseHand(v, h.color)
			if err != nil {
				return nil, err
			}
			hands.WriteString(s)
			break
		}
	}
	hand := hands.String()
	if hand == "" {
		hand = "-"
	}

	return board.ParseSFEN(fmt.Sprintf("%s %s %s 1", sb.String(), side, hand))
}

// parseHand converts "金二　歩三" into SFEN hand tokens ("2G3P").
func parseHand(text string, c board.Color) (string, error) {
	if text == "なし" {
		return "", nil
	}
	var sb strings.Builder
	for _, tok := range strings.FieldsFunc(text, func(r rune) bool { return r == ' ' || r == '　' }) {
		pt, promoted, rest, err := parsePieceName(tok)
		if err != nil {
			return "", err
		}
		if promoted || pt == board.King {
			return "", fmt.Errorf("%w in hand: %q", ErrUnknownPiece, tok)
		}
		n, err := parseKanjiCount(rest)
		if err != nil {
			return "", fmt.Errorf("hand %q: %w", tok, err)
		}
		if n > 1 {
			sb.WriteString(strconv.Itoa(n))
		}
		sb.WriteString(board.NewPiece(c, pt, false).String())
	}
	return sb.String(), nil
}

// parseKanjiCount reads counts written as "", "二" .. "九", "十", "十八".
func parseKanjiCount(s string) (int, error) {
	if s == "" {
		return 1, nil
	}
	n := 0
	rest := s
	if r, ok := strings.CutPrefix(rest, "十"); ok {
		n = 10
		rest = r
	}
	if rest != "" {
		runes := []rune(rest)
		d, ok := rankNumber(runes[0])
		if !ok || len(runes) > 1 {
			return 0, fmt.Errorf("invalid count %q", s)
		}
		n += d
	}
	return n, nil
}

func kanjiCount(n int) string {
	switch {
	case n <= 1:
		return ""
	case n < 10:
		return string(kanjiDigits[n-1])
	case n == 10:
		return "十"
	}
	return "十" + string(kanjiDigits[n-11])
}

// writeDiagram renders pos as a KIF board diagram with hand lines.
func writeDiagram(sb *strings.Builder, pos *board.Position) {
	sb.WriteString("後手の持駒：" + handString(pos, board.White) + "\n")
	sb.WriteString("  ９ ８ ７ ６ ５ ４ ３ ２ １\n")
	sb.WriteString("+---------------------------+\n")
	for rank := 0; rank < board.NumRanks; rank++ {
		sb.WriteByte('|')
		for file := board.NumFiles - 1; file >= 0; file-- {
			pc := pos.PieceAt(board.NewSquare(file, rank))
			switch {
			case pc == board.NoPiece:
				sb.WriteString(" ・")
			case pc.Color() == board.White:
				sb.WriteString("v" + diagramNames[pc.Type()][boolIndex(pc.IsPromoted())])
			default:
				sb.WriteString(" " + diagramNames[pc.Type()][boolIndex(pc.IsPromoted())])
			}
		}
		sb.WriteString("|" + string(kanjiDigits[rank]) + "\n")
	}
	sb.WriteString("+---------------------------+\n")
	sb.WriteString("先手の持駒：" + handString(pos, board.Black) + "\n")
	if pos.SideToMove == board.White {
		sb.WriteString("後手番\n")
	}
}

func handString(pos *board.Position, c board.Color) string {
	var parts []string
	for _, pt := range board.HandTypes {
		if n := pos.HandCount(c, pt); n > 0 {
			parts = append(parts, pt.KIFName(false)+kanjiCount(n))
		}
	}
	if len(parts) == 0 {
		return "なし"
	}
	return strings.Join(parts, "　") + "　"
}

func boolIndex(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Package kif reads and writes KIF, the Japanese text format for shogi game
// records. Files may be UTF-8 or Shift-JIS.
package kif

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/hailam/shogiplay/internal/board"
)

var (
	// ErrUnknownPiece is returned for a piece name that is not a shogi piece.
	ErrUnknownPiece = errors.New("unknown piece")

	// ErrUnsupportedHandicap is returned for a 手合割 without a known
	// starting position and no board diagram.
	ErrUnsupportedHandicap = errors.New("unsupported handicap")
)

var (
	moveLineRe   = regexp.MustCompile(`^\s*(\d+)\s+(\S+)`)
	fromSquareRe = regexp.MustCompile(`\(([1-9])([1-9])\)`)
)

// handicaps maps 手合割 values to their starting positions.
var handicaps = map[string]string{
	"平手":   board.StartSFEN,
	"香落ち":  "lnsgkgsn1/1r5b1/ppppppppp/9/9/9/PPPPPPPPP/1B5R1/LNSGKGSNL w - 1",
	"角落ち":  "lnsgkgsnl/1r7/ppppppppp/9/9/9/PPPPPPPPP/1B5R1/LNSGKGSNL w - 1",
	"飛車落ち": "lnsgkgsnl/7b1/ppppppppp/9/9/9/PPPPPPPPP/1B5R1/LNSGKGSNL w - 1",
	"二枚落ち": "lnsgkgsnl/9/ppppppppp/9/9/9/PPPPPPPPP/1B5R1/LNSGKGSNL w - 1",
}

// Game is a parsed KIF record.
type Game struct {
	Sente    string
	Gote     string
	Start    *board.Position
	Moves    []board.Move
	Terminal string      // closing token such as 投了, empty if the record just stops
	Winner   board.Color // NoColor unless Terminal decides the game
}

// Decode returns the text of a KIF file, converting from Shift-JIS when the
// bytes are not valid UTF-8. A UTF-8 byte order mark is dropped.
func Decode(data []byte) (string, error) {
	if bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) {
		data = data[3:]
	}
	if utf8.Valid(data) {
		return string(data), nil
	}
	r := transform.NewReader(bytes.NewReader(data), japanese.ShiftJIS.NewDecoder())
	decoded, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("decode Shift-JIS: %w", err)
	}
	if !utf8.Valid(decoded) {
		return "", errors.New("decode Shift-JIS: result is not UTF-8")
	}
	return string(decoded), nil
}

// Read parses a KIF record from r.
func Read(r io.Reader) (*Game, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return Parse(text)
}

// Parse parses decoded KIF text. Every move is checked against the legal
// moves of the position it is played in.
func Parse(text string) (*Game, error) {
	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], "\r")
	}

	start, err := startPosition(lines)
	if err != nil {
		return nil, err
	}
	g := &Game{
		Sente:  headerValue(lines, "先手"),
		Gote:   headerValue(lines, "後手"),
		Start:  start,
		Winner: board.NoColor,
	}
	if g.Sente == "" {
		g.Sente = headerValue(lines, "下手")
	}
	if g.Gote == "" {
		g.Gote = headerValue(lines, "上手")
	}

	pos := start.Clone()
	prevTo := board.NoSquare
	for i, line := range lines {
		match := moveLineRe.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		token := match[2]
		if isTerminal(token) {
			g.Terminal = token
			g.Winner = terminalWinner(token, pos.SideToMove)
			break
		}
		m, err := parseMove(token, pos, prevTo)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		pos.MakeMove(m)
		g.Moves = append(g.Moves, m)
		prevTo = m.To()
	}
	return g, nil
}

// USI returns the moves in USI notation.
func (g *Game) USI() []string {
	out := make([]string, len(g.Moves))
	for i, m := range g.Moves {
		out[i] = m.String()
	}
	return out
}

// PositionAt returns the position after the first n moves.
func (g *Game) PositionAt(n int) (*board.Position, error) {
	if n < 0 || n > len(g.Moves) {
		return nil, fmt.Errorf("move %d out of range 0..%d", n, len(g.Moves))
	}
	pos := g.Start.Clone()
	for _, m := range g.Moves[:n] {
		pos.MakeMove(m)
	}
	return pos, nil
}

// Final returns the position after the last move.
func (g *Game) Final() *board.Position {
	pos, _ := g.PositionAt(len(g.Moves))
	return pos
}

func startPosition(lines []string) (*board.Position, error) {
	if rows := diagramRows(lines); len(rows) > 0 {
		return parseDiagram(lines, rows)
	}
	handicap := headerValue(lines, "手合割")
	if handicap == "" {
		handicap = "平手"
	}
	sfen, ok := handicaps[handicap]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedHandicap, handicap)
	}
	return board.ParseSFEN(sfen)
}

// parseMove converts a move token such as "７六歩(77)", "同　銀(31)",
// "２二角成(88)" or "５五角打" to the matching legal move.
func parseMove(token string, pos *board.Position, prevTo board.Square) (board.Move, error) {
	work := token
	var to board.Square
	if rest, ok := strings.CutPrefix(work, "同"); ok {
		if prevTo == board.NoSquare {
			return board.NoMove, fmt.Errorf("%q refers to a missing previous move", token)
		}
		to = prevTo
		work = strings.TrimLeft(rest, " 　")
	} else {
		runes := []rune(work)
		if len(runes) < 3 {
			return board.NoMove, fmt.Errorf("invalid move %q", token)
		}
		file, ok := fileNumber(runes[0])
		if !ok {
			return board.NoMove, fmt.Errorf("invalid file in %q", token)
		}
		rank, ok := rankNumber(runes[1])
		if !ok {
			return board.NoMove, fmt.Errorf("invalid rank in %q", token)
		}
		to = board.NewSquare(file-1, rank-1)
		work = string(runes[2:])
	}

	pt, promoted, rest, err := parsePieceName(work)
	if err != nil {
		return board.NoMove, fmt.Errorf("%q: %w", token, err)
	}

	var usi string
	switch {
	case strings.HasPrefix(rest, "打"):
		if promoted {
			return board.NoMove, fmt.Errorf("%q drops a promoted piece", token)
		}
		usi = fmt.Sprintf("%c*%s", pt.Char(), to)
	default:
		match := fromSquareRe.FindStringSubmatch(rest)
		if match == nil {
			return board.NoMove, fmt.Errorf("%q has no origin square", token)
		}
		from := board.NewSquare(int(match[1][0]-'1'), int(match[2][0]-'1'))
		usi = from.String() + to.String()
		if strings.HasPrefix(rest, "成") {
			usi += "+"
		}
	}

	m, err := board.ParseMove(usi, pos)
	if err != nil {
		return board.NoMove, err
	}
	if pc := m.Piece(); pc.Type() != pt || pc.IsPromoted() != promoted {
		return board.NoMove, fmt.Errorf("%w: %q names %s but %s moves", board.ErrInvalidMove, token, pt.KIFName(promoted), pc.Type().KIFName(pc.IsPromoted()))
	}
	return m, nil
}

type pieceName struct {
	name     string
	pt       board.PieceType
	promoted bool
}

// Two-rune names come first so that 成銀 is not read as a promotion marker.
var pieceNames = []pieceName{
	{"成銀", board.Silver, true},
	{"成桂", board.Knight, true},
	{"成香", board.Lance, true},
	{"全", board.Silver, true},
	{"圭", board.Knight, true},
	{"杏", board.Lance, true},
	{"と", board.Pawn, true},
	{"馬", board.Bishop, true},
	{"龍", board.Rook, true},
	{"竜", board.Rook, true},
	{"玉", board.King, false},
	{"王", board.King, false},
	{"金", board.Gold, false},
	{"銀", board.Silver, false},
	{"桂", board.Knight, false},
	{"香", board.Lance, false},
	{"角", board.Bishop, false},
	{"飛", board.Rook, false},
	{"歩", board.Pawn, false},
}

func parsePieceName(s string) (board.PieceType, bool, string, error) {
	for _, p := range pieceNames {
		if rest, ok := strings.CutPrefix(s, p.name); ok {
			return p.pt, p.promoted, rest, nil
		}
	}
	return board.NoPieceType, false, "", fmt.Errorf("%w: %q", ErrUnknownPiece, s)
}

func isTerminal(token string) bool {
	switch token {
	case "投了", "中断", "持将棋", "千日手", "詰み", "切れ負け", "反則勝ち", "反則負け", "入玉勝ち":
		return true
	}
	return false
}

// terminalWinner decides the winner from the closing token and the side
// that was to move when it was written.
func terminalWinner(token string, toMove board.Color) board.Color {
	switch token {
	case "投了", "詰み", "切れ負け", "反則負け":
		return toMove.Other()
	case "反則勝ち", "入玉勝ち":
		return toMove
	}
	return board.NoColor
}

func headerValue(lines []string, key string) string {
	for _, line := range lines {
		trim := strings.TrimSpace(line)
		for _, sep := range []string{"：", ":"} {
			if v, ok := strings.CutPrefix(trim, key+sep); ok {
				return strings.TrimSpace(v)
			}
		}
	}
	return ""
}

func fileNumber(r rune) (int, bool) {
	switch {
	case r >= '1' && r <= '9':
		return int(r - '0'), true
	case r >= '１' && r <= '９':
		return int(r-'１') + 1, true
	}
	return 0, false
}

var kanjiDigits = []rune("一二三四五六七八九")

func rankNumber(r rune) (int, bool) {
	for i, k := range kanjiDigits {
		if r == k {
			return i + 1, true
		}
	}
	return 0, false
}

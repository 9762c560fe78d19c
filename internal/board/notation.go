package board

import (
	"fmt"
	"strings"
)

var (
	kifFiles = [NumFiles]string{"１", "２", "３", "４", "５", "６", "７", "８", "９"}
	kifRanks = [NumRanks]string{"一", "二", "三", "四", "五", "六", "七", "八", "九"}

	// kifNames[type][promoted]
	kifNames = [NumPieceTypes][2]string{
		King:   {"玉", ""},
		Gold:   {"金", ""},
		Silver: {"銀", "成銀"},
		Knight: {"桂", "成桂"},
		Lance:  {"香", "成香"},
		Bishop: {"角", "馬"},
		Rook:   {"飛", "龍"},
		Pawn:   {"歩", "と"},
	}
)

// KIFName returns the Japanese name used for the piece in KIF records.
func (pt PieceType) KIFName(promoted bool) string {
	if pt >= NoPieceType {
		return ""
	}
	return kifNames[pt][promIndex(promoted && pt.CanPromote())]
}

// KIFSquare returns a square in KIF notation, e.g. "７六".
func KIFSquare(sq Square) string {
	if sq >= NoSquare {
		return ""
	}
	return kifFiles[sq.File()] + kifRanks[sq.Rank()]
}

// KIF returns the move in KIF notation, e.g. "７六歩(77)", "同　銀(31)",
// "５五角打", "２二角成(88)". prevTo is the previous move's destination, or
// NoSquare; a move landing there is written with "同".
func (m Move) KIF(prevTo Square) string {
	if m.n == 0 {
		return ""
	}
	mv := m.mover()

	var sb strings.Builder
	if mv.To == prevTo {
		sb.WriteString("同　")
	} else {
		sb.WriteString(KIFSquare(mv.To))
	}
	sb.WriteString(mv.Type.KIFName(mv.FromPromoted))

	if mv.From == NoSquare {
		sb.WriteString("打")
		return sb.String()
	}

	switch {
	case m.IsPromotion():
		sb.WriteString("成")
	case !mv.FromPromoted && mv.Type.CanPromote() &&
		(mv.From.InPromotionZone(mv.Owner) || mv.To.InPromotionZone(mv.Owner)):
		sb.WriteString("不成")
	}
	sb.WriteString(fmt.Sprintf("(%d%d)", mv.From.File()+1, mv.From.Rank()+1))
	return sb.String()
}

package board

// Movement tables. Offsets are written from Black's point of view, where
// "forward" is toward rank 0 (dr = -1); White's tables are the 180 degree
// rotation. All tables are filled once in init.

type delta struct {
	df, dr int
}

// Ray directions. Opposite directions differ only in the lowest bit.
const (
	dirN = iota
	dirS
	dirE
	dirW
	dirNE
	dirSW
	dirNW
	dirSE
	numDirections
)

var directions = [numDirections]delta{
	dirN:  {0, -1},
	dirS:  {0, 1},
	dirE:  {-1, 0},
	dirW:  {1, 0},
	dirNE: {-1, -1},
	dirSW: {1, 1},
	dirNW: {1, -1},
	dirSE: {-1, 1},
}

var (
	goldSteps   = []delta{{0, -1}, {-1, -1}, {1, -1}, {-1, 0}, {1, 0}, {0, 1}}
	silverSteps = []delta{{0, -1}, {-1, -1}, {1, -1}, {-1, 1}, {1, 1}}
	knightSteps = []delta{{-1, -2}, {1, -2}}
	pawnSteps   = []delta{{0, -1}}
	kingSteps   = []delta{{0, -1}, {0, 1}, {-1, 0}, {1, 0}, {-1, -1}, {1, 1}, {1, -1}, {-1, 1}}
	orthoSteps  = []delta{{0, -1}, {0, 1}, {-1, 0}, {1, 0}}
	diagSteps   = []delta{{-1, -1}, {1, 1}, {1, -1}, {-1, 1}}

	orthoDirs = []int{dirN, dirS, dirE, dirW}
	diagDirs  = []int{dirNE, dirSW, dirNW, dirSE}
	lanceDirs = []int{dirN}
)

var (
	// stepTargets[c][pt][promoted][sq] lists one-step destinations.
	stepTargets [2][NumPieceTypes][2][NumSquares][]Square

	// slideDirs[c][pt][promoted] lists unbounded directions.
	slideDirs [2][NumPieceTypes][2][]int

	// slideMask is slideDirs as a bit set over direction indices.
	slideMask [2][NumPieceTypes][2]uint8

	// rays[sq][dir] lists the squares walked from sq, nearest first.
	rays [NumSquares][numDirections][]Square
)

func init() {
	initRays()
	initMovementTables()
}

func initRays() {
	for sq := Square(0); sq < NoSquare; sq++ {
		for dir, d := range directions {
			var ray []Square
			cur := sq
			for {
				next, ok := cur.Offset(d.df, d.dr)
				if !ok {
					break
				}
				ray = append(ray, next)
				cur = next
			}
			rays[sq][dir] = ray
		}
	}
}

// blackMovement returns the step offsets and slide directions for Black.
func blackMovement(pt PieceType, promoted bool) ([]delta, []int) {
	if promoted {
		switch pt {
		case Silver, Knight, Lance, Pawn:
			return goldSteps, nil
		case Bishop:
			return orthoSteps, diagDirs
		case Rook:
			return diagSteps, orthoDirs
		}
		return nil, nil
	}
	switch pt {
	case King:
		return kingSteps, nil
	case Gold:
		return goldSteps, nil
	case Silver:
		return silverSteps, nil
	case Knight:
		return knightSteps, nil
	case Lance:
		return nil, lanceDirs
	case Bishop:
		return nil, diagDirs
	case Rook:
		return nil, orthoDirs
	case Pawn:
		return pawnSteps, nil
	}
	return nil, nil
}

func initMovementTables() {
	for pt := King; pt < NoPieceType; pt++ {
		for prom := 0; prom < 2; prom++ {
			if prom == 1 && !pt.CanPromote() {
				continue
			}
			steps, dirs := blackMovement(pt, prom == 1)
			for c := Black; c <= White; c++ {
				for sq := Square(0); sq < NoSquare; sq++ {
					var targets []Square
					for _, d := range steps {
						df, dr := d.df, d.dr
						if c == White {
							df, dr = -df, -dr
						}
						if to, ok := sq.Offset(df, dr); ok {
							targets = append(targets, to)
						}
					}
					stepTargets[c][pt][prom][sq] = targets
				}

				var cdirs []int
				var mask uint8
				for _, dir := range dirs {
					if c == White {
						dir ^= 1
					}
					cdirs = append(cdirs, dir)
					mask |= 1 << dir
				}
				slideDirs[c][pt][prom] = cdirs
				slideMask[c][pt][prom] = mask
			}
		}
	}
}

func promIndex(promoted bool) int {
	if promoted {
		return 1
	}
	return 0
}

// IsSquareAttacked reports whether any piece of color by attacks sq.
// Attacks are found by running each present piece kind's movement backward
// from sq and looking for a matching piece on the origin square.
func (p *Position) IsSquareAttacked(sq Square, by Color) bool {
	rev := by.Other()
	for pt := King; pt < NoPieceType; pt++ {
		for prom := 0; prom < 2; prom++ {
			if p.index[by][pt][prom].IsEmpty() {
				continue
			}
			want := NewPiece(by, pt, prom == 1)
			for _, from := range stepTargets[rev][pt][prom][sq] {
				if p.Board[from] == want {
					return true
				}
			}
			for _, dir := range slideDirs[rev][pt][prom] {
				for _, from := range rays[sq][dir] {
					if occ := p.Board[from]; occ != NoPiece {
						if occ == want {
							return true
						}
						break
					}
				}
			}
		}
	}
	return false
}

// slidingCheckAndBlockers inspects the eight lines through the king of c.
// It returns whether an enemy slider attacks the king directly and the set of
// c's own pieces that stand alone between the king and an enemy slider
// (x-ray: the first blocker is ignored when looking for the attacker).
func (p *Position) slidingCheckAndBlockers(c Color) (bool, Bitboard) {
	ksq := p.KingSquare[c]
	if ksq == NoSquare {
		return false, Empty
	}
	them := c.Other()
	checked := false
	blockers := Empty

	for dir := 0; dir < numDirections; dir++ {
		var first Square = NoSquare
		for _, sq := range rays[ksq][dir] {
			occ := p.Board[sq]
			if occ == NoPiece {
				continue
			}
			if first == NoSquare {
				if occ.Color() == them {
					if slidesToward(occ, c, dir) {
						checked = true
					}
					break
				}
				first = sq
				continue
			}
			if occ.Color() == them && slidesToward(occ, c, dir) {
				blockers = blockers.Set(first)
			}
			break
		}
	}
	return checked, blockers
}

// slidesToward reports whether enemy piece pc, found in direction dir from the
// king of c, can slide back along that line toward the king.
func slidesToward(pc Piece, c Color, dir int) bool {
	return slideMask[c][pc.Type()][promIndex(pc.IsPromoted())]&(1<<dir) != 0
}

// AttacksFrom returns the squares attacked by the piece on sq. A slide stops
// on, and includes, the first occupied square.
func (p *Position) AttacksFrom(sq Square) Bitboard {
	pc := p.Board[sq]
	if pc == NoPiece {
		return Empty
	}
	c, pt, prom := pc.Color(), pc.Type(), promIndex(pc.IsPromoted())
	bb := p.SlideAttacks(sq)
	for _, to := range stepTargets[c][pt][prom][sq] {
		bb = bb.Set(to)
	}
	return bb
}

// SlideAttacks returns the sliding part of AttacksFrom.
func (p *Position) SlideAttacks(sq Square) Bitboard {
	pc := p.Board[sq]
	if pc == NoPiece {
		return Empty
	}
	bb := Empty
	for _, dir := range slideDirs[pc.Color()][pc.Type()][promIndex(pc.IsPromoted())] {
		for _, to := range rays[sq][dir] {
			bb = bb.Set(to)
			if p.Board[to] != NoPiece {
				break
			}
		}
	}
	return bb
}

// Occupied returns the squares holding c's pieces.
func (p *Position) Occupied(c Color) Bitboard {
	bb := Empty
	for pt := King; pt < NoPieceType; pt++ {
		bb = bb.Or(p.index[c][pt][0]).Or(p.index[c][pt][1])
	}
	return bb
}

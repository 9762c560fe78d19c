package board

// GenerateLegalMoves returns a new list holding the legal moves of the side
// to move. The list is computed once per committed position and cached.
func (p *Position) GenerateLegalMoves() *MoveList {
	ml := NewMoveList()
	p.LegalMovesInto(ml)
	return ml
}

// LegalMovesInto copies the legal moves into dst without allocating.
func (p *Position) LegalMovesInto(dst *MoveList) {
	if p.speculative > 0 {
		dst.Clear()
		p.generateLegal(dst)
		return
	}
	dst.CopyFrom(p.legalMoves())
}

// IsLegal returns true if m is one of the legal moves.
func (p *Position) IsLegal(m Move) bool {
	if p.speculative > 0 {
		return p.GenerateLegalMoves().Contains(m)
	}
	return p.legalMoves().Contains(m)
}

// legalMoves returns the cached legal-move list, filling it if needed.
// Only valid outside speculation.
func (p *Position) legalMoves() *MoveList {
	if !p.legalValid {
		p.legal.Clear()
		p.generateLegal(&p.legal)
		p.legalValid = true
	}
	return &p.legal
}

// generateLegal appends the legal moves of the side to move to ml.
func (p *Position) generateLegal(ml *MoveList) {
	us := p.SideToMove
	start := ml.Len()
	p.generatePseudoLegal(us, ml)

	inCheck := p.IsInCheck(us)
	slidingCheck, blockers := p.slidingCheckAndBlockers(us)

	n := start
	for i := start; i < ml.count; i++ {
		m := ml.moves[i]
		if p.isLegalPseudo(&m, inCheck, slidingCheck, blockers) {
			ml.moves[n] = m
			n++
		}
	}
	ml.count = n
}

// hasLegalMove reports whether the side to move has at least one legal move.
func (p *Position) hasLegalMove() bool {
	us := p.SideToMove
	ml := NewMoveList()
	p.generatePseudoLegal(us, ml)

	inCheck := p.IsInCheck(us)
	slidingCheck, blockers := p.slidingCheckAndBlockers(us)

	for i := 0; i < ml.count; i++ {
		if p.isLegalPseudo(&ml.moves[i], inCheck, slidingCheck, blockers) {
			return true
		}
	}
	return false
}

// isLegalPseudo decides whether a pseudo-legal move is legal. Only king
// moves, moves made while in check and moves of x-ray blockers are verified
// by make/check/unmake; everything else is accepted directly.
func (p *Position) isLegalPseudo(m *Move, inCheck, slidingCheck bool, blockers Bitboard) bool {
	if m.IsDrop() {
		if inCheck {
			// A drop can only interpose against a slider.
			if !slidingCheck || !p.isSafeAfter(m) {
				return false
			}
		}
		if m.mover().Type == Pawn && p.isPawnDropMate(m) {
			return false
		}
		return true
	}

	if inCheck || m.IsKingMove() || blockers.IsSet(m.From()) {
		return p.isSafeAfter(m)
	}
	return true
}

// isSafeAfter applies m speculatively and reports whether the mover's king
// is out of check afterwards.
func (p *Position) isSafeAfter(m *Move) bool {
	us := p.SideToMove
	p.makeSpeculative(m)
	safe := !p.IsInCheck(us)
	p.unmakeSpeculative(m)
	return safe
}

// isPawnDropMate reports whether the pawn drop m checks the enemy king and
// leaves it without a legal reply.
func (p *Position) isPawnDropMate(m *Move) bool {
	us := p.SideToMove
	ksq := p.KingSquare[us.Other()]
	if ksq == NoSquare {
		return false
	}
	gives := false
	for _, sq := range stepTargets[us][Pawn][0][m.To()] {
		if sq == ksq {
			gives = true
		}
	}
	if !gives {
		return false
	}

	p.makeSpeculative(m)
	mate := !p.hasLegalMove()
	p.unmakeSpeculative(m)
	return mate
}

// generatePseudoLegal appends every pseudo-legal move of color us: board
// moves first, grouped by piece kind, then drops.
func (p *Position) generatePseudoLegal(us Color, ml *MoveList) {
	for pt := King; pt < NoPieceType; pt++ {
		for prom := 0; prom < 2; prom++ {
			bb := p.index[us][pt][prom]
			for !bb.IsEmpty() {
				from := bb.PopLSB()
				p.generatePieceMoves(ml, us, from, pt, prom)
			}
		}
	}
	p.generateDrops(us, ml)
}

// generatePieceMoves appends the step and slide moves of the piece on from.
func (p *Position) generatePieceMoves(ml *MoveList, us Color, from Square, pt PieceType, prom int) {
	pc := p.Board[from]

	for _, to := range stepTargets[us][pt][prom][from] {
		target := p.Board[to]
		if target != NoPiece && target.Color() == us {
			continue
		}
		addBoardMoves(ml, pc, from, to, target)
	}

	for _, dir := range slideDirs[us][pt][prom] {
		for _, to := range rays[from][dir] {
			target := p.Board[to]
			if target != NoPiece && target.Color() == us {
				break
			}
			addBoardMoves(ml, pc, from, to, target)
			if target != NoPiece {
				break
			}
		}
	}
}

// addBoardMoves appends the non-promoting and/or promoting variants of a move.
func addBoardMoves(ml *MoveList, pc Piece, from, to Square, captured Piece) {
	us := pc.Color()
	pt := pc.Type()

	if pc.IsPromoted() || !pt.CanPromote() || (!from.InPromotionZone(us) && !to.InPromotionZone(us)) {
		ml.Add(NewBoardMove(pc, from, to, false, captured))
		return
	}

	if !mustPromote(pt, to, us) {
		ml.Add(NewBoardMove(pc, from, to, false, captured))
	}
	ml.Add(NewBoardMove(pc, from, to, true, captured))
}

// mustPromote reports whether an unpromoted piece arriving on to would have
// no further move: pawn and lance on the last rank, knight on the last two.
func mustPromote(pt PieceType, to Square, c Color) bool {
	rr := to.RelativeRank(c)
	switch pt {
	case Pawn, Lance:
		return rr == 0
	case Knight:
		return rr <= 1
	}
	return false
}

// generateDrops appends drops of every hand piece onto every empty square,
// minus the locally decidable bans: pawns and lances on the last rank,
// knights on the last two, and a second unpromoted pawn on a file.
func (p *Position) generateDrops(us Color, ml *MoveList) {
	hand := &p.Hands[us]
	held := false
	for _, pt := range HandTypes {
		if hand[pt] > 0 {
			held = true
			break
		}
	}
	if !held {
		return
	}

	var pawnFiles [NumFiles]bool
	pawns := p.index[us][Pawn][0]
	for !pawns.IsEmpty() {
		pawnFiles[pawns.PopLSB().File()] = true
	}

	for sq := Square(0); sq < NoSquare; sq++ {
		if p.Board[sq] != NoPiece {
			continue
		}
		rr := sq.RelativeRank(us)
		for _, pt := range HandTypes {
			if hand[pt] == 0 {
				continue
			}
			switch pt {
			case Pawn:
				if rr == 0 || pawnFiles[sq.File()] {
					continue
				}
			case Lance:
				if rr == 0 {
					continue
				}
			case Knight:
				if rr <= 1 {
					continue
				}
			}
			ml.Add(NewDrop(us, pt, sq))
		}
	}
}

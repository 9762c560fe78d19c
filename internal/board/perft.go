package board

// Perft counts the leaf positions reachable by exhaustive legal-move
// expansion to the given depth.
func (p *Position) Perft(depth int) uint64 {
	if depth <= 0 {
		return 1
	}
	lists := make([]MoveList, depth)
	return p.perft(depth, lists)
}

func (p *Position) perft(depth int, lists []MoveList) uint64 {
	moves := &lists[depth-1]
	p.LegalMovesInto(moves)
	if depth == 1 {
		return uint64(moves.Len())
	}

	var nodes uint64
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		p.MakeMove(m)
		nodes += p.perft(depth-1, lists)
		p.UnmakeMove(m)
	}
	return nodes
}

// PerftEntry is the node count below one root move.
type PerftEntry struct {
	Move  Move
	Nodes uint64
}

// PerftDivide returns the perft count split by root move, in generation order.
func (p *Position) PerftDivide(depth int) []PerftEntry {
	if depth <= 0 {
		return nil
	}
	root := p.GenerateLegalMoves()
	lists := make([]MoveList, depth)
	entries := make([]PerftEntry, 0, root.Len())
	for i := 0; i < root.Len(); i++ {
		m := root.Get(i)
		p.MakeMove(m)
		var n uint64 = 1
		if depth > 1 {
			n = p.perft(depth-1, lists)
		}
		p.UnmakeMove(m)
		entries = append(entries, PerftEntry{Move: m, Nodes: n})
	}
	return entries
}

package board

// Zobrist hash keys for position hashing.
// Uses PRNG with fixed seed for reproducibility.
var (
	zobristPiece      [2][NumPieceTypes][2][NumSquares]uint64 // [Color][PieceType][promoted][Square]
	zobristHand       [2][NumPieceTypes][MaxHandCount + 1]uint64
	zobristSideToMove uint64 // XOR when White to move
)

func init() {
	initZobrist()
}

// Simple PRNG for reproducible Zobrist keys
type prng struct {
	state uint64
}

func newPRNG(seed uint64) *prng {
	return &prng{state: seed}
}

// xorshift64* algorithm
func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}

func initZobrist() {
	rng := newPRNG(0x5A0B1E7C0FFEE123)

	for c := Black; c <= White; c++ {
		for pt := King; pt < NoPieceType; pt++ {
			for prom := 0; prom < 2; prom++ {
				for sq := Square(0); sq < NoSquare; sq++ {
					zobristPiece[c][pt][prom][sq] = rng.next()
				}
			}
			// Count zero keeps a key of 0 so an empty hand contributes nothing.
			for n := 1; n <= MaxHandCount; n++ {
				zobristHand[c][pt][n] = rng.next()
			}
		}
	}

	zobristSideToMove = rng.next()
}

// ComputeHash computes the Zobrist hash from scratch.
func (p *Position) ComputeHash() uint64 {
	var h uint64
	for sq := Square(0); sq < NoSquare; sq++ {
		if pc := p.Board[sq]; pc != NoPiece {
			h ^= zobristPiece[pc.Color()][pc.Type()][promIndex(pc.IsPromoted())][sq]
		}
	}
	for c := Black; c <= White; c++ {
		for pt := Gold; pt < NoPieceType; pt++ {
			h ^= zobristHand[c][pt][p.Hands[c][pt]]
		}
	}
	if p.SideToMove == White {
		h ^= zobristSideToMove
	}
	return h
}

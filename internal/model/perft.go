package model

var promotionTypes = []PieceType{Queen, Rook, Bishop, Knight}

// children expands the legal moves of the side to move, one entry per
// promotion piece where a pawn reaches the last rank.
func (b *Board) children() []WSMove {
	moves := []WSMove{}
	for _, m := range b.AllLegalMoves(b.turn) {
		p := b.at(m.From)
		if p.Type == Pawn && m.To.Y == p.Color.Opponent().homeRank() {
			for _, promo := range promotionTypes {
				moves = append(moves, WSMove{From: m.From, To: m.To, Promotion: promo})
			}
			continue
		}
		moves = append(moves, WSMove{From: m.From, To: m.To})
	}
	return moves
}

// Perft counts the leaf nodes of the legal move tree depth plies deep.
func Perft(b *Board, depth int) uint64 {
	if depth <= 0 {
		return 1
	}
	moves := b.children()
	if depth == 1 {
		return uint64(len(moves))
	}
	var nodes uint64
	for _, m := range moves {
		child := b.Clone()
		if _, err := child.Apply(m.From, m.To, m.Promotion); err != nil {
			continue
		}
		nodes += Perft(child, depth-1)
	}
	return nodes
}

// PerftDivide reports the perft count below each root move, keyed by its
// coordinate text.
func PerftDivide(b *Board, depth int) map[string]uint64 {
	out := map[string]uint64{}
	if depth <= 0 {
		return out
	}
	for _, m := range b.children() {
		child := b.Clone()
		ply, err := child.Apply(m.From, m.To, m.Promotion)
		if err != nil {
			continue
		}
		out[ply.String()] = Perft(child, depth-1)
	}
	return out
}

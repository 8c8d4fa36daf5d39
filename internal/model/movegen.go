package model

var (
	rookDirs   = []Position{{X: 1, Y: 0}, {X: -1, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: -1}}
	bishopDirs = []Position{{X: 1, Y: 1}, {X: 1, Y: -1}, {X: -1, Y: 1}, {X: -1, Y: -1}}
	knightDirs = []Position{{X: 2, Y: 1}, {X: 2, Y: -1}, {X: -2, Y: 1}, {X: -2, Y: -1}, {X: 1, Y: 2}, {X: 1, Y: -2}, {X: -1, Y: 2}, {X: -1, Y: -2}}
	kingDirs   = []Position{{X: 1, Y: 0}, {X: -1, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: -1}, {X: 1, Y: 1}, {X: 1, Y: -1}, {X: -1, Y: 1}, {X: -1, Y: -1}}
)

// CandidateMoves returns the pseudo-legal destinations of the piece on
// (x, y): moves that respect geometry and occupancy but may leave the
// mover's own king in check. It never mutates the board.
func CandidateMoves(b *Board, x, y int) []Position {
	from := Position{X: x, Y: y}
	if !boundaryCheck(from) {
		return nil
	}
	piece := b.at(from)
	if piece == nil {
		return nil
	}
	switch piece.Type {
	case Pawn:
		return pawnMoves(b, piece, from)
	case Rook:
		return slidingMoves(b, piece, from, rookDirs)
	case Bishop:
		return slidingMoves(b, piece, from, bishopDirs)
	case Queen:
		return append(slidingMoves(b, piece, from, rookDirs), slidingMoves(b, piece, from, bishopDirs)...)
	case Knight:
		return steppingMoves(b, piece, from, knightDirs)
	case King:
		return append(steppingMoves(b, piece, from, kingDirs), castlingMoves(b, piece, from)...)
	default:
		return nil
	}
}

func pawnMoves(b *Board, piece *Piece, from Position) []Position {
	moves := []Position{}
	dir := piece.Color.forward()

	one := from.offset(0, dir)
	if boundaryCheck(one) && b.at(one) == nil {
		moves = append(moves, one)
		two := from.offset(0, 2*dir)
		if from.Y == piece.Color.pawnRank() && b.at(two) == nil {
			moves = append(moves, two)
		}
	}
	for _, dx := range []int{-1, 1} {
		target := from.offset(dx, dir)
		if !boundaryCheck(target) {
			continue
		}
		if occupant := b.at(target); occupant != nil {
			if occupant.Color != piece.Color {
				moves = append(moves, target)
			}
			continue
		}
		if b.enPassantVictim(piece, from, target) != nil {
			moves = append(moves, target)
		}
	}
	return moves
}

// enPassantVictim returns the pawn a pawn on from would take by moving to the
// empty square target, or nil when the last move does not allow it.
func (b *Board) enPassantVictim(piece *Piece, from, target Position) *Piece {
	lm := b.lastMove
	if lm == nil || piece.Type != Pawn || lm.Piece.Type != Pawn || lm.Piece.Color == piece.Color {
		return nil
	}
	if abs(lm.To.Y-lm.From.Y) != 2 || lm.To.X != target.X || lm.To.Y != from.Y {
		return nil
	}
	victim := b.at(lm.To)
	if victim == nil || victim.Type != Pawn || victim.Color == piece.Color {
		return nil
	}
	return victim
}

func slidingMoves(b *Board, piece *Piece, from Position, dirs []Position) []Position {
	moves := []Position{}
	for _, dir := range dirs {
		targetPos := from.offset(dir.X, dir.Y)
		for boundaryCheck(targetPos) {
			occupant := b.at(targetPos)
			if occupant == nil {
				moves = append(moves, targetPos)
			} else {
				if occupant.Color != piece.Color {
					moves = append(moves, targetPos)
				}
				break
			}
			targetPos = targetPos.offset(dir.X, dir.Y)
		}
	}
	return moves
}

func steppingMoves(b *Board, piece *Piece, from Position, dirs []Position) []Position {
	moves := []Position{}
	for _, dir := range dirs {
		targetPos := from.offset(dir.X, dir.Y)
		if boundaryCheck(targetPos) && (b.at(targetPos) == nil || b.at(targetPos).Color != piece.Color) {
			moves = append(moves, targetPos)
		}
	}
	return moves
}

// castlingMoves adds the two-square king moves. The king must not be in
// check and must not cross an attacked square; the landing square is left to
// the legality filter.
func castlingMoves(b *Board, piece *Piece, from Position) []Position {
	row := piece.Color.homeRank()
	if piece.HasMoved || from != (Position{X: 4, Y: row}) {
		return nil
	}
	enemy := piece.Color.Opponent()
	if isSquareAttacked(b, enemy, from) {
		return nil
	}
	moves := []Position{}
	sides := []struct {
		rookX   int
		between []int
		crossed int
	}{
		{rookX: 7, between: []int{5, 6}, crossed: 5},
		{rookX: 0, between: []int{1, 2, 3}, crossed: 3},
	}
	for _, side := range sides {
		rook := b.grid[row][side.rookX]
		if rook == nil || rook.Type != Rook || rook.Color != piece.Color || rook.HasMoved {
			continue
		}
		empty := true
		for _, x := range side.between {
			if b.grid[row][x] != nil {
				empty = false
				break
			}
		}
		if !empty || isSquareAttacked(b, enemy, Position{X: side.crossed, Y: row}) {
			continue
		}
		dir := 1
		if side.rookX < from.X {
			dir = -1
		}
		moves = append(moves, from.offset(2*dir, 0))
	}
	return moves
}

// isSquareAttacked reports whether any piece of attackingColor could capture
// on position. Castling never captures, so it is not considered.
func isSquareAttacked(b *Board, attackingColor Color, position Position) bool {
	for _, dir := range rookDirs {
		if p := firstOnRay(b, position, dir); p != nil && p.Color == attackingColor && (p.Type == Queen || p.Type == Rook) {
			return true
		}
	}
	for _, dir := range bishopDirs {
		if p := firstOnRay(b, position, dir); p != nil && p.Color == attackingColor && (p.Type == Queen || p.Type == Bishop) {
			return true
		}
	}
	if attackedByStep(b, attackingColor, position, knightDirs, Knight) || attackedByStep(b, attackingColor, position, kingDirs, King) {
		return true
	}
	// A pawn attacks diagonally forward, so look one rank behind from its side.
	back := -attackingColor.forward()
	for _, dx := range []int{-1, 1} {
		targetPos := position.offset(dx, back)
		if boundaryCheck(targetPos) {
			if p := b.at(targetPos); p != nil && p.Color == attackingColor && p.Type == Pawn {
				return true
			}
		}
	}
	return false
}

func firstOnRay(b *Board, from Position, dir Position) *Piece {
	targetPos := from.offset(dir.X, dir.Y)
	for boundaryCheck(targetPos) {
		if p := b.at(targetPos); p != nil {
			return p
		}
		targetPos = targetPos.offset(dir.X, dir.Y)
	}
	return nil
}

func attackedByStep(b *Board, attackingColor Color, position Position, dirs []Position, kind PieceType) bool {
	for _, dir := range dirs {
		targetPos := position.offset(dir.X, dir.Y)
		if boundaryCheck(targetPos) {
			if p := b.at(targetPos); p != nil && p.Color == attackingColor && p.Type == kind {
				return true
			}
		}
	}
	return false
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

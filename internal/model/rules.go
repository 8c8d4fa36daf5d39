package model

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// undo records what a speculative relocation displaced.
type undo struct {
	from, to        Position
	moved, captured *Piece
	passant         *Position
	passantCaptured *Piece
}

// simulate moves the piece on from to to without touching flags, the turn or
// the last move. An en passant victim is lifted off the board as well: with
// K, p, P and r on one rank, taking en passant opens the rank to the king, and
// only removing the victim lets InCheck see it.
func (b *Board) simulate(from, to Position) undo {
	u := undo{from: from, to: to, moved: b.at(from), captured: b.at(to)}
	if u.captured == nil && u.moved.Type == Pawn && from.X != to.X {
		if victim := b.enPassantVictim(u.moved, from, to); victim != nil {
			sq := Position{X: to.X, Y: from.Y}
			u.passant = &sq
			u.passantCaptured = victim
			b.set(sq, nil)
		}
	}
	b.set(to, u.moved)
	b.set(from, nil)
	return u
}

func (u undo) restore(b *Board) {
	b.set(u.from, u.moved)
	b.set(u.to, u.captured)
	if u.passant != nil {
		b.set(*u.passant, u.passantCaptured)
	}
}

// leavesKingSafe plays from→to speculatively and reports whether the mover's
// king is out of check afterwards. The board is restored before returning.
func (b *Board) leavesKingSafe(from, to Position) bool {
	color := b.at(from).Color
	u := b.simulate(from, to)
	defer u.restore(b)
	return !b.InCheck(color)
}

// LegalMoves returns the destinations of the piece on (x, y) that do not
// leave its king in check. Pieces of the side not on move have none.
func (b *Board) LegalMoves(x, y int) []Position {
	from := Position{X: x, Y: y}
	if !boundaryCheck(from) {
		return nil
	}
	piece := b.at(from)
	if piece == nil || piece.Color != b.turn {
		return nil
	}
	return b.legalMovesFrom(from)
}

func (b *Board) legalMovesFrom(from Position) []Position {
	legalMoves := []Position{}
	for _, to := range CandidateMoves(b, from.X, from.Y) {
		if b.leavesKingSafe(from, to) {
			legalMoves = append(legalMoves, to)
		}
	}
	return legalMoves
}

// AllLegalMoves lists every legal move of color, ignoring whose turn it is.
func (b *Board) AllLegalMoves(color Color) []SimpleMove {
	moves := []SimpleMove{}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if p := b.grid[y][x]; p != nil && p.Color == color {
				from := Position{X: x, Y: y}
				for _, to := range b.legalMovesFrom(from) {
					moves = append(moves, SimpleMove{From: from, To: to})
				}
			}
		}
	}
	return moves
}

func (b *Board) hasLegalMove(color Color) bool {
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if p := b.grid[y][x]; p != nil && p.Color == color && len(b.legalMovesFrom(Position{X: x, Y: y})) > 0 {
				return true
			}
		}
	}
	return false
}

// InCheck reports whether the king of color is attacked. A side without a
// king is never in check.
func (b *Board) InCheck(color Color) bool {
	king, ok := b.kingPosition(color)
	if !ok {
		return false
	}
	return isSquareAttacked(b, color.Opponent(), king)
}

// IsMate reports checkmate: color is in check and has no legal move.
func (b *Board) IsMate(color Color) bool {
	return b.InCheck(color) && !b.hasLegalMove(color)
}

// IsStalemate reports that color is not in check but cannot move.
func (b *Board) IsStalemate(color Color) bool {
	return !b.InCheck(color) && !b.hasLegalMove(color)
}

// Status classifies the position for the side to move.
func (b *Board) Status() Status {
	inCheck, canMove := b.InCheck(b.turn), b.hasLegalMove(b.turn)
	switch {
	case canMove && inCheck:
		return StatusCheck
	case canMove:
		return StatusOngoing
	case inCheck:
		return StatusCheckmate
	default:
		return StatusStalemate
	}
}

// Move plays from→to for the side on move and reports whether it was legal.
// Promotions are resolved through the board's PromotionChooser.
func (b *Board) Move(from, to Position) bool {
	_, err := b.Apply(from, to, "")
	return err == nil
}

// Apply validates and plays from→to. promotion selects the piece a pawn
// becomes on the last rank; an empty value defers to the PromotionChooser and
// anything unusable falls back to a queen. A rejected move leaves the board
// untouched.
func (b *Board) Apply(from, to Position, promotion PieceType) (*Ply, error) {
	if !boundaryCheck(from) || !boundaryCheck(to) {
		return nil, ErrOutOfBounds
	}
	piece := b.at(from)
	if piece == nil {
		return nil, ErrNoPiece
	}
	if piece.Color != b.turn {
		return nil, ErrWrongTurn
	}
	if !slices.Contains(b.legalMovesFrom(from), to) {
		return nil, fmt.Errorf("%s to %s: %w", from, to, ErrIllegalMove)
	}

	ply := &Ply{From: from, To: to}
	if captured := b.at(to); captured != nil {
		cp := *captured
		ply.CapturedPiece = &cp
	}

	switch piece.Type {
	case Pawn:
		b.handleEnPassant(piece, ply)
	case King:
		b.handleCastle(piece, ply)
	}

	b.set(to, piece)
	b.set(from, nil)
	if piece.Type == King || piece.Type == Rook {
		piece.HasMoved = true
	}

	if piece.Type == Pawn && to.Y == piece.Color.Opponent().homeRank() {
		ply.Promotion = b.promotionChoice(piece.Color, to, promotion)
		piece = &Piece{Type: ply.Promotion, Color: piece.Color, HasMoved: true}
		b.set(to, piece)
	}

	ply.Piece = *piece
	b.lastMove = &LastMove{From: from, To: to, Piece: *piece}
	b.turn = b.turn.Opponent()
	b.ply++
	return ply, nil
}

func (b *Board) handleEnPassant(piece *Piece, ply *Ply) {
	if ply.CapturedPiece != nil || ply.From.X == ply.To.X {
		return
	}
	if victim := b.enPassantVictim(piece, ply.From, ply.To); victim != nil {
		cp := *victim
		ply.CapturedPiece = &cp
		ply.EnPassant = true
		b.set(Position{X: ply.To.X, Y: ply.From.Y}, nil)
	}
}

func (b *Board) handleCastle(king *Piece, ply *Ply) {
	if abs(ply.To.X-ply.From.X) != 2 {
		return
	}
	row := ply.From.Y
	rookMove := &CastleRookMove{From: Position{X: 7, Y: row}, To: Position{X: 5, Y: row}}
	if ply.To.X < ply.From.X {
		rookMove = &CastleRookMove{From: Position{X: 0, Y: row}, To: Position{X: 3, Y: row}}
	}
	rook := b.at(rookMove.From)
	b.set(rookMove.From, nil)
	b.set(rookMove.To, rook)
	rook.HasMoved = true
	king.HasMoved = true
	ply.CastleRookMove = rookMove
}

func (b *Board) promotionChoice(color Color, at Position, requested PieceType) PieceType {
	if requested == "" && b.promote != nil {
		requested = b.promote(color, at)
	}
	if requested.IsPromotion() {
		return requested
	}
	return Queen
}

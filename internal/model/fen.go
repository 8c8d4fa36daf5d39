package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/notnil/chess"
)

const FENStartPos = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

var (
	fromLibType = map[chess.PieceType]PieceType{
		chess.King:   King,
		chess.Queen:  Queen,
		chess.Rook:   Rook,
		chess.Bishop: Bishop,
		chess.Knight: Knight,
		chess.Pawn:   Pawn,
	}
	toLibPiece = map[Piece]chess.Piece{
		{Type: King, Color: White}:   chess.WhiteKing,
		{Type: Queen, Color: White}:  chess.WhiteQueen,
		{Type: Rook, Color: White}:   chess.WhiteRook,
		{Type: Bishop, Color: White}: chess.WhiteBishop,
		{Type: Knight, Color: White}: chess.WhiteKnight,
		{Type: Pawn, Color: White}:   chess.WhitePawn,
		{Type: King, Color: Black}:   chess.BlackKing,
		{Type: Queen, Color: Black}:  chess.BlackQueen,
		{Type: Rook, Color: Black}:   chess.BlackRook,
		{Type: Bishop, Color: Black}: chess.BlackBishop,
		{Type: Knight, Color: Black}: chess.BlackKnight,
		{Type: Pawn, Color: Black}:   chess.BlackPawn,
	}
)

func fromLibColor(c chess.Color) Color {
	if c == chess.Black {
		return Black
	}
	return White
}

func toLibSquare(p Position) chess.Square {
	return chess.Square(p.Y*8 + p.X)
}

func fromLibSquare(sq chess.Square) Position {
	return Position{X: int(sq.File()), Y: int(sq.Rank())}
}

// ParseFEN builds a board from a FEN record. Castling rights become the
// HasMoved flags of kings and corner rooks, and an en passant square becomes
// the last move of the pawn that made it possible.
func ParseFEN(fen string) (*Board, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}
	pos := chess.NewGame(opt).Position()

	b := emptyBoard()
	kings := map[Color]int{}
	for sq, lp := range pos.Board().SquareMap() {
		kind, ok := fromLibType[lp.Type()]
		if !ok {
			continue
		}
		color := fromLibColor(lp.Color())
		if kind == King {
			kings[color]++
		}
		b.set(fromLibSquare(sq), &Piece{Type: kind, Color: color, HasMoved: kind == King || kind == Rook})
	}
	if kings[White] != 1 || kings[Black] != 1 {
		return nil, fmt.Errorf("%w: need exactly one king per side, got %d white and %d black", ErrInvalidFEN, kings[White], kings[Black])
	}

	b.turn = fromLibColor(pos.Turn())
	rights := pos.CastleRights()
	for _, color := range []Color{White, Black} {
		libColor := chess.White
		if color == Black {
			libColor = chess.Black
		}
		kingSide := rights.CanCastle(libColor, chess.KingSide)
		queenSide := rights.CanCastle(libColor, chess.QueenSide)
		row := color.homeRank()
		if king := b.grid[row][4]; (kingSide || queenSide) && king != nil && king.Type == King && king.Color == color {
			king.HasMoved = false
		}
		if rook := b.grid[row][7]; kingSide && rook != nil && rook.Type == Rook && rook.Color == color {
			rook.HasMoved = false
		}
		if rook := b.grid[row][0]; queenSide && rook != nil && rook.Type == Rook && rook.Color == color {
			rook.HasMoved = false
		}
	}

	fields := strings.Fields(fen)
	if len(fields) >= 4 {
		if target, ok := parseSquare(fields[3]); ok {
			dir := b.turn.Opponent().forward()
			from, to := target.offset(0, -dir), target.offset(0, dir)
			if boundaryCheck(from) && boundaryCheck(to) {
				if p := b.at(to); p != nil && p.Type == Pawn && p.Color != b.turn {
					b.lastMove = &LastMove{From: from, To: to, Piece: *p}
				}
			}
		}
	}
	if len(fields) >= 6 {
		if n, err := strconv.Atoi(fields[5]); err == nil && n > 0 {
			b.ply = (n - 1) * 2
		}
	}
	if b.turn == Black {
		b.ply++
	}
	return b, nil
}

// parseSquare reads coordinates like "e3". "-" and anything malformed give ok
// false.
func parseSquare(s string) (Position, bool) {
	if len(s) != 2 {
		return Position{}, false
	}
	p := Position{X: int(s[0] - 'a'), Y: int(s[1] - '1')}
	return p, boundaryCheck(p)
}

// FEN encodes the position. The halfmove clock is always 0.
func (b *Board) FEN() string {
	squares := map[chess.Square]chess.Piece{}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if p := b.grid[y][x]; p != nil {
				squares[toLibSquare(Position{X: x, Y: y})] = toLibPiece[Piece{Type: p.Type, Color: p.Color}]
			}
		}
	}
	placement := chess.NewBoard(squares).String()

	turn := "w"
	if b.turn == Black {
		turn = "b"
	}

	castling := ""
	for _, color := range []Color{White, Black} {
		for _, side := range []struct {
			rookX  int
			letter string
		}{{7, "k"}, {0, "q"}} {
			if b.canStillCastle(color, side.rookX) {
				if color == White {
					castling += strings.ToUpper(side.letter)
				} else {
					castling += side.letter
				}
			}
		}
	}
	if castling == "" {
		castling = "-"
	}

	enPassant := "-"
	if lm := b.lastMove; lm != nil && lm.Piece.Type == Pawn && abs(lm.To.Y-lm.From.Y) == 2 {
		enPassant = Position{X: lm.To.X, Y: (lm.To.Y + lm.From.Y) / 2}.String()
	}

	return fmt.Sprintf("%s %s %s %s 0 %d", placement, turn, castling, enPassant, b.ply/2+1)
}

func (b *Board) canStillCastle(color Color, rookX int) bool {
	row := color.homeRank()
	king, rook := b.grid[row][4], b.grid[row][rookX]
	return king != nil && king.Type == King && king.Color == color && !king.HasMoved &&
		rook != nil && rook.Type == Rook && rook.Color == color && !rook.HasMoved
}

package model

import "fmt"

type PieceType string

const (
	King   PieceType = "king"
	Queen  PieceType = "queen"
	Rook   PieceType = "rook"
	Bishop PieceType = "bishop"
	Knight PieceType = "knight"
	Pawn   PieceType = "pawn"
)

func (p PieceType) letter() string {
	switch p {
	case King:
		return "k"
	case Queen:
		return "q"
	case Rook:
		return "r"
	case Bishop:
		return "b"
	case Knight:
		return "n"
	case Pawn:
		return "p"
	}
	return ""
}

// IsPromotion reports whether a pawn may become p.
func (p PieceType) IsPromotion() bool {
	return p == Queen || p == Rook || p == Bishop || p == Knight
}

type Color string

const (
	White Color = "white"
	Black Color = "black"
)

func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

// forward is the rank direction pawns of this color advance in.
func (c Color) forward() int {
	if c == Black {
		return -1
	}
	return 1
}

func (c Color) homeRank() int {
	if c == Black {
		return 7
	}
	return 0
}

func (c Color) pawnRank() int {
	if c == Black {
		return 6
	}
	return 1
}

type Piece struct {
	Type     PieceType `json:"type"`
	Color    Color     `json:"color"`
	HasMoved bool      `json:"hasMoved"`
}

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Position) String() string {
	return fmt.Sprintf("%c%d", p.X+'a', p.Y+1)
}

func (p Position) offset(dx, dy int) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

func boundaryCheck(position Position) bool {
	return position.X >= 0 && position.X < 8 && position.Y >= 0 && position.Y < 8
}

// LastMove remembers the most recent move so pawns can capture en passant.
type LastMove struct {
	From  Position `json:"from"`
	To    Position `json:"to"`
	Piece Piece    `json:"piece"`
}

// PromotionChooser is asked which piece a pawn reaching the last rank becomes.
// Returning anything other than a queen, rook, bishop or knight selects a queen.
type PromotionChooser func(color Color, at Position) PieceType

// Board is one game's position. It is not safe for concurrent use; Game
// serialises access to it.
type Board struct {
	grid     [8][8]*Piece
	turn     Color
	lastMove *LastMove
	ply      int
	promote  PromotionChooser
}

var backRank = [8]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// NewBoard returns the standard starting position with White to move.
func NewBoard() *Board {
	b := emptyBoard()
	for x := 0; x < 8; x++ {
		b.grid[White.homeRank()][x] = &Piece{Type: backRank[x], Color: White}
		b.grid[White.pawnRank()][x] = &Piece{Type: Pawn, Color: White}
		b.grid[Black.homeRank()][x] = &Piece{Type: backRank[x], Color: Black}
		b.grid[Black.pawnRank()][x] = &Piece{Type: Pawn, Color: Black}
	}
	return b
}

func emptyBoard() *Board {
	return &Board{turn: White}
}

// SetPromotionChooser installs the callback used by Move when a pawn promotes.
func (b *Board) SetPromotionChooser(choose PromotionChooser) {
	b.promote = choose
}

func (b *Board) Turn() Color {
	return b.turn
}

// Ply is the number of moves applied to the position.
func (b *Board) Ply() int {
	return b.ply
}

func (b *Board) LastMove() *LastMove {
	if b.lastMove == nil {
		return nil
	}
	lm := *b.lastMove
	return &lm
}

// PieceAt returns a copy of the piece on the square, or nil.
func (b *Board) PieceAt(pos Position) *Piece {
	if !boundaryCheck(pos) || b.grid[pos.Y][pos.X] == nil {
		return nil
	}
	p := *b.grid[pos.Y][pos.X]
	return &p
}

func (b *Board) at(pos Position) *Piece {
	return b.grid[pos.Y][pos.X]
}

func (b *Board) set(pos Position, p *Piece) {
	b.grid[pos.Y][pos.X] = p
}

// Grid returns a copy of the board, rank 0 first.
func (b *Board) Grid() [8][8]*Piece {
	var out [8][8]*Piece
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if p := b.grid[y][x]; p != nil {
				cp := *p
				out[y][x] = &cp
			}
		}
	}
	return out
}

// Clone returns a deep copy that shares no pieces with b.
func (b *Board) Clone() *Board {
	c := &Board{
		grid:    b.Grid(),
		turn:    b.turn,
		ply:     b.ply,
		promote: b.promote,
	}
	c.lastMove = b.LastMove()
	return c
}

func (b *Board) kingPosition(color Color) (Position, bool) {
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if p := b.grid[y][x]; p != nil && p.Type == King && p.Color == color {
				return Position{X: x, Y: y}, true
			}
		}
	}
	return Position{}, false
}

// KingPosition reports where the king of color stands.
func (b *Board) KingPosition(color Color) (Position, bool) {
	return b.kingPosition(color)
}

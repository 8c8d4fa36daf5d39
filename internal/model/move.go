package model

// WSMove is a move request as sent by clients. An empty Promotion leaves the
// choice to the board's PromotionChooser.
type WSMove struct {
	From      Position  `json:"from"`
	To        Position  `json:"to"`
	Promotion PieceType `json:"promotion,omitempty"`
}

type CastleRookMove struct {
	From Position `json:"from"`
	To   Position `json:"to"`
}

// Ply describes a move after it was applied.
type Ply struct {
	Piece          Piece           `json:"piece"`
	From           Position        `json:"from"`
	To             Position        `json:"to"`
	CapturedPiece  *Piece          `json:"capturedPiece"`
	EnPassant      bool            `json:"enPassant"`
	CastleRookMove *CastleRookMove `json:"castleRookMove"`
	Promotion      PieceType       `json:"promotion,omitempty"`
}

// String renders the ply in coordinate form, e.g. "e2e4" or "a7a8q".
func (p Ply) String() string {
	return SimpleMove{From: p.From, To: p.To}.String() + p.Promotion.letter()
}

type SimpleMove struct {
	From Position `json:"from"`
	To   Position `json:"to"`
}

func (m SimpleMove) String() string {
	return m.From.String() + m.To.String()
}

type Status string

const (
	StatusOngoing   Status = "ongoing"
	StatusCheck     Status = "check"
	StatusCheckmate Status = "checkmate"
	StatusStalemate Status = "stalemate"
)

// Over reports whether the game has ended.
func (s Status) Over() bool {
	return s == StatusCheckmate || s == StatusStalemate
}

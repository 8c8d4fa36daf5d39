package model

import (
	"errors"
	"testing"
)

func TestFENRoundTrip(t *testing.T) {
	fens := []string{
		FENStartPos,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
		"rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3",
		"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1",
		"4k3/8/8/8/8/8/8/R3K2R w K - 0 12",
	}
	for _, fen := range fens {
		t.Run(fen, func(t *testing.T) {
			if got := mustFEN(t, fen).FEN(); got != fen {
				t.Fatalf("got %q", got)
			}
		})
	}
}

func TestParseFENRejects(t *testing.T) {
	cases := []struct {
		name string
		fen  string
	}{
		{"garbage", "not a fen"},
		{"seven ranks", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP w KQkq - 0 1"},
		{"no white king", "4k3/8/8/8/8/8/8/8 w - - 0 1"},
		{"two black kings", "k3k3/8/8/8/8/8/8/4K3 w - - 0 1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseFEN(tc.fen); !errors.Is(err, ErrInvalidFEN) {
				t.Fatalf("got %v want %v", err, ErrInvalidFEN)
			}
		})
	}
}

func TestParseFENState(t *testing.T) {
	b := mustFEN(t, "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1")
	if b.Turn() != Black {
		t.Fatalf("turn: got %s want black", b.Turn())
	}
	if b.Ply() != 1 {
		t.Fatalf("ply: got %d want 1", b.Ply())
	}
	lm := b.LastMove()
	if lm == nil || lm.From != sq("e2") || lm.To != sq("e4") || lm.Piece.Type != Pawn || lm.Piece.Color != White {
		t.Fatalf("last move: got %+v want white pawn e2e4", lm)
	}

	b = mustFEN(t, "4k3/8/8/8/8/8/8/R3K2R w Kk - 0 12")
	if b.Ply() != 22 {
		t.Fatalf("ply: got %d want 22", b.Ply())
	}
	if p := b.PieceAt(sq("a1")); p == nil || !p.HasMoved {
		t.Fatalf("a1 rook without rights should count as moved, got %+v", p)
	}
	if p := b.PieceAt(sq("h1")); p == nil || p.HasMoved {
		t.Fatalf("h1 rook with rights should be unmoved, got %+v", p)
	}
	if p := b.PieceAt(sq("e8")); p == nil || p.HasMoved {
		t.Fatalf("black king keeps its right even without a rook, got %+v", p)
	}
}

func TestFENTracksPlay(t *testing.T) {
	b := NewBoard()
	mustMove(t, b, "e2", "e4")
	if got, want := b.FEN(), "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"; got != want {
		t.Fatalf("after e4: got %q want %q", got, want)
	}
	mustMove(t, b, "e7", "e5")
	mustMove(t, b, "e1", "e2")
	if got, want := b.FEN(), "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPPKPPP/RNBQ1BNR b kq - 0 2"; got != want {
		t.Fatalf("after Ke2: got %q want %q", got, want)
	}
}

func TestEnPassantFieldSeedsLastMove(t *testing.T) {
	b := mustFEN(t, "rnbqkbnr/pppp1ppp/8/8/3Pp3/8/PPP1PPPP/RNBQKBNR b KQkq d3 0 2")
	lm := b.LastMove()
	if lm == nil || lm.From != sq("d2") || lm.To != sq("d4") {
		t.Fatalf("last move: got %+v want d2d4", lm)
	}
	if got := sortedSquares(b.LegalMoves(sq("e4").X, sq("e4").Y)); !equalStrings(got, []string{"d3", "e3"}) {
		t.Fatalf("e4 moves: got %v want [d3 e3]", got)
	}

	for _, fen := range []string{
		"rnbqkbnr/pppp1ppp/8/8/3Pp3/8/PPP1PPPP/RNBQKBNR b KQkq - 0 2",
		// no pawn stands in front of the square, so there is nothing to take
		"rnbqkbnr/pppp1ppp/8/8/4p3/8/PPP1PPPP/RNBQKBNR b KQkq d3 0 2",
	} {
		if lm := mustFEN(t, fen).LastMove(); lm != nil {
			t.Fatalf("%s: unexpected last move %+v", fen, lm)
		}
	}
}

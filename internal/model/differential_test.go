package model

import (
	"math/rand"
	"sort"
	"strings"
	"testing"

	"github.com/notnil/chess"
)

func moveSet(b *Board) []string {
	out := []string{}
	for _, m := range b.AllLegalMoves(b.Turn()) {
		out = append(out, m.String())
	}
	sort.Strings(out)
	return out
}

func libMoveSet(g *chess.Game) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, m := range g.ValidMoves() {
		key := fromLibSquare(m.S1()).String() + fromLibSquare(m.S2()).String()
		if !seen[key] {
			seen[key] = true
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

// TestRandomGamesAgreeWithNotnil plays seeded random games on both boards and
// compares the legal move lists, the placement and the final verdict after
// every ply.
func TestRandomGamesAgreeWithNotnil(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		b := NewBoard()
		game := chess.NewGame()

		for ply := 0; ply < 150; ply++ {
			ours, theirs := moveSet(b), libMoveSet(game)
			if !equalStrings(ours, theirs) {
				t.Fatalf("seed %d ply %d in %s:\n got  %v\n want %v", seed, ply, b.FEN(), ours, theirs)
			}
			placement := strings.Fields(b.FEN())[0]
			if want := game.Position().Board().String(); placement != want {
				t.Fatalf("seed %d ply %d: placement %s want %s", seed, ply, placement, want)
			}

			if len(ours) == 0 {
				switch game.Position().Status() {
				case chess.Checkmate:
					if b.Status() != StatusCheckmate {
						t.Fatalf("seed %d: got %s want checkmate in %s", seed, b.Status(), b.FEN())
					}
				case chess.Stalemate:
					if b.Status() != StatusStalemate {
						t.Fatalf("seed %d: got %s want stalemate in %s", seed, b.Status(), b.FEN())
					}
				default:
					t.Fatalf("seed %d: no moves but library reports %s", seed, game.Position().Status())
				}
				break
			}

			pick := ours[rng.Intn(len(ours))]
			from, to := sq(pick[:2]), sq(pick[2:])
			if _, err := b.Apply(from, to, Queen); err != nil {
				t.Fatalf("seed %d: apply %s: %v", seed, pick, err)
			}
			if err := game.Move(libMove(t, game, pick)); err != nil {
				t.Fatalf("seed %d: library rejected %s: %v", seed, pick, err)
			}
		}
	}
}

// libMove finds the library's move for a coordinate pair, promoting to a
// queen when there is a choice.
func libMove(t *testing.T, g *chess.Game, coords string) *chess.Move {
	t.Helper()
	for _, m := range g.ValidMoves() {
		if fromLibSquare(m.S1()).String()+fromLibSquare(m.S2()).String() != coords {
			continue
		}
		if m.Promo() == chess.NoPieceType || m.Promo() == chess.Queen {
			return m
		}
	}
	t.Fatalf("no library move for %s", coords)
	return nil
}

func TestPositionsAgreeWithNotnil(t *testing.T) {
	fens := []string{
		FENStartPos,
		fenKiwipete,
		fenPos3,
		fenPos4,
		fenPos5,
		"rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3",
		"r3kr2/8/8/8/8/8/8/R3K2R w KQq - 0 1",
		"4k3/4r3/8/8/8/8/8/R3K2R w KQ - 0 1",
		"k7/8/1Q6/8/8/8/8/2K5 b - - 0 1",
	}
	for _, fen := range fens {
		t.Run(fen, func(t *testing.T) {
			opt, err := chess.FEN(fen)
			if err != nil {
				t.Fatalf("library FEN: %v", err)
			}
			game := chess.NewGame(opt)
			b := mustFEN(t, fen)
			if ours, theirs := moveSet(b), libMoveSet(game); !equalStrings(ours, theirs) {
				t.Fatalf("got  %v\nwant %v", ours, theirs)
			}
		})
	}
}

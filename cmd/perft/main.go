package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/benbeisheim/chess-rules-backend/internal/model"
	"github.com/pkg/profile"
	"golang.org/x/exp/maps"
)

func main() {
	fen := flag.String("fen", model.FENStartPos, "FEN string (defaults to initial position)")
	depth := flag.Int("depth", 0, "Perft depth (required)")
	divide := flag.Bool("divide", false, "Print per-move node counts at root")
	prof := flag.String("profile", "", "Profile the run: cpu or mem")
	profDir := flag.String("profile-dir", ".", "Directory for profile output")
	flag.Parse()

	if *depth <= 0 {
		fmt.Fprintln(os.Stderr, "-depth must be > 0")
		os.Exit(2)
	}

	board, err := model.ParseFEN(*fen)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ParseFEN error: %v\n", err)
		os.Exit(2)
	}

	switch *prof {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(*profDir), profile.Quiet).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(*profDir), profile.Quiet).Stop()
	default:
		fmt.Fprintf(os.Stderr, "unknown -profile %q\n", *prof)
		os.Exit(2)
	}

	if *divide {
		div := model.PerftDivide(board, *depth)
		moves := maps.Keys(div)
		sort.Strings(moves)
		var sum uint64
		for _, m := range moves {
			fmt.Printf("%s: %d\n", m, div[m])
			sum += div[m]
		}
		fmt.Printf("Total: %d\n", sum)
		return
	}

	start := time.Now()
	nodes := model.Perft(board, *depth)
	elapsed := time.Since(start)
	fmt.Printf("depth %d \tnodes %d \ttime %s \tnps %.0f\n", *depth, nodes, elapsed, float64(nodes)/elapsed.Seconds())
}

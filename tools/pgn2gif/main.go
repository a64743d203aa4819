package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/razzie/fig/pkg/chessgif"
)

func main() {
	fen := flag.String("fen", "", "Render a single FEN position instead of a PGN file.")
	flag.Parse()

	var game string
	switch {
	case len(*fen) > 0 && flag.NArg() == 1:
		game = "fen:" + *fen
	case len(*fen) == 0 && flag.NArg() == 2:
		pgn, err := os.ReadFile(flag.Arg(0))
		if err != nil {
			log.Fatal(err)
		}
		game = "pgn:" + string(pgn)
	default:
		fmt.Printf("Usage: %s [PGN file] [output GIF]\n       %s -fen [FEN] [output GIF]\n", os.Args[0], os.Args[0])
		os.Exit(1)
	}
	dest := flag.Arg(flag.NArg() - 1)

	g, err := chessgif.ParseGame(game)
	if err != nil {
		log.Fatal(err)
	}

	out, err := os.Create(dest)
	if err != nil {
		log.Fatal(err)
	}
	defer out.Close()
	if err := chessgif.WriteGIF(out, g); err != nil {
		log.Fatal(err)
	}
	fmt.Println(len(g.Positions()), "positions written to", dest)
}

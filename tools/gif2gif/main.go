package main

import (
	"fmt"
	"log"
	"os"

	"github.com/razzie/fig/pkg/fig"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Printf("Usage: %s [input GIF] [output GIF]\n", os.Args[0])
		os.Exit(1)
	}

	in, err := os.Open(os.Args[1])
	if err != nil {
		log.Fatal(err)
	}
	anim, err := fig.LoadGIF(in)
	in.Close()
	if err != nil {
		log.Fatal("error while reading: ", err)
	}

	out, err := os.Create(os.Args[2])
	if err != nil {
		log.Fatal(err)
	}
	defer out.Close()
	if err := fig.SaveGIF(out, anim); err != nil {
		log.Fatal("error while saving: ", err)
	}
}

package main

import (
	"flag"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/razzie/fig/pkg/fig"
)

func main() {
	frames := flag.Int("frames", 128, "Number of frames.")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Random seed.")
	flag.Parse()

	dest := "out.gif"
	if flag.NArg() > 0 {
		dest = flag.Arg(0)
	}

	anim := generate(rand.New(rand.NewSource(*seed)), *frames)

	out, err := os.Create(dest)
	if err != nil {
		log.Fatalf("failed to open output file '%s': %v", dest, err)
	}
	defer out.Close()
	if err := fig.SaveGIF(out, anim); err != nil {
		log.Fatal("error while saving: ", err)
	}
}

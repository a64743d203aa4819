package main

import (
	"bufio"
	"flag"
	"fmt"
	"image"
	"io"
	"log"
	"os"

	"github.com/razzie/fig/pkg/fig"
)

func main() {
	scale := flag.Int("scale", 1, "Integer scale factor of the written frames.")
	prefix := flag.String("prefix", "out", "Output file name prefix.")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Printf("Usage: %s [-scale n] [-prefix out] [GIF file]\n", os.Args[0])
		os.Exit(1)
	}

	anim, err := readFile(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}
	for i, f := range anim.Frames() {
		path := fmt.Sprintf("%s.%03d.ppm", *prefix, i)
		if err := writeFile(path, f.ScaledImage(*scale)); err != nil {
			log.Fatal(err)
		}
	}
	log.Printf("[%s] %d frames written", flag.Arg(0), anim.FrameCount())
}

func readFile(path string) (*fig.Animation, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()
	return fig.LoadGIF(in)
}

func writeFile(path string, img *image.NRGBA) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()
	return writePPM(out, img)
}

// writePPM writes img as a binary PPM. Fully transparent pixels come out
// magenta.
func writePPM(w io.Writer, img *image.NRGBA) error {
	bw := bufio.NewWriter(w)
	b := img.Bounds()
	fmt.Fprintf(bw, "P6 %d %d 255 ", b.Dx(), b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.NRGBAAt(x, y)
			if c.A == 0 {
				bw.Write([]byte{0xFF, 0x00, 0xFF})
			} else {
				bw.Write([]byte{c.R, c.G, c.B})
			}
		}
	}
	return bw.Flush()
}

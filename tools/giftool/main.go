package main

import (
	"flag"
	"fmt"
	"image/png"
	"os"

	"github.com/razzie/fig/pkg/connector"
)

func main() {
	frame := flag.Int("frame", -1, "Save the composited frame with this index as PNG.")
	out := flag.String("out", "frame.png", "Output file of -frame.")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Printf("Usage: %s [-frame n [-out file.png]] [view URL]\n", os.Args[0])
		os.Exit(1)
	}

	conn, err := connector.NewConnection(flag.Arg(0))
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer conn.Close()

	info, err := conn.Info()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	fmt.Printf("%s: %dx%d, %d colors, loop count %d\n", info.ID, info.Width, info.Height, info.Colors, info.LoopCount)
	for i, f := range info.Frames {
		fmt.Printf("%4d: %dx%d+%d+%d delay=%d disposal=%s", i, f.Width, f.Height, f.X, f.Y, f.Delay, f.Disposal)
		if f.Transparent {
			fmt.Printf(" transparent=%d", f.TransparencyIndex)
		}
		if f.LocalColors > 0 {
			fmt.Printf(" local colors=%d", f.LocalColors)
		}
		fmt.Println()
	}
	fmt.Println("Viewers:", conn.Viewers.Load())

	if *frame < 0 {
		return
	}
	img, err := conn.Frame(*frame)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	f, err := os.Create(*out)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

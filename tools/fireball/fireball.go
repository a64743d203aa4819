package main

import (
	"math/rand"

	"github.com/razzie/fig/pkg/fig"
)

const size = 128

var pico8Palette = []uint32{
	0xFF000000, 0xFF1D2B53, 0xFF7E2553, 0xFF008751,
	0xFFAB5236, 0xFF5F574F, 0xFFC2C3C7, 0xFFFFF1E8,
	0xFFFF004D, 0xFFFFA300, 0xFFFFF024, 0xFF00E756,
	0xFF29ADFF, 0xFF83769C, 0xFFFF77A8, 0xFFFFCCAA,
}

// startingColors are the palette indexes of fresh sparks, hot colors first.
var startingColors = []uint8{
	10, 10, 10, 10,
	9, 9, 9, 9, 9, 9, 9,
	4, 4, 4,
	2, 2, 2, 2,
	1,
}

// generate builds an animation of drifting sparks that cool down towards
// black. Each frame starts as a copy of the previous one.
func generate(rng *rand.Rand, frames int) *fig.Animation {
	anim := fig.NewAnimation(size, size)
	pal := anim.Palette()
	pal.Resize(len(pico8Palette))
	copy(pal.Colors(), pico8Palette)

	var prev *fig.Frame
	for n := 0; n < frames; n++ {
		f := anim.AddFrame()
		f.ResizeIndexed(size, size)
		f.Delay = 6
		pixels := f.Indexed()
		if prev != nil {
			copy(pixels, prev.Indexed())
		} else {
			clear(pixels)
		}

		for i := 0; i < size; i++ {
			for j := 0; j < size; j++ {
				c := pixels[i*size+j]
				if c == 0 {
					continue
				}
				x, y := j, i
				switch r := rng.Intn(5); {
				case r == 0 && x > 0:
					x--
				case r == 1 && x < size-1:
					x++
				case r == 2 && y > 0:
					y--
				case r == 3 && y < size-1:
					y++
				}
				if rng.Intn(8) < 4 {
					c /= 2
				}
				pixels[y*size+x] = c
			}
		}

		for k := rng.Intn(4) + 4; k != 0; k-- {
			s := rng.Intn(8) + 8
			y := rng.Intn(size - s)
			x := rng.Intn(size - s)
			for i := 0; i < s; i++ {
				for j := 0; j < s; j++ {
					pixels[(y+i)*size+x+j] = startingColors[rng.Intn(len(startingColors))]
				}
			}
		}
		prev = f
	}
	return anim
}

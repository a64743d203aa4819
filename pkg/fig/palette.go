package fig

import (
	"image/color"
)

// PackColor packs 8-bit channels as 0xAARRGGBB.
func PackColor(r, g, b, a uint8) uint32 {
	return uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

// UnpackColor is the inverse of PackColor.
func UnpackColor(c uint32) (r, g, b, a uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c), uint8(c >> 24)
}

// Palette is an ordered list of packed 0xAARRGGBB colors.
type Palette struct {
	colors []uint32
}

func NewPalette(n int) *Palette {
	p := &Palette{}
	p.Resize(n)
	return p
}

func (p *Palette) Len() int {
	return len(p.colors)
}

// Colors returns the backing slice. Writes through it change the palette.
func (p *Palette) Colors() []uint32 {
	return p.colors
}

func (p *Palette) Get(i int) (uint32, error) {
	if i < 0 || i >= len(p.colors) {
		return 0, ErrIndexOutOfRange
	}
	return p.colors[i], nil
}

func (p *Palette) Set(i int, c uint32) error {
	if i < 0 || i >= len(p.colors) {
		return ErrIndexOutOfRange
	}
	p.colors[i] = c
	return nil
}

// Resize changes the number of colors. Shrinking keeps the backing array,
// resizing to zero releases it. Entries added by growing must be set before
// they are read.
func (p *Palette) Resize(n int) error {
	switch {
	case n < 0:
		return ErrInvalidSize
	case n == 0:
		p.colors = nil
	case n <= cap(p.colors):
		p.colors = p.colors[:n]
	default:
		colors := make([]uint32, n)
		copy(colors, p.colors)
		p.colors = colors
	}
	return nil
}

// ToColorPalette converts p for use with the image package.
func (p *Palette) ToColorPalette() color.Palette {
	cp := make(color.Palette, len(p.colors))
	for i, c := range p.colors {
		r, g, b, a := UnpackColor(c)
		cp[i] = color.NRGBA{R: r, G: g, B: b, A: a}
	}
	return cp
}

// PaletteFromColors builds a Palette from cp. At most 256 colors fit into a
// GIF color table, larger palettes are rejected.
func PaletteFromColors(cp color.Palette) (*Palette, error) {
	if len(cp) > 256 {
		return nil, ErrTooManyColors
	}
	p := NewPalette(len(cp))
	for i, c := range cp {
		nc := color.NRGBAModel.Convert(c).(color.NRGBA)
		p.colors[i] = PackColor(nc.R, nc.G, nc.B, nc.A)
	}
	return p, nil
}

package fig

import (
	"image"

	"golang.org/x/image/draw"
)

// Frame is one image of an animation: an indexed surface placed at (X, Y) on
// the canvas and a render surface holding the composited canvas as it looks
// once this frame is drawn.
type Frame struct {
	X, Y int
	// Delay is the display time in 1/100 s.
	Delay    int
	Disposal Disposal

	Transparent       bool
	TransparencyIndex uint8

	palette Palette

	width, height int
	indexed       []uint8

	renderWidth, renderHeight int
	render                    []uint32
}

func resizeSurface[T any](s []T, w, h int) ([]T, error) {
	if w < 0 || h < 0 {
		return s, ErrInvalidSize
	}
	n := w * h
	if n <= cap(s) {
		return s[:n], nil
	}
	return make([]T, n), nil
}

// ResizeIndexed sets the size of the indexed surface. Its contents are
// unspecified afterwards.
func (f *Frame) ResizeIndexed(w, h int) error {
	s, err := resizeSurface(f.indexed, w, h)
	if err != nil {
		return err
	}
	f.indexed, f.width, f.height = s, w, h
	return nil
}

// ResizeRender sets the size of the render surface. Its contents are
// unspecified afterwards.
func (f *Frame) ResizeRender(w, h int) error {
	s, err := resizeSurface(f.render, w, h)
	if err != nil {
		return err
	}
	f.render, f.renderWidth, f.renderHeight = s, w, h
	return nil
}

func (f *Frame) Width() int        { return f.width }
func (f *Frame) Height() int       { return f.height }
func (f *Frame) RenderWidth() int  { return f.renderWidth }
func (f *Frame) RenderHeight() int { return f.renderHeight }

// Bounds returns the region of the canvas covered by the indexed surface.
func (f *Frame) Bounds() image.Rectangle {
	return image.Rect(f.X, f.Y, f.X+f.width, f.Y+f.height)
}

// Indexed returns the indexed pixels row by row.
func (f *Frame) Indexed() []uint8 {
	return f.indexed
}

// Render returns the composited canvas row by row.
func (f *Frame) Render() []uint32 {
	return f.render
}

func (f *Frame) IndexAt(x, y int) (uint8, error) {
	if x < 0 || y < 0 || x >= f.width || y >= f.height {
		return 0, ErrIndexOutOfRange
	}
	return f.indexed[y*f.width+x], nil
}

func (f *Frame) SetIndexAt(x, y int, v uint8) error {
	if x < 0 || y < 0 || x >= f.width || y >= f.height {
		return ErrIndexOutOfRange
	}
	f.indexed[y*f.width+x] = v
	return nil
}

func (f *Frame) ColorAt(x, y int) (uint32, error) {
	if x < 0 || y < 0 || x >= f.renderWidth || y >= f.renderHeight {
		return 0, ErrIndexOutOfRange
	}
	return f.render[y*f.renderWidth+x], nil
}

// Palette returns the local palette. An empty local palette means the frame
// uses the animation's palette.
func (f *Frame) Palette() *Palette {
	return &f.palette
}

// RenderPalette returns the palette used to draw f as part of a.
func (f *Frame) RenderPalette(a *Animation) *Palette {
	if f.palette.Len() > 0 {
		return &f.palette
	}
	return &a.palette
}

// Image returns a copy of the render surface.
func (f *Frame) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, f.renderWidth, f.renderHeight))
	for i, c := range f.render {
		r, g, b, a := UnpackColor(c)
		img.Pix[4*i+0] = r
		img.Pix[4*i+1] = g
		img.Pix[4*i+2] = b
		img.Pix[4*i+3] = a
	}
	return img
}

// ScaledImage returns the render surface enlarged by an integer factor with
// nearest-neighbor sampling. Factors below 2 return Image().
func (f *Frame) ScaledImage(scale int) *image.NRGBA {
	src := f.Image()
	if scale < 2 {
		return src
	}
	dst := image.NewNRGBA(image.Rect(0, 0, f.renderWidth*scale, f.renderHeight*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

package fig

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"io"
	"math/rand"
	"testing"

	"github.com/razzie/fig/pkg/fig/internal/lzw"
)

// gifBuilder writes hand-made GIF streams.
type gifBuilder struct {
	bytes.Buffer
}

func (b *gifBuilder) le16(v int) {
	b.WriteByte(byte(v))
	b.WriteByte(byte(v >> 8))
}

// header writes the signature, the screen descriptor and a global color
// table of 2^depth colors when depth > 0.
func (b *gifBuilder) header(width, height, depth int) {
	b.WriteString("GIF89a")
	b.le16(width)
	b.le16(height)
	if depth > 0 {
		b.WriteByte(0x80 | byte(depth-1))
	} else {
		b.WriteByte(0)
	}
	b.WriteByte(0)
	b.WriteByte(0)
	for i := 0; i < 1<<depth && depth > 0; i++ {
		b.Write([]byte{byte(i * 40), byte(i * 20), byte(i * 10)})
	}
}

func (b *gifBuilder) graphicControl(fields byte, delay int, index byte) {
	b.Write([]byte{0x21, 0xF9, 0x04, fields})
	b.le16(delay)
	b.Write([]byte{index, 0})
}

func (b *gifBuilder) image(t *testing.T, x, y, w, h int, fields byte, litWidth int, pixels []byte) {
	t.Helper()
	b.WriteByte(0x2C)
	b.le16(x)
	b.le16(y)
	b.le16(w)
	b.le16(h)
	b.WriteByte(fields)
	if err := lzw.Encode(&b.Buffer, litWidth, pixels); err != nil {
		t.Fatal(err)
	}
}

func randomIndices(rng *rand.Rand, n, colors int) []uint8 {
	pixels := make([]uint8, n)
	for i := range pixels {
		pixels[i] = uint8(rng.Intn(colors))
	}
	return pixels
}

func testAnimation(t *testing.T) *Animation {
	rng := rand.New(rand.NewSource(1))
	a := NewAnimation(8, 6)
	a.SetLoopCount(3)
	setColors(t, a.Palette(), red, green, blue, white)

	f0 := addFrame(t, a, 0, 0, 8, 6, randomIndices(rng, 48, 4)...)
	f0.Disposal = DisposalNone
	f0.Delay = 10

	f1 := addFrame(t, a, 2, 1, 3, 3, randomIndices(rng, 9, 6)...)
	setColors(t, f1.Palette(), red, green, blue, white, black, 0xFF808080)
	f1.Transparent = true
	f1.TransparencyIndex = 5
	f1.Disposal = DisposalBackground
	f1.Delay = 20

	f2 := addFrame(t, a, 4, 2, 4, 4, randomIndices(rng, 16, 4)...)
	f2.Disposal = DisposalPrevious
	f2.Delay = 5
	return a
}

func encode(t *testing.T, a *Animation) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := SaveGIF(&buf, a); err != nil {
		t.Fatalf("SaveGIF: %v", err)
	}
	return buf.Bytes()
}

func checkPalettePrefix(t *testing.T, name string, got, want *Palette) {
	t.Helper()
	if got.Len() < want.Len() {
		t.Fatalf("%s has %d colors, want at least %d", name, got.Len(), want.Len())
	}
	for i, c := range got.Colors() {
		w := black
		if i < want.Len() {
			w, _ = want.Get(i)
		}
		if c != w {
			t.Errorf("%s color %d = %#08x, want %#08x", name, i, c, w)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	a := testAnimation(t)
	data := encode(t, a)

	b, err := LoadGIF(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("LoadGIF: %v", err)
	}
	if b.Width() != a.Width() || b.Height() != a.Height() {
		t.Errorf("canvas = %dx%d, want %dx%d", b.Width(), b.Height(), a.Width(), a.Height())
	}
	if b.LoopCount() != a.LoopCount() {
		t.Errorf("loop count = %d, want %d", b.LoopCount(), a.LoopCount())
	}
	checkPalettePrefix(t, "global palette", b.Palette(), a.Palette())
	if b.FrameCount() != a.FrameCount() {
		t.Fatalf("%d frames, want %d", b.FrameCount(), a.FrameCount())
	}

	for i, want := range a.Frames() {
		got := b.Frames()[i]
		if got.Bounds() != want.Bounds() {
			t.Errorf("frame %d bounds = %v, want %v", i, got.Bounds(), want.Bounds())
		}
		if got.Delay != want.Delay || got.Disposal != want.Disposal {
			t.Errorf("frame %d delay/disposal = %d/%v, want %d/%v", i, got.Delay, got.Disposal, want.Delay, want.Disposal)
		}
		if got.Transparent != want.Transparent || (want.Transparent && got.TransparencyIndex != want.TransparencyIndex) {
			t.Errorf("frame %d transparency = %v/%d, want %v/%d", i, got.Transparent, got.TransparencyIndex, want.Transparent, want.TransparencyIndex)
		}
		if !bytes.Equal(got.Indexed(), want.Indexed()) {
			t.Errorf("frame %d indexed pixels differ", i)
		}
		if want.Palette().Len() > 0 {
			checkPalettePrefix(t, "local palette", got.Palette(), want.Palette())
		} else if got.Palette().Len() != 0 {
			t.Errorf("frame %d got a local palette", i)
		}
	}

	// The loaded animation is composited the same way.
	if err := a.Render(); err != nil {
		t.Fatal(err)
	}
	for i, f := range b.Frames() {
		checkRender(t, f, a.Frames()[i].Render())
	}

	// Re-encoding the loaded animation gives the same bytes.
	if again := encode(t, b); !bytes.Equal(again, data) {
		t.Error("re-encoded stream differs")
	}
}

func TestSaveDecodesWithImageGIF(t *testing.T) {
	a := testAnimation(t)
	g, err := gif.DecodeAll(bytes.NewReader(encode(t, a)))
	if err != nil {
		t.Fatalf("image/gif: %v", err)
	}
	if g.LoopCount != a.LoopCount() {
		t.Errorf("loop count = %d, want %d", g.LoopCount, a.LoopCount())
	}
	if len(g.Image) != a.FrameCount() {
		t.Fatalf("%d frames, want %d", len(g.Image), a.FrameCount())
	}
	wantDisposal := []byte{gif.DisposalNone, gif.DisposalBackground, gif.DisposalPrevious}
	for i, f := range a.Frames() {
		m := g.Image[i]
		if m.Bounds() != f.Bounds() {
			t.Errorf("frame %d bounds = %v, want %v", i, m.Bounds(), f.Bounds())
		}
		if !bytes.Equal(m.Pix, f.Indexed()) {
			t.Errorf("frame %d pixels differ", i)
		}
		if g.Delay[i] != f.Delay || g.Disposal[i] != wantDisposal[i] {
			t.Errorf("frame %d delay/disposal = %d/%d", i, g.Delay[i], g.Disposal[i])
		}
	}
}

func TestLoadImageGIFOutput(t *testing.T) {
	p := color.Palette{
		color.RGBA{R: 0xFF, A: 0xFF},
		color.RGBA{G: 0xFF, A: 0xFF},
		color.RGBA{B: 0xFF, A: 0xFF},
		color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF},
	}
	m0 := image.NewPaletted(image.Rect(0, 0, 4, 4), p)
	m1 := image.NewPaletted(image.Rect(1, 1, 3, 3), p)
	for i := range m0.Pix {
		m0.Pix[i] = uint8(i % 4)
	}
	for i := range m1.Pix {
		m1.Pix[i] = 3 - uint8(i%4)
	}
	var buf bytes.Buffer
	err := gif.EncodeAll(&buf, &gif.GIF{
		Image:     []*image.Paletted{m0, m1},
		Delay:     []int{5, 7},
		Disposal:  []byte{gif.DisposalNone, gif.DisposalBackground},
		LoopCount: 2,
	})
	if err != nil {
		t.Fatal(err)
	}

	a, err := LoadGIF(&buf)
	if err != nil {
		t.Fatalf("LoadGIF: %v", err)
	}
	if a.Width() != 4 || a.Height() != 4 || a.LoopCount() != 2 || a.FrameCount() != 2 {
		t.Fatalf("canvas %dx%d, loop %d, %d frames", a.Width(), a.Height(), a.LoopCount(), a.FrameCount())
	}
	f0, f1 := a.Frames()[0], a.Frames()[1]
	if !bytes.Equal(f0.Indexed(), m0.Pix) || !bytes.Equal(f1.Indexed(), m1.Pix) {
		t.Error("indexed pixels differ")
	}
	if f1.Bounds() != m1.Bounds() {
		t.Errorf("frame 1 bounds = %v", f1.Bounds())
	}
	if f0.Delay != 5 || f1.Delay != 7 || f0.Disposal != DisposalNone || f1.Disposal != DisposalBackground {
		t.Errorf("delays %d %d, disposals %v %v", f0.Delay, f1.Delay, f0.Disposal, f1.Disposal)
	}
	want := []uint32{red, green, blue, white}
	checkPalettePrefix(t, "frame 0 palette", f0.RenderPalette(a), &Palette{colors: want})
	if c, _ := f1.ColorAt(1, 1); c != white {
		t.Errorf("frame 1 render at (1,1) = %#08x", c)
	}
}

func TestSingleFrameTransparency(t *testing.T) {
	a := NewAnimation(2, 1)
	setColors(t, a.Palette(), red, green)
	f := addFrame(t, a, 0, 0, 2, 1, 0, 1)
	f.Transparent = true
	f.TransparencyIndex = 1

	data := encode(t, a)
	if bytes.Contains(data, []byte(netscapeID)) {
		t.Error("single frame animation has a looping extension")
	}
	b, err := LoadGIF(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	got := b.Frames()[0]
	if !got.Transparent || got.TransparencyIndex != 1 {
		t.Fatalf("transparency = %v/%d", got.Transparent, got.TransparencyIndex)
	}
	checkRender(t, got, []uint32{red, 0})
}

func TestLoadEmpty(t *testing.T) {
	var b gifBuilder
	b.header(5, 5, 1)
	b.WriteByte(0x3B)
	a, err := LoadGIF(&b)
	if err != nil {
		t.Fatal(err)
	}
	if a.FrameCount() != 0 || a.Width() != 5 || a.Palette().Len() != 2 {
		t.Fatalf("%d frames, width %d, %d colors", a.FrameCount(), a.Width(), a.Palette().Len())
	}
}

func TestLoadExtensions(t *testing.T) {
	var b gifBuilder
	b.header(2, 4, 2)
	// Comment.
	b.Write([]byte{0x21, 0xFE, 3, 'f', 'i', 'g', 0})
	// Looping.
	b.Write([]byte{0x21, 0xFF, 11})
	b.WriteString("NETSCAPE2.0")
	b.Write([]byte{3, 1, 5, 0, 0})
	// Unknown application.
	b.Write([]byte{0x21, 0xFF, 11})
	b.WriteString("XMP DataXMP")
	b.Write([]byte{2, 1, 2, 1, 9, 0})
	// Plain text.
	b.Write([]byte{0x21, 0x01, 12, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 4, 't', 'e', 'x', 't', 0})
	// Transparent index 3, restore to background, 0.07 s.
	b.graphicControl(0x01|2<<2, 7, 3)
	b.image(t, 0, 0, 2, 4, 0, 2, []byte{0, 0, 1, 1, 2, 2, 3, 3})
	// Rows arrive in the order 0, 2, 1, 3.
	b.image(t, 0, 0, 2, 4, 0x40, 2, []byte{0, 0, 2, 2, 1, 1, 3, 3})
	b.WriteByte(0x3B)

	a, err := LoadGIF(&b)
	if err != nil {
		t.Fatal(err)
	}
	if a.LoopCount() != 5 {
		t.Errorf("loop count = %d", a.LoopCount())
	}
	if a.FrameCount() != 2 {
		t.Fatalf("%d frames", a.FrameCount())
	}
	for i, f := range a.Frames() {
		if !f.Transparent || f.TransparencyIndex != 3 || f.Delay != 7 || f.Disposal != DisposalBackground {
			t.Errorf("frame %d: transparency %v/%d, delay %d, disposal %v",
				i, f.Transparent, f.TransparencyIndex, f.Delay, f.Disposal)
		}
	}
	if got := a.Frames()[1].Indexed(); !bytes.Equal(got, []byte{0, 0, 1, 1, 2, 2, 3, 3}) {
		t.Errorf("interlaced frame = %v", got)
	}
}

func TestLoadMalformed(t *testing.T) {
	tests := []struct {
		name  string
		build func(t *testing.T, b *gifBuilder)
		want  error
	}{
		{"bad signature", func(t *testing.T, b *gifBuilder) {
			b.WriteString("GIF88a\x01\x00\x01\x00\x00\x00\x00\x3B")
		}, ErrBadSignature},
		{"truncated header", func(t *testing.T, b *gifBuilder) {
			b.WriteString("GIF89a\x01")
		}, io.ErrUnexpectedEOF},
		{"truncated palette", func(t *testing.T, b *gifBuilder) {
			b.header(1, 1, 0)
			b.Truncate(10)
			b.Write([]byte{0x81, 0, 0, 1, 2, 3})
		}, io.ErrUnexpectedEOF},
		{"missing terminator", func(t *testing.T, b *gifBuilder) {
			b.header(1, 1, 1)
		}, io.ErrUnexpectedEOF},
		{"unknown block", func(t *testing.T, b *gifBuilder) {
			b.header(1, 1, 1)
			b.WriteByte(0x99)
		}, ErrUnknownBlock},
		{"graphics control size", func(t *testing.T, b *gifBuilder) {
			b.header(1, 1, 1)
			b.Write([]byte{0x21, 0xF9, 5, 0, 0, 0, 0, 0, 0, 0x3B})
		}, ErrGraphicsControl},
		{"invalid code", func(t *testing.T, b *gifBuilder) {
			b.header(2, 2, 1)
			b.Write([]byte{0x2C, 0, 0, 0, 0, 2, 0, 2, 0, 0})
			b.Write([]byte{2, 1, 0x3C, 0, 0x3B})
		}, ErrInvalidCode},
		{"code size", func(t *testing.T, b *gifBuilder) {
			b.header(2, 2, 1)
			b.Write([]byte{0x2C, 0, 0, 0, 0, 2, 0, 2, 0, 0})
			b.Write([]byte{13, 0, 0x3B})
		}, ErrCodeSize},
		{"truncated image data", func(t *testing.T, b *gifBuilder) {
			b.header(2, 2, 1)
			b.Write([]byte{0x2C, 0, 0, 0, 0, 2, 0, 2, 0, 0})
			b.Write([]byte{2, 10, 0x04})
		}, io.ErrUnexpectedEOF},
		{"too much image data", func(t *testing.T, b *gifBuilder) {
			b.header(2, 2, 1)
			b.image(t, 0, 0, 2, 2, 0, 2, []byte{0, 1, 1, 0, 1})
			b.WriteByte(0x3B)
		}, ErrTooMuchData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b gifBuilder
			tt.build(t, &b)
			a, err := LoadGIF(&b)
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
			if a != nil {
				t.Fatal("partial animation returned")
			}
		})
	}
}

func TestLoadGIFConfig(t *testing.T) {
	var b gifBuilder
	b.header(300, 200, 3)
	b.WriteByte(0x3B)
	cfg, err := LoadGIFConfig(&b)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Version != "GIF89a" || cfg.Width != 300 || cfg.Height != 200 || cfg.Palette.Len() != 8 {
		t.Fatalf("config = %+v", cfg)
	}
	if c, _ := cfg.Palette.Get(1); c != PackColor(40, 20, 10, 0xFF) {
		t.Errorf("color 1 = %#08x", c)
	}
}

func TestSaveColorDepth(t *testing.T) {
	tests := []struct {
		colors int
		field  byte
	}{
		{1, 0}, {2, 0}, {3, 1}, {4, 1}, {5, 2}, {16, 3}, {17, 4}, {129, 7}, {256, 7},
	}
	for _, tt := range tests {
		a := NewAnimation(1, 1)
		a.Palette().Resize(tt.colors)
		addFrame(t, a, 0, 0, 1, 1, 0)
		data := encode(t, a)
		if data[10] != 0x80|tt.field {
			t.Errorf("%d colors: screen descriptor fields = %#02x", tt.colors, data[10])
		}
		if want := 13 + 3<<(tt.field+1); data[want] != 0x2C {
			t.Errorf("%d colors: no image descriptor after a %d byte color table", tt.colors, 3<<(tt.field+1))
		}
	}
}

func TestSaveMaxDimensions(t *testing.T) {
	a := NewAnimation(0xFFFF, 1)
	setColors(t, a.Palette(), red, green)
	addFrame(t, a, 0xFFFE, 0, 1, 1, 1)
	// Zero-sized frame at the far edge of the canvas.
	addFrame(t, a, 0xFFFF, 0, 0, 1, 0)

	var buf bytes.Buffer
	if err := SaveGIF(&buf, a); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadGIF(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Width() != 0xFFFF || loaded.FrameCount() != 2 {
		t.Fatalf("loaded %dx%d with %d frames", loaded.Width(), loaded.Height(), loaded.FrameCount())
	}
	if f, _ := loaded.Frame(0); f.X != 0xFFFE {
		t.Errorf("frame 0 at x=%d", f.X)
	}
	if f, _ := loaded.Frame(1); f.X != 0xFFFF || f.Width() != 0 {
		t.Errorf("frame 1 at x=%d, width %d", f.X, f.Width())
	}
	last, _ := loaded.Frame(1)
	if c, _ := last.ColorAt(0xFFFE, 0); c != green {
		t.Errorf("render pixel (0xFFFE,0) = %#08x, want green", c)
	}
}

func TestLoadGIFLimit(t *testing.T) {
	// A tiny canvas announcing a huge frame.
	var b gifBuilder
	b.header(1, 1, 1)
	b.Write([]byte{0x2C, 0, 0, 0, 0, 0x00, 0x40, 0x00, 0x40, 0})
	b.Write([]byte{2, 0, 0x3B})
	if _, err := LoadGIFLimit(bytes.NewReader(b.Bytes()), 1<<20); !errors.Is(err, ErrDecodeLimit) {
		t.Fatalf("oversized frame: %v", err)
	}

	// Two 4x4 frames on a 4x4 canvas cost 16+64 bytes each.
	b.Reset()
	b.header(4, 4, 1)
	b.image(t, 0, 0, 4, 4, 0, 2, make([]byte, 16))
	b.image(t, 0, 0, 4, 4, 0, 2, make([]byte, 16))
	b.WriteByte(0x3B)
	if _, err := LoadGIFLimit(bytes.NewReader(b.Bytes()), 159); !errors.Is(err, ErrDecodeLimit) {
		t.Errorf("limit 159: %v", err)
	}
	a, err := LoadGIFLimit(bytes.NewReader(b.Bytes()), 160)
	if err != nil || a.FrameCount() != 2 {
		t.Errorf("limit 160: %v", err)
	}
}

func TestSaveValidation(t *testing.T) {
	tests := []struct {
		name  string
		build func(t *testing.T) *Animation
		want  error
	}{
		{"nil animation", func(t *testing.T) *Animation {
			return nil
		}, ErrNilAnimation},
		{"canvas too large", func(t *testing.T) *Animation {
			return NewAnimation(0x10000, 1)
		}, ErrTooLarge},
		{"too many global colors", func(t *testing.T) *Animation {
			a := NewAnimation(1, 1)
			a.Palette().Resize(257)
			return a
		}, ErrTooManyColors},
		{"too many local colors", func(t *testing.T) *Animation {
			a := NewAnimation(1, 1)
			addFrame(t, a, 0, 0, 1, 1, 0).Palette().Resize(300)
			return a
		}, ErrTooManyColors},
		{"no palette", func(t *testing.T) *Animation {
			a := NewAnimation(1, 1)
			addFrame(t, a, 0, 0, 1, 1, 0)
			return a
		}, ErrNoPalette},
		{"pixel outside palette", func(t *testing.T) *Animation {
			a := NewAnimation(2, 1)
			setColors(t, a.Palette(), red, green, blue)
			addFrame(t, a, 0, 0, 2, 1, 3, 4)
			return a
		}, ErrPixelRange},
		{"transparency index", func(t *testing.T) *Animation {
			a := NewAnimation(1, 1)
			setColors(t, a.Palette(), red, green, blue)
			f := addFrame(t, a, 0, 0, 1, 1, 0)
			f.Transparent = true
			f.TransparencyIndex = 3
			return a
		}, ErrTransparencyIndex},
		{"frame outside canvas", func(t *testing.T) *Animation {
			a := NewAnimation(4, 4)
			setColors(t, a.Palette(), red, green)
			addFrame(t, a, 0, 0, 4, 4, 0)
			addFrame(t, a, 3, 3, 2, 2, 1)
			return a
		}, ErrOutOfBounds},
		{"negative origin", func(t *testing.T) *Animation {
			a := NewAnimation(4, 4)
			setColors(t, a.Palette(), red, green)
			addFrame(t, a, -1, 0, 2, 2, 1)
			return a
		}, ErrOutOfBounds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := SaveGIF(&buf, tt.build(t))
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
			if bytes.HasSuffix(buf.Bytes(), []byte{0x3B}) {
				t.Error("trailer written after a failure")
			}
		})
	}
}

var errWrite = errors.New("write failed")

type failingWriter struct {
	n int
}

func (w *failingWriter) Write(p []byte) (int, error) {
	if len(p) > w.n {
		n := w.n
		w.n = 0
		return n, errWrite
	}
	w.n -= len(p)
	return len(p), nil
}

func TestSaveWriteError(t *testing.T) {
	a := testAnimation(t)
	err := SaveGIF(&failingWriter{n: 10}, a)
	if !errors.Is(err, errWrite) {
		t.Fatalf("got %v, want %v", err, errWrite)
	}
}

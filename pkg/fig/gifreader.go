package fig

import (
	"fmt"
	"io"

	"github.com/razzie/fig/pkg/fig/internal/lzw"
)

const (
	gif87a = "GIF87a"
	gif89a = "GIF89a"
)

// Config is the part of a GIF stream that precedes the first block.
type Config struct {
	Version         string
	Width, Height   int
	Palette         *Palette
	BackgroundIndex uint8
}

// graphicControl holds the values of the last graphics control extension.
// They apply to every following image until another one is read.
type graphicControl struct {
	transparent bool
	index       uint8
	delay       int
	disposal    Disposal
}

type decoder struct {
	in *Input
	a  *Animation
	gc graphicControl

	version string
	bgIndex uint8

	// Bytes of frame surfaces allocated so far and the allowed total, 0
	// meaning no limit.
	used, limit int64

	buf [256]byte
}

// LoadGIF reads a GIF87a or GIF89a stream and composites its frames. No
// animation is returned on failure.
func LoadGIF(r io.Reader) (*Animation, error) {
	return LoadGIFLimit(r, 0)
}

// LoadGIFLimit is LoadGIF with a cap on the memory taken by frame surfaces:
// one byte per indexed pixel and four per render pixel. A stream needing more
// than maxBytes fails with ErrDecodeLimit before the frame crossing the limit
// is allocated. maxBytes <= 0 disables the check.
func LoadGIFLimit(r io.Reader, maxBytes int64) (*Animation, error) {
	d := decoder{in: NewInput(r), a: &Animation{}, limit: maxBytes}
	if err := d.decode(); err != nil {
		return nil, err
	}
	return d.a, nil
}

// LoadGIFConfig reads the header, the logical screen descriptor and the
// global color table without decoding any frame.
func LoadGIFConfig(r io.Reader) (*Config, error) {
	d := decoder{in: NewInput(r), a: &Animation{}}
	if err := d.readHeaderAndScreenDescriptor(); err != nil {
		return nil, err
	}
	return &Config{
		Version:         d.version,
		Width:           d.a.width,
		Height:          d.a.height,
		Palette:         &d.a.palette,
		BackgroundIndex: d.bgIndex,
	}, nil
}

func (d *decoder) decode() error {
	if err := d.readHeaderAndScreenDescriptor(); err != nil {
		return err
	}

	for {
		c, err := d.in.ReadU8()
		if err != nil {
			return fmt.Errorf("gif: reading block type: %w", err)
		}
		switch c {
		case sExtension:
			if err := d.readExtension(); err != nil {
				return err
			}

		case sImageDescriptor:
			if err := d.readImage(); err != nil {
				return err
			}

		case sTrailer:
			if err := d.a.Render(); err != nil {
				return fmt.Errorf("gif: %w", err)
			}
			return nil

		default:
			return fmt.Errorf("gif: block type %#02x at offset %d: %w", c, d.in.Tell()-1, ErrUnknownBlock)
		}
	}
}

func (d *decoder) readHeaderAndScreenDescriptor() error {
	if err := d.in.ReadFull(d.buf[:6]); err != nil {
		return fmt.Errorf("gif: reading header: %w", err)
	}
	d.version = string(d.buf[:6])
	if d.version != gif87a && d.version != gif89a {
		return fmt.Errorf("gif: %q: %w", d.version, ErrBadSignature)
	}

	var width, height uint16
	if err := d.readLE16s(&width, &height); err != nil {
		return fmt.Errorf("gif: reading logical screen descriptor: %w", err)
	}
	// Packed fields, background color index and pixel aspect ratio.
	if err := d.in.ReadFull(d.buf[:3]); err != nil {
		return fmt.Errorf("gif: reading logical screen descriptor: %w", err)
	}
	d.a.width, d.a.height = int(width), int(height)
	fields := d.buf[0]
	d.bgIndex = d.buf[1]

	if fields&fColorTable != 0 {
		if err := d.readColorTable(&d.a.palette, fields); err != nil {
			return fmt.Errorf("gif: reading global color table: %w", err)
		}
	}
	return nil
}

// readLE16s reads consecutive little-endian 16-bit fields.
func (d *decoder) readLE16s(fields ...*uint16) error {
	for _, p := range fields {
		v, err := d.in.ReadLE16()
		if err != nil {
			return err
		}
		*p = v
	}
	return nil
}

// readColorTable reads the 2^(1+n) RGB triples announced by the size bits of
// fields into p. Every color is opaque.
func (d *decoder) readColorTable(p *Palette, fields byte) error {
	n := 1 << (1 + uint(fields&fColorTableBitsMask))
	table := make([]byte, 3*n)
	if err := d.in.ReadFull(table); err != nil {
		return err
	}
	if err := p.Resize(n); err != nil {
		return err
	}
	for i := range p.colors {
		p.colors[i] = PackColor(table[3*i+0], table[3*i+1], table[3*i+2], 0xFF)
	}
	return nil
}

func (d *decoder) readExtension() error {
	label, err := d.in.ReadU8()
	if err != nil {
		return fmt.Errorf("gif: reading extension label: %w", err)
	}
	switch label {
	case gcLabel:
		err = d.readGraphicControl()
	case appLabel:
		err = d.readApplication()
	default:
		// Comments, plain text and unknown extensions.
		err = lzw.SkipSubBlocks(d.in)
	}
	if err != nil {
		return fmt.Errorf("gif: reading extension %#02x: %w", label, err)
	}
	return nil
}

func (d *decoder) readGraphicControl() error {
	size, err := d.in.ReadU8()
	if err != nil {
		return err
	}
	if size != gcBlockSize {
		return fmt.Errorf("block size %d: %w", size, ErrGraphicsControl)
	}
	if err := d.in.ReadFull(d.buf[:gcBlockSize]); err != nil {
		return err
	}
	fields := d.buf[0]
	d.gc = graphicControl{
		transparent: fields&gcTransparentColorSet != 0,
		disposal:    disposalFromGIF(gifDisposal((fields >> gcDisposalShift) & gcDisposalMask)),
		delay:       int(d.buf[1]) | int(d.buf[2])<<8,
		index:       d.buf[3],
	}
	return lzw.SkipSubBlocks(d.in)
}

// readApplication reads the looping extension and skips every other
// application extension.
func (d *decoder) readApplication() error {
	id, err := lzw.ReadSubBlock(d.in, d.buf[:])
	if err != nil {
		return err
	}
	if len(id) == 0 {
		return nil
	}
	if len(id) != appBlockSize || string(id) != netscapeID {
		return lzw.SkipSubBlocks(d.in)
	}

	data, err := lzw.ReadSubBlock(d.in, d.buf[:])
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	if len(data) >= 3 {
		d.a.loopCount = int(data[1]) | int(data[2])<<8
	}
	return lzw.SkipSubBlocks(d.in)
}

func (d *decoder) readImage() error {
	index := len(d.a.frames)
	var x, y, width, height uint16
	if err := d.readLE16s(&x, &y, &width, &height); err != nil {
		return fmt.Errorf("gif: reading image descriptor: %w", err)
	}
	fields, err := d.in.ReadU8()
	if err != nil {
		return fmt.Errorf("gif: reading image descriptor: %w", err)
	}

	cost := int64(width)*int64(height) + 4*int64(d.a.width)*int64(d.a.height)
	if d.limit > 0 && d.used+cost > d.limit {
		return fmt.Errorf("gif: frame %d (%dx%d on a %dx%d canvas): %w",
			index, width, height, d.a.width, d.a.height, ErrDecodeLimit)
	}
	d.used += cost

	f := d.a.AddFrame()
	f.X, f.Y = int(x), int(y)
	if err := f.ResizeIndexed(int(width), int(height)); err != nil {
		return fmt.Errorf("gif: frame %d: %w", index, err)
	}
	if err := f.ResizeRender(d.a.width, d.a.height); err != nil {
		return fmt.Errorf("gif: frame %d: %w", index, err)
	}
	if fields&fColorTable != 0 {
		if err := d.readColorTable(&f.palette, fields); err != nil {
			return fmt.Errorf("gif: frame %d: reading local color table: %w", index, err)
		}
	}

	f.Transparent = d.gc.transparent
	f.TransparencyIndex = d.gc.index
	f.Delay = d.gc.delay
	f.Disposal = d.gc.disposal

	interlaced := fields&fInterlace != 0
	if err := lzw.Decode(d.in, f.indexed, int(width), int(height), interlaced); err != nil {
		return fmt.Errorf("gif: frame %d: reading image data: %w", index, err)
	}
	return nil
}

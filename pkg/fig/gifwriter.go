// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fig

import (
	"fmt"
	"io"

	"github.com/razzie/fig/pkg/fig/internal/lzw"
)

// Graphic control extension fields.
const (
	gcLabel     = 0xF9
	gcBlockSize = 0x04
)

// Application extension fields.
const (
	appLabel     = 0xFF
	appBlockSize = 0x0B
	netscapeID   = "NETSCAPE2.0"
)

// Masks etc.
const (
	// Fields.
	fColorTable         = 1 << 7
	fInterlace          = 1 << 6
	fColorTableBitsMask = 7

	// Graphic control flags.
	gcTransparentColorSet = 1 << 0
	gcDisposalShift       = 2
	gcDisposalMask        = 7
)

// Section indicators.
const (
	sExtension       = 0x21
	sImageDescriptor = 0x2C
	sTrailer         = 0x3B
)

// Largest value accepted for canvas and frame dimensions and offsets.
const maxDimension = 0xFFFF

var log2Lookup = [8]int{2, 4, 8, 16, 32, 64, 128, 256}

// log2 returns the value of the color table size field for x colors: the
// table holds 2^(1+n) entries.
func log2(x int) int {
	for i, v := range log2Lookup {
		if x <= v {
			return i
		}
	}
	return -1
}

// Little-endian.
func writeUint16(b []uint8, u uint16) {
	b[0] = uint8(u)
	b[1] = uint8(u >> 8)
}

// encoder encodes an animation to the GIF format.
type encoder struct {
	// w is the writer to write to. err is the first error encountered during
	// writing or validation. All attempted writes after the first error become
	// no-ops.
	w   *Output
	err error
	// a is the animation that is being encoded.
	a *Animation
	// buf is a scratch buffer.
	buf        [16]byte
	colorTable [3 * 256]byte
}

func (e *encoder) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

func (e *encoder) flush() {
	if e.err != nil {
		return
	}
	e.err = e.w.Flush()
}

func (e *encoder) write(p []byte) {
	if e.err != nil {
		return
	}
	_, e.err = e.w.Write(p)
}

func (e *encoder) writeByte(b byte) {
	if e.err != nil {
		return
	}
	e.err = e.w.WriteByte(b)
}

func (e *encoder) writeHeader() {
	if e.err != nil {
		return
	}
	_, e.err = io.WriteString(e.w, "GIF89a")
	if e.err != nil {
		return
	}

	if e.a.width > maxDimension || e.a.height > maxDimension {
		e.fail(fmt.Errorf("gif: canvas %dx%d: %w", e.a.width, e.a.height, ErrTooLarge))
		return
	}

	// Logical screen width and height.
	writeUint16(e.buf[0:2], uint16(e.a.width))
	writeUint16(e.buf[2:4], uint16(e.a.height))
	e.write(e.buf[:4])

	if p := &e.a.palette; p.Len() > 0 {
		paddedSize := log2(p.Len()) // Size of Global Color Table: 2^(1+n).
		if paddedSize < 0 {
			e.fail(fmt.Errorf("gif: global palette: %w", ErrTooManyColors))
			return
		}
		e.buf[0] = fColorTable | uint8(paddedSize)
		e.buf[1] = 0x00 // Background Color Index.
		e.buf[2] = 0x00 // Pixel Aspect Ratio.
		e.write(e.buf[:3])
		ct := encodeColorTable(e.colorTable[:], p, paddedSize)
		e.write(e.colorTable[:ct])
	} else {
		// Every frame must bring a local color table.
		e.buf[0] = 0x00
		e.buf[1] = 0x00 // Background Color Index.
		e.buf[2] = 0x00 // Pixel Aspect Ratio.
		e.write(e.buf[:3])
	}

	// Add animation info if necessary.
	if len(e.a.frames) > 1 {
		loopCount := e.a.loopCount
		if loopCount > 0xFFFF {
			loopCount = 0
		}
		e.buf[0] = sExtension   // Extension Introducer.
		e.buf[1] = appLabel     // Application Label.
		e.buf[2] = appBlockSize // Block Size.
		e.write(e.buf[:3])
		if e.err != nil {
			return
		}
		_, e.err = io.WriteString(e.w, netscapeID) // Application Identifier.
		e.buf[0] = 0x03                            // Block Size.
		e.buf[1] = 0x01                            // Sub-block Index.
		writeUint16(e.buf[2:4], uint16(loopCount))
		e.buf[4] = 0x00 // Block Terminator.
		e.write(e.buf[:5])
	}
}

// encodeColorTable writes p as RGB triples padded with black to
// 2^(1+size) entries and returns the table length in bytes.
func encodeColorTable(dst []byte, p *Palette, size int) int {
	for i, c := range p.colors {
		r, g, b, _ := UnpackColor(c)
		dst[3*i+0] = r
		dst[3*i+1] = g
		dst[3*i+2] = b
	}
	n := log2Lookup[size]
	if n > p.Len() {
		// Pad with black.
		fill := dst[3*p.Len() : 3*n]
		for i := range fill {
			fill[i] = 0
		}
	}
	return 3 * n
}

func (e *encoder) writeImageBlock(index int, f *Frame) {
	if e.err != nil {
		return
	}

	if f.X < 0 || f.Y < 0 || f.X+f.width > e.a.width || f.Y+f.height > e.a.height {
		e.fail(fmt.Errorf("gif: frame %d at %v: %w", index, f.Bounds(), ErrOutOfBounds))
		return
	}
	if f.X > maxDimension || f.Y > maxDimension || f.width > maxDimension || f.height > maxDimension {
		e.fail(fmt.Errorf("gif: frame %d at %v: %w", index, f.Bounds(), ErrTooLarge))
		return
	}

	p := f.RenderPalette(e.a)
	if p.Len() == 0 {
		e.fail(fmt.Errorf("gif: frame %d: %w", index, ErrNoPalette))
		return
	}
	paddedSize := log2(p.Len()) // Size of Local Color Table: 2^(1+n).
	if paddedSize < 0 {
		e.fail(fmt.Errorf("gif: frame %d palette: %w", index, ErrTooManyColors))
		return
	}
	if f.Transparent && int(f.TransparencyIndex) >= p.Len() {
		e.fail(fmt.Errorf("gif: frame %d: index %d: %w", index, f.TransparencyIndex, ErrTransparencyIndex))
		return
	}
	colors := log2Lookup[paddedSize]
	for _, c := range f.indexed {
		if int(c) >= colors {
			e.fail(fmt.Errorf("gif: frame %d: index %d: %w", index, c, ErrPixelRange))
			return
		}
	}

	if len(e.a.frames) > 1 || f.Transparent {
		delay := f.Delay
		if delay < 0 || delay > 0xFFFF {
			delay = 0
		}
		e.buf[0] = sExtension  // Extension Introducer.
		e.buf[1] = gcLabel     // Graphic Control Label.
		e.buf[2] = gcBlockSize // Block Size.
		e.buf[3] = uint8(disposalToGIF(f.Disposal)) << gcDisposalShift
		if f.Transparent {
			e.buf[3] |= gcTransparentColorSet
		}
		writeUint16(e.buf[4:6], uint16(delay)) // Delay Time (1/100ths of a second)

		// Transparent color index.
		if f.Transparent {
			e.buf[6] = f.TransparencyIndex
		} else {
			e.buf[6] = 0x00
		}
		e.buf[7] = 0x00 // Block Terminator.
		e.write(e.buf[:8])
	}
	e.buf[0] = sImageDescriptor
	writeUint16(e.buf[1:3], uint16(f.X))
	writeUint16(e.buf[3:5], uint16(f.Y))
	writeUint16(e.buf[5:7], uint16(f.width))
	writeUint16(e.buf[7:9], uint16(f.height))
	e.write(e.buf[:9])

	if p == &f.palette {
		// Use a local color table.
		ct := encodeColorTable(e.colorTable[:], p, paddedSize)
		e.writeByte(fColorTable | uint8(paddedSize))
		e.write(e.colorTable[:ct])
	} else {
		e.writeByte(0) // Use the global color table.
	}

	if e.err != nil {
		return
	}
	e.err = lzw.Encode(e.w, lzw.MinCodeSize(paddedSize+1), f.indexed)
}

// SaveGIF writes a as a GIF89a stream. Animations with more than one frame
// carry a looping extension and a graphics control block per frame. The
// first validation or write failure stops the encoding and is returned.
func SaveGIF(w io.Writer, a *Animation) error {
	if a == nil {
		return ErrNilAnimation
	}
	e := encoder{w: NewOutput(w), a: a}
	e.writeHeader()
	for i, f := range a.frames {
		e.writeImageBlock(i, f)
	}
	e.writeByte(sTrailer)
	e.flush()
	return e.err
}

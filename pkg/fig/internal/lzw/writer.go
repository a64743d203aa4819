package lzw

import (
	"io"
)

type encoder struct {
	bw *BlockWriter

	min   uint
	clear uint16
	eoi   uint16
	width uint
	mask  uint16
	next  uint16

	prefix [maxCodes]uint16
	suffix [maxCodes]uint8

	acc   uint32
	nbits uint

	// resets counts clear codes emitted because the dictionary was full.
	resets int
}

// Encode writes the minimum code size byte followed by the LZW-coded pixels
// as length-prefixed sub-blocks and the block terminator. Every pixel must be
// below 1<<litWidth, and litWidth must be in [2, 8].
func Encode(w io.Writer, litWidth int, pixels []byte) error {
	if litWidth < maxLitMin || litWidth > maxLitMax {
		return ErrCodeSize
	}
	if _, err := w.Write([]byte{uint8(litWidth)}); err != nil {
		return err
	}

	e := newEncoder(w, litWidth)
	return e.encode(pixels)
}

func newEncoder(w io.Writer, litWidth int) *encoder {
	e := &encoder{
		bw:    NewBlockWriter(w),
		min:   uint(litWidth),
		clear: 1 << uint(litWidth),
	}
	e.eoi = e.clear + 1
	e.reset()
	return e
}

func (e *encoder) encode(pixels []byte) error {
	e.emit(e.clear)
	old := uint16(nullCode)
	for _, p := range pixels {
		pixel := uint16(p)
		if pixel >= e.clear {
			return ErrPixelRange
		}
		if old == nullCode {
			old = pixel
			continue
		}
		if code, ok := e.lookup(old, p); ok {
			old = code
			continue
		}

		e.emit(old)
		if e.next >= maxCodes {
			e.emit(e.clear)
			e.reset()
			e.resets++
		} else {
			if e.next&e.mask == 0 {
				e.width++
				e.mask = 1<<e.width - 1
			}
			e.prefix[e.next] = old
			e.suffix[e.next] = p
			e.next++
		}
		old = pixel
	}
	if old != nullCode {
		e.emit(old)
	}
	e.emit(e.eoi)
	if e.nbits > 0 {
		e.bw.WriteByte(uint8(e.acc))
	}
	return e.bw.Close()
}

func (e *encoder) reset() {
	e.width = e.min + 1
	e.mask = 1<<e.width - 1
	e.next = e.eoi + 1
}

// lookup searches the entries added since the last reset for the string
// old+pixel.
func (e *encoder) lookup(old uint16, pixel uint8) (uint16, bool) {
	for i := e.eoi + 1; i < e.next; i++ {
		if e.prefix[i] == old && e.suffix[i] == pixel {
			return i, true
		}
	}
	return 0, false
}

// emit packs code into the accumulator LSB first and hands every completed
// byte to the block writer.
func (e *encoder) emit(code uint16) {
	e.acc |= uint32(code) << e.nbits
	e.nbits += e.width
	for e.nbits >= 8 {
		e.bw.WriteByte(uint8(e.acc))
		e.acc >>= 8
		e.nbits -= 8
	}
}

package lzw

import (
	"io"
)

// decoder holds the dictionary and bit accumulator of one image data stream.
type decoder struct {
	r io.ByteReader

	min   uint
	clear uint16
	eoi   uint16
	width uint
	mask  uint16
	next  uint16
	old   uint16
	first uint8

	prefix [maxCodes]uint16
	suffix [maxCodes]uint8
	stack  [maxStack]uint8
	sp     int

	// Bit accumulator and the bytes left in the current sub-block.
	acc       uint32
	nbits     uint
	blockLeft int

	// Placement of decoded pixels.
	dst    []byte
	w, h   int
	x, y   int
	pass   int
	rowInc int
}

// Decode reads the minimum code size byte and the LZW-coded sub-blocks that
// follow it, and stores the decoded indices in dst, a width*height surface.
// Rows are filled in interlaced order when interlaced is set. A stream that
// holds more pixels than the surface fails with ErrTooMuchData.
func Decode(r io.ByteReader, dst []byte, width, height int, interlaced bool) error {
	min, err := readByte(r)
	if err != nil {
		return err
	}
	if min > maxBits {
		return ErrCodeSize
	}
	if len(dst) < width*height {
		return io.ErrShortBuffer
	}

	d := &decoder{
		r:     r,
		min:   uint(min),
		clear: 1 << min,
		dst:   dst,
		w:     width,
		h:     height,
	}
	d.eoi = d.clear + 1
	for i := uint16(0); i < d.clear; i++ {
		d.prefix[i] = nullCode
		d.suffix[i] = uint8(i)
	}
	if interlaced {
		d.pass, d.rowInc = 3, 8
	} else {
		d.pass, d.rowInc = 0, 1
	}
	d.reset()
	return d.decode()
}

func (d *decoder) reset() {
	d.width = d.min + 1
	d.mask = 1<<d.width - 1
	d.next = d.eoi + 1
	d.old = nullCode
}

func (d *decoder) push(c uint8) error {
	if d.sp >= maxStack {
		return ErrStackOverflow
	}
	d.stack[d.sp] = c
	d.sp++
	return nil
}

func (d *decoder) decode() error {
	for {
		if d.nbits < d.width {
			if d.blockLeft == 0 {
				n, err := readByte(d.r)
				if err != nil {
					return err
				}
				if n == 0 {
					return nil
				}
				d.blockLeft = int(n)
			}
			b, err := readByte(d.r)
			if err != nil {
				return err
			}
			d.acc |= uint32(b) << d.nbits
			d.nbits += 8
			d.blockLeft--
			continue
		}

		code := uint16(d.acc) & d.mask
		d.acc >>= d.width
		d.nbits -= d.width

		switch {
		case code == d.clear:
			d.reset()
			continue
		case code == d.eoi:
			if err := skip(d.r, d.blockLeft); err != nil {
				return err
			}
			return SkipSubBlocks(d.r)
		case d.old == nullCode:
			if code >= d.next {
				return ErrInvalidCode
			}
			if err := d.push(d.suffix[code]); err != nil {
				return err
			}
			d.first = uint8(code)
			d.old = code
		case code <= d.next:
			if err := d.expand(code); err != nil {
				return err
			}
		default:
			return ErrInvalidCode
		}

		if err := d.flush(); err != nil {
			return err
		}
	}
}

// expand pushes the string for code onto the stack and adds the next
// dictionary entry.
func (d *decoder) expand(code uint16) error {
	cur := code
	if cur == d.next {
		if err := d.push(d.first); err != nil {
			return err
		}
		cur = d.old
	}
	for cur >= d.clear {
		if cur >= maxCodes {
			return ErrInvalidCode
		}
		if err := d.push(d.suffix[cur]); err != nil {
			return err
		}
		cur = d.prefix[cur]
	}
	d.first = d.suffix[cur]
	if err := d.push(d.first); err != nil {
		return err
	}

	if d.next < maxCodes {
		d.prefix[d.next] = d.old
		d.suffix[d.next] = d.first
		d.next++
		if d.next&d.mask == 0 && d.next < maxCodes {
			d.width++
			d.mask = 1<<d.width - 1
		}
	}
	d.old = code
	return nil
}

// flush pops the stack into the destination surface.
func (d *decoder) flush() error {
	for d.sp > 0 {
		if d.y >= d.h || d.w == 0 {
			return ErrTooMuchData
		}
		d.sp--
		d.dst[d.y*d.w+d.x] = d.stack[d.sp]
		d.x++
		if d.x < d.w {
			continue
		}
		d.x = 0
		d.y += d.rowInc
		for d.y >= d.h && d.pass > 0 {
			d.rowInc = 1 << d.pass
			d.y = d.rowInc >> 1
			d.pass--
		}
	}
	return nil
}

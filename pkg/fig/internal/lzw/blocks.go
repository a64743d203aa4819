package lzw

import (
	"io"
)

// skipper is implemented by sources that can move forward without reading
// every byte, such as a seekable input.
type skipper interface {
	Skip(n int) error
}

func readByte(r io.ByteReader) (byte, error) {
	b, err := r.ReadByte()
	if err == io.EOF {
		return 0, io.ErrUnexpectedEOF
	}
	return b, err
}

func skip(r io.ByteReader, n int) error {
	if n <= 0 {
		return nil
	}
	if s, ok := r.(skipper); ok {
		return s.Skip(n)
	}
	for i := 0; i < n; i++ {
		if _, err := readByte(r); err != nil {
			return err
		}
	}
	return nil
}

// SkipSubBlocks consumes length-prefixed sub-blocks up to and including the
// zero-length terminator.
func SkipSubBlocks(r io.ByteReader) error {
	for {
		n, err := readByte(r)
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		if err := skip(r, int(n)); err != nil {
			return err
		}
	}
}

// ReadSubBlock reads a single length-prefixed sub-block into buf and returns
// its payload. buf must be at least 255 bytes.
func ReadSubBlock(r io.ByteReader, buf []byte) ([]byte, error) {
	n, err := readByte(r)
	if err != nil {
		return nil, err
	}
	for i := 0; i < int(n); i++ {
		if buf[i], err = readByte(r); err != nil {
			return nil, err
		}
	}
	return buf[:n], nil
}

// BlockWriter writes the block structure of GIF image data, which
// comprises (n, (n bytes)) blocks, with 1 <= n <= 255. The first error is
// kept and every later write becomes a no-op.
type BlockWriter struct {
	w   io.Writer
	err error
	// buf[0] holds the length of the pending sub-block.
	buf [256]byte
}

func NewBlockWriter(w io.Writer) *BlockWriter {
	return &BlockWriter{w: w}
}

func (b *BlockWriter) WriteByte(c byte) error {
	if b.err != nil {
		return b.err
	}

	// Append c to buffered sub-block.
	b.buf[0]++
	b.buf[b.buf[0]] = c
	if b.buf[0] < 255 {
		return nil
	}

	// Flush block
	_, b.err = b.w.Write(b.buf[:256])
	b.buf[0] = 0
	return b.err
}

func (b *BlockWriter) Write(data []byte) (int, error) {
	for i, c := range data {
		if err := b.WriteByte(c); err != nil {
			return i, err
		}
	}
	return len(data), nil
}

// Close writes the pending sub-block, if any, followed by the block
// terminator (0x00).
func (b *BlockWriter) Close() error {
	if b.err != nil {
		return b.err
	}
	if b.buf[0] == 0 {
		_, b.err = b.w.Write([]byte{0})
	} else {
		n := uint(b.buf[0])
		b.buf[n+1] = 0
		_, b.err = b.w.Write(b.buf[:n+2])
		b.buf[0] = 0
	}
	return b.err
}

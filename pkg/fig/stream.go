package fig

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

var errSeekBackward = errors.New("fig: cannot seek backward on a non-seekable input")

// Input is a buffered byte source with little-endian scalar helpers and a
// read position. Seeking forward works on any io.Reader; seeking backward or
// relative to the end requires the underlying reader to be an io.Seeker.
type Input struct {
	src  io.Reader
	r    *bufio.Reader
	base int64
	pos  int64
	buf  [4]byte
}

func NewInput(r io.Reader) *Input {
	in := &Input{src: r, r: bufio.NewReader(r)}
	if s, ok := r.(io.Seeker); ok {
		if off, err := s.Seek(0, io.SeekCurrent); err == nil {
			in.base = off
		}
	}
	return in
}

// NewMemoryInput reads from b.
func NewMemoryInput(b []byte) *Input {
	return NewInput(bytes.NewReader(b))
}

func (in *Input) Read(p []byte) (int, error) {
	n, err := in.r.Read(p)
	in.pos += int64(n)
	return n, err
}

func (in *Input) ReadByte() (byte, error) {
	b, err := in.r.ReadByte()
	if err == nil {
		in.pos++
	}
	return b, err
}

// ReadFull fills p, reporting io.ErrUnexpectedEOF on a short read.
func (in *Input) ReadFull(p []byte) error {
	n, err := io.ReadFull(in.r, p)
	in.pos += int64(n)
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

func (in *Input) ReadU8() (uint8, error) {
	b, err := in.ReadByte()
	if err == io.EOF {
		return 0, io.ErrUnexpectedEOF
	}
	return b, err
}

func (in *Input) ReadLE16() (uint16, error) {
	if err := in.ReadFull(in.buf[:2]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(in.buf[:2]), nil
}

func (in *Input) ReadLE32() (uint32, error) {
	if err := in.ReadFull(in.buf[:4]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(in.buf[:4]), nil
}

// Tell returns the current read offset within the underlying source.
func (in *Input) Tell() int64 {
	return in.base + in.pos
}

// Skip moves forward n bytes.
func (in *Input) Skip(n int) error {
	_, err := in.Seek(int64(n), io.SeekCurrent)
	return err
}

func (in *Input) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = in.Tell() + offset
	case io.SeekEnd:
		s, ok := in.src.(io.Seeker)
		if !ok {
			return in.Tell(), errSeekBackward
		}
		off, err := s.Seek(offset, io.SeekEnd)
		if err != nil {
			return in.Tell(), err
		}
		in.r.Reset(in.src)
		in.pos = off - in.base
		return off, nil
	default:
		return in.Tell(), errors.New("fig: invalid whence")
	}

	if delta := target - in.Tell(); delta >= 0 {
		if delta <= int64(in.r.Buffered()) {
			n, _ := in.r.Discard(int(delta))
			in.pos += int64(n)
			return in.Tell(), nil
		}
		if _, ok := in.src.(io.Seeker); !ok {
			n, err := io.CopyN(io.Discard, in.r, delta)
			in.pos += n
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return in.Tell(), err
		}
	}

	s, ok := in.src.(io.Seeker)
	if !ok {
		return in.Tell(), errSeekBackward
	}
	off, err := s.Seek(target, io.SeekStart)
	if err != nil {
		return in.Tell(), err
	}
	in.r.Reset(in.src)
	in.pos = off - in.base
	return off, nil
}

// Output is a buffered byte sink with little-endian scalar helpers. Call
// Flush once writing is done.
type Output struct {
	w   *bufio.Writer
	pos int64
	buf [4]byte
}

func NewOutput(w io.Writer) *Output {
	return &Output{w: bufio.NewWriter(w)}
}

func (out *Output) Write(p []byte) (int, error) {
	n, err := out.w.Write(p)
	out.pos += int64(n)
	return n, err
}

func (out *Output) WriteByte(b byte) error {
	err := out.w.WriteByte(b)
	if err == nil {
		out.pos++
	}
	return err
}

func (out *Output) WriteU8(v uint8) error {
	return out.WriteByte(v)
}

func (out *Output) WriteLE16(v uint16) error {
	binary.LittleEndian.PutUint16(out.buf[:2], v)
	_, err := out.Write(out.buf[:2])
	return err
}

func (out *Output) WriteLE32(v uint32) error {
	binary.LittleEndian.PutUint32(out.buf[:4], v)
	_, err := out.Write(out.buf[:4])
	return err
}

// Tell returns the number of bytes written so far.
func (out *Output) Tell() int64 {
	return out.pos
}

func (out *Output) Flush() error {
	return out.w.Flush()
}

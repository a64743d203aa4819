// Package lzw implements the variable-width LZW code used by GIF image data.
//
// Unlike compress/lzw, the codec here follows the GIF rules directly: the
// stream starts with a minimum code size byte, codes are packed LSB first into
// length-prefixed sub-blocks, and the decoder writes pixels straight into an
// indexed surface, optionally in interlaced row order.
package lzw

import "errors"

const (
	maxBits   = 12
	maxCodes  = 1 << maxBits
	maxStack  = maxCodes + 1
	nullCode  = 0xCACA
	maxLitMin = 2
	maxLitMax = 8
)

var (
	ErrCodeSize      = errors.New("lzw: invalid minimum code size")
	ErrInvalidCode   = errors.New("lzw: invalid code")
	ErrStackOverflow = errors.New("lzw: stack overflow")
	ErrPixelRange    = errors.New("lzw: pixel value out of code range")
	ErrTooMuchData   = errors.New("lzw: too much image data")
)

// MinCodeSize returns the minimum code size for a color table with 1<<depth
// entries.
func MinCodeSize(depth int) int {
	if depth < maxLitMin {
		return maxLitMin
	}
	return depth
}

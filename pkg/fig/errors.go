package fig

import (
	"errors"

	"github.com/razzie/fig/pkg/fig/internal/lzw"
)

var (
	ErrBadSignature      = errors.New("unrecognized GIF signature")
	ErrUnknownBlock      = errors.New("unrecognized block type")
	ErrGraphicsControl   = errors.New("malformed graphics control block")
	ErrIndexOutOfRange   = errors.New("index out of range")
	ErrInvalidSize       = errors.New("invalid size")
	ErrEmptyCanvas       = errors.New("animation canvas is empty")
	ErrTooLarge          = errors.New("dimensions exceed 16-bit range")
	ErrTooManyColors     = errors.New("palette has more than 256 colors")
	ErrNoPalette         = errors.New("frame has no local or global palette")
	ErrTransparencyIndex = errors.New("transparency index is outside of palette range")
	ErrOutOfBounds       = errors.New("frame is outside of the canvas")
	ErrNilAnimation      = errors.New("animation is nil")
	ErrDecodeLimit       = errors.New("decoded frames exceed memory limit")
)

// Image data errors.
var (
	ErrCodeSize      = lzw.ErrCodeSize
	ErrInvalidCode   = lzw.ErrInvalidCode
	ErrStackOverflow = lzw.ErrStackOverflow
	ErrPixelRange    = lzw.ErrPixelRange
	ErrTooMuchData   = lzw.ErrTooMuchData
)

// Package fig reads, writes and composites GIF animations.
//
// Colors are packed as 0xAARRGGBB. An Animation owns its palette and frames;
// LoadGIF and SaveGIF convert between animations and the GIF89a format, and
// Render composites every frame onto the canvas the way a GIF viewer would.
package fig

// Animation is a sequence of frames sharing a canvas and a global palette.
type Animation struct {
	width, height int
	palette       Palette
	frames        []*Frame
	// loopCount of 0 means the animation repeats forever.
	loopCount int
}

func NewAnimation(width, height int) *Animation {
	a := &Animation{}
	a.SetDimensions(width, height)
	return a
}

func (a *Animation) SetDimensions(width, height int) error {
	if width < 0 || height < 0 {
		return ErrInvalidSize
	}
	a.width, a.height = width, height
	return nil
}

func (a *Animation) Width() int  { return a.width }
func (a *Animation) Height() int { return a.height }

// Palette returns the global palette.
func (a *Animation) Palette() *Palette {
	return &a.palette
}

func (a *Animation) LoopCount() int {
	return a.loopCount
}

func (a *Animation) SetLoopCount(n int) error {
	if n < 0 {
		return ErrInvalidSize
	}
	a.loopCount = n
	return nil
}

// Frames returns the frames in display order. The slice must not be
// modified.
func (a *Animation) Frames() []*Frame {
	return a.frames
}

func (a *Animation) FrameCount() int {
	return len(a.frames)
}

func (a *Animation) Frame(i int) (*Frame, error) {
	if i < 0 || i >= len(a.frames) {
		return nil, ErrIndexOutOfRange
	}
	return a.frames[i], nil
}

// AddFrame appends an empty frame.
func (a *Animation) AddFrame() *Frame {
	f := &Frame{}
	a.frames = append(a.frames, f)
	return f
}

// InsertFrame inserts an empty frame at i, 0 <= i <= FrameCount.
func (a *Animation) InsertFrame(i int) (*Frame, error) {
	if i < 0 || i > len(a.frames) {
		return nil, ErrIndexOutOfRange
	}
	f := &Frame{}
	a.frames = append(a.frames, nil)
	copy(a.frames[i+1:], a.frames[i:])
	a.frames[i] = f
	return f, nil
}

func (a *Animation) RemoveFrame(i int) error {
	if i < 0 || i >= len(a.frames) {
		return ErrIndexOutOfRange
	}
	copy(a.frames[i:], a.frames[i+1:])
	a.frames[len(a.frames)-1] = nil
	a.frames = a.frames[:len(a.frames)-1]
	return nil
}

func (a *Animation) SwapFrames(i, j int) error {
	if i < 0 || i >= len(a.frames) || j < 0 || j >= len(a.frames) {
		return ErrIndexOutOfRange
	}
	a.frames[i], a.frames[j] = a.frames[j], a.frames[i]
	return nil
}

package server

import (
	"github.com/razzie/fig/pkg/fig"
)

type FrameInfo struct {
	X                 int    `json:"x"`
	Y                 int    `json:"y"`
	Width             int    `json:"w"`
	Height            int    `json:"h"`
	Delay             int    `json:"delay"`
	Disposal          string `json:"disposal"`
	Transparent       bool   `json:"transparent,omitempty"`
	TransparencyIndex int    `json:"ti,omitempty"`
	LocalColors       int    `json:"lc,omitempty"`
}

type Info struct {
	ID        string      `json:"id"`
	Width     int         `json:"w"`
	Height    int         `json:"h"`
	LoopCount int         `json:"loop"`
	Colors    int         `json:"colors"`
	Frames    []FrameInfo `json:"frames"`
}

func newInfo(id string, anim *fig.Animation) *Info {
	info := &Info{
		ID:        id,
		Width:     anim.Width(),
		Height:    anim.Height(),
		LoopCount: anim.LoopCount(),
		Colors:    anim.Palette().Len(),
		Frames:    make([]FrameInfo, 0, anim.FrameCount()),
	}
	for _, f := range anim.Frames() {
		fi := FrameInfo{
			X:           f.X,
			Y:           f.Y,
			Width:       f.Width(),
			Height:      f.Height(),
			Delay:       f.Delay,
			Disposal:    f.Disposal.String(),
			Transparent: f.Transparent,
			LocalColors: f.Palette().Len(),
		}
		if f.Transparent {
			fi.TransparencyIndex = int(f.TransparencyIndex)
		}
		info.Frames = append(info.Frames, fi)
	}
	return info
}

// FrameImage is a composited frame encoded as PNG.
type FrameImage struct {
	Index int    `json:"index"`
	PNG   []byte `json:"png"`
}

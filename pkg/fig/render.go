package fig

// Render composites every frame in order. Frame 0 is drawn onto a cleared
// canvas; each later frame starts from the previous frame's render with the
// previous frame's disposal applied over its region, and is then drawn on top.
func (a *Animation) Render() error {
	if len(a.frames) == 0 {
		return nil
	}
	if a.width == 0 || a.height == 0 {
		return ErrEmptyCanvas
	}

	var prevNone *Frame
	for i, f := range a.frames {
		if err := f.ResizeRender(a.width, a.height); err != nil {
			return err
		}
		if i == 0 {
			clear(f.render)
		} else {
			prev := a.frames[i-1]
			copy(f.render, prev.render)
			a.dispose(f, prev, prevNone)
		}
		a.blit(f)

		if f.Disposal == DisposalNone || f.Disposal == DisposalUnspecified {
			prevNone = f
		}
	}
	return nil
}

// dispose restores the region of prev on f's render surface. Pixels prev left
// transparent are kept.
func (a *Animation) dispose(f, prev, prevNone *Frame) {
	if prev.Disposal != DisposalBackground && prev.Disposal != DisposalPrevious {
		return
	}
	for y := 0; y < prev.height; y++ {
		cy := prev.Y + y
		if cy < 0 || cy >= a.height {
			continue
		}
		for x := 0; x < prev.width; x++ {
			cx := prev.X + x
			if cx < 0 || cx >= a.width {
				continue
			}
			if prev.Transparent && prev.indexed[y*prev.width+x] == prev.TransparencyIndex {
				continue
			}
			i := cy*a.width + cx
			if prev.Disposal == DisposalPrevious && prevNone != nil {
				f.render[i] = prevNone.render[i]
			} else {
				f.render[i] = 0
			}
		}
	}
}

// blit draws the indexed pixels of f through its render palette. Indices past
// the end of the palette draw as transparent black.
func (a *Animation) blit(f *Frame) {
	colors := f.RenderPalette(a).colors
	for y := 0; y < f.height; y++ {
		cy := f.Y + y
		if cy < 0 || cy >= a.height {
			continue
		}
		row := f.indexed[y*f.width : (y+1)*f.width]
		for x, index := range row {
			cx := f.X + x
			if cx < 0 || cx >= a.width {
				continue
			}
			if f.Transparent && index == f.TransparencyIndex {
				continue
			}
			var c uint32
			if int(index) < len(colors) {
				c = colors[index]
			}
			f.render[cy*a.width+cx] = c
		}
	}
}

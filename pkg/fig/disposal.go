package fig

// Disposal tells the compositor what to do with a frame's region before the
// next frame is drawn.
type Disposal int

const (
	DisposalUnspecified Disposal = iota
	DisposalNone
	DisposalBackground
	DisposalPrevious
)

func (d Disposal) String() string {
	switch d {
	case DisposalNone:
		return "none"
	case DisposalBackground:
		return "background"
	case DisposalPrevious:
		return "previous"
	default:
		return "unspecified"
	}
}

// gifDisposal is the 3-bit disposal field of a graphics control extension.
type gifDisposal uint8

const (
	gifDisposalUnspecified gifDisposal = 0x00
	gifDisposalNone        gifDisposal = 0x01
	gifDisposalBackground  gifDisposal = 0x02
	gifDisposalPrevious    gifDisposal = 0x03
)

func disposalFromGIF(d gifDisposal) Disposal {
	switch d {
	case gifDisposalNone:
		return DisposalNone
	case gifDisposalBackground:
		return DisposalBackground
	case gifDisposalPrevious:
		return DisposalPrevious
	default:
		return DisposalUnspecified
	}
}

func disposalToGIF(d Disposal) gifDisposal {
	switch d {
	case DisposalNone:
		return gifDisposalNone
	case DisposalBackground:
		return gifDisposalBackground
	case DisposalPrevious:
		return gifDisposalPrevious
	default:
		return gifDisposalUnspecified
	}
}

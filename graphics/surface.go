package graphics

// DefaultScaleFactor divides the displayed size to get the render target size.
const DefaultScaleFactor = 2

// Surface tracks the size of the render target relative to the displayed window.
type Surface struct {
	Width         int
	Height        int
	DisplayWidth  int
	DisplayHeight int
	ScaleFactor   int
}

// NewSurface returns an unallocated surface. A non-positive scale uses DefaultScaleFactor.
func NewSurface(scale int) *Surface {
	if scale <= 0 {
		scale = DefaultScaleFactor
	}
	return &Surface{ScaleFactor: scale}
}

// Fit recomputes the backing size from the displayed size and reports whether it changed.
func (s *Surface) Fit(displayWidth, displayHeight int) bool {
	s.DisplayWidth = displayWidth
	s.DisplayHeight = displayHeight

	w := max(displayWidth/s.ScaleFactor, 0)
	h := max(displayHeight/s.ScaleFactor, 0)
	if w == s.Width && h == s.Height {
		return false
	}
	s.Width = w
	s.Height = h
	return true
}

// Empty reports whether the surface has no drawable pixels, e.g. a minimized window.
func (s *Surface) Empty() bool {
	return s.Width == 0 || s.Height == 0
}

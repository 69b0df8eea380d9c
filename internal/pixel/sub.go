package pixel

import (
	"fmt"
	"image"
)

// SubBuffer is a rectangular window onto a parent buffer. It shares the
// parent's storage and lifecycle.
type SubBuffer struct {
	parent Buffer
	x0, y0 int
	w, h   int
}

// NewSubBuffer views the w x h window of parent starting at (x0, y0).
func NewSubBuffer(parent Buffer, x0, y0, w, h int) (*SubBuffer, error) {
	r := image.Rect(x0, y0, x0+w, y0+h)
	if w <= 0 || h <= 0 || !r.In(image.Rect(0, 0, parent.Width(), parent.Height())) {
		return nil, fmt.Errorf("%w: window %v in %dx%d", ErrBounds, r, parent.Width(), parent.Height())
	}
	return &SubBuffer{parent: parent, x0: x0, y0: y0, w: w, h: h}, nil
}

// Parent returns the underlying buffer.
func (s *SubBuffer) Parent() Buffer { return s.parent }

// Offset returns the window origin in parent coordinates.
func (s *SubBuffer) Offset() image.Point { return image.Pt(s.x0, s.y0) }

func (s *SubBuffer) Kind() Kind      { return s.parent.Kind() }
func (s *SubBuffer) Width() int      { return s.w }
func (s *SubBuffer) Height() int     { return s.h }
func (s *SubBuffer) Layout() *Layout { return s.parent.Layout() }

func (s *SubBuffer) Value(x, y, c int) float64 {
	return s.parent.Value(s.x0+x, s.y0+y, c)
}

func (s *SubBuffer) SetValue(x, y, c int, v float64) {
	s.parent.SetValue(s.x0+x, s.y0+y, c, v)
}

func (s *SubBuffer) Values(x, y int) []float64 {
	return s.parent.Values(s.x0+x, s.y0+y)
}

func (s *SubBuffer) SetValues(x, y int, vals []float64) {
	s.parent.SetValues(s.x0+x, s.y0+y, vals)
}

func (s *SubBuffer) SupportsParallelAccess() bool {
	return s.parent.SupportsParallelAccess()
}

// Release does nothing; the parent owns the storage.
func (s *SubBuffer) Release() {}

// Pixel buffers stored as one gonum matrix per channel
package dense

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"generic-imaging/internal/pixel"
)

// Kind is the representation reported by dense buffers.
const Kind pixel.Kind = "dense"

// Buffer keeps each channel in its own row-major matrix, row = y, col = x.
// Samples are stored unscaled.
type Buffer struct {
	planes []*mat.Dense
	layout *pixel.Layout
	w, h   int
}

func (b *Buffer) Kind() pixel.Kind             { return Kind }
func (b *Buffer) Width() int                   { return b.w }
func (b *Buffer) Height() int                  { return b.h }
func (b *Buffer) Layout() *pixel.Layout        { return b.layout }
func (b *Buffer) SupportsParallelAccess() bool { return true }
func (b *Buffer) Release()                     {}

// Plane returns the matrix holding channel c.
func (b *Buffer) Plane(c int) *mat.Dense {
	return b.planes[c]
}

func (b *Buffer) Value(x, y, c int) float64 {
	return b.planes[c].At(y, x)
}

func (b *Buffer) SetValue(x, y, c int, v float64) {
	b.planes[c].Set(y, x, v)
}

func (b *Buffer) Values(x, y int) []float64 {
	vals := make([]float64, len(b.planes))
	for c, p := range b.planes {
		vals[c] = p.At(y, x)
	}
	return vals
}

func (b *Buffer) SetValues(x, y int, vals []float64) {
	for c, p := range b.planes {
		if c < len(vals) {
			p.Set(y, x, vals[c])
		}
	}
}

// Factory builds dense buffers.
type Factory struct{}

// Default is the registered dense factory.
var Default = &Factory{}

func init() {
	pixel.Register(Default)
}

func (f *Factory) Kind() pixel.Kind {
	return Kind
}

func checkDims(h, w int, l *pixel.Layout) error {
	if err := pixel.CheckDims(h, w, l); err != nil {
		return err
	}
	// gonum matrices cannot be empty
	if h == 0 || w == 0 {
		return fmt.Errorf("%w: dense buffer needs non-zero dimensions", pixel.ErrConfig)
	}
	return nil
}

func (f *Factory) Image(h, w int, l *pixel.Layout) (pixel.Buffer, error) {
	if err := checkDims(h, w, l); err != nil {
		return nil, err
	}

	planes := make([]*mat.Dense, l.Channels())
	for c := range planes {
		planes[c] = mat.NewDense(h, w, nil)
	}
	return &Buffer{planes: planes, layout: l, w: w, h: h}, nil
}

// Wrap adopts one h x w matrix per channel.
func (f *Factory) Wrap(h, w int, l *pixel.Layout, external any) (pixel.Buffer, error) {
	if err := checkDims(h, w, l); err != nil {
		return nil, err
	}

	planes, ok := external.([]*mat.Dense)
	if !ok {
		return nil, fmt.Errorf("%w: dense cannot wrap %T", pixel.ErrUnsupportedType, external)
	}
	if len(planes) != l.Channels() {
		return nil, fmt.Errorf("%w: %d planes for %s", pixel.ErrShapeMismatch, len(planes), l.Name())
	}
	for c, p := range planes {
		if r, cols := p.Dims(); r != h || cols != w {
			return nil, fmt.Errorf("%w: plane %d is %dx%d, want %dx%d", pixel.ErrShapeMismatch, c, cols, r, w, h)
		}
	}
	return &Buffer{planes: planes, layout: l, w: w, h: h}, nil
}

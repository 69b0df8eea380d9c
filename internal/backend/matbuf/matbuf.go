// Pixel buffers backed by native OpenCV matrices
package matbuf

import (
	"fmt"
	"math"

	"gocv.io/x/gocv"

	"generic-imaging/internal/pixel"
)

// Kind is the representation reported by matrix buffers.
const Kind pixel.Kind = "matbuf"

// Buffer owns one gocv.Mat exclusively. The native handle is not safe for
// concurrent writers, so parallel access is never reported.
type Buffer struct {
	mat    gocv.Mat
	layout *pixel.Layout
	ch     int
	float  bool
	closed bool
}

// Mat returns the wrapped matrix. It stays owned by the buffer.
func (b *Buffer) Mat() gocv.Mat {
	return b.mat
}

func (b *Buffer) Kind() pixel.Kind             { return Kind }
func (b *Buffer) Width() int                   { return b.mat.Cols() }
func (b *Buffer) Height() int                  { return b.mat.Rows() }
func (b *Buffer) Layout() *pixel.Layout        { return b.layout }
func (b *Buffer) SupportsParallelAccess() bool { return false }

// Release closes the native matrix once.
func (b *Buffer) Release() {
	if b.closed {
		return
	}
	b.closed = true
	b.mat.Close()
}

// Released reports whether the native handle has been closed.
func (b *Buffer) Released() bool {
	return b.closed
}

func (b *Buffer) Value(x, y, c int) float64 {
	if b.float {
		return float64(b.mat.GetFloatAt(y, x*b.ch+c))
	}
	return float64(b.mat.GetUCharAt(y, x*b.ch+c))
}

func (b *Buffer) SetValue(x, y, c int, v float64) {
	if b.float {
		b.mat.SetFloatAt(y, x*b.ch+c, float32(v))
		return
	}
	b.mat.SetUCharAt(y, x*b.ch+c, toByte(v))
}

func (b *Buffer) Values(x, y int) []float64 {
	vals := make([]float64, b.ch)
	for c := range vals {
		vals[c] = b.Value(x, y, c)
	}
	return vals
}

func (b *Buffer) SetValues(x, y int, vals []float64) {
	for c := 0; c < b.ch && c < len(vals); c++ {
		b.SetValue(x, y, c, vals[c])
	}
}

func toByte(v float64) uint8 {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v)
}

// MatType picks the native element type for a layout: 8-bit unsigned for
// 0..255 layouts, 32-bit float otherwise.
func MatType(l *pixel.Layout) gocv.MatType {
	depth := gocv.MatTypeCV8U
	if !l.IsByteRange() {
		depth = gocv.MatTypeCV32F
	}
	return gocv.MatType(int(depth) + (l.Channels()-1)<<3)
}

// Factory builds matrix buffers. A factory with a tracker records every
// buffer it creates.
type Factory struct {
	tracker *pixel.Tracker
}

// Default is the registered matrix factory.
var Default = &Factory{}

func init() {
	pixel.Register(Default)
}

// WithTracker returns a factory that records its buffers in t.
func WithTracker(t *pixel.Tracker) *Factory {
	return &Factory{tracker: t}
}

func (f *Factory) Kind() pixel.Kind {
	return Kind
}

func (f *Factory) Image(h, w int, l *pixel.Layout) (pixel.Buffer, error) {
	if err := pixel.CheckDims(h, w, l); err != nil {
		return nil, err
	}
	m := gocv.NewMatWithSize(h, w, MatType(l))
	m.SetTo(gocv.NewScalar(0, 0, 0, 0))
	return f.adopt(m, l), nil
}

func (f *Factory) adopt(m gocv.Mat, l *pixel.Layout) *Buffer {
	b := &Buffer{mat: m, layout: l, ch: l.Channels(), float: !l.IsByteRange()}
	if f.tracker != nil {
		f.tracker.Track(b)
	}
	return b
}

// Wrap takes exclusive ownership of a gocv.Mat (or *gocv.Mat) whose size,
// channel count and depth match. On failure ownership stays with the caller.
func (f *Factory) Wrap(h, w int, l *pixel.Layout, external any) (pixel.Buffer, error) {
	if err := pixel.CheckDims(h, w, l); err != nil {
		return nil, err
	}

	var m gocv.Mat
	switch v := external.(type) {
	case gocv.Mat:
		m = v
	case *gocv.Mat:
		m = *v
	default:
		return nil, fmt.Errorf("%w: matbuf cannot wrap %T", pixel.ErrUnsupportedType, external)
	}

	if m.Rows() != h || m.Cols() != w || m.Channels() != l.Channels() {
		return nil, fmt.Errorf("%w: mat %dx%dx%d, want %dx%dx%d", pixel.ErrShapeMismatch,
			m.Cols(), m.Rows(), m.Channels(), w, h, l.Channels())
	}
	if want := MatType(l); m.Type() != want {
		return nil, fmt.Errorf("%w: mat type %v, want %v", pixel.ErrUnsupportedType, m.Type(), want)
	}
	return f.adopt(m, l), nil
}

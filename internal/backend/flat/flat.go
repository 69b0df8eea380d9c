// Flat numeric pixel buffers over contiguous slices
package flat

import (
	"fmt"
	"math"

	"golang.org/x/exp/constraints"

	"generic-imaging/internal/pixel"
)

// Number is the set of sample types a flat buffer can store.
type Number interface {
	constraints.Integer | constraints.Float
}

// Buffer stores samples interleaved as [y][x][c] in one slice.
type Buffer[T Number] struct {
	kind   pixel.Kind
	w, h   int
	ch     int
	layout *pixel.Layout
	data   []T
	conv   converter
}

type converter struct {
	lo, hi  float64
	integer bool
}

func converterFor[T Number]() converter {
	var zero T
	switch any(zero).(type) {
	case uint8:
		return converter{lo: 0, hi: math.MaxUint8, integer: true}
	case int8:
		return converter{lo: math.MinInt8, hi: math.MaxInt8, integer: true}
	case uint16:
		return converter{lo: 0, hi: math.MaxUint16, integer: true}
	case int16:
		return converter{lo: math.MinInt16, hi: math.MaxInt16, integer: true}
	case uint32:
		return converter{lo: 0, hi: math.MaxUint32, integer: true}
	case int32:
		return converter{lo: math.MinInt32, hi: math.MaxInt32, integer: true}
	case int, int64:
		return converter{lo: -(1 << 53), hi: 1 << 53, integer: true}
	case uint, uint64, uintptr:
		return converter{lo: 0, hi: 1 << 53, integer: true}
	default:
		return converter{lo: math.Inf(-1), hi: math.Inf(1)}
	}
}

// store saturates integer storage at its limits and truncates toward zero.
func store[T Number](conv converter, v float64) T {
	if !conv.integer {
		return T(v)
	}
	switch {
	case math.IsNaN(v):
		return 0
	case v < conv.lo:
		v = conv.lo
	case v > conv.hi:
		v = conv.hi
	}
	return T(v)
}

func (b *Buffer[T]) index(x, y, c int) int {
	return (y*b.w+x)*b.ch + c
}

func (b *Buffer[T]) Kind() pixel.Kind             { return b.kind }
func (b *Buffer[T]) Width() int                   { return b.w }
func (b *Buffer[T]) Height() int                  { return b.h }
func (b *Buffer[T]) Layout() *pixel.Layout        { return b.layout }
func (b *Buffer[T]) SupportsParallelAccess() bool { return true }
func (b *Buffer[T]) Release()                     {}

// Data exposes the backing slice.
func (b *Buffer[T]) Data() []T {
	return b.data
}

func (b *Buffer[T]) Value(x, y, c int) float64 {
	return float64(b.data[b.index(x, y, c)])
}

func (b *Buffer[T]) SetValue(x, y, c int, v float64) {
	b.data[b.index(x, y, c)] = store[T](b.conv, v)
}

func (b *Buffer[T]) Values(x, y int) []float64 {
	i := b.index(x, y, 0)
	vals := make([]float64, b.ch)
	for c := range vals {
		vals[c] = float64(b.data[i+c])
	}
	return vals
}

func (b *Buffer[T]) SetValues(x, y int, vals []float64) {
	i := b.index(x, y, 0)
	for c := 0; c < b.ch && c < len(vals); c++ {
		b.data[i+c] = store[T](b.conv, vals[c])
	}
}

// Factory creates flat buffers of one sample type.
type Factory[T Number] struct {
	kind pixel.Kind
}

// NewFactory creates a factory reporting kind.
func NewFactory[T Number](kind pixel.Kind) *Factory[T] {
	return &Factory[T]{kind: kind}
}

var (
	Uint8   = NewFactory[uint8]("flat/uint8")
	Int16   = NewFactory[int16]("flat/int16")
	Float32 = NewFactory[float32]("flat/float32")
	Float64 = NewFactory[float64]("flat/float64")
)

func init() {
	pixel.Register(Uint8)
	pixel.Register(Int16)
	pixel.Register(Float32)
	pixel.Register(Float64)
}

func (f *Factory[T]) Kind() pixel.Kind {
	return f.kind
}

// New allocates a typed zero-filled buffer.
func (f *Factory[T]) New(h, w int, l *pixel.Layout) (*Buffer[T], error) {
	if err := pixel.CheckDims(h, w, l); err != nil {
		return nil, err
	}
	return f.wrap(h, w, l, make([]T, h*w*l.Channels())), nil
}

func (f *Factory[T]) wrap(h, w int, l *pixel.Layout, data []T) *Buffer[T] {
	return &Buffer[T]{
		kind:   f.kind,
		w:      w,
		h:      h,
		ch:     l.Channels(),
		layout: l,
		data:   data,
		conv:   converterFor[T](),
	}
}

func (f *Factory[T]) Image(h, w int, l *pixel.Layout) (pixel.Buffer, error) {
	b, err := f.New(h, w, l)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Wrap shares a caller []T laid out as interleaved [y][x][c] samples.
// A [][][]T indexed [y][x][c] is accepted too, but is copied into
// interleaved storage rather than shared.
func (f *Factory[T]) Wrap(h, w int, l *pixel.Layout, external any) (pixel.Buffer, error) {
	if err := pixel.CheckDims(h, w, l); err != nil {
		return nil, err
	}

	switch data := external.(type) {
	case []T:
		if want := h * w * l.Channels(); len(data) != want {
			return nil, fmt.Errorf("%w: slice of %d samples, want %d", pixel.ErrShapeMismatch, len(data), want)
		}
		return f.wrap(h, w, l, data), nil
	case [][][]T:
		return f.fromNested(h, w, l, data)
	default:
		return nil, fmt.Errorf("%w: %s cannot wrap %T", pixel.ErrUnsupportedType, f.kind, external)
	}
}

func (f *Factory[T]) fromNested(h, w int, l *pixel.Layout, rows [][][]T) (pixel.Buffer, error) {
	ch := l.Channels()
	if len(rows) != h {
		return nil, fmt.Errorf("%w: %d rows, want %d", pixel.ErrShapeMismatch, len(rows), h)
	}
	data := make([]T, 0, h*w*ch)
	for y, row := range rows {
		if len(row) != w {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", pixel.ErrShapeMismatch, y, len(row), w)
		}
		for x, px := range row {
			if len(px) != ch {
				return nil, fmt.Errorf("%w: pixel (%d,%d) has %d channels, want %d", pixel.ErrShapeMismatch, x, y, len(px), ch)
			}
			data = append(data, px...)
		}
	}
	return f.wrap(h, w, l, data), nil
}

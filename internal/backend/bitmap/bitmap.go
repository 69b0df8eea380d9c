// Pixel buffers backed by standard library bitmaps
package bitmap

import (
	"fmt"
	"image"
	"math"

	"generic-imaging/internal/pixel"
)

// Kind is the representation reported by bitmap buffers.
const Kind pixel.Kind = "bitmap"

// channel offsets inside one RGBA pixel for each supported layout
var channelOrder = map[*pixel.Layout][]int{
	pixel.Greyscale: {0},
	pixel.Binary:    {0},
	pixel.RGB:       {0, 1, 2},
	pixel.BGR:       {2, 1, 0},
	pixel.RGBA:      {0, 1, 2, 3},
	pixel.BGRA:      {2, 1, 0, 3},
}

// Buffer exposes an *image.Gray or *image.RGBA through the pixel contract.
type Buffer struct {
	img    image.Image
	pix    []uint8
	stride int
	base   int
	step   int
	order  []int
	layout *pixel.Layout
	w, h   int
}

func (b *Buffer) Kind() pixel.Kind             { return Kind }
func (b *Buffer) Width() int                   { return b.w }
func (b *Buffer) Height() int                  { return b.h }
func (b *Buffer) Layout() *pixel.Layout        { return b.layout }
func (b *Buffer) SupportsParallelAccess() bool { return true }
func (b *Buffer) Release()                     {}

// Image returns the wrapped bitmap.
func (b *Buffer) Image() image.Image {
	return b.img
}

func (b *Buffer) offset(x, y int) int {
	return b.base + y*b.stride + x*b.step
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

func (b *Buffer) Value(x, y, c int) float64 {
	return float64(b.pix[b.offset(x, y)+b.order[c]])
}

func (b *Buffer) SetValue(x, y, c int, v float64) {
	b.pix[b.offset(x, y)+b.order[c]] = toByte(v)
}

func (b *Buffer) Values(x, y int) []float64 {
	i := b.offset(x, y)
	vals := make([]float64, len(b.order))
	for c, o := range b.order {
		vals[c] = float64(b.pix[i+o])
	}
	return vals
}

func (b *Buffer) SetValues(x, y int, vals []float64) {
	i := b.offset(x, y)
	for c, o := range b.order {
		if c < len(vals) {
			b.pix[i+o] = toByte(vals[c])
		}
	}
}

// Factory builds bitmap buffers.
type Factory struct{}

// Default is the registered bitmap factory.
var Default = &Factory{}

func init() {
	pixel.Register(Default)
}

func (f *Factory) Kind() pixel.Kind {
	return Kind
}

func orderFor(l *pixel.Layout) ([]int, error) {
	order, ok := channelOrder[l]
	if !ok {
		return nil, fmt.Errorf("%w: bitmap cannot store %s", pixel.ErrType, l.Name())
	}
	return order, nil
}

func (f *Factory) Image(h, w int, l *pixel.Layout) (pixel.Buffer, error) {
	if err := pixel.CheckDims(h, w, l); err != nil {
		return nil, err
	}
	if _, err := orderFor(l); err != nil {
		return nil, err
	}

	r := image.Rect(0, 0, w, h)
	if l.Channels() == 1 {
		return f.Wrap(h, w, l, image.NewGray(r))
	}

	img := image.NewRGBA(r)
	if l.Channels() == 3 {
		for i := 3; i < len(img.Pix); i += 4 {
			img.Pix[i] = 255
		}
	}
	return f.Wrap(h, w, l, img)
}

// Wrap adopts an *image.Gray or *image.RGBA of matching size.
func (f *Factory) Wrap(h, w int, l *pixel.Layout, external any) (pixel.Buffer, error) {
	if err := pixel.CheckDims(h, w, l); err != nil {
		return nil, err
	}
	order, err := orderFor(l)
	if err != nil {
		return nil, err
	}

	b := &Buffer{order: order, layout: l, w: w, h: h}
	var bounds image.Rectangle
	switch img := external.(type) {
	case *image.Gray:
		if l.Channels() != 1 {
			return nil, fmt.Errorf("%w: grey bitmap for %s", pixel.ErrShapeMismatch, l.Name())
		}
		bounds = img.Bounds()
		b.img, b.pix, b.stride, b.step = img, img.Pix, img.Stride, 1
		b.base = img.PixOffset(bounds.Min.X, bounds.Min.Y)
	case *image.RGBA:
		if l.Channels() == 1 {
			return nil, fmt.Errorf("%w: colour bitmap for %s", pixel.ErrShapeMismatch, l.Name())
		}
		bounds = img.Bounds()
		b.img, b.pix, b.stride, b.step = img, img.Pix, img.Stride, 4
		b.base = img.PixOffset(bounds.Min.X, bounds.Min.Y)
	default:
		return nil, fmt.Errorf("%w: bitmap cannot wrap %T", pixel.ErrUnsupportedType, external)
	}

	if bounds.Dx() != w || bounds.Dy() != h {
		return nil, fmt.Errorf("%w: bitmap %dx%d, want %dx%d", pixel.ErrShapeMismatch, bounds.Dx(), bounds.Dy(), w, h)
	}
	return b, nil
}

// FromImage converts any decoded image into a bitmap buffer, choosing
// GREYSCALE for grey sources and RGBA otherwise.
func FromImage(src image.Image) (*Buffer, error) {
	bounds := src.Bounds()
	switch img := src.(type) {
	case *image.Gray:
		b, err := Default.Wrap(bounds.Dy(), bounds.Dx(), pixel.Greyscale, img)
		if err != nil {
			return nil, err
		}
		return b.(*Buffer), nil
	case *image.RGBA:
		b, err := Default.Wrap(bounds.Dy(), bounds.Dx(), pixel.RGBA, img)
		if err != nil {
			return nil, err
		}
		return b.(*Buffer), nil
	}

	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			rgba.Set(x, y, src.At(bounds.Min.X+x, bounds.Min.Y+y))
		}
	}
	b, err := Default.Wrap(bounds.Dy(), bounds.Dx(), pixel.RGBA, rgba)
	if err != nil {
		return nil, err
	}
	return b.(*Buffer), nil
}

package transform

import (
	"fmt"
	"image"
	"math"

	"generic-imaging/internal/pixel"
)

// Margins are the pixels added on each side by Pad.
type Margins struct {
	Left, Right, Top, Bottom int
}

// Uniform returns equal margins on all four sides.
func Uniform(n int) Margins {
	return Margins{Left: n, Right: n, Top: n, Bottom: n}
}

// Pad frames src with m. The frame holds fill, given once per channel or
// once for all channels; no fill means zero.
func Pad(src pixel.Buffer, f pixel.Factory, m Margins, fill ...float64) (pixel.Buffer, error) {
	if m.Left < 0 || m.Right < 0 || m.Top < 0 || m.Bottom < 0 {
		return nil, fmt.Errorf("%w: negative padding %+v", pixel.ErrConfig, m)
	}
	if len(fill) == 0 {
		fill = []float64{0}
	}

	w, h := src.Width(), src.Height()
	out, err := pixel.FilledImage(f, h+m.Top+m.Bottom, w+m.Left+m.Right, src.Layout(), fill...)
	if err != nil {
		return nil, err
	}

	ch := pixel.Channels(src)
	inner := image.Rect(m.Left, m.Top, m.Left+w, m.Top+h)
	err = pixel.Apply(out, func(x, y int) {
		for c := 0; c < ch; c++ {
			out.SetValue(x, y, c, src.Value(x-m.Left, y-m.Top, c))
		}
	}, pixel.WithRect(inner), pixel.WithParallel(pixel.ParallelSafe(src, out)))
	if err != nil {
		out.Release()
		return nil, err
	}
	return out, nil
}

// Crop copies the window r of src into a new buffer from f.
func Crop(src pixel.Buffer, f pixel.Factory, r image.Rectangle) (pixel.Buffer, error) {
	window, err := pixel.NewSubBuffer(src, r.Min.X, r.Min.Y, r.Dx(), r.Dy())
	if err != nil {
		return nil, err
	}
	return pixel.CreateCopy(window, f)
}

// Scale resizes a GREYSCALE or BINARY image to w x h, sampling src with
// interp at (x*srcW/w, y*srcH/h). Samples are rounded half up and the
// result is GREYSCALE.
func Scale(src pixel.Buffer, f pixel.Factory, interp Interpolator, w, h int) (pixel.Buffer, error) {
	if err := pixel.RequireLayout(src, pixel.Greyscale, pixel.Binary); err != nil {
		return nil, fmt.Errorf("scale: %w", err)
	}
	if interp == nil {
		return nil, fmt.Errorf("%w: scale needs an interpolator", pixel.ErrConfig)
	}
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("%w: target size %dx%d", pixel.ErrConfig, w, h)
	}

	out, err := f.Image(h, w, pixel.Greyscale)
	if err != nil {
		return nil, err
	}
	sx := float64(src.Width()) / float64(w)
	sy := float64(src.Height()) / float64(h)
	err = pixel.Apply(out, func(x, y int) {
		v := interp.Interpolate(src, sx*float64(x), sy*float64(y))
		out.SetValue(x, y, 0, math.Floor(v+0.5))
	}, pixel.WithParallel(pixel.ParallelSafe(src, out)))
	if err != nil {
		out.Release()
		return nil, err
	}
	return out, nil
}

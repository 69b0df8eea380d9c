package convert

import (
	"fmt"

	"generic-imaging/internal/pixel"
)

// Threshold marks every pixel whose first channel is at least t as set.
func Threshold(src pixel.Buffer, f pixel.Factory, t float64) (pixel.Buffer, error) {
	if err := pixel.RequireLayout(src, pixel.Greyscale, pixel.Binary); err != nil {
		return nil, fmt.Errorf("threshold: %w", err)
	}

	return convert(src, f, pixel.Binary, func(x, y int) []float64 {
		if src.Value(x, y, 0) >= t {
			return []float64{pixel.BinarySet}
		}
		return []float64{pixel.BinaryUnset}
	})
}

// Invert reflects every sample inside its channel range.
func Invert(src pixel.Buffer, f pixel.Factory) (pixel.Buffer, error) {
	l := src.Layout()
	ch := l.Channels()
	return convert(src, f, l, func(x, y int) []float64 {
		vals := src.Values(x, y)
		for c := 0; c < ch; c++ {
			vals[c] = l.Max(c) + l.Min(c) - vals[c]
		}
		return vals
	})
}

// SplitChannels returns one GREYSCALE buffer per channel of src.
func SplitChannels(src pixel.Buffer, f pixel.Factory) ([]pixel.Buffer, error) {
	planes := make([]pixel.Buffer, 0, pixel.Channels(src))
	for c := 0; c < pixel.Channels(src); c++ {
		plane, err := convert(src, f, pixel.Greyscale, func(x, y int) []float64 {
			return []float64{src.Value(x, y, c)}
		})
		if err != nil {
			for _, p := range planes {
				p.Release()
			}
			return nil, err
		}
		planes = append(planes, plane)
	}
	return planes, nil
}

// MergeChannels stacks single-channel planes of equal size into one buffer
// of the given layout.
func MergeChannels(planes []pixel.Buffer, l *pixel.Layout, f pixel.Factory) (pixel.Buffer, error) {
	if len(planes) == 0 || len(planes) != l.Channels() {
		return nil, fmt.Errorf("%w: %d planes for %s", pixel.ErrShapeMismatch, len(planes), l.Name())
	}
	first := planes[0]
	for i, p := range planes {
		if pixel.Channels(p) != 1 {
			return nil, fmt.Errorf("%w: plane %d has %d channels", pixel.ErrShapeMismatch, i, pixel.Channels(p))
		}
		if p.Width() != first.Width() || p.Height() != first.Height() {
			return nil, fmt.Errorf("%w: plane %d is %dx%d, want %dx%d", pixel.ErrShapeMismatch,
				i, p.Width(), p.Height(), first.Width(), first.Height())
		}
	}

	return convert(first, f, l, func(x, y int) []float64 {
		vals := make([]float64, len(planes))
		for c, p := range planes {
			vals[c] = p.Value(x, y, 0)
		}
		return vals
	})
}

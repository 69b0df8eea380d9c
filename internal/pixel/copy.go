package pixel

import (
	"fmt"
	"math"
)

// SameShape reports whether a and b agree in width, height and channel count.
func SameShape(a, b Buffer) bool {
	return a.Width() == b.Width() && a.Height() == b.Height() && Channels(a) == Channels(b)
}

func shapeError(a, b Buffer) error {
	return fmt.Errorf("%w: %dx%dx%d vs %dx%dx%d", ErrShapeMismatch,
		a.Width(), a.Height(), Channels(a), b.Width(), b.Height(), Channels(b))
}

// CopyTo copies every sample of src onto dst. Samples are converted only
// numerically; channel semantics must already agree.
func CopyTo(src, dst Buffer) error {
	if !SameShape(src, dst) {
		return shapeError(src, dst)
	}

	ch := Channels(src)
	return Apply(dst, func(x, y int) {
		for c := 0; c < ch; c++ {
			dst.SetValue(x, y, c, src.Value(x, y, c))
		}
	}, WithParallel(ParallelSafe(src, dst)))
}

// CreateCopy allocates a buffer of the same shape and layout through f and
// deep-copies src into it.
func CreateCopy(src Buffer, f Factory) (Buffer, error) {
	dst, err := f.Image(src.Height(), src.Width(), src.Layout())
	if err != nil {
		return nil, fmt.Errorf("allocating %s copy: %w", f.Kind(), err)
	}
	if err := CopyTo(src, dst); err != nil {
		dst.Release()
		return nil, err
	}
	return dst, nil
}

// Equal compares shape, layout and every sample within eps.
func Equal(a, b Buffer, eps float64) bool {
	if !SameShape(a, b) || a.Layout() != b.Layout() {
		return false
	}

	ch := Channels(a)
	for y := 0; y < a.Height(); y++ {
		for x := 0; x < a.Width(); x++ {
			for c := 0; c < ch; c++ {
				if math.Abs(a.Value(x, y, c)-b.Value(x, y, c)) > eps {
					return false
				}
			}
		}
	}
	return true
}

// CheckRange reports the first sample lying outside its channel's range.
func CheckRange(b Buffer) error {
	l := b.Layout()
	for y := 0; y < b.Height(); y++ {
		for x := 0; x < b.Width(); x++ {
			for c := 0; c < l.Channels(); c++ {
				v := b.Value(x, y, c)
				if v < l.Min(c) || v > l.Max(c) || math.IsNaN(v) {
					return fmt.Errorf("%w: %v at (%d,%d,%d) for %s", ErrRange, v, x, y, c, l.Name())
				}
			}
		}
	}
	return nil
}

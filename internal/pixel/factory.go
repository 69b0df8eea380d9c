// Representation factories and buffer construction helpers
package pixel

import (
	"fmt"
	"math/rand/v2"
	"sync"
)

// Factory builds buffers over one concrete storage kind.
type Factory interface {
	Kind() Kind

	// Image allocates a zero-filled buffer.
	Image(h, w int, l *Layout) (Buffer, error)

	// Wrap adopts an external storage object after checking that its own
	// dimensions and channel count match. Objects the factory does not
	// understand fail with ErrUnsupportedType.
	Wrap(h, w int, l *Layout, external any) (Buffer, error)
}

// CheckDims validates the arguments every Factory.Image receives.
func CheckDims(h, w int, l *Layout) error {
	if h < 0 || w < 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrConfig, w, h)
	}
	if l == nil {
		return fmt.Errorf("%w: nil layout", ErrConfig)
	}
	return nil
}

// FilledImage allocates a buffer with every pixel set to fill. fill holds
// one value per channel, or a single value used for all channels.
func FilledImage(f Factory, h, w int, l *Layout, fill ...float64) (Buffer, error) {
	if err := CheckDims(h, w, l); err != nil {
		return nil, err
	}

	ch := l.Channels()
	vals := make([]float64, ch)
	switch len(fill) {
	case 1:
		for c := range vals {
			vals[c] = fill[0]
		}
	case ch:
		copy(vals, fill)
	default:
		return nil, fmt.Errorf("%w: %d fill values for %d channels", ErrShapeMismatch, len(fill), ch)
	}

	b, err := f.Image(h, w, l)
	if err != nil {
		return nil, err
	}
	if err := Apply(b, func(x, y int) {
		b.SetValues(x, y, vals)
	}, WithParallel(true)); err != nil {
		b.Release()
		return nil, err
	}
	return b, nil
}

// RandomImage allocates a buffer whose samples are drawn uniformly from
// [minVal, maxVal). rng is shared by all workers when parallel is set.
func RandomImage(f Factory, h, w int, l *Layout, rng *rand.Rand, minVal, maxVal float64, parallel bool) (Buffer, error) {
	if rng == nil {
		return nil, fmt.Errorf("%w: nil random source", ErrConfig)
	}
	if maxVal < minVal {
		return nil, fmt.Errorf("%w: min %v above max %v", ErrConfig, minVal, maxVal)
	}

	b, err := f.Image(h, w, l)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	ch := l.Channels()
	span := maxVal - minVal
	fill := func(x, y int) {
		vals := make([]float64, ch)
		mu.Lock()
		for c := range vals {
			vals[c] = minVal + rng.Float64()*span
		}
		mu.Unlock()
		b.SetValues(x, y, vals)
	}

	if err := Apply(b, fill, WithParallel(parallel)); err != nil {
		b.Release()
		return nil, err
	}
	return b, nil
}

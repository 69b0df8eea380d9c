// Pixel buffer contract implemented once per storage kind
package pixel

import (
	"fmt"
)

// Kind identifies a concrete storage representation.
type Kind string

// Buffer is a two-dimensional multi-channel numeric grid.
//
// Value, SetValue, Values and SetValues are unchecked: callers guarantee
// 0 <= x < Width, 0 <= y < Height and 0 <= c < channels. Use At and Set
// for checked access. Writes outside the layout range are stored as the
// representation allows; CheckRange validates them explicitly.
type Buffer interface {
	Kind() Kind
	Width() int
	Height() int
	Layout() *Layout

	Value(x, y, c int) float64
	SetValue(x, y, c int, v float64)
	Values(x, y int) []float64
	SetValues(x, y int, vals []float64)

	// SupportsParallelAccess reports whether disjoint rows may be written
	// from different goroutines.
	SupportsParallelAccess() bool

	// Release frees any native handle. It is idempotent and a no-op for
	// garbage collected storage.
	Release()
}

// Channels is shorthand for b.Layout().Channels().
func Channels(b Buffer) int {
	return b.Layout().Channels()
}

// InBounds reports whether (x, y) lies inside b.
func InBounds(b Buffer, x, y int) bool {
	return x >= 0 && y >= 0 && x < b.Width() && y < b.Height()
}

func checkIndex(b Buffer, x, y, c int) error {
	if !InBounds(b, x, y) {
		return fmt.Errorf("%w: (%d,%d) in %dx%d", ErrBounds, x, y, b.Width(), b.Height())
	}
	if c < 0 || c >= Channels(b) {
		return fmt.Errorf("%w: channel %d of %s", ErrBounds, c, b.Layout().Name())
	}
	return nil
}

// At is the checked form of b.Value.
func At(b Buffer, x, y, c int) (float64, error) {
	if err := checkIndex(b, x, y, c); err != nil {
		return 0, err
	}
	return b.Value(x, y, c), nil
}

// Set is the checked form of b.SetValue.
func Set(b Buffer, x, y, c int, v float64) error {
	if err := checkIndex(b, x, y, c); err != nil {
		return err
	}
	b.SetValue(x, y, c, v)
	return nil
}

// Describe formats a buffer for log fields.
func Describe(b Buffer) string {
	return fmt.Sprintf("%s %dx%d %s", b.Kind(), b.Width(), b.Height(), b.Layout().Name())
}

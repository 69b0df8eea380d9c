package pixel_test

import (
	"image"
	"math/rand/v2"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"generic-imaging/internal/backend/bitmap"
	"generic-imaging/internal/backend/dense"
	"generic-imaging/internal/backend/flat"
	"generic-imaging/internal/pixel"
)

func TestLayouts(t *testing.T) {
	tests := []struct {
		layout   *pixel.Layout
		channels int
		bytes    bool
	}{
		{pixel.Greyscale, 1, true},
		{pixel.Binary, 1, true},
		{pixel.RGB, 3, true},
		{pixel.BGRA, 4, true},
		{pixel.HSV, 3, false},
		{pixel.LUV, 3, false},
	}
	for _, tt := range tests {
		t.Run(tt.layout.Name(), func(t *testing.T) {
			assert.Equal(t, tt.channels, tt.layout.Channels())
			assert.Equal(t, tt.bytes, tt.layout.IsByteRange())

			byName, err := pixel.LayoutByName(tt.layout.Name())
			require.NoError(t, err)
			assert.Same(t, tt.layout, byName)
		})
	}

	assert.Equal(t, 360.0, pixel.HSV.Max(0))
	_, err := pixel.HSV.Range(3)
	assert.ErrorIs(t, err, pixel.ErrBounds)

	assert.Same(t, pixel.Unknown(5), pixel.Unknown(5))
	assert.Equal(t, "UNKNOWN_5_CHANNEL", pixel.Unknown(5).Name())
	l, err := pixel.LayoutByName("UNKNOWN_5_CHANNEL")
	require.NoError(t, err)
	assert.Same(t, pixel.Unknown(5), l)

	_, err = pixel.LayoutByName("CMYK")
	assert.ErrorIs(t, err, pixel.ErrType)

	assert.Same(t, pixel.RGB, pixel.ForChannels(3))
	assert.Same(t, pixel.Unknown(2), pixel.ForChannels(2))
}

func TestCheckedAccess(t *testing.T) {
	b, err := flat.Uint8.Image(2, 3, pixel.RGB)
	require.NoError(t, err)

	require.NoError(t, pixel.Set(b, 2, 1, 2, 77))
	v, err := pixel.At(b, 2, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 77.0, v)

	assert.ErrorIs(t, pixel.Set(b, 3, 0, 0, 1), pixel.ErrBounds)
	_, err = pixel.At(b, 0, 0, 3)
	assert.ErrorIs(t, err, pixel.ErrBounds)
	_, err = pixel.At(b, 0, -1, 0)
	assert.ErrorIs(t, err, pixel.ErrBounds)
}

func TestApply(t *testing.T) {
	b, err := flat.Uint8.Image(6, 8, pixel.Greyscale)
	require.NoError(t, err)

	var visited atomic.Int64
	require.NoError(t, pixel.Apply(b, func(x, y int) {
		visited.Add(1)
		b.SetValue(x, y, 0, 1)
	}, pixel.WithParallel(true)))
	assert.Equal(t, int64(48), visited.Load())

	visited.Store(0)
	require.NoError(t, pixel.Apply(b, func(x, y int) {
		visited.Add(1)
		b.SetValue(x, y, 0, 9)
	}, pixel.WithRect(image.Rect(2, 1, 6, 5)), pixel.WithStride(2, 2)))
	assert.Equal(t, int64(4), visited.Load())
	assert.Equal(t, 9.0, b.Value(4, 3, 0))
	assert.Equal(t, 1.0, b.Value(5, 3, 0))

	assert.ErrorIs(t, pixel.Apply(b, func(x, y int) {}, pixel.WithRect(image.Rect(0, 0, 9, 2))), pixel.ErrBounds)
	assert.ErrorIs(t, pixel.Apply(b, func(x, y int) {}, pixel.WithStride(0, 1)), pixel.ErrConfig)
}

func TestParallelRowsCoversRange(t *testing.T) {
	seen := make([]atomic.Int32, 37)
	pixel.ParallelRows(len(seen), func(start, end int) {
		for i := start; i < end; i++ {
			seen[i].Add(1)
		}
	})
	for i := range seen {
		assert.Equal(t, int32(1), seen[i].Load(), "row %d", i)
	}
}

func TestSubBuffer(t *testing.T) {
	parent, err := flat.Uint8.Image(4, 4, pixel.Greyscale)
	require.NoError(t, err)

	sub, err := pixel.NewSubBuffer(parent, 1, 2, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, sub.Width())
	assert.Equal(t, 2, sub.Height())
	assert.Equal(t, image.Pt(1, 2), sub.Offset())

	sub.SetValue(0, 0, 0, 42)
	assert.Equal(t, 42.0, parent.Value(1, 2, 0))
	sub.Release()
	assert.Equal(t, 42.0, parent.Value(1, 2, 0))

	_, err = pixel.NewSubBuffer(parent, 2, 2, 3, 1)
	assert.ErrorIs(t, err, pixel.ErrBounds)
	_, err = pixel.NewSubBuffer(parent, 0, 0, 0, 1)
	assert.ErrorIs(t, err, pixel.ErrBounds)
}

type releaseCounter struct {
	pixel.Buffer
	released int
}

func (r *releaseCounter) Release() { r.released++ }

func TestTracker(t *testing.T) {
	tr := pixel.NewTracker()
	a := &releaseCounter{Buffer: mustImage(t, flat.Uint8, pixel.Greyscale)}
	b := &releaseCounter{Buffer: mustImage(t, flat.Uint8, pixel.Greyscale)}
	tr.Track(a)
	tr.Track(b)
	assert.Equal(t, 2, tr.Live())

	assert.Equal(t, 2, tr.ReleaseAll())
	assert.Equal(t, 0, tr.Live())
	assert.Equal(t, 1, a.released)
	assert.Equal(t, 1, b.released)
	assert.Equal(t, 0, tr.ReleaseAll())
}

func mustImage(t *testing.T, f pixel.Factory, l *pixel.Layout) pixel.Buffer {
	t.Helper()
	b, err := f.Image(3, 4, l)
	require.NoError(t, err)
	return b
}

func TestRegistry(t *testing.T) {
	f, err := pixel.Lookup("flat/uint8")
	require.NoError(t, err)
	assert.Same(t, flat.Uint8, f)

	_, err = pixel.Lookup("tiles")
	assert.ErrorIs(t, err, pixel.ErrUnsupportedType)

	kinds := pixel.Kinds()
	assert.Contains(t, kinds, dense.Kind)
	assert.Contains(t, kinds, bitmap.Kind)
	assert.IsIncreasing(t, kinds)

	r := pixel.NewRegistry()
	_, err = r.Lookup(dense.Kind)
	assert.ErrorIs(t, err, pixel.ErrUnsupportedType)
	r.Register(dense.Default)
	f, err = r.Lookup(dense.Kind)
	require.NoError(t, err)
	assert.Same(t, dense.Default, f)
}

func TestFilledAndRandomImages(t *testing.T) {
	b, err := pixel.FilledImage(flat.Uint8, 2, 3, pixel.RGB, 1, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, b.Values(2, 1))

	b, err = pixel.FilledImage(dense.Default, 2, 3, pixel.RGB, 7)
	require.NoError(t, err)
	assert.Equal(t, []float64{7, 7, 7}, b.Values(0, 0))

	_, err = pixel.FilledImage(flat.Uint8, 2, 3, pixel.RGB, 1, 2)
	assert.ErrorIs(t, err, pixel.ErrShapeMismatch)
	_, err = pixel.FilledImage(flat.Uint8, -1, 3, pixel.RGB, 1)
	assert.ErrorIs(t, err, pixel.ErrConfig)

	rng := rand.New(rand.NewPCG(1, 2))
	b, err = pixel.RandomImage(flat.Float64, 10, 10, pixel.HSV, rng, 0.25, 0.5, true)
	require.NoError(t, err)
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			for _, v := range b.Values(x, y) {
				assert.GreaterOrEqual(t, v, 0.25)
				assert.Less(t, v, 0.5)
			}
		}
	}

	_, err = pixel.RandomImage(flat.Float64, 1, 1, pixel.HSV, nil, 0, 1, false)
	assert.ErrorIs(t, err, pixel.ErrConfig)
	_, err = pixel.RandomImage(flat.Float64, 1, 1, pixel.HSV, rng, 2, 1, false)
	assert.ErrorIs(t, err, pixel.ErrConfig)
}

func TestCopyAcrossRepresentations(t *testing.T) {
	src, err := pixel.RandomImage(flat.Uint8, 5, 7, pixel.RGB, rand.New(rand.NewPCG(3, 4)), 0, 256, false)
	require.NoError(t, err)

	for _, f := range []pixel.Factory{flat.Int16, flat.Float32, flat.Float64, dense.Default, bitmap.Default} {
		t.Run(string(f.Kind()), func(t *testing.T) {
			dst, err := pixel.CreateCopy(src, f)
			require.NoError(t, err)
			assert.Equal(t, f.Kind(), dst.Kind())
			assert.True(t, pixel.Equal(src, dst, 0))

			back, err := pixel.CreateCopy(dst, flat.Uint8)
			require.NoError(t, err)
			assert.True(t, pixel.Equal(src, back, 0))
		})
	}

	// every registered pair round-trips A -> B -> A unchanged
	rng := rand.New(rand.NewPCG(7, 8))
	for _, l := range []*pixel.Layout{pixel.Greyscale, pixel.RGB} {
		seed, err := pixel.RandomImage(flat.Uint8, 4, 6, l, rng, 0, 256, false)
		require.NoError(t, err)
		for _, ka := range pixel.Kinds() {
			for _, kb := range pixel.Kinds() {
				t.Run(l.Name()+"/"+string(ka)+"->"+string(kb), func(t *testing.T) {
					fa, err := pixel.Lookup(ka)
					require.NoError(t, err)
					fb, err := pixel.Lookup(kb)
					require.NoError(t, err)

					a, err := pixel.CreateCopy(seed, fa)
					require.NoError(t, err)
					b, err := pixel.CreateCopy(a, fb)
					require.NoError(t, err)
					back, err := pixel.CreateCopy(b, fa)
					require.NoError(t, err)
					assert.True(t, pixel.Equal(a, back, 0))
				})
			}
		}
	}

	grey := mustImage(t, flat.Uint8, pixel.Greyscale)
	assert.ErrorIs(t, pixel.CopyTo(src, grey), pixel.ErrShapeMismatch)

	_, err = pixel.CreateCopy(mustImage(t, flat.Float64, pixel.HSV), bitmap.Default)
	assert.ErrorIs(t, err, pixel.ErrType)
}

func TestEqualAndCheckRange(t *testing.T) {
	a := mustImage(t, flat.Float64, pixel.Greyscale)
	b := mustImage(t, flat.Float64, pixel.Binary)
	assert.False(t, pixel.Equal(a, b, 0))

	c := mustImage(t, flat.Float64, pixel.Greyscale)
	c.SetValue(1, 1, 0, 0.5)
	assert.False(t, pixel.Equal(a, c, 0.1))
	assert.True(t, pixel.Equal(a, c, 0.5))

	require.NoError(t, pixel.CheckRange(c))
	c.SetValue(2, 0, 0, 300)
	assert.ErrorIs(t, pixel.CheckRange(c), pixel.ErrRange)
}

func TestRequireLayout(t *testing.T) {
	b := mustImage(t, flat.Uint8, pixel.RGB)
	assert.NoError(t, pixel.RequireLayout(b, pixel.Greyscale, pixel.RGB))
	assert.ErrorIs(t, pixel.RequireLayout(b, pixel.Greyscale), pixel.ErrType)
	assert.Equal(t, "flat/uint8 4x3 RGB", pixel.Describe(b))
}

type serialOnly struct {
	pixel.Buffer
	reads int
}

func (s *serialOnly) SupportsParallelAccess() bool { return false }

func (s *serialOnly) Value(x, y, c int) float64 {
	s.reads++
	return s.Buffer.Value(x, y, c)
}

func TestParallelSafe(t *testing.T) {
	a := mustImage(t, flat.Uint8, pixel.Greyscale)
	b := mustImage(t, dense.Default, pixel.Greyscale)
	assert.True(t, pixel.ParallelSafe(a, b))
	assert.True(t, pixel.ParallelSafe())
	assert.False(t, pixel.ParallelSafe(a, &serialOnly{Buffer: b}))
}

func TestCopyToFromSerialSource(t *testing.T) {
	src, err := pixel.RandomImage(flat.Uint8, 40, 40, pixel.RGB, rand.New(rand.NewPCG(5, 6)), 0, 256, false)
	require.NoError(t, err)
	serial := &serialOnly{Buffer: src}

	dst, err := flat.Float32.Image(40, 40, pixel.RGB)
	require.NoError(t, err)
	require.NoError(t, pixel.CopyTo(serial, dst))
	assert.Equal(t, 40*40*3, serial.reads)
	assert.True(t, pixel.Equal(src, dst, 0))
}

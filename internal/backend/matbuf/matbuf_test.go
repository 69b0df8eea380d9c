package matbuf

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"generic-imaging/internal/backend/bitmap"
	"generic-imaging/internal/backend/dense"
	"generic-imaging/internal/backend/flat"
	"generic-imaging/internal/pixel"
)

func TestMatType(t *testing.T) {
	assert.Equal(t, gocv.MatTypeCV8UC1, MatType(pixel.Greyscale))
	assert.Equal(t, gocv.MatTypeCV8UC3, MatType(pixel.BGR))
	assert.Equal(t, gocv.MatTypeCV32FC3, MatType(pixel.HSV))
}

func TestByteAndFloatStorage(t *testing.T) {
	b, err := Default.Image(2, 3, pixel.BGR)
	require.NoError(t, err)
	defer b.Release()

	assert.False(t, b.SupportsParallelAccess())
	assert.Equal(t, []float64{0, 0, 0}, b.Values(2, 1))
	b.SetValues(2, 1, []float64{-4, 128.6, 999})
	assert.Equal(t, []float64{0, 128, 255}, b.Values(2, 1))

	f, err := Default.Image(1, 1, pixel.HSV)
	require.NoError(t, err)
	defer f.Release()
	f.SetValues(0, 0, []float64{270.5, 0.25, 0.75})
	assert.Equal(t, []float64{270.5, 0.25, 0.75}, f.Values(0, 0))
}

func TestWrapChecks(t *testing.T) {
	m := gocv.NewMatWithSize(2, 3, gocv.MatTypeCV8UC1)
	defer m.Close()

	_, err := Default.Wrap(3, 2, pixel.Greyscale, m)
	assert.ErrorIs(t, err, pixel.ErrShapeMismatch)
	_, err = Default.Wrap(2, 3, pixel.HSV, m)
	assert.ErrorIs(t, err, pixel.ErrShapeMismatch)
	_, err = Default.Wrap(2, 3, pixel.Greyscale, []byte{})
	assert.ErrorIs(t, err, pixel.ErrUnsupportedType)

	f := gocv.NewMatWithSize(2, 3, gocv.MatTypeCV32FC1)
	defer f.Close()
	_, err = Default.Wrap(2, 3, pixel.Greyscale, f)
	assert.ErrorIs(t, err, pixel.ErrUnsupportedType)
}

func TestReleaseAndTracking(t *testing.T) {
	tr := pixel.NewTracker()
	f := WithTracker(tr)

	b, err := f.Image(4, 4, pixel.Greyscale)
	require.NoError(t, err)
	_, err = f.Image(2, 2, pixel.Binary)
	require.NoError(t, err)
	assert.Equal(t, 2, tr.Live())

	b.Release()
	b.Release()
	assert.True(t, b.(*Buffer).Released())
	assert.Equal(t, 2, tr.ReleaseAll())
}

func TestRoundTripWithOtherRepresentations(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 10))
	others := []pixel.Factory{flat.Uint8, flat.Int16, flat.Float32, flat.Float64, dense.Default, bitmap.Default}

	for _, l := range []*pixel.Layout{pixel.Greyscale, pixel.RGB} {
		seed, err := pixel.RandomImage(flat.Uint8, 3, 5, l, rng, 0, 256, false)
		require.NoError(t, err)

		for _, other := range others {
			t.Run(l.Name()+"/"+string(other.Kind()), func(t *testing.T) {
				m, err := pixel.CreateCopy(seed, Default)
				require.NoError(t, err)
				defer m.Release()

				o, err := pixel.CreateCopy(m, other)
				require.NoError(t, err)
				back, err := pixel.CreateCopy(o, Default)
				require.NoError(t, err)
				defer back.Release()
				assert.True(t, pixel.Equal(m, back, 0))

				o2, err := pixel.CreateCopy(seed, other)
				require.NoError(t, err)
				m2, err := pixel.CreateCopy(o2, Default)
				require.NoError(t, err)
				defer m2.Release()
				again, err := pixel.CreateCopy(m2, other)
				require.NoError(t, err)
				assert.True(t, pixel.Equal(o2, again, 0))
			})
		}
	}
}

package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"generic-imaging/internal/backend/flat"
	"generic-imaging/internal/pixel"
)

// gradient returns a 4x4 image with value 10x + 40y.
func gradient(t *testing.T) pixel.Buffer {
	t.Helper()
	b, err := flat.Uint8.Image(4, 4, pixel.Greyscale)
	require.NoError(t, err)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			b.SetValue(x, y, 0, float64(10*x+40*y))
		}
	}
	return b
}

func TestBilinear(t *testing.T) {
	src := gradient(t)
	b := Bilinear{Background: 7}

	assert.InDelta(t, 15.0, b.Interpolate(src, 1.5, 0), 1e-9)
	assert.InDelta(t, 35.0, b.Interpolate(src, 1.5, 0.5), 1e-9)
	// last column falls back to the top-left neighbour
	assert.Equal(t, 30.0+40.0, b.Interpolate(src, 3.4, 1.2))
	assert.Equal(t, 7.0, b.Interpolate(src, -0.5, 1))
	assert.Equal(t, 7.0, b.Interpolate(src, 1, 4))
}

func TestNearestNeighbor(t *testing.T) {
	src := gradient(t)
	n := NearestNeighbor{Background: 3}

	assert.Equal(t, 20.0+40.0, n.Interpolate(src, 1.6, 0.8))
	assert.Equal(t, 3.0, n.Interpolate(src, 3.6, 0))
	assert.Equal(t, 0.0, n.Interpolate(src, -0.4, 0))
}

func TestResampleIdentity(t *testing.T) {
	src := gradient(t)
	r, err := NewResampler(Bilinear{}, flat.Uint8)
	require.NoError(t, err)

	out, err := r.Apply(src, Identity())
	require.NoError(t, err)
	assert.True(t, pixel.Equal(src, out, 0))
}

func TestResampleTranslation(t *testing.T) {
	src := gradient(t)
	r, err := NewResampler(Bilinear{Background: 255}, flat.Uint8)
	require.NoError(t, err)

	out, err := r.Apply(src, Rigid(1, 0, 0, 4, 4))
	require.NoError(t, err)
	assert.Same(t, pixel.Greyscale, out.Layout())
	for y := 0; y < 4; y++ {
		assert.Equal(t, 255.0, out.Value(0, y, 0))
		for x := 1; x < 4; x++ {
			assert.Equal(t, src.Value(x-1, y, 0), out.Value(x, y, 0), "(%d,%d)", x, y)
		}
	}
}

func TestResampleHalfTurn(t *testing.T) {
	src := gradient(t)
	r, err := NewResampler(Bilinear{}, flat.Uint8)
	require.NoError(t, err)

	out, err := r.Apply(src, Rigid(0, 0, 180, 4, 4))
	require.NoError(t, err)
	for y := 2; y < 4; y++ {
		for x := 2; x < 4; x++ {
			assert.Equal(t, src.Value(4-x, 4-y, 0), out.Value(x, y, 0), "(%d,%d)", x, y)
		}
	}
}

func TestResampleExplicitInverse(t *testing.T) {
	src := gradient(t)
	// mirror: destination x reads source 3-x
	m, err := Inverse(mat.NewDense(3, 3, []float64{-1, 0, 3, 0, 1, 0, 0, 0, 1}))
	require.NoError(t, err)

	r, err := NewResampler(NearestNeighbor{}, flat.Uint8)
	require.NoError(t, err)
	out, err := r.Apply(src, m)
	require.NoError(t, err)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			assert.Equal(t, src.Value(3-x, y, 0), out.Value(x, y, 0))
		}
	}
}

func TestAffine(t *testing.T) {
	m, err := Affine(mat.NewDense(3, 3, []float64{2, 0, 0, 0, 2, 0, 0, 0, 1}))
	require.NoError(t, err)
	x, y := m.Source(4, 6)
	assert.InDelta(t, 2.0, x, 1e-12)
	assert.InDelta(t, 3.0, y, 1e-12)

	_, err = Affine(mat.NewDense(3, 3, []float64{1, 2, 0, 2, 4, 0, 0, 0, 1}))
	assert.ErrorIs(t, err, pixel.ErrConfig)

	_, err = Affine(mat.NewDense(2, 2, []float64{1, 0, 0, 1}))
	assert.ErrorIs(t, err, pixel.ErrConfig)
}

func TestResamplerValidation(t *testing.T) {
	_, err := NewResampler(Bilinear{Background: 300}, flat.Uint8)
	assert.ErrorIs(t, err, pixel.ErrConfig)

	_, err = NewResampler(nil, flat.Uint8)
	assert.ErrorIs(t, err, pixel.ErrConfig)

	r, err := NewResampler(Bilinear{}, flat.Uint8)
	require.NoError(t, err)
	rgb, err := flat.Uint8.Image(2, 2, pixel.RGB)
	require.NoError(t, err)
	_, err = r.Apply(rgb, Identity())
	assert.ErrorIs(t, err, pixel.ErrType)
}

package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"generic-imaging/internal/backend/flat"
	"generic-imaging/internal/pixel"
)

func greyRows(t *testing.T, rows ...[]float64) pixel.Buffer {
	t.Helper()
	b, err := flat.Float64.Image(len(rows), len(rows[0]), pixel.Greyscale)
	require.NoError(t, err)
	for y, row := range rows {
		for x, v := range row {
			b.SetValue(x, y, 0, v)
		}
	}
	return b
}

func TestKernelChecks(t *testing.T) {
	tests := []struct {
		name   string
		kernel [][]float64
	}{
		{"empty", nil},
		{"even rows", [][]float64{{1}, {1}}},
		{"even row length", [][]float64{{1, 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewConvolve(ConvolveConfig{Kernel: tt.kernel}, flat.Float64)
			assert.ErrorIs(t, err, pixel.ErrConfig)
		})
	}

	_, err := NewEdgeDetection(nil, flat.Float64)
	assert.ErrorIs(t, err, pixel.ErrConfig)
}

func TestConvolveNormalisedBorders(t *testing.T) {
	src := greyRows(t,
		[]float64{4, 4, 4},
		[]float64{4, 4, 4},
	)
	cv, err := NewConvolve(ConvolveConfig{Kernel: [][]float64{{1, 1, 1}, {1, 1, 1}, {1, 1, 1}}, Normalize: true}, flat.Float64)
	require.NoError(t, err)

	out, err := cv.Apply(src)
	require.NoError(t, err)
	assert.True(t, pixel.Equal(src, out, 1e-12))
}

func TestConvolveUnnormalisedAndIterated(t *testing.T) {
	src := greyRows(t, []float64{0, 1, 0})
	cv, err := NewConvolve(ConvolveConfig{Kernel: [][]float64{{1, 1, 1}}, Iterations: 2}, flat.Float64)
	require.NoError(t, err)

	out, err := cv.Apply(src)
	require.NoError(t, err)
	// one pass gives 1 1 1, the second 2 3 2
	assert.Equal(t, []float64{2, 3, 2}, []float64{out.Value(0, 0, 0), out.Value(1, 0, 0), out.Value(2, 0, 0)})
}

func TestConvolveEveryChannel(t *testing.T) {
	src, err := pixel.FilledImage(flat.Uint8, 2, 2, pixel.RGB, 10, 20, 30)
	require.NoError(t, err)
	cv, err := NewConvolve(ConvolveConfig{Kernel: [][]float64{{2}}}, flat.Uint8)
	require.NoError(t, err)

	out, err := cv.Apply(src)
	require.NoError(t, err)
	assert.Same(t, pixel.RGB, out.Layout())
	assert.Equal(t, []float64{20, 40, 60}, out.Values(1, 1))
}

func TestConvolveZeroWeight(t *testing.T) {
	src := greyRows(t, []float64{1, 2, 3})
	cv, err := NewConvolve(ConvolveConfig{Kernel: [][]float64{{-1, 0, 1}}, Normalize: true}, flat.Float64)
	require.NoError(t, err)

	_, err = cv.Apply(src)
	assert.ErrorIs(t, err, pixel.ErrState)
}

func TestEdgeDetection(t *testing.T) {
	src := greyRows(t,
		[]float64{0, 0, 0, 0, 0},
		[]float64{0, 0, 0, 0, 0},
		[]float64{0, 0, 50, 0, 0},
		[]float64{0, 0, 0, 0, 0},
		[]float64{0, 0, 0, 0, 0},
	)
	ed, err := NewEdgeDetection(Laplace, flat.Float64)
	require.NoError(t, err)

	out, err := ed.Apply(src)
	require.NoError(t, err)
	assert.Same(t, pixel.Greyscale, out.Layout())
	// |-4*50| is the strongest response, direct neighbours see 50
	assert.Equal(t, 255.0, out.Value(2, 2, 0))
	assert.InDelta(t, 255.0/4, out.Value(2, 1, 0), 1e-9)
	assert.Equal(t, 0.0, out.Value(1, 1, 0))
	assert.Equal(t, 0.0, out.Value(0, 0, 0))

	rgb, err := flat.Float64.Image(2, 2, pixel.RGB)
	require.NoError(t, err)
	_, err = ed.Apply(rgb)
	assert.ErrorIs(t, err, pixel.ErrType)
}

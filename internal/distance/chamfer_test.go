package distance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"generic-imaging/internal/backend/flat"
	"generic-imaging/internal/pixel"
)

const sqrt2 = 1.4142135623730951

func contourImage(t *testing.T) pixel.Buffer {
	t.Helper()
	rows := [][]float64{
		{255, 255, 255, 255, 255, 255},
		{0, 0, 0, 0, 0, 255},
		{255, 255, 0, 255, 255, 255},
		{0, 0, 0, 255, 255, 255},
		{255, 255, 255, 255, 255, 255},
	}
	b, err := flat.Uint8.Image(len(rows), len(rows[0]), pixel.Binary)
	require.NoError(t, err)
	for y, row := range rows {
		for x, v := range row {
			b.SetValue(x, y, 0, v)
		}
	}
	return b
}

func TestChamferMetrics(t *testing.T) {
	tests := []struct {
		name     string
		metric   Metric
		expected [][]float64
	}{
		{
			name:   "manhattan",
			metric: Manhattan{},
			expected: [][]float64{
				{1, 1, 1, 1, 1, 2},
				{0, 0, 0, 0, 0, 1},
				{1, 1, 0, 1, 1, 2},
				{0, 0, 0, 1, 2, 3},
				{1, 1, 1, 2, 3, 4},
			},
		},
		{
			name:   "euclidean",
			metric: Euclidean{},
			expected: [][]float64{
				{1, 1, 1, 1, 1, sqrt2},
				{0, 0, 0, 0, 0, 1},
				{1, 1, 0, 1, 1, sqrt2},
				{0, 0, 0, 1, 2, 1 + sqrt2},
				{1, 1, 1, sqrt2, 1 + sqrt2, 2 + sqrt2},
			},
		},
		{
			name:   "chessboard",
			metric: Chessboard{},
			expected: [][]float64{
				{1, 1, 1, 1, 1, 1},
				{0, 0, 0, 0, 0, 1},
				{1, 1, 0, 1, 1, 1},
				{0, 0, 0, 1, 2, 2},
				{1, 1, 1, 1, 2, 3},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch, err := NewChamfer(ChamferConfig{Contour: 0, Metric: tt.metric}, flat.Float64)
			require.NoError(t, err)

			out, err := ch.Apply(contourImage(t))
			require.NoError(t, err)
			assert.Same(t, pixel.Greyscale, out.Layout())

			for y, row := range tt.expected {
				for x, want := range row {
					assert.InDelta(t, want, out.Value(x, y, 0), 1e-12, "cell (%d,%d)", x, y)
				}
			}
		})
	}
}

func TestChamferDiagonalExact(t *testing.T) {
	ch, err := NewChamfer(ChamferConfig{Contour: 0, Metric: Euclidean{}}, flat.Float64)
	require.NoError(t, err)

	out, err := ch.Apply(contourImage(t))
	require.NoError(t, err)
	assert.Equal(t, 1.4142135623730951, out.Value(5, 0, 0))
}

func TestChamferRejectsNonBinary(t *testing.T) {
	ch, err := NewChamfer(ChamferConfig{Metric: Manhattan{}}, flat.Float64)
	require.NoError(t, err)

	grey, err := flat.Uint8.Image(3, 3, pixel.Greyscale)
	require.NoError(t, err)

	_, err = ch.Apply(grey)
	assert.ErrorIs(t, err, pixel.ErrType)
}

func TestNewMask(t *testing.T) {
	for _, size := range []int{-1, 0, 1, 2, 4} {
		_, err := NewMask(Euclidean{}, size)
		assert.ErrorIs(t, err, pixel.ErrConfig, "size %d", size)
	}

	m, err := NewMask(Manhattan{}, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, m.Size())
	assert.Equal(t, 0.0, m.At(0, 0))
	assert.Equal(t, 4.0, m.At(-2, 2))
	assert.Equal(t, 3.0, m.At(1, -2))

	e, err := NewMask(Euclidean{}, 3)
	require.NoError(t, err)
	assert.Equal(t, sqrt2, e.At(1, 1))
}

func TestMetricByName(t *testing.T) {
	m, err := MetricByName("chessboard")
	require.NoError(t, err)
	assert.Equal(t, 2.0, m.Cost(2, -1))

	_, err = MetricByName("taxicab")
	assert.ErrorIs(t, err, pixel.ErrConfig)
}

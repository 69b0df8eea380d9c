package distance

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"generic-imaging/internal/backend/flat"
	"generic-imaging/internal/pixel"
)

func barImage(t *testing.T, f pixel.Factory, l *pixel.Layout, bar, rest float64) pixel.Buffer {
	t.Helper()
	b, err := pixel.FilledImage(f, 3, 3, l, rest)
	require.NoError(t, err)
	for x := 0; x < 3; x++ {
		b.SetValue(x, 1, 0, bar)
	}
	return b
}

func newFitness(t *testing.T) *Fitness {
	t.Helper()
	ch, err := NewChamfer(ChamferConfig{Contour: pixel.BinarySet, Metric: Chessboard{}}, flat.Float64)
	require.NoError(t, err)
	fit, err := NewFitness(ch)
	require.NoError(t, err)
	return fit
}

func TestFitness(t *testing.T) {
	fit := newFitness(t)
	ref := barImage(t, flat.Uint8, pixel.Binary, pixel.BinarySet, pixel.BinaryUnset)

	score, err := fit.Evaluate(ref, ref)
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)

	// off-contour differences do not count
	cand := barImage(t, flat.Uint8, pixel.Greyscale, 250, 90)
	score, err = fit.Evaluate(cand, ref)
	require.NoError(t, err)
	assert.Equal(t, 75.0, score)

	fit.ROI = image.Rect(0, 0, 1, 3)
	score, err = fit.Evaluate(cand, ref)
	require.NoError(t, err)
	assert.Equal(t, 25.0, score)
}

func TestFitnessErrors(t *testing.T) {
	_, err := NewFitness(nil)
	assert.ErrorIs(t, err, pixel.ErrConfig)

	fit := newFitness(t)
	ref := barImage(t, flat.Uint8, pixel.Binary, pixel.BinarySet, pixel.BinaryUnset)

	small, err := flat.Uint8.Image(2, 2, pixel.Greyscale)
	require.NoError(t, err)
	_, err = fit.Evaluate(small, ref)
	assert.ErrorIs(t, err, pixel.ErrShapeMismatch)

	grey := barImage(t, flat.Uint8, pixel.Greyscale, 255, 0)
	_, err = fit.Evaluate(grey, grey)
	assert.ErrorIs(t, err, pixel.ErrType)

	fit.ROI = image.Rect(1, 1, 4, 2)
	_, err = fit.Evaluate(ref, ref)
	assert.ErrorIs(t, err, pixel.ErrBounds)
}

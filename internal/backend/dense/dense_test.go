package dense

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"generic-imaging/internal/pixel"
)

func TestPlanes(t *testing.T) {
	b, err := Default.Image(2, 3, pixel.LUV)
	require.NoError(t, err)

	b.SetValues(2, 1, []float64{50, -120.5, 90})
	db := b.(*Buffer)
	assert.Equal(t, -120.5, db.Plane(1).At(1, 2))
	assert.Equal(t, []float64{50, -120.5, 90}, b.Values(2, 1))
}

func TestWrap(t *testing.T) {
	planes := []*mat.Dense{mat.NewDense(2, 3, []float64{0, 1, 2, 3, 4, 5})}
	b, err := Default.Wrap(2, 3, pixel.Greyscale, planes)
	require.NoError(t, err)
	assert.Equal(t, 5.0, b.Value(2, 1, 0))

	_, err = Default.Wrap(3, 2, pixel.Greyscale, planes)
	assert.ErrorIs(t, err, pixel.ErrShapeMismatch)
	_, err = Default.Wrap(2, 3, pixel.RGB, planes)
	assert.ErrorIs(t, err, pixel.ErrShapeMismatch)
	_, err = Default.Wrap(2, 3, pixel.Greyscale, "planes")
	assert.ErrorIs(t, err, pixel.ErrUnsupportedType)
	_, err = Default.Image(0, 3, pixel.Greyscale)
	assert.ErrorIs(t, err, pixel.ErrConfig)
}

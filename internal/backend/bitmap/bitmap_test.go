package bitmap

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"generic-imaging/internal/pixel"
)

func TestChannelOrder(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(1, 0, color.RGBA{R: 10, G: 20, B: 30, A: 40})

	rgba, err := Default.Wrap(1, 2, pixel.RGBA, img)
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20, 30, 40}, rgba.Values(1, 0))

	bgr, err := Default.Wrap(1, 2, pixel.BGR, img)
	require.NoError(t, err)
	assert.Equal(t, []float64{30, 20, 10}, bgr.Values(1, 0))

	bgr.SetValue(0, 0, 0, 300)
	assert.Equal(t, uint8(255), img.Pix[2])
}

func TestImageSetsOpaqueAlpha(t *testing.T) {
	b, err := Default.Image(2, 2, pixel.RGB)
	require.NoError(t, err)
	rgba := b.(*Buffer).Image().(*image.RGBA)
	assert.Equal(t, uint8(255), rgba.Pix[3])

	_, err = Default.Image(2, 2, pixel.HSV)
	assert.ErrorIs(t, err, pixel.ErrType)
}

func TestWrapMismatch(t *testing.T) {
	grey := image.NewGray(image.Rect(0, 0, 3, 2))
	_, err := Default.Wrap(2, 3, pixel.RGB, grey)
	assert.ErrorIs(t, err, pixel.ErrShapeMismatch)
	_, err = Default.Wrap(3, 3, pixel.Greyscale, grey)
	assert.ErrorIs(t, err, pixel.ErrShapeMismatch)
	_, err = Default.Wrap(2, 3, pixel.Greyscale, image.NewNRGBA(grey.Rect))
	assert.ErrorIs(t, err, pixel.ErrUnsupportedType)
}

func TestFromImage(t *testing.T) {
	sub := image.NewGray(image.Rect(0, 0, 4, 4)).SubImage(image.Rect(1, 1, 3, 3)).(*image.Gray)
	sub.SetGray(2, 2, color.Gray{Y: 99})

	b, err := FromImage(sub)
	require.NoError(t, err)
	assert.Same(t, pixel.Greyscale, b.Layout())
	assert.Equal(t, 99.0, b.Value(1, 1, 0))

	nrgba := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	nrgba.Set(0, 0, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
	b, err = FromImage(nrgba)
	require.NoError(t, err)
	assert.Same(t, pixel.RGBA, b.Layout())
	assert.Equal(t, []float64{200, 100, 50, 255}, b.Values(0, 0))
}

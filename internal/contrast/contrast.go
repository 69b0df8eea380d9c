// Grey level transfer functions: lookup tables, gamma and equalisation
package contrast

import (
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"

	"generic-imaging/internal/pixel"
)

// Levels is the number of grey levels a transfer function covers.
const Levels = 256

// LUT maps a rounded grey level to its new value.
type LUT [Levels]float64

func level(v float64) int {
	return int(math.Max(0, math.Min(Levels-1, math.Floor(v+0.5))))
}

// Transform replaces every sample of a GREYSCALE or BINARY image by
// lut[round(v)]. Samples outside 0..255 are clamped first. The result is
// GREYSCALE.
func Transform(src pixel.Buffer, f pixel.Factory, lut *LUT) (pixel.Buffer, error) {
	if err := pixel.RequireLayout(src, pixel.Greyscale, pixel.Binary); err != nil {
		return nil, fmt.Errorf("value transform: %w", err)
	}

	out, err := f.Image(src.Height(), src.Width(), pixel.Greyscale)
	if err != nil {
		return nil, err
	}
	err = pixel.Apply(out, func(x, y int) {
		out.SetValue(x, y, 0, lut[level(src.Value(x, y, 0))])
	}, pixel.WithParallel(pixel.ParallelSafe(src, out)))
	if err != nil {
		out.Release()
		return nil, err
	}
	return out, nil
}

// GammaLUT builds round(255 * (i/255)^gamma).
func GammaLUT(gamma float64) (*LUT, error) {
	if gamma <= 0 || math.IsNaN(gamma) || math.IsInf(gamma, 0) {
		return nil, fmt.Errorf("%w: gamma %v must be positive", pixel.ErrConfig, gamma)
	}
	var lut LUT
	for i := range lut {
		lut[i] = math.Floor(math.Pow(float64(i)/(Levels-1), gamma)*(Levels-1) + 0.5)
	}
	return &lut, nil
}

// Gamma applies a gamma curve. Values below 1 brighten, above 1 darken.
func Gamma(src pixel.Buffer, f pixel.Factory, gamma float64) (pixel.Buffer, error) {
	lut, err := GammaLUT(gamma)
	if err != nil {
		return nil, err
	}
	return Transform(src, f, lut)
}

// Histogram counts the rounded grey levels of channel 0.
func Histogram(src pixel.Buffer) ([Levels]int, error) {
	var hist [Levels]int
	if err := pixel.RequireLayout(src, pixel.Greyscale); err != nil {
		return hist, fmt.Errorf("histogram: %w", err)
	}
	for y := 0; y < src.Height(); y++ {
		for x := 0; x < src.Width(); x++ {
			hist[level(src.Value(x, y, 0))]++
		}
	}
	return hist, nil
}

// EqualizationLUT spreads the cumulative distribution of hist over the
// levels from the darkest occupied level upwards.
func EqualizationLUT(hist [Levels]int) *LUT {
	total, lowest := 0, -1
	for i, n := range hist {
		total += n
		if lowest < 0 && n > 0 {
			lowest = i
		}
	}

	var lut LUT
	if total == 0 {
		for i := range lut {
			lut[i] = float64(i)
		}
		return &lut
	}

	spread := float64(Levels - lowest + 1)
	cdf := 0.0
	for i := range lut {
		cdf += float64(hist[i]) / float64(total)
		v := math.Floor(cdf*spread) + 1 + float64(lowest)
		lut[i] = math.Max(0, math.Min(Levels-1, v))
	}
	return &lut
}

// Equalize performs histogram equalisation of a GREYSCALE image.
func Equalize(src pixel.Buffer, f pixel.Factory) (pixel.Buffer, error) {
	hist, err := Histogram(src)
	if err != nil {
		return nil, err
	}
	lut := EqualizationLUT(hist)
	log.WithFields(log.Fields{
		"buffer": pixel.Describe(src),
		"lowest": lut[0],
	}).Debug("histogram equalisation table built")
	return Transform(src, f, lut)
}

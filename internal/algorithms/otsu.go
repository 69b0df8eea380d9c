// Global Otsu thresholding over grey-level histograms
package algorithms

import (
	"math"

	log "github.com/sirupsen/logrus"

	"generic-imaging/internal/backend/flat"
	"generic-imaging/internal/convert"
	"generic-imaging/internal/pixel"
)

// OtsuThreshold implements global Otsu thresholding
type OtsuThreshold struct{}

// NewOtsuThreshold creates a new Otsu threshold algorithm
func NewOtsuThreshold() *OtsuThreshold {
	return &OtsuThreshold{}
}

func (o *OtsuThreshold) Apply(input pixel.Buffer, params map[string]interface{}) (pixel.Buffer, error) {
	f, err := outputFactory(input, params, nil)
	if err != nil {
		return nil, err
	}

	gray, release, err := ensureGrayscale(input)
	if err != nil {
		return nil, err
	}
	defer release()

	level := OtsuLevel(Histogram(gray))
	log.WithField("level", level).Debug("otsu threshold selected")

	// levels above the Otsu level are foreground
	return convert.Threshold(gray, f, level+1)
}

func (o *OtsuThreshold) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{}
}

func (o *OtsuThreshold) GetName() string {
	return "Otsu Threshold"
}

func (o *OtsuThreshold) GetDescription() string {
	return "Global binarization at the level maximising between-class variance"
}

func (o *OtsuThreshold) Validate(params map[string]interface{}) error {
	return nil
}

func (o *OtsuThreshold) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{representationInfo()}
}

// ensureGrayscale returns b itself for single-channel layouts and a
// temporary luminosity image otherwise. release frees the temporary only.
func ensureGrayscale(b pixel.Buffer) (pixel.Buffer, func(), error) {
	if l := b.Layout(); l == pixel.Greyscale || l == pixel.Binary {
		return b, func() {}, nil
	}
	gray, err := convert.ToGreyscale(b, flat.Float64, convert.Luminosity)
	if err != nil {
		return nil, nil, err
	}
	return gray, gray.Release, nil
}

func thresholdAt(input pixel.Buffer, f pixel.Factory, t float64) (pixel.Buffer, error) {
	gray, release, err := ensureGrayscale(input)
	if err != nil {
		return nil, err
	}
	defer release()
	return convert.Threshold(gray, f, t)
}

// Histogram returns the normalised 256-bin histogram of channel 0, with
// samples rounded and clamped to the byte range.
func Histogram(gray pixel.Buffer) []float64 {
	hist := make([]float64, 256)

	for y := 0; y < gray.Height(); y++ {
		for x := 0; x < gray.Width(); x++ {
			intensity := int(math.Floor(gray.Value(x, y, 0) + 0.5))
			hist[min(max(intensity, 0), 255)]++
		}
	}

	totalPixels := float64(gray.Width() * gray.Height())
	if totalPixels == 0 {
		return hist
	}
	for i := range hist {
		hist[i] /= totalPixels
	}

	return hist
}

// OtsuLevel returns the histogram level maximising between-class variance.
func OtsuLevel(hist []float64) float64 {
	sum := 0.0
	for i := range hist {
		sum += float64(i) * hist[i]
	}

	sumB := 0.0
	wB := 0.0
	maximum := 0.0
	level := 0.0

	for t := range hist {
		wB += hist[t]
		if wB == 0 {
			continue
		}

		wF := 1.0 - wB
		if wF <= 1e-12 {
			break
		}

		sumB += float64(t) * hist[t]
		mB := sumB / wB
		mF := (sum - sumB) / wF

		between := wB * wF * (mB - mF) * (mB - mF)

		if between > maximum {
			level = float64(t)
			maximum = between
		}
	}

	return level
}

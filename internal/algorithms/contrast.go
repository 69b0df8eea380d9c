// Grey level contrast adjustments
package algorithms

import (
	"generic-imaging/internal/contrast"
	"generic-imaging/internal/pixel"
)

// HistogramEqualization spreads grey levels by their cumulative distribution
type HistogramEqualization struct{}

// NewHistogramEqualization creates a new histogram equalization algorithm
func NewHistogramEqualization() *HistogramEqualization {
	return &HistogramEqualization{}
}

func (h *HistogramEqualization) Apply(input pixel.Buffer, params map[string]interface{}) (pixel.Buffer, error) {
	f, err := outputFactory(input, params, nil)
	if err != nil {
		return nil, err
	}
	gray, release, err := ensureGrayscale(input)
	if err != nil {
		return nil, err
	}
	defer release()

	if gray.Layout() == pixel.Binary {
		return contrast.Transform(gray, f, contrast.EqualizationLUT(binaryHistogram(gray)))
	}
	return contrast.Equalize(gray, f)
}

// binaryHistogram counts a BINARY image as the two grey levels it holds.
func binaryHistogram(b pixel.Buffer) [contrast.Levels]int {
	var hist [contrast.Levels]int
	for y := 0; y < b.Height(); y++ {
		for x := 0; x < b.Width(); x++ {
			if b.Value(x, y, 0) == pixel.BinarySet {
				hist[contrast.Levels-1]++
			} else {
				hist[0]++
			}
		}
	}
	return hist
}

func (h *HistogramEqualization) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{}
}

func (h *HistogramEqualization) GetName() string {
	return "Histogram Equalization"
}

func (h *HistogramEqualization) GetDescription() string {
	return "Contrast stretch through the cumulative grey level distribution"
}

func (h *HistogramEqualization) Validate(params map[string]interface{}) error {
	return nil
}

func (h *HistogramEqualization) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{representationInfo()}
}

// GammaCorrection applies a power curve to grey levels
type GammaCorrection struct{}

// NewGammaCorrection creates a new gamma correction algorithm
func NewGammaCorrection() *GammaCorrection {
	return &GammaCorrection{}
}

func (g *GammaCorrection) Apply(input pixel.Buffer, params map[string]interface{}) (pixel.Buffer, error) {
	if err := g.Validate(params); err != nil {
		return nil, err
	}
	f, err := outputFactory(input, params, nil)
	if err != nil {
		return nil, err
	}
	gray, release, err := ensureGrayscale(input)
	if err != nil {
		return nil, err
	}
	defer release()

	return contrast.Gamma(gray, f, floatParam(params, "gamma", 1))
}

func (g *GammaCorrection) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{
		"gamma": 1.0,
	}
}

func (g *GammaCorrection) GetName() string {
	return "Gamma Correction"
}

func (g *GammaCorrection) GetDescription() string {
	return "Maps each grey level v to 255*(v/255)^gamma"
}

func (g *GammaCorrection) Validate(params map[string]interface{}) error {
	return checkRange(params, "gamma", 0.05, 20)
}

func (g *GammaCorrection) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		{
			Name:        "gamma",
			Type:        "float",
			Min:         0.05,
			Max:         20.0,
			Default:     1.0,
			Description: "Exponent, below 1 brightens and above 1 darkens",
		},
		representationInfo(),
	}
}

// Colour conversion algorithms
package algorithms

import (
	"generic-imaging/internal/backend/flat"
	"generic-imaging/internal/convert"
	"generic-imaging/internal/pixel"
)

var greyscaleMethods = map[string]convert.GreyscaleMethod{
	"luminosity": convert.Luminosity,
	"average":    convert.Average,
	"lightness":  convert.Lightness,
}

// Greyscale reduces colour images to one channel
type Greyscale struct{}

// NewGreyscale creates a new greyscale conversion algorithm
func NewGreyscale() *Greyscale {
	return &Greyscale{}
}

func (g *Greyscale) Apply(input pixel.Buffer, params map[string]interface{}) (pixel.Buffer, error) {
	if err := g.Validate(params); err != nil {
		return nil, err
	}
	f, err := outputFactory(input, params, nil)
	if err != nil {
		return nil, err
	}
	return convert.ToGreyscale(input, f, greyscaleMethods[stringParam(params, "method", "luminosity")])
}

func (g *Greyscale) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{
		"method": "luminosity",
	}
}

func (g *Greyscale) GetName() string {
	return "Greyscale"
}

func (g *Greyscale) GetDescription() string {
	return "Colour to grey level conversion"
}

func (g *Greyscale) Validate(params map[string]interface{}) error {
	return checkOption(params, "method", "luminosity", "average", "lightness")
}

func (g *Greyscale) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		{
			Name:        "method",
			Type:        "enum",
			Default:     "luminosity",
			Description: "Channel weighting",
			Options:     []string{"luminosity", "average", "lightness"},
		},
		representationInfo(),
	}
}

// colourConversion wraps a convert function without parameters.
type colourConversion struct {
	name        string
	description string
	fallback    pixel.Factory
	fn          func(pixel.Buffer, pixel.Factory) (pixel.Buffer, error)
}

// NewToHSV creates the HSV conversion. HSV channels are fractional, so
// results default to floating point storage.
func NewToHSV() Algorithm {
	return &colourConversion{
		name:        "To HSV",
		description: "Convert to hue, saturation and value",
		fallback:    flat.Float64,
		fn:          convert.ToHSV,
	}
}

// NewToRGB creates the RGB conversion.
func NewToRGB() Algorithm {
	return &colourConversion{
		name:        "To RGB",
		description: "Convert any supported layout to RGB",
		fn:          convert.ToRGB,
	}
}

func (c *colourConversion) Apply(input pixel.Buffer, params map[string]interface{}) (pixel.Buffer, error) {
	f, err := outputFactory(input, params, c.fallback)
	if err != nil {
		return nil, err
	}
	return c.fn(input, f)
}

func (c *colourConversion) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{}
}

func (c *colourConversion) GetName() string {
	return c.name
}

func (c *colourConversion) GetDescription() string {
	return c.description
}

func (c *colourConversion) Validate(params map[string]interface{}) error {
	return nil
}

func (c *colourConversion) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{representationInfo()}
}

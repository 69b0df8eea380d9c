// Canvas changes: padding, cropping and rescaling
package algorithms

import (
	"image"

	"generic-imaging/internal/pixel"
	"generic-imaging/internal/transform"
)

// Padding adds a constant frame around the image
type Padding struct{}

// NewPadding creates a new padding algorithm
func NewPadding() *Padding {
	return &Padding{}
}

func (p *Padding) Apply(input pixel.Buffer, params map[string]interface{}) (pixel.Buffer, error) {
	if err := p.Validate(params); err != nil {
		return nil, err
	}
	f, err := outputFactory(input, params, nil)
	if err != nil {
		return nil, err
	}

	all := intParam(params, "all", 0)
	m := transform.Margins{
		Left:   intParam(params, "left", all),
		Right:  intParam(params, "right", all),
		Top:    intParam(params, "top", all),
		Bottom: intParam(params, "bottom", all),
	}
	return transform.Pad(input, f, m, floatParam(params, "value", 0))
}

func (p *Padding) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{
		"all":   1.0,
		"value": 0.0,
	}
}

func (p *Padding) GetName() string {
	return "Padding"
}

func (p *Padding) GetDescription() string {
	return "Frames the image with a constant value"
}

func (p *Padding) Validate(params map[string]interface{}) error {
	for _, name := range []string{"all", "left", "right", "top", "bottom"} {
		if err := checkRange(params, name, 0, 10000); err != nil {
			return err
		}
	}
	return checkRange(params, "value", -1e6, 1e6)
}

func (p *Padding) GetParameterInfo() []ParameterInfo {
	info := []ParameterInfo{
		{
			Name:        "all",
			Type:        "int",
			Min:         0.0,
			Max:         10000.0,
			Default:     1.0,
			Description: "Margin for every side without its own value",
		},
	}
	for _, side := range []string{"left", "right", "top", "bottom"} {
		info = append(info, ParameterInfo{
			Name:        side,
			Type:        "int",
			Min:         0.0,
			Max:         10000.0,
			Description: "Margin on the " + side,
		})
	}
	return append(info,
		ParameterInfo{
			Name:        "value",
			Type:        "float",
			Default:     0.0,
			Description: "Sample value of the frame in every channel",
		},
		representationInfo())
}

// Crop cuts a rectangle out of the image
type Crop struct{}

// NewCrop creates a new crop algorithm
func NewCrop() *Crop {
	return &Crop{}
}

func (c *Crop) Apply(input pixel.Buffer, params map[string]interface{}) (pixel.Buffer, error) {
	if err := c.Validate(params); err != nil {
		return nil, err
	}
	f, err := outputFactory(input, params, nil)
	if err != nil {
		return nil, err
	}

	x, y := intParam(params, "x", 0), intParam(params, "y", 0)
	w := intParam(params, "width", input.Width()-x)
	h := intParam(params, "height", input.Height()-y)
	return transform.Crop(input, f, image.Rect(x, y, x+w, y+h))
}

func (c *Crop) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{
		"x": 0.0,
		"y": 0.0,
	}
}

func (c *Crop) GetName() string {
	return "Crop"
}

func (c *Crop) GetDescription() string {
	return "Copies a rectangular window into a new image"
}

func (c *Crop) Validate(params map[string]interface{}) error {
	for _, name := range []string{"x", "y"} {
		if err := checkRange(params, name, 0, 1e6); err != nil {
			return err
		}
	}
	for _, name := range []string{"width", "height"} {
		if err := checkRange(params, name, 1, 1e6); err != nil {
			return err
		}
	}
	return nil
}

func (c *Crop) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		{Name: "x", Type: "int", Min: 0.0, Default: 0.0, Description: "Left edge"},
		{Name: "y", Type: "int", Min: 0.0, Default: 0.0, Description: "Top edge"},
		{Name: "width", Type: "int", Min: 1.0, Description: "Window width, defaults to the rest of the row"},
		{Name: "height", Type: "int", Min: 1.0, Description: "Window height, defaults to the rest of the column"},
		representationInfo(),
	}
}

// Scale resizes grey images with a pure Go interpolator
type Scale struct{}

// NewScale creates a new scale algorithm
func NewScale() *Scale {
	return &Scale{}
}

func (s *Scale) Apply(input pixel.Buffer, params map[string]interface{}) (pixel.Buffer, error) {
	if err := s.Validate(params); err != nil {
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

	background := floatParam(params, "background", 0)
	var interp transform.Interpolator = transform.Bilinear{Background: background}
	if stringParam(params, "interpolation", "bilinear") == "nearest" {
		interp = transform.NearestNeighbor{Background: background}
	}
	return transform.Scale(gray, f, interp,
		intParam(params, "width", input.Width()),
		intParam(params, "height", input.Height()))
}

func (s *Scale) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{
		"interpolation": "bilinear",
		"background":    0.0,
	}
}

func (s *Scale) GetName() string {
	return "Scale"
}

func (s *Scale) GetDescription() string {
	return "Resamples a grey image to a new width and height"
}

func (s *Scale) Validate(params map[string]interface{}) error {
	for _, name := range []string{"width", "height"} {
		if err := checkRange(params, name, 1, 1e5); err != nil {
			return err
		}
	}
	if err := checkRange(params, "background", 0, 255); err != nil {
		return err
	}
	return checkOption(params, "interpolation", "bilinear", "nearest")
}

func (s *Scale) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		{Name: "width", Type: "int", Min: 1.0, Max: 1e5, Description: "Target width, defaults to the input's"},
		{Name: "height", Type: "int", Min: 1.0, Max: 1e5, Description: "Target height, defaults to the input's"},
		{
			Name:        "interpolation",
			Type:        "enum",
			Default:     "bilinear",
			Description: "Sub-pixel sampling",
			Options:     []string{"bilinear", "nearest"},
		},
		{
			Name:        "background",
			Type:        "float",
			Min:         0.0,
			Max:         255.0,
			Default:     0.0,
			Description: "Grey level outside the source",
		},
		representationInfo(),
	}
}

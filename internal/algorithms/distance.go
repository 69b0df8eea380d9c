package algorithms

import (
	"generic-imaging/internal/backend/flat"
	"generic-imaging/internal/distance"
	"generic-imaging/internal/pixel"
)

// ChamferDistance implements the two-pass chamfer distance transform
type ChamferDistance struct{}

// NewChamferDistance creates a new chamfer distance algorithm
func NewChamferDistance() *ChamferDistance {
	return &ChamferDistance{}
}

func (c *ChamferDistance) Apply(input pixel.Buffer, params map[string]interface{}) (pixel.Buffer, error) {
	if err := c.Validate(params); err != nil {
		return nil, err
	}
	// fractional distances need floating point storage
	f, err := outputFactory(input, params, flat.Float64)
	if err != nil {
		return nil, err
	}

	metric, err := distance.MetricByName(stringParam(params, "metric", "euclidean"))
	if err != nil {
		return nil, err
	}

	op, err := distance.NewChamfer(distance.ChamferConfig{
		Contour: floatParam(params, "contour", pixel.BinarySet),
		Metric:  metric,
	}, f)
	if err != nil {
		return nil, err
	}
	return op.Apply(input)
}

func (c *ChamferDistance) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{
		"metric":  "euclidean",
		"contour": pixel.BinarySet,
	}
}

func (c *ChamferDistance) GetName() string {
	return "Chamfer Distance"
}

func (c *ChamferDistance) GetDescription() string {
	return "Distance of every pixel to the nearest contour pixel of a binary image"
}

func (c *ChamferDistance) Validate(params map[string]interface{}) error {
	if err := checkOption(params, "metric", "manhattan", "chessboard", "euclidean"); err != nil {
		return err
	}
	return checkRange(params, "contour", 0, 255)
}

func (c *ChamferDistance) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		{
			Name:        "metric",
			Type:        "enum",
			Default:     "euclidean",
			Description: "Step cost metric",
			Options:     []string{"manhattan", "chessboard", "euclidean"},
		},
		{
			Name:        "contour",
			Type:        "float",
			Min:         0.0,
			Max:         255.0,
			Default:     pixel.BinarySet,
			Description: "Pixel value marking the contour",
		},
		representationInfo(),
	}
}

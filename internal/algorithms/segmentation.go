// Region and threshold based segmentation algorithms
package algorithms

import (
	"fmt"

	"generic-imaging/internal/morph"
	"generic-imaging/internal/pixel"
	"generic-imaging/internal/segment"
)

// RegionGrowing implements seeded region growing
type RegionGrowing struct{}

// NewRegionGrowing creates a new region growing algorithm
func NewRegionGrowing() *RegionGrowing {
	return &RegionGrowing{}
}

func (r *RegionGrowing) Apply(input pixel.Buffer, params map[string]interface{}) (pixel.Buffer, error) {
	if err := r.Validate(params); err != nil {
		return nil, err
	}
	f, err := outputFactory(input, params, nil)
	if err != nil {
		return nil, err
	}

	seeds, err := pointsParam(params, "seeds")
	if err != nil {
		return nil, err
	}

	cfg := segment.DefaultRegionConfig(seeds...)
	cfg.Lower = floatParam(params, "lower", cfg.Lower)
	cfg.Upper = floatParam(params, "upper", cfg.Upper)
	if stringParam(params, "neighbourhood", "n8") == "n4" {
		cfg.Neighbors = morph.N4
	}

	op, err := segment.NewRegionGrowing(cfg, f)
	if err != nil {
		return nil, err
	}
	return op.Apply(input)
}

func (r *RegionGrowing) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{
		"lower":         127.0,
		"upper":         255.0,
		"neighbourhood": "n8",
		"seeds":         []interface{}{},
	}
}

func (r *RegionGrowing) GetName() string {
	return "Region Growing"
}

func (r *RegionGrowing) GetDescription() string {
	return "Flood from seed pixels over connected pixels within a grey-level range"
}

func (r *RegionGrowing) Validate(params map[string]interface{}) error {
	if err := checkRange(params, "lower", 0, 255); err != nil {
		return err
	}
	if err := checkRange(params, "upper", 0, 255); err != nil {
		return err
	}
	if floatParam(params, "lower", 127) > floatParam(params, "upper", 255) {
		return fmt.Errorf("%w: lower must not exceed upper", pixel.ErrConfig)
	}
	if err := checkOption(params, "neighbourhood", "n4", "n8"); err != nil {
		return err
	}
	_, err := pointsParam(params, "seeds")
	return err
}

func (r *RegionGrowing) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		{
			Name:        "seeds",
			Type:        "points",
			Default:     []interface{}{},
			Description: "Seed pixels as [x, y] pairs",
		},
		{
			Name:        "lower",
			Type:        "float",
			Min:         0.0,
			Max:         255.0,
			Default:     127.0,
			Description: "Inclusive lower grey level",
		},
		{
			Name:        "upper",
			Type:        "float",
			Min:         0.0,
			Max:         255.0,
			Default:     255.0,
			Description: "Inclusive upper grey level",
		},
		{
			Name:        "neighbourhood",
			Type:        "enum",
			Default:     "n8",
			Description: "Connectivity",
			Options:     []string{"n4", "n8"},
		},
		representationInfo(),
	}
}

// AdaptiveThreshold implements iterative cluster-wise thresholding
type AdaptiveThreshold struct{}

// NewAdaptiveThreshold creates a new adaptive threshold algorithm
func NewAdaptiveThreshold() *AdaptiveThreshold {
	return &AdaptiveThreshold{}
}

func (a *AdaptiveThreshold) config(params map[string]interface{}) segment.ThresholdConfig {
	cfg := segment.DefaultThresholdConfig()
	cfg.ClusterSize = intParam(params, "cluster_size", cfg.ClusterSize)
	cfg.Overlap = floatParam(params, "overlap", cfg.Overlap)
	cfg.Epsilon = intParam(params, "epsilon", cfg.Epsilon)
	cfg.Foreground = floatParam(params, "foreground", cfg.Foreground)
	cfg.Background = floatParam(params, "background", cfg.Background)
	cfg.MaxIterations = intParam(params, "max_iterations", cfg.MaxIterations)
	return cfg
}

func (a *AdaptiveThreshold) Apply(input pixel.Buffer, params map[string]interface{}) (pixel.Buffer, error) {
	if err := a.Validate(params); err != nil {
		return nil, err
	}
	f, err := outputFactory(input, params, nil)
	if err != nil {
		return nil, err
	}

	op, err := segment.NewAdaptiveThreshold(a.config(params), f)
	if err != nil {
		return nil, err
	}
	result, err := op.Apply(input)
	if err != nil {
		return nil, err
	}
	return result.Image, nil
}

func (a *AdaptiveThreshold) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{
		"cluster_size":   30.0,
		"overlap":        0.25,
		"epsilon":        2.0,
		"foreground":     pixel.BinarySet,
		"background":     pixel.BinaryUnset,
		"max_iterations": 1000.0,
	}
}

func (a *AdaptiveThreshold) GetName() string {
	return "Adaptive Threshold"
}

func (a *AdaptiveThreshold) GetDescription() string {
	return "Per-cluster thresholds refined from overlapping neighbourhood means"
}

func (a *AdaptiveThreshold) Validate(params map[string]interface{}) error {
	checks := []struct {
		name   string
		lo, hi float64
	}{
		{"cluster_size", 1, 1000},
		{"overlap", 0, 1},
		{"epsilon", 0, 1000},
		{"foreground", 0, 255},
		{"background", 0, 255},
		{"max_iterations", 1, 100000},
	}
	for _, c := range checks {
		if err := checkRange(params, c.name, c.lo, c.hi); err != nil {
			return err
		}
	}
	cfg := a.config(params)
	if cfg.Foreground == cfg.Background {
		return fmt.Errorf("%w: foreground and background must differ", pixel.ErrConfig)
	}
	return nil
}

func (a *AdaptiveThreshold) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		{
			Name:        "cluster_size",
			Type:        "int",
			Min:         1.0,
			Max:         1000.0,
			Default:     30.0,
			Description: "Side of a threshold cluster in pixels",
		},
		{
			Name:        "overlap",
			Type:        "float",
			Min:         0.0,
			Max:         1.0,
			Default:     0.25,
			Description: "Share of the neighbouring clusters included in the mean window",
		},
		{
			Name:        "epsilon",
			Type:        "int",
			Min:         0.0,
			Max:         1000.0,
			Default:     2.0,
			Description: "Summed threshold change at which iteration stops",
		},
		{
			Name:        "foreground",
			Type:        "float",
			Min:         0.0,
			Max:         255.0,
			Default:     pixel.BinarySet,
			Description: "Value written above the threshold",
		},
		{
			Name:        "background",
			Type:        "float",
			Min:         0.0,
			Max:         255.0,
			Default:     pixel.BinaryUnset,
			Description: "Value written at or below the threshold",
		},
		{
			Name:        "max_iterations",
			Type:        "int",
			Min:         1.0,
			Max:         100000.0,
			Default:     1000.0,
			Description: "Iteration cap before giving up",
		},
		representationInfo(),
	}
}

// Threshold implements a single global threshold
type Threshold struct{}

// NewThreshold creates a new global threshold algorithm
func NewThreshold() *Threshold {
	return &Threshold{}
}

func (t *Threshold) Apply(input pixel.Buffer, params map[string]interface{}) (pixel.Buffer, error) {
	if err := t.Validate(params); err != nil {
		return nil, err
	}
	f, err := outputFactory(input, params, nil)
	if err != nil {
		return nil, err
	}
	return thresholdAt(input, f, floatParam(params, "threshold", 128))
}

func (t *Threshold) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{
		"threshold": 128.0,
	}
}

func (t *Threshold) GetName() string {
	return "Threshold"
}

func (t *Threshold) GetDescription() string {
	return "Global binarization at a fixed grey level"
}

func (t *Threshold) Validate(params map[string]interface{}) error {
	return checkRange(params, "threshold", 0, 256)
}

func (t *Threshold) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		{
			Name:        "threshold",
			Type:        "float",
			Min:         0.0,
			Max:         256.0,
			Default:     128.0,
			Description: "Grey levels at or above this value become foreground",
		},
		representationInfo(),
	}
}

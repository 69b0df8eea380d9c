// Algorithm registry shared by the pipeline and the command line
package algorithms

import (
	"fmt"
	"sort"

	"generic-imaging/internal/pixel"
)

// Algorithm defines the interface for image processing algorithms
type Algorithm interface {
	Apply(input pixel.Buffer, params map[string]interface{}) (pixel.Buffer, error)
	GetDefaultParams() map[string]interface{}
	GetName() string
	GetDescription() string
	Validate(params map[string]interface{}) error
	GetParameterInfo() []ParameterInfo
}

// ParameterInfo describes a parameter for UI generation
type ParameterInfo struct {
	Name        string      `json:"name"`
	Type        string      `json:"type"` // "int", "float", "bool", "string", "enum", "points", "matrix"
	Min         interface{} `json:"min,omitempty"`
	Max         interface{} `json:"max,omitempty"`
	Default     interface{} `json:"default"`
	Description string      `json:"description"`
	Options     []string    `json:"options,omitempty"` // For enum type
}

var algorithms = make(map[string]Algorithm)

func Register(name string, algorithm Algorithm) {
	algorithms[name] = algorithm
}

func Get(name string) (Algorithm, bool) {
	algorithm, exists := algorithms[name]
	return algorithm, exists
}

func Apply(name string, input pixel.Buffer, params map[string]interface{}) (pixel.Buffer, error) {
	algorithm, exists := algorithms[name]
	if !exists {
		return nil, fmt.Errorf("%w: algorithm not found: %s", pixel.ErrConfig, name)
	}

	return algorithm.Apply(input, params)
}

func ValidateParameters(name string, params map[string]interface{}) error {
	algorithm, exists := algorithms[name]
	if !exists {
		return fmt.Errorf("%w: algorithm not found: %s", pixel.ErrConfig, name)
	}

	return algorithm.Validate(params)
}

func IsValidAlgorithm(name string) bool {
	_, exists := algorithms[name]
	return exists
}

// Names lists the registered algorithms in sorted order.
func Names() []string {
	names := make([]string, 0, len(algorithms))
	for name := range algorithms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func GetAllAlgorithms() map[string]Algorithm {
	result := make(map[string]Algorithm)
	for name, algorithm := range algorithms {
		result[name] = algorithm
	}
	return result
}

func GetAlgorithmsByCategory() map[string][]string {
	return map[string][]string{
		"Segmentation": {
			"adaptive_threshold",
			"otsu_threshold",
			"twod_otsu",
			"region_growing",
			"threshold",
		},
		"Morphology": {
			"erosion",
			"dilation",
			"opening",
			"closing",
			"generic_morph",
		},
		"Distance": {
			"chamfer_distance",
		},
		"Geometry": {
			"rigid_transform",
			"lanczos_resize",
			"scale",
			"padding",
			"crop",
		},
		"Contrast": {
			"histogram_equalization",
			"gamma_correction",
		},
		"Conversion": {
			"greyscale",
			"to_hsv",
			"to_rgb",
		},
		"Filters": {
			"convolve",
			"edge_detection",
			"gaussian",
			"median",
			"normalize",
		},
	}
}

func init() {
	// Segmentation
	Register("adaptive_threshold", NewAdaptiveThreshold())
	Register("otsu_threshold", NewOtsuThreshold())
	Register("twod_otsu", NewTwoDOtsu())
	Register("region_growing", NewRegionGrowing())
	Register("threshold", NewThreshold())

	// Morphology
	Register("erosion", NewErosion())
	Register("dilation", NewDilation())
	Register("opening", NewOpening())
	Register("closing", NewClosing())
	Register("generic_morph", NewGenericMorph())

	Register("chamfer_distance", NewChamferDistance())
	Register("rigid_transform", NewRigidTransform())
	Register("lanczos_resize", NewLanczosResize())
	Register("scale", NewScale())
	Register("padding", NewPadding())
	Register("crop", NewCrop())

	// Contrast
	Register("histogram_equalization", NewHistogramEqualization())
	Register("gamma_correction", NewGammaCorrection())

	Register("convolve", NewConvolve())
	Register("edge_detection", NewEdgeDetection())

	// Conversion
	Register("greyscale", NewGreyscale())
	Register("to_hsv", NewToHSV())
	Register("to_rgb", NewToRGB())

	// Filters run on OpenCV matrices through a bridge
	Register("gaussian", NewGaussianFilter())
	Register("median", NewMedianFilter())
	Register("normalize", NewNormalize())
}

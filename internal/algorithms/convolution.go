// Kernel based filters over any representation
package algorithms

import (
	"generic-imaging/internal/backend/flat"
	"generic-imaging/internal/filter"
	"generic-imaging/internal/pixel"
)

var boxKernel = [][]float64{{1, 1, 1}, {1, 1, 1}, {1, 1, 1}}

// Convolve applies a user supplied kernel to every channel
type Convolve struct{}

// NewConvolve creates a new convolution algorithm
func NewConvolve() *Convolve {
	return &Convolve{}
}

func (c *Convolve) Apply(input pixel.Buffer, params map[string]interface{}) (pixel.Buffer, error) {
	if err := c.Validate(params); err != nil {
		return nil, err
	}
	f, err := outputFactory(input, params, nil)
	if err != nil {
		return nil, err
	}

	kernel, _ := kernelParam(params, "kernel")
	if kernel == nil {
		kernel = boxKernel
	}
	op, err := filter.NewConvolve(filter.ConvolveConfig{
		Kernel:     kernel,
		Normalize:  boolParam(params, "normalize", true),
		Iterations: intParam(params, "iterations", 1),
	}, f)
	if err != nil {
		return nil, err
	}
	return op.Apply(input)
}

func (c *Convolve) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{
		"kernel":     boxKernel,
		"normalize":  true,
		"iterations": 1.0,
	}
}

func (c *Convolve) GetName() string {
	return "Convolution"
}

func (c *Convolve) GetDescription() string {
	return "Weighted neighbourhood sum with an arbitrary odd sized kernel"
}

func (c *Convolve) Validate(params map[string]interface{}) error {
	kernel, err := kernelParam(params, "kernel")
	if err != nil {
		return err
	}
	if kernel != nil {
		if _, err := filter.NewConvolve(filter.ConvolveConfig{Kernel: kernel}, flat.Float64); err != nil {
			return err
		}
	}
	if err := checkBool(params, "normalize"); err != nil {
		return err
	}
	return checkRange(params, "iterations", 1, 100)
}

func (c *Convolve) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		{
			Name:        "kernel",
			Type:        "matrix",
			Default:     boxKernel,
			Description: "Rows of weights, odd row count and odd row lengths",
		},
		{
			Name:        "normalize",
			Type:        "bool",
			Default:     true,
			Description: "Divide by the sum of the weights inside the image",
		},
		{
			Name:        "iterations",
			Type:        "int",
			Min:         1.0,
			Max:         100.0,
			Default:     1.0,
			Description: "Number of passes",
		},
		representationInfo(),
	}
}

var edgeOperators = map[string][][][]float64{
	"sobel":   filter.Sobel,
	"prewitt": filter.Prewitt,
	"laplace": filter.Laplace,
}

// EdgeDetection computes a gradient magnitude from a set of masks
type EdgeDetection struct{}

// NewEdgeDetection creates a new edge detection algorithm
func NewEdgeDetection() *EdgeDetection {
	return &EdgeDetection{}
}

func (e *EdgeDetection) Apply(input pixel.Buffer, params map[string]interface{}) (pixel.Buffer, error) {
	if err := e.Validate(params); err != nil {
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

	op, err := filter.NewEdgeDetection(edgeOperators[stringParam(params, "operator", "sobel")], f)
	if err != nil {
		return nil, err
	}
	return op.Apply(gray)
}

func (e *EdgeDetection) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{
		"operator": "sobel",
	}
}

func (e *EdgeDetection) GetName() string {
	return "Edge Detection"
}

func (e *EdgeDetection) GetDescription() string {
	return "Gradient magnitude scaled so the strongest edge is 255"
}

func (e *EdgeDetection) Validate(params map[string]interface{}) error {
	return checkOption(params, "operator", "sobel", "prewitt", "laplace")
}

func (e *EdgeDetection) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		{
			Name:        "operator",
			Type:        "enum",
			Default:     "sobel",
			Description: "Gradient masks",
			Options:     []string{"sobel", "prewitt", "laplace"},
		},
		representationInfo(),
	}
}

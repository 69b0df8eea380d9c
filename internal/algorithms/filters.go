// Filter algorithms for noise reduction and enhancement
package algorithms

import (
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"

	"generic-imaging/internal/backend/matbuf"
	"generic-imaging/internal/bridge"
	"generic-imaging/internal/pixel"
)

// matFilter runs fn on the OpenCV matrix of a matrix buffer and wraps the
// filtered matrix as a new buffer of the same layout. fn may change the
// matrix size.
func matFilter(fn func(src gocv.Mat, dst *gocv.Mat)) bridge.Op {
	return func(src pixel.Buffer) (pixel.Buffer, error) {
		mb, ok := src.(*matbuf.Buffer)
		if !ok {
			return nil, fmt.Errorf("%w: filter needs a %s buffer, got %s", pixel.ErrUnsupportedType, matbuf.Kind, src.Kind())
		}

		dst := gocv.NewMat()
		fn(mb.Mat(), &dst)

		out, err := matbuf.Default.Wrap(dst.Rows(), dst.Cols(), src.Layout(), dst)
		if err != nil {
			dst.Close()
			return nil, err
		}
		return out, nil
	}
}

// runFilter bridges input into a matrix buffer and the result back into
// the output representation.
func runFilter(input pixel.Buffer, params map[string]interface{}, op bridge.Op) (pixel.Buffer, error) {
	f, err := outputFactory(input, params, nil)
	if err != nil {
		return nil, err
	}
	return bridge.NewFunction(op, matbuf.Default, f).Apply(input)
}

func oddKernel(params map[string]interface{}, def int) int {
	kernelSize := intParam(params, "kernel_size", def)
	if kernelSize%2 == 0 {
		kernelSize++
	}
	return kernelSize
}

// GaussianFilter implements Gaussian blur filter
type GaussianFilter struct{}

// NewGaussianFilter creates a new Gaussian filter algorithm
func NewGaussianFilter() *GaussianFilter {
	return &GaussianFilter{}
}

func (g *GaussianFilter) Apply(input pixel.Buffer, params map[string]interface{}) (pixel.Buffer, error) {
	if err := g.Validate(params); err != nil {
		return nil, err
	}

	kernelSize := oddKernel(params, 5)
	sigmaX := floatParam(params, "sigma_x", 1.0)
	sigmaY := floatParam(params, "sigma_y", 1.0)

	return runFilter(input, params, matFilter(func(src gocv.Mat, dst *gocv.Mat) {
		gocv.GaussianBlur(src, dst, image.Pt(kernelSize, kernelSize), sigmaX, sigmaY, gocv.BorderDefault)
	}))
}

func (g *GaussianFilter) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{
		"kernel_size": 5.0,
		"sigma_x":     1.0,
		"sigma_y":     1.0,
	}
}

func (g *GaussianFilter) GetName() string {
	return "Gaussian Filter"
}

func (g *GaussianFilter) GetDescription() string {
	return "Gaussian blur for general noise reduction"
}

func (g *GaussianFilter) Validate(params map[string]interface{}) error {
	if err := checkRange(params, "kernel_size", 3, 21); err != nil {
		return err
	}
	if err := checkRange(params, "sigma_x", 0.1, 10.0); err != nil {
		return err
	}
	return checkRange(params, "sigma_y", 0.1, 10.0)
}

func (g *GaussianFilter) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		{
			Name:        "kernel_size",
			Type:        "int",
			Min:         3.0,
			Max:         21.0,
			Default:     5.0,
			Description: "Size of the Gaussian kernel (must be odd)",
		},
		{
			Name:        "sigma_x",
			Type:        "float",
			Min:         0.1,
			Max:         10.0,
			Default:     1.0,
			Description: "Standard deviation in X direction",
		},
		{
			Name:        "sigma_y",
			Type:        "float",
			Min:         0.1,
			Max:         10.0,
			Default:     1.0,
			Description: "Standard deviation in Y direction",
		},
		representationInfo(),
	}
}

// MedianFilter implements median filter
type MedianFilter struct{}

// NewMedianFilter creates a new median filter algorithm
func NewMedianFilter() *MedianFilter {
	return &MedianFilter{}
}

func (m *MedianFilter) Apply(input pixel.Buffer, params map[string]interface{}) (pixel.Buffer, error) {
	if err := m.Validate(params); err != nil {
		return nil, err
	}

	kernelSize := oddKernel(params, 5)

	return runFilter(input, params, matFilter(func(src gocv.Mat, dst *gocv.Mat) {
		gocv.MedianBlur(src, dst, kernelSize)
	}))
}

func (m *MedianFilter) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{
		"kernel_size": 5.0,
	}
}

func (m *MedianFilter) GetName() string {
	return "Median Filter"
}

func (m *MedianFilter) GetDescription() string {
	return "Median filter to remove salt-and-pepper noise"
}

func (m *MedianFilter) Validate(params map[string]interface{}) error {
	return checkRange(params, "kernel_size", 3, 15)
}

func (m *MedianFilter) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		{
			Name:        "kernel_size",
			Type:        "int",
			Min:         3.0,
			Max:         15.0,
			Default:     5.0,
			Description: "Size of the median filter kernel (must be odd)",
		},
		representationInfo(),
	}
}

// Normalize stretches intensities to a target range in place
type Normalize struct{}

// NewNormalize creates a new min-max normalization algorithm
func NewNormalize() *Normalize {
	return &Normalize{}
}

func (n *Normalize) Apply(input pixel.Buffer, params map[string]interface{}) (pixel.Buffer, error) {
	if err := n.Validate(params); err != nil {
		return nil, err
	}
	f, err := outputFactory(input, params, nil)
	if err != nil {
		return nil, err
	}

	lo := floatParam(params, "min", 0)
	hi := floatParam(params, "max", 255)

	out, err := pixel.CreateCopy(input, f)
	if err != nil {
		return nil, err
	}
	consumer := bridge.NewConsumer(func(dst pixel.Buffer) error {
		mb, ok := dst.(*matbuf.Buffer)
		if !ok {
			return fmt.Errorf("%w: normalize needs a %s buffer, got %s", pixel.ErrUnsupportedType, matbuf.Kind, dst.Kind())
		}
		m := mb.Mat()
		gocv.Normalize(m, &m, lo, hi, gocv.NormMinMax)
		return nil
	}, matbuf.Default)

	if err := consumer.Accept(out); err != nil {
		out.Release()
		return nil, err
	}
	return out, nil
}

func (n *Normalize) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{
		"min": 0.0,
		"max": 255.0,
	}
}

func (n *Normalize) GetName() string {
	return "Normalize"
}

func (n *Normalize) GetDescription() string {
	return "Min-max stretch of every channel to a target range"
}

func (n *Normalize) Validate(params map[string]interface{}) error {
	if err := checkRange(params, "min", 0, 255); err != nil {
		return err
	}
	if err := checkRange(params, "max", 0, 255); err != nil {
		return err
	}
	if floatParam(params, "min", 0) >= floatParam(params, "max", 255) {
		return fmt.Errorf("%w: min must be below max", pixel.ErrConfig)
	}
	return nil
}

func (n *Normalize) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		{
			Name:        "min",
			Type:        "float",
			Min:         0.0,
			Max:         255.0,
			Default:     0.0,
			Description: "Lowest output intensity",
		},
		{
			Name:        "max",
			Type:        "float",
			Min:         0.0,
			Max:         255.0,
			Default:     255.0,
			Description: "Highest output intensity",
		},
		representationInfo(),
	}
}

// LanczosResize implements Lanczos4 resampling to a new size
type LanczosResize struct{}

// NewLanczosResize creates a new Lanczos4 resize algorithm
func NewLanczosResize() *LanczosResize {
	return &LanczosResize{}
}

// scaleFactor prefers a DPI conversion when both resolutions are given.
func (l *LanczosResize) scaleFactor(params map[string]interface{}) float64 {
	target := floatParam(params, "target_dpi", 0)
	original := floatParam(params, "original_dpi", 0)
	if target > 0 && original > 0 {
		return target / original
	}
	return floatParam(params, "scale_factor", 1.0)
}

func (l *LanczosResize) Apply(input pixel.Buffer, params map[string]interface{}) (pixel.Buffer, error) {
	if err := l.Validate(params); err != nil {
		return nil, err
	}

	scale := l.scaleFactor(params)
	w := max(1, int(math.Round(float64(input.Width())*scale)))
	h := max(1, int(math.Round(float64(input.Height())*scale)))

	return runFilter(input, params, matFilter(func(src gocv.Mat, dst *gocv.Mat) {
		gocv.Resize(src, dst, image.Pt(w, h), 0, 0, gocv.InterpolationLanczos4)
	}))
}

func (l *LanczosResize) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{
		"scale_factor": 1.0,
	}
}

func (l *LanczosResize) GetName() string {
	return "Lanczos4 Resize"
}

func (l *LanczosResize) GetDescription() string {
	return "Lanczos4 resampling by a scale factor or a DPI conversion"
}

func (l *LanczosResize) Validate(params map[string]interface{}) error {
	if err := checkRange(params, "scale_factor", 0.1, 10.0); err != nil {
		return err
	}
	if err := checkRange(params, "target_dpi", 72, 2400); err != nil {
		return err
	}
	if err := checkRange(params, "original_dpi", 72, 2400); err != nil {
		return err
	}
	if scale := l.scaleFactor(params); scale < 0.01 || scale > 100 {
		return fmt.Errorf("%w: scale %v", pixel.ErrConfig, scale)
	}
	return nil
}

func (l *LanczosResize) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		{
			Name:        "scale_factor",
			Type:        "float",
			Min:         0.1,
			Max:         10.0,
			Default:     1.0,
			Description: "Output size relative to the input",
		},
		{
			Name:        "target_dpi",
			Type:        "float",
			Min:         72.0,
			Max:         2400.0,
			Description: "Target resolution; with original_dpi overrides scale_factor",
		},
		{
			Name:        "original_dpi",
			Type:        "float",
			Min:         72.0,
			Max:         2400.0,
			Description: "Resolution of the input",
		},
		representationInfo(),
	}
}

// Concrete implementations of quality metrics
package metrics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"generic-imaging/internal/backend/flat"
	"generic-imaging/internal/convert"
	"generic-imaging/internal/distance"
	"generic-imaging/internal/pixel"
)

// plane holds the grey levels of a buffer in row-major order.
type plane struct {
	w, h int
	v    []float64
}

func (p plane) at(x, y int) float64 {
	return p.v[y*p.w+x]
}

// greyPlane reads channel 0 of single-channel buffers and the luminosity of
// colour buffers.
func greyPlane(b pixel.Buffer) (plane, error) {
	if b.Width() == 0 || b.Height() == 0 {
		return plane{}, fmt.Errorf("%w: empty image", pixel.ErrConfig)
	}

	src := b
	if pixel.Channels(b) != 1 {
		grey, err := convert.ToGreyscale(b, flat.Float64, convert.Luminosity)
		if err != nil {
			return plane{}, err
		}
		defer grey.Release()
		src = grey
	}

	p := plane{w: src.Width(), h: src.Height(), v: make([]float64, src.Width()*src.Height())}
	for y := 0; y < p.h; y++ {
		for x := 0; x < p.w; x++ {
			p.v[y*p.w+x] = src.Value(x, y, 0)
		}
	}
	return p, nil
}

// greyPair reads both buffers and checks their dimensions agree.
func greyPair(original, processed pixel.Buffer) (plane, plane, error) {
	if original.Width() != processed.Width() || original.Height() != processed.Height() {
		return plane{}, plane{}, fmt.Errorf("%w: image dimensions %dx%d vs %dx%d", pixel.ErrShapeMismatch,
			original.Width(), original.Height(), processed.Width(), processed.Height())
	}
	a, err := greyPlane(original)
	if err != nil {
		return plane{}, plane{}, err
	}
	b, err := greyPlane(processed)
	if err != nil {
		return plane{}, plane{}, err
	}
	return a, b, nil
}

func sumSquaredError(a, b plane) float64 {
	d := floats.Distance(a.v, b.v, 2)
	return d * d
}

// PSNR implements Peak Signal-to-Noise Ratio metric
type PSNR struct{}

// NewPSNR creates a new PSNR metric
func NewPSNR() *PSNR {
	return &PSNR{}
}

func (p *PSNR) Calculate(original, processed pixel.Buffer) (float64, error) {
	a, b, err := greyPair(original, processed)
	if err != nil {
		return 0, err
	}

	mse := sumSquaredError(a, b) / float64(len(a.v))
	if mse == 0 {
		return math.Inf(1), nil // Perfect match
	}

	return 20 * math.Log10(255/math.Sqrt(mse)), nil
}

func (p *PSNR) GetName() string              { return "PSNR" }
func (p *PSNR) GetDescription() string       { return "Peak Signal-to-Noise Ratio - measures image quality" }
func (p *PSNR) GetRange() (float64, float64) { return 0, 100 }
func (p *PSNR) IsHigherBetter() bool         { return true }

// MSE implements Mean Squared Error metric
type MSE struct{}

// NewMSE creates a new MSE metric
func NewMSE() *MSE {
	return &MSE{}
}

func (m *MSE) Calculate(original, processed pixel.Buffer) (float64, error) {
	a, b, err := greyPair(original, processed)
	if err != nil {
		return 0, err
	}
	return sumSquaredError(a, b) / float64(len(a.v)), nil
}

func (m *MSE) GetName() string              { return "MSE" }
func (m *MSE) GetDescription() string       { return "Mean Squared Error" }
func (m *MSE) GetRange() (float64, float64) { return 0, 65025 }
func (m *MSE) IsHigherBetter() bool         { return false }

// SSE implements the Sum of Squared Errors metric
type SSE struct{}

// NewSSE creates a new SSE metric
func NewSSE() *SSE {
	return &SSE{}
}

func (s *SSE) Calculate(original, processed pixel.Buffer) (float64, error) {
	a, b, err := greyPair(original, processed)
	if err != nil {
		return 0, err
	}
	return sumSquaredError(a, b), nil
}

func (s *SSE) GetName() string              { return "SSE" }
func (s *SSE) GetDescription() string       { return "Sum of Squared Errors" }
func (s *SSE) GetRange() (float64, float64) { return 0, math.MaxFloat64 }
func (s *SSE) IsHigherBetter() bool         { return false }

// SSIM implements Structural Similarity Index metric averaged over
// overlapping windows
type SSIM struct {
	Window int
	Stride int
}

// NewSSIM creates a new SSIM metric
func NewSSIM() *SSIM {
	return &SSIM{Window: 8, Stride: 4}
}

func (s *SSIM) Calculate(original, processed pixel.Buffer) (float64, error) {
	a, b, err := greyPair(original, processed)
	if err != nil {
		return 0, err
	}

	win := min(s.Window, a.w, a.h)
	stride := max(s.Stride, 1)

	total, count := 0.0, 0
	wa := make([]float64, 0, win*win)
	wb := make([]float64, 0, win*win)
	for y0 := 0; y0+win <= a.h; y0 += stride {
		for x0 := 0; x0+win <= a.w; x0 += stride {
			wa, wb = wa[:0], wb[:0]
			for y := y0; y < y0+win; y++ {
				for x := x0; x < x0+win; x++ {
					wa = append(wa, a.at(x, y))
					wb = append(wb, b.at(x, y))
				}
			}
			total += windowSSIM(wa, wb)
			count++
		}
	}

	return total / float64(count), nil
}

func windowSSIM(a, b []float64) float64 {
	const (
		C1 = 6.5025  // (0.01 * 255)^2
		C2 = 58.5225 // (0.03 * 255)^2
	)

	mu1, var1 := stat.PopMeanVariance(a, nil)
	mu2, var2 := stat.PopMeanVariance(b, nil)
	cov := 0.0
	for i := range a {
		cov += (a[i] - mu1) * (b[i] - mu2)
	}
	cov /= float64(len(a))

	numerator := (2*mu1*mu2 + C1) * (2*cov + C2)
	denominator := (mu1*mu1 + mu2*mu2 + C1) * (var1 + var2 + C2)
	return numerator / denominator
}

func (s *SSIM) GetName() string              { return "SSIM" }
func (s *SSIM) GetDescription() string       { return "Structural Similarity Index - measures perceptual quality" }
func (s *SSIM) GetRange() (float64, float64) { return 0, 1 }
func (s *SSIM) IsHigherBetter() bool         { return true }

// FMeasure implements F-measure for binarization quality. Grey levels above
// 127 count as foreground.
type FMeasure struct{}

// NewFMeasure creates a new F-measure metric
func NewFMeasure() *FMeasure {
	return &FMeasure{}
}

func (f *FMeasure) Calculate(original, processed pixel.Buffer) (float64, error) {
	a, b, err := greyPair(original, processed)
	if err != nil {
		return 0, err
	}

	tp, fp, fn := 0.0, 0.0, 0.0
	for i := range a.v {
		origForeground := a.v[i] > 127
		procForeground := b.v[i] > 127

		switch {
		case origForeground && procForeground:
			tp++
		case !origForeground && procForeground:
			fp++
		case origForeground && !procForeground:
			fn++
		}
	}

	precision := 0.0
	if tp+fp > 0 {
		precision = tp / (tp + fp)
	}

	recall := 0.0
	if tp+fn > 0 {
		recall = tp / (tp + fn)
	}

	if precision+recall == 0 {
		return 0, nil
	}

	return 2 * (precision * recall) / (precision + recall), nil
}

func (f *FMeasure) GetName() string              { return "F-Measure" }
func (f *FMeasure) GetDescription() string       { return "F-measure for binarization quality assessment" }
func (f *FMeasure) GetRange() (float64, float64) { return 0, 1 }
func (f *FMeasure) IsHigherBetter() bool         { return true }

// ForegroundRatio is the share of processed pixels above 127.
type ForegroundRatio struct{}

// NewForegroundRatio creates a new foreground ratio metric
func NewForegroundRatio() *ForegroundRatio {
	return &ForegroundRatio{}
}

func (r *ForegroundRatio) Calculate(_, processed pixel.Buffer) (float64, error) {
	p, err := greyPlane(processed)
	if err != nil {
		return 0, err
	}

	set := 0
	for _, v := range p.v {
		if v > 127 {
			set++
		}
	}
	return float64(set) / float64(len(p.v)), nil
}

func (r *ForegroundRatio) GetName() string              { return "Foreground Ratio" }
func (r *ForegroundRatio) GetDescription() string       { return "Share of foreground pixels in the result" }
func (r *ForegroundRatio) GetRange() (float64, float64) { return 0, 1 }
func (r *ForegroundRatio) IsHigherBetter() bool         { return true }

// DistanceMapFitness is the squared error of the original against a
// binary result, counted only on the result's foreground contour.
type DistanceMapFitness struct{}

// NewDistanceMapFitness creates a new distance map fitness metric
func NewDistanceMapFitness() *DistanceMapFitness {
	return &DistanceMapFitness{}
}

func (d *DistanceMapFitness) Calculate(original, processed pixel.Buffer) (float64, error) {
	ch, err := distance.NewChamfer(distance.ChamferConfig{
		Contour: pixel.BinarySet,
		Metric:  distance.Chessboard{},
	}, flat.Float64)
	if err != nil {
		return 0, err
	}
	fit, err := distance.NewFitness(ch)
	if err != nil {
		return 0, err
	}

	candidate := original
	if l := original.Layout(); l != pixel.Greyscale && l != pixel.Binary {
		gray, err := convert.ToGreyscale(original, flat.Float64, convert.Luminosity)
		if err != nil {
			return 0, err
		}
		defer gray.Release()
		candidate = gray
	}
	return fit.Evaluate(candidate, processed)
}

func (d *DistanceMapFitness) GetName() string { return "Distance Map Fitness" }
func (d *DistanceMapFitness) GetDescription() string {
	return "Squared error on the contour of a binary result"
}
func (d *DistanceMapFitness) GetRange() (float64, float64) { return 0, math.MaxFloat64 }
func (d *DistanceMapFitness) IsHigherBetter() bool         { return false }

// ContrastRatio compares the grey-level standard deviation of both images
type ContrastRatio struct{}

// NewContrastRatio creates a new contrast ratio metric
func NewContrastRatio() *ContrastRatio {
	return &ContrastRatio{}
}

func (c *ContrastRatio) Calculate(original, processed pixel.Buffer) (float64, error) {
	a, err := greyPlane(original)
	if err != nil {
		return 0, err
	}
	b, err := greyPlane(processed)
	if err != nil {
		return 0, err
	}

	_, origContrast := stat.PopMeanStdDev(a.v, nil)
	_, procContrast := stat.PopMeanStdDev(b.v, nil)

	if origContrast == 0 {
		return 1.0, nil
	}

	return procContrast / origContrast, nil
}

func (c *ContrastRatio) GetName() string              { return "Contrast Ratio" }
func (c *ContrastRatio) GetDescription() string       { return "Ratio of contrast preservation" }
func (c *ContrastRatio) GetRange() (float64, float64) { return 0, 2 }
func (c *ContrastRatio) IsHigherBetter() bool         { return true }

// Sharpness compares the variance of the Laplacian of both images
type Sharpness struct{}

// NewSharpness creates a new sharpness metric
func NewSharpness() *Sharpness {
	return &Sharpness{}
}

func (s *Sharpness) Calculate(original, processed pixel.Buffer) (float64, error) {
	a, err := greyPlane(original)
	if err != nil {
		return 0, err
	}
	b, err := greyPlane(processed)
	if err != nil {
		return 0, err
	}

	origSharpness := laplacianVariance(a)
	procSharpness := laplacianVariance(b)

	if origSharpness == 0 {
		return 1.0, nil
	}

	return procSharpness / origSharpness, nil
}

// laplacianVariance applies the 4-neighbour Laplacian to interior pixels.
func laplacianVariance(p plane) float64 {
	if p.w < 3 || p.h < 3 {
		return 0
	}

	responses := make([]float64, 0, (p.w-2)*(p.h-2))
	for y := 1; y < p.h-1; y++ {
		for x := 1; x < p.w-1; x++ {
			responses = append(responses,
				p.at(x-1, y)+p.at(x+1, y)+p.at(x, y-1)+p.at(x, y+1)-4*p.at(x, y))
		}
	}

	_, variance := stat.PopMeanVariance(responses, nil)
	return variance
}

func (s *Sharpness) GetName() string              { return "Sharpness" }
func (s *Sharpness) GetDescription() string       { return "Laplacian variance ratio - measures edge preservation" }
func (s *Sharpness) GetRange() (float64, float64) { return 0, 2 }
func (s *Sharpness) IsHigherBetter() bool         { return true }
